package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var repoTracer = otel.Tracer("github.com/Additional-Code/buyerdesk/repository")

// ErrNotFound is returned when no document matches.
var ErrNotFound = errors.New("document not found")

// Store is the persistence contract shared by every collection.
type Store[T any] interface {
	// Find returns documents matching filter. A nil projection loads every field.
	Find(ctx context.Context, filter bson.M, projection bson.M) ([]T, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*T, error)
	FindOne(ctx context.Context, filter bson.M) (*T, error)
	Insert(ctx context.Context, doc *T) (primitive.ObjectID, error)
	// UpdateFields applies a $set of the given fields on one document.
	UpdateFields(ctx context.Context, id primitive.ObjectID, set bson.M) error
	// UpdateWhere applies a raw update to the first document matching filter,
	// which allows positional ($) array updates.
	UpdateWhere(ctx context.Context, filter bson.M, update bson.M) error
	Push(ctx context.Context, id primitive.ObjectID, field string, values ...any) error
	Pull(ctx context.Context, id primitive.ObjectID, field string, match any) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// Collection implements Store on a mongo collection.
type Collection[T any] struct {
	coll *mongo.Collection
	name string
}

// NewCollection binds a Store to the named collection.
func NewCollection[T any](db *mongo.Database, name string) *Collection[T] {
	return &Collection[T]{coll: db.Collection(name), name: name}
}

func (c *Collection[T]) start(ctx context.Context, op string) (context.Context, trace.Span) {
	return repoTracer.Start(ctx, "Repository."+op, trace.WithAttributes(
		attribute.String("db.system", "mongodb"),
		attribute.String("db.collection", c.name),
	))
}

func fail(span trace.Span, err error, msg string) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
	return err
}

func (c *Collection[T]) Find(ctx context.Context, filter bson.M, projection bson.M) ([]T, error) {
	ctx, span := c.start(ctx, "Find")
	defer span.End()

	opts := options.Find()
	if len(projection) > 0 {
		opts.SetProjection(projection)
	}
	cur, err := c.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fail(span, err, "find failed")
	}
	defer cur.Close(ctx)

	out := make([]T, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fail(span, err, "decode failed")
	}
	span.SetAttributes(attribute.Int("db.result_count", len(out)))
	return out, nil
}

func (c *Collection[T]) FindByID(ctx context.Context, id primitive.ObjectID) (*T, error) {
	return c.FindOne(ctx, bson.M{"_id": id})
}

func (c *Collection[T]) FindOne(ctx context.Context, filter bson.M) (*T, error) {
	ctx, span := c.start(ctx, "FindOne")
	defer span.End()

	doc := new(T)
	err := c.coll.FindOne(ctx, filter).Decode(doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fail(span, err, "find one failed")
	}
	return doc, nil
}

func (c *Collection[T]) Insert(ctx context.Context, doc *T) (primitive.ObjectID, error) {
	if doc == nil {
		return primitive.NilObjectID, errors.New("nil document")
	}
	ctx, span := c.start(ctx, "Insert")
	defer span.End()

	res, err := c.coll.InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, fail(span, err, "insert failed")
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fail(span, fmt.Errorf("unexpected id type %T", res.InsertedID), "insert failed")
	}
	return id, nil
}

func (c *Collection[T]) UpdateFields(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	return c.updateOne(ctx, "UpdateFields", bson.M{"_id": id}, bson.M{"$set": set})
}

func (c *Collection[T]) UpdateWhere(ctx context.Context, filter bson.M, update bson.M) error {
	return c.updateOne(ctx, "UpdateWhere", filter, update)
}

func (c *Collection[T]) Push(ctx context.Context, id primitive.ObjectID, field string, values ...any) error {
	if len(values) == 0 {
		return nil
	}
	return c.updateOne(ctx, "Push", bson.M{"_id": id}, bson.M{"$push": bson.M{field: bson.M{"$each": values}}})
}

func (c *Collection[T]) Pull(ctx context.Context, id primitive.ObjectID, field string, match any) error {
	return c.updateOne(ctx, "Pull", bson.M{"_id": id}, bson.M{"$pull": bson.M{field: match}})
}

func (c *Collection[T]) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, span := c.start(ctx, "Delete")
	defer span.End()

	res, err := c.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fail(span, err, "delete failed")
	}
	if res.DeletedCount == 0 {
		span.SetStatus(codes.Error, "not found")
		return ErrNotFound
	}
	return nil
}

func (c *Collection[T]) updateOne(ctx context.Context, op string, filter, update bson.M) error {
	ctx, span := c.start(ctx, op)
	defer span.End()

	res, err := c.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fail(span, err, "update failed")
	}
	if res.MatchedCount == 0 {
		span.SetStatus(codes.Error, "not found")
		return ErrNotFound
	}
	return nil
}
