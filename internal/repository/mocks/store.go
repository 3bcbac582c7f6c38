package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store is a testify mock of repository.Store.
type Store[T any] struct {
	mock.Mock
}

func (m *Store[T]) Find(ctx context.Context, filter bson.M, projection bson.M) ([]T, error) {
	args := m.Called(ctx, filter, projection)
	if v, ok := args.Get(0).([]T); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Store[T]) FindByID(ctx context.Context, id primitive.ObjectID) (*T, error) {
	args := m.Called(ctx, id)
	if v, ok := args.Get(0).(*T); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Store[T]) FindOne(ctx context.Context, filter bson.M) (*T, error) {
	args := m.Called(ctx, filter)
	if v, ok := args.Get(0).(*T); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Store[T]) Insert(ctx context.Context, doc *T) (primitive.ObjectID, error) {
	args := m.Called(ctx, doc)
	return args.Get(0).(primitive.ObjectID), args.Error(1)
}

func (m *Store[T]) UpdateFields(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	args := m.Called(ctx, id, set)
	return args.Error(0)
}

func (m *Store[T]) UpdateWhere(ctx context.Context, filter bson.M, update bson.M) error {
	args := m.Called(ctx, filter, update)
	return args.Error(0)
}

func (m *Store[T]) Push(ctx context.Context, id primitive.ObjectID, field string, values ...any) error {
	args := m.Called(ctx, id, field, values)
	return args.Error(0)
}

func (m *Store[T]) Pull(ctx context.Context, id primitive.ObjectID, field string, match any) error {
	args := m.Called(ctx, id, field, match)
	return args.Error(0)
}

func (m *Store[T]) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
