package item

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/buyerdesk/internal/dto"
	"github.com/Additional-Code/buyerdesk/internal/entity"
	"github.com/Additional-Code/buyerdesk/internal/repository"
	"github.com/Additional-Code/buyerdesk/internal/service"
	"github.com/Additional-Code/buyerdesk/internal/storage"
	"github.com/Additional-Code/buyerdesk/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/Additional-Code/buyerdesk/service/item")

// ListProjection is the field set returned by item lists.
var ListProjection = bson.M{
	"_id": 1, "itemId": 1, "item_name": 1, "manufacturer": 1, "notes": 1, "unit": 1,
	"category": 1, "model": 1, "group": 1, "tags": 1, "image_upload": 1,
	"company_name": 1, "link": 1, "status": 1, "document": 1,
}

// Service encapsulates business logic around catalogue items and their documents.
type Service struct {
	items    repository.Store[entity.Item]
	uploader *storage.Uploader
	logger   *zap.Logger
	now      func() time.Time
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Items    repository.Store[entity.Item]
	Uploader *storage.Uploader
	Logger   *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		items:    p.Items,
		uploader: p.Uploader,
		logger:   p.Logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func notExist(id string) string {
	return fmt.Sprintf("Item with id %s does not exist", id)
}

// List returns the projected items of a company.
func (s *Service) List(ctx context.Context, companyID string) ([]entity.Item, error) {
	ctx, span := serviceTracer.Start(ctx, "ItemService.List", trace.WithAttributes(attribute.String("company.id", companyID)))
	defer span.End()

	items, err := s.items.Find(ctx, bson.M{"companyId": companyID}, ListProjection)
	if err != nil {
		return nil, service.Store(span, err, service.NoRecords, "failed to list items")
	}
	if len(items) == 0 {
		return nil, errorbank.NotFound(service.NoRecords)
	}
	return items, nil
}

// Get loads one item.
func (s *Service) Get(ctx context.Context, id string) (*entity.Item, error) {
	oid, err := service.ParseID("id", id)
	if err != nil {
		return nil, err
	}
	ctx, span := serviceTracer.Start(ctx, "ItemService.Get", trace.WithAttributes(attribute.String("item.id", id)))
	defer span.End()

	item, err := s.items.FindByID(ctx, oid)
	if err != nil {
		return nil, service.Store(span, err, notExist(id), "failed to load item")
	}
	return item, nil
}

// Create stores the uploaded documents and the item. Stored files are
// removed again when the insert fails.
func (s *Service) Create(ctx context.Context, item *entity.Item, uploads []storage.Upload, actor string) error {
	if item == nil {
		return errorbank.BadRequest("item payload is required")
	}
	if item.Status != entity.ItemDraft && item.Status != entity.ItemActive {
		return errorbank.BadRequest(fmt.Sprintf("item cannot be created as %q", item.Status))
	}

	ctx, span := serviceTracer.Start(ctx, "ItemService.Create", trace.WithAttributes(
		attribute.String("company.id", item.CompanyID),
		attribute.Int("item.documents", len(uploads)),
	))
	defer span.End()

	docs, err := s.uploader.Save(ctx, uploads)
	if err != nil {
		return service.Upload(span, err)
	}

	now := s.now()
	item.Document = docs
	item.CreatedBy = actor
	item.CreatedAt = now
	item.UpdatedAt = now
	if item.Tags == nil {
		item.Tags = []string{}
	}

	id, err := s.items.Insert(ctx, item)
	if err != nil {
		s.uploader.Rollback(context.WithoutCancel(ctx), docs)
		return service.Store(span, err, service.NoRecords, "failed to create item")
	}
	item.ID = id
	return nil
}

// Edit applies the provided fields and validates any status change.
func (s *Service) Edit(ctx context.Context, id string, req dto.ItemEditRequest, actor string) (*entity.Item, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	ctx, span := serviceTracer.Start(ctx, "ItemService.Edit", trace.WithAttributes(attribute.String("item.id", id)))
	defer span.End()

	set := bson.M{}
	fields := map[string]*string{
		"itemId":       req.ItemID,
		"item_name":    req.ItemName,
		"manufacturer": req.Manufacturer,
		"notes":        req.Notes,
		"unit":         req.Unit,
		"category":     req.Category,
		"model":        req.Model,
		"group":        req.Group,
		"image_upload": req.ImageUpload,
		"company_name": req.CompanyName,
		"link":         req.Link,
	}
	for field, v := range fields {
		if v != nil {
			set[field] = *v
		}
	}
	if req.Tags != nil {
		tags := *req.Tags
		if tags == nil {
			tags = []string{}
		}
		set["tags"] = tags
	}
	if req.Status != nil {
		next := entity.ItemStatus(*req.Status)
		if err := current.Status.TransitionTo(next); err != nil {
			return nil, service.Transition(err)
		}
		set["status"] = next
	}

	set["updatedBy"] = actor
	set["updatedAt"] = s.now()
	if err := s.items.UpdateFields(ctx, current.ID, set); err != nil {
		return nil, service.Store(span, err, notExist(id), "failed to update item")
	}
	return s.Get(ctx, id)
}

// UploadDocuments appends documents to an item and returns only the new entries.
func (s *Service) UploadDocuments(ctx context.Context, id string, uploads []storage.Upload, actor string) ([]entity.Document, error) {
	if len(uploads) == 0 {
		return nil, errorbank.BadRequest("documents is required")
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	ctx, span := serviceTracer.Start(ctx, "ItemService.UploadDocuments", trace.WithAttributes(
		attribute.String("item.id", id),
		attribute.Int("item.documents", len(uploads)),
	))
	defer span.End()

	docs, err := s.uploader.Save(ctx, uploads)
	if err != nil {
		return nil, service.Upload(span, err)
	}
	err = s.items.UpdateWhere(ctx,
		bson.M{"_id": current.ID},
		bson.M{
			"$push": bson.M{"document": bson.M{"$each": docs}},
			"$set":  bson.M{"updatedBy": actor, "updatedAt": s.now()},
		},
	)
	if err != nil {
		s.uploader.Rollback(context.WithoutCancel(ctx), docs)
		return nil, service.Store(span, err, notExist(id), "failed to attach documents")
	}
	return docs, nil
}

// DeleteDocument removes the stored file and then the metadata entry. When
// the file cannot be removed the entry is kept.
func (s *Service) DeleteDocument(ctx context.Context, id, documentID string) (*entity.Document, error) {
	docID, err := service.ParseID("documentId", documentID)
	if err != nil {
		return nil, err
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var doc *entity.Document
	for i := range current.Document {
		if current.Document[i].ID == docID {
			doc = &current.Document[i]
			break
		}
	}
	if doc == nil {
		return nil, errorbank.NotFound(fmt.Sprintf("Document with id %s does not exist", documentID))
	}

	ctx, span := serviceTracer.Start(ctx, "ItemService.DeleteDocument", trace.WithAttributes(
		attribute.String("item.id", id),
		attribute.String("document.id", documentID),
	))
	defer span.End()

	if err := s.uploader.Remove(ctx, *doc); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage error")
		return nil, errorbank.Internal("failed to remove document file", errorbank.WithCause(err))
	}
	if err := s.items.Pull(ctx, current.ID, "document", bson.M{"_id": docID}); err != nil {
		return nil, service.Store(span, err, notExist(id), "failed to detach document")
	}
	return doc, nil
}

// Delete removes every stored file of the item and then the item. Files
// already missing are skipped; any other storage failure keeps the item.
func (s *Service) Delete(ctx context.Context, id string) error {
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	ctx, span := serviceTracer.Start(ctx, "ItemService.Delete", trace.WithAttributes(
		attribute.String("item.id", id),
		attribute.Int("item.documents", len(current.Document)),
	))
	defer span.End()

	if err := s.uploader.Remove(ctx, current.Document...); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage error")
		s.logger.Error("item files not removed; item kept", zap.String("item_id", id), zap.Error(err))
		return errorbank.Internal("failed to remove item documents", errorbank.WithCause(err))
	}
	if err := s.items.Delete(ctx, current.ID); err != nil {
		return service.Store(span, err, notExist(id), "failed to delete item")
	}
	return nil
}
