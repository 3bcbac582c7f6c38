package company

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/buyerdesk/internal/cache"
	"github.com/Additional-Code/buyerdesk/internal/config"
	"github.com/Additional-Code/buyerdesk/internal/dto"
	"github.com/Additional-Code/buyerdesk/internal/entity"
	"github.com/Additional-Code/buyerdesk/internal/repository"
	"github.com/Additional-Code/buyerdesk/internal/service"
	"github.com/Additional-Code/buyerdesk/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/Additional-Code/buyerdesk/service/company")

// RefProjection returns the field set listed for kind.
func RefProjection(kind entity.RefKind) bson.M {
	p := bson.M{"_id": 1, "name": 1, "createdDate": 1}
	if kind == entity.RefItemGroups {
		p["itemType"] = 1
	}
	return p
}

// Service manages company profiles and their reference data lists.
type Service struct {
	refs      repository.RefStores
	companies repository.Store[entity.Company]
	cache     cache.Store
	cacheTTL  time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Refs      repository.RefStores
	Companies repository.Store[entity.Company]
	Cache     cache.Store
	Config    config.Config
	Logger    *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		refs:      p.Refs,
		companies: p.Companies,
		cache:     p.Cache,
		cacheTTL:  p.Config.Cache.DefaultTTL,
		logger:    p.Logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) store(kind entity.RefKind) (repository.Store[entity.RefEntry], error) {
	st, ok := s.refs[kind]
	if !ok {
		return nil, errorbank.BadRequest(fmt.Sprintf("unknown reference list %q", kind))
	}
	return st, nil
}

func cacheKey(kind entity.RefKind, companyID string) string {
	return cache.Key("refdata", string(kind), companyID)
}

// ListRefs returns the projected entries of one reference list, served
// from cache when possible.
func (s *Service) ListRefs(ctx context.Context, kind entity.RefKind, companyID string) ([]entity.RefEntry, error) {
	st, err := s.store(kind)
	if err != nil {
		return nil, err
	}
	ctx, span := serviceTracer.Start(ctx, "CompanyService.ListRefs", trace.WithAttributes(
		attribute.String("ref.kind", string(kind)),
		attribute.String("company.id", companyID),
	))
	defer span.End()

	key := cacheKey(kind, companyID)
	var cached []entity.RefEntry
	switch err := cache.GetJSON(ctx, s.cache, key, &cached); {
	case err == nil && len(cached) > 0:
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return cached, nil
	case err != nil && !errors.Is(err, cache.ErrCacheMiss):
		s.logger.Warn("refdata cache read failed", zap.String("key", key), zap.Error(err))
	}

	entries, err := st.Find(ctx, bson.M{"companyId": companyID}, RefProjection(kind))
	if err != nil {
		return nil, service.Store(span, err, service.NoRecords, "failed to list "+string(kind))
	}
	if len(entries) == 0 {
		return nil, errorbank.NotFound(service.NoRecords)
	}
	if err := cache.SetJSON(ctx, s.cache, key, entries, s.cacheTTL); err != nil {
		s.logger.Warn("refdata cache write failed", zap.String("key", key), zap.Error(err))
	}
	return entries, nil
}

func (s *Service) invalidate(ctx context.Context, kind entity.RefKind, companyID string) {
	key := cacheKey(kind, companyID)
	if err := s.cache.Delete(ctx, key); err != nil {
		s.logger.Warn("refdata cache invalidation failed", zap.String("key", key), zap.Error(err))
	}
}

// CreateRef adds an entry to a reference list. Item groups must say
// whether they are a Category or a Group; other kinds carry no item type.
func (s *Service) CreateRef(ctx context.Context, kind entity.RefKind, entry *entity.RefEntry, actor string) error {
	st, err := s.store(kind)
	if err != nil {
		return err
	}
	if kind == entity.RefItemGroups {
		if entry.ItemType != entity.ItemTypeCategory && entry.ItemType != entity.ItemTypeGroup {
			return errorbank.BadRequest("itemType is required")
		}
	} else {
		entry.ItemType = ""
	}

	ctx, span := serviceTracer.Start(ctx, "CompanyService.CreateRef", trace.WithAttributes(
		attribute.String("ref.kind", string(kind)),
		attribute.String("company.id", entry.CompanyID),
	))
	defer span.End()

	entry.CreatedBy = actor
	entry.CreatedDate = s.now()
	id, err := st.Insert(ctx, entry)
	if err != nil {
		return service.Store(span, err, service.NoRecords, "failed to create "+kind.Label())
	}
	entry.ID = id
	s.invalidate(ctx, kind, entry.CompanyID)
	return nil
}

// RenameRef changes the name, and for item groups optionally the type, of an entry.
func (s *Service) RenameRef(ctx context.Context, kind entity.RefKind, id string, req dto.RefRenameRequest, actor string) (*entity.RefEntry, error) {
	st, err := s.store(kind)
	if err != nil {
		return nil, err
	}
	oid, err := service.ParseID("id", id)
	if err != nil {
		return nil, err
	}
	ctx, span := serviceTracer.Start(ctx, "CompanyService.RenameRef", trace.WithAttributes(
		attribute.String("ref.kind", string(kind)),
		attribute.String("ref.id", id),
	))
	defer span.End()

	missing := fmt.Sprintf("%s with id %s does not exist", kind.Label(), id)
	entry, err := st.FindByID(ctx, oid)
	if err != nil {
		return nil, service.Store(span, err, missing, "failed to load "+kind.Label())
	}

	set := bson.M{"name": req.Name, "updatedBy": actor}
	if kind == entity.RefItemGroups && req.ItemType != "" {
		set["itemType"] = req.ItemType
		entry.ItemType = req.ItemType
	}
	if err := st.UpdateFields(ctx, oid, set); err != nil {
		return nil, service.Store(span, err, missing, "failed to update "+kind.Label())
	}
	entry.Name = req.Name
	entry.UpdatedBy = actor
	s.invalidate(ctx, kind, entry.CompanyID)
	return entry, nil
}

// DeleteRef removes an entry from a reference list.
func (s *Service) DeleteRef(ctx context.Context, kind entity.RefKind, id string) error {
	st, err := s.store(kind)
	if err != nil {
		return err
	}
	oid, err := service.ParseID("id", id)
	if err != nil {
		return err
	}
	ctx, span := serviceTracer.Start(ctx, "CompanyService.DeleteRef", trace.WithAttributes(
		attribute.String("ref.kind", string(kind)),
		attribute.String("ref.id", id),
	))
	defer span.End()

	missing := fmt.Sprintf("%s with id %s does not exist", kind.Label(), id)
	entry, err := st.FindByID(ctx, oid)
	if err != nil {
		return service.Store(span, err, missing, "failed to load "+kind.Label())
	}
	if err := st.Delete(ctx, oid); err != nil {
		return service.Store(span, err, missing, "failed to delete "+kind.Label())
	}
	s.invalidate(ctx, kind, entry.CompanyID)
	return nil
}

// Profile finds a company by its name.
func (s *Service) Profile(ctx context.Context, companyName string) (*entity.Company, error) {
	ctx, span := serviceTracer.Start(ctx, "CompanyService.Profile", trace.WithAttributes(attribute.String("company.name", companyName)))
	defer span.End()

	company, err := s.companies.FindOne(ctx, bson.M{"company_name": companyName})
	if err != nil {
		return nil, service.Store(span, err, service.NoRecords, "failed to load company")
	}
	return company, nil
}

// EditProfile applies the provided profile fields.
func (s *Service) EditProfile(ctx context.Context, id string, req dto.CompanyEditRequest, actor string) (*entity.Company, error) {
	oid, err := service.ParseID("id", id)
	if err != nil {
		return nil, err
	}
	ctx, span := serviceTracer.Start(ctx, "CompanyService.EditProfile", trace.WithAttributes(attribute.String("company.id", id)))
	defer span.End()

	set := bson.M{"updatedBy": actor, "updatedAt": s.now()}
	for field, v := range map[string]*string{
		"company_name": req.CompanyName,
		"email":        req.Email,
		"phone":        req.Phone,
		"address":      req.Address,
		"country":      req.Country,
	} {
		if v != nil {
			set[field] = *v
		}
	}

	missing := fmt.Sprintf("Company with id %s does not exist", id)
	if err := s.companies.UpdateFields(ctx, oid, set); err != nil {
		return nil, service.Store(span, err, missing, "failed to update company")
	}
	company, err := s.companies.FindByID(ctx, oid)
	if err != nil {
		return nil, service.Store(span, err, missing, "failed to load company")
	}
	return company, nil
}
