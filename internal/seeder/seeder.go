package seeder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/buyerdesk/internal/entity"
	"github.com/Additional-Code/buyerdesk/internal/repository"
)

// DemoCompany is the profile created for local setups.
const DemoCompany = "Demo Buyer Ltd"

const seedActor = "seeder"

// Module exposes the seeder to Fx.
var Module = fx.Provide(New)

// Params defines dependencies for the seeder.
type Params struct {
	fx.In

	Companies repository.Store[entity.Company]
	Refs      repository.RefStores
	Logger    *zap.Logger
}

// Seeder performs database seeding for local/dev setups.
type Seeder struct {
	companies repository.Store[entity.Company]
	refs      repository.RefStores
	logger    *zap.Logger
	now       func() time.Time
}

// New constructs a Seeder over the repository stores.
func New(p Params) *Seeder {
	return &Seeder{companies: p.Companies, refs: p.Refs, logger: p.Logger, now: time.Now}
}

// DemoRefs is the reference data seeded for the demo company.
var DemoRefs = map[entity.RefKind][]entity.RefEntry{
	entity.RefTags: {
		{Name: "urgent"},
		{Name: "recurring"},
	},
	entity.RefItemGroups: {
		{Name: "Electrical", ItemType: entity.ItemTypeCategory},
		{Name: "Cabling", ItemType: entity.ItemTypeGroup},
	},
	entity.RefSupplierCategories: {
		{Name: "Contractor"},
		{Name: "Distributor"},
	},
	entity.RefCostCenters: {
		{Name: "CC-100 Operations"},
		{Name: "CC-200 Capital Works"},
	},
}

// Run seeds the demo company and its reference data. Existing rows are left
// untouched so the command can be repeated.
func (s *Seeder) Run(ctx context.Context) error {
	companyID, err := s.Company(ctx)
	if err != nil {
		return err
	}
	return s.RefData(ctx, companyID)
}

// Company ensures the demo company profile exists and returns its id.
func (s *Seeder) Company(ctx context.Context) (string, error) {
	existing, err := s.companies.FindOne(ctx, bson.M{"company_name": DemoCompany})
	switch {
	case err == nil:
		return existing.ID.Hex(), nil
	case !errors.Is(err, repository.ErrNotFound):
		return "", fmt.Errorf("lookup company: %w", err)
	}

	now := s.now().UTC()
	id, err := s.companies.Insert(ctx, &entity.Company{
		CompanyName: DemoCompany,
		Email:       "procurement@demo-buyer.test",
		Country:     "AU",
		CreatedBy:   seedActor,
		UpdatedAt:   now,
	})
	if err != nil {
		return "", fmt.Errorf("insert company: %w", err)
	}
	s.logger.Info("seeded company", zap.String("company", DemoCompany), zap.String("id", id.Hex()))
	return id.Hex(), nil
}

// RefData inserts missing demo reference entries for companyID.
func (s *Seeder) RefData(ctx context.Context, companyID string) error {
	inserted := 0
	for _, kind := range entity.RefKinds {
		store, ok := s.refs[kind]
		if !ok {
			continue
		}
		for _, sample := range DemoRefs[kind] {
			_, err := store.FindOne(ctx, bson.M{"companyId": companyID, "name": sample.Name})
			if err == nil {
				continue
			}
			if !errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("lookup %s %q: %w", kind, sample.Name, err)
			}
			entry := sample
			entry.CompanyID = companyID
			entry.CreatedBy = seedActor
			entry.CreatedDate = s.now().UTC()
			if _, err := store.Insert(ctx, &entry); err != nil {
				return fmt.Errorf("insert %s %q: %w", kind, sample.Name, err)
			}
			inserted++
		}
	}
	s.logger.Info("seeded reference data", zap.String("companyId", companyID), zap.Int("count", inserted))
	return nil
}
