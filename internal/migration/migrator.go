package migration

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/buyerdesk/internal/database"
	"github.com/Additional-Code/buyerdesk/internal/entity"
	"github.com/Additional-Code/buyerdesk/internal/repository"
)

const versionsCollection = "schema_migrations"

// Server error codes tolerated when dropping indexes.
const (
	codeNamespaceNotFound = 26
	codeIndexNotFound     = 27
)

// Module exposes the migrator to Fx.
var Module = fx.Provide(New)

// Index is one secondary index owned by a migration.
type Index struct {
	Collection string
	Name       string
	Keys       bson.D
	Unique     bool
}

// Migration is a numbered set of indexes applied and rolled back together.
type Migration struct {
	Version int
	Name    string
	Indexes []Index
}

type appliedVersion struct {
	Version   int       `bson:"_id"`
	Name      string    `bson:"name"`
	AppliedAt time.Time `bson:"appliedAt"`
}

// Migrations lists the schema history in apply order.
func Migrations() []Migration {
	refs := make([]Index, 0, len(entity.RefKinds))
	for _, kind := range entity.RefKinds {
		refs = append(refs, Index{
			Collection: kind.Collection(),
			Name:       "companyId_name",
			Keys:       bson.D{{Key: "companyId", Value: 1}, {Key: "name", Value: 1}},
		})
	}
	return []Migration{
		{Version: 1, Name: "project_indexes", Indexes: []Index{
			{Collection: repository.ProjectsCollection, Name: "companyId", Keys: bson.D{{Key: "companyId", Value: 1}}},
			{Collection: repository.BudgetsCollection, Name: "projectId", Keys: bson.D{{Key: "projectId", Value: 1}}},
		}},
		{Version: 2, Name: "auction_indexes", Indexes: []Index{
			{Collection: repository.AuctionsCollection, Name: "userId", Keys: bson.D{{Key: "userId", Value: 1}}},
			{Collection: repository.AuctionsCollection, Name: "supplier_email", Keys: bson.D{{Key: "auctions.supplier_email", Value: 1}}},
		}},
		{Version: 3, Name: "item_indexes", Indexes: []Index{
			{Collection: repository.ItemsCollection, Name: "companyId", Keys: bson.D{{Key: "companyId", Value: 1}}},
		}},
		{Version: 4, Name: "reference_indexes", Indexes: append(refs, Index{
			Collection: repository.CompaniesCollection,
			Name:       "company_name",
			Keys:       bson.D{{Key: "company_name", Value: 1}},
		})},
	}
}

// Migrator applies and rolls back index migrations, recording progress in
// the schema_migrations collection.
type Migrator struct {
	db         *mongo.Database
	migrations []Migration
	logger     *zap.Logger
}

// New constructs a migrator over the application database.
func New(conns *database.Connections, logger *zap.Logger) *Migrator {
	return &Migrator{db: conns.DB, migrations: Migrations(), logger: logger}
}

// Up applies all pending migrations.
func (m *Migrator) Up(ctx context.Context) error {
	applied, err := m.applied(ctx)
	if err != nil {
		return err
	}

	todo := Pending(m.migrations, applied)
	if len(todo) == 0 {
		m.logger.Info("no migrations to apply")
		return nil
	}

	for _, mig := range todo {
		if err := m.create(ctx, mig); err != nil {
			return fmt.Errorf("apply %d_%s: %w", mig.Version, mig.Name, err)
		}
		record := appliedVersion{Version: mig.Version, Name: mig.Name, AppliedAt: time.Now().UTC()}
		if _, err := m.db.Collection(versionsCollection).InsertOne(ctx, record); err != nil {
			return fmt.Errorf("record %d_%s: %w", mig.Version, mig.Name, err)
		}
		m.logger.Info("migration applied", zap.Int("version", mig.Version), zap.String("name", mig.Name))
	}

	m.logger.Info("migrations applied", zap.Int("count", len(todo)))
	return nil
}

// Down rolls back migrations. Steps <=0 defaults to 1; all=true rolls everything back.
func (m *Migrator) Down(ctx context.Context, steps int, all bool) error {
	applied, err := m.applied(ctx)
	if err != nil {
		return err
	}

	todo := Rollback(m.migrations, applied, steps, all)
	if len(todo) == 0 {
		m.logger.Info("no migrations to rollback")
		return nil
	}

	for _, mig := range todo {
		if err := m.drop(ctx, mig); err != nil {
			return fmt.Errorf("rollback %d_%s: %w", mig.Version, mig.Name, err)
		}
		if _, err := m.db.Collection(versionsCollection).DeleteOne(ctx, bson.M{"_id": mig.Version}); err != nil {
			return fmt.Errorf("unrecord %d_%s: %w", mig.Version, mig.Name, err)
		}
		m.logger.Info("migration rolled back", zap.Int("version", mig.Version), zap.String("name", mig.Name))
	}

	m.logger.Info("migrations rolled back", zap.Int("steps", len(todo)))
	return nil
}

func (m *Migrator) applied(ctx context.Context) (map[int]bool, error) {
	cur, err := m.db.Collection(versionsCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("load applied migrations: %w", err)
	}
	var rows []appliedVersion
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode applied migrations: %w", err)
	}
	out := make(map[int]bool, len(rows))
	for _, row := range rows {
		out[row.Version] = true
	}
	return out, nil
}

func (m *Migrator) create(ctx context.Context, mig Migration) error {
	for _, idx := range mig.Indexes {
		model := mongo.IndexModel{
			Keys:    idx.Keys,
			Options: options.Index().SetName(idx.Name).SetUnique(idx.Unique),
		}
		if _, err := m.db.Collection(idx.Collection).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("create index %s.%s: %w", idx.Collection, idx.Name, err)
		}
	}
	return nil
}

func (m *Migrator) drop(ctx context.Context, mig Migration) error {
	for _, idx := range mig.Indexes {
		_, err := m.db.Collection(idx.Collection).Indexes().DropOne(ctx, idx.Name)
		if err != nil && !isMissing(err) {
			return fmt.Errorf("drop index %s.%s: %w", idx.Collection, idx.Name, err)
		}
	}
	return nil
}

// Pending returns migrations not yet applied, in version order.
func Pending(all []Migration, applied map[int]bool) []Migration {
	sorted := sortedByVersion(all)
	out := make([]Migration, 0, len(sorted))
	for _, mig := range sorted {
		if !applied[mig.Version] {
			out = append(out, mig)
		}
	}
	return out
}

// Rollback returns the applied migrations to undo, newest first.
func Rollback(all []Migration, applied map[int]bool, steps int, everything bool) []Migration {
	if steps <= 0 {
		steps = 1
	}
	sorted := sortedByVersion(all)
	out := make([]Migration, 0, len(sorted))
	for i := len(sorted) - 1; i >= 0; i-- {
		if !applied[sorted[i].Version] {
			continue
		}
		if !everything && len(out) == steps {
			break
		}
		out = append(out, sorted[i])
	}
	return out
}

func sortedByVersion(all []Migration) []Migration {
	sorted := append([]Migration(nil), all...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Version < sorted[j].Version })
	return sorted
}

func isMissing(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Code == codeIndexNotFound || cmdErr.Code == codeNamespaceNotFound
	}
	return false
}
