package repository

import (
	"go.uber.org/fx"

	"github.com/Additional-Code/buyerdesk/internal/database"
	"github.com/Additional-Code/buyerdesk/internal/entity"
)

// Collection names.
const (
	ProjectsCollection  = "projects"
	BudgetsCollection   = "budgets"
	AuctionsCollection  = "auctions"
	ItemsCollection     = "items"
	CompaniesCollection = "companies"
)

// RefStores maps each reference data kind to its store.
type RefStores map[entity.RefKind]Store[entity.RefEntry]

// Module provides one Store per collection to Fx.
var Module = fx.Provide(
	func(conns *database.Connections) Store[entity.Project] {
		return NewCollection[entity.Project](conns.DB, ProjectsCollection)
	},
	func(conns *database.Connections) Store[entity.Budget] {
		return NewCollection[entity.Budget](conns.DB, BudgetsCollection)
	},
	func(conns *database.Connections) Store[entity.Auction] {
		return NewCollection[entity.Auction](conns.DB, AuctionsCollection)
	},
	func(conns *database.Connections) Store[entity.Item] {
		return NewCollection[entity.Item](conns.DB, ItemsCollection)
	},
	func(conns *database.Connections) Store[entity.Company] {
		return NewCollection[entity.Company](conns.DB, CompaniesCollection)
	},
	NewRefStores,
)

// NewRefStores binds every reference data kind to its collection.
func NewRefStores(conns *database.Connections) RefStores {
	stores := make(RefStores, len(entity.RefKinds))
	for _, kind := range entity.RefKinds {
		stores[kind] = NewCollection[entity.RefEntry](conns.DB, kind.Collection())
	}
	return stores
}
