package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuctionTerms are the commercial fields shared by an auction and every
// per-supplier line derived from it.
type AuctionTerms struct {
	Name             string     `bson:"name" json:"name"`
	Owner            string     `bson:"owner,omitempty" json:"owner,omitempty"`
	Description      string     `bson:"description,omitempty" json:"description,omitempty"`
	StartDate        *time.Time `bson:"start_date,omitempty" json:"start_date,omitempty"`
	EndDate          *time.Time `bson:"end_date,omitempty" json:"end_date,omitempty"`
	StartingPrice    Money      `bson:"starting_price" json:"starting_price"`
	CostCenter       string     `bson:"cost_center,omitempty" json:"cost_center,omitempty"`
	Currency         string     `bson:"currency,omitempty" json:"currency,omitempty"`
	Budget           Money      `bson:"budget" json:"budget"`
	MinimumStep      Money      `bson:"minimum_step" json:"minimum_step"`
	CoolDownPeriod   int        `bson:"cool_down_period,omitempty" json:"cool_down_period,omitempty"`
	Item             string     `bson:"item,omitempty" json:"item,omitempty"`
	CompanyBuyerName string     `bson:"company_buyer_name,omitempty" json:"company_buyer_name,omitempty"`
}

// AuctionLine is the invitation of one supplier to an auction.
type AuctionLine struct {
	AuctionTerms   `bson:",inline"`
	SupplierEmail  string         `bson:"supplier_email" json:"supplier_email"`
	SupplierStatus SupplierStatus `bson:"supplier_status" json:"supplier_status"`
}

// Auction is a reverse auction published by a buyer.
type Auction struct {
	AuctionTerms `bson:",inline"`
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID       string             `bson:"userId" json:"userId"`
	Link         string             `bson:"link,omitempty" json:"link,omitempty"`
	BuyerStatus  BuyerStatus        `bson:"buyer_status" json:"buyer_status"`
	Lines        []AuctionLine      `bson:"auctions" json:"auctions"`
	DocumentPath []Document         `bson:"documentPath" json:"documentPath"`
	CreatedBy    string             `bson:"createdBy" json:"createdBy"`
	UpdatedBy    string             `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// HasSupplier reports whether email already has a line on the auction.
func (a *Auction) HasSupplier(email string) bool {
	for _, line := range a.Lines {
		if line.SupplierEmail == email {
			return true
		}
	}
	return false
}

// Recipients returns the supplier addresses invited to the auction.
func (a *Auction) Recipients() []string {
	out := make([]string, 0, len(a.Lines))
	for _, line := range a.Lines {
		out = append(out, line.SupplierEmail)
	}
	return out
}
