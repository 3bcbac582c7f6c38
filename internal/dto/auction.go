package dto

import (
	"encoding/json"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Additional-Code/buyerdesk/internal/entity"
)

// AuctionTermsRequest carries the commercial terms copied onto every
// supplier line. It binds from JSON and multipart forms alike.
type AuctionTermsRequest struct {
	Name             string      `json:"name" form:"name" validate:"required"`
	Owner            string      `json:"owner" form:"owner"`
	Description      string      `json:"description" form:"description"`
	StartDate        string      `json:"start_date" form:"start_date"`
	EndDate          string      `json:"end_date" form:"end_date"`
	StartingPrice    json.Number `json:"starting_price" form:"starting_price" validate:"omitempty,numeric"`
	CostCenter       string      `json:"cost_center" form:"cost_center"`
	Currency         string      `json:"currency" form:"currency" validate:"omitempty,len=3"`
	Budget           json.Number `json:"budget" form:"budget" validate:"omitempty,numeric"`
	MinimumStep      json.Number `json:"minimum_step" form:"minimum_step" validate:"omitempty,numeric"`
	CoolDownPeriod   int         `json:"cool_down_period" form:"cool_down_period" validate:"gte=0"`
	Item             string      `json:"item" form:"item"`
	CompanyBuyerName string      `json:"company_buyer_name" form:"company_buyer_name"`
}

// Terms parses dates and amounts.
func (r AuctionTermsRequest) Terms() (entity.AuctionTerms, error) {
	var (
		t   entity.AuctionTerms
		err error
	)
	if t.StartDate, err = ParseDate("start_date", r.StartDate); err != nil {
		return t, err
	}
	if t.EndDate, err = ParseDate("end_date", r.EndDate); err != nil {
		return t, err
	}
	if t.StartDate != nil && t.EndDate != nil && t.EndDate.Before(*t.StartDate) {
		return t, errEndBeforeStart
	}
	if t.StartingPrice, err = ParseMoney("starting_price", r.StartingPrice.String()); err != nil {
		return t, err
	}
	if t.Budget, err = ParseMoney("budget", r.Budget.String()); err != nil {
		return t, err
	}
	if t.MinimumStep, err = ParseMoney("minimum_step", r.MinimumStep.String()); err != nil {
		return t, err
	}
	t.Name = r.Name
	t.Owner = r.Owner
	t.Description = r.Description
	t.CostCenter = r.CostCenter
	t.Currency = r.Currency
	t.CoolDownPeriod = r.CoolDownPeriod
	t.Item = r.Item
	t.CompanyBuyerName = r.CompanyBuyerName
	return t, nil
}

// AuctionRequest publishes an auction to a list of suppliers.
type AuctionRequest struct {
	AuctionTermsRequest
	UserID         string   `json:"userId" form:"userId" validate:"required"`
	Link           string   `json:"link" form:"link"`
	BuyerStatus    string   `json:"buyer_status" form:"buyer_status" validate:"omitempty,oneof=draft published"`
	SuppliersEmail []string `json:"suppliers_email" form:"suppliers_email" validate:"required,min=1,dive,email"`
}

// AuctionDraftRequest saves an auction without inviting anyone.
type AuctionDraftRequest struct {
	AuctionTermsRequest
	UserID         string   `json:"userId" form:"userId" validate:"required"`
	Link           string   `json:"link" form:"link"`
	SuppliersEmail []string `json:"suppliers_email" form:"suppliers_email" validate:"omitempty,dive,email"`
}

// AuctionEditRequest either adds suppliers, when SuppliersEmail is set, or
// rewrites the shared terms on the auction and every line.
type AuctionEditRequest struct {
	AuctionTermsRequest
	Link           string   `json:"link"`
	BuyerStatus    string   `json:"buyer_status" validate:"omitempty,oneof=draft published closed cancelled"`
	SuppliersEmail []string `json:"suppliers_email" validate:"omitempty,dive,email"`
}

// SupplierStatusRequest records a supplier's answer.
type SupplierStatusRequest struct {
	SupplierStatus string `json:"supplier_status" validate:"required,oneof=pending accepted declined"`
}

// NormalizeEmails trims, lowercases and de-duplicates addresses, keeping
// first-seen order.
func NormalizeEmails(emails []string) []string {
	seen := make(map[string]struct{}, len(emails))
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}

// SupplierAuction is one auction as seen by an invited supplier.
type SupplierAuction struct {
	AuctionID    primitive.ObjectID   `json:"auctionId"`
	Link         string               `json:"link,omitempty"`
	DocumentPath []entity.Document    `json:"documentPath"`
	Lines        []entity.AuctionLine `json:"auctions"`
}

// NewSupplierAuctions keeps only the lines addressed to email.
func NewSupplierAuctions(auctions []entity.Auction, email string) []SupplierAuction {
	out := make([]SupplierAuction, 0, len(auctions))
	for _, a := range auctions {
		lines := make([]entity.AuctionLine, 0, 1)
		for _, line := range a.Lines {
			if line.SupplierEmail == email {
				lines = append(lines, line)
			}
		}
		docs := a.DocumentPath
		if docs == nil {
			docs = []entity.Document{}
		}
		out = append(out, SupplierAuction{
			AuctionID:    a.ID,
			Link:         a.Link,
			DocumentPath: docs,
			Lines:        lines,
		})
	}
	return out
}
