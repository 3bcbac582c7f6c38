package dto

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Additional-Code/buyerdesk/internal/entity"
)

// RefEntryRequest creates a reference data entry.
type RefEntryRequest struct {
	Name      string `json:"name" validate:"required"`
	CompanyID string `json:"companyId" validate:"required"`
	ItemType  string `json:"itemType" validate:"omitempty,oneof=Category Group"`
}

// RefRenameRequest renames a reference data entry.
type RefRenameRequest struct {
	Name     string `json:"name" validate:"required"`
	ItemType string `json:"itemType" validate:"omitempty,oneof=Category Group"`
}

// RefListItem is the projected view of a reference entry.
type RefListItem struct {
	ID          primitive.ObjectID `json:"_id"`
	Name        string             `json:"name"`
	ItemType    string             `json:"itemType,omitempty"`
	CreatedDate time.Time          `json:"createdDate"`
}

// NewRefList maps projected entries to list views.
func NewRefList(entries []entity.RefEntry) []RefListItem {
	out := make([]RefListItem, 0, len(entries))
	for _, e := range entries {
		out = append(out, RefListItem{ID: e.ID, Name: e.Name, ItemType: e.ItemType, CreatedDate: e.CreatedDate})
	}
	return out
}

// CompanyEditRequest changes profile fields; absent fields are kept.
type CompanyEditRequest struct {
	CompanyName *string `json:"company_name" validate:"omitempty,min=1"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Phone       *string `json:"phone"`
	Address     *string `json:"address"`
	Country     *string `json:"country"`
}
