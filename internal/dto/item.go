package dto

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Additional-Code/buyerdesk/internal/entity"
)

// ItemFields are the catalogue fields shared by create and draft.
type ItemFields struct {
	ItemID       string   `json:"itemId" form:"itemId"`
	Manufacturer string   `json:"manufacturer" form:"manufacturer"`
	Notes        string   `json:"notes" form:"notes"`
	Unit         string   `json:"unit" form:"unit"`
	Category     string   `json:"category" form:"category"`
	Model        string   `json:"model" form:"model"`
	Group        string   `json:"group" form:"group"`
	Tags         []string `json:"tags" form:"tags"`
	ImageUpload  string   `json:"image_upload" form:"image_upload"`
	CompanyName  string   `json:"company_name" form:"company_name"`
	CompanyID    string   `json:"companyId" form:"companyId" validate:"required"`
	Link         string   `json:"link" form:"link"`
}

// ItemRequest creates a catalogue item.
type ItemRequest struct {
	ItemName string `json:"item_name" form:"item_name" validate:"required"`
	Status   string `json:"status" form:"status" validate:"omitempty,oneof=draft active"`
	ItemFields
}

// ItemDraftRequest saves an item as draft.
type ItemDraftRequest struct {
	ItemName string `json:"item_name" form:"item_name"`
	ItemFields
}

// Entity converts the request into a new item.
func (r ItemRequest) Entity() *entity.Item {
	item := r.ItemFields.entity(r.ItemName)
	item.Status = entity.ItemStatus(r.Status)
	if item.Status == "" {
		item.Status = entity.ItemActive
	}
	return item
}

// Entity converts the draft into a new item in draft state.
func (r ItemDraftRequest) Entity() *entity.Item {
	item := r.ItemFields.entity(r.ItemName)
	item.Status = entity.ItemDraft
	return item
}

func (f ItemFields) entity(name string) *entity.Item {
	tags := f.Tags
	if tags == nil {
		tags = []string{}
	}
	return &entity.Item{
		ItemID:       f.ItemID,
		ItemName:     name,
		Manufacturer: f.Manufacturer,
		Notes:        f.Notes,
		Unit:         f.Unit,
		Category:     f.Category,
		Model:        f.Model,
		Group:        f.Group,
		Tags:         tags,
		ImageUpload:  f.ImageUpload,
		CompanyName:  f.CompanyName,
		CompanyID:    f.CompanyID,
		Link:         f.Link,
		Document:     []entity.Document{},
	}
}

// ItemEditRequest carries the fields to change; absent fields are kept.
type ItemEditRequest struct {
	ItemID       *string   `json:"itemId"`
	ItemName     *string   `json:"item_name" validate:"omitempty,min=1"`
	Manufacturer *string   `json:"manufacturer"`
	Notes        *string   `json:"notes"`
	Unit         *string   `json:"unit"`
	Category     *string   `json:"category"`
	Model        *string   `json:"model"`
	Group        *string   `json:"group"`
	Tags         *[]string `json:"tags"`
	ImageUpload  *string   `json:"image_upload"`
	CompanyName  *string   `json:"company_name"`
	Link         *string   `json:"link"`
	Status       *string   `json:"status" validate:"omitempty,oneof=draft active archived"`
}

// ItemListItem is the projected view returned by item lists.
type ItemListItem struct {
	ID           primitive.ObjectID `json:"_id"`
	ItemID       string             `json:"itemId"`
	ItemName     string             `json:"item_name"`
	Manufacturer string             `json:"manufacturer"`
	Notes        string             `json:"notes"`
	Unit         string             `json:"unit"`
	Category     string             `json:"category"`
	Model        string             `json:"model"`
	Group        string             `json:"group"`
	Tags         []string           `json:"tags"`
	ImageUpload  string             `json:"image_upload"`
	CompanyName  string             `json:"company_name"`
	Link         string             `json:"link"`
	Status       entity.ItemStatus  `json:"status"`
	Document     []entity.Document  `json:"document"`
}

// NewItemList maps projected documents to list views.
func NewItemList(items []entity.Item) []ItemListItem {
	out := make([]ItemListItem, 0, len(items))
	for _, it := range items {
		tags, docs := it.Tags, it.Document
		if tags == nil {
			tags = []string{}
		}
		if docs == nil {
			docs = []entity.Document{}
		}
		out = append(out, ItemListItem{
			ID:           it.ID,
			ItemID:       it.ItemID,
			ItemName:     it.ItemName,
			Manufacturer: it.Manufacturer,
			Notes:        it.Notes,
			Unit:         it.Unit,
			Category:     it.Category,
			Model:        it.Model,
			Group:        it.Group,
			Tags:         tags,
			ImageUpload:  it.ImageUpload,
			CompanyName:  it.CompanyName,
			Link:         it.Link,
			Status:       it.Status,
			Document:     docs,
		})
	}
	return out
}
