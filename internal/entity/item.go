package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Item is a catalogue entry a company procures.
type Item struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	ItemID       string             `bson:"itemId" json:"itemId"`
	ItemName     string             `bson:"item_name" json:"item_name"`
	Manufacturer string             `bson:"manufacturer,omitempty" json:"manufacturer,omitempty"`
	Notes        string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Unit         string             `bson:"unit,omitempty" json:"unit,omitempty"`
	Category     string             `bson:"category,omitempty" json:"category,omitempty"`
	Model        string             `bson:"model,omitempty" json:"model,omitempty"`
	Group        string             `bson:"group,omitempty" json:"group,omitempty"`
	Tags         []string           `bson:"tags" json:"tags"`
	ImageUpload  string             `bson:"image_upload,omitempty" json:"image_upload,omitempty"`
	CompanyName  string             `bson:"company_name,omitempty" json:"company_name,omitempty"`
	CompanyID    string             `bson:"companyId" json:"companyId"`
	Link         string             `bson:"link,omitempty" json:"link,omitempty"`
	Status       ItemStatus         `bson:"status" json:"status"`
	Document     []Document         `bson:"document" json:"document"`
	CreatedBy    string             `bson:"createdBy" json:"createdBy"`
	UpdatedBy    string             `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}
