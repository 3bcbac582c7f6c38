package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RefKind names a company-scoped reference data list.
type RefKind string

const (
	RefTags               RefKind = "tags"
	RefItemGroups         RefKind = "item-groups"
	RefSupplierCategories RefKind = "supplier-categories"
	RefCostCenters        RefKind = "cost-centers"
)

// RefKinds lists every reference data kind in route order.
var RefKinds = []RefKind{RefTags, RefItemGroups, RefSupplierCategories, RefCostCenters}

// Collection returns the mongo collection backing the kind.
func (k RefKind) Collection() string {
	switch k {
	case RefTags:
		return "tags"
	case RefItemGroups:
		return "itemscatandgroups"
	case RefSupplierCategories:
		return "suppliercategories"
	case RefCostCenters:
		return "costcenters"
	default:
		return ""
	}
}

// Label is the human name used in response descriptions.
func (k RefKind) Label() string {
	switch k {
	case RefTags:
		return "Tag"
	case RefItemGroups:
		return "Item category/group"
	case RefSupplierCategories:
		return "Supplier category"
	case RefCostCenters:
		return "Cost center"
	default:
		return string(k)
	}
}

// Item types carried by item-groups entries.
const (
	ItemTypeCategory = "Category"
	ItemTypeGroup    = "Group"
)

// RefEntry is one named entry of a reference data list.
type RefEntry struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name        string             `bson:"name" json:"name"`
	ItemType    string             `bson:"itemType,omitempty" json:"itemType,omitempty"`
	CompanyID   string             `bson:"companyId" json:"companyId"`
	CreatedBy   string             `bson:"createdBy" json:"createdBy"`
	UpdatedBy   string             `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`
	CreatedDate time.Time          `bson:"createdDate" json:"createdDate"`
}

// Company is the buyer organisation profile.
type Company struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	CompanyName string             `bson:"company_name" json:"company_name"`
	Email       string             `bson:"email,omitempty" json:"email,omitempty"`
	Phone       string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Address     string             `bson:"address,omitempty" json:"address,omitempty"`
	Country     string             `bson:"country,omitempty" json:"country,omitempty"`
	CreatedBy   string             `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	UpdatedBy   string             `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`
	UpdatedAt   time.Time          `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}
