package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProjectUser assigns a user a role on a project.
type ProjectUser struct {
	User string `bson:"user" json:"user"`
	Role string `bson:"role" json:"role"`
}

// Project is a buyer-side procurement project owned by a company.
type Project struct {
	ID                     primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	ProjectName            string               `bson:"project_name" json:"project_name"`
	StartDate              *time.Time           `bson:"startDate,omitempty" json:"startDate,omitempty"`
	EndDate                *time.Time           `bson:"endDate,omitempty" json:"endDate,omitempty"`
	Description            string               `bson:"description,omitempty" json:"description,omitempty"`
	Location               string               `bson:"location,omitempty" json:"location,omitempty"`
	Currency               string               `bson:"currency,omitempty" json:"currency,omitempty"`
	ProjectReferenceNumber string               `bson:"project_reference_number,omitempty" json:"project_reference_number,omitempty"`
	ProjectManager         string               `bson:"project_manager,omitempty" json:"project_manager,omitempty"`
	BusinessUnit           string               `bson:"business_unit,omitempty" json:"business_unit,omitempty"`
	Unit                   string               `bson:"unit,omitempty" json:"unit,omitempty"`
	Department             string               `bson:"department,omitempty" json:"department,omitempty"`
	ProjectStatus          ProjectStatus        `bson:"project_status" json:"project_status"`
	Image                  string               `bson:"image,omitempty" json:"image,omitempty"`
	CompanyID              string               `bson:"companyId" json:"companyId"`
	Users                  []ProjectUser        `bson:"users" json:"users"`
	Budgets                []primitive.ObjectID `bson:"budgets" json:"budgets"`
	CreatedBy              string               `bson:"createdBy" json:"createdBy"`
	UpdatedBy              string               `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`
	CreatedAt              time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt              time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// Budget is an amount allocated to a project against a cost center.
type Budget struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Budget     Money              `bson:"budget" json:"budget"`
	CostCenter string             `bson:"costCenter" json:"costCenter"`
	ProjectID  primitive.ObjectID `bson:"projectId" json:"projectId"`
	CompanyID  string             `bson:"companyId" json:"companyId"`
	CreatedBy  string             `bson:"createdBy" json:"createdBy"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}
