package dto

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Additional-Code/buyerdesk/internal/entity"
)

// ProjectUserRequest assigns a role on a project.
type ProjectUserRequest struct {
	User string `json:"user" validate:"required"`
	Role string `json:"role" validate:"required"`
}

// ProjectRoleRequest changes the role of an assigned user.
type ProjectRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// ProjectFields are the optional descriptive fields of a project.
type ProjectFields struct {
	StartDate              string               `json:"startDate"`
	EndDate                string               `json:"endDate"`
	Description            string               `json:"description"`
	Location               string               `json:"location"`
	Currency               string               `json:"currency" validate:"omitempty,len=3"`
	ProjectReferenceNumber string               `json:"project_reference_number"`
	ProjectManager         string               `json:"project_manager"`
	BusinessUnit           string               `json:"business_unit"`
	Unit                   string               `json:"unit"`
	Department             string               `json:"department"`
	Image                  string               `json:"image"`
	CompanyID              string               `json:"companyId" validate:"required"`
	Users                  []ProjectUserRequest `json:"users" validate:"omitempty,dive"`
}

// ProjectRequest creates a project.
type ProjectRequest struct {
	ProjectName   string `json:"project_name" validate:"required"`
	ProjectStatus string `json:"project_status" validate:"omitempty,oneof=draft active"`
	ProjectFields
}

// ProjectDraftRequest saves a project as draft; only the owner is required.
type ProjectDraftRequest struct {
	ProjectName string `json:"project_name"`
	ProjectFields
}

// Entity converts the request into a new project document.
func (r ProjectRequest) Entity() (*entity.Project, error) {
	p, err := r.ProjectFields.entity(r.ProjectName)
	if err != nil {
		return nil, err
	}
	p.ProjectStatus = entity.ProjectStatus(r.ProjectStatus)
	return p, nil
}

// Entity converts the draft into a new project document in draft state.
func (r ProjectDraftRequest) Entity() (*entity.Project, error) {
	p, err := r.ProjectFields.entity(r.ProjectName)
	if err != nil {
		return nil, err
	}
	p.ProjectStatus = entity.ProjectDraft
	return p, nil
}

func (f ProjectFields) entity(name string) (*entity.Project, error) {
	start, err := ParseDate("startDate", f.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := ParseDate("endDate", f.EndDate)
	if err != nil {
		return nil, err
	}
	users := make([]entity.ProjectUser, 0, len(f.Users))
	for _, u := range f.Users {
		users = append(users, entity.ProjectUser{User: u.User, Role: u.Role})
	}
	return &entity.Project{
		ProjectName:            name,
		StartDate:              start,
		EndDate:                end,
		Description:            f.Description,
		Location:               f.Location,
		Currency:               f.Currency,
		ProjectReferenceNumber: f.ProjectReferenceNumber,
		ProjectManager:         f.ProjectManager,
		BusinessUnit:           f.BusinessUnit,
		Unit:                   f.Unit,
		Department:             f.Department,
		Image:                  f.Image,
		CompanyID:              f.CompanyID,
		Users:                  users,
		Budgets:                []primitive.ObjectID{},
	}, nil
}

// ProjectEditRequest carries the fields to change; absent fields are kept.
type ProjectEditRequest struct {
	ProjectName            *string `json:"project_name" validate:"omitempty,min=1"`
	StartDate              *string `json:"startDate"`
	EndDate                *string `json:"endDate"`
	Description            *string `json:"description"`
	Location               *string `json:"location"`
	Currency               *string `json:"currency" validate:"omitempty,len=3"`
	ProjectReferenceNumber *string `json:"project_reference_number"`
	ProjectManager         *string `json:"project_manager"`
	BusinessUnit           *string `json:"business_unit"`
	Unit                   *string `json:"unit"`
	Department             *string `json:"department"`
	Image                  *string `json:"image"`
	ProjectStatus          *string `json:"project_status" validate:"omitempty,oneof=draft active on_hold completed cancelled"`
}

// ProjectListItem is the projected view returned by project lists.
type ProjectListItem struct {
	ID                     primitive.ObjectID   `json:"_id"`
	ProjectName            string               `json:"project_name"`
	StartDate              *time.Time           `json:"startDate"`
	EndDate                *time.Time           `json:"endDate"`
	Description            string               `json:"description"`
	Location               string               `json:"location"`
	Currency               string               `json:"currency"`
	ProjectReferenceNumber string               `json:"project_reference_number"`
	ProjectManager         string               `json:"project_manager"`
	BusinessUnit           string               `json:"business_unit"`
	Unit                   string               `json:"unit"`
	Department             string               `json:"department"`
	ProjectStatus          entity.ProjectStatus `json:"project_status"`
	Image                  string               `json:"image"`
	CreatedBy              string               `json:"createdBy"`
	Users                  []entity.ProjectUser `json:"users"`
}

// NewProjectList maps projected documents to list views.
func NewProjectList(projects []entity.Project) []ProjectListItem {
	out := make([]ProjectListItem, 0, len(projects))
	for _, p := range projects {
		users := p.Users
		if users == nil {
			users = []entity.ProjectUser{}
		}
		out = append(out, ProjectListItem{
			ID:                     p.ID,
			ProjectName:            p.ProjectName,
			StartDate:              p.StartDate,
			EndDate:                p.EndDate,
			Description:            p.Description,
			Location:               p.Location,
			Currency:               p.Currency,
			ProjectReferenceNumber: p.ProjectReferenceNumber,
			ProjectManager:         p.ProjectManager,
			BusinessUnit:           p.BusinessUnit,
			Unit:                   p.Unit,
			Department:             p.Department,
			ProjectStatus:          p.ProjectStatus,
			Image:                  p.Image,
			CreatedBy:              p.CreatedBy,
			Users:                  users,
		})
	}
	return out
}

// BudgetRequest allocates an amount to a project.
type BudgetRequest struct {
	Budget     json.Number `json:"budget" validate:"required,numeric"`
	CostCenter string      `json:"costCenter" validate:"required"`
}

// Entity converts the request into a budget. The project and company are
// filled in when it is attached.
func (r BudgetRequest) Entity() (*entity.Budget, error) {
	amount, err := ParseMoney("budget", r.Budget.String())
	if err != nil {
		return nil, err
	}
	return &entity.Budget{Budget: amount, CostCenter: r.CostCenter}, nil
}
