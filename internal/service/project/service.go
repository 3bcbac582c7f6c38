package project

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/buyerdesk/internal/dto"
	"github.com/Additional-Code/buyerdesk/internal/entity"
	"github.com/Additional-Code/buyerdesk/internal/repository"
	"github.com/Additional-Code/buyerdesk/internal/service"
	"github.com/Additional-Code/buyerdesk/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/Additional-Code/buyerdesk/service/project")

// ListProjection is the field set returned by project lists.
var ListProjection = bson.M{
	"_id": 1, "project_name": 1, "startDate": 1, "endDate": 1, "description": 1,
	"location": 1, "currency": 1, "project_reference_number": 1, "project_manager": 1,
	"business_unit": 1, "unit": 1, "department": 1, "project_status": 1, "image": 1,
	"createdBy": 1, "users": 1,
}

// Service encapsulates business logic around projects and their budgets.
type Service struct {
	projects repository.Store[entity.Project]
	budgets  repository.Store[entity.Budget]
	logger   *zap.Logger
	now      func() time.Time
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Projects repository.Store[entity.Project]
	Budgets  repository.Store[entity.Budget]
	Logger   *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		projects: p.Projects,
		budgets:  p.Budgets,
		logger:   p.Logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func notExist(id string) string {
	return fmt.Sprintf("Project with id %s does not exist", id)
}

// List returns the projected projects of a company.
func (s *Service) List(ctx context.Context, companyID string) ([]entity.Project, error) {
	ctx, span := serviceTracer.Start(ctx, "ProjectService.List", trace.WithAttributes(attribute.String("company.id", companyID)))
	defer span.End()

	projects, err := s.projects.Find(ctx, bson.M{"companyId": companyID}, ListProjection)
	if err != nil {
		return nil, service.Store(span, err, service.NoRecords, "failed to list projects")
	}
	if len(projects) == 0 {
		return nil, errorbank.NotFound(service.NoRecords)
	}
	return projects, nil
}

// Get loads one project.
func (s *Service) Get(ctx context.Context, id string) (*entity.Project, error) {
	oid, err := service.ParseID("id", id)
	if err != nil {
		return nil, err
	}
	ctx, span := serviceTracer.Start(ctx, "ProjectService.Get", trace.WithAttributes(attribute.String("project.id", id)))
	defer span.End()

	project, err := s.projects.FindByID(ctx, oid)
	if err != nil {
		return nil, service.Store(span, err, notExist(id), "failed to load project")
	}
	return project, nil
}

// Create stores a new project owned by actor. Only initial states are
// accepted; an empty status means active.
func (s *Service) Create(ctx context.Context, project *entity.Project, actor string) error {
	if project == nil {
		return errorbank.BadRequest("project payload is required")
	}
	if project.ProjectStatus == "" {
		project.ProjectStatus = entity.ProjectActive
	}
	if !project.ProjectStatus.Initial() {
		return errorbank.BadRequest(fmt.Sprintf("project cannot be created as %s", project.ProjectStatus))
	}
	if project.StartDate != nil && project.EndDate != nil && project.EndDate.Before(*project.StartDate) {
		return errorbank.BadRequest("endDate must not be before startDate")
	}

	ctx, span := serviceTracer.Start(ctx, "ProjectService.Create", trace.WithAttributes(
		attribute.String("company.id", project.CompanyID),
		attribute.String("project.status", string(project.ProjectStatus)),
	))
	defer span.End()

	now := s.now()
	project.ID = primitive.NilObjectID
	project.CreatedBy = actor
	project.CreatedAt = now
	project.UpdatedAt = now
	if project.Users == nil {
		project.Users = []entity.ProjectUser{}
	}
	if project.Budgets == nil {
		project.Budgets = []primitive.ObjectID{}
	}

	id, err := s.projects.Insert(ctx, project)
	if err != nil {
		return service.Store(span, err, service.NoRecords, "failed to create project")
	}
	project.ID = id
	return nil
}

// Edit applies the provided fields and validates any status change.
func (s *Service) Edit(ctx context.Context, id string, req dto.ProjectEditRequest, actor string) (*entity.Project, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	ctx, span := serviceTracer.Start(ctx, "ProjectService.Edit", trace.WithAttributes(attribute.String("project.id", id)))
	defer span.End()

	set := bson.M{}
	setString(set, "project_name", req.ProjectName)
	setString(set, "description", req.Description)
	setString(set, "location", req.Location)
	setString(set, "currency", req.Currency)
	setString(set, "project_reference_number", req.ProjectReferenceNumber)
	setString(set, "project_manager", req.ProjectManager)
	setString(set, "business_unit", req.BusinessUnit)
	setString(set, "unit", req.Unit)
	setString(set, "department", req.Department)
	setString(set, "image", req.Image)

	start, end := current.StartDate, current.EndDate
	if req.StartDate != nil {
		if start, err = dto.ParseDate("startDate", *req.StartDate); err != nil {
			return nil, errorbank.BadRequest(err.Error())
		}
		set["startDate"] = start
	}
	if req.EndDate != nil {
		if end, err = dto.ParseDate("endDate", *req.EndDate); err != nil {
			return nil, errorbank.BadRequest(err.Error())
		}
		set["endDate"] = end
	}
	if start != nil && end != nil && end.Before(*start) {
		return nil, errorbank.BadRequest("endDate must not be before startDate")
	}

	if req.ProjectStatus != nil {
		next := entity.ProjectStatus(*req.ProjectStatus)
		if err := current.ProjectStatus.TransitionTo(next); err != nil {
			return nil, service.Transition(err)
		}
		set["project_status"] = next
	}

	set["updatedBy"] = actor
	set["updatedAt"] = s.now()
	if err := s.projects.UpdateFields(ctx, current.ID, set); err != nil {
		return nil, service.Store(span, err, notExist(id), "failed to update project")
	}
	return s.Get(ctx, id)
}

func setString(set bson.M, field string, v *string) {
	if v != nil {
		set[field] = *v
	}
}

// Delete removes a project. Its budgets are left in place.
func (s *Service) Delete(ctx context.Context, id string) error {
	oid, err := service.ParseID("id", id)
	if err != nil {
		return err
	}
	ctx, span := serviceTracer.Start(ctx, "ProjectService.Delete", trace.WithAttributes(attribute.String("project.id", id)))
	defer span.End()

	if err := s.projects.Delete(ctx, oid); err != nil {
		return service.Store(span, err, notExist(id), "failed to delete project")
	}
	return nil
}

// AddUser assigns a user to the project. A user may be assigned once.
func (s *Service) AddUser(ctx context.Context, id string, user entity.ProjectUser, actor string) error {
	oid, err := service.ParseID("id", id)
	if err != nil {
		return err
	}
	ctx, span := serviceTracer.Start(ctx, "ProjectService.AddUser", trace.WithAttributes(
		attribute.String("project.id", id),
		attribute.String("user.id", user.User),
	))
	defer span.End()

	err = s.projects.UpdateWhere(ctx,
		bson.M{"_id": oid, "users.user": bson.M{"$ne": user.User}},
		bson.M{
			"$push": bson.M{"users": user},
			"$set":  bson.M{"updatedBy": actor, "updatedAt": s.now()},
		},
	)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return service.Store(span, err, notExist(id), "failed to add project user")
	}
	if _, ferr := s.projects.FindByID(ctx, oid); ferr != nil {
		return service.Store(span, ferr, notExist(id), "failed to add project user")
	}
	return errorbank.Conflict(fmt.Sprintf("User %s is already assigned to the project", user.User))
}

// EditUserRole changes the role of one assigned user, leaving the other
// assignments untouched.
func (s *Service) EditUserRole(ctx context.Context, id, userID, role, actor string) error {
	oid, err := service.ParseID("id", id)
	if err != nil {
		return err
	}
	ctx, span := serviceTracer.Start(ctx, "ProjectService.EditUserRole", trace.WithAttributes(
		attribute.String("project.id", id),
		attribute.String("user.id", userID),
	))
	defer span.End()

	err = s.projects.UpdateWhere(ctx,
		bson.M{"_id": oid, "users.user": userID},
		bson.M{"$set": bson.M{"users.$.role": role, "updatedBy": actor, "updatedAt": s.now()}},
	)
	if err != nil {
		return service.Store(span, err, fmt.Sprintf("User %s is not assigned to project %s", userID, id), "failed to update project user")
	}
	return nil
}

// RemoveUser removes a user from the project.
func (s *Service) RemoveUser(ctx context.Context, id, userID, actor string) error {
	oid, err := service.ParseID("id", id)
	if err != nil {
		return err
	}
	ctx, span := serviceTracer.Start(ctx, "ProjectService.RemoveUser", trace.WithAttributes(
		attribute.String("project.id", id),
		attribute.String("user.id", userID),
	))
	defer span.End()

	err = s.projects.UpdateWhere(ctx,
		bson.M{"_id": oid, "users.user": userID},
		bson.M{
			"$pull": bson.M{"users": bson.M{"user": userID}},
			"$set":  bson.M{"updatedBy": actor, "updatedAt": s.now()},
		},
	)
	if err != nil {
		return service.Store(span, err, fmt.Sprintf("User %s is not assigned to project %s", userID, id), "failed to remove project user")
	}
	return nil
}

// AddBudget inserts a budget and appends its id to the project. When the
// append fails the budget is deleted again.
func (s *Service) AddBudget(ctx context.Context, projectID string, budget *entity.Budget, actor string) error {
	project, err := s.Get(ctx, projectID)
	if err != nil {
		return err
	}

	ctx, span := serviceTracer.Start(ctx, "ProjectService.AddBudget", trace.WithAttributes(attribute.String("project.id", projectID)))
	defer span.End()

	budget.ID = primitive.NilObjectID
	budget.ProjectID = project.ID
	budget.CompanyID = project.CompanyID
	budget.CreatedBy = actor
	budget.CreatedAt = s.now()

	id, err := s.budgets.Insert(ctx, budget)
	if err != nil {
		return service.Store(span, err, notExist(projectID), "failed to create budget")
	}
	budget.ID = id

	if err := s.projects.Push(ctx, project.ID, "budgets", id); err != nil {
		if rerr := s.budgets.Delete(context.WithoutCancel(ctx), id); rerr != nil {
			s.logger.Error("budget rollback failed; orphan budget left",
				zap.String("budget_id", id.Hex()),
				zap.String("project_id", projectID),
				zap.Error(rerr),
			)
			span.RecordError(rerr)
		}
		span.SetStatus(codes.Error, "attach budget failed")
		budget.ID = primitive.NilObjectID
		return service.Store(span, err, notExist(projectID), "failed to attach budget to project")
	}
	return nil
}

// ListBudgets returns the budgets allocated to a project.
func (s *Service) ListBudgets(ctx context.Context, projectID string) ([]entity.Budget, error) {
	oid, err := service.ParseID("id", projectID)
	if err != nil {
		return nil, err
	}
	ctx, span := serviceTracer.Start(ctx, "ProjectService.ListBudgets", trace.WithAttributes(attribute.String("project.id", projectID)))
	defer span.End()

	budgets, err := s.budgets.Find(ctx, bson.M{"projectId": oid}, nil)
	if err != nil {
		return nil, service.Store(span, err, service.NoRecords, "failed to list budgets")
	}
	if len(budgets) == 0 {
		return nil, errorbank.NotFound(service.NoRecords)
	}
	return budgets, nil
}
