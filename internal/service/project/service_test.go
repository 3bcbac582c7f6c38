package project

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Additional-Code/buyerdesk/internal/dto"
	"github.com/Additional-Code/buyerdesk/internal/entity"
	"github.com/Additional-Code/buyerdesk/internal/repository"
	"github.com/Additional-Code/buyerdesk/internal/repository/mocks"
	"github.com/Additional-Code/buyerdesk/pkg/errorbank"
)

var fixedNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestService() (*Service, *mocks.Store[entity.Project], *mocks.Store[entity.Budget]) {
	projects := &mocks.Store[entity.Project]{}
	budgets := &mocks.Store[entity.Budget]{}
	svc := NewService(Params{Projects: projects, Budgets: budgets, Logger: zap.NewNop()})
	svc.now = func() time.Time { return fixedNow }
	return svc, projects, budgets
}

func kindOf(t *testing.T, err error) errorbank.Kind {
	t.Helper()
	var appErr *errorbank.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	return appErr.Kind()
}

func TestListEmptyIsNotFound(t *testing.T) {
	svc, projects, _ := newTestService()
	projects.On("Find", mock.Anything, bson.M{"companyId": "c1"}, ListProjection).Return([]entity.Project{}, nil)

	_, err := svc.List(context.Background(), "c1")
	require.Error(t, err)
	assert.Equal(t, errorbank.KindNotFound, kindOf(t, err))
	assert.Equal(t, "No record found", errorbank.From(err).Message())
}

func TestListReturnsProjects(t *testing.T) {
	svc, projects, _ := newTestService()
	projects.On("Find", mock.Anything, bson.M{"companyId": "c1"}, ListProjection).
		Return([]entity.Project{{ProjectName: "Bridge"}}, nil)

	got, err := svc.List(context.Background(), "c1")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestCreateAssignsIDAndAudit(t *testing.T) {
	svc, projects, _ := newTestService()
	id := primitive.NewObjectID()
	projects.On("Insert", mock.Anything, mock.MatchedBy(func(p *entity.Project) bool {
		return p.CreatedBy == "u1" && p.CreatedAt.Equal(fixedNow) && p.ProjectStatus == entity.ProjectActive
	})).Return(id, nil)

	p := &entity.Project{ProjectName: "Bridge", CompanyID: "c1"}
	require.NoError(t, svc.Create(context.Background(), p, "u1"))
	assert.Equal(t, id, p.ID)
	assert.NotNil(t, p.Users)
	assert.NotNil(t, p.Budgets)
	projects.AssertExpectations(t)
}

func TestCreateRejectsNonInitialStatus(t *testing.T) {
	svc, projects, _ := newTestService()

	err := svc.Create(context.Background(), &entity.Project{ProjectName: "Bridge", ProjectStatus: entity.ProjectCompleted}, "u1")
	require.Error(t, err)
	assert.Equal(t, errorbank.KindBadRequest, kindOf(t, err))
	projects.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestEditRejectsIllegalTransition(t *testing.T) {
	svc, projects, _ := newTestService()
	id := primitive.NewObjectID()
	projects.On("FindByID", mock.Anything, id).
		Return(&entity.Project{ID: id, ProjectStatus: entity.ProjectDraft}, nil)

	status := string(entity.ProjectCompleted)
	_, err := svc.Edit(context.Background(), id.Hex(), dto.ProjectEditRequest{ProjectStatus: &status}, "u2")
	require.Error(t, err)
	assert.Equal(t, errorbank.KindConflict, kindOf(t, err))
	projects.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything, mock.Anything)
}

func TestEditSetsOnlyProvidedFields(t *testing.T) {
	svc, projects, _ := newTestService()
	id := primitive.NewObjectID()
	projects.On("FindByID", mock.Anything, id).
		Return(&entity.Project{ID: id, ProjectStatus: entity.ProjectDraft}, nil)
	name, status := "Tunnel", string(entity.ProjectActive)
	projects.On("UpdateFields", mock.Anything, id, bson.M{
		"project_name":   "Tunnel",
		"project_status": entity.ProjectActive,
		"updatedBy":      "u2",
		"updatedAt":      fixedNow,
	}).Return(nil)

	_, err := svc.Edit(context.Background(), id.Hex(), dto.ProjectEditRequest{ProjectName: &name, ProjectStatus: &status}, "u2")
	require.NoError(t, err)
	projects.AssertExpectations(t)
}

func TestEditUserRoleTargetsMatchingElement(t *testing.T) {
	svc, projects, _ := newTestService()
	id := primitive.NewObjectID()
	projects.On("UpdateWhere", mock.Anything,
		bson.M{"_id": id, "users.user": "u9"},
		bson.M{"$set": bson.M{"users.$.role": "approver", "updatedBy": "admin", "updatedAt": fixedNow}},
	).Return(nil)

	require.NoError(t, svc.EditUserRole(context.Background(), id.Hex(), "u9", "approver", "admin"))
	projects.AssertExpectations(t)
}

func TestEditUserRoleUnknownUser(t *testing.T) {
	svc, projects, _ := newTestService()
	id := primitive.NewObjectID()
	projects.On("UpdateWhere", mock.Anything, mock.Anything, mock.Anything).Return(repository.ErrNotFound)

	err := svc.EditUserRole(context.Background(), id.Hex(), "ghost", "viewer", "admin")
	assert.Equal(t, errorbank.KindNotFound, kindOf(t, err))
}

func TestAddUserDuplicateIsConflict(t *testing.T) {
	svc, projects, _ := newTestService()
	id := primitive.NewObjectID()
	projects.On("UpdateWhere", mock.Anything, mock.Anything, mock.Anything).Return(repository.ErrNotFound)
	projects.On("FindByID", mock.Anything, id).Return(&entity.Project{ID: id}, nil)

	err := svc.AddUser(context.Background(), id.Hex(), entity.ProjectUser{User: "u1", Role: "viewer"}, "admin")
	assert.Equal(t, errorbank.KindConflict, kindOf(t, err))
}

func TestAddBudgetAttachesToProject(t *testing.T) {
	svc, projects, budgets := newTestService()
	pid, bid := primitive.NewObjectID(), primitive.NewObjectID()
	projects.On("FindByID", mock.Anything, pid).Return(&entity.Project{ID: pid, CompanyID: "c1"}, nil)
	budgets.On("Insert", mock.Anything, mock.MatchedBy(func(b *entity.Budget) bool {
		return b.CompanyID == "c1" && b.ProjectID == pid && b.CreatedBy == "u1"
	})).Return(bid, nil)
	projects.On("Push", mock.Anything, pid, "budgets", []any{bid}).Return(nil)

	b := &entity.Budget{CostCenter: "CC-1"}
	require.NoError(t, svc.AddBudget(context.Background(), pid.Hex(), b, "u1"))
	assert.Equal(t, bid, b.ID)
	budgets.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestAddBudgetRollsBackWhenAttachFails(t *testing.T) {
	svc, projects, budgets := newTestService()
	pid, bid := primitive.NewObjectID(), primitive.NewObjectID()
	projects.On("FindByID", mock.Anything, pid).Return(&entity.Project{ID: pid, CompanyID: "c1"}, nil)
	budgets.On("Insert", mock.Anything, mock.Anything).Return(bid, nil)
	projects.On("Push", mock.Anything, pid, "budgets", []any{bid}).Return(errors.New("write conflict"))
	budgets.On("Delete", mock.Anything, bid).Return(nil)

	err := svc.AddBudget(context.Background(), pid.Hex(), &entity.Budget{}, "u1")
	require.Error(t, err)
	assert.Equal(t, errorbank.KindInternal, kindOf(t, err))
	budgets.AssertCalled(t, "Delete", mock.Anything, bid)
}

func TestAddBudgetUnknownProject(t *testing.T) {
	svc, projects, budgets := newTestService()
	pid := primitive.NewObjectID()
	projects.On("FindByID", mock.Anything, pid).Return(nil, repository.ErrNotFound)

	err := svc.AddBudget(context.Background(), pid.Hex(), &entity.Budget{}, "u1")
	assert.Equal(t, errorbank.KindNotFound, kindOf(t, err))
	budgets.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestGetRejectsMalformedID(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.Get(context.Background(), "nope")
	assert.Equal(t, errorbank.KindBadRequest, kindOf(t, err))
}
