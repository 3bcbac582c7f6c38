package project

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/buyerdesk/internal/dto"
	"github.com/Additional-Code/buyerdesk/internal/entity"
	"github.com/Additional-Code/buyerdesk/internal/presentation/http/middleware"
	"github.com/Additional-Code/buyerdesk/internal/presentation/http/request"
	"github.com/Additional-Code/buyerdesk/internal/presentation/http/response"
	service "github.com/Additional-Code/buyerdesk/internal/service/project"
	"github.com/Additional-Code/buyerdesk/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/buyerdesk/transport/http/project")

// Handler exposes project endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a project Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with provided Echo instance.
func Register(e *echo.Echo, h *Handler, auth *middleware.Auth) {
	g := e.Group("/project", auth.Guard())
	admin := auth.Admin()

	g.GET("/company/:companyId", h.list)
	g.GET("/:id", h.get)
	g.POST("", h.create, admin)
	g.POST("/draft", h.createDraft, admin)
	g.PATCH("/:id", h.edit, admin)
	g.DELETE("/:id", h.delete, admin)
	g.POST("/:id/users", h.addUser, admin)
	g.PATCH("/:id/users/:userId", h.editUserRole, admin)
	g.DELETE("/:id/users/:userId", h.removeUser, admin)
	g.POST("/:id/budgets", h.addBudget, admin)
	g.GET("/:id/budgets", h.listBudgets)
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)
	ctx, span := httpTracer.Start(c.Request().Context(), "projects.list", trace.WithAttributes(attribute.String("company.id", c.Param("companyId"))))
	defer span.End()

	projects, err := h.svc.List(ctx, c.Param("companyId"))
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData("project", dto.NewProjectList(projects)).Build()
}

func (h *Handler) get(c echo.Context) error {
	b := response.New(c)
	project, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData("project", project).Build()
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)

	var req dto.ProjectRequest
	if err := request.Bind(c, &req); err != nil {
		return b.WithError(err).Build()
	}
	project, err := req.Entity()
	if err != nil {
		return b.WithError(errorbank.BadRequest(err.Error())).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "projects.create")
	defer span.End()

	if err := h.svc.Create(ctx, project, middleware.UserID(c)); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).
		WithData("project", project).
		WithDescription("Project created Successfully").
		Build()
}

func (h *Handler) createDraft(c echo.Context) error {
	b := response.New(c)

	var req dto.ProjectDraftRequest
	if err := request.Bind(c, &req); err != nil {
		return b.WithError(err).Build()
	}
	project, err := req.Entity()
	if err != nil {
		return b.WithError(errorbank.BadRequest(err.Error())).Build()
	}
	if err := h.svc.Create(c.Request().Context(), project, middleware.UserID(c)); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).
		WithData("project", project).
		WithDescription("Project saved as draft Successfully").
		Build()
}

func (h *Handler) edit(c echo.Context) error {
	b := response.New(c)

	var req dto.ProjectEditRequest
	if err := request.Bind(c, &req); err != nil {
		return b.WithError(err).Build()
	}
	project, err := h.svc.Edit(c.Request().Context(), c.Param("id"), req, middleware.UserID(c))
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData("project", project).WithDescription("Project updated Successfully").Build()
}

func (h *Handler) delete(c echo.Context) error {
	b := response.New(c)
	if err := h.svc.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithDescription("Company project deleted Successfully").Build()
}

func (h *Handler) addUser(c echo.Context) error {
	b := response.New(c)

	var req dto.ProjectUserRequest
	if err := request.Bind(c, &req); err != nil {
		return b.WithError(err).Build()
	}
	user := entity.ProjectUser{User: req.User, Role: req.Role}
	if err := h.svc.AddUser(c.Request().Context(), c.Param("id"), user, middleware.UserID(c)); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).
		WithData("user", user).
		WithDescription("User added Successfully").
		Build()
}

func (h *Handler) editUserRole(c echo.Context) error {
	b := response.New(c)

	var req dto.ProjectRoleRequest
	if err := request.Bind(c, &req); err != nil {
		return b.WithError(err).Build()
	}
	userID := c.Param("userId")
	if err := h.svc.EditUserRole(c.Request().Context(), c.Param("id"), userID, req.Role, middleware.UserID(c)); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData("user", entity.ProjectUser{User: userID, Role: req.Role}).
		WithDescription("User updated Successfully").
		Build()
}

func (h *Handler) removeUser(c echo.Context) error {
	b := response.New(c)
	if err := h.svc.RemoveUser(c.Request().Context(), c.Param("id"), c.Param("userId"), middleware.UserID(c)); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithDescription("User removed Successfully").Build()
}

func (h *Handler) addBudget(c echo.Context) error {
	b := response.New(c)

	var req dto.BudgetRequest
	if err := request.Bind(c, &req); err != nil {
		return b.WithError(err).Build()
	}
	budget, err := req.Entity()
	if err != nil {
		return b.WithError(errorbank.BadRequest(err.Error())).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "projects.addBudget", trace.WithAttributes(attribute.String("project.id", c.Param("id"))))
	defer span.End()

	if err := h.svc.AddBudget(ctx, c.Param("id"), budget, middleware.UserID(c)); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).
		WithData("budget", budget).
		WithDescription("Budget created Successfully").
		Build()
}

func (h *Handler) listBudgets(c echo.Context) error {
	b := response.New(c)
	budgets, err := h.svc.ListBudgets(c.Request().Context(), c.Param("id"))
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData("budget", budgets).Build()
}
