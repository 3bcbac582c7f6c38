package item

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
	service "github.com/Additional-Code/buyerdesk/internal/service/item"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/buyerdesk/transport/http/item")

// Handler exposes catalogue item endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs an item Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with provided Echo instance.
func Register(e *echo.Echo, h *Handler, auth *middleware.Auth) {
	g := e.Group("/item", auth.Guard())
	admin := auth.Admin()

	g.GET("/company/:companyId", h.list)
	g.GET("/:id", h.get)
	g.POST("", h.create, admin)
	g.POST("/draft", h.createDraft, admin)
	g.PATCH("/:id", h.edit, admin)
	g.POST("/:id/documents", h.uploadDocuments, admin)
	g.DELETE("/:id/documents/:documentId", h.deleteDocument, admin)
	g.DELETE("/:id", h.delete, admin)
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)
	items, err := h.svc.List(c.Request().Context(), c.Param("companyId"))
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData("item", dto.NewItemList(items)).Build()
}

func (h *Handler) get(c echo.Context) error {
	b := response.New(c)
	item, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData("item", item).Build()
}

func (h *Handler) create(c echo.Context) error {
	var req dto.ItemRequest
	if err := request.Bind(c, &req); err != nil {
		return response.New(c).WithError(err).Build()
	}
	return h.store(c, req.Entity(), "Item created Successfully")
}

func (h *Handler) createDraft(c echo.Context) error {
	var req dto.ItemDraftRequest
	if err := request.Bind(c, &req); err != nil {
		return response.New(c).WithError(err).Build()
	}
	return h.store(c, req.Entity(), "Item saved as draft Successfully")
}

func (h *Handler) store(c echo.Context, item *entity.Item, description string) error {
	b := response.New(c)
	uploads, err := request.Documents(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "items.create", trace.WithAttributes(
		attribute.String("item.status", string(item.Status)),
		attribute.Int("item.documents", len(uploads)),
	))
	defer span.End()

	if err := h.svc.Create(ctx, item, uploads, middleware.UserID(c)); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData("item", item).WithDescription(description).Build()
}

func (h *Handler) edit(c echo.Context) error {
	b := response.New(c)

	var req dto.ItemEditRequest
	if err := request.Bind(c, &req); err != nil {
		return b.WithError(err).Build()
	}
	item, err := h.svc.Edit(c.Request().Context(), c.Param("id"), req, middleware.UserID(c))
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData("item", item).WithDescription("Item updated Successfully").Build()
}

func (h *Handler) uploadDocuments(c echo.Context) error {
	b := response.New(c)

	uploads, err := request.Documents(c)
	if err != nil {
		return b.WithError(err).Build()
	}
	docs, err := h.svc.UploadDocuments(c.Request().Context(), c.Param("id"), uploads, middleware.UserID(c))
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).
		WithData("uploadedDocument", docs).
		WithDescription("File uploaded Successfully").
		Build()
}

func (h *Handler) deleteDocument(c echo.Context) error {
	b := response.New(c)
	doc, err := h.svc.DeleteDocument(c.Request().Context(), c.Param("id"), c.Param("documentId"))
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData("result", doc).WithDescription("File deleted Successfully").Build()
}

func (h *Handler) delete(c echo.Context) error {
	b := response.New(c)
	if err := h.svc.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithDescription("Company item deleted Successfully").Build()
}
