package auction

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
	service "github.com/Additional-Code/buyerdesk/internal/service/auction"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/buyerdesk/transport/http/auction")

// Handler exposes auction endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs an auction Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with provided Echo instance.
func Register(e *echo.Echo, h *Handler, auth *middleware.Auth) {
	g := e.Group("/auctions", auth.Guard())
	g.GET("/buyer/:userId", h.listByBuyer)
	g.GET("/supplier/:email", h.listBySupplier)
	g.GET("/:id", h.get)
	g.POST("", h.create)
	g.POST("/draft", h.createDraft)
	g.PATCH("/:id", h.edit)
	g.PATCH("/:id/suppliers/:email/status", h.setSupplierStatus)
}

func (h *Handler) listByBuyer(c echo.Context) error {
	b := response.New(c)
	auctions, err := h.svc.ListByBuyer(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData("auction", auctions).Build()
}

func (h *Handler) listBySupplier(c echo.Context) error {
	b := response.New(c)
	result, err := h.svc.ListBySupplier(c.Request().Context(), c.Param("email"))
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData("result", result).Build()
}

func (h *Handler) get(c echo.Context) error {
	b := response.New(c)
	auction, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData("auction", auction).Build()
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)

	var req dto.AuctionRequest
	if err := request.Bind(c, &req); err != nil {
		return b.WithError(err).Build()
	}
	uploads, err := request.Documents(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "auctions.create", trace.WithAttributes(
		attribute.Int("auction.suppliers", len(req.SuppliersEmail)),
		attribute.Int("auction.documents", len(uploads)),
	))
	defer span.End()

	auction, err := h.svc.Create(ctx, req, uploads, middleware.UserID(c))
	if err != nil {
		return b.WithError(err).Build()
	}
	description := "Auction created Successfully"
	if auction.BuyerStatus == entity.BuyerPublished {
		description = "Auction created and notification email sent Successfully"
	}
	return b.WithStatus(http.StatusCreated).
		WithData("auction", auction).
		WithDescription(description).
		Build()
}

func (h *Handler) createDraft(c echo.Context) error {
	b := response.New(c)

	var req dto.AuctionDraftRequest
	if err := request.Bind(c, &req); err != nil {
		return b.WithError(err).Build()
	}
	uploads, err := request.Documents(c)
	if err != nil {
		return b.WithError(err).Build()
	}
	auction, err := h.svc.CreateDraft(c.Request().Context(), req, uploads, middleware.UserID(c))
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).
		WithData("auction", auction).
		WithDescription("Auction saved as draft Successfully").
		Build()
}

func (h *Handler) edit(c echo.Context) error {
	b := response.New(c)

	var req dto.AuctionEditRequest
	if err := request.Bind(c, &req); err != nil {
		return b.WithError(err).Build()
	}
	res, err := h.svc.Edit(c.Request().Context(), c.Param("id"), req, middleware.UserID(c))
	if err != nil {
		return b.WithError(err).Build()
	}
	description := "Auction updated Successfully"
	if len(res.Added) > 0 {
		description = "Seller added to auction Successfully"
	}
	return b.WithData("auction", res.Auction).WithDescription(description).Build()
}

func (h *Handler) setSupplierStatus(c echo.Context) error {
	b := response.New(c)

	var req dto.SupplierStatusRequest
	if err := request.Bind(c, &req); err != nil {
		return b.WithError(err).Build()
	}
	line, err := h.svc.SetSupplierStatus(c.Request().Context(), c.Param("id"), c.Param("email"),
		entity.SupplierStatus(req.SupplierStatus), middleware.UserID(c))
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData("auction", line).WithDescription("Supplier status updated Successfully").Build()
}
