package company

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Additional-Code/buyerdesk/internal/dto"
	"github.com/Additional-Code/buyerdesk/internal/entity"
	"github.com/Additional-Code/buyerdesk/internal/presentation/http/middleware"
	"github.com/Additional-Code/buyerdesk/internal/presentation/http/request"
	"github.com/Additional-Code/buyerdesk/internal/presentation/http/response"
	service "github.com/Additional-Code/buyerdesk/internal/service/company"
)

// payloadKeys names the envelope key of each reference list as
// {single entry, list}.
var payloadKeys = map[entity.RefKind][2]string{
	entity.RefTags:               {"tag", "tag"},
	entity.RefItemGroups:         {"itemsCatAndGroup", "itemsCatAndGroups"},
	entity.RefSupplierCategories: {"supplierCategory", "supplierCategories"},
	entity.RefCostCenters:        {"costCenter", "costCenter"},
}

// Handler exposes company profile and reference data endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a company Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with provided Echo instance.
func Register(e *echo.Echo, h *Handler, auth *middleware.Auth) {
	g := e.Group("/company", auth.Guard())
	admin := auth.Admin()

	g.GET("/profile/:companyName", h.profile)
	g.PATCH("/:id", h.editProfile, admin)

	for _, kind := range entity.RefKinds {
		path := "/" + string(kind)
		g.GET("/:companyId"+path, h.listRefs(kind))
		g.POST(path, h.createRef(kind), admin)
		g.PATCH(path+"/:id", h.renameRef(kind), admin)
		g.DELETE(path+"/:id", h.deleteRef(kind), admin)
	}
}

func (h *Handler) listRefs(kind entity.RefKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		b := response.New(c)
		entries, err := h.svc.ListRefs(c.Request().Context(), kind, c.Param("companyId"))
		if err != nil {
			return b.WithError(err).Build()
		}
		return b.WithData(payloadKeys[kind][1], dto.NewRefList(entries)).Build()
	}
}

// label prefers the item type of category/group entries.
func label(kind entity.RefKind, entry *entity.RefEntry) string {
	if entry != nil && entry.ItemType != "" {
		return entry.ItemType
	}
	return kind.Label()
}

func (h *Handler) createRef(kind entity.RefKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		b := response.New(c)

		var req dto.RefEntryRequest
		if err := request.Bind(c, &req); err != nil {
			return b.WithError(err).Build()
		}
		entry := &entity.RefEntry{Name: req.Name, CompanyID: req.CompanyID, ItemType: req.ItemType}
		if err := h.svc.CreateRef(c.Request().Context(), kind, entry, middleware.UserID(c)); err != nil {
			return b.WithError(err).Build()
		}
		return b.WithStatus(http.StatusCreated).
			WithData(payloadKeys[kind][0], entry).
			WithDescription(fmt.Sprintf("%s created Successfully", label(kind, entry))).
			Build()
	}
}

func (h *Handler) renameRef(kind entity.RefKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		b := response.New(c)

		var req dto.RefRenameRequest
		if err := request.Bind(c, &req); err != nil {
			return b.WithError(err).Build()
		}
		entry, err := h.svc.RenameRef(c.Request().Context(), kind, c.Param("id"), req, middleware.UserID(c))
		if err != nil {
			return b.WithError(err).Build()
		}
		return b.WithData(payloadKeys[kind][0], entry).
			WithDescription(fmt.Sprintf("%s updated Successfully", label(kind, entry))).
			Build()
	}
}

func (h *Handler) deleteRef(kind entity.RefKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		b := response.New(c)
		if err := h.svc.DeleteRef(c.Request().Context(), kind, c.Param("id")); err != nil {
			return b.WithError(err).Build()
		}
		return b.WithDescription(fmt.Sprintf("%s deleted Successfully", kind.Label())).Build()
	}
}

func (h *Handler) profile(c echo.Context) error {
	b := response.New(c)
	company, err := h.svc.Profile(c.Request().Context(), c.Param("companyName"))
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData("companyProfile", company).Build()
}

func (h *Handler) editProfile(c echo.Context) error {
	b := response.New(c)

	var req dto.CompanyEditRequest
	if err := request.Bind(c, &req); err != nil {
		return b.WithError(err).Build()
	}
	company, err := h.svc.EditProfile(c.Request().Context(), c.Param("id"), req, middleware.UserID(c))
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData("companyProfile", company).WithDescription("Company profile updated Successfully").Build()
}
