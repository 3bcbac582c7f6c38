package upload

import (
	"errors"
	"mime"
	"net/http"
	"path"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Additional-Code/buyerdesk/internal/presentation/http/response"
	"github.com/Additional-Code/buyerdesk/internal/storage"
	"github.com/Additional-Code/buyerdesk/pkg/errorbank"
)

// Handler streams stored attachments back under their public path.
type Handler struct {
	uploader *storage.Uploader
	logger   *zap.Logger
}

// NewHandler constructs an upload Handler.
func NewHandler(uploader *storage.Uploader, logger *zap.Logger) *Handler {
	return &Handler{uploader: uploader, logger: logger}
}

// Register routes with provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	e.GET("/"+storage.PublicPrefix+"/:name", h.serve)
}

func (h *Handler) serve(c echo.Context) error {
	name := c.Param("name")
	r, err := h.uploader.Open(c.Request().Context(), name)
	switch {
	case errors.Is(err, storage.ErrNotExist):
		return response.New(c).WithError(errorbank.NotFound("File not found")).Build()
	case errors.Is(err, storage.ErrInvalidName):
		return response.New(c).WithError(errorbank.BadRequest("invalid file name")).Build()
	case err != nil:
		return response.New(c).WithError(errorbank.Internal("failed to read file", errorbank.WithCause(err))).Build()
	}
	defer r.Close()

	ctype := mime.TypeByExtension(path.Ext(name))
	if ctype == "" {
		ctype = echo.MIMEOctetStream
	}
	if err := c.Stream(http.StatusOK, ctype, r); err != nil {
		h.logger.Warn("upload stream interrupted", zap.String("name", name), zap.Error(err))
	}
	return nil
}
