// Package request binds and validates inbound HTTP payloads.
package request

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Additional-Code/buyerdesk/internal/storage"
	"github.com/Additional-Code/buyerdesk/pkg/errorbank"
)

// DocumentsField is the multipart field carrying attachments.
const DocumentsField = "documents"

// Bind decodes the body into v and runs the registered validator. Both
// failures are reported as bad requests.
func Bind(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return errorbank.BadRequest("invalid payload", errorbank.WithCause(err))
	}
	if err := c.Validate(v); err != nil {
		if appErr := errorbank.From(err); appErr.Kind() != errorbank.KindInternal {
			return appErr
		}
		return errorbank.BadRequest(err.Error(), errorbank.WithCause(err))
	}
	return nil
}

// Documents returns the attachment parts of a multipart request. Requests
// of any other content type carry none.
func Documents(c echo.Context) ([]storage.Upload, error) {
	ctype := c.Request().Header.Get(echo.HeaderContentType)
	if !strings.HasPrefix(ctype, echo.MIMEMultipartForm) {
		return nil, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, errorbank.BadRequest("invalid multipart payload", errorbank.WithCause(err))
	}
	return storage.FromMultipart(form.File[DocumentsField]), nil
}
