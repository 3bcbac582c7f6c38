package response

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Additional-Code/buyerdesk/pkg/errorbank"
)

// Envelope field names shared with clients.
const (
	CodeField        = "responseCode"
	DescriptionField = "responseDescription"
	defaultKey       = "data"
)

// Builder helps construct consistent HTTP responses.
type Builder struct {
	ctx         echo.Context
	status      int
	key         string
	data        any
	description string
	err         error
	meta        map[string]any
}

// New instantiates a Builder for the provided request context.
func New(ctx echo.Context) *Builder {
	return &Builder{ctx: ctx, status: http.StatusOK, key: defaultKey}
}

// WithStatus overrides the response status code.
func (b *Builder) WithStatus(status int) *Builder {
	if status > 0 {
		b.status = status
	}
	return b
}

// WithData attaches a success payload under the resource key.
func (b *Builder) WithData(key string, data any) *Builder {
	if key != "" {
		b.key = key
	}
	b.data = data
	return b
}

// WithDescription sets the human readable outcome.
func (b *Builder) WithDescription(description string) *Builder {
	b.description = description
	return b
}

// WithError records an error to be rendered.
func (b *Builder) WithError(err error) *Builder {
	b.err = err
	return b
}

// WithMeta appends auxiliary metadata to the response.
func (b *Builder) WithMeta(key string, value any) *Builder {
	if key == "" {
		return b
	}
	if b.meta == nil {
		b.meta = make(map[string]any)
	}
	b.meta[key] = value
	return b
}

// Build finalises and emits the HTTP response.
func (b *Builder) Build() error {
	if b.err != nil {
		return b.buildError()
	}
	return b.buildSuccess()
}

func (b *Builder) buildSuccess() error {
	if b.status == 0 {
		b.status = http.StatusOK
	}
	if b.description == "" {
		b.description = "Success"
	}
	payload := map[string]any{
		CodeField:        errorbank.CodeSuccess,
		DescriptionField: b.description,
	}
	if b.data != nil {
		payload[b.key] = b.data
	}
	if len(b.meta) > 0 {
		payload["meta"] = b.meta
	}
	return b.ctx.JSON(b.status, payload)
}

func (b *Builder) buildError() error {
	appErr := errorbank.From(FromHTTPError(b.err))
	status := b.status
	if status < 400 {
		status = appErr.StatusCode()
	}
	payload := map[string]any{
		CodeField:        appErr.ResponseCode(),
		DescriptionField: appErr.Message(),
	}
	if details := appErr.Details(); len(details) > 0 {
		payload["details"] = details
	}
	if len(b.meta) > 0 {
		payload["meta"] = b.meta
	}
	return b.ctx.JSON(status, payload)
}

// FromHTTPError translates router errors (unknown route, bad method, bind
// failures) into application errors. Other errors pass through unchanged.
func FromHTTPError(err error) error {
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		return err
	}
	msg := http.StatusText(he.Code)
	if m, ok := he.Message.(string); ok && m != "" {
		msg = m
	}
	opts := []errorbank.Option{errorbank.WithCause(err)}
	switch {
	case he.Code == http.StatusNotFound:
		return errorbank.NotFound(msg, opts...)
	case he.Code == http.StatusUnauthorized:
		return errorbank.Unauthorized(msg, opts...)
	case he.Code == http.StatusForbidden:
		return errorbank.Forbidden(msg, opts...)
	case he.Code == http.StatusConflict:
		return errorbank.Conflict(msg, opts...)
	case he.Code >= 400 && he.Code < 500:
		return errorbank.BadRequest(msg, opts...)
	default:
		return errorbank.Internal("internal error", opts...)
	}
}
