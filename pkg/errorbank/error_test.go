package errorbank

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
)

func TestKindMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		status int
		code   string
		grpc   codes.Code
	}{
		{"not found", NotFound("No record found"), http.StatusBadRequest, CodeNotFound, codes.NotFound},
		{"bad request", BadRequest("name is required"), http.StatusBadRequest, CodeInvalid, codes.InvalidArgument},
		{"unprocessable", Unprocessable("bad file"), http.StatusUnprocessableEntity, CodeInvalid, codes.FailedPrecondition},
		{"conflict", Conflict("illegal transition"), http.StatusConflict, CodeConflict, codes.AlreadyExists},
		{"unauthorized", Unauthorized("missing token"), http.StatusUnauthorized, CodeUnauthorized, codes.Unauthenticated},
		{"forbidden", Forbidden("admin only"), http.StatusForbidden, CodeForbidden, codes.PermissionDenied},
		{"internal", Internal("boom"), http.StatusInternalServerError, CodeInternal, codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.StatusCode())
			assert.Equal(t, tt.code, tt.err.ResponseCode())
			assert.Equal(t, tt.grpc, tt.err.GRPCCode())
		})
	}
}

func TestNilAppError(t *testing.T) {
	var appErr *AppError
	assert.Equal(t, KindInternal, appErr.Kind())
	assert.Equal(t, http.StatusInternalServerError, appErr.StatusCode())
	assert.Equal(t, CodeInternal, appErr.ResponseCode())
	assert.Equal(t, "<nil>", appErr.Error())
}

func TestFromWrapsUnknownErrors(t *testing.T) {
	assert.Nil(t, From(nil))

	cause := errors.New("connection refused")
	appErr := From(cause)
	require.NotNil(t, appErr)
	assert.Equal(t, KindInternal, appErr.Kind())
	assert.ErrorIs(t, appErr, cause)

	original := Conflict("already published")
	wrapped := fmt.Errorf("edit auction: %w", original)
	assert.Same(t, original, From(wrapped))
}

func TestDetails(t *testing.T) {
	appErr := BadRequest("invalid payload",
		WithDetail("field", "project_name"),
		WithDetails(map[string]any{"rule": "required"}),
	)

	assert.Equal(t, map[string]any{"field": "project_name", "rule": "required"}, appErr.Details())
	assert.Equal(t, "invalid payload", appErr.Message())
}
