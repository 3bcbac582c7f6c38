package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/buyerdesk/pkg/errorbank"
)

func newContext() (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestBuildSuccessUsesResourceKey(t *testing.T) {
	c, rec := newContext()

	err := New(c).
		WithStatus(http.StatusCreated).
		WithData("project", map[string]string{"_id": "abc"}).
		WithDescription("Project added successfully").
		Build()
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "00", body["responseCode"])
	assert.Equal(t, "Project added successfully", body["responseDescription"])
	assert.Equal(t, map[string]any{"_id": "abc"}, body["project"])
	assert.NotContains(t, body, "data")
}

func TestBuildSuccessDefaults(t *testing.T) {
	c, rec := newContext()
	require.NoError(t, New(c).WithData("", []int{1}).Build())

	body := decode(t, rec)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Success", body["responseDescription"])
	assert.Equal(t, []any{float64(1)}, body["data"])
}

func TestBuildErrorMapsKinds(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
		desc   string
	}{
		{"not found", errorbank.NotFound("No record found"), http.StatusBadRequest, "99", "No record found"},
		{"validation", errorbank.BadRequest("project_name is required"), http.StatusBadRequest, "98", "project_name is required"},
		{"conflict", errorbank.Conflict("illegal transition"), http.StatusConflict, "97", "illegal transition"},
		{"unexpected", errors.New("socket closed"), http.StatusInternalServerError, "90", "internal error"},
		{"router 404", echo.ErrNotFound, http.StatusBadRequest, "99", "Not Found"},
		{"router 405", echo.ErrMethodNotAllowed, http.StatusBadRequest, "98", "Method Not Allowed"},
		{"unauthorized", echo.NewHTTPError(http.StatusUnauthorized, "missing token"), http.StatusUnauthorized, "96", "missing token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newContext()
			require.NoError(t, New(c).WithError(tt.err).Build())

			assert.Equal(t, tt.status, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, tt.code, body["responseCode"])
			assert.Equal(t, tt.desc, body["responseDescription"])
		})
	}
}

func TestBuildErrorKeepsExplicitStatus(t *testing.T) {
	c, rec := newContext()
	require.NoError(t, New(c).WithStatus(http.StatusNotFound).WithError(echo.ErrNotFound).Build())
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
