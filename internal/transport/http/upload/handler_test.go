package upload

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/buyerdesk/internal/config"
	"github.com/Additional-Code/buyerdesk/internal/storage"
)

func newServer(t *testing.T) (*echo.Echo, string) {
	t.Helper()
	dir := t.TempDir()
	uploader := storage.NewUploader(storage.NewLocal(dir), config.Config{}, zap.NewNop())
	e := echo.New()
	Register(e, NewHandler(uploader, zap.NewNop()))
	return e, dir
}

func TestServeStoredFile(t *testing.T) {
	e, dir := newServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1700000000000--spec.pdf"), []byte("%PDF-1.4"), 0o644))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/1700000000000--spec.pdf", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "%PDF-1.4", rec.Body.String())
}

func TestServeMissingFile(t *testing.T) {
	e, _ := newServer(t)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/nope.txt", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"responseCode":"99"`)
}
