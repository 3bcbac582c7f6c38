package item

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Additional-Code/buyerdesk/internal/config"
	"github.com/Additional-Code/buyerdesk/internal/entity"
	"github.com/Additional-Code/buyerdesk/internal/presentation/http/middleware"
	"github.com/Additional-Code/buyerdesk/internal/presentation/http/request"
	"github.com/Additional-Code/buyerdesk/internal/repository/mocks"
	httpserver "github.com/Additional-Code/buyerdesk/internal/server/http"
	service "github.com/Additional-Code/buyerdesk/internal/service/item"
	"github.com/Additional-Code/buyerdesk/internal/storage"
	"github.com/Additional-Code/buyerdesk/internal/validation"
	"github.com/Additional-Code/buyerdesk/pkg/token"
)

const testSecret = "handler-test-secret"

type fixture struct {
	e     *echo.Echo
	items *mocks.Store[entity.Item]
	dir   string
	token string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Config{
		App:     config.App{BaseURL: "https://api.example.com"},
		Storage: config.Storage{Driver: "local", Dir: dir, MaxFiles: 10},
		Auth:    config.Auth{JWTSecret: testSecret, Issuer: "buyerdesk", AdminRole: "admin"},
	}

	e := echo.New()
	e.Validator = validation.New()
	e.HTTPErrorHandler = httpserver.ErrorHandler(zap.NewNop())

	items := &mocks.Store[entity.Item]{}
	uploader := storage.NewUploader(storage.NewLocal(dir), cfg, zap.NewNop()).
		WithClock(func() time.Time { return time.UnixMilli(1700000000000) })
	svc := service.NewService(service.Params{Items: items, Uploader: uploader, Logger: zap.NewNop()})
	Register(e, NewHandler(svc), middleware.NewAuth(cfg))

	signed, err := token.Generate(testSecret, "buyerdesk", "admin-1", "c1", "admin", time.Hour)
	require.NoError(t, err)
	return fixture{e: e, items: items, dir: dir, token: "Bearer " + signed}
}

func multipartBody(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for key, v := range fields {
		require.NoError(t, w.WriteField(key, v))
	}
	for name, content := range files {
		part, err := w.CreateFormFile(request.DocumentsField, name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func (f fixture) post(t *testing.T, target string, body *bytes.Buffer, contentType string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set(echo.HeaderContentType, contentType)
	req.Header.Set(echo.HeaderAuthorization, f.token)
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload), rec.Body.String())
	return rec, payload
}

func TestCreateItemMultipartWithoutCompanyIsRejected(t *testing.T) {
	f := newFixture(t)

	body, ctype := multipartBody(t, map[string]string{"item_name": "bolt"}, map[string]string{"sheet.pdf": "%PDF"})
	rec, payload := f.post(t, "/item", body, ctype)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "98", payload["responseCode"])
	f.items.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)

	entries, err := os.ReadDir(f.dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCreateItemMultipart(t *testing.T) {
	f := newFixture(t)
	id := primitive.NewObjectID()
	f.items.On("Insert", mock.Anything, mock.MatchedBy(func(it *entity.Item) bool {
		return it.CompanyID == "c1" && len(it.Document) == 1 && it.CreatedBy == "admin-1"
	})).Return(id, nil)

	body, ctype := multipartBody(t, map[string]string{"item_name": "bolt", "companyId": "c1"}, map[string]string{"sheet.pdf": "%PDF"})
	rec, payload := f.post(t, "/item", body, ctype)

	require.Equal(t, http.StatusCreated, rec.Code, payload)
	assert.Equal(t, "00", payload["responseCode"])
	item := payload["item"].(map[string]any)
	assert.Equal(t, id.Hex(), item["_id"])
	f.items.AssertExpectations(t)
}

func TestUploadItemDocumentsMultipart(t *testing.T) {
	f := newFixture(t)
	id := primitive.NewObjectID()
	f.items.On("FindByID", mock.Anything, id).Return(&entity.Item{ID: id, CompanyID: "c1"}, nil)
	f.items.On("UpdateWhere", mock.Anything, bson.M{"_id": id}, mock.MatchedBy(func(update bson.M) bool {
		push, ok := update["$push"].(bson.M)
		if !ok {
			return false
		}
		each, ok := push["document"].(bson.M)["$each"].([]entity.Document)
		return ok && len(each) == 1
	})).Return(nil)

	body, ctype := multipartBody(t, nil, map[string]string{"drawing.pdf": "%PDF"})
	rec, payload := f.post(t, "/item/"+id.Hex()+"/documents", body, ctype)

	require.Equal(t, http.StatusCreated, rec.Code, payload)
	assert.Equal(t, "00", payload["responseCode"])
	assert.Equal(t, "File uploaded Successfully", payload["responseDescription"])

	docs := payload["uploadedDocument"].([]any)
	require.Len(t, docs, 1)
	doc := docs[0].(map[string]any)
	assert.Equal(t, "uploads/1700000000000--drawing.pdf", doc["path"])
	_, err := os.Stat(filepath.Join(f.dir, "1700000000000--drawing.pdf"))
	assert.NoError(t, err)
	f.items.AssertExpectations(t)
}

func TestUploadItemDocumentsWithoutFilesIsRejected(t *testing.T) {
	f := newFixture(t)
	id := primitive.NewObjectID()

	body, ctype := multipartBody(t, map[string]string{"note": "none"}, nil)
	rec, payload := f.post(t, "/item/"+id.Hex()+"/documents", body, ctype)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "98", payload["responseCode"])
	f.items.AssertNotCalled(t, "UpdateWhere", mock.Anything, mock.Anything, mock.Anything)
}
