package company

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Additional-Code/buyerdesk/internal/cache"
	"github.com/Additional-Code/buyerdesk/internal/config"
	"github.com/Additional-Code/buyerdesk/internal/entity"
	"github.com/Additional-Code/buyerdesk/internal/presentation/http/middleware"
	"github.com/Additional-Code/buyerdesk/internal/repository"
	"github.com/Additional-Code/buyerdesk/internal/repository/mocks"
	httpserver "github.com/Additional-Code/buyerdesk/internal/server/http"
	service "github.com/Additional-Code/buyerdesk/internal/service/company"
	"github.com/Additional-Code/buyerdesk/internal/validation"
	"github.com/Additional-Code/buyerdesk/pkg/token"
)

const testSecret = "handler-test-secret"

type fixture struct {
	e     *echo.Echo
	tags  *mocks.Store[entity.RefEntry]
	token string
}

func newFixture(t *testing.T, role string) fixture {
	t.Helper()
	cfg := config.Config{
		Auth: config.Auth{JWTSecret: testSecret, Issuer: "buyerdesk", AdminRole: "admin"},
	}

	e := echo.New()
	e.Validator = validation.New()
	e.HTTPErrorHandler = httpserver.ErrorHandler(zap.NewNop())

	refs := make(repository.RefStores, len(entity.RefKinds))
	for _, kind := range entity.RefKinds {
		refs[kind] = &mocks.Store[entity.RefEntry]{}
	}
	store, err := cache.NewStore(nil, cfg, zap.NewNop())
	require.NoError(t, err)

	svc := service.NewService(service.Params{
		Refs:      refs,
		Companies: &mocks.Store[entity.Company]{},
		Cache:     store,
		Config:    cfg,
		Logger:    zap.NewNop(),
	})
	Register(e, NewHandler(svc), middleware.NewAuth(cfg))

	signed, err := token.Generate(testSecret, "buyerdesk", "admin-1", "c1", role, time.Hour)
	require.NoError(t, err)
	return fixture{
		e:     e,
		tags:  refs[entity.RefTags].(*mocks.Store[entity.RefEntry]),
		token: "Bearer " + signed,
	}
}

func (f fixture) post(t *testing.T, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewBufferString(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, f.token)
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload), rec.Body.String())
	return rec, payload
}

func TestCreateTagWithoutNameIsRejected(t *testing.T) {
	f := newFixture(t, "admin")

	rec, payload := f.post(t, "/company/tags", `{"companyId":"c1"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "98", payload["responseCode"])
	f.tags.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestCreateTagWithoutCompanyIsRejected(t *testing.T) {
	f := newFixture(t, "admin")

	rec, payload := f.post(t, "/company/tags", `{"name":"steel"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "98", payload["responseCode"])
	f.tags.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestCreateTag(t *testing.T) {
	f := newFixture(t, "admin")
	id := primitive.NewObjectID()
	f.tags.On("Insert", mock.Anything, mock.MatchedBy(func(e *entity.RefEntry) bool {
		return e.Name == "steel" && e.CompanyID == "c1" && e.CreatedBy == "admin-1"
	})).Return(id, nil)

	rec, payload := f.post(t, "/company/tags", `{"name":"steel","companyId":"c1"}`)

	require.Equal(t, http.StatusCreated, rec.Code, payload)
	assert.Equal(t, "00", payload["responseCode"])
	tag := payload["tag"].(map[string]any)
	assert.Equal(t, id.Hex(), tag["_id"])
	f.tags.AssertExpectations(t)
}

func TestCreateTagRequiresAdmin(t *testing.T) {
	f := newFixture(t, "buyer")

	rec, payload := f.post(t, "/company/tags", `{"name":"steel","companyId":"c1"}`)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "95", payload["responseCode"])
	f.tags.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}
