package webapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/launchpadhq/launchpad/config"
	"github.com/launchpadhq/launchpad/internal/adminapi"
	"github.com/launchpadhq/launchpad/internal/app"
	"github.com/launchpadhq/launchpad/internal/billing"
	"github.com/launchpadhq/launchpad/internal/completion"
	"github.com/launchpadhq/launchpad/internal/domain"
	"github.com/launchpadhq/launchpad/internal/ingest"
	"github.com/launchpadhq/launchpad/internal/ledger"
	"github.com/launchpadhq/launchpad/internal/pipeline"
	"github.com/launchpadhq/launchpad/internal/store"
	"github.com/launchpadhq/launchpad/internal/webserver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fakeGenerator struct {
	streamFn func(ctx context.Context, req completion.TextRequest, onChunk func(string) error) (string, error)
}

func (f *fakeGenerator) StreamText(ctx context.Context, req completion.TextRequest, onChunk func(string) error) (string, error) {
	if f.streamFn != nil {
		return f.streamFn(ctx, req, onChunk)
	}
	for _, chunk := range []string{"generated ", "output"} {
		if onChunk != nil {
			if err := onChunk(chunk); err != nil {
				return "", err
			}
		}
	}
	return "generated output", nil
}

func (f *fakeGenerator) GenerateText(ctx context.Context, req completion.TextRequest) (string, error) {
	return "optimized prompt", nil
}

func (f *fakeGenerator) GenerateImage(ctx context.Context, req completion.ImageRequest) (*completion.Image, error) {
	return &completion.Image{Base64: "aW1n", MimeType: "image/png"}, nil
}

type apiFixture struct {
	application *app.Application
	gen         *fakeGenerator
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(domain.Tables...))

	cfg := new(config.AppConfig)
	*cfg = *config.DefaultAppConfig
	cfg.Web.Secret = "test-secret"

	application := app.NewApplication(cfg)
	application.OverrideDB(db)
	require.NoError(t, application.SetSettingsValue("credits", "register_bonus", "2"))

	users := store.NewGormUserRepository(db)
	products := store.NewGormProductRepository(db)
	creditLedger := ledger.NewCreditLedger(db)
	gen := &fakeGenerator{}
	orchestrator := pipeline.NewOrchestrator(
		products, creditLedger, gen, application, 5*time.Second)
	ingestor := ingest.NewIngestor(products, application.MaxUploadBytes())
	billingService := billing.NewService(cfg.Stripe, db, creditLedger)

	webserver.Init(application)
	NewHandlers(application, users, products, creditLedger, orchestrator, ingestor, billingService).Register()
	adminapi.NewHandlers(application, users, products).Register()

	return &apiFixture{application: application, gen: gen}
}

// do runs one request through the router, carrying the auth cookie.
func (f *apiFixture) do(t *testing.T, cookie *http.Cookie, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	webserver.Echo().ServeHTTP(rec, req)
	return rec
}

func authCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == webserver.TokenCookieName && cookie.Value != "" {
			return cookie
		}
	}
	t.Fatal("auth cookie not set")
	return nil
}

func (f *apiFixture) registerUser(t *testing.T, email string) *http.Cookie {
	t.Helper()
	rec := f.do(t, nil, http.MethodPost, "/api/auth/register",
		map[string]string{"email": email, "password": "password123"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return authCookie(t, rec)
}

func (f *apiFixture) uploadProduct(t *testing.T, cookie *http.Cookie, content string) string {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "product.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	webserver.Echo().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var product struct {
		Id string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &product))
	require.NotEmpty(t, product.Id)
	return product.Id
}

func TestAuthFlow(t *testing.T) {
	f := newAPIFixture(t)

	cookie := f.registerUser(t, "owner@example.com")

	// The registration bonus lands on the new account.
	rec := f.do(t, cookie, http.MethodGet, "/api/credits", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"credits":2}`, rec.Body.String())

	// Duplicate email is rejected.
	rec = f.do(t, nil, http.MethodPost, "/api/auth/register",
		map[string]string{"email": "owner@example.com", "password": "password123"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Wrong password is rejected, right one signs in.
	rec = f.do(t, nil, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "owner@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, nil, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "owner@example.com", "password": "password123"})
	assert.Equal(t, http.StatusOK, rec.Code)

	// No cookie, no API.
	rec = f.do(t, nil, http.MethodGet, "/api/credits", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUploadAndPipelineFlow(t *testing.T) {
	f := newAPIFixture(t)
	cookie := f.registerUser(t, "owner@example.com")
	productID := f.uploadProduct(t, cookie, "Solar Lantern\nA foldable lantern.")

	// Paid stage before its prerequisite is blocked.
	rec := f.do(t, cookie, http.MethodPost, "/api/pipeline/product_page",
		map[string]string{"product_id": productID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// First stage streams plain text.
	rec = f.do(t, cookie, http.MethodPost, "/api/pipeline/market_analysis",
		map[string]string{"product_id": productID})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "generated output", rec.Body.String())
	assert.Contains(t, rec.Header().Get(echoContentType), "text/plain")

	// The output is already persisted; confirm is an idempotent no-op.
	rec = f.do(t, cookie, http.MethodPost, "/api/pipeline/market_analysis/confirm",
		map[string]string{"product_id": productID, "content": "generated output"})
	assert.Equal(t, http.StatusOK, rec.Code)

	// Detail view reflects progress from persisted state.
	rec = f.do(t, cookie, http.MethodGet, "/api/products/"+productID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var detail struct {
		Stages []struct {
			Stage    string `json:"stage"`
			Complete bool   `json:"complete"`
		} `json:"stages"`
		NextStage string `json:"next_stage"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	require.Len(t, detail.Stages, 4)
	assert.True(t, detail.Stages[0].Complete)
	assert.Equal(t, "product_page", detail.NextStage)

	// Unknown stage names are rejected.
	rec = f.do(t, cookie, http.MethodPost, "/api/pipeline/seo_keywords",
		map[string]string{"product_id": productID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOwnershipAcrossAccounts(t *testing.T) {
	f := newAPIFixture(t)
	owner := f.registerUser(t, "owner@example.com")
	stranger := f.registerUser(t, "stranger@example.com")
	productID := f.uploadProduct(t, owner, "Widget\ndetails")

	rec := f.do(t, stranger, http.MethodGet, "/api/products/"+productID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, stranger, http.MethodDelete, "/api/products/"+productID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, stranger, http.MethodGet, "/api/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))

	rec = f.do(t, owner, http.MethodGet, "/api/products/"+productID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestInsufficientCreditsMapsTo402(t *testing.T) {
	f := newAPIFixture(t)
	require.NoError(t, f.application.SetSettingsValue("credits", "register_bonus", "0"))
	cookie := f.registerUser(t, "broke@example.com")
	productID := f.uploadProduct(t, cookie, "Widget\ndetails")

	rec := f.do(t, cookie, http.MethodPost, "/api/pipeline/market_analysis",
		map[string]string{"product_id": productID})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, cookie, http.MethodPost, "/api/pipeline/product_page",
		map[string]string{"product_id": productID})
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
}

func TestAdminAccessControl(t *testing.T) {
	f := newAPIFixture(t)
	standard := f.registerUser(t, "standard@example.com")

	rec := f.do(t, standard, http.MethodGet, "/api/admin/users", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Promote the account and sign in again to refresh the role claim.
	require.NoError(t, f.application.DB().Model(&domain.SysUser{}).
		Where("email = ?", "standard@example.com").
		Update("role", domain.RoleAdmin).Error)
	rec = f.do(t, nil, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "standard@example.com", "password": "password123"})
	require.Equal(t, http.StatusOK, rec.Code)
	admin := authCookie(t, rec)

	rec = f.do(t, admin, http.MethodGet, "/api/admin/users", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, admin, http.MethodGet, "/api/admin/products", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

const echoContentType = "Content-Type"
