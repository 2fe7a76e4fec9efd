package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workexp/workexp-api/handlers"
	"github.com/workexp/workexp-api/internal/config"
	experienceservice "github.com/workexp/workexp-api/internal/experience/service"
	"github.com/workexp/workexp-api/internal/export"
	projectservice "github.com/workexp/workexp-api/internal/project/service"
	"github.com/workexp/workexp-api/internal/sessions"
	"github.com/workexp/workexp-api/internal/tokens"
	"github.com/workexp/workexp-api/internal/users"
	"github.com/workexp/workexp-api/pkg/middleware"
	"golang.org/x/crypto/bcrypt"
)

const secret = "router-test-secret-0123456789abcdef"

type objects struct{ keys []string }

func (o *objects) Put(_ context.Context, key string, _ []byte, _ string) error {
	o.keys = append(o.keys, key)
	return nil
}

func (o *objects) PresignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "http://objects/" + key, nil
}

func testConfig() *config.Config {
	return &config.Config{
		JWT:       config.JWTConfig{Secret: secret, AccessTokenTTL: time.Minute, RefreshTokenTTL: time.Hour},
		CORS:      config.CORSConfig{Whitelist: []string{"http://localhost:3000"}},
		RateLimit: config.RateLimitConfig{Enabled: true, Max: 1000, Window: time.Minute},
	}
}

func newTestRouter(t *testing.T, cfg *config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	bl := sessions.NewMemoryBlacklist()
	exps := experienceservice.NewMemoryService()
	return NewRouter(Deps{
		Config:      cfg,
		Experiences: exps,
		Projects:    projectservice.NewMemoryService(),
		Auth: handlers.NewAuthHandler(cfg.JWT,
			users.NewService(users.NewMemoryUserRepository()).WithCost(bcrypt.MinCost),
			sessions.NewService(sessions.NewMemoryRepository()),
			bl),
		Verifier: middleware.AnyVerifier(tokens.NewVerifier(secret)),
		Denylist: bl,
		Exporter: export.NewExporter(exps, &objects{}, export.NewMemoryRecordStore(), time.Minute),
	})
}

func call(r *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_OpenWrites(t *testing.T) {
	r := newTestRouter(t, testConfig())

	w := call(r, http.MethodPost, "/api/experiences", `{"company":"Acme","position":"Engineer","startDate":"2020-01-01"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
	assert.NotEmpty(t, w.Header().Get("X-RateLimit-Limit"))

	w = call(r, http.MethodPost, "/api/projects", `{"title":"Portfolio","description":"Site","technologies":["Go"]}`, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = call(r, http.MethodPost, "/api/exports", "", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var rec export.Record
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.Equal(t, 1, rec.Count)
}

func TestRouter_AuthRequiredForWrites(t *testing.T) {
	cfg := testConfig()
	cfg.JWT.AuthRequired = true
	r := newTestRouter(t, cfg)

	body := `{"company":"Acme","position":"Engineer","startDate":"2020-01-01"}`
	w := call(r, http.MethodPost, "/api/experiences", body, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = call(r, http.MethodGet, "/api/experiences", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = call(r, http.MethodPost, "/auth/register", `{"name":"Ada","email":"ada@example.com","password":"long-enough"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var out struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))

	w = call(r, http.MethodPost, "/api/experiences", body, map[string]string{"x-auth-token": out.AccessToken})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = call(r, http.MethodGet, "/api/me", "", map[string]string{"Authorization": "Bearer " + out.AccessToken})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ada@example.com")
}

func TestRouter_CORS(t *testing.T) {
	r := newTestRouter(t, testConfig())

	w := call(r, http.MethodGet, "/api/experiences", "", map[string]string{"Origin": "http://evil.example"})
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"Not allowed by CORS"}`, w.Body.String())

	w = call(r, http.MethodGet, "/api/experiences", "", map[string]string{"Origin": "http://localhost:3000"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	w = call(r, http.MethodOptions, "/api/experiences", "", map[string]string{
		"Origin":                        "http://localhost:3000",
		"Access-Control-Request-Method": http.MethodPost,
	})
	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestRouter_RateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, Max: 2, Window: time.Hour}
	r := newTestRouter(t, cfg)

	w := call(r, http.MethodPost, "/auth/register", `{"name":"Lin","email":"lin@example.com","password":"long-enough"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var out struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))

	require.Equal(t, http.StatusOK, call(r, http.MethodGet, "/api/experiences", "", nil).Code)
	w = call(r, http.MethodGet, "/api/experiences", "", nil)
	require.Equal(t, http.StatusTooManyRequests, w.Code)

	// a signed-in client from the same IP has its own budget
	bearer := map[string]string{"Authorization": "Bearer " + out.AccessToken}
	require.Equal(t, http.StatusOK, call(r, http.MethodGet, "/api/experiences", "", bearer).Code)
	require.Equal(t, http.StatusOK, call(r, http.MethodGet, "/api/experiences", "", bearer).Code)
	require.Equal(t, http.StatusTooManyRequests, call(r, http.MethodGet, "/api/experiences", "", bearer).Code)

	// operational endpoints are not limited
	require.Equal(t, http.StatusOK, call(r, http.MethodGet, "/health", "", nil).Code)
}

func TestRouter_OperationalRoutes(t *testing.T) {
	r := newTestRouter(t, testConfig())

	w := call(r, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"OK","db":"memory"}`, w.Body.String())

	require.Equal(t, http.StatusOK, call(r, http.MethodGet, "/ready", "", nil).Code)
	require.Equal(t, http.StatusOK, call(r, http.MethodGet, "/swagger/doc.json", "", nil).Code)

	call(r, http.MethodGet, "/api/experiences", "", nil)
	w = call(r, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = call(r, http.MethodGet, "/nowhere", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Route not found"}`, w.Body.String())
}
