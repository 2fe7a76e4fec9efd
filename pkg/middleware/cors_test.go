package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func corsRouter(whitelist ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS(whitelist))
	r.GET("/api/experiences", func(c *gin.Context) { c.JSON(http.StatusOK, []string{}) })
	r.POST("/api/experiences", func(c *gin.Context) { c.Status(http.StatusCreated) })
	return r
}

func TestCORS_AllowedOrigin(t *testing.T) {
	r := corsRouter("http://localhost:3000")
	req := httptest.NewRequest(http.MethodGet, "/api/experiences", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_Preflight(t *testing.T) {
	r := corsRouter("http://localhost:3000")
	req := httptest.NewRequest(http.MethodOptions, "/api/experiences", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	require.NotEmpty(t, w.Header().Get("Access-Control-Allow-Methods"))
}

func TestCORS_DisallowedOrigin(t *testing.T) {
	r := corsRouter("http://localhost:3000")
	req := httptest.NewRequest(http.MethodGet, "/api/experiences", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
	require.JSONEq(t, `{"error":"Not allowed by CORS"}`, w.Body.String())
}

func TestCORS_NoOriginAndWildcard(t *testing.T) {
	w := httptest.NewRecorder()
	corsRouter("http://localhost:3000").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/experiences", nil))
	require.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/experiences", nil)
	req.Header.Set("Origin", "http://anything.example.com")
	w = httptest.NewRecorder()
	corsRouter("*").ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	rid := w.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(rid)
	require.NoError(t, err)
	require.Equal(t, rid, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}
