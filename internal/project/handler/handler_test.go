package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workexp/workexp-api/internal/project/service"
)

func serve(g *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	g.ServeHTTP(w, req)
	return w
}

func TestProjectHandler_CRUD(t *testing.T) {
	gin.SetMode(gin.TestMode)
	g := gin.New()
	RegisterProjectRoutes(g, service.NewMemoryService())

	w := serve(g, http.MethodPost, "/api/projects", `{"title":"Portfolio","description":"Personal site"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, false, created["featured"])
	assert.Equal(t, []interface{}{}, created["technologies"])
	id := created["_id"].(string)

	w = serve(g, http.MethodPut, "/api/projects/"+id, `{"featured":true,"technologies":["Go","React"]}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = serve(g, http.MethodPost, "/api/projects", `{"title":"Other","description":"x"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var list []map[string]interface{}
	w = serve(g, http.MethodGet, "/api/projects?featured=true", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Portfolio", list[0]["title"])

	w = serve(g, http.MethodGet, "/api/projects", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "Other", list[0]["title"])

	w = serve(g, http.MethodDelete, "/api/projects/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	w = serve(g, http.MethodGet, "/api/projects/"+id, "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Project not found"}`, w.Body.String())
}

func TestProjectHandler_Validation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	g := gin.New()
	RegisterProjectRoutes(g, service.NewMemoryService())

	w := serve(g, http.MethodPost, "/api/projects", `{"title":"  "}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"errors":[{"field":"title","message":"title is required"},{"field":"description","message":"description is required"}]}`, w.Body.String())

	w = serve(g, http.MethodGet, "/api/projects?featured=sometimes", "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(g, http.MethodDelete, "/api/projects/xyz", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
}
