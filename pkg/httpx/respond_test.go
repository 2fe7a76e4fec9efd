package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/workexp/workexp-api/internal/store"
	"github.com/workexp/workexp-api/pkg/validation"
)

func TestError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
		body string
	}{
		{"validation", validation.Errors{{Field: "company", Message: "company is required"}}, http.StatusBadRequest, `{"errors":[{"field":"company","message":"company is required"}]}`},
		{"invalid id", fmt.Errorf("find: %w", store.ErrInvalidID), http.StatusBadRequest, `{"error":"Invalid ID format"}`},
		{"not found", fmt.Errorf("find: %w", store.ErrNotFound), http.StatusNotFound, `{"error":"Thing not found"}`},
		{"storage", errors.New("connection refused"), http.StatusInternalServerError, `{"error":"connection refused"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := gin.New()
			g.GET("/", func(c *gin.Context) { Error(c, tc.err, "Thing not found") })
			w := httptest.NewRecorder()
			g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
			require.Equal(t, tc.code, w.Code)
			require.JSONEq(t, tc.body, w.Body.String())
		})
	}
}
