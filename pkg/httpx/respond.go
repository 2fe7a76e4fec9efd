// Package httpx maps domain errors onto the API's JSON error bodies.
package httpx

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/workexp/workexp-api/internal/store"
	"github.com/workexp/workexp-api/pkg/logger"
	"github.com/workexp/workexp-api/pkg/validation"
)

// Error writes the response for err:
//   - validation.Errors      -> 400 {"errors": [...]}
//   - store.ErrInvalidID     -> 400 {"error": "Invalid ID format"}
//   - store.ErrNotFound      -> 404 {"error": notFound}
//   - anything else          -> 500 {"error": err.Error()}
func Error(c *gin.Context, err error, notFound string) {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		c.JSON(http.StatusBadRequest, gin.H{"errors": verrs})
	case errors.Is(err, store.ErrInvalidID):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound})
	default:
		_ = c.Error(err)
		logger.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// BadRequest writes a 400 with a single message.
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
