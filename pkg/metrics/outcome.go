package metrics

import (
	"errors"

	"github.com/workexp/workexp-api/internal/store"
	"github.com/workexp/workexp-api/pkg/validation"
)

// Outcome classifies err for the outcome label of ResourceOps.
func Outcome(err error) string {
	var verrs validation.Errors
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &verrs), errors.Is(err, store.ErrInvalidID):
		return "invalid"
	case errors.Is(err, store.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}

// Observe records one resource operation.
func Observe(resource, op string, err error) {
	ResourceOps.WithLabelValues(resource, op, Outcome(err)).Inc()
}
