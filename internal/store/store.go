// Package store holds the errors and id helpers shared by the Mongo and
// in-memory repositories.
package store

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrInvalidID = errors.New("invalid id format")
)

// ParseID converts a hex id from a URL into an ObjectID.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}

// Now is the timestamp repositories stamp on writes. BSON dates keep
// milliseconds, so the value is truncated to match what a later read returns.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
