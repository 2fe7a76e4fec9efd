package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account that may sign in and edit the work history. Sub is set
// for accounts first seen through an external OIDC issuer.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Sub          string             `bson:"sub,omitempty" json:"sub,omitempty"`
	Email        string             `bson:"email" json:"email"`
	Name         string             `bson:"name" json:"name"`
	PasswordHash string             `bson:"passwordHash,omitempty" json:"-"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}
