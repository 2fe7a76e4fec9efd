package tokens

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/workexp/workexp-api/internal/models"
	"github.com/workexp/workexp-api/internal/users"
	"github.com/workexp/workexp-api/pkg/middleware"
)

// GenerateAccessToken creates a signed JWT access token for the user
func GenerateAccessToken(secret string, u *models.User, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret not configured")
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   users.LocalIssuer,
		"sub":   u.ID.Hex(),
		"name":  u.Name,
		"email": u.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Verifier checks HS256 tokens signed with the local secret.
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(users.LocalIssuer),
			jwt.WithExpirationRequired(),
		),
	}
}

func (v *Verifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	claims, err := v.parse(raw)
	if err != nil {
		return nil, err
	}
	return mapToken(claims), nil
}

// ExpiresAt verifies raw and returns its exp claim. Forged or foreign
// tokens are rejected so they never size a blacklist entry.
func (v *Verifier) ExpiresAt(raw string) (time.Time, error) {
	claims, err := v.parse(raw)
	if err != nil {
		return time.Time{}, err
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, err
	}
	if exp == nil {
		return time.Time{}, errors.New("exp claim not present")
	}
	return exp.Time, nil
}

func (v *Verifier) parse(raw string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	if _, err := v.parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}); err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}
	return claims, nil
}

type mapToken jwt.MapClaims

func (t mapToken) Claims(v interface{}) error {
	b, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}
