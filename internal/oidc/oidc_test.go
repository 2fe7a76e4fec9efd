package oidc

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const issuer = "https://idp.example.com/realms/workexp"

func sign(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func TestStaticVerifier(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	v := NewStaticVerifier(issuer, "workexp", &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&key.PublicKey}})
	ctx := context.Background()

	good := sign(t, key, jwt.MapClaims{
		"iss": issuer, "aud": "workexp", "sub": "ext-1", "email": "ext@example.com",
		"exp": time.Now().Add(time.Minute).Unix(), "iat": time.Now().Unix(),
	})
	tok, err := v.Verify(ctx, good)
	require.NoError(t, err)
	var claims map[string]interface{}
	require.NoError(t, tok.Claims(&claims))
	require.Equal(t, "ext-1", claims["sub"])

	wrongAud := sign(t, key, jwt.MapClaims{
		"iss": issuer, "aud": "other", "sub": "ext-1",
		"exp": time.Now().Add(time.Minute).Unix(),
	})
	_, err = v.Verify(ctx, wrongAud)
	require.Error(t, err)

	expired := sign(t, key, jwt.MapClaims{
		"iss": issuer, "aud": "workexp", "sub": "ext-1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	_, err = v.Verify(ctx, expired)
	require.Error(t, err)
}
