package jwtx_test

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/simpledungeon/api/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

// jwkFor encodes an RSA public key as an RFC 7517 JWK, the same shape the
// identity provider publishes.
func jwkFor(kid string, pub *rsa.PublicKey) jwtx.JWK {
	return jwtx.JWK{
		Kty: "RSA",
		Use: "sig",
		Alg: "RS256",
		Kid: kid,
		N:   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
		E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
	}
}

// jwksServer serves the given keys and counts fetches.
type jwksServer struct {
	*httptest.Server

	keys    atomic.Pointer[jwtx.JWKS]
	fetches atomic.Int64
}

func newJWKSServer(t *testing.T, keys ...jwtx.JWK) *jwksServer {
	t.Helper()

	s := &jwksServer{}
	s.SetKeys(keys...)
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.fetches.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(s.keys.Load())
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *jwksServer) SetKeys(keys ...jwtx.JWK) {
	s.keys.Store(&jwtx.JWKS{Keys: keys})
}

func (s *jwksServer) Fetches() int64 { return s.fetches.Load() }

func newTestKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return priv
}

// signRS256 mints a token the way the identity provider would.
func signRS256(t *testing.T, priv *rsa.PrivateKey, kid string, claims jwtx.Claims) string {
	t.Helper()

	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = kid

	signed, err := tok.SignedString(priv)
	require.NoError(t, err)
	return signed
}

func testClaims(ttl time.Duration) jwtx.Claims {
	now := time.Now().UTC()
	return jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email:    "test@example.com",
		Username: "user-123",
		TokenUse: "access",
	}
}
