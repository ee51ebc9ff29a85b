package jwtx_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/simpledungeon/api/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestClaimsValidateExpiry(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()

	t.Run("valid token passes", func(t *testing.T) {
		c := jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		}}
		require.NoError(t, c.ValidateExpiry())
	})

	t.Run("expired token fails", func(t *testing.T) {
		c := jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
		}}
		require.ErrorIs(t, c.ValidateExpiry(), jwtx.ErrExpired)
	})

	t.Run("not-yet-valid token fails", func(t *testing.T) {
		c := jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{
			NotBefore: jwt.NewNumericDate(now.Add(time.Minute)),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		}}
		require.ErrorIs(t, c.ValidateExpiry(), jwtx.ErrNotYetValid)
	})

	t.Run("leeway tolerates small skew", func(t *testing.T) {
		c := jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(-10 * time.Second)),
		}}
		require.ErrorIs(t, c.ValidateExpiry(), jwtx.ErrExpired)
		require.NoError(t, c.ValidateExpiryWithLeeway(30*time.Second))
	})
}

func TestClaimsIdentity(t *testing.T) {
	t.Parallel()

	withUsername := jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "sub-1"},
		Username:         "alice",
	}
	require.Equal(t, "alice", withUsername.Identity())

	subjectOnly := jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "sub-1"},
	}
	require.Equal(t, "sub-1", subjectOnly.Identity())
}
