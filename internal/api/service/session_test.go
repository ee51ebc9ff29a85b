package service_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/simpledungeon/api/internal/api/idp"
	"github.com/simpledungeon/api/internal/api/idp/idptest"
	"github.com/simpledungeon/api/internal/api/service"
	"github.com/simpledungeon/api/internal/api/store"
	"github.com/simpledungeon/api/internal/api/store/drivers/sqlite"
	"github.com/simpledungeon/api/pkg/cryptox"
	"github.com/simpledungeon/api/pkg/jwtx"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	s, err := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())

	return s
}

func newSessionService(t *testing.T, provider *idptest.Fake) (*service.SessionService, store.Store) {
	t.Helper()

	st := newTestStore(t)
	return &service.SessionService{
		Provider:        provider,
		Store:           st,
		ProviderTimeout: time.Second,
	}, st
}

func claimsFor(sub string, exp time.Time) jwtx.Claims {
	return jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
}

func TestLoginReturnsTokens(t *testing.T) {
	t.Parallel()

	provider := idptest.New()
	provider.AddUser("user@example.com", idptest.User{Password: "correct-horse"})
	svc, _ := newSessionService(t, provider)

	tokens, err := svc.Login(context.Background(), "user@example.com", "correct-horse", "")
	require.NoError(t, err)
	require.NotEmpty(t, tokens.AccessToken)
	require.NotEmpty(t, tokens.IDToken)
	require.NotEmpty(t, tokens.RefreshToken)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	t.Parallel()

	provider := idptest.New()
	provider.AddUser("user@example.com", idptest.User{Password: "correct-horse"})
	svc, _ := newSessionService(t, provider)

	_, wrongPassword := svc.Login(context.Background(), "user@example.com", "battery-staple", "")
	_, unknownUser := svc.Login(context.Background(), "nobody@example.com", "battery-staple", "")

	require.ErrorIs(t, wrongPassword, service.ErrInvalidCredentials)
	require.ErrorIs(t, unknownUser, service.ErrInvalidCredentials)

	// Whatever the cause, callers see the exact same error value.
	require.Equal(t, wrongPassword, unknownUser)
}

func TestLoginChallengeWithoutReplacementPassword(t *testing.T) {
	t.Parallel()

	provider := idptest.New()
	provider.AddUser("temp@example.com", idptest.User{
		Password:           "temporary-pass",
		RequireNewPassword: true,
	})
	svc, _ := newSessionService(t, provider)

	_, err := svc.Login(context.Background(), "temp@example.com", "temporary-pass", "")
	require.ErrorIs(t, err, service.ErrNewPasswordRequired)
}

func TestLoginChallengeCompletedInOneCall(t *testing.T) {
	t.Parallel()

	provider := idptest.New()
	provider.AddUser("temp@example.com", idptest.User{
		Password:           "temporary-pass",
		RequireNewPassword: true,
	})
	svc, _ := newSessionService(t, provider)

	tokens, err := svc.Login(context.Background(), "temp@example.com", "temporary-pass", "permanent-pass")
	require.NoError(t, err)
	require.NotEmpty(t, tokens.AccessToken)

	// The rotation sticks: the replacement password now logs in directly.
	tokens, err = svc.Login(context.Background(), "temp@example.com", "permanent-pass", "")
	require.NoError(t, err)
	require.NotEmpty(t, tokens.AccessToken)

	_, err = svc.Login(context.Background(), "temp@example.com", "temporary-pass", "")
	require.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestLoginProviderOutage(t *testing.T) {
	t.Parallel()

	provider := idptest.New()
	provider.Err = idp.ErrUnavailable
	svc, _ := newSessionService(t, provider)

	_, err := svc.Login(context.Background(), "user@example.com", "correct-horse", "")
	require.ErrorIs(t, err, service.ErrProviderUnavailable)
}

func TestLoginProviderTimeout(t *testing.T) {
	t.Parallel()

	provider := idptest.New()
	provider.AddUser("user@example.com", idptest.User{Password: "correct-horse"})
	provider.Delay = 250 * time.Millisecond

	st := newTestStore(t)
	svc := &service.SessionService{
		Provider:        provider,
		Store:           st,
		ProviderTimeout: 10 * time.Millisecond,
	}

	_, err := svc.Login(context.Background(), "user@example.com", "correct-horse", "")
	require.ErrorIs(t, err, service.ErrProviderUnavailable)
}

func TestLogoutBlacklistsFingerprint(t *testing.T) {
	t.Parallel()

	provider := idptest.New()
	svc, st := newSessionService(t, provider)

	const rawToken = "header.payload.signature"
	claims := claimsFor("sub-1", time.Now().Add(time.Hour))

	require.NoError(t, svc.Logout(context.Background(), rawToken, claims))

	revoked, err := st.RevokedTokens().IsRevoked(context.Background(), cryptox.FingerprintToken(rawToken))
	require.NoError(t, err)
	require.True(t, revoked)

	// The store never sees the raw token itself.
	revoked, err = st.RevokedTokens().IsRevoked(context.Background(), rawToken)
	require.NoError(t, err)
	require.False(t, revoked)
}

func TestLogoutWithoutExpiryClaimStillRevokes(t *testing.T) {
	t.Parallel()

	provider := idptest.New()
	svc, st := newSessionService(t, provider)

	const rawToken = "token-with-no-exp"
	claims := jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "sub-1"}}

	require.NoError(t, svc.Logout(context.Background(), rawToken, claims))

	revoked, err := st.RevokedTokens().IsRevoked(context.Background(), cryptox.FingerprintToken(rawToken))
	require.NoError(t, err)
	require.True(t, revoked)
}

func TestRegister(t *testing.T) {
	t.Parallel()

	provider := idptest.New()
	svc, _ := newSessionService(t, provider)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "new@example.com", "long-enough-pass"))
	require.True(t, provider.HasUser("new@example.com"))

	err := svc.Register(ctx, "new@example.com", "long-enough-pass")
	require.ErrorIs(t, err, service.ErrAlreadyRegistered)

	err = svc.Register(ctx, "short@example.com", "short")
	require.ErrorIs(t, err, service.ErrWeakPassword)
}

func TestExpungeDeletesAccountAndEndsSession(t *testing.T) {
	t.Parallel()

	provider := idptest.New()
	provider.AddUser("user@example.com", idptest.User{Password: "correct-horse", Sub: "sub-1"})
	svc, st := newSessionService(t, provider)
	ctx := context.Background()

	const rawToken = "header.payload.signature"
	claims := claimsFor("sub-1", time.Now().Add(time.Hour))

	require.NoError(t, svc.Expunge(ctx, rawToken, claims))
	require.False(t, provider.HasUser("user@example.com"))

	revoked, err := st.RevokedTokens().IsRevoked(ctx, cryptox.FingerprintToken(rawToken))
	require.NoError(t, err)
	require.True(t, revoked)
}

func TestExpungeUnknownUser(t *testing.T) {
	t.Parallel()

	provider := idptest.New()
	svc, _ := newSessionService(t, provider)

	err := svc.Expunge(context.Background(), "token", claimsFor("ghost", time.Now().Add(time.Hour)))
	require.ErrorIs(t, err, service.ErrUserNotFound)
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	provider := idptest.New()
	provider.AddUser("user@example.com", idptest.User{Password: "correct-horse", Sub: "sub-1"})
	svc, _ := newSessionService(t, provider)
	ctx := context.Background()

	account, err := svc.Describe(ctx, "sub-1")
	require.NoError(t, err)
	require.Equal(t, "user@example.com", account.Email)
	require.True(t, account.Enabled)

	_, err = svc.Describe(ctx, "ghost")
	require.ErrorIs(t, err, service.ErrUserNotFound)
}
