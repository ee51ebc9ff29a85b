package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/simpledungeon/api/internal/api/domain"
	"github.com/simpledungeon/api/internal/api/idp"
	"github.com/simpledungeon/api/internal/api/store"
	"github.com/simpledungeon/api/pkg/cryptox"
	"github.com/simpledungeon/api/pkg/jwtx"
	"github.com/simpledungeon/api/pkg/slogx"
)

var (
	// ErrInvalidCredentials is returned for wrong password AND unknown user.
	// Callers must present both identically to prevent account enumeration.
	ErrInvalidCredentials = errors.New("invalid_credentials")

	// ErrNewPasswordRequired means the account holds a temporary password and
	// login must be retried with a replacement password supplied.
	ErrNewPasswordRequired = errors.New("new_password_required")

	// ErrLoginFailed covers a provider response that carried neither tokens
	// nor a challenge we know how to relay.
	ErrLoginFailed = errors.New("login_failed")

	ErrAlreadyRegistered   = errors.New("already_registered")
	ErrWeakPassword        = errors.New("weak_password")
	ErrInvalidEmail        = errors.New("invalid_email")
	ErrUserNotFound        = errors.New("user_not_found")
	ErrProviderUnavailable = errors.New("provider_unavailable")
)

// revokedTokenFallbackTTL bounds the blacklist entry for a token whose claims
// carry no expiry. Matches the provider's maximum access token lifetime.
const revokedTokenFallbackTTL = 24 * time.Hour

// SessionService owns the login, logout, register, and expunge flows. The
// identity provider is the system of record; locally this service persists
// only the revocation blacklist.
type SessionService struct {
	Provider idp.Provider
	Store    store.Store

	// ProviderTimeout bounds each identity-provider call.
	ProviderTimeout time.Duration
}

func (s *SessionService) providerCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := s.ProviderTimeout
	if timeout <= 0 {
		timeout = idp.ProviderTimeoutDefault
	}
	return context.WithTimeout(ctx, timeout)
}

// Login authenticates email/password against the provider. When the account
// is mid password-rotation the provider answers with a challenge instead of
// tokens: with newPassword set the challenge is completed in the same call,
// without it the caller gets ErrNewPasswordRequired and must retry.
func (s *SessionService) Login(ctx context.Context, email, password, newPassword string) (domain.TokenSet, error) {
	l := slogx.FromContext(ctx)

	pctx, cancel := s.providerCtx(ctx)
	defer cancel()

	result, err := s.Provider.InitiateAuth(pctx, email, password)
	if err != nil {
		return domain.TokenSet{}, mapLoginError(err)
	}

	if result.Challenge == idp.ChallengeNewPasswordRequired {
		if newPassword == "" {
			return domain.TokenSet{}, ErrNewPasswordRequired
		}

		cctx, ccancel := s.providerCtx(ctx)
		defer ccancel()

		result, err = s.Provider.RespondToNewPasswordChallenge(cctx, email, newPassword, result.Session)
		if err != nil {
			return domain.TokenSet{}, mapLoginError(err)
		}
	}

	if result.Tokens == nil {
		l.Warn("login produced neither tokens nor a known challenge",
			slog.String("challenge", string(result.Challenge)))
		return domain.TokenSet{}, ErrLoginFailed
	}

	l.Info("user logged in")
	return *result.Tokens, nil
}

// mapLoginError collapses the provider's auth failures into one opaque error.
// Unknown user and wrong password are intentionally indistinguishable here.
func mapLoginError(err error) error {
	switch {
	case errors.Is(err, idp.ErrInvalidCredentials), errors.Is(err, idp.ErrUserNotFound):
		return ErrInvalidCredentials
	case errors.Is(err, idp.ErrUnavailable):
		return ErrProviderUnavailable
	case errors.Is(err, idp.ErrWeakPassword), errors.Is(err, idp.ErrInvalidParameter):
		// Challenge completion with an unacceptable replacement password.
		return ErrWeakPassword
	default:
		return err
	}
}

// Logout blacklists the presented token until its natural expiry. The raw
// token never touches the store, only its fingerprint.
func (s *SessionService) Logout(ctx context.Context, rawToken string, claims jwtx.Claims) error {
	l := slogx.FromContext(ctx)

	expiresAt := time.Now().Add(revokedTokenFallbackTTL)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	fingerprint := cryptox.FingerprintToken(rawToken)
	if err := s.Store.RevokedTokens().Revoke(ctx, fingerprint, expiresAt); err != nil {
		return err
	}

	l.Info("user logged out", slog.String("sub", claims.Subject))
	return nil
}

// Register creates a provider account with the email as the username.
func (s *SessionService) Register(ctx context.Context, email, password string) error {
	l := slogx.FromContext(ctx)

	pctx, cancel := s.providerCtx(ctx)
	defer cancel()

	if err := s.Provider.SignUp(pctx, email, password); err != nil {
		switch {
		case errors.Is(err, idp.ErrUserExists):
			return ErrAlreadyRegistered
		case errors.Is(err, idp.ErrWeakPassword):
			return ErrWeakPassword
		case errors.Is(err, idp.ErrInvalidParameter):
			return ErrInvalidEmail
		case errors.Is(err, idp.ErrUnavailable):
			return ErrProviderUnavailable
		default:
			return err
		}
	}

	l.Info("user registered")
	return nil
}

// Expunge deletes the caller's provider account and blacklists the token
// that authorized the deletion, ending the session immediately.
func (s *SessionService) Expunge(ctx context.Context, rawToken string, claims jwtx.Claims) error {
	l := slogx.FromContext(ctx)

	pctx, cancel := s.providerCtx(ctx)
	defer cancel()

	if err := s.Provider.AdminDeleteUser(pctx, claims.Identity()); err != nil {
		switch {
		case errors.Is(err, idp.ErrUserNotFound):
			return ErrUserNotFound
		case errors.Is(err, idp.ErrUnavailable):
			return ErrProviderUnavailable
		default:
			return err
		}
	}

	// Downstream data deletion hangs off this event.
	l.Info("user_expunged", slog.String("sub", claims.Subject))

	return s.Logout(ctx, rawToken, claims)
}

// Describe looks up the provider account backing a session.
func (s *SessionService) Describe(ctx context.Context, userIDOrEmail string) (domain.UserAccount, error) {
	pctx, cancel := s.providerCtx(ctx)
	defer cancel()

	account, err := s.Provider.AdminGetUser(pctx, userIDOrEmail)
	if err != nil {
		switch {
		case errors.Is(err, idp.ErrUserNotFound):
			return domain.UserAccount{}, ErrUserNotFound
		case errors.Is(err, idp.ErrUnavailable):
			return domain.UserAccount{}, ErrProviderUnavailable
		default:
			return domain.UserAccount{}, err
		}
	}
	return account, nil
}
