// Package idp abstracts the external identity provider. The provider is the
// system of record for credentials, token issuance, and signing keys; this
// package exposes only the operations the session flows consume and maps the
// provider's error surface onto a fixed vocabulary so nothing
// provider-specific leaks past the service boundary.
package idp

import (
	"context"
	"errors"

	"github.com/simpledungeon/api/internal/api/domain"
)

var (
	// ErrInvalidCredentials covers wrong password AND unknown user. The two
	// are deliberately indistinguishable to prevent account enumeration.
	ErrInvalidCredentials = errors.New("idp: invalid credentials")

	ErrUserExists       = errors.New("idp: username already exists")
	ErrWeakPassword     = errors.New("idp: password does not meet policy")
	ErrInvalidParameter = errors.New("idp: invalid parameter")
	ErrUserNotFound     = errors.New("idp: user not found")

	// ErrUnavailable means the provider could not be reached or answered
	// with a throttle/5xx. Not retried here; clients retry.
	ErrUnavailable = errors.New("idp: provider unavailable")
)

// Challenge identifies an incomplete login state the client must resolve.
type Challenge string

// ChallengeNewPasswordRequired is issued for accounts whose password must be
// replaced before tokens are released (e.g. admin-created accounts with a
// temporary password).
const ChallengeNewPasswordRequired Challenge = "NEW_PASSWORD_REQUIRED"

// AuthResult is the outcome of an initiate-auth or challenge-response call.
// Exactly one of Tokens or Challenge is meaningful: a pending challenge
// carries the opaque Session the follow-up call must echo back.
type AuthResult struct {
	Tokens    *domain.TokenSet
	Challenge Challenge
	Session   string
}

// Provider is the identity provider surface the session controller consumes.
// All calls block on the network; callers bound them with a context deadline.
type Provider interface {
	// InitiateAuth performs the password login flow. A returned AuthResult
	// may carry tokens or a pending challenge.
	InitiateAuth(ctx context.Context, email, password string) (AuthResult, error)

	// RespondToNewPasswordChallenge completes a pending
	// NEW_PASSWORD_REQUIRED challenge. Its result replaces the pending one.
	RespondToNewPasswordChallenge(ctx context.Context, email, newPassword, session string) (AuthResult, error)

	// SignUp registers a new user with the provider.
	SignUp(ctx context.Context, email, password string) error

	// AdminGetUser looks a user up by id or email.
	AdminGetUser(ctx context.Context, userIDOrEmail string) (domain.UserAccount, error)

	// AdminDeleteUser removes the user's provider account.
	AdminDeleteUser(ctx context.Context, userIDOrEmail string) error
}
