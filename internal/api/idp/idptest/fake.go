// Package idptest provides an in-memory identity provider for tests.
package idptest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/simpledungeon/api/internal/api/domain"
	"github.com/simpledungeon/api/internal/api/idp"
)

// User is one provisioned account in the fake pool.
type User struct {
	Password string
	Sub      string
	Enabled  bool
	Status   string
	Created  time.Time

	// RequireNewPassword makes the first login return a pending challenge,
	// mirroring admin-created accounts holding a temporary password.
	RequireNewPassword bool
}

// TokenMinter produces the token set handed out on successful login. Tests
// that push tokens through real verification install a signer here; the
// default mints opaque placeholder strings.
type TokenMinter func(email string) (domain.TokenSet, error)

// Fake is an in-memory idp.Provider. Safe for concurrent use.
type Fake struct {
	mu       sync.Mutex
	users    map[string]*User
	sessions map[string]string // pending challenge session -> email
	seq      int

	// Mint overrides token minting when set.
	Mint TokenMinter

	// Err, when set, is returned verbatim from every operation. Used to
	// simulate provider outages.
	Err error

	// Delay is applied before every operation, honoring ctx cancellation.
	Delay time.Duration
}

var _ idp.Provider = (*Fake)(nil)

func New() *Fake {
	return &Fake{
		users:    make(map[string]*User),
		sessions: make(map[string]string),
	}
}

// AddUser provisions an account directly, bypassing sign-up.
func (f *Fake) AddUser(email string, u User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.Sub == "" {
		u.Sub = "sub-" + email
	}
	if u.Status == "" {
		u.Status = "CONFIRMED"
	}
	u.Enabled = true
	f.users[email] = &u
}

// HasUser reports whether an account exists, for post-condition assertions.
func (f *Fake) HasUser(email string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.users[email]
	return ok
}

func (f *Fake) gate(ctx context.Context) error {
	if f.Delay > 0 {
		select {
		case <-time.After(f.Delay):
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", idp.ErrUnavailable, ctx.Err())
		}
	}
	if f.Err != nil {
		return f.Err
	}
	return nil
}

func (f *Fake) mint(email string) (domain.TokenSet, error) {
	if f.Mint != nil {
		return f.Mint(email)
	}
	f.seq++
	return domain.TokenSet{
		AccessToken:  fmt.Sprintf("access-%s-%d", email, f.seq),
		IDToken:      fmt.Sprintf("id-%s-%d", email, f.seq),
		RefreshToken: fmt.Sprintf("refresh-%s-%d", email, f.seq),
	}, nil
}

func (f *Fake) InitiateAuth(ctx context.Context, email, password string) (idp.AuthResult, error) {
	if err := f.gate(ctx); err != nil {
		return idp.AuthResult{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[email]
	if !ok {
		return idp.AuthResult{}, idp.ErrUserNotFound
	}
	if u.Password != password {
		return idp.AuthResult{}, idp.ErrInvalidCredentials
	}

	if u.RequireNewPassword {
		session := fmt.Sprintf("session-%s-%d", email, len(f.sessions))
		f.sessions[session] = email
		return idp.AuthResult{
			Challenge: idp.ChallengeNewPasswordRequired,
			Session:   session,
		}, nil
	}

	tokens, err := f.mint(email)
	if err != nil {
		return idp.AuthResult{}, err
	}
	return idp.AuthResult{Tokens: &tokens}, nil
}

func (f *Fake) RespondToNewPasswordChallenge(ctx context.Context, email, newPassword, session string) (idp.AuthResult, error) {
	if err := f.gate(ctx); err != nil {
		return idp.AuthResult{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.sessions[session] != email {
		return idp.AuthResult{}, idp.ErrInvalidCredentials
	}
	delete(f.sessions, session)

	u := f.users[email]
	u.Password = newPassword
	u.RequireNewPassword = false

	tokens, err := f.mint(email)
	if err != nil {
		return idp.AuthResult{}, err
	}
	return idp.AuthResult{Tokens: &tokens}, nil
}

func (f *Fake) SignUp(ctx context.Context, email, password string) error {
	if err := f.gate(ctx); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.users[email]; ok {
		return idp.ErrUserExists
	}
	if len(password) < 8 {
		return idp.ErrWeakPassword
	}

	f.users[email] = &User{
		Password: password,
		Sub:      "sub-" + email,
		Enabled:  true,
		Status:   "CONFIRMED",
		Created:  time.Now().UTC(),
	}
	return nil
}

func (f *Fake) AdminGetUser(ctx context.Context, userIDOrEmail string) (domain.UserAccount, error) {
	if err := f.gate(ctx); err != nil {
		return domain.UserAccount{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if u, ok := f.users[userIDOrEmail]; ok {
		return domain.UserAccount{
			Username:  u.Sub,
			Email:     userIDOrEmail,
			Status:    u.Status,
			Enabled:   u.Enabled,
			CreatedAt: u.Created,
		}, nil
	}
	for email, u := range f.users {
		if u.Sub == userIDOrEmail {
			return domain.UserAccount{
				Username:  u.Sub,
				Email:     email,
				Status:    u.Status,
				Enabled:   u.Enabled,
				CreatedAt: u.Created,
			}, nil
		}
	}
	return domain.UserAccount{}, idp.ErrUserNotFound
}

func (f *Fake) AdminDeleteUser(ctx context.Context, userIDOrEmail string) error {
	if err := f.gate(ctx); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.users[userIDOrEmail]; ok {
		delete(f.users, userIDOrEmail)
		return nil
	}
	for email, u := range f.users {
		if u.Sub == userIDOrEmail {
			delete(f.users, email)
			return nil
		}
	}
	return idp.ErrUserNotFound
}
