package domain

import "time"

// UserAccount is the identity provider's view of a user, as returned by the
// admin lookup operation. Read-only here; the provider is the system of
// record and this service persists none of it.
type UserAccount struct {
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	Status    string    `json:"status,omitempty"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}
