package domain

import "time"

// Identity is a user's credential record. Only local (email/password) identities exist today.
type Identity struct {
	ID           string
	UserID       string
	Provider     IdentityProvider
	ProviderID   string
	PasswordHash string
	CreatedAt    time.Time
}

type IdentityProvider string

const (
	IdentityProviderLocal IdentityProvider = "local"
)
