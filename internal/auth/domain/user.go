package domain

import (
	"strings"
	"time"
)

// User is the identity anchor. Email is unique across all users and stored
// case-normalized. PasswordHash is empty for OAuth-only accounts.
type User struct {
	ID           string
	Email        string
	PasswordHash string // argon2 encoded; empty when the account has no password
	Name         string
	Avatar       string
	IsActive     bool
	LastSeen     *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasPassword reports whether password login is possible for this account.
func (u User) HasPassword() bool { return u.PasswordHash != "" }

// NormalizeEmail lower-cases and trims an email address. Every lookup and
// every stored value goes through this so the uniqueness constraint compares
// like with like.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
