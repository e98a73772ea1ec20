package service

import (
	"context"
	"errors"
	"time"

	"github.com/mayur-driod/FloodWatch/internal/auth/store"
	"github.com/mayur-driod/FloodWatch/pkg/jwtx"
)

var ErrSessionUserGone = errors.New("session_user_gone")

// SessionService issues and validates stateless session tokens. Issuance
// snapshots the user's profile and roles into the claims; after that the
// token is self-contained — Validate and MergeUpdate never touch the store.
// Role changes reach a session only through Refresh, which re-reads
// persisted state and issues a fresh token.
type SessionService struct {
	Store  store.Store
	Tokens *jwtx.HS256

	Issuer string
	TTL    time.Duration    // defaults to jwtx.DefaultSessionTTL
	Now    func() time.Time // defaults to time.Now
}

func (s *SessionService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *SessionService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return jwtx.DefaultSessionTTL
}

// Issue signs a fresh session token for the user with the given snapshot of
// display fields and roles.
func (s *SessionService) Issue(userID, name, avatar string, roles []string) (string, error) {
	claims := jwtx.NewSessionClaims(userID, name, avatar, roles, s.ttl(), s.Issuer, s.now())
	return s.Tokens.Sign(claims)
}

// IssueFor looks the user up and signs a token from their current persisted
// profile and role set.
func (s *SessionService) IssueFor(ctx context.Context, userID string) (string, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrSessionUserGone
	}
	if err != nil {
		return "", err
	}

	roles, err := s.Store.Roles().ListRoleNamesForUser(ctx, userID)
	if err != nil {
		return "", err
	}

	return s.Issue(user.ID, user.Name, user.Avatar, roles)
}

// Validate checks the token's signature, expiry, and issuer and returns the
// embedded claims. Pure computation; no store access.
func (s *SessionService) Validate(token string) (jwtx.SessionClaims, error) {
	return s.Tokens.Verify(token)
}

// MergeUpdate re-signs the token with an updated name and/or avatar. Nil
// fields keep their current value. Everything else — subject, roles, issue
// and expiry times, the token id — carries over unchanged: a session update
// can never change what the session is allowed to do.
func (s *SessionService) MergeUpdate(token string, name, avatar *string) (string, error) {
	claims, err := s.Tokens.Verify(token)
	if err != nil {
		return "", err
	}

	if name != nil {
		claims.Name = *name
	}
	if avatar != nil {
		claims.Avatar = *avatar
	}

	return s.Tokens.Sign(claims)
}

// Refresh exchanges a still-valid token for a new one derived from persisted
// state: current profile, current roles, fresh expiry. This is the only way
// a role grant or revocation reaches an existing session.
func (s *SessionService) Refresh(ctx context.Context, token string) (string, error) {
	claims, err := s.Tokens.Verify(token)
	if err != nil {
		return "", err
	}
	return s.IssueFor(ctx, claims.Subject)
}
