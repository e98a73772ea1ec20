package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mayur-driod/FloodWatch/internal/auth/domain"
	"github.com/mayur-driod/FloodWatch/internal/auth/store"
	"github.com/mayur-driod/FloodWatch/pkg/cryptox"
	"github.com/mayur-driod/FloodWatch/pkg/slogx"
)

var (
	// Credential failures. The HTTP layer collapses all four into one generic
	// response so callers cannot probe which accounts exist; the distinct
	// sentinels exist for logging and tests.
	ErrUserNotFound       = errors.New("user_not_found")
	ErrNoPasswordSet      = errors.New("no_password_set")
	ErrAccountDisabled    = errors.New("account_disabled")
	ErrInvalidCredentials = errors.New("invalid_credentials")
)

// IsCredentialFailure reports whether err is one of the expected
// verification outcomes, as opposed to an infrastructure failure.
func IsCredentialFailure(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrNoPasswordSet) ||
		errors.Is(err, ErrAccountDisabled) ||
		errors.Is(err, ErrInvalidCredentials)
}

// CredentialService verifies email/password pairs against stored accounts.
type CredentialService struct {
	Store store.Store
	Now   func() time.Time // defaults to time.Now
}

func (s *CredentialService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Verify checks the password for the account identified by email and returns
// the authenticated principal. The checks run in a fixed order: existence,
// password-set, active, then hash match. On success the account's last-seen
// timestamp is updated; a failure there is logged but does not fail the login.
func (s *CredentialService) Verify(ctx context.Context, email, password string) (domain.Principal, error) {
	l := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Principal{}, ErrUserNotFound
		}
		return domain.Principal{}, err
	}

	if !user.HasPassword() {
		// OAuth-only account; password login is not possible.
		return domain.Principal{}, ErrNoPasswordSet
	}

	if !user.IsActive {
		return domain.Principal{}, ErrAccountDisabled
	}

	if !cryptox.MatchesPassword(password, user.PasswordHash) {
		return domain.Principal{}, ErrInvalidCredentials
	}

	if err := s.Store.Users().TouchLastSeen(ctx, user.ID, s.now()); err != nil {
		l.Warn("failed to touch last seen",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
	}

	roles, err := s.Store.Roles().ListRoleNamesForUser(ctx, user.ID)
	if err != nil {
		return domain.Principal{}, err
	}

	return domain.Principal{
		UserID: user.ID,
		Roles:  roles,
	}, nil
}
