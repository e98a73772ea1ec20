package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mayur-driod/FloodWatch/internal/auth/domain"
	"github.com/mayur-driod/FloodWatch/internal/auth/store"
	"github.com/mayur-driod/FloodWatch/pkg/idx"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func newTestUser(email string) domain.User {
	return domain.User{
		ID:       idx.New().String(),
		Email:    email,
		Name:     "Test User",
		IsActive: true,
	}
}

func TestUsersRepo(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	t.Run("create and fetch", func(t *testing.T) {
		u := newTestUser("alice@example.com")
		require.NoError(t, s.Users().CreateUser(ctx, u))

		got, err := s.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, u.Email, got.Email)
		require.True(t, got.IsActive)
		require.Nil(t, got.LastSeen)

		got, err = s.Users().GetUserByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		require.Equal(t, u.ID, got.ID)
	})

	t.Run("email lookup is case-insensitive", func(t *testing.T) {
		got, err := s.Users().GetUserByEmail(ctx, "  ALICE@Example.COM ")
		require.NoError(t, err)
		require.Equal(t, "alice@example.com", got.Email)
	})

	t.Run("duplicate email maps to ErrAlreadyExists", func(t *testing.T) {
		err := s.Users().CreateUser(ctx, newTestUser("Alice@Example.com"))
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("missing user maps to ErrNotFound", func(t *testing.T) {
		_, err := s.Users().GetUserByID(ctx, idx.New().String())
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("touch last seen", func(t *testing.T) {
		u, err := s.Users().GetUserByEmail(ctx, "alice@example.com")
		require.NoError(t, err)

		at := time.Now().UTC().Truncate(time.Second)
		require.NoError(t, s.Users().TouchLastSeen(ctx, u.ID, at))

		got, err := s.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.NotNil(t, got.LastSeen)
		require.WithinDuration(t, at, *got.LastSeen, time.Second)
	})

	t.Run("profile update leaves nil fields alone", func(t *testing.T) {
		u, err := s.Users().GetUserByEmail(ctx, "alice@example.com")
		require.NoError(t, err)

		name := "Alice Renamed"
		require.NoError(t, s.Users().UpdateProfile(ctx, u.ID, &name, nil))

		got, err := s.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, "Alice Renamed", got.Name)
		require.Equal(t, u.Avatar, got.Avatar)
	})
}

func TestRolesRepo(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	role := domain.Role{
		ID:          idx.New().String(),
		Name:        "moderator",
		Description: "Can moderate content",
		Permissions: map[string]domain.Permission{
			"reports": {Read: true, Write: true, Moderate: true},
		},
	}

	t.Run("create and fetch with permission matrix", func(t *testing.T) {
		empty, err := s.Roles().IsEmpty(ctx)
		require.NoError(t, err)
		require.True(t, empty)

		require.NoError(t, s.Roles().CreateRole(ctx, role))

		got, err := s.Roles().GetRoleByName(ctx, "moderator")
		require.NoError(t, err)
		require.True(t, got.Allows("reports", domain.ActionModerate))
		require.False(t, got.Allows("reports", domain.ActionDelete))
		require.False(t, got.Allows("users", domain.ActionRead))
	})

	t.Run("duplicate role name maps to ErrAlreadyExists", func(t *testing.T) {
		dup := role
		dup.ID = idx.New().String()
		require.ErrorIs(t, s.Roles().CreateRole(ctx, dup), store.ErrAlreadyExists)
	})

	t.Run("grants are unique per user and role", func(t *testing.T) {
		u := newTestUser("mod@example.com")
		require.NoError(t, s.Users().CreateUser(ctx, u))

		require.NoError(t, s.Roles().GrantRole(ctx, u.ID, role.ID))
		require.ErrorIs(t, s.Roles().GrantRole(ctx, u.ID, role.ID), store.ErrAlreadyExists)

		names, err := s.Roles().ListRoleNamesForUser(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, []string{"moderator"}, names)
	})
}

func TestIdentitiesRepo(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := newTestUser("oauth@example.com")
	require.NoError(t, s.Users().CreateUser(ctx, u))

	ident := domain.ExternalIdentity{
		ID:          idx.New().String(),
		UserID:      u.ID,
		Provider:    "google",
		SubjectID:   "sub-123",
		AccessToken: "at-1",
	}

	t.Run("create and fetch by provider pair", func(t *testing.T) {
		require.NoError(t, s.Identities().Create(ctx, ident))

		got, err := s.Identities().GetByProviderSubject(ctx, "google", "sub-123")
		require.NoError(t, err)
		require.Equal(t, u.ID, got.UserID)
		require.Equal(t, "at-1", got.AccessToken)
	})

	t.Run("provider pair is unique", func(t *testing.T) {
		dup := ident
		dup.ID = idx.New().String()
		require.ErrorIs(t, s.Identities().Create(ctx, dup), store.ErrAlreadyExists)
	})

	t.Run("same subject under another provider is fine", func(t *testing.T) {
		other := ident
		other.ID = idx.New().String()
		other.Provider = "github"
		require.NoError(t, s.Identities().Create(ctx, other))

		idents, err := s.Identities().ListByUser(ctx, u.ID)
		require.NoError(t, err)
		require.Len(t, idents, 2)
	})

	t.Run("token refresh", func(t *testing.T) {
		require.NoError(t, s.Identities().UpdateTokens(ctx, "google", "sub-123", "at-2", "rt-2", "state"))

		got, err := s.Identities().GetByProviderSubject(ctx, "google", "sub-123")
		require.NoError(t, err)
		require.Equal(t, "at-2", got.AccessToken)
		require.Equal(t, "rt-2", got.RefreshToken)
	})
}

func TestWithTxRollsBackOnError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := newTestUser("txuser@example.com")
	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, u); err != nil {
			return err
		}
		return context.Canceled // force rollback
	})
	require.Error(t, err)

	_, err = s.Users().GetUserByID(ctx, u.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestWithTxCommits(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := newTestUser("committed@example.com")
	require.NoError(t, s.WithTx(ctx, func(tx store.Tx) error {
		return tx.Users().CreateUser(ctx, u)
	}))

	got, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.Email, got.Email)
}
