package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mayur-driod/FloodWatch/internal/auth/domain"
	"github.com/mayur-driod/FloodWatch/internal/auth/store"
)

func TestSignUp(t *testing.T) {
	st := newSeededStore(t)
	ctx := context.Background()
	svc := &ReconcileService{Store: st}

	t.Run("creates account with default role", func(t *testing.T) {
		p, err := svc.SignUp(ctx, "a@x.com", "longenough1", "Ada")
		require.NoError(t, err)
		require.True(t, p.IsNewUser)
		require.Equal(t, []string{domain.DefaultRoleName}, p.Roles)

		u, err := st.Users().GetUserByEmail(ctx, "a@x.com")
		require.NoError(t, err)
		require.Equal(t, p.UserID, u.ID)
		require.True(t, u.HasPassword())
		require.True(t, u.IsActive)
	})

	t.Run("duplicate email fails", func(t *testing.T) {
		_, err := svc.SignUp(ctx, "a@x.com", "longenough2", "Imposter")
		require.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("short password rejected", func(t *testing.T) {
		_, err := svc.SignUp(ctx, "short@x.com", "seven77", "Shorty")
		require.Error(t, err)

		_, err = st.Users().GetUserByEmail(ctx, "short@x.com")
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestSignUpConcurrentSameEmail(t *testing.T) {
	st := newSeededStore(t)
	svc := &ReconcileService{Store: st}

	const attempts = 8
	errs := make([]error, attempts)

	var wg sync.WaitGroup
	for i := range attempts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.SignUp(context.Background(), "contested@x.com", "longenough1", "Racer")
		}(i)
	}
	wg.Wait()

	var won, lost int
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		default:
			require.ErrorIs(t, err, ErrEmailTaken)
			lost++
		}
	}
	require.Equal(t, 1, won)
	require.Equal(t, attempts-1, lost)
}

func TestReconcile(t *testing.T) {
	st := newSeededStore(t)
	ctx := context.Background()
	svc := &ReconcileService{Store: st}

	t.Run("creates account for unseen identity", func(t *testing.T) {
		res, err := svc.Reconcile(ctx, domain.CanonicalIdentity{
			Provider:       "google",
			SubjectID:      "g-new",
			Email:          "fresh@x.com",
			ProposedName:   "Fresh User",
			ProposedAvatar: "https://img.example.com/f.png",
			AccessToken:    "at-1",
		})
		require.NoError(t, err)
		require.Equal(t, ReconcilePathCreated, res.Path)
		require.True(t, res.Principal.IsNewUser)
		require.Equal(t, []string{domain.DefaultRoleName}, res.Principal.Roles)

		u, err := st.Users().GetUserByEmail(ctx, "fresh@x.com")
		require.NoError(t, err)
		require.Equal(t, "Fresh User", u.Name)
		require.False(t, u.HasPassword())

		ident, err := st.Identities().GetByProviderSubject(ctx, "google", "g-new")
		require.NoError(t, err)
		require.Equal(t, u.ID, ident.UserID)
		require.Equal(t, "at-1", ident.AccessToken)
	})

	t.Run("links to existing password account by email", func(t *testing.T) {
		p, err := svc.SignUp(ctx, "a@x.com", "longenough1", "Ada")
		require.NoError(t, err)

		res, err := svc.Reconcile(ctx, domain.CanonicalIdentity{
			Provider:  "google",
			SubjectID: "g-123",
			Email:     "a@x.com",
		})
		require.NoError(t, err)
		require.Equal(t, ReconcilePathLinked, res.Path)
		require.False(t, res.Principal.IsNewUser)
		require.Equal(t, p.UserID, res.Principal.UserID)
		require.Equal(t, []string{domain.DefaultRoleName}, res.Principal.Roles)

		ident, err := st.Identities().GetByProviderSubject(ctx, "google", "g-123")
		require.NoError(t, err)
		require.Equal(t, p.UserID, ident.UserID)
	})

	t.Run("second callback takes the fast path without writes", func(t *testing.T) {
		before, err := st.Users().GetUserByEmail(ctx, "a@x.com")
		require.NoError(t, err)
		identBefore, err := st.Identities().GetByProviderSubject(ctx, "google", "g-123")
		require.NoError(t, err)

		res, err := svc.Reconcile(ctx, domain.CanonicalIdentity{
			Provider:  "google",
			SubjectID: "g-123",
			Email:     "a@x.com",
		})
		require.NoError(t, err)
		require.Equal(t, ReconcilePathFast, res.Path)
		require.Equal(t, before.ID, res.Principal.UserID)
		require.Equal(t, []string{domain.DefaultRoleName}, res.Principal.Roles)

		after, err := st.Users().GetUserByEmail(ctx, "a@x.com")
		require.NoError(t, err)
		require.Equal(t, before.UpdatedAt, after.UpdatedAt)
		require.Equal(t, before.LastSeen, after.LastSeen)

		identAfter, err := st.Identities().GetByProviderSubject(ctx, "google", "g-123")
		require.NoError(t, err)
		require.Equal(t, identBefore.UpdatedAt, identAfter.UpdatedAt)

		idents, err := st.Identities().ListByUser(ctx, before.ID)
		require.NoError(t, err)
		require.Len(t, idents, 1)
	})

	t.Run("backfills only empty profile fields", func(t *testing.T) {
		p, err := svc.SignUp(ctx, "named@x.com", "longenough1", "Chosen Name")
		require.NoError(t, err)

		res, err := svc.Reconcile(ctx, domain.CanonicalIdentity{
			Provider:       "github",
			SubjectID:      "gh-9",
			Email:          "named@x.com",
			ProposedName:   "Provider Name",
			ProposedAvatar: "https://img.example.com/p.png",
		})
		require.NoError(t, err)
		require.Equal(t, ReconcilePathLinked, res.Path)

		u, err := st.Users().GetUserByID(ctx, p.UserID)
		require.NoError(t, err)
		require.Equal(t, "Chosen Name", u.Name) // kept
		require.Equal(t, "https://img.example.com/p.png", u.Avatar)
	})

	t.Run("same subject under another provider is a separate identity", func(t *testing.T) {
		res, err := svc.Reconcile(ctx, domain.CanonicalIdentity{
			Provider:  "github",
			SubjectID: "g-123", // same subject string as the google identity
			Email:     "a@x.com",
		})
		require.NoError(t, err)
		require.Equal(t, ReconcilePathLinked, res.Path)
	})
}

func TestReconcileConcurrentSamePair(t *testing.T) {
	st := newSeededStore(t)
	svc := &ReconcileService{Store: st}

	ident := domain.CanonicalIdentity{
		Provider:  "google",
		SubjectID: "g-race",
		Email:     "racer@x.com",
	}

	const callbacks = 8
	results := make([]ReconcileResult, callbacks)
	errs := make([]error, callbacks)

	var wg sync.WaitGroup
	for i := range callbacks {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Reconcile(context.Background(), ident)
		}(i)
	}
	wg.Wait()

	// Everyone succeeds and resolves to the same account.
	userID := ""
	for i := range callbacks {
		require.NoError(t, errs[i])
		if userID == "" {
			userID = results[i].Principal.UserID
		}
		require.Equal(t, userID, results[i].Principal.UserID)
	}

	// Exactly one identity row and one account behind them all.
	ctx := context.Background()
	idents, err := st.Identities().ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, idents, 1)

	roles, err := st.Roles().ListRoleNamesForUser(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, []string{domain.DefaultRoleName}, roles)
}
