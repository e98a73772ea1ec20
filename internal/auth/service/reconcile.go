package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mayur-driod/FloodWatch/internal/auth/domain"
	"github.com/mayur-driod/FloodWatch/internal/auth/store"
	"github.com/mayur-driod/FloodWatch/pkg/cryptox"
	"github.com/mayur-driod/FloodWatch/pkg/idx"
	"github.com/mayur-driod/FloodWatch/pkg/slogx"
)

var (
	ErrEmailTaken = errors.New("email_taken")

	// errDefaultRoleMissing means bootstrap seeding did not run; it is an
	// operator error, not a user-facing one.
	errDefaultRoleMissing = errors.New("default role missing")
)

// Reconciliation paths, for logging and metrics.
const (
	ReconcilePathFast    = "fast_path" // (provider, subject) already linked
	ReconcilePathLinked  = "linked"    // identity attached to an existing account by email
	ReconcilePathCreated = "created"   // brand new account
)

// ReconcileResult is the outcome of a third-party sign-in.
type ReconcileResult struct {
	Principal domain.Principal
	Path      string
}

// ReconcileService owns account creation: password sign-up and the mapping of
// third-party identities onto local accounts. Every operation runs its whole
// decision procedure inside one transaction, and every uniqueness decision is
// deferred to the store's constraints so concurrent racers converge on the
// same account instead of failing.
type ReconcileService struct {
	Store store.Store
}

// SignUp creates a password account and grants it the default role. The email
// must be unused; a duplicate — whether seen on the pre-check or raised by
// the unique constraint when two sign-ups race — comes back as ErrEmailTaken.
func (s *ReconcileService) SignUp(ctx context.Context, email, password, name string) (domain.Principal, error) {
	l := slogx.FromContext(ctx)

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.Principal{}, err
	}

	userID := idx.New().String()
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Users().GetUserByEmail(ctx, email); err == nil {
			return ErrEmailTaken
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		err := tx.Users().CreateUser(ctx, domain.User{
			ID:           userID,
			Email:        email,
			PasswordHash: hash,
			Name:         name,
			IsActive:     true,
		})
		if errors.Is(err, store.ErrAlreadyExists) {
			// Lost the race to a concurrent sign-up with the same email.
			return ErrEmailTaken
		}
		if err != nil {
			return err
		}

		return grantDefaultRole(ctx, tx, userID)
	})
	if err != nil {
		return domain.Principal{}, err
	}

	l.Info("user signed up", slog.String("user_id", userID))
	return domain.Principal{
		UserID:    userID,
		Roles:     []string{domain.DefaultRoleName},
		IsNewUser: true,
	}, nil
}

// Reconcile maps a normalized third-party identity onto a local account.
//
// The decision procedure, all inside one transaction:
//
//  1. Fast path: the (provider, subject) pair is already linked. Return the
//     owning account and its current roles. No writes of any kind, so
//     repeating a callback is exactly idempotent.
//  2. Email match: an account with the identity's email exists. Link the
//     identity to it, backfill empty profile fields from the proposed
//     name/avatar, and grant the default role if the account has none.
//  3. Otherwise create a fresh passwordless account, link the identity, and
//     grant the default role.
//
// Constraint races are control flow, not failures: losing the user insert to
// a concurrent sign-up falls back to linking the winner's account, and losing
// the identity insert to a concurrent callback is re-read as the fast path.
func (s *ReconcileService) Reconcile(ctx context.Context, ident domain.CanonicalIdentity) (ReconcileResult, error) {
	l := slogx.FromContext(ctx)

	var res ReconcileResult
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		out, err := reconcileTx(ctx, tx, ident)
		if err != nil {
			return err
		}
		res = out
		return nil
	})
	if err != nil {
		return ReconcileResult{}, err
	}

	l.Info("identity reconciled",
		slog.String("user_id", res.Principal.UserID),
		slog.String("provider", ident.Provider),
		slog.String("path", res.Path),
	)
	return res, nil
}

func reconcileTx(ctx context.Context, tx store.Tx, ident domain.CanonicalIdentity) (ReconcileResult, error) {
	// 1. Fast path: identity already linked.
	existing, err := tx.Identities().GetByProviderSubject(ctx, ident.Provider, ident.SubjectID)
	switch {
	case err == nil:
		return fastPathResult(ctx, tx, existing.UserID)
	case !errors.Is(err, store.ErrNotFound):
		return ReconcileResult{}, err
	}

	// 2. Email match: link to the existing account.
	user, err := tx.Users().GetUserByEmail(ctx, ident.Email)
	switch {
	case err == nil:
		return linkIdentity(ctx, tx, user, ident, ReconcilePathLinked)
	case !errors.Is(err, store.ErrNotFound):
		return ReconcileResult{}, err
	}

	// 3. Fresh account, no password.
	created := domain.User{
		ID:       idx.New().String(),
		Email:    ident.Email,
		Name:     ident.ProposedName,
		Avatar:   ident.ProposedAvatar,
		IsActive: true,
	}
	err = tx.Users().CreateUser(ctx, created)
	if errors.Is(err, store.ErrAlreadyExists) {
		// A concurrent sign-up claimed the email between our check and the
		// insert; link to whichever account won.
		winner, err := tx.Users().GetUserByEmail(ctx, ident.Email)
		if err != nil {
			return ReconcileResult{}, err
		}
		return linkIdentity(ctx, tx, winner, ident, ReconcilePathLinked)
	}
	if err != nil {
		return ReconcileResult{}, err
	}

	return linkIdentity(ctx, tx, created, ident, ReconcilePathCreated)
}

// fastPathResult resolves an already-linked identity: read the current role
// list and return. Deliberately write-free.
func fastPathResult(ctx context.Context, tx store.Tx, userID string) (ReconcileResult, error) {
	roles, err := tx.Roles().ListRoleNamesForUser(ctx, userID)
	if err != nil {
		return ReconcileResult{}, err
	}
	return ReconcileResult{
		Principal: domain.Principal{UserID: userID, Roles: roles},
		Path:      ReconcilePathFast,
	}, nil
}

// linkIdentity attaches the identity to the account, then applies the
// first-link tail: profile backfill and the default-role guarantee.
func linkIdentity(ctx context.Context, tx store.Tx, user domain.User, ident domain.CanonicalIdentity, path string) (ReconcileResult, error) {
	err := tx.Identities().Create(ctx, domain.ExternalIdentity{
		ID:           idx.New().String(),
		UserID:       user.ID,
		Provider:     ident.Provider,
		SubjectID:    ident.SubjectID,
		AccessToken:  ident.AccessToken,
		RefreshToken: ident.RefreshToken,
		SessionState: ident.SessionState,
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		// Another callback linked this identity first; adopt its account.
		existing, err := tx.Identities().GetByProviderSubject(ctx, ident.Provider, ident.SubjectID)
		if err != nil {
			return ReconcileResult{}, err
		}
		return fastPathResult(ctx, tx, existing.UserID)
	}
	if err != nil {
		return ReconcileResult{}, err
	}

	// Backfill only what the user has not set themselves.
	var name, avatar *string
	if user.Name == "" && ident.ProposedName != "" {
		name = &ident.ProposedName
	}
	if user.Avatar == "" && ident.ProposedAvatar != "" {
		avatar = &ident.ProposedAvatar
	}
	if name != nil || avatar != nil {
		if err := tx.Users().UpdateProfile(ctx, user.ID, name, avatar); err != nil {
			return ReconcileResult{}, err
		}
	}

	roles, err := tx.Roles().ListRoleNamesForUser(ctx, user.ID)
	if err != nil {
		return ReconcileResult{}, err
	}
	if len(roles) == 0 {
		if err := grantDefaultRole(ctx, tx, user.ID); err != nil {
			return ReconcileResult{}, err
		}
		roles = []string{domain.DefaultRoleName}
	}

	return ReconcileResult{
		Principal: domain.Principal{
			UserID:    user.ID,
			Roles:     roles,
			IsNewUser: path == ReconcilePathCreated,
		},
		Path: path,
	}, nil
}

// grantDefaultRole gives the account the well-known default role. A duplicate
// grant from a concurrent racer is fine.
func grantDefaultRole(ctx context.Context, tx store.Tx, userID string) error {
	role, err := tx.Roles().GetRoleByName(ctx, domain.DefaultRoleName)
	if errors.Is(err, store.ErrNotFound) {
		return errDefaultRoleMissing
	}
	if err != nil {
		return err
	}

	err = tx.Roles().GrantRole(ctx, userID, role.ID)
	if err != nil && !errors.Is(err, store.ErrAlreadyExists) {
		return err
	}
	return nil
}
