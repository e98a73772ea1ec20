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

// seedRoles is the built-in role set. Seeding never updates an existing role,
// so operators can tune a matrix in place without a restart reverting it.
var seedRoles = []domain.Role{
	{
		Name:        "admin",
		Description: "Full access to all features",
		Permissions: map[string]domain.Permission{
			"users":    {Read: true, Write: true, Delete: true},
			"reports":  {Read: true, Write: true, Delete: true, Moderate: true},
			"settings": {Read: true, Write: true},
		},
	},
	{
		Name:        "moderator",
		Description: "Can moderate reports and content",
		Permissions: map[string]domain.Permission{
			"users":   {Read: true},
			"reports": {Read: true, Write: true, Moderate: true},
		},
	},
	{
		Name:        domain.DefaultRoleName,
		Description: "Regular authenticated user",
		Permissions: map[string]domain.Permission{
			"reports": {Read: true, Write: true},
		},
	},
}

// BootstrapService provisions the built-in roles and, optionally, a first
// admin account. It runs at every startup and is idempotent.
type BootstrapService struct {
	Store store.Store

	// AdminEmail/AdminPassword seed the first admin account when set. The
	// seed only ever runs against an empty user table; an install that
	// already has accounts is left completely alone.
	AdminEmail    string
	AdminPassword string
}

// Bootstrap seeds roles and the optional admin account.
func (s *BootstrapService) Bootstrap(ctx context.Context) error {
	l := slogx.FromContext(ctx)

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		firstRun, err := tx.Roles().IsEmpty(ctx)
		if err != nil {
			return err
		}
		if firstRun {
			l.Info("empty role table, seeding built-in roles")
		}

		for _, role := range seedRoles {
			role.ID = idx.New().String()
			err := tx.Roles().CreateRole(ctx, role)
			if errors.Is(err, store.ErrAlreadyExists) {
				continue
			}
			if err != nil {
				return err
			}
			l.Info("seeded role", slog.String("role", role.Name))
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.AdminEmail == "" {
		return nil
	}
	return s.seedAdmin(ctx)
}

func (s *BootstrapService) seedAdmin(ctx context.Context) error {
	l := slogx.FromContext(ctx)

	hash, err := cryptox.HashPassword(s.AdminPassword)
	if err != nil {
		return err
	}

	userID := idx.New().String()
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		// The admin seed is strictly a first-run convenience; once any
		// account exists the install manages its own admins.
		empty, err := tx.Users().IsEmpty(ctx)
		if err != nil {
			return err
		}
		if !empty {
			return nil
		}

		err = tx.Users().CreateUser(ctx, domain.User{
			ID:           userID,
			Email:        s.AdminEmail,
			PasswordHash: hash,
			Name:         "Administrator",
			IsActive:     true,
		})
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil
		}
		if err != nil {
			return err
		}

		adminRole, err := tx.Roles().GetRoleByName(ctx, "admin")
		if err != nil {
			return err
		}
		if err := tx.Roles().GrantRole(ctx, userID, adminRole.ID); err != nil {
			return err
		}

		l.Info("seeded admin account", slog.String("user_id", userID))
		return nil
	})
	return err
}
