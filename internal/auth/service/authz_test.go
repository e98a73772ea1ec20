package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mayur-driod/FloodWatch/internal/auth/domain"
)

func TestCan(t *testing.T) {
	st := newSeededStore(t)
	ctx := context.Background()
	svc := &AuthzService{Store: st}

	tests := []struct {
		name     string
		roles    []string
		resource string
		action   domain.Action
		want     bool
	}{
		{"user can write reports", []string{"user"}, "reports", domain.ActionWrite, true},
		{"user cannot moderate reports", []string{"user"}, "reports", domain.ActionModerate, false},
		{"user cannot read users", []string{"user"}, "users", domain.ActionRead, false},
		{"moderator can moderate reports", []string{"moderator"}, "reports", domain.ActionModerate, true},
		{"moderator cannot delete reports", []string{"moderator"}, "reports", domain.ActionDelete, false},
		{"admin can delete users", []string{"admin"}, "users", domain.ActionDelete, true},
		{"admin can write settings", []string{"admin"}, "settings", domain.ActionWrite, true},
		{"union across roles", []string{"user", "moderator"}, "users", domain.ActionRead, true},
		{"unknown role grants nothing", []string{"superuser"}, "reports", domain.ActionRead, false},
		{"unknown resource grants nothing", []string{"admin"}, "billing", domain.ActionRead, false},
		{"no roles, no access", nil, "reports", domain.ActionRead, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Can(ctx, tt.roles, tt.resource, tt.action)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestCanUser(t *testing.T) {
	st := newSeededStore(t)
	ctx := context.Background()

	reconciler := &ReconcileService{Store: st}
	p, err := reconciler.SignUp(ctx, "authz@x.com", "longenough1", "Authz")
	require.NoError(t, err)

	svc := &AuthzService{Store: st}

	ok, err := svc.CanUser(ctx, p.UserID, "reports", domain.ActionWrite)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = svc.CanUser(ctx, p.UserID, "settings", domain.ActionRead)
	require.NoError(t, err)
	require.False(t, ok)
}
