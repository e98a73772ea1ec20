package service

import (
	"context"

	"github.com/mayur-driod/FloodWatch/internal/auth/domain"
	"github.com/mayur-driod/FloodWatch/internal/auth/store"
)

// AuthzService answers permission questions from the role matrices. Grants
// are union semantics: the action is allowed if any of the caller's roles
// allows it on the resource; there are no deny rules.
type AuthzService struct {
	Store store.Store
}

// Can reports whether any of the named roles grants the action on the
// resource. Unknown role names contribute nothing and are not an error.
func (s *AuthzService) Can(ctx context.Context, roleNames []string, resource string, action domain.Action) (bool, error) {
	if len(roleNames) == 0 {
		return false, nil
	}

	all, err := s.Store.Roles().ListAll(ctx)
	if err != nil {
		return false, err
	}

	byName := make(map[string]domain.Role, len(all))
	for _, r := range all {
		byName[r.Name] = r
	}

	for _, name := range roleNames {
		role, ok := byName[name]
		if !ok {
			continue
		}
		if role.Allows(resource, action) {
			return true, nil
		}
	}
	return false, nil
}

// CanUser resolves the user's persisted roles and evaluates Can over them.
func (s *AuthzService) CanUser(ctx context.Context, userID, resource string, action domain.Action) (bool, error) {
	roles, err := s.Store.Roles().ListRoleNamesForUser(ctx, userID)
	if err != nil {
		return false, err
	}
	return s.Can(ctx, roles, resource, action)
}
