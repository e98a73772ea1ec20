package sqlite

import (
	"context"
	"encoding/json"

	"github.com/mayur-driod/FloodWatch/internal/auth/domain"
)

type rolesRepo struct {
	q dbtx
}

func (r *rolesRepo) GetRoleByName(ctx context.Context, name string) (domain.Role, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT id, name, description, permissions, created_at, updated_at
		 FROM roles WHERE name = ?`, name)

	var role domain.Role
	var perms string
	err := row.Scan(&role.ID, &role.Name, &role.Description, &perms, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		return domain.Role{}, mapErr(err)
	}
	if err := json.Unmarshal([]byte(perms), &role.Permissions); err != nil {
		return domain.Role{}, err
	}
	return role, nil
}

func (r *rolesRepo) ListAll(ctx context.Context) ([]domain.Role, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, name, description, permissions, created_at, updated_at
		 FROM roles ORDER BY name`)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var roles []domain.Role
	for rows.Next() {
		var role domain.Role
		var perms string
		if err := rows.Scan(&role.ID, &role.Name, &role.Description, &perms, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, mapErr(err)
		}
		if err := json.Unmarshal([]byte(perms), &role.Permissions); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, mapErr(rows.Err())
}

func (r *rolesRepo) CreateRole(ctx context.Context, role domain.Role) error {
	perms, err := json.Marshal(role.Permissions)
	if err != nil {
		return err
	}
	_, err = r.q.ExecContext(ctx,
		`INSERT INTO roles (id, name, description, permissions) VALUES (?, ?, ?, ?)`,
		role.ID, role.Name, role.Description, string(perms))
	return mapErr(err)
}

func (r *rolesRepo) GrantRole(ctx context.Context, userID, roleID string) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO user_roles (user_id, role_id) VALUES (?, ?)`,
		userID, roleID)
	return mapErr(err)
}

func (r *rolesRepo) ListRoleNamesForUser(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT r.name
		 FROM roles r
		 JOIN user_roles ur ON ur.role_id = r.id
		 WHERE ur.user_id = ?
		 ORDER BY r.name`, userID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, mapErr(err)
		}
		names = append(names, name)
	}
	return names, mapErr(rows.Err())
}

func (r *rolesRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int64
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM roles`).Scan(&count); err != nil {
		return false, mapErr(err)
	}
	return count == 0, nil
}
