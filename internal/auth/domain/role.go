package domain

import "time"

// DefaultRoleName is the well-known role granted to every freshly created
// account. It must exist after bootstrap seeding.
const DefaultRoleName = "user"

// Permission is the per-resource action grant inside a role's matrix.
type Permission struct {
	Read     bool `json:"read"`
	Write    bool `json:"write"`
	Delete   bool `json:"delete"`
	Moderate bool `json:"moderate"`
}

// Role is a named permission bundle, provisioned at bootstrap and read-only
// afterwards. Permissions maps resource name to the actions granted on it.
type Role struct {
	ID          string
	Name        string
	Description string
	Permissions map[string]Permission
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Allows reports whether this role grants the action on the resource.
func (r Role) Allows(resource string, action Action) bool {
	p, ok := r.Permissions[resource]
	if !ok {
		return false
	}
	switch action {
	case ActionRead:
		return p.Read
	case ActionWrite:
		return p.Write
	case ActionDelete:
		return p.Delete
	case ActionModerate:
		return p.Moderate
	default:
		return false
	}
}

// Action names one of the four permission matrix columns.
type Action string

const (
	ActionRead     Action = "read"
	ActionWrite    Action = "write"
	ActionDelete   Action = "delete"
	ActionModerate Action = "moderate"
)
