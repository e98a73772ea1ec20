package store

import (
	"context"
	"errors"
	"time"

	"github.com/mayur-driod/FloodWatch/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrUnavailable marks a transient store failure (timeout, cancellation,
	// connection loss). Callers retry with backoff; it is never mapped to a
	// credential or uniqueness failure.
	ErrUnavailable = errors.New("store: unavailable")
)

// Store is the root data access interface the auth core consumes. Concrete
// drivers (sqlite today) implement it. The store is the sole arbiter of
// uniqueness: email, role name, (provider, subject) and (user, role) pairs.
// Check-then-create steps in the services rely on the driver surfacing
// constraint violations as ErrAlreadyExists.
type Store interface {
	Users() Users
	Roles() Roles
	Identities() Identities

	ApplyMigrations() error

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise committed. Reconciliation runs
	// its whole decision procedure inside one of these.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Tx starts a read/write transaction. The caller MUST Commit or Rollback.
	Tx(ctx context.Context) (Tx, error)

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail looks a user up by normalized email.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	// A duplicate email surfaces as ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateProfile sets name and/or avatar; nil fields are left untouched.
	UpdateProfile(ctx context.Context, userID string, name, avatar *string) error

	// TouchLastSeen records a successful authentication.
	TouchLastSeen(ctx context.Context, userID string, at time.Time) error

	// SetActive enables or disables an account. Disabled accounts fail
	// credential verification.
	SetActive(ctx context.Context, userID string, active bool) error

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}

type Roles interface {
	// GetRoleByName fetches a role by its unique name.
	GetRoleByName(ctx context.Context, name string) (domain.Role, error)

	// ListAll returns all roles in the system.
	ListAll(ctx context.Context) ([]domain.Role, error)

	// CreateRole inserts a new role. Duplicate name → ErrAlreadyExists.
	CreateRole(ctx context.Context, r domain.Role) error

	// GrantRole inserts a (user, role) row. A duplicate grant surfaces as
	// ErrAlreadyExists so concurrent default-role grants stay idempotent.
	GrantRole(ctx context.Context, userID, roleID string) error

	// ListRoleNamesForUser returns the names of every role granted to the user.
	ListRoleNamesForUser(ctx context.Context, userID string) ([]string, error)

	// IsEmpty returns true if there are no roles.
	IsEmpty(ctx context.Context) (bool, error)
}

type Identities interface {
	// GetByProviderSubject fetches the identity for a (provider, subject) pair.
	GetByProviderSubject(ctx context.Context, provider, subjectID string) (domain.ExternalIdentity, error)

	// Create inserts a new external identity. A concurrent duplicate of the
	// (provider, subject) pair surfaces as ErrAlreadyExists; the reconciler
	// treats that as the found path, never as a failure.
	Create(ctx context.Context, ident domain.ExternalIdentity) error

	// UpdateTokens refreshes the stored provider tokens for an identity.
	UpdateTokens(ctx context.Context, provider, subjectID, accessToken, refreshToken, sessionState string) error

	// ListByUser returns all identities linked to a user.
	ListByUser(ctx context.Context, userID string) ([]domain.ExternalIdentity, error)
}
