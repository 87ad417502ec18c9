package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/triadacafetera/triada/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Unique fields reported by ConflictError.
const (
	FieldUsername = "username"
	FieldEmail    = "email"
	FieldPhone    = "phone"
)

// ConflictError reports which unique field an insert or update collided
// on. It matches ErrAlreadyExists with errors.Is.
type ConflictError struct {
	Field string
	Err   error
}

func (e *ConflictError) Error() string {
	if e.Field == "" {
		return "store: already exists"
	}
	return fmt.Sprintf("store: %s already exists", e.Field)
}

func (e *ConflictError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrAlreadyExists}
	}
	return []error{ErrAlreadyExists, e.Err}
}

// ConflictField returns the field of a ConflictError in err's chain.
func ConflictField(err error) (string, bool) {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce.Field, true
	}
	return "", false
}

// Store is the root data access interface. Concrete drivers (sqlite,
// postgres) implement it and expose sub-repositories so a transaction can
// hand out the same repositories bound to itself.
type Store interface {
	Users() Users
	Roles() Roles

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise. Called on a Tx it joins that transaction.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

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

// Users is the user directory consulted by authentication.
type Users interface {
	GetUserByID(ctx context.Context, id int64) (domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts u and returns it with the assigned id and
	// timestamps. Unique violations come back as *ConflictError.
	CreateUser(ctx context.Context, u domain.User) (domain.User, error)

	// UpdatePasswordHash replaces the stored hash and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error

	// UpdateActive sets the active flag and bumps updated_at.
	UpdateActive(ctx context.Context, id int64, active bool) error

	// UpdateProfile applies the non-nil fields of patch. A phone
	// collision comes back as *ConflictError.
	UpdateProfile(ctx context.Context, id int64, patch domain.ProfilePatch) error

	// CountUsers returns total and active user counts.
	CountUsers(ctx context.Context) (domain.UserCounts, error)
}

// Roles stores the role tags attached to users.
type Roles interface {
	// AssignRole is idempotent.
	AssignRole(ctx context.Context, userID int64, role domain.Role) error
	ListRoles(ctx context.Context, userID int64) ([]domain.Role, error)
}
