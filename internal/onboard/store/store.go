package store

import (
	"context"
	"errors"

	"github.com/platolabs/onboard/internal/onboard/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable.
type Store interface {
	Users() Users
	Organizations() Organizations

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction: rolled back if fn
	// returns an error, committed otherwise. This is the recommended
	// way to group multi-step mutations (signup, code consumption,
	// organization creation with founder attachment).
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

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is used during signup duplicate checks, login and resend.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// GetUserByPendingCode returns the user whose stored verification
	// code equals code AND who is still unverified. The compound
	// predicate is what makes consumed or stale codes unmatchable.
	GetUserByPendingCode(ctx context.Context, code string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	// Returns ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// SetVerificationCode overwrites the pending code, replacing any
	// prior one, and bumps updated_at.
	SetVerificationCode(ctx context.Context, userID string, code string) error

	// MarkVerified sets verified=true and clears the stored code.
	MarkVerified(ctx context.Context, userID string) error

	// DeleteUser removes a user; memberships cascade per schema.
	DeleteUser(ctx context.Context, userID string) error
}

type Organizations interface {
	// GetOrganizationBySlug returns an organization by its unique slug.
	GetOrganizationBySlug(ctx context.Context, slug string) (domain.Organization, error)

	// GetOrganizationByID returns an organization by id.
	GetOrganizationByID(ctx context.Context, id string) (domain.Organization, error)

	// CreateOrganization inserts a new organization. Returns
	// ErrAlreadyExists when the slug is taken, which callers treat as
	// a signal to re-resolve the slug and retry.
	CreateOrganization(ctx context.Context, o domain.Organization) error

	// AddMember attaches a user to an organization.
	AddMember(ctx context.Context, orgID, userID string) error

	// FirstOrganizationForUser returns the oldest organization the
	// user belongs to. The business flow assumes at most one.
	FirstOrganizationForUser(ctx context.Context, userID string) (domain.Organization, error)

	// ListMembers returns the user ids attached to an organization.
	ListMembers(ctx context.Context, orgID string) ([]string, error)
}
