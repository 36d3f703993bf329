package store

import (
	"context"
	"errors"

	"github.com/sangrahhq/sangrah/internal/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, and
// later postgres) implement this. It exposes sub-repositories to keep
// concerns tidy and testable.
type Store interface {
	Users() Users
	OTPs() OTPs

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// Use it for multi-step operations that must be atomic (e.g., the
	// delete-then-insert pair on OTP issuance).
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources (optional for sqlite).
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

	// GetUserByMobile looks up by the primary contact identifier.
	GetUserByMobile(ctx context.Context, mobile string) (domain.User, error)

	// GetUserByEmail looks up by the secondary contact identifier. Accounts
	// without an email are never returned by this.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// ListUsers returns all users ordered by creation date (newest first).
	ListUsers(ctx context.Context) ([]domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	// Returns ErrAlreadyExists when the mobile is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateUserDetails mutates name/email and bumps updated_at.
	UpdateUserDetails(ctx context.Context, userID, name, email string) error

	// UpdateUserRole sets the role and bumps updated_at.
	UpdateUserRole(ctx context.Context, userID string, role domain.Role) error

	// UpdatePasswordHash sets the password_hash (bcrypt) and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error

	// MarkVerified flips the verified flag on.
	MarkVerified(ctx context.Context, userID string) error

	// DeleteUser removes the account; cascades to its OTP rows per schema.
	DeleteUser(ctx context.Context, userID string) error

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}

type OTPs interface {
	// GetOTPByMobile returns the current row for a mobile, expired or not.
	// Expiry is the caller's concern (lazy expiry).
	GetOTPByMobile(ctx context.Context, mobile string) (domain.OTP, error)

	// UpsertOTP replaces any existing row for the mobile with the new code
	// and expiry, enforcing "at most one live OTP per identifier".
	UpsertOTP(ctx context.Context, otp domain.OTP) error

	// DeleteOTP removes the row for a mobile (consumption on success).
	DeleteOTP(ctx context.Context, mobile string) error

	// DeleteExpiredOTPs is housekeeping for rows that were never validated.
	DeleteExpiredOTPs(ctx context.Context) error
}
