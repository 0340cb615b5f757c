// Package store defines the persistence contracts consumed by the
// registration engine, together with a gorm-backed implementation and
// mutex-guarded in-memory doubles for tests and local development.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/charlesng35/signupd/internal/models"
)

var (
	// ErrNotFound indicates the requested record does not exist. It is
	// distinct from connectivity failures, which propagate as-is.
	ErrNotFound = errors.New("store: record not found")
	// ErrDuplicateEmail reports a violation of the users.email uniqueness
	// constraint, including the case where two concurrent registrations race
	// on the same address.
	ErrDuplicateEmail = errors.New("store: email already registered")
)

// UserStore persists user accounts. Email uniqueness is enforced at this
// boundary: Create must fail with ErrDuplicateEmail atomically rather than
// relying on a prior lookup.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateStatus(ctx context.Context, userID string, status models.UserStatus, at time.Time) error
}

// TokenStore persists activation tokens. Lookup is always scoped by user and
// code together so a colliding code can never activate the wrong account.
type TokenStore interface {
	Create(ctx context.Context, token *models.ActivationToken) error
	Find(ctx context.Context, userID, code string) (*models.ActivationToken, error)
	// DeleteByUser removes all tokens for the user. Deleting an absent token
	// is not an error, which keeps activation retry-safe.
	DeleteByUser(ctx context.Context, userID string) error
	// DeleteExpired purges tokens issued before the cutoff and reports how
	// many rows were removed.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
