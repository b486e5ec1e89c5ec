// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"

	"accounts/internal/domain/entity"
	domainerrors "accounts/internal/domain/errors"
)

// ErrUserNotFound is returned when no user matches the lookup. It is a not-found
// signal, not a storage failure.
var ErrUserNotFound error = domainerrors.ErrUserNotFound

// UserRepository defines the standard operations for user persistence.
// Implementations report duplicate emails as domainerrors.ErrUserAlreadyExists and every other
// storage failure as an error matching domainerrors.ErrStorageUnavailable.
type UserRepository interface {
	// Create inserts the user and fills in the assigned ID and timestamps.
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail retrieves a single user by their email address.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// UpdateFields atomically locks the row, merges the present fields, refreshes
	// UpdatedAt and commits. It returns the stored result.
	UpdateFields(ctx context.Context, id int64, update entity.UserUpdate) (*entity.User, error)
}

// HealthChecker verifies that the backing store answers queries.
type HealthChecker interface {
	Ping(ctx context.Context) error
}
