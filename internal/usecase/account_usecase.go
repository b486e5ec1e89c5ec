// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"accounts/internal/domain/entity"
)

// --- Input DTOs ---

// SignupInput defines the data required to create an account.
type SignupInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Credentials is an email/password pair presented on every authenticated call.
type Credentials struct {
	Email    string
	Password string
}

// UpdateProfileInput authenticates with Credentials and applies Patch.
type UpdateProfileInput struct {
	Credentials
	Patch entity.ProfilePatch
}

// AccountUsecase defines the account operations the delivery layer depends on.
// Failures are AppError kinds from internal/domain/errors; raw storage errors never escape.
type AccountUsecase interface {
	Signup(ctx context.Context, input *SignupInput) (*entity.Profile, error)
	Authenticate(ctx context.Context, creds *Credentials) (*entity.Profile, error)
	GetProfile(ctx context.Context, creds *Credentials) (*entity.Profile, error)
	UpdateProfile(ctx context.Context, input *UpdateProfileInput) (*entity.Profile, error)
	Health(ctx context.Context) error
}
