// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"unicode/utf8"

	"accounts/config"
	deliverycontext "accounts/internal/delivery/context"
	"accounts/internal/domain/entity"
	domainerrors "accounts/internal/domain/errors"
	"accounts/internal/domain/repository"
	"accounts/internal/domain/service"
	"accounts/internal/errors"
	"accounts/internal/usecase"

	"go.uber.org/fx"
)

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

// accountService implements the AccountUsecase interface.
type accountService struct {
	userRepo          repository.UserRepository
	healthChecker     repository.HealthChecker
	hasher            service.PasswordHasher
	passwordMinLength int
	logger            *slog.Logger
}

// AccountServiceParams holds dependencies for AccountService, injected by Fx.
type AccountServiceParams struct {
	fx.In

	UserRepo      repository.UserRepository
	HealthChecker repository.HealthChecker
	Hasher        service.PasswordHasher
	Config        *config.Config
	Logger        *slog.Logger
}

// NewAccountService is the constructor for accountService.
func NewAccountService(params AccountServiceParams) usecase.AccountUsecase {
	minLength := config.DefaultPasswordMinLength
	if params.Config != nil && params.Config.PasswordPolicy != nil && params.Config.PasswordPolicy.MinLength > 0 {
		minLength = params.Config.PasswordPolicy.MinLength
	}

	return &accountService{
		userRepo:          params.UserRepo,
		healthChecker:     params.HealthChecker,
		hasher:            params.Hasher,
		passwordMinLength: minLength,
		logger:            params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *accountService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Signup validates the input, hashes the password and creates the account.
func (srv *accountService) Signup(ctx context.Context, input *usecase.SignupInput) (*entity.Profile, error) {
	if err := srv.validateSignup(input); err != nil {
		srv.log(ctx).Warn("Signup validation failed", slog.String("email", input.Email), slog.Any("error", err))

		return nil, err
	}

	hashed, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during signup", slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrPasswordHashFailed, err.Error())
	}

	user := &entity.User{
		Email:        input.Email,
		PasswordHash: hashed,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
	}

	if err := srv.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domainerrors.ErrUserAlreadyExists) {
			srv.log(ctx).Warn("Signup rejected, email already registered", slog.String("email", input.Email))

			return nil, errors.Wrap(err, "signup failed")
		}

		srv.log(ctx).Error("Failed to create user", slog.String("email", input.Email), slog.Any("error", err))

		return nil, storageFailure(err, "failed to create user")
	}

	srv.log(ctx).Info("User signed up", slog.Int64("userID", user.ID))

	return user.Profile(), nil
}

// Authenticate verifies the credentials. Unknown email and wrong password produce the same error.
func (srv *accountService) Authenticate(ctx context.Context, creds *usecase.Credentials) (*entity.Profile, error) {
	user, err := srv.authenticate(ctx, creds)
	if err != nil {
		return nil, err
	}

	return user.Profile(), nil
}

// GetProfile returns the profile of the authenticated user.
func (srv *accountService) GetProfile(ctx context.Context, creds *usecase.Credentials) (*entity.Profile, error) {
	user, err := srv.authenticate(ctx, creds)
	if err != nil {
		return nil, err
	}

	return user.Profile(), nil
}

// UpdateProfile authenticates, validates the present patch fields and merges them
// into the stored user. Absent fields keep their stored values.
func (srv *accountService) UpdateProfile(ctx context.Context, input *usecase.UpdateProfileInput) (*entity.Profile, error) {
	user, err := srv.authenticate(ctx, &input.Credentials)
	if err != nil {
		return nil, err
	}

	if err := srv.validatePatch(&input.Patch); err != nil {
		srv.log(ctx).Warn("Profile update validation failed", slog.Int64("userID", user.ID), slog.Any("error", err))

		return nil, err
	}

	update := entity.UserUpdate{
		FirstName: input.Patch.FirstName,
		LastName:  input.Patch.LastName,
	}

	// Hash before the store opens its transaction.
	if input.Patch.Password != nil {
		hashed, err := srv.hasher.Hash(*input.Patch.Password)
		if err != nil {
			srv.log(ctx).Error("Failed to hash password during profile update", slog.Int64("userID", user.ID), slog.Any("error", err))

			return nil, errors.Wrap(domainerrors.ErrPasswordHashFailed, err.Error())
		}
		update.PasswordHash = &hashed
	}

	updated, err := srv.userRepo.UpdateFields(ctx, user.ID, update)
	if err != nil {
		srv.log(ctx).Error("Failed to update user", slog.Int64("userID", user.ID), slog.Any("error", err))

		if errors.Is(err, repository.ErrUserNotFound) {
			// Deleted between authentication and update.
			return nil, errors.Wrap(domainerrors.ErrStorageUnavailable, "user disappeared during update")
		}

		return nil, storageFailure(err, "failed to update user")
	}

	srv.log(ctx).Info("User profile updated", slog.Int64("userID", updated.ID))

	return updated.Profile(), nil
}

// Health probes the store.
func (srv *accountService) Health(ctx context.Context) error {
	if err := srv.healthChecker.Ping(ctx); err != nil {
		srv.log(ctx).Warn("Health check failed", slog.Any("error", err))

		return storageFailure(err, "health check failed")
	}

	return nil
}

func (srv *accountService) authenticate(ctx context.Context, creds *usecase.Credentials) (*entity.User, error) {
	if creds == nil || creds.Email == "" || creds.Password == "" {
		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "missing credentials")
	}

	user, err := srv.userRepo.FindByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			srv.log(ctx).Warn("Authentication failed", slog.String("email", creds.Email))

			return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "authentication failed")
		}

		srv.log(ctx).Error("Failed to load user for authentication", slog.String("email", creds.Email), slog.Any("error", err))

		return nil, storageFailure(err, "failed to find user by email")
	}

	if !srv.hasher.Check(creds.Password, user.PasswordHash) {
		srv.log(ctx).Warn("Authentication failed", slog.String("email", creds.Email))

		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "authentication failed")
	}

	return user, nil
}

func (srv *accountService) validateSignup(input *usecase.SignupInput) error {
	if input.Email == "" {
		return domainerrors.ErrValidationFailed.WithDetails("email is required")
	}
	if input.FirstName == "" {
		return domainerrors.ErrValidationFailed.WithDetails("first_name must not be empty")
	}
	if input.LastName == "" {
		return domainerrors.ErrValidationFailed.WithDetails("last_name must not be empty")
	}

	return srv.validatePassword(input.Password)
}

func (srv *accountService) validatePatch(patch *entity.ProfilePatch) error {
	if patch.FirstName != nil && *patch.FirstName == "" {
		return domainerrors.ErrValidationFailed.WithDetails("first_name must not be empty")
	}
	if patch.LastName != nil && *patch.LastName == "" {
		return domainerrors.ErrValidationFailed.WithDetails("last_name must not be empty")
	}
	if patch.Password != nil {
		return srv.validatePassword(*patch.Password)
	}

	return nil
}

func (srv *accountService) validatePassword(password string) error {
	if utf8.RuneCountInString(password) < srv.passwordMinLength {
		return domainerrors.ErrValidationFailed.WithDetails("password is too short")
	}
	if len(password) > maxPasswordBytes {
		return domainerrors.ErrValidationFailed.WithDetails("password is too long")
	}

	return nil
}

// storageFailure keeps storage kinds intact and folds anything else into ErrStorageUnavailable.
func storageFailure(err error, message string) error {
	if errors.Is(err, domainerrors.ErrStorageUnavailable) {
		return errors.Wrap(err, message)
	}

	return domainerrors.NewDatabaseExecuteError(err, message)
}
