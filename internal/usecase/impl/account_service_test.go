package impl

import (
	"context"
	"strings"
	"testing"
	"time"

	"accounts/internal/domain/entity"
	domainerrors "accounts/internal/domain/errors"
	"accounts/internal/domain/repository"
	"accounts/internal/errors"
	"accounts/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var createdAt = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func storedUser() *entity.User {
	return &entity.User{
		ID:           1,
		Email:        "a@b.com",
		PasswordHash: "stored_hash",
		FirstName:    "A",
		LastName:     "B",
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
}

func validSignup() *usecase.SignupInput {
	return &usecase.SignupInput{
		Email:     "a@b.com",
		Password:  "password1",
		FirstName: "A",
		LastName:  "B",
	}
}

func TestAccountService_Signup_Success(t *testing.T) {
	fx := createTestAccountService(t)
	ctx := context.Background()
	input := validSignup()

	fx.hasher.EXPECT().Hash(input.Password).Return("hashed_password", nil)
	fx.userRepo.EXPECT().
		Create(ctx, mock.AnythingOfType("*entity.User")).
		Run(func(_ context.Context, user *entity.User) {
			assert.Equal(t, "hashed_password", user.PasswordHash)
			user.ID = 1
			user.CreatedAt = createdAt
			user.UpdatedAt = createdAt
		}).
		Return(nil)

	profile, err := fx.service.Signup(ctx, input)

	require.NoError(t, err)
	assert.Equal(t, int64(1), profile.ID)
	assert.Equal(t, "a@b.com", profile.Email)
	assert.Equal(t, createdAt, profile.AccountCreated)
	assert.NotContains(t, profile.String(), "hashed_password")
}

func TestAccountService_Signup_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *usecase.SignupInput)
	}{
		{name: "password one short", mutate: func(in *usecase.SignupInput) { in.Password = "1234567" }},
		{name: "password over 72 bytes", mutate: func(in *usecase.SignupInput) { in.Password = strings.Repeat("x", 73) }},
		{name: "empty first name", mutate: func(in *usecase.SignupInput) { in.FirstName = "" }},
		{name: "empty last name", mutate: func(in *usecase.SignupInput) { in.LastName = "" }},
		{name: "empty email", mutate: func(in *usecase.SignupInput) { in.Email = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := createTestAccountService(t)
			input := validSignup()
			tt.mutate(input)

			profile, err := fx.service.Signup(context.Background(), input)

			assert.Nil(t, profile)
			assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
		})
	}
}

func TestAccountService_Signup_PasswordLengthBoundary(t *testing.T) {
	fx := createTestAccountService(t)
	ctx := context.Background()
	input := validSignup()
	input.Password = "12345678"

	fx.hasher.EXPECT().Hash("12345678").Return("hashed_password", nil)
	fx.userRepo.EXPECT().Create(ctx, mock.AnythingOfType("*entity.User")).Return(nil)

	_, err := fx.service.Signup(ctx, input)
	require.NoError(t, err)

	// Length counts characters, not bytes.
	fx2 := createTestAccountService(t)
	input = validSignup()
	input.Password = "ééééééé"

	_, err = fx2.service.Signup(ctx, input)
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
}

func TestAccountService_Signup_DuplicateEmail(t *testing.T) {
	fx := createTestAccountService(t)
	ctx := context.Background()

	fx.hasher.EXPECT().Hash(mock.Anything).Return("hashed_password", nil)
	fx.userRepo.EXPECT().
		Create(ctx, mock.AnythingOfType("*entity.User")).
		Return(domainerrors.ErrUserAlreadyExists.WrapMessage("failed to create user"))

	profile, err := fx.service.Signup(ctx, validSignup())

	assert.Nil(t, profile)
	assert.ErrorIs(t, err, domainerrors.ErrUserAlreadyExists)
}

func TestAccountService_Signup_StorageFailure(t *testing.T) {
	fx := createTestAccountService(t)
	ctx := context.Background()

	fx.hasher.EXPECT().Hash(mock.Anything).Return("hashed_password", nil)
	fx.userRepo.EXPECT().
		Create(ctx, mock.AnythingOfType("*entity.User")).
		Return(errors.New("connection refused"))

	profile, err := fx.service.Signup(ctx, validSignup())

	assert.Nil(t, profile)
	assert.ErrorIs(t, err, domainerrors.ErrStorageUnavailable)
}

func TestAccountService_Signup_HashFailure(t *testing.T) {
	fx := createTestAccountService(t)

	fx.hasher.EXPECT().Hash(mock.Anything).Return("", errors.New("entropy exhausted"))

	profile, err := fx.service.Signup(context.Background(), validSignup())

	assert.Nil(t, profile)
	assert.ErrorIs(t, err, domainerrors.ErrPasswordHashFailed)
}

func TestAccountService_Authenticate(t *testing.T) {
	creds := &usecase.Credentials{Email: "a@b.com", Password: "password1"}

	t.Run("success", func(t *testing.T) {
		fx := createTestAccountService(t)
		ctx := context.Background()

		fx.userRepo.EXPECT().FindByEmail(ctx, "a@b.com").Return(storedUser(), nil)
		fx.hasher.EXPECT().Check("password1", "stored_hash").Return(true)

		profile, err := fx.service.Authenticate(ctx, creds)

		require.NoError(t, err)
		assert.Equal(t, int64(1), profile.ID)
	})

	t.Run("wrong password and unknown email look the same", func(t *testing.T) {
		fx := createTestAccountService(t)
		ctx := context.Background()

		fx.userRepo.EXPECT().FindByEmail(ctx, "a@b.com").Return(storedUser(), nil)
		fx.hasher.EXPECT().Check("password1", "stored_hash").Return(false)
		fx.userRepo.EXPECT().FindByEmail(ctx, "nobody@b.com").Return(nil, repository.ErrUserNotFound)

		_, wrongPassword := fx.service.Authenticate(ctx, creds)
		_, unknownEmail := fx.service.Authenticate(ctx, &usecase.Credentials{Email: "nobody@b.com", Password: "password1"})

		assert.ErrorIs(t, wrongPassword, domainerrors.ErrInvalidCredentials)
		assert.ErrorIs(t, unknownEmail, domainerrors.ErrInvalidCredentials)
		assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
	})

	t.Run("missing credentials skip the store", func(t *testing.T) {
		fx := createTestAccountService(t)

		_, err := fx.service.Authenticate(context.Background(), &usecase.Credentials{Email: "a@b.com"})

		assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
	})

	t.Run("storage failure", func(t *testing.T) {
		fx := createTestAccountService(t)
		ctx := context.Background()

		fx.userRepo.EXPECT().
			FindByEmail(ctx, "a@b.com").
			Return(nil, domainerrors.NewDatabaseExecuteError(errors.New("timeout"), "failed to find user by email"))

		_, err := fx.service.Authenticate(ctx, creds)

		assert.ErrorIs(t, err, domainerrors.ErrStorageUnavailable)
		assert.NotErrorIs(t, err, domainerrors.ErrInvalidCredentials)
	})
}

func TestAccountService_GetProfile(t *testing.T) {
	fx := createTestAccountService(t)
	ctx := context.Background()

	fx.userRepo.EXPECT().FindByEmail(ctx, "a@b.com").Return(storedUser(), nil)
	fx.hasher.EXPECT().Check("password1", "stored_hash").Return(true)

	profile, err := fx.service.GetProfile(ctx, &usecase.Credentials{Email: "a@b.com", Password: "password1"})

	require.NoError(t, err)
	assert.Equal(t,
		"id=1, email='a@b.com', first_name='A', last_name='B', account_created='2024-03-01 10:00:00', account_updated='2024-03-01 10:00:00'",
		profile.String())
}

func TestAccountService_UpdateProfile(t *testing.T) {
	creds := usecase.Credentials{Email: "a@b.com", Password: "password1"}

	t.Run("merges present fields only", func(t *testing.T) {
		fx := createTestAccountService(t)
		ctx := context.Background()

		fx.userRepo.EXPECT().FindByEmail(ctx, "a@b.com").Return(storedUser(), nil)
		fx.hasher.EXPECT().Check("password1", "stored_hash").Return(true)
		fx.userRepo.EXPECT().
			UpdateFields(ctx, int64(1), entity.UserUpdate{LastName: strPtr("C")}).
			RunAndReturn(func(_ context.Context, _ int64, update entity.UserUpdate) (*entity.User, error) {
				user := storedUser()
				user.Apply(update, createdAt.Add(time.Minute))

				return user, nil
			})

		profile, err := fx.service.UpdateProfile(ctx, &usecase.UpdateProfileInput{
			Credentials: creds,
			Patch:       entity.ProfilePatch{LastName: strPtr("C")},
		})

		require.NoError(t, err)
		assert.Equal(t, "A", profile.FirstName)
		assert.Equal(t, "C", profile.LastName)
		assert.True(t, profile.AccountUpdated.After(profile.AccountCreated))
	})

	t.Run("hashes a new password", func(t *testing.T) {
		fx := createTestAccountService(t)
		ctx := context.Background()

		fx.userRepo.EXPECT().FindByEmail(ctx, "a@b.com").Return(storedUser(), nil)
		fx.hasher.EXPECT().Check("password1", "stored_hash").Return(true)
		fx.hasher.EXPECT().Hash("new-password").Return("new_hash", nil)
		fx.userRepo.EXPECT().
			UpdateFields(ctx, int64(1), entity.UserUpdate{PasswordHash: strPtr("new_hash")}).
			Return(storedUser(), nil)

		_, err := fx.service.UpdateProfile(ctx, &usecase.UpdateProfileInput{
			Credentials: creds,
			Patch:       entity.ProfilePatch{Password: strPtr("new-password")},
		})

		require.NoError(t, err)
	})

	t.Run("authentication fails first", func(t *testing.T) {
		fx := createTestAccountService(t)
		ctx := context.Background()

		fx.userRepo.EXPECT().FindByEmail(ctx, "a@b.com").Return(storedUser(), nil)
		fx.hasher.EXPECT().Check("password1", "stored_hash").Return(false)

		// An invalid patch still reports the authentication failure.
		_, err := fx.service.UpdateProfile(ctx, &usecase.UpdateProfileInput{
			Credentials: creds,
			Patch:       entity.ProfilePatch{FirstName: strPtr("")},
		})

		assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
	})

	t.Run("rejects invalid patch", func(t *testing.T) {
		patches := []entity.ProfilePatch{
			{FirstName: strPtr("")},
			{LastName: strPtr("")},
			{Password: strPtr("short")},
		}

		for _, patch := range patches {
			fx := createTestAccountService(t)
			ctx := context.Background()

			fx.userRepo.EXPECT().FindByEmail(ctx, "a@b.com").Return(storedUser(), nil)
			fx.hasher.EXPECT().Check("password1", "stored_hash").Return(true)

			_, err := fx.service.UpdateProfile(ctx, &usecase.UpdateProfileInput{Credentials: creds, Patch: patch})

			assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
		}
	})

	t.Run("user vanished after authentication", func(t *testing.T) {
		fx := createTestAccountService(t)
		ctx := context.Background()

		fx.userRepo.EXPECT().FindByEmail(ctx, "a@b.com").Return(storedUser(), nil)
		fx.hasher.EXPECT().Check("password1", "stored_hash").Return(true)
		fx.userRepo.EXPECT().
			UpdateFields(ctx, int64(1), mock.AnythingOfType("entity.UserUpdate")).
			Return(nil, repository.ErrUserNotFound)

		_, err := fx.service.UpdateProfile(ctx, &usecase.UpdateProfileInput{
			Credentials: creds,
			Patch:       entity.ProfilePatch{FirstName: strPtr("Z")},
		})

		assert.ErrorIs(t, err, domainerrors.ErrStorageUnavailable)
		assert.NotErrorIs(t, err, domainerrors.ErrUserNotFound)
	})
}

func TestAccountService_Health(t *testing.T) {
	fx := createTestAccountService(t)
	ctx := context.Background()

	fx.healthChecker.EXPECT().Ping(ctx).Return(nil).Once()
	fx.healthChecker.EXPECT().Ping(ctx).Return(errors.New("connection refused")).Once()

	assert.NoError(t, fx.service.Health(ctx))
	assert.ErrorIs(t, fx.service.Health(ctx), domainerrors.ErrStorageUnavailable)
}
