package impl

import (
	"io"
	"log/slog"
	"testing"

	"accounts/config"
	mockRepo "accounts/internal/mocks/repository"
	mockSvc "accounts/internal/mocks/service"
	"accounts/internal/usecase"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// accountServiceFixtures holds all test dependencies for account service tests.
type accountServiceFixtures struct {
	service       usecase.AccountUsecase
	userRepo      *mockRepo.MockUserRepository
	healthChecker *mockRepo.MockHealthChecker
	hasher        *mockSvc.MockPasswordHasher
}

func createTestAccountService(t *testing.T) accountServiceFixtures {
	userRepo := mockRepo.NewMockUserRepository(t)
	healthChecker := mockRepo.NewMockHealthChecker(t)
	hasher := mockSvc.NewMockPasswordHasher(t)

	service := NewAccountService(AccountServiceParams{
		UserRepo:      userRepo,
		HealthChecker: healthChecker,
		Hasher:        hasher,
		Config: &config.Config{
			PasswordPolicy: &config.PasswordPolicyConfig{MinLength: 8},
		},
		Logger: newDiscardLogger(),
	})

	return accountServiceFixtures{
		service:       service,
		userRepo:      userRepo,
		healthChecker: healthChecker,
		hasher:        hasher,
	}
}

func strPtr(s string) *string { return &s }
