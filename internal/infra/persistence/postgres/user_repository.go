package postgres

import (
	"context"
	"time"

	"accounts/config"
	"accounts/internal/domain/entity"
	domainerrors "accounts/internal/domain/errors"
	"accounts/internal/domain/repository"
	"accounts/internal/errors"
	"accounts/internal/infra/persistence/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/plugin/dbresolver"
)

// userRepository implements repository.UserRepository using GORM.
type userRepository struct {
	db           *gorm.DB
	queryTimeout time.Duration
	now          func() time.Time
}

// NewUserRepository is the constructor for userRepository.
func NewUserRepository(db *gorm.DB, cfg *config.Config) repository.UserRepository {
	return newUserRepository(db, cfg, time.Now)
}

func newUserRepository(db *gorm.DB, cfg *config.Config, now func() time.Time) *userRepository {
	var queryTimeout time.Duration
	if cfg != nil && cfg.Database != nil {
		queryTimeout = cfg.Database.QueryTimeout
	}

	return &userRepository{
		db:           db,
		queryTimeout: queryTimeout,
		now:          now,
	}
}

// Create inserts a new user and fills in the assigned id and timestamps.
func (repo *userRepository) Create(ctx context.Context, user *entity.User) error {
	ctx, cancel := repo.withTimeout(ctx)
	defer cancel()

	now := repo.timestamp()
	userM := fromUserDomain(user)
	userM.ID = 0
	userM.AccountCreated = now
	userM.AccountUpdated = now

	if err := repo.db.WithContext(ctx).Create(userM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrUserAlreadyExists.WrapMessage("failed to create user")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create user")
	}

	user.ID = userM.ID
	user.CreatedAt = now
	user.UpdatedAt = now

	return nil
}

// FindByEmail reads from the primary so a login right after signup sees the new row.
func (repo *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	ctx, cancel := repo.withTimeout(ctx)
	defer cancel()

	var userM model.UserModel
	err := repo.db.WithContext(ctx).
		Clauses(dbresolver.Write).
		Where("email = ?", email).
		First(&userM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find user by email")
	}

	return toUserDomain(&userM), nil
}

// UpdateFields locks the row, merges the present fields and stamps account_updated
// in one transaction. Only the columns named by update are written.
func (repo *userRepository) UpdateFields(ctx context.Context, id int64, update entity.UserUpdate) (*entity.User, error) {
	ctx, cancel := repo.withTimeout(ctx)
	defer cancel()

	var updated *entity.User
	err := inTransaction(ctx, repo.db, func(tx *gorm.DB) error {
		var userM model.UserModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&userM).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return repository.ErrUserNotFound
			}

			return domainerrors.NewDatabaseExecuteError(err, "failed to lock user")
		}

		user := toUserDomain(&userM)
		user.Apply(update, repo.timestamp())

		columns := map[string]any{"account_updated": user.UpdatedAt}
		if update.FirstName != nil {
			columns["first_name"] = user.FirstName
		}
		if update.LastName != nil {
			columns["last_name"] = user.LastName
		}
		if update.PasswordHash != nil {
			columns["password"] = user.PasswordHash
		}

		if err := tx.Model(&model.UserModel{}).Where("id = ?", id).Updates(columns).Error; err != nil {
			return domainerrors.NewDatabaseExecuteError(err, "failed to update user")
		}

		updated = user

		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (repo *userRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if repo.queryTimeout <= 0 {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, repo.queryTimeout)
}

// timestamp matches the column type: UTC wall clock at microsecond precision.
func (repo *userRepository) timestamp() time.Time {
	return repo.now().UTC().Truncate(time.Microsecond)
}

func fromUserDomain(user *entity.User) *model.UserModel {
	return &model.UserModel{
		ID:             user.ID,
		Email:          user.Email,
		Password:       user.PasswordHash,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		AccountCreated: user.CreatedAt,
		AccountUpdated: user.UpdatedAt,
	}
}

func toUserDomain(userM *model.UserModel) *entity.User {
	return &entity.User{
		ID:           userM.ID,
		Email:        userM.Email,
		PasswordHash: userM.Password,
		FirstName:    userM.FirstName,
		LastName:     userM.LastName,
		CreatedAt:    userM.AccountCreated.UTC(),
		UpdatedAt:    userM.AccountUpdated.UTC(),
	}
}
