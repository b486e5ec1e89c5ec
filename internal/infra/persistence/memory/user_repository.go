// Package memory keeps users in process memory. It backs local development and
// tests; data does not survive a restart.
package memory

import (
	"context"
	"sync"
	"time"

	"accounts/internal/domain/entity"
	domainerrors "accounts/internal/domain/errors"
	"accounts/internal/domain/repository"
)

// Store is a mutex-guarded user table with a unique email index.
type Store struct {
	mu      sync.RWMutex
	nextID  int64
	byID    map[int64]*entity.User
	byEmail map[string]int64
	now     func() time.Time
}

var (
	_ repository.UserRepository = (*Store)(nil)
	_ repository.HealthChecker  = (*Store)(nil)
)

// NewStore returns an empty store.
func NewStore() *Store {
	return newStore(time.Now)
}

func newStore(now func() time.Time) *Store {
	return &Store{
		byID:    make(map[int64]*entity.User),
		byEmail: make(map[string]int64),
		now:     now,
	}
}

func (s *Store) Create(ctx context.Context, user *entity.User) error {
	if err := ctx.Err(); err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to create user")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[user.Email]; exists {
		return domainerrors.ErrUserAlreadyExists.WrapMessage("failed to create user")
	}

	now := s.timestamp()
	s.nextID++

	user.ID = s.nextID
	user.CreatedAt = now
	user.UpdatedAt = now

	stored := *user
	s.byID[stored.ID] = &stored
	s.byEmail[stored.Email] = stored.ID

	return nil
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find user by email")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	found := *s.byID[id]

	return &found, nil
}

func (s *Store) UpdateFields(ctx context.Context, id int64, update entity.UserUpdate) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to update user")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	stored.Apply(update, s.timestamp())
	updated := *stored

	return &updated, nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "health probe failed")
	}

	return nil
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}
