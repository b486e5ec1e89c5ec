package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"accounts/internal/domain/entity"
	domainerrors "accounts/internal/domain/errors"
	"accounts/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func newUser(email string) *entity.User {
	return &entity.User{Email: email, PasswordHash: "hash", FirstName: "A", LastName: "B"}
}

func TestStore_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	first := newUser("a@b.com")
	second := newUser("c@d.com")
	require.NoError(t, store.Create(ctx, first))
	require.NoError(t, store.Create(ctx, second))

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	assert.Equal(t, first.CreatedAt, first.UpdatedAt)

	found, err := store.FindByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, first, found)

	// Callers get copies.
	found.FirstName = "mutated"
	again, err := store.FindByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "A", again.FirstName)
}

func TestStore_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	require.NoError(t, store.Create(ctx, newUser("a@b.com")))

	err := store.Create(ctx, newUser("a@b.com"))
	assert.ErrorIs(t, err, domainerrors.ErrUserAlreadyExists)

	// Emails are compared exactly.
	assert.NoError(t, store.Create(ctx, newUser("A@b.com")))
}

func TestStore_FindByEmail_Absent(t *testing.T) {
	user, err := NewStore().FindByEmail(context.Background(), "nobody@b.com")

	assert.Nil(t, user)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestStore_UpdateFields(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	store := newStore(func() time.Time { return clock })

	user := newUser("a@b.com")
	require.NoError(t, store.Create(ctx, user))

	clock = clock.Add(time.Hour)
	updated, err := store.UpdateFields(ctx, user.ID, entity.UserUpdate{LastName: strPtr("C")})
	require.NoError(t, err)

	assert.Equal(t, "A", updated.FirstName)
	assert.Equal(t, "C", updated.LastName)
	assert.Equal(t, user.CreatedAt, updated.CreatedAt)
	assert.Equal(t, clock, updated.UpdatedAt)

	_, err = store.UpdateFields(ctx, 42, entity.UserUpdate{LastName: strPtr("C")})
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestStore_ConcurrentUpdatesKeepBothFields(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	user := newUser("a@b.com")
	require.NoError(t, store.Create(ctx, user))

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = store.UpdateFields(ctx, user.ID, entity.UserUpdate{FirstName: strPtr(fmt.Sprintf("F%d", i))})
		}()
		go func() {
			defer wg.Done()
			_, _ = store.UpdateFields(ctx, user.ID, entity.UserUpdate{LastName: strPtr(fmt.Sprintf("L%d", i))})
		}()
	}
	wg.Wait()

	found, err := store.FindByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Contains(t, found.FirstName, "F")
	assert.Contains(t, found.LastName, "L")
}

func TestStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewStore()

	assert.ErrorIs(t, store.Create(ctx, newUser("a@b.com")), domainerrors.ErrStorageUnavailable)
	assert.ErrorIs(t, store.Ping(ctx), domainerrors.ErrStorageUnavailable)
	assert.NoError(t, store.Ping(context.Background()))
}
