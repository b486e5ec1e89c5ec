package auth

import (
	"strings"
	"testing"

	"accounts/config"
	"accounts/internal/domain/service"
	"accounts/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testArgon2Config() *config.Argon2Config {
	return &config.Argon2Config{Memory: 1024, Time: 1, Threads: 1, KeyLength: 16, SaltLength: 8}
}

func TestArgon2Hasher_HashAndCheck(t *testing.T) {
	hasher, err := NewArgon2Hasher(testArgon2Config())
	require.NoError(t, err)

	hash, err := hasher.Hash("password1")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,p=1$"))
	assert.True(t, hasher.Check("password1", hash))
	assert.False(t, hasher.Check("password2", hash))
}

func TestArgon2Hasher_HashIsSaltedPerCall(t *testing.T) {
	hasher, err := NewArgon2Hasher(testArgon2Config())
	require.NoError(t, err)

	first, err := hasher.Hash("password1")
	require.NoError(t, err)
	second, err := hasher.Hash("password1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, hasher.Check("password1", first))
	assert.True(t, hasher.Check("password1", second))
}

func TestArgon2Hasher_HashRejectsEmpty(t *testing.T) {
	hasher, err := NewArgon2Hasher(testArgon2Config())
	require.NoError(t, err)

	_, err = hasher.Hash("")

	assert.True(t, errors.Is(err, service.ErrEmptyPassword))
}

func TestArgon2Hasher_CheckMalformedHashes(t *testing.T) {
	hasher, err := NewArgon2Hasher(testArgon2Config())
	require.NoError(t, err)

	valid, err := hasher.Hash("password1")
	require.NoError(t, err)
	parts := strings.Split(valid, "$")

	malformed := []string{
		"",
		"plain",
		"$argon2i$v=19$m=1024,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=18$" + strings.Join(parts[3:], "$"),
		"$argon2id$v=19$m=1024,t=1$" + strings.Join(parts[4:], "$"),
		"$argon2id$v=19$m=1024,t=1,p=0$" + strings.Join(parts[4:], "$"),
		"$argon2id$v=19$m=1024,t=1,p=1$!!!$" + parts[5],
		"$argon2id$v=19$m=1024,t=1,p=1$" + parts[4] + "$",
		valid + "$extra",
	}

	for _, hash := range malformed {
		assert.False(t, hasher.Check("password1", hash), "hash %q", hash)
	}
}

func TestNewArgon2Hasher_RejectsZeroParams(t *testing.T) {
	_, err := NewArgon2Hasher(nil)
	assert.Error(t, err)

	_, err = NewArgon2Hasher(&config.Argon2Config{Memory: 1024, Time: 1, Threads: 0, KeyLength: 16, SaltLength: 8})
	assert.Error(t, err)
}
