package auth

import (
	"strings"

	"accounts/config"
	"accounts/internal/domain/service"
	"accounts/internal/errors"
)

// passwordHasher hashes with the configured algorithm and verifies stored
// hashes of any supported algorithm, picked by the hash prefix.
type passwordHasher struct {
	primary service.PasswordHasher
	bcrypt  service.PasswordHasher
	argon2  service.PasswordHasher
}

// NewPasswordHasher builds the hasher described by the auth config section.
func NewPasswordHasher(cfg *config.Config) (service.PasswordHasher, error) {
	if cfg == nil || cfg.Auth == nil {
		return nil, errors.New("auth configuration is required")
	}

	bcryptH, err := NewBcryptHasherWithCost(cfg.Auth.BcryptCost)
	if err != nil {
		return nil, err
	}

	argon2H, err := NewArgon2Hasher(cfg.Auth.Argon2)
	if err != nil {
		return nil, err
	}

	h := &passwordHasher{bcrypt: bcryptH, argon2: argon2H}

	switch cfg.Auth.HashAlgorithm {
	case config.HashBcrypt:
		h.primary = bcryptH
	case config.HashArgon2ID:
		h.primary = argon2H
	default:
		return nil, errors.Errorf("unsupported hash algorithm: %q", cfg.Auth.HashAlgorithm)
	}

	return h, nil
}

func (h *passwordHasher) Hash(password string) (string, error) {
	return h.primary.Hash(password)
}

func (h *passwordHasher) Check(password, hash string) bool {
	if strings.HasPrefix(hash, argon2Prefix) {
		return h.argon2.Check(password, hash)
	}

	return h.bcrypt.Check(password, hash)
}
