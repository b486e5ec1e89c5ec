package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"accounts/config"
	"accounts/internal/domain/service"
	"accounts/internal/errors"

	"golang.org/x/crypto/argon2"
)

const argon2Prefix = "$argon2id$"

var errInvalidArgon2Hash = errors.New("invalid argon2id hash")

// argon2Hasher produces PHC-formatted argon2id strings:
// $argon2id$v=19$m=65536,t=3,p=2$<salt>$<key>
type argon2Hasher struct {
	memory     uint32
	time       uint32
	threads    uint8
	keyLength  uint32
	saltLength uint32
}

// NewArgon2Hasher returns an argon2id hasher using the given parameters.
func NewArgon2Hasher(params *config.Argon2Config) (service.PasswordHasher, error) {
	return newArgon2Hasher(params)
}

func newArgon2Hasher(params *config.Argon2Config) (*argon2Hasher, error) {
	if params == nil {
		return nil, errors.New("argon2 parameters are required")
	}
	if params.Memory == 0 || params.Time == 0 || params.Threads == 0 || params.KeyLength == 0 || params.SaltLength == 0 {
		return nil, errors.Errorf("argon2 parameters must be positive: %+v", *params)
	}

	return &argon2Hasher{
		memory:     params.Memory,
		time:       params.Time,
		threads:    params.Threads,
		keyLength:  params.KeyLength,
		saltLength: params.SaltLength,
	}, nil
}

func (h *argon2Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", service.ErrEmptyPassword
	}

	salt := make([]byte, h.saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", errors.Wrap(err, "generate salt")
	}

	key := argon2.IDKey([]byte(password), salt, h.time, h.memory, h.threads, h.keyLength)

	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2Prefix,
		argon2.Version,
		h.memory,
		h.time,
		h.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Check recomputes the key with the parameters embedded in the hash.
func (h *argon2Hasher) Check(password, hash string) bool {
	decoded, err := decodeArgon2Hash(hash)
	if err != nil {
		return false
	}

	actual := argon2.IDKey([]byte(password), decoded.salt, decoded.time, decoded.memory, decoded.threads, uint32(len(decoded.key)))

	return subtle.ConstantTimeCompare(actual, decoded.key) == 1
}

type argon2Hash struct {
	memory  uint32
	time    uint32
	threads uint8
	salt    []byte
	key     []byte
}

func decodeArgon2Hash(hash string) (*argon2Hash, error) {
	parts := strings.Split(hash, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return nil, errInvalidArgon2Hash
	}

	version, err := parseArgon2Param(parts[2], "v=", 32)
	if err != nil || version != argon2.Version {
		return nil, errInvalidArgon2Hash
	}

	params := strings.Split(parts[3], ",")
	if len(params) != 3 {
		return nil, errInvalidArgon2Hash
	}

	memory, err := parseArgon2Param(params[0], "m=", 32)
	if err != nil || memory == 0 {
		return nil, errInvalidArgon2Hash
	}
	timeCost, err := parseArgon2Param(params[1], "t=", 32)
	if err != nil || timeCost == 0 {
		return nil, errInvalidArgon2Hash
	}
	threads, err := parseArgon2Param(params[2], "p=", 8)
	if err != nil || threads == 0 {
		return nil, errInvalidArgon2Hash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return nil, errInvalidArgon2Hash
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return nil, errInvalidArgon2Hash
	}

	return &argon2Hash{
		memory:  uint32(memory),
		time:    uint32(timeCost),
		threads: uint8(threads),
		salt:    salt,
		key:     key,
	}, nil
}

func parseArgon2Param(value, prefix string, bitSize int) (uint64, error) {
	if !strings.HasPrefix(value, prefix) {
		return 0, errInvalidArgon2Hash
	}

	return strconv.ParseUint(strings.TrimPrefix(value, prefix), 10, bitSize)
}
