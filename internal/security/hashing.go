package security

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// ErrEmptyPassword is returned by Hash when the plaintext is empty.
var ErrEmptyPassword = errors.New("password must not be empty")

// PasswordHasher hashes and verifies passwords with one algorithm.
// Hash returns the encoded hash (salt included) and the salt on its own so the credential store can keep both.
type PasswordHasher interface {
	Hash(password string) (hash, salt string, err error)
	Verify(password, encodedHash string) bool
}

// BcryptHasher hashes and verifies passwords using bcrypt. Callers must not log or
// persist plaintext passwords.
type BcryptHasher struct {
	Cost int
}

// NewBcryptHasher returns a BcryptHasher with the given cost, clamped to bcrypt's 4–31 range.
// Cost 0 uses bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &BcryptHasher{Cost: cost}
}

// Hash produces a bcrypt hash of password. bcrypt draws a fresh 16-byte salt per call;
// the returned salt is its 22-character encoding as embedded in the hash.
func (h *BcryptHasher) Hash(password string) (string, string, error) {
	if password == "" {
		return "", "", ErrEmptyPassword
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		return "", "", err
	}
	hash := string(b)
	return hash, bcryptSalt(hash), nil
}

// Verify reports whether password matches the stored bcrypt hash.
func (h *BcryptHasher) Verify(password, encodedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password)) == nil
}

// bcryptSalt extracts the salt from "$2a$12$<22 salt chars><31 hash chars>".
func bcryptSalt(hash string) string {
	parts := strings.Split(hash, "$")
	if len(parts) != 4 || len(parts[3]) < 22 {
		return ""
	}
	return parts[3][:22]
}

func isBcryptHash(encodedHash string) bool {
	return strings.HasPrefix(encodedHash, "$2a$") ||
		strings.HasPrefix(encodedHash, "$2b$") ||
		strings.HasPrefix(encodedHash, "$2y$")
}
