package security

import (
	"fmt"
	"strings"
)

// Supported values for the PASSWORD_ALGORITHM setting.
const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2ID = "argon2id"
)

// PasswordService hashes new passwords with the configured algorithm and verifies stored hashes of either
// supported algorithm, detected from the hash encoding.
type PasswordService struct {
	primary PasswordHasher
	bcrypt  *BcryptHasher
	argon2  *Argon2Hasher
	decoy   string
}

// NewPasswordService builds a PasswordService. algorithm selects the hasher for new passwords.
func NewPasswordService(algorithm string, bcryptCost int, argon Argon2Params) (*PasswordService, error) {
	bh := NewBcryptHasher(bcryptCost)
	ah, err := NewArgon2Hasher(argon)
	if err != nil {
		return nil, err
	}
	s := &PasswordService{bcrypt: bh, argon2: ah}
	switch strings.ToLower(algorithm) {
	case "", AlgorithmBcrypt:
		s.primary = bh
	case AlgorithmArgon2ID:
		s.primary = ah
	default:
		return nil, fmt.Errorf("security: unsupported password algorithm %q", algorithm)
	}

	seed, err := RandomToken(16)
	if err != nil {
		return nil, err
	}
	if s.decoy, _, err = s.primary.Hash(seed); err != nil {
		return nil, err
	}
	return s, nil
}

// Hash returns the encoded hash and salt for a new password.
func (s *PasswordService) Hash(password string) (hash, salt string, err error) {
	return s.primary.Hash(password)
}

// Verify reports whether password matches storedHash. Unknown encodings never match.
func (s *PasswordService) Verify(password, storedHash string) bool {
	switch {
	case isBcryptHash(storedHash):
		return s.bcrypt.Verify(password, storedHash)
	case strings.HasPrefix(storedHash, "$"+argon2ID+"$"):
		return s.argon2.Verify(password, storedHash)
	default:
		return false
	}
}

// DummyVerify burns the same work as a real verification and always reports false.
// Login calls it when the email is unknown so that path costs as much as a wrong password.
func (s *PasswordService) DummyVerify(password string) bool {
	s.Verify(password, s.decoy)
	return false
}
