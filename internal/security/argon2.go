package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	argon2ID          = "argon2id"
	argon2MinMemoryKB = 8 * 1024
	argon2SaltLength  = 16
	argon2KeyLength   = 32
)

var errInvalidPHC = errors.New("invalid argon2id hash")

// Argon2Params are the argon2id work factors.
type Argon2Params struct {
	MemoryKB    uint32
	Time        uint32
	Parallelism uint8
}

// Argon2Hasher hashes passwords with argon2id and encodes them in PHC string format:
// $argon2id$v=19$m=<mem>,t=<time>,p=<lanes>$<salt>$<key>.
type Argon2Hasher struct {
	params Argon2Params
}

// NewArgon2Hasher validates params and returns a hasher.
func NewArgon2Hasher(params Argon2Params) (*Argon2Hasher, error) {
	if params.MemoryKB < argon2MinMemoryKB {
		return nil, fmt.Errorf("argon2 memory must be >= %d KB", argon2MinMemoryKB)
	}
	if params.Time < 1 {
		return nil, errors.New("argon2 time must be >= 1")
	}
	if params.Parallelism < 1 {
		return nil, errors.New("argon2 parallelism must be >= 1")
	}
	return &Argon2Hasher{params: params}, nil
}

// Hash derives an argon2id key from password with a fresh random salt.
func (a *Argon2Hasher) Hash(password string) (string, string, error) {
	if password == "" {
		return "", "", ErrEmptyPassword
	}
	salt := make([]byte, argon2SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", "", err
	}
	key := argon2.IDKey([]byte(password), salt, a.params.Time, a.params.MemoryKB, a.params.Parallelism, argon2KeyLength)

	saltEncoded := base64.RawStdEncoding.EncodeToString(salt)
	encoded := fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2ID, argon2.Version,
		a.params.MemoryKB, a.params.Time, a.params.Parallelism,
		saltEncoded, base64.RawStdEncoding.EncodeToString(key))
	return encoded, saltEncoded, nil
}

// Verify recomputes the key with the parameters stored in encodedHash and compares in constant time.
func (a *Argon2Hasher) Verify(password, encodedHash string) bool {
	p, err := parseArgon2PHC(encodedHash)
	if err != nil {
		return false
	}
	computed := argon2.IDKey([]byte(password), p.salt, p.params.Time, p.params.MemoryKB, p.params.Parallelism, uint32(len(p.key)))
	return subtle.ConstantTimeCompare(computed, p.key) == 1
}

type argon2PHC struct {
	params Argon2Params
	salt   []byte
	key    []byte
}

func parseArgon2PHC(encoded string) (*argon2PHC, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != argon2ID {
		return nil, errInvalidPHC
	}
	if parts[2] != "v="+strconv.Itoa(argon2.Version) {
		return nil, errInvalidPHC
	}

	var out argon2PHC
	for _, kv := range strings.Split(parts[3], ",") {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, errInvalidPHC
		}
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil || n == 0 {
			return nil, errInvalidPHC
		}
		switch k {
		case "m":
			out.params.MemoryKB = uint32(n)
		case "t":
			out.params.Time = uint32(n)
		case "p":
			if n > 255 {
				return nil, errInvalidPHC
			}
			out.params.Parallelism = uint8(n)
		default:
			return nil, errInvalidPHC
		}
	}
	if out.params.MemoryKB == 0 || out.params.Time == 0 || out.params.Parallelism == 0 {
		return nil, errInvalidPHC
	}

	var err error
	if out.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil || len(out.salt) == 0 {
		return nil, errInvalidPHC
	}
	if out.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(out.key) == 0 {
		return nil, errInvalidPHC
	}
	return &out, nil
}
