// Package password hashes and verifies user passwords.
package password

import (
	"errors"
	"strings"
)

const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"
)

var (
	ErrUnknownAlgorithm = errors.New("unknown password hash algorithm")
	ErrMalformedHash    = errors.New("malformed password hash")
)

// Hasher produces salted one-way hashes and checks plaintexts against them.
// Verify reports a mismatch as false with a nil error; an error means the
// stored hash could not be parsed.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) (bool, error)
}

// New returns a MultiHasher that hashes with the named algorithm and
// verifies hashes of every supported algorithm.
func New(algorithm string, bcryptCost int) (*MultiHasher, error) {
	bc := NewBcryptHasher(bcryptCost)
	ar := NewArgon2Hasher(nil)

	var primary Hasher
	switch strings.ToLower(strings.TrimSpace(algorithm)) {
	case "", AlgorithmBcrypt:
		primary = bc
	case AlgorithmArgon2id:
		primary = ar
	default:
		return nil, ErrUnknownAlgorithm
	}
	return &MultiHasher{primary: primary, bcrypt: bc, argon2: ar}, nil
}

// MultiHasher lets stored hashes outlive a change of PASSWORD_HASHER.
type MultiHasher struct {
	primary Hasher
	bcrypt  *BcryptHasher
	argon2  *Argon2Hasher
}

func (m *MultiHasher) Hash(plaintext string) (string, error) {
	return m.primary.Hash(plaintext)
}

func (m *MultiHasher) Verify(plaintext, hash string) (bool, error) {
	switch {
	case strings.HasPrefix(hash, "$argon2id$"):
		return m.argon2.Verify(plaintext, hash)
	case strings.HasPrefix(hash, "$2a$"), strings.HasPrefix(hash, "$2b$"), strings.HasPrefix(hash, "$2y$"):
		return m.bcrypt.Verify(plaintext, hash)
	default:
		return false, ErrMalformedHash
	}
}

var _ Hasher = (*MultiHasher)(nil)
