// Package auth provides the credential hasher used to store user passwords.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt only considers the first 72 bytes of its input; longer passwords
// are rejected rather than silently truncated.
const maxPasswordLength = 72

// Hasher errors.
var (
	ErrEmptyPassword   = errors.New("password cannot be empty")
	ErrPasswordTooLong = errors.New("password exceeds maximum length")
)

// Hasher turns plaintext passwords into bcrypt digests and verifies them.
// The digest embeds its own cost and salt, so digests created with an older
// cost still verify after the configured cost changes.
type Hasher struct {
	cost int
}

// NewHasher creates a hasher with the given bcrypt work factor.
func NewHasher(cost int) (*Hasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &Hasher{cost: cost}, nil
}

// Cost returns the configured work factor.
func (h *Hasher) Cost() int {
	return h.cost
}

// Hash returns the bcrypt digest of password.
func (h *Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	if len(password) > maxPasswordLength {
		return "", ErrPasswordTooLong
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether password matches digest.
// A mismatch is (false, nil); a malformed digest is an error.
func (h *Hasher) Verify(digest, password string) (bool, error) {
	if len(password) > maxPasswordLength {
		return false, nil
	}

	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("verify password: %w", err)
	}
}

// DigestCost returns the cost a digest was created with.
func DigestCost(digest string) (int, error) {
	return bcrypt.Cost([]byte(digest))
}
