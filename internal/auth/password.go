// Package auth provides credential hashing, opaque bearer tokens, and the
// authentication middleware.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// defaultCost is the bcrypt work factor for new password hashes.
//
// bcrypt is deliberately slow — that's what makes offline brute-forcing
// expensive. Cost 12 takes roughly ~250ms on current server hardware, which
// is negligible at login time. The salt is generated per hash and embedded
// in the output string, so there is no separate salt column.
const defaultCost = 12

// ErrPasswordMismatch is returned by Verify when the password is wrong.
// Callers translate it into the constant-shape authentication failure —
// never surface "wrong password" vs "no such user" to the client.
var ErrPasswordMismatch = errors.New("auth: password mismatch")

// PasswordService hashes and verifies passwords with bcrypt.
//
// The cost is injectable so tests can use bcrypt.MinCost (4) instead of
// paying ~250ms per hash; pass 0 to get the production default.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService. cost <= 0 selects the
// default production cost.
func NewPasswordService(cost int) *PasswordService {
	if cost <= 0 {
		cost = defaultCost
	}
	return &PasswordService{cost: cost}
}

// Hash hashes a plaintext password. The result is a self-contained bcrypt
// string (version, cost, salt, digest) — store it as-is.
//
// bcrypt silently truncates input beyond 72 bytes; we reject such passwords
// explicitly instead.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		return "", fmt.Errorf("auth: password must be 72 bytes or fewer")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	return string(hashed), nil
}

// Verify checks a plaintext password against a stored bcrypt hash.
// Returns nil on match, ErrPasswordMismatch on mismatch. The underlying
// comparison is constant-time.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPasswordMismatch
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}
