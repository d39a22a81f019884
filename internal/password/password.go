// Package password implements one-way password hashing for the user-service.
// Hashes are bcrypt with a fixed work factor; verification never distinguishes
// a mismatch from an unknown password.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashCost is the bcrypt work factor. High enough to resist offline brute
// force, low enough to keep interactive login latency in the hundreds of
// milliseconds.
const HashCost = 12

// Hash derives a salted bcrypt hash from a plaintext password.
func Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), HashCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether plaintext matches the stored hash. A mismatch is not
// an error; an error is only returned for a malformed hash.
func Verify(plaintext, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("malformed password hash: %w", err)
}
