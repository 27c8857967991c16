// VillageVitals | 2026
// security.go

package core

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost must stay compatible with digests already in the users
// table; raising it only affects newly stored digests.
const bcryptCost = 12

func HashPassword(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	return string(digest), nil
}

// VerifyPassword reports whether plaintext matches the stored digest.
// Malformed digests verify false rather than erroring, so a corrupted
// row degrades to a failed login instead of a 500.
func VerifyPassword(password, digest string) bool {
	return bcrypt.CompareHashAndPassword(
		[]byte(digest),
		[]byte(password),
	) == nil
}
