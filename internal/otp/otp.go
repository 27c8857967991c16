// VillageVitals | 2026
// otp.go

// Package otp issues and consumes the one-time passcodes that gate
// account verification. Codes are stored with a hard expiry and a
// single-use flag; consumption is atomic at the row level so two
// racing validations of the same code cannot both succeed.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// TTL is how long a freshly issued code stays valid.
const TTL = 10 * time.Minute

// codeSpace is the number of possible 6-digit codes (000000-999999).
var codeSpace = big.NewInt(1_000_000)

// Generate returns a left-zero-padded 6-digit code drawn uniformly from
// the code space. Codes gate account verification, so they come from
// crypto/rand even though they are short-lived.
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}

	return fmt.Sprintf("%06d", n.Int64()), nil
}
