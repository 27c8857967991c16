// VillageVitals | 2026
// otp_test.go

package otp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Format(t *testing.T) {
	for range 200 {
		code, err := Generate()
		require.NoError(t, err)

		require.Len(t, code, 6)
		for _, c := range code {
			assert.True(t, c >= '0' && c <= '9', "non-digit in code %q", code)
		}
	}
}

func TestGenerate_ZeroPadded(t *testing.T) {
	// Codes below 100000 must keep their leading zeros. Generating a
	// batch makes it overwhelmingly likely at least one such code shows
	// up, but length is asserted for every code either way.
	for range 500 {
		code, err := Generate()
		require.NoError(t, err)
		require.Len(t, code, 6)
	}
}
