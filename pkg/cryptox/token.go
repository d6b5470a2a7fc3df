package cryptox

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// ResetTokenSize is the number of random bytes in a password reset token.
const ResetTokenSize = 32

// GenerateHexToken creates a cryptographically secure random token of the
// specified byte length, hex encoded (2*size characters).
func GenerateHexToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}

	return hex.EncodeToString(buf), nil
}

// MustGenerateHexToken is like GenerateHexToken but panics on error.
func MustGenerateHexToken(size int) string {
	token, err := GenerateHexToken(size)
	if err != nil {
		panic(fmt.Sprintf("cryptox: failed to generate token: %v", err))
	}
	return token
}

// RandomIntn returns a uniform random integer in [0, n) from crypto/rand.
func RandomIntn(n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("bound must be positive, got %d", n)
	}
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("failed to read random bytes: %w", err)
	}
	var v uint64
	for _, x := range b {
		v = v<<8 | uint64(x)
	}
	return int(v % uint64(n)), nil // #nosec G115 - n is a positive int
}
