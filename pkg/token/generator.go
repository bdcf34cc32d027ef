// Package token provides session token generation and validation utilities.
package token

import (
	"crypto/rand"
	"fmt"
)

// Alphabet is the set of characters a valid token is drawn from.
const Alphabet = "0123456789ABCDEF"

// DefaultLength is the default token length in characters.
const DefaultLength = 32

// Generate generates a random token of the default length.
//
// The returned token consists of uppercase hexadecimal characters only.
func Generate() (string, error) {
	return GenerateWithLength(DefaultLength)
}

// GenerateWithLength generates a token with the specified character length.
// length must be at least 1.
func GenerateWithLength(length int) (string, error) {
	if length < 1 {
		return "", fmt.Errorf("token length must be at least 1, got %d", length)
	}

	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}

	out := make([]byte, length)
	for i, b := range bytes {
		out[i] = Alphabet[int(b)&0x0F]
	}
	return string(out), nil
}

// Validate checks whether tok has the canonical token format:
// exactly DefaultLength characters, each in [0-9A-F].
func Validate(tok string) bool {
	return ValidateWithLength(tok, DefaultLength)
}

// ValidateWithLength checks whether tok is exactly length characters
// drawn from the uppercase hexadecimal alphabet.
func ValidateWithLength(tok string, length int) bool {
	if len(tok) != length {
		return false
	}
	for i := 0; i < len(tok); i++ {
		c := tok[i]
		if (c < '0' || c > '9') && (c < 'A' || c > 'F') {
			return false
		}
	}
	return true
}

// Mask masks a token for safe logging.
// Returns the first and last few characters with the middle masked.
// Example: A1B...3D4
func Mask(tok string) string {
	if len(tok) < 10 {
		return "***REDACTED***"
	}
	return tok[:3] + "..." + tok[len(tok)-3:]
}
