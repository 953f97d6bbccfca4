package credential

import (
	"crypto/rand"
	"fmt"
	"io"
)

// SaltLength is the number of characters in a record salt.
const SaltLength = 64

// 32 symbols, so masking a random byte with 31 picks each one uniformly.
const saltAlphabet = "abcdefghijklmnopqrstuvwxyz234567"

var saltSource io.Reader = rand.Reader

func newSalt() (string, error) {
	buf := make([]byte, SaltLength)
	if _, err := io.ReadFull(saltSource, buf); err != nil {
		return "", fmt.Errorf("credential: read random salt: %w", err)
	}

	for i, b := range buf {
		buf[i] = saltAlphabet[b&31]
	}

	return string(buf), nil
}
