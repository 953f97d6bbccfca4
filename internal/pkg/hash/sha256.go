package hash

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/shandysiswandi/credvault/internal/pkg/secret"
)

const sha256Prefix = "$sha256$"

// SHA256 is the legacy salted fast digest, stored as "$sha256$<salt_hex>$<hash_hex>".
// It stays registered so old records can still be verified and upgraded.
type SHA256 struct{}

// NewSHA256 returns the legacy hasher.
func NewSHA256() *SHA256 {
	return &SHA256{}
}

func (*SHA256) Name() string { return "sha256" }

func (*SHA256) Strength() int { return 10 }

func (*SHA256) Available() bool { return true }

func (*SHA256) Recognize(stored []byte) bool {
	return bytes.HasPrefix(stored, []byte(sha256Prefix))
}

func (*SHA256) Hash(digest secret.Envelope) ([]byte, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	sum := saltedSHA256(salt, digest)
	return fmt.Appendf(nil, "$sha256$%s$%s", hex.EncodeToString(salt), hex.EncodeToString(sum)), nil
}

func (*SHA256) Verify(digest secret.Envelope, stored []byte) (bool, error) {
	parts := strings.Split(string(stored), "$")
	if len(parts) != 4 || parts[1] != "sha256" {
		return false, ErrMalformedHash
	}

	salt, err := hex.DecodeString(parts[2])
	if err != nil {
		return false, fmt.Errorf("%w: salt: %v", ErrMalformedHash, err)
	}
	want, err := hex.DecodeString(parts[3])
	if err != nil || len(want) != sha256.Size {
		return false, fmt.Errorf("%w: hash", ErrMalformedHash)
	}

	return subtle.ConstantTimeCompare(want, saltedSHA256(salt, digest)) == 1, nil
}

func saltedSHA256(salt []byte, digest secret.Envelope) []byte {
	h := sha256.New()
	h.Write(salt)
	h.Write(digest.Open())
	return h.Sum(nil)
}
