package hash

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/shandysiswandi/credvault/internal/pkg/secret"
	"golang.org/x/crypto/bcrypt"
)

// bcrypt ignores input past this many bytes.
const bcryptMaxInput = 72

// Bcrypt implements Hasher using bcrypt.
//
// When a pepper is configured the digest is keyed with it through HMAC-SHA256
// before hashing, which also keeps the input under the bcrypt length limit.
// Keep the pepper in configuration, not in the database.
type Bcrypt struct {
	cost   int
	pepper string
}

// NewBcrypt returns a bcrypt-based hasher.
func NewBcrypt(cost int, pepper string) *Bcrypt {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Bcrypt{cost: cost, pepper: pepper}
}

func (*Bcrypt) Name() string { return "bcrypt" }

func (*Bcrypt) Strength() int { return 30 }

func (h *Bcrypt) Available() bool {
	return h.cost >= bcrypt.MinCost && h.cost <= bcrypt.MaxCost
}

func (*Bcrypt) Recognize(stored []byte) bool {
	return bytes.HasPrefix(stored, []byte("$2a$")) ||
		bytes.HasPrefix(stored, []byte("$2b$")) ||
		bytes.HasPrefix(stored, []byte("$2y$"))
}

func (h *Bcrypt) Hash(digest secret.Envelope) ([]byte, error) {
	return bcrypt.GenerateFromPassword(h.input(digest), h.cost)
}

func (h *Bcrypt) Verify(digest secret.Envelope, stored []byte) (bool, error) {
	err := bcrypt.CompareHashAndPassword(stored, h.input(digest))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}

	return false, fmt.Errorf("%w: %v", ErrMalformedHash, err)
}

func (h *Bcrypt) NeedsRehash(stored []byte) bool {
	cost, err := bcrypt.Cost(stored)
	if err != nil {
		return false
	}
	return cost < h.cost
}

func (h *Bcrypt) input(digest secret.Envelope) []byte {
	raw := digest.Open()
	switch {
	case h.pepper != "":
		mac := hmac.New(sha256.New, []byte(h.pepper))
		mac.Write(raw)
		return hexSum(mac.Sum(nil))
	case len(raw) > bcryptMaxInput:
		sum := sha256.Sum256(raw)
		return hexSum(sum[:])
	default:
		return raw
	}
}

func hexSum(sum []byte) []byte {
	out := make([]byte, hex.EncodedLen(len(sum)))
	hex.Encode(out, sum)
	return out
}
