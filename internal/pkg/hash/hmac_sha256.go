package hash

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"

	"github.com/shandysiswandi/credvault/internal/pkg/secret"
)

const hmacSHA256Prefix = "$hmac-sha256$"

// HMACSHA256 implements Hasher as a keyed fast digest. It is only available
// when a server-side secret is configured.
type HMACSHA256 struct {
	secret []byte
}

// NewHMACSHA256 creates a new hasher with a secret.
func NewHMACSHA256(secret string) *HMACSHA256 {
	return &HMACSHA256{secret: []byte(secret)}
}

func (*HMACSHA256) Name() string { return "hmac-sha256" }

func (*HMACSHA256) Strength() int { return 20 }

func (s *HMACSHA256) Available() bool { return len(s.secret) > 0 }

func (*HMACSHA256) Recognize(stored []byte) bool {
	return bytes.HasPrefix(stored, []byte(hmacSHA256Prefix))
}

func (s *HMACSHA256) Hash(digest secret.Envelope) ([]byte, error) {
	return append([]byte(hmacSHA256Prefix), s.gen(digest)...), nil
}

func (s *HMACSHA256) Verify(digest secret.Envelope, stored []byte) (bool, error) {
	sum, ok := bytes.CutPrefix(stored, []byte(hmacSHA256Prefix))
	if !ok || len(sum) != sha256.Size*2 {
		return false, ErrMalformedHash
	}
	return subtle.ConstantTimeCompare(sum, s.gen(digest)) == 1, nil
}

func (s *HMACSHA256) gen(digest secret.Envelope) []byte {
	h := hmac.New(sha256.New, s.secret)
	h.Write(digest.Open())
	return hexSum(h.Sum(nil))
}
