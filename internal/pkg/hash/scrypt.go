package hash

import (
	"bytes"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/shandysiswandi/credvault/internal/pkg/secret"
	"golang.org/x/crypto/scrypt"
)

const scryptPrefix = "$scrypt$"

// ScryptConfig holds the cost parameters for NewScrypt. Zero values fall back to defaults.
type ScryptConfig struct {
	// LogN is log2 of the CPU/memory cost N.
	LogN       uint8
	R          int
	P          int
	SaltLength int
	KeyLength  int
}

// Scrypt implements Hasher using scrypt.
type Scrypt struct {
	logN       uint8
	r          int
	p          int
	saltLength int
	keyLength  int
}

// NewScrypt returns a scrypt-based hasher.
func NewScrypt(cfg ScryptConfig) *Scrypt {
	s := &Scrypt{logN: 15, r: 8, p: 1, saltLength: 16, keyLength: 32}
	if cfg.LogN > 0 {
		s.logN = cfg.LogN
	}
	if cfg.R > 0 {
		s.r = cfg.R
	}
	if cfg.P > 0 {
		s.p = cfg.P
	}
	if cfg.SaltLength > 0 {
		s.saltLength = cfg.SaltLength
	}
	if cfg.KeyLength > 0 {
		s.keyLength = cfg.KeyLength
	}
	return s
}

func (*Scrypt) Name() string { return "scrypt" }

func (*Scrypt) Strength() int { return 40 }

func (s *Scrypt) Available() bool {
	return s.logN >= 1 && s.logN < 31 &&
		uint64(s.r)*uint64(s.p) < 1<<30 &&
		s.saltLength >= 8 &&
		s.keyLength >= 16
}

func (*Scrypt) Recognize(stored []byte) bool {
	return bytes.HasPrefix(stored, []byte(scryptPrefix))
}

func (s *Scrypt) Hash(digest secret.Envelope) ([]byte, error) {
	salt := make([]byte, s.saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	key, err := scrypt.Key(digest.Open(), salt, 1<<s.logN, s.r, s.p, s.keyLength)
	if err != nil {
		return nil, err
	}

	return fmt.Appendf(nil, "$scrypt$ln=%d,r=%d,p=%d$%s$%s",
		s.logN, s.r, s.p,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func (s *Scrypt) Verify(digest secret.Envelope, stored []byte) (bool, error) {
	p, err := parseScrypt(stored)
	if err != nil {
		return false, err
	}

	key, err := scrypt.Key(digest.Open(), p.salt, 1<<p.logN, p.r, p.p, len(p.key))
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}

	return subtle.ConstantTimeCompare(p.key, key) == 1, nil
}

func (s *Scrypt) NeedsRehash(stored []byte) bool {
	p, err := parseScrypt(stored)
	if err != nil {
		return false
	}
	return p.logN < s.logN || p.r < s.r || p.p < s.p || len(p.key) < s.keyLength
}

type scryptParams struct {
	logN uint8
	r    int
	p    int
	salt []byte
	key  []byte
}

// parseScrypt reads "$scrypt$ln=15,r=8,p=1$<salt>$<key>".
func parseScrypt(stored []byte) (*scryptParams, error) {
	parts := strings.Split(string(stored), "$")
	if len(parts) != 5 || parts[1] != "scrypt" {
		return nil, ErrMalformedHash
	}

	var p scryptParams
	if _, err := fmt.Sscanf(parts[2], "ln=%d,r=%d,p=%d", &p.logN, &p.r, &p.p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}
	if p.logN == 0 || p.logN > 30 || p.r <= 0 || p.p <= 0 {
		return nil, ErrMalformedHash
	}

	var err error
	if p.salt, err = base64.RawStdEncoding.DecodeString(parts[3]); err != nil {
		return nil, fmt.Errorf("%w: salt: %v", ErrMalformedHash, err)
	}
	if p.key, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil || len(p.key) == 0 {
		return nil, fmt.Errorf("%w: key", ErrMalformedHash)
	}

	return &p, nil
}
