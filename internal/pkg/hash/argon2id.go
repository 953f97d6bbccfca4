package hash

import (
	"bytes"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/shandysiswandi/credvault/internal/pkg/secret"
	"golang.org/x/crypto/argon2"
)

const argon2idPrefix = "$argon2id$"

// Argon2idConfig holds the cost parameters for NewArgon2id. Zero values fall back to defaults.
type Argon2idConfig struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
	// MaxConcurrent bounds parallel derivations; 0 disables the limiter.
	MaxConcurrent int
	Pepper        string
}

// Argon2id implements Hasher using Argon2id.
type Argon2id struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
	saltLength  uint32
	keyLength   uint32
	pepper      string
	sema        chan struct{}
}

// NewArgon2id returns an Argon2id hasher.
func NewArgon2id(cfg Argon2idConfig) *Argon2id {
	a := &Argon2id{
		memory:      32 * 1024, // e.g. 32MB, 64MB, 128MB
		iterations:  3,
		parallelism: 2,
		saltLength:  16,
		keyLength:   32,
		pepper:      cfg.Pepper,
	}
	if cfg.MemoryKiB > 0 {
		a.memory = cfg.MemoryKiB
	}
	if cfg.Iterations > 0 {
		a.iterations = cfg.Iterations
	}
	if cfg.Parallelism > 0 {
		a.parallelism = cfg.Parallelism
	}
	if cfg.SaltLength > 0 {
		a.saltLength = cfg.SaltLength
	}
	if cfg.KeyLength > 0 {
		a.keyLength = cfg.KeyLength
	}
	if cfg.MaxConcurrent > 0 {
		a.sema = make(chan struct{}, cfg.MaxConcurrent)
	}

	return a
}

func (*Argon2id) Name() string { return "argon2id" }

func (*Argon2id) Strength() int { return 50 }

// Available rejects parameter sets the argon2 package would panic on or that are too weak.
func (a *Argon2id) Available() bool {
	return a.iterations >= 1 &&
		a.parallelism >= 1 &&
		a.memory >= 8*uint32(a.parallelism) &&
		a.saltLength >= 8 &&
		a.keyLength >= 16
}

func (*Argon2id) Recognize(stored []byte) bool {
	return bytes.HasPrefix(stored, []byte(argon2idPrefix))
}

func (a *Argon2id) Hash(digest secret.Envelope) ([]byte, error) {
	salt := make([]byte, a.saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	key := a.derive(digest, salt, a.iterations, a.memory, a.parallelism, a.keyLength)

	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		a.memory,
		a.iterations,
		a.parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)

	return []byte(encoded), nil
}

func (a *Argon2id) Verify(digest secret.Envelope, stored []byte) (bool, error) {
	p, err := parseArgon2id(stored)
	if err != nil {
		return false, err
	}

	computed := a.derive(digest, p.salt, p.iterations, p.memory, p.parallelism, uint32(len(p.key)))

	return subtle.ConstantTimeCompare(p.key, computed) == 1, nil
}

// NeedsRehash reports true when any stored cost parameter is below the configured one.
func (a *Argon2id) NeedsRehash(stored []byte) bool {
	p, err := parseArgon2id(stored)
	if err != nil {
		return false
	}

	return p.memory < a.memory ||
		p.iterations < a.iterations ||
		p.parallelism < a.parallelism ||
		uint32(len(p.key)) < a.keyLength
}

func (a *Argon2id) derive(digest secret.Envelope, salt []byte, t, m uint32, p uint8, keyLen uint32) []byte {
	if a.sema != nil {
		a.sema <- struct{}{}
		defer func() { <-a.sema }()
	}

	input := make([]byte, 0, digest.Len()+len(a.pepper))
	input = append(input, digest.Open()...)
	input = append(input, a.pepper...)

	return argon2.IDKey(input, salt, t, m, p, keyLen)
}

type argon2idParams struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
	salt        []byte
	key         []byte
}

// parseArgon2id reads "$argon2id$v=19$m=65536,t=3,p=2$<salt>$<key>".
func parseArgon2id(stored []byte) (*argon2idParams, error) {
	parts := strings.Split(string(stored), "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return nil, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return nil, fmt.Errorf("%w: unsupported argon2 version", ErrMalformedHash)
	}

	var p argon2idParams
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.iterations, &p.parallelism); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}
	if p.iterations == 0 || p.parallelism == 0 {
		return nil, ErrMalformedHash
	}

	var err error
	if p.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return nil, fmt.Errorf("%w: salt: %v", ErrMalformedHash, err)
	}
	if p.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(p.key) == 0 {
		return nil, fmt.Errorf("%w: key", ErrMalformedHash)
	}

	return &p, nil
}
