package hash

import (
	"errors"

	"github.com/shandysiswandi/credvault/internal/pkg/secret"
)

var (
	// ErrUnknownAlgorithm is returned when no registered hasher recognizes a stored hash.
	ErrUnknownAlgorithm = errors.New("hash: unknown algorithm")

	// ErrHasherUnavailable is returned when the selected hasher cannot be used.
	ErrHasherUnavailable = errors.New("hash: hasher unavailable")

	// ErrMalformedHash is returned when stored bytes carry a known prefix but cannot be parsed.
	ErrMalformedHash = errors.New("hash: malformed stored hash")

	// ErrEmptyHash is returned when an empty stored hash is resolved.
	ErrEmptyHash = errors.New("hash: empty stored hash")

	// ErrDuplicateHasher is returned when two hashers share a name.
	ErrDuplicateHasher = errors.New("hash: duplicate hasher name")
)

// Hasher turns a digest into storage bytes and verifies a digest against them.
type Hasher interface {
	// Name is the stable identifier embedded in the storage prefix.
	Name() string

	// Strength ranks hashers; the registry prefers the highest available one.
	Strength() int

	// Available reports whether the hasher can run with its configuration.
	Available() bool

	// Recognize reports whether stored was produced by this hasher.
	Recognize(stored []byte) bool

	// Hash returns self-describing storage bytes for digest.
	Hash(digest secret.Envelope) ([]byte, error)

	// Verify reports whether digest matches stored.
	Verify(digest secret.Envelope, stored []byte) (bool, error)
}

// Rehasher is implemented by hashers with tunable cost. NeedsRehash reports
// whether stored was produced with weaker parameters than the current ones.
type Rehasher interface {
	NeedsRehash(stored []byte) bool
}
