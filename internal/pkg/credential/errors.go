package credential

import (
	"errors"

	"github.com/shandysiswandi/credvault/internal/pkg/hash"
)

var (
	// ErrEmptySecret is returned when an empty secret is set.
	ErrEmptySecret = errors.New("credential: secret must not be empty")

	// ErrObjectMismatch is returned when the object does not own the record.
	ErrObjectMismatch = errors.New("credential: object does not own this credential")

	// ErrInvalidDigest is returned when an object produces an empty digest.
	ErrInvalidDigest = errors.New("credential: object returned an invalid digest")

	// ErrUpgradeAuthenticationMismatch is returned when an upgrade is attempted with the wrong secret.
	ErrUpgradeAuthenticationMismatch = errors.New("credential: upgrade secret does not match the stored credential")

	// ErrNotAttached is returned when a record is used before Attach.
	ErrNotAttached = errors.New("credential: object or registry not attached")

	// ErrNoSecret is returned when comparing or upgrading a record that has no stored hash.
	ErrNoSecret = errors.New("credential: no secret stored")

	ErrUnknownAlgorithm  = hash.ErrUnknownAlgorithm
	ErrHasherUnavailable = hash.ErrHasherUnavailable
)
