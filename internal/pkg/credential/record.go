package credential

import (
	"fmt"
	"time"

	"github.com/shandysiswandi/credvault/internal/pkg/hash"
	"github.com/shandysiswandi/credvault/internal/pkg/secret"
)

// Record is one stored credential, unique per (ObjectRef, Type).
//
// A Record is not safe for concurrent mutation. Stores persist Salt, Hash and
// Algorithm together and use Version to reject lost updates.
type Record struct {
	ID        int64
	ObjectRef string
	Type      Type
	Salt      string
	Hash      []byte
	Algorithm string
	Revoked   bool
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time

	object   Object
	registry *hash.Registry
}

// New initializes a record for obj with no secret set.
func New(reg *hash.Registry, obj Object, typ Type) *Record {
	return &Record{
		ObjectRef: obj.Ref(),
		Type:      typ,
		object:    obj,
		registry:  reg,
	}
}

// Attach binds a loaded record to its owning object and the hasher registry.
func (r *Record) Attach(reg *hash.Registry, obj Object) *Record {
	r.registry = reg
	r.object = obj
	return r
}

// Object returns the attached owner.
func (r *Record) Object() (Object, error) {
	if r.object == nil {
		return nil, ErrNotAttached
	}
	return r.object, nil
}

// HasSecret reports whether a hash is stored.
func (r *Record) HasSecret() bool {
	return len(r.Hash) > 0
}

// SetSecret stores s with the best available hasher under a fresh salt.
func (r *Record) SetSecret(s secret.Envelope, obj Object) error {
	if s.IsEmpty() {
		return ErrEmptySecret
	}
	if r.registry == nil {
		return ErrNotAttached
	}

	best, err := r.registry.Best()
	if err != nil {
		return err
	}

	return r.SetSecretWithHasher(s, obj, best)
}

// SetSecretWithHasher stores s with h under a fresh salt. h must be
// registered under its name in the record's registry; the registered
// instance does the hashing. The record is left untouched when any step fails.
func (r *Record) SetSecretWithHasher(s secret.Envelope, obj Object, h hash.Hasher) error {
	if s.IsEmpty() {
		return ErrEmptySecret
	}
	if r.registry == nil {
		return ErrNotAttached
	}
	if h == nil {
		return ErrHasherUnavailable
	}

	h, err := r.registry.Get(h.Name())
	if err != nil {
		return err
	}
	if !h.Available() {
		return fmt.Errorf("%w: %s", ErrHasherUnavailable, h.Name())
	}

	salt, err := newSalt()
	if err != nil {
		return err
	}

	next := *r
	next.Salt = salt

	digest, err := next.digest(s, obj)
	if err != nil {
		return err
	}

	stored, err := h.Hash(digest)
	if err != nil {
		return fmt.Errorf("credential: hash with %s: %w", h.Name(), err)
	}

	r.Salt = salt
	r.Hash = stored
	r.Algorithm = h.Name()

	return nil
}

// CompareSecret reports whether s matches the stored hash. It does not look
// at Revoked; callers decide what a revoked credential means.
func (r *Record) CompareSecret(s secret.Envelope, obj Object) (bool, error) {
	if r.registry == nil {
		return false, ErrNotAttached
	}
	if err := r.checkObject(obj); err != nil {
		return false, err
	}
	if !r.HasSecret() {
		return false, ErrNoSecret
	}
	if s.IsEmpty() {
		return false, nil
	}

	digest, err := r.digest(s, obj)
	if err != nil {
		return false, err
	}

	return r.registry.Compare(digest, r.Hash)
}

// UpgradeHasher rehashes s with the best hasher. s must match the stored
// hash; otherwise ErrUpgradeAuthenticationMismatch is returned and nothing changes.
func (r *Record) UpgradeHasher(s secret.Envelope, obj Object) error {
	ok, err := r.CompareSecret(s, obj)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUpgradeAuthenticationMismatch
	}

	return r.SetSecret(s, obj)
}

// CanUpgrade reports whether the stored hash should be rehashed.
func (r *Record) CanUpgrade() (bool, error) {
	if r.registry == nil {
		return false, ErrNotAttached
	}
	if !r.HasSecret() {
		return false, ErrNoSecret
	}

	return r.registry.CanUpgrade(r.Hash)
}

// Hasher returns the hasher that produced the stored hash.
func (r *Record) Hasher() (hash.Hasher, error) {
	if r.registry == nil {
		return nil, ErrNotAttached
	}
	if !r.HasSecret() {
		return nil, ErrNoSecret
	}

	return r.registry.ForStoredHash(r.Hash)
}

// Revoke marks the credential as no longer accepted for authentication.
func (r *Record) Revoke() {
	r.Revoked = true
}

func (r *Record) checkObject(obj Object) error {
	if obj == nil {
		return ErrNotAttached
	}
	if obj.Ref() != r.ObjectRef {
		return ErrObjectMismatch
	}
	return nil
}

func (r *Record) digest(s secret.Envelope, obj Object) (secret.Envelope, error) {
	if err := r.checkObject(obj); err != nil {
		return secret.Envelope{}, err
	}

	d, err := obj.DigestSecret(s, r)
	if err != nil {
		return secret.Envelope{}, fmt.Errorf("credential: digest secret: %w", err)
	}
	if d.IsEmpty() {
		return secret.Envelope{}, ErrInvalidDigest
	}

	return d, nil
}
