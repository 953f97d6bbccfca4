package hash

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"
	"github.com/shandysiswandi/credvault/internal/pkg/secret"
	"go.uber.org/atomic"
)

// Info describes a registered hasher.
type Info struct {
	Name      string `json:"name"`
	Strength  int    `json:"strength"`
	Available bool   `json:"available"`
	Retired   bool   `json:"retired"`
	Best      bool   `json:"best"`
}

// Registry resolves hashers for stored hashes and picks the best one for new hashes.
//
// The hasher set lives in an immutable snapshot swapped atomically by
// Reconfigure, so every method is safe for concurrent use.
type Registry struct {
	snap *atomic.Pointer[snapshot]
}

type snapshot struct {
	hashers []Hasher // by strength, strongest first
	retired map[string]struct{}
	best    Hasher
}

// NewRegistry builds a registry. Retired hashers still verify stored hashes
// but are never chosen for new ones.
func NewRegistry(hashers []Hasher, retired ...string) (*Registry, error) {
	s, err := newSnapshot(hashers, retired)
	if err != nil {
		return nil, err
	}

	return &Registry{snap: atomic.NewPointer(s)}, nil
}

// Reconfigure swaps the hasher set. Callers holding a resolved Hasher keep using it.
func (r *Registry) Reconfigure(hashers []Hasher, retired ...string) error {
	s, err := newSnapshot(hashers, retired)
	if err != nil {
		return err
	}

	r.snap.Store(s)
	return nil
}

func newSnapshot(hashers []Hasher, retired []string) (*snapshot, error) {
	if dups := lo.FindDuplicatesBy(hashers, Hasher.Name); len(dups) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateHasher, dups[0].Name())
	}

	sorted := slices.Clone(hashers)
	slices.SortStableFunc(sorted, func(a, b Hasher) int {
		return cmp.Compare(b.Strength(), a.Strength())
	})

	s := &snapshot{
		hashers: sorted,
		retired: lo.SliceToMap(
			lo.Compact(lo.Map(retired, func(n string, _ int) string { return strings.TrimSpace(n) })),
			func(n string) (string, struct{}) { return n, struct{}{} },
		),
	}
	if best, ok := lo.Find(sorted, s.usable); ok {
		s.best = best
	}

	return s, nil
}

func (s *snapshot) usable(h Hasher) bool {
	_, retired := s.retired[h.Name()]
	return h.Available() && !retired
}

// ForStoredHash returns the hasher that produced stored.
func (r *Registry) ForStoredHash(stored []byte) (Hasher, error) {
	if len(stored) == 0 {
		return nil, ErrEmptyHash
	}

	h, ok := lo.Find(r.snap.Load().hashers, func(h Hasher) bool { return h.Recognize(stored) })
	if !ok {
		return nil, ErrUnknownAlgorithm
	}
	if !h.Available() {
		return nil, fmt.Errorf("%w: %s", ErrHasherUnavailable, h.Name())
	}

	return h, nil
}

// Best returns the strongest usable hasher.
func (r *Registry) Best() (Hasher, error) {
	best := r.snap.Load().best
	if best == nil {
		return nil, ErrHasherUnavailable
	}
	return best, nil
}

// Get returns the registered hasher with the given name.
func (r *Registry) Get(name string) (Hasher, error) {
	h, ok := lo.Find(r.snap.Load().hashers, func(h Hasher) bool { return h.Name() == name })
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, name)
	}
	return h, nil
}

// Usable reports whether h may produce new hashes.
func (r *Registry) Usable(h Hasher) bool {
	return h != nil && r.snap.Load().usable(h)
}

// CanUpgrade reports whether stored should be rehashed: it was produced by a
// hasher other than Best, or Best considers its parameters stale.
func (r *Registry) CanUpgrade(stored []byte) (bool, error) {
	current, err := r.ForStoredHash(stored)
	if err != nil {
		return false, err
	}

	best, err := r.Best()
	if err != nil {
		return false, err
	}

	if current.Name() != best.Name() {
		return true, nil
	}

	if rh, ok := best.(Rehasher); ok {
		return rh.NeedsRehash(stored), nil
	}

	return false, nil
}

// Compare verifies digest against stored using the hasher that produced it.
func (r *Registry) Compare(digest secret.Envelope, stored []byte) (bool, error) {
	h, err := r.ForStoredHash(stored)
	if err != nil {
		return false, err
	}

	return h.Verify(digest, stored)
}

// Status lists every registered hasher, strongest first.
func (r *Registry) Status() []Info {
	s := r.snap.Load()

	return lo.Map(s.hashers, func(h Hasher, _ int) Info {
		_, retired := s.retired[h.Name()]
		return Info{
			Name:      h.Name(),
			Strength:  h.Strength(),
			Available: h.Available(),
			Retired:   retired,
			Best:      s.best != nil && s.best.Name() == h.Name(),
		}
	})
}
