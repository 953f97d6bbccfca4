package hash

import (
	"sync"
	"testing"

	"github.com/shandysiswandi/credvault/internal/pkg/secret"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNewRegistry_DuplicateName(t *testing.T) {
	_, err := NewRegistry([]Hasher{NewSHA256(), NewSHA256()})
	assert.ErrorIs(t, err, ErrDuplicateHasher)
}

func TestRegistry_Best(t *testing.T) {
	t.Run("strongest available wins", func(t *testing.T) {
		reg, err := NewRegistry(cheapHashers())
		require.NoError(t, err)

		best, err := reg.Best()
		require.NoError(t, err)
		assert.Equal(t, "argon2id", best.Name())
	})

	t.Run("retired and unavailable are skipped", func(t *testing.T) {
		reg, err := NewRegistry([]Hasher{
			NewArgon2id(Argon2idConfig{MemoryKiB: 64, Iterations: 1, Parallelism: 1}),
			NewHMACSHA256(""),
			NewSHA256(),
		}, "argon2id")
		require.NoError(t, err)

		best, err := reg.Best()
		require.NoError(t, err)
		assert.Equal(t, "sha256", best.Name())
	})

	t.Run("nothing usable", func(t *testing.T) {
		reg, err := NewRegistry([]Hasher{NewHMACSHA256("")})
		require.NoError(t, err)

		_, err = reg.Best()
		assert.ErrorIs(t, err, ErrHasherUnavailable)
	})
}

func TestRegistry_ForStoredHash(t *testing.T) {
	reg, err := NewRegistry(cheapHashers())
	require.NoError(t, err)

	for _, h := range cheapHashers() {
		stored, err := h.Hash(secret.New("d"))
		require.NoError(t, err)

		got, err := reg.ForStoredHash(stored)
		require.NoError(t, err)
		assert.Equal(t, h.Name(), got.Name())
	}

	_, err = reg.ForStoredHash([]byte("$md5$abc"))
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)

	_, err = reg.ForStoredHash(nil)
	assert.ErrorIs(t, err, ErrEmptyHash)
}

func TestRegistry_ForStoredHash_Unavailable(t *testing.T) {
	stored, err := NewHMACSHA256("key").Hash(secret.New("d"))
	require.NoError(t, err)

	reg, err := NewRegistry([]Hasher{NewHMACSHA256(""), NewSHA256()})
	require.NoError(t, err)

	_, err = reg.ForStoredHash(stored)
	assert.ErrorIs(t, err, ErrHasherUnavailable)
}

func TestRegistry_RetiredStillVerifies(t *testing.T) {
	legacy := NewSHA256()
	stored, err := legacy.Hash(secret.New("d"))
	require.NoError(t, err)

	reg, err := NewRegistry([]Hasher{NewBcrypt(bcrypt.MinCost, ""), legacy}, "sha256")
	require.NoError(t, err)

	ok, err := reg.Compare(secret.New("d"), stored)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, reg.Usable(legacy))
}

func TestRegistry_CanUpgrade(t *testing.T) {
	weakArgon := NewArgon2id(Argon2idConfig{MemoryKiB: 64, Iterations: 1, Parallelism: 1})
	legacy := NewSHA256()

	reg, err := NewRegistry([]Hasher{weakArgon, legacy})
	require.NoError(t, err)

	legacyStored, err := legacy.Hash(secret.New("d"))
	require.NoError(t, err)
	up, err := reg.CanUpgrade(legacyStored)
	require.NoError(t, err)
	assert.True(t, up)

	bestStored, err := weakArgon.Hash(secret.New("d"))
	require.NoError(t, err)
	up, err = reg.CanUpgrade(bestStored)
	require.NoError(t, err)
	assert.False(t, up)

	require.NoError(t, reg.Reconfigure([]Hasher{
		NewArgon2id(Argon2idConfig{MemoryKiB: 128, Iterations: 1, Parallelism: 1}),
		legacy,
	}))
	up, err = reg.CanUpgrade(bestStored)
	require.NoError(t, err)
	assert.True(t, up, "raised cost makes the old parameters stale")

	_, err = reg.CanUpgrade([]byte("$md5$abc"))
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
}

func TestRegistry_Get(t *testing.T) {
	reg, err := NewRegistry(cheapHashers())
	require.NoError(t, err)

	h, err := reg.Get("bcrypt")
	require.NoError(t, err)
	assert.Equal(t, "bcrypt", h.Name())

	_, err = reg.Get("md5")
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
}

func TestRegistry_Status(t *testing.T) {
	reg, err := NewRegistry([]Hasher{NewSHA256(), NewHMACSHA256(""), NewBcrypt(bcrypt.MinCost, "")}, "bcrypt")
	require.NoError(t, err)

	assert.Equal(t, []Info{
		{Name: "bcrypt", Strength: 30, Available: true, Retired: true},
		{Name: "hmac-sha256", Strength: 20, Available: false},
		{Name: "sha256", Strength: 10, Available: true, Best: true},
	}, reg.Status())
}

func TestRegistry_ConcurrentReconfigure(t *testing.T) {
	reg, err := NewRegistry(cheapHashers())
	require.NoError(t, err)

	stored, err := NewSHA256().Hash(secret.New("d"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Go(func() {
			if i%2 == 0 {
				assert.NoError(t, reg.Reconfigure(cheapHashers(), "argon2id"))
				return
			}
			ok, err := reg.Compare(secret.New("d"), stored)
			assert.NoError(t, err)
			assert.True(t, ok)
		})
	}
	wg.Wait()
}
