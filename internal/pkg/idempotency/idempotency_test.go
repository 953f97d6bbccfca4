package idempotency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTracker(t *testing.T) (*StateTracker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, "test:"), mr
}

func TestExec_RunsOnce(t *testing.T) {
	tr, _ := newTracker(t)
	ctx := context.Background()
	calls := 0
	fn := func(context.Context) error { calls++; return nil }

	require.NoError(t, tr.Exec(ctx, "k1", fn))
	assert.ErrorIs(t, tr.Exec(ctx, "k1", fn), ErrAlreadyCompleted)
	assert.Equal(t, 1, calls)
}

func TestExec_FailureReleasesKey(t *testing.T) {
	tr, mr := newTracker(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := tr.Exec(ctx, "k2", func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("test:k2"))

	require.NoError(t, tr.Exec(ctx, "k2", func(context.Context) error { return nil }))
}

func TestExec_InProgress(t *testing.T) {
	tr, _ := newTracker(t)
	ctx := context.Background()

	state, err := tr.Acquire(ctx, "k3", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, StateNone, state)

	err = tr.Exec(ctx, "k3", func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrAlreadyInProgress)
}

func TestExec_CompletedExpires(t *testing.T) {
	tr, mr := newTracker(t)
	ctx := context.Background()
	fn := func(context.Context) error { return nil }

	require.NoError(t, tr.Exec(ctx, "k4", fn, WithStateTTL(time.Second)))
	mr.FastForward(2 * time.Second)
	require.NoError(t, tr.Exec(ctx, "k4", fn))
}

func TestAcquire_InvalidState(t *testing.T) {
	tr, mr := newTracker(t)
	require.NoError(t, mr.Set("test:k5", "garbage"))

	state, err := tr.Acquire(context.Background(), "k5", time.Minute)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, StateError, state)
}
