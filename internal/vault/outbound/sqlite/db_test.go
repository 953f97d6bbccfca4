package sqlite

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/credvault/internal/pkg/credential"
	"github.com/shandysiswandi/credvault/internal/pkg/goerror"
	"github.com/shandysiswandi/credvault/internal/pkg/instrument"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB opens a shared in-memory database named after the test.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	// WAL is not available in memory; journal_mode is left out.
	dsn := fmt.Sprintf(
		"file:%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)",
		url.PathEscape(t.Name()),
	)

	s, err := openDSN(dsn, instrument.NewNoop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, RunMigrations(s.Writer))
	require.NoError(t, RunMigrations(s.Writer), "second run is a no-op")

	return s
}

func sampleRecord(id int64, ref string, typ credential.Type) *credential.Record {
	at := time.Date(2026, 3, 1, 9, 0, 0, 123456789, time.UTC)
	return &credential.Record{
		ID:        id,
		ObjectRef: ref,
		Type:      typ,
		Salt:      "abcdefghijklmnopqrstuvwxyz234567abcdefghijklmnopqrstuvwxyz234567",
		Hash:      []byte("$sha256$c2FsdA$ZGlnZXN0"),
		Algorithm: "sha256",
		Version:   1,
		CreatedAt: at,
		UpdatedAt: at,
	}
}

func TestDB_CreateAndGet(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	rec := sampleRecord(1, "user-42", credential.TypeAccount)

	require.NoError(t, s.CreateCredential(ctx, rec))
	got, err := s.GetCredential(ctx, "user-42", credential.TypeAccount)
	require.NoError(t, err)

	assert.Equal(t, rec, got)
}

func TestDB_UniquePerObjectAndType(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, s.CreateCredential(ctx, sampleRecord(1, "user-42", credential.TypeAccount)))
	err := s.CreateCredential(ctx, sampleRecord(2, "user-42", credential.TypeAccount))
	assert.ErrorIs(t, err, goerror.ErrConflict)

	require.NoError(t, s.CreateCredential(ctx, sampleRecord(3, "user-42", credential.TypeService)))
	require.NoError(t, s.CreateCredential(ctx, sampleRecord(4, "user-43", credential.TypeAccount)))
}

func TestDB_GetMissing(t *testing.T) {
	s := setupTestDB(t)

	_, err := s.GetCredential(context.Background(), "ghost", credential.TypeAccount)
	assert.ErrorIs(t, err, goerror.ErrNotFound)
}

func TestDB_UpdateVersioned(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	require.NoError(t, s.CreateCredential(ctx, sampleRecord(1, "user-42", credential.TypeAccount)))

	next := sampleRecord(1, "user-42", credential.TypeAccount)
	next.Hash = []byte("$argon2id$v=19$m=64,t=1,p=1$c2FsdA$a2V5")
	next.Salt = "zyxwvutsrqponmlkjihgfedcba765432zyxwvutsrqponmlkjihgfedcba765432"
	next.Algorithm = "argon2id"
	next.Revoked = true
	next.Version = 2
	next.UpdatedAt = next.UpdatedAt.Add(time.Hour)

	require.NoError(t, s.UpdateCredential(ctx, next, 1))
	assert.ErrorIs(t, s.UpdateCredential(ctx, next, 1), goerror.ErrConflict, "stale version")

	got, err := s.GetCredential(ctx, "user-42", credential.TypeAccount)
	require.NoError(t, err)
	assert.Equal(t, next, got)
}

func TestDB_ConcurrentUpdateOneWins(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	require.NoError(t, s.CreateCredential(ctx, sampleRecord(1, "user-42", credential.TypeAccount)))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok, stale int
	)
	for i := range 8 {
		wg.Go(func() {
			rec := sampleRecord(1, "user-42", credential.TypeAccount)
			rec.Algorithm = fmt.Sprintf("h%d", i)
			rec.Version = 2
			err := s.UpdateCredential(ctx, rec, 1)

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if assert.ErrorIs(t, err, goerror.ErrConflict) {
				stale++
			}
		})
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, 7, stale)
}

func TestDB_ListAndDelete(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	require.NoError(t, s.CreateCredential(ctx, sampleRecord(1, "user-42", credential.TypeTest)))
	require.NoError(t, s.CreateCredential(ctx, sampleRecord(2, "user-42", credential.TypeAccount)))
	require.NoError(t, s.CreateCredential(ctx, sampleRecord(3, "user-7", credential.TypeAccount)))

	list, err := s.ListCredentialsByObject(ctx, "user-42")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, credential.TypeAccount, list[0].Type)
	assert.Equal(t, credential.TypeTest, list[1].Type)

	require.NoError(t, s.DeleteCredential(ctx, "user-42", credential.TypeAccount))
	assert.ErrorIs(t, s.DeleteCredential(ctx, "user-42", credential.TypeAccount), goerror.ErrNotFound)

	list, err = s.ListCredentialsByObject(ctx, "user-42")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	empty, err := s.ListCredentialsByObject(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
