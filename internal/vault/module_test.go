package vault

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/credvault/internal/pkg/clock"
	"github.com/shandysiswandi/credvault/internal/pkg/config"
	"github.com/shandysiswandi/credvault/internal/pkg/goroutine"
	"github.com/shandysiswandi/credvault/internal/pkg/hash"
	"github.com/shandysiswandi/credvault/internal/pkg/instrument"
	"github.com/shandysiswandi/credvault/internal/pkg/jwt"
	"github.com/shandysiswandi/credvault/internal/pkg/messaging"
	"github.com/shandysiswandi/credvault/internal/pkg/router"
	"github.com/shandysiswandi/credvault/internal/pkg/validator"
	"github.com/shandysiswandi/credvault/internal/vault/outbound/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seqID struct{ n int64 }

func (s *seqID) Generate() int64 { s.n++; return s.n }

type staticID string

func (s staticID) Generate() string { return string(s) }

type fixture struct {
	dep Dependency
	jwt *jwt.Symmetric
	mq  *messaging.Memory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(`
modules:
  vault:
    audit_topic: vault.audit
`))
	require.NoError(t, err)

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	reg, err := hash.NewRegistry([]hash.Hasher{
		hash.NewArgon2id(hash.Argon2idConfig{MemoryKiB: 64, Iterations: 1, Parallelism: 1}),
		hash.NewSHA256(),
	})
	require.NoError(t, err)

	clk := clock.NewFixed(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	j, err := jwt.NewHS512(jwt.Config{
		Secret:    []byte(strings.Repeat("k", 64)),
		Issuer:    "credvault",
		Audiences: []string{"vault"},
		TTL:       time.Hour,
		Clock:     clk,
		UUID:      staticID("jti"),
	})
	require.NoError(t, err)

	ins := instrument.NewNoop()
	mq := messaging.NewMemory()

	return &fixture{
		jwt: j,
		mq:  mq,
		dep: Dependency{
			Router: router.NewRouter(router.Config{
				Config:     cfg,
				UUID:       staticID("cid-1"),
				JWT:        j,
				Instrument: ins,
			}),
			Messaging:  mq,
			Registry:   reg,
			Goroutine:  goroutine.NewManager(2),
			Config:     cfg,
			Instrument: ins,
			UID:        &seqID{},
			OID:        staticID("evt-1"),
			Clock:      clk,
			Validator:  v,
		},
	}
}

func TestNew_Validation(t *testing.T) {
	t.Run("no store", func(t *testing.T) {
		f := newFixture(t)
		assert.Error(t, New(f.dep))
	})

	t.Run("missing registry", func(t *testing.T) {
		f := newFixture(t)
		f.dep.SQLite = openStore(t)
		f.dep.Registry = nil
		assert.Error(t, New(f.dep))
	})
}

func openStore(t *testing.T) *sqlite.DB {
	t.Helper()

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "vault.db"), instrument.NewNoop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, sqlite.RunMigrations(store.Writer))
	return store
}

func call(t *testing.T, srv *httptest.Server, method, path, tok string, payload any) int {
	t.Helper()

	var buf bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(payload))
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+tok)

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	return resp.StatusCode
}

func TestNew_SQLiteEndToEnd(t *testing.T) {
	// Arrange
	f := newFixture(t)
	f.dep.SQLite = openStore(t)
	require.NoError(t, New(f.dep))

	srv := httptest.NewServer(f.dep.Router)
	t.Cleanup(srv.Close)

	tok, err := f.jwt.Sign("svc-login", jwt.ScopeRead, jwt.ScopeWrite)
	require.NoError(t, err)
	base := "/api/v1/vault/objects/user-42/credentials/account"

	// Act
	setStatus := call(t, srv, http.MethodPut, base, tok, map[string]string{"secret": "correct-horse"})
	okStatus := call(t, srv, http.MethodPost, base+"/verify", tok, map[string]string{"secret": "correct-horse"})
	badStatus := call(t, srv, http.MethodPost, base+"/verify", tok, map[string]string{"secret": "wrong"})
	require.NoError(t, f.dep.Goroutine.Wait())

	// Assert
	assert.Equal(t, http.StatusCreated, setStatus)
	assert.Equal(t, http.StatusOK, okStatus)
	assert.Equal(t, http.StatusUnauthorized, badStatus)

	published := f.mq.Drain()
	require.Len(t, published, 1)
	assert.Equal(t, "vault.audit", published[0].Topic)
	assert.Equal(t, "user-42", string(published[0].Message.Key))
	assert.NotContains(t, string(published[0].Message.Body), "correct-horse")
}
