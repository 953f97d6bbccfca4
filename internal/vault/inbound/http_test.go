package inbound

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/credvault/internal/pkg/config"
	"github.com/shandysiswandi/credvault/internal/pkg/credential"
	"github.com/shandysiswandi/credvault/internal/pkg/goerror"
	"github.com/shandysiswandi/credvault/internal/pkg/hash"
	"github.com/shandysiswandi/credvault/internal/pkg/instrument"
	"github.com/shandysiswandi/credvault/internal/pkg/jwt"
	"github.com/shandysiswandi/credvault/internal/pkg/router"
	"github.com/shandysiswandi/credvault/internal/vault/entity"
	"github.com/shandysiswandi/credvault/internal/vault/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type successEnvelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    map[string]any  `json:"meta"`
}

type errorEnvelope struct {
	Message string            `json:"message"`
	Error   map[string]string `json:"error"`
}

// fakeUsecase records the last input and answers with canned values.
type fakeUsecase struct {
	setIn    usecase.SetSecretInput
	setOut   *usecase.SetSecretOutput
	verifyIn usecase.VerifySecretInput
	err      error
	revoked  []usecase.RevokeCredentialInput
}

func (f *fakeUsecase) SetSecret(_ context.Context, in usecase.SetSecretInput) (*usecase.SetSecretOutput, error) {
	f.setIn = in
	return f.setOut, f.err
}

func (f *fakeUsecase) VerifySecret(_ context.Context, in usecase.VerifySecretInput) (*usecase.VerifySecretOutput, error) {
	f.verifyIn = in
	if f.err != nil {
		return nil, f.err
	}
	return &usecase.VerifySecretOutput{Algorithm: "argon2id", Upgraded: true}, nil
}

func (f *fakeUsecase) UpgradeSecret(context.Context, usecase.UpgradeSecretInput) (*usecase.UpgradeSecretOutput, error) {
	return &usecase.UpgradeSecretOutput{Credential: sampleInfo(), Upgraded: true}, f.err
}

func (f *fakeUsecase) RevokeCredential(_ context.Context, in usecase.RevokeCredentialInput) error {
	f.revoked = append(f.revoked, in)
	return f.err
}

func (f *fakeUsecase) DeleteCredential(context.Context, usecase.DeleteCredentialInput) error {
	return f.err
}

func (f *fakeUsecase) CredentialDetail(context.Context, usecase.CredentialDetailInput) (*usecase.CredentialDetailOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &usecase.CredentialDetailOutput{Credential: sampleInfo()}, nil
}

func (f *fakeUsecase) ObjectCredentials(context.Context, usecase.ObjectCredentialsInput) (*usecase.ObjectCredentialsOutput, error) {
	return &usecase.ObjectCredentialsOutput{Credentials: []entity.CredentialInfo{sampleInfo()}}, f.err
}

func (f *fakeUsecase) HasherStatus(context.Context) (*usecase.HasherStatusOutput, error) {
	return &usecase.HasherStatusOutput{Hashers: []hash.Info{{Name: "argon2id", Strength: 50, Available: true, Best: true}}}, nil
}

func sampleInfo() entity.CredentialInfo {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return entity.CredentialInfo{
		ID:        1876543210987654321,
		ObjectRef: "user-42",
		Type:      credential.TypeAccount,
		Algorithm: "argon2id",
		Version:   1,
		CreatedAt: at,
		UpdatedAt: at,
	}
}

type staticID string

func (s staticID) Generate() string { return string(s) }

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

func newServer(t *testing.T, uc uc) (*httptest.Server, *jwt.Symmetric) {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte("app: {}"))
	require.NoError(t, err)

	j, err := jwt.NewHS512(jwt.Config{
		Secret:    []byte(strings.Repeat("k", 64)),
		Issuer:    "credvault",
		Audiences: []string{"vault"},
		Clock:     wallClock{},
		UUID:      staticID("jti"),
	})
	require.NoError(t, err)

	ro := router.NewRouter(router.Config{
		Config:     cfg,
		UUID:       staticID("cid"),
		JWT:        j,
		Instrument: instrument.NewNoop(),
	})
	RegisterHTTPEndpoint(ro, uc)

	srv := httptest.NewServer(ro)
	t.Cleanup(srv.Close)
	return srv, j
}

func token(t *testing.T, j *jwt.Symmetric, scopes ...string) string {
	t.Helper()
	tok, err := j.Sign("svc-login", scopes...)
	require.NoError(t, err)
	return tok
}

func doJSON(t *testing.T, srv *httptest.Server, method, path string, payload any, tok string, headers ...string) (int, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		buf := &bytes.Buffer{}
		require.NoError(t, json.NewEncoder(buf).Encode(payload))
		body = buf
	}

	req, err := http.NewRequest(method, srv.URL+path, body)
	require.NoError(t, err)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, respBody
}

func decodeSuccess(t *testing.T, body []byte, out any) successEnvelope {
	t.Helper()

	var env successEnvelope
	require.NoError(t, json.Unmarshal(body, &env))
	if out != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, out))
	}
	return env
}

func decodeError(t *testing.T, body []byte) errorEnvelope {
	t.Helper()

	var env errorEnvelope
	require.NoError(t, json.Unmarshal(body, &env))
	return env
}

func TestSetSecret(t *testing.T) {
	// Arrange
	fake := &fakeUsecase{setOut: &usecase.SetSecretOutput{Credential: sampleInfo(), Created: true}}
	srv, j := newServer(t, fake)
	path := "/api/v1/vault/objects/user-42/credentials/account"

	// Act
	status, body := doJSON(t, srv, http.MethodPut, path,
		map[string]string{"secret": "correct-horse"}, token(t, j, jwt.ScopeWrite), "Idempotency-Key", "req-1")

	// Assert
	require.Equal(t, http.StatusCreated, status, string(body))
	var data SetSecretResponse
	env := decodeSuccess(t, body, &data)
	assert.Equal(t, "Credential created", env.Message)
	assert.Equal(t, "1876543210987654321", data.Credential.ID)
	assert.Equal(t, "argon2id", data.Credential.Algorithm)
	assert.NotContains(t, string(body), "correct-horse")
	assert.NotContains(t, string(body), "salt")

	assert.Equal(t, "user-42", fake.setIn.ObjectRef)
	assert.Equal(t, "account", fake.setIn.Type)
	assert.Equal(t, "correct-horse", string(fake.setIn.Secret.Open()))
	assert.Equal(t, "req-1", fake.setIn.IdempotencyKey)
}

func TestSetSecret_Rotation(t *testing.T) {
	fake := &fakeUsecase{setOut: &usecase.SetSecretOutput{Credential: sampleInfo()}}
	srv, j := newServer(t, fake)

	status, body := doJSON(t, srv, http.MethodPut, "/api/v1/vault/objects/user-42/credentials/account",
		map[string]string{"secret": "battery-staple"}, token(t, j, jwt.ScopeWrite))

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Credential secret updated", decodeSuccess(t, body, nil).Message)
}

func TestSetSecret_BadBody(t *testing.T) {
	srv, j := newServer(t, &fakeUsecase{})

	status, body := doJSON(t, srv, http.MethodPut, "/api/v1/vault/objects/user-42/credentials/account",
		map[string]string{"password": "x"}, token(t, j, jwt.ScopeWrite))

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid request body", decodeError(t, body).Message)
}

func TestScopes(t *testing.T) {
	srv, j := newServer(t, &fakeUsecase{setOut: &usecase.SetSecretOutput{Credential: sampleInfo()}})
	readTok := token(t, j, jwt.ScopeRead)
	writeTok := token(t, j, jwt.ScopeWrite)
	adminTok := token(t, j, jwt.ScopeAdmin)
	base := "/api/v1/vault/objects/user-42/credentials/account"
	pw := map[string]string{"secret": "pw"}

	cases := []struct {
		name    string
		method  string
		path    string
		payload any
		tok     string
		want    int
	}{
		{"no token", http.MethodGet, base, nil, "", http.StatusUnauthorized},
		{"read detail", http.MethodGet, base, nil, readTok, http.StatusOK},
		{"read cannot set", http.MethodPut, base, pw, readTok, http.StatusForbidden},
		{"write cannot delete", http.MethodDelete, base, nil, writeTok, http.StatusForbidden},
		{"write cannot list hashers", http.MethodGet, "/api/v1/vault/hashers", nil, writeTok, http.StatusForbidden},
		{"admin deletes", http.MethodDelete, base, nil, adminTok, http.StatusNoContent},
		{"admin revokes", http.MethodPost, base + "/revoke", nil, adminTok, http.StatusNoContent},
		{"admin verifies", http.MethodPost, base + "/verify", pw, adminTok, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := doJSON(t, srv, tc.method, tc.path, tc.payload, tc.tok)
			assert.Equal(t, tc.want, status, string(body))
		})
	}
}

func TestVerifySecret(t *testing.T) {
	t.Run("match", func(t *testing.T) {
		fake := &fakeUsecase{}
		srv, j := newServer(t, fake)

		status, body := doJSON(t, srv, http.MethodPost, "/api/v1/vault/objects/svc-ci/credentials/service/verify",
			map[string]string{"secret": "tok"}, token(t, j, jwt.ScopeRead))

		require.Equal(t, http.StatusOK, status)
		var data VerifySecretResponse
		decodeSuccess(t, body, &data)
		assert.Equal(t, VerifySecretResponse{Algorithm: "argon2id", Upgraded: true}, data)
		assert.Equal(t, "service", fake.verifyIn.Type)
	})

	t.Run("mismatch", func(t *testing.T) {
		srv, j := newServer(t, &fakeUsecase{err: goerror.NewBusiness("invalid credentials", goerror.CodeUnauthorized)})

		status, body := doJSON(t, srv, http.MethodPost, "/api/v1/vault/objects/svc-ci/credentials/service/verify",
			map[string]string{"secret": "nope"}, token(t, j, jwt.ScopeRead))

		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "invalid credentials", decodeError(t, body).Message)
	})
}

func TestUpgradeSecret(t *testing.T) {
	srv, j := newServer(t, &fakeUsecase{})

	status, body := doJSON(t, srv, http.MethodPost, "/api/v1/vault/objects/user-42/credentials/account/upgrade",
		map[string]string{"secret": "pw"}, token(t, j, jwt.ScopeWrite))

	require.Equal(t, http.StatusOK, status)
	var data UpgradeSecretResponse
	env := decodeSuccess(t, body, &data)
	assert.True(t, data.Upgraded)
	assert.Equal(t, "Credential rehashed with the current hasher", env.Message)
}

func TestCredentialDetail_NotFound(t *testing.T) {
	srv, j := newServer(t, &fakeUsecase{err: goerror.NewBusiness("credential not found", goerror.CodeNotFound)})

	status, body := doJSON(t, srv, http.MethodGet, "/api/v1/vault/objects/ghost/credentials/account", nil, token(t, j, jwt.ScopeRead))

	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "credential not found", decodeError(t, body).Message)
}

func TestObjectCredentials(t *testing.T) {
	srv, j := newServer(t, &fakeUsecase{})

	status, body := doJSON(t, srv, http.MethodGet, "/api/v1/vault/objects/user-42/credentials", nil, token(t, j, jwt.ScopeRead))

	require.Equal(t, http.StatusOK, status)
	var data ObjectCredentialsResponse
	env := decodeSuccess(t, body, &data)
	require.Len(t, data.Credentials, 1)
	assert.Equal(t, "account", data.Credentials[0].Type)
	assert.EqualValues(t, 1, env.Meta["total"])
}

func TestHasherStatus(t *testing.T) {
	srv, j := newServer(t, &fakeUsecase{})

	status, body := doJSON(t, srv, http.MethodGet, "/api/v1/vault/hashers", nil, token(t, j, jwt.ScopeAdmin))

	require.Equal(t, http.StatusOK, status)
	var data HasherStatusResponse
	decodeSuccess(t, body, &data)
	require.Len(t, data.Hashers, 1)
	assert.True(t, data.Hashers[0].Best)
}
