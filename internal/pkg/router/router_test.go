package router

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/credvault/internal/pkg/config"
	"github.com/shandysiswandi/credvault/internal/pkg/goerror"
	"github.com/shandysiswandi/credvault/internal/pkg/instrument"
	"github.com/shandysiswandi/credvault/internal/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct{}

func (fixedClock) Now() time.Time { return time.Now() }

type staticID string

func (s staticID) Generate() string { return string(s) }

func newTestRouter(t *testing.T, yaml string) (*Router, *jwt.Symmetric) {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(yaml))
	require.NoError(t, err)

	j, err := jwt.NewHS512(jwt.Config{
		Secret:    []byte(strings.Repeat("s", 64)),
		Issuer:    "credvault",
		Audiences: []string{"vault"},
		Clock:     fixedClock{},
		UUID:      staticID("jti"),
	})
	require.NoError(t, err)

	return NewRouter(Config{
		Config:          cfg,
		UUID:            staticID("cid-1"),
		JWT:             j,
		Instrument:      instrument.NewNoop(),
		PublicEndpoints: map[string][]string{http.MethodGet: {"/open"}},
	}), j
}

type okResp struct {
	Name string `json:"name"`
}

func (okResp) Message() string { return "done" }

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestRouter_PublicAndHealth(t *testing.T) {
	ro, _ := newTestRouter(t, "app: {}")
	ro.GET("/open", func(r *Request) (any, error) { return okResp{Name: "x"}, nil })

	rec := httptest.NewRecorder()
	ro.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	ro.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/open", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cid-1", rec.Header().Get(HeaderCorrelationID))
	body := decode(t, rec)
	assert.Equal(t, "done", body["message"])
	assert.Equal(t, map[string]any{"name": "x"}, body["data"])
}

func TestRouter_AuthAndScope(t *testing.T) {
	ro, j := newTestRouter(t, "app: {}")
	ro.POST("/write", func(r *Request) (any, error) {
		return okResp{Name: r.Actor()}, nil
	}, RequireScope(jwt.ScopeWrite))

	rec := httptest.NewRecorder()
	ro.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/write", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	readTok, err := j.Sign("user-42", jwt.ScopeRead)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/write", nil)
	req.Header.Set("Authorization", "Bearer "+readTok)
	rec = httptest.NewRecorder()
	ro.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	writeTok, err := j.Sign("user-42", jwt.ScopeWrite)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodPost, "/write", nil)
	req.Header.Set("Authorization", "Bearer "+writeTok)
	rec = httptest.NewRecorder()
	ro.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"name": "user-42"}, decode(t, rec)["data"])

	req = httptest.NewRequest(http.MethodPost, "/write", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	ro.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_ErrorMapping(t *testing.T) {
	ro, _ := newTestRouter(t, "app: {}")
	ro.GET("/open", func(r *Request) (any, error) {
		switch r.GetQuery("case") {
		case "missing":
			return nil, goerror.NewBusiness("credential not found", goerror.CodeNotFound)
		case "fields":
			return nil, goerror.NewInvalidInput(nil, "secret", "required")
		case "panic":
			panic("boom")
		default:
			return nil, errors.New("raw")
		}
	})

	cases := map[string]int{
		"missing": http.StatusNotFound,
		"fields":  http.StatusUnprocessableEntity,
		"panic":   http.StatusInternalServerError,
		"raw":     http.StatusInternalServerError,
	}
	for c, code := range cases {
		rec := httptest.NewRecorder()
		ro.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/open?case="+c, nil))
		assert.Equal(t, code, rec.Code, c)
	}

	rec := httptest.NewRecorder()
	ro.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/open?case=fields", nil))
	assert.Equal(t, map[string]any{"secret": "required"}, decode(t, rec)["error"])
}

func TestRouter_NoContent(t *testing.T) {
	ro, _ := newTestRouter(t, "app: {}")
	ro.GET("/open", func(r *Request) (any, error) { return nil, nil })

	rec := httptest.NewRecorder()
	ro.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/open", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRouter_Maintenance(t *testing.T) {
	ro, _ := newTestRouter(t, "app:\n  maintenance:\n    endpoints: /open\n")
	ro.GET("/open", func(r *Request) (any, error) { return okResp{}, nil })

	rec := httptest.NewRecorder()
	ro.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/open", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRequest_DecodeBody(t *testing.T) {
	type in struct {
		Secret string `json:"secret"`
	}

	r := &Request{Request: httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"secret":"s"}`))}
	var v in
	require.NoError(t, r.DecodeBody(&v))
	assert.Equal(t, "s", v.Secret)

	for _, body := range []string{`{"other":1}`, `{"secret":"s"}{}`, `nope`} {
		r = &Request{Request: httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))}
		assert.Equal(t, goerror.CodeInvalidFormat, goerror.CodeOf(r.DecodeBody(&v)), body)
	}
}

func TestRealIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	assert.Equal(t, "10.0.0.1", realIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", realIP(r))
}

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { order = append(order, "h") }), mw("a"), nil, mw("b"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"a", "b", "h"}, order)
}

func TestRouter_SecurityHeaders(t *testing.T) {
	ro, j := newTestRouter(t, "app: {}")
	ro.GET("/secret", func(r *Request) (any, error) {
		return nil, goerror.NewBusiness("invalid credentials", goerror.CodeUnauthorized)
	})
	ro.GET("/scoped", func(r *Request) (any, error) { return okResp{}, nil }, RequireScope(jwt.ScopeAdmin))

	rec := httptest.NewRecorder()
	ro.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/secret", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, `Bearer realm="credvault"`, rec.Header().Get("WWW-Authenticate"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	req := httptest.NewRequest(http.MethodGet, "/secret", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	ro.ServeHTTP(rec, req)
	assert.Contains(t, rec.Header().Get("WWW-Authenticate"), `error="invalid_token"`)

	tok, err := j.Sign("svc", jwt.ScopeRead)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/scoped", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	ro.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Header().Get("WWW-Authenticate"), `error="insufficient_scope"`)

	req = httptest.NewRequest(http.MethodGet, "/secret", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	ro.ServeHTTP(rec, req)
	assert.Equal(t, `Bearer realm="credvault"`, rec.Header().Get("WWW-Authenticate"))
}

func TestCorrelationID(t *testing.T) {
	ro, _ := newTestRouter(t, "app: {}")
	ro.GET("/open", func(r *Request) (any, error) { return okResp{}, nil })

	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set(HeaderRequestID, "  from-proxy  ")
	rec := httptest.NewRecorder()
	ro.ServeHTTP(rec, req)
	assert.Equal(t, "from-proxy", rec.Header().Get(HeaderCorrelationID))

	assert.Empty(t, cleanToken("a\r\nb"))
	assert.Len(t, cleanToken(strings.Repeat("x", 300)), maxTokenLen)
}
