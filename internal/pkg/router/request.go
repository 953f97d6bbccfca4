package router

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/shandysiswandi/credvault/internal/pkg/goerror"
	"github.com/shandysiswandi/credvault/internal/pkg/jwt"
)

const (
	// HeaderIdempotencyKey lets clients retry mutations safely.
	HeaderIdempotencyKey = "Idempotency-Key"

	maxBodyBytes = 64 << 10
)

// Request wraps http.Request with helpers for inbound handlers.
type Request struct {
	*http.Request
}

// GetParam reads a path parameter from the request context (as stored by httprouter).
func (r *Request) GetParam(key string) string {
	return httprouter.ParamsFromContext(r.Context()).ByName(key)
}

func (r *Request) GetParamInt64(key string) (int64, error) {
	value, err := strconv.ParseInt(r.GetParam(key), 10, 64)
	if err != nil {
		return 0, goerror.NewInvalidFormat("param " + key + " must be an integer")
	}
	return value, nil
}

func (r *Request) GetQuery(key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

func (r *Request) GetQueryInt32(key string) (int32, error) {
	queryValue := r.GetQuery(key)
	if queryValue == "" {
		return 0, nil
	}

	value, err := strconv.ParseInt(queryValue, 10, 32)
	if err != nil {
		return 0, goerror.NewInvalidFormat("Invalid query " + key)
	}

	return int32(value), nil
}

func (r *Request) GetQueryBool(key string) (bool, error) {
	queryValue := r.GetQuery(key)
	if queryValue == "" {
		return false, nil
	}

	value, err := strconv.ParseBool(queryValue)
	if err != nil {
		return false, goerror.NewInvalidFormat("Invalid query " + key)
	}

	return value, nil
}

// IdempotencyKey returns the trimmed Idempotency-Key header.
func (r *Request) IdempotencyKey() string {
	return cleanToken(r.Header.Get(HeaderIdempotencyKey))
}

// Actor returns the authenticated subject, or "" on public routes.
func (r *Request) Actor() string {
	if clm := jwt.GetAuth(r.Context()); clm != nil {
		return clm.Actor()
	}
	return ""
}

// DecodeBody decodes a single JSON object into dst, rejecting unknown fields.
func (r *Request) DecodeBody(dst any) error {
	if r == nil || r.Body == nil {
		return goerror.NewInvalidFormat()
	}

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return goerror.NewInvalidFormat()
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return goerror.NewInvalidFormat()
	}

	return nil
}
