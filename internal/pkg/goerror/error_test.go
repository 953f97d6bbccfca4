package goerror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	cause := errors.New("db down")

	tests := []struct {
		name   string
		err    error
		code   Code
		status int
		msg    string
	}{
		{"server", NewServer(cause), CodeInternal, http.StatusInternalServerError, "Internal server error"},
		{"business", NewBusiness("credential not found", CodeNotFound), CodeNotFound, http.StatusNotFound, "credential not found"},
		{"wrap business", WrapBusiness(cause, "hasher unavailable", CodeUnavailable), CodeUnavailable, http.StatusServiceUnavailable, "hasher unavailable"},
		{"invalid input", NewInvalidInput(cause), CodeInvalidInput, http.StatusUnprocessableEntity, "Validation error"},
		{"invalid input kv", NewInvalidInput(nil, "secret", "required"), CodeInvalidInput, http.StatusUnprocessableEntity, "Validation error"},
		{"invalid input odd kv", NewInvalidInput(nil, "secret"), CodeInvalidFormat, http.StatusBadRequest, "Invalid request body"},
		{"invalid format", NewInvalidFormat(), CodeInvalidFormat, http.StatusBadRequest, "Invalid request body"},
		{"invalid format msg", NewInvalidFormat("bad id"), CodeInvalidFormat, http.StatusBadRequest, "bad id"},
		{"conflict", NewBusiness("stale version", CodeConflict), CodeConflict, http.StatusConflict, "stale version"},
		{"unauthorized", NewBusiness("nope", CodeUnauthorized), CodeUnauthorized, http.StatusUnauthorized, "nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gerr *Error
			assert.True(t, errors.As(tt.err, &gerr))
			assert.Equal(t, tt.code, gerr.Code())
			assert.Equal(t, tt.status, gerr.StatusCode())
			assert.Equal(t, tt.msg, gerr.Msg())
			assert.Equal(t, tt.code, CodeOf(fmt.Errorf("wrapped: %w", tt.err)))
		})
	}
}

func TestWrapBusiness_KeepsCause(t *testing.T) {
	cause := errors.New("argon2id not available")
	err := WrapBusiness(cause, "hasher unavailable", CodeUnavailable)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "hasher unavailable", err.Error())
}

func TestFields(t *testing.T) {
	var gerr *Error
	assert.True(t, errors.As(NewInvalidInput(nil, "secret", "required", "type", "bad"), &gerr))
	assert.Equal(t, map[string]string{"secret": "required", "type": "bad"}, gerr.Fields())
	assert.Equal(t, TypeValidation, gerr.Type())
}

func TestCodeOf_Plain(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("x")))
	assert.Equal(t, "ERROR_CODE_UNAVAILABLE", CodeUnavailable.String())
	assert.Equal(t, "ERROR_TYPE_BUSINESS", TypeBusiness.String())
}

func TestError_Messages(t *testing.T) {
	cause := errors.New("pool closed")

	assert.Equal(t, "pool closed", NewServer(cause).Error(), "server errors log their cause")
	assert.Equal(t, "ERROR_TYPE_SERVER", (&Error{}).Error())
	assert.Equal(t, http.StatusInternalServerError, Code(99).Status())
	assert.Equal(t, "ERROR_CODE_INTERNAL", Code(99).String())

	var gerr *Error
	assert.True(t, errors.As(NewServer(cause), &gerr))
	assert.Contains(t, gerr.String(), "code=ERROR_CODE_INTERNAL")
	assert.Contains(t, gerr.String(), "cause=pool closed")
}
