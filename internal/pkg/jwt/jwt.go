package jwt

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidSigningMethod is returned when the JWT signing method is not supported.
	ErrInvalidSigningMethod = errors.New("invalid JWT signing method")

	// ErrSigningKeyTooShort is returned when the HS512 signing key is less than 64 bytes.
	ErrSigningKeyTooShort = errors.New("HS512 signing key must be at least 64 bytes (512 bits)")

	// ErrTokenExpired is returned when the JWT token has expired.
	ErrTokenExpired = errors.New("JWT token has expired")

	// ErrInvalidToken is returned when the token is malformed or fails validation.
	ErrInvalidToken = errors.New("invalid token")

	// ErrMissingSubject is returned when a token carries no subject.
	ErrMissingSubject = errors.New("JWT token has no subject")
)

// Scopes checked by the vault routes.
const (
	ScopeRead  = "vault:read"
	ScopeWrite = "vault:write"
	ScopeAdmin = "vault:admin"
)

// JWT verifies bearer tokens issued by the identity provider.
type JWT interface {
	Verify(tokenStr string) (Claims, error)
}

type clocker interface {
	Now() time.Time
}

type generator interface {
	Generate() string
}

type jwtContextKey struct{}

// Config defines the inputs for building a JWT implementation.
type Config struct {
	// Secret is the HMAC signing key.
	Secret []byte
	// Issuer is the expected token issuer.
	Issuer string
	// Audiences are the accepted token audiences.
	Audiences []string
	// TTL is the lifetime of tokens minted by Sign.
	TTL time.Duration
	// Clock provides the current time source.
	Clock clocker
	// UUID generates token IDs.
	UUID generator
}

// Claims carries the caller identity. Subject is recorded as the actor of
// every credential change.
type Claims struct {
	jwt.RegisteredClaims
	// Scope is a space separated list, as in OAuth 2.0.
	Scope string `json:"scope,omitempty"`
}

// Actor returns the subject that performed a request.
func (c Claims) Actor() string {
	return c.Subject
}

// HasScope reports whether the token grants scope. vault:admin implies every scope.
func (c Claims) HasScope(scope string) bool {
	scopes := strings.Fields(c.Scope)
	return slices.Contains(scopes, scope) || slices.Contains(scopes, ScopeAdmin)
}

// GetAuth returns the JWT claims stored in the context, if any.
func GetAuth(ctx context.Context) *Claims {
	clm, ok := ctx.Value(jwtContextKey{}).(Claims)
	if !ok {
		return nil
	}

	return &clm
}

// SetAuth stores JWT claims in the context.
func SetAuth(ctx context.Context, clm Claims) context.Context {
	return context.WithValue(ctx, jwtContextKey{}, clm)
}
