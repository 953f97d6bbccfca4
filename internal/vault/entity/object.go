package entity

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/shandysiswandi/credvault/internal/pkg/credential"
	"github.com/shandysiswandi/credvault/internal/pkg/secret"
)

// ErrUnknownType is returned by NewObject for an unregistered credential type.
var ErrUnknownType = errors.New("vault: unknown credential type")

const (
	accountContext = "account.password"
	serviceContext = "service.password"
)

// NewObject builds the owner object for a credential type.
func NewObject(typ credential.Type, ref string) (credential.Object, error) {
	switch typ {
	case credential.TypeAccount:
		return Account{ref: ref}, nil
	case credential.TypeService:
		return Service{ref: ref}, nil
	case credential.TypeTest:
		return Fixture{ref: ref}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typ)
	}
}

// Account is a human login. Its digest is keyed by the record salt.
type Account struct {
	ref string
}

func (a Account) Ref() string { return a.ref }

func (a Account) DigestSecret(s secret.Envelope, r *credential.Record) (secret.Envelope, error) {
	return keyedDigest(r.Salt, accountContext, "", s), nil
}

// Service is a machine credential (API or VCS token). The digest is bound to
// the object ref so a hash copied to another service never verifies.
type Service struct {
	ref string
}

func (sv Service) Ref() string { return sv.ref }

func (sv Service) DigestSecret(s secret.Envelope, r *credential.Record) (secret.Envelope, error) {
	return keyedDigest(r.Salt, serviceContext, sv.ref, s), nil
}

// Fixture is for tests and seeding; hex(SHA-256(salt || secret)).
type Fixture struct {
	ref string
}

func (f Fixture) Ref() string { return f.ref }

func (f Fixture) DigestSecret(s secret.Envelope, r *credential.Record) (secret.Envelope, error) {
	h := sha256.New()
	h.Write([]byte(r.Salt))
	h.Write(s.Open())
	return hexEnvelope(h.Sum(nil)), nil
}

func keyedDigest(salt, domain, bind string, s secret.Envelope) secret.Envelope {
	mac := hmac.New(sha256.New, []byte(salt))
	mac.Write([]byte(domain))
	mac.Write([]byte{0})
	if bind != "" {
		mac.Write([]byte(bind))
		mac.Write([]byte{0})
	}
	mac.Write(s.Open())
	return hexEnvelope(mac.Sum(nil))
}

func hexEnvelope(sum []byte) secret.Envelope {
	out := make([]byte, hex.EncodedLen(len(sum)))
	hex.Encode(out, sum)
	env := secret.FromBytes(out)
	clear(out)
	return env
}
