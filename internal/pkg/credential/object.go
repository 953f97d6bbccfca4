package credential

import "github.com/shandysiswandi/credvault/internal/pkg/secret"

// Type distinguishes credentials of the same object.
type Type string

const (
	TypeAccount Type = "account"
	TypeService Type = "service"
	TypeTest    Type = "test"
)

func (t Type) String() string { return string(t) }

// Valid reports whether t is a known credential type.
func (t Type) Valid() bool {
	switch t {
	case TypeAccount, TypeService, TypeTest:
		return true
	default:
		return false
	}
}

// Object is the owner of a credential. DigestSecret derives the value that is
// actually hashed from the raw secret and the record, typically mixing in the
// record salt. It must return a non-empty envelope.
type Object interface {
	Ref() string
	DigestSecret(s secret.Envelope, r *Record) (secret.Envelope, error)
}
