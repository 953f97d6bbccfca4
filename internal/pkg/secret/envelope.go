package secret

import (
	"crypto/subtle"
	"fmt"
	"log/slog"
)

const redacted = "[redacted]"

// Envelope wraps a secret value. The zero value is an empty envelope.
type Envelope struct {
	value []byte
}

// New returns an envelope holding a copy of s.
func New(s string) Envelope {
	return Envelope{value: []byte(s)}
}

// FromBytes returns an envelope holding a copy of b.
func FromBytes(b []byte) Envelope {
	if len(b) == 0 {
		return Envelope{}
	}

	v := make([]byte, len(b))
	copy(v, b)
	return Envelope{value: v}
}

// Open returns the raw secret.
func (e Envelope) Open() []byte {
	return e.value
}

// IsEmpty reports whether the envelope holds a zero-length secret.
func (e Envelope) IsEmpty() bool {
	return len(e.value) == 0
}

// Len returns the length of the secret in bytes.
func (e Envelope) Len() int {
	return len(e.value)
}

// Equal compares two envelopes in constant time.
func (e Envelope) Equal(o Envelope) bool {
	return subtle.ConstantTimeCompare(e.value, o.value) == 1
}

// Wipe zeroes the backing array. The envelope is empty afterwards.
func (e *Envelope) Wipe() {
	for i := range e.value {
		e.value[i] = 0
	}
	e.value = nil
}

func (Envelope) String() string { return redacted }

func (Envelope) GoString() string { return "secret.Envelope{" + redacted + "}" }

// Format makes every fmt verb print the redacted marker.
func (Envelope) Format(f fmt.State, _ rune) {
	//nolint:errcheck // fmt.State writes never fail in practice
	f.Write([]byte(redacted))
}

func (Envelope) MarshalJSON() ([]byte, error) { return []byte(`"` + redacted + `"`), nil }

func (Envelope) MarshalText() ([]byte, error) { return []byte(redacted), nil }

// LogValue implements slog.LogValuer.
func (Envelope) LogValue() slog.Value { return slog.StringValue(redacted) }
