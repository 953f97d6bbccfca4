// Package credential implements the stored credential record: a salted,
// hashed secret bound to one object and one credential type.
//
// A Record never holds the raw secret. Callers hand a secret.Envelope to
// SetSecret or CompareSecret together with the owning Object, which derives
// the digest that the hash.Registry stores or verifies. Persistence is the
// caller's concern; the record only changes its own fields, and only when an
// operation succeeds.
package credential
