// Package hash provides the password hashers used to store credentials and
// the Registry that picks between them.
//
// Every hasher produces self-describing storage bytes (a "$name$..." prefix),
// so the Registry can always find the hasher that produced a stored hash.
// Hashers operate on a digest envelope that callers derive from the raw
// secret and the record salt; they never see the raw secret themselves.
package hash
