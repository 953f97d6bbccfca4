// Package uid generates identifiers: snowflake numbers for credential
// records, UUIDv7 strings for correlation ids and object ids for audit events.
package uid

// NumberID generates numeric identifiers.
type NumberID interface {
	Generate() int64
}

// StringID generates string identifiers.
type StringID interface {
	Generate() string
}
