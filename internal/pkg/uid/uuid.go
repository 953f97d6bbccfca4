package uid

import "github.com/google/uuid"

// UUID generates time-ordered correlation ids for requests and audit events.
type UUID struct{}

// NewUUID returns the generator the router uses for X-Correlation-ID when a
// request carries none.
func NewUUID() *UUID {
	return &UUID{}
}

// Generate returns a UUIDv7, or a random UUIDv4 if the clock source fails.
func (*UUID) Generate() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}
