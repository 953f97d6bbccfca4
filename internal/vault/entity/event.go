package entity

import "time"

// DefaultAuditTopic receives credential change events when
// modules.vault.audit_topic is not set.
const DefaultAuditTopic = "vault.credential.changed"

// ChangeMessage is the audit payload published for every persisted change.
type ChangeMessage struct {
	EventID       string    `json:"event_id"`
	Action        string    `json:"action"`
	CredentialID  int64     `json:"credential_id,string"`
	ObjectRef     string    `json:"object_ref"`
	Type          string    `json:"type"`
	Algorithm     string    `json:"algorithm,omitempty"`
	Actor         string    `json:"actor"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}
