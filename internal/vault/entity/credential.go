package entity

import (
	"time"

	"github.com/shandysiswandi/credvault/internal/pkg/credential"
)

// CredentialInfo is the metadata of a stored credential. It never carries
// the salt or the hash.
type CredentialInfo struct {
	ID         int64
	ObjectRef  string
	Type       credential.Type
	Algorithm  string
	Revoked    bool
	CanUpgrade bool
	Version    int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewCredentialInfo copies the public fields of rec.
func NewCredentialInfo(rec *credential.Record, canUpgrade bool) CredentialInfo {
	return CredentialInfo{
		ID:         rec.ID,
		ObjectRef:  rec.ObjectRef,
		Type:       rec.Type,
		Algorithm:  rec.Algorithm,
		Revoked:    rec.Revoked,
		CanUpgrade: canUpgrade,
		Version:    rec.Version,
		CreatedAt:  rec.CreatedAt,
		UpdatedAt:  rec.UpdatedAt,
	}
}
