package inbound

import (
	"net/http"
	"strconv"
	"time"

	"github.com/shandysiswandi/credvault/internal/pkg/hash"
	"github.com/shandysiswandi/credvault/internal/vault/entity"
)

type SetSecretRequest struct {
	Secret string `json:"secret"`
	Hasher string `json:"hasher,omitempty"`
}

type SecretRequest struct {
	Secret string `json:"secret"`
}

// CredentialResponse never carries the salt or the hash.
type CredentialResponse struct {
	ID         string    `json:"id"`
	ObjectRef  string    `json:"object_ref"`
	Type       string    `json:"type"`
	Algorithm  string    `json:"algorithm"`
	Revoked    bool      `json:"revoked"`
	CanUpgrade bool      `json:"can_upgrade"`
	Version    int64     `json:"version"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func newCredentialResponse(c entity.CredentialInfo) CredentialResponse {
	return CredentialResponse{
		ID:         strconv.FormatInt(c.ID, 10),
		ObjectRef:  c.ObjectRef,
		Type:       c.Type.String(),
		Algorithm:  c.Algorithm,
		Revoked:    c.Revoked,
		CanUpgrade: c.CanUpgrade,
		Version:    c.Version,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

type SetSecretResponse struct {
	Credential CredentialResponse `json:"credential"`
	Replayed   bool               `json:"replayed,omitempty"`

	created bool
}

func (r SetSecretResponse) Message() string {
	if r.created {
		return "Credential created"
	}
	return "Credential secret updated"
}

func (r SetSecretResponse) StatusCode() int {
	if r.created {
		return http.StatusCreated
	}
	return http.StatusOK
}

type VerifySecretResponse struct {
	Algorithm string `json:"algorithm"`
	Upgraded  bool   `json:"upgraded"`
}

func (VerifySecretResponse) Message() string { return "Credentials verified" }

type UpgradeSecretResponse struct {
	Credential CredentialResponse `json:"credential"`
	Upgraded   bool               `json:"upgraded"`
}

func (r UpgradeSecretResponse) Message() string {
	if r.Upgraded {
		return "Credential rehashed with the current hasher"
	}
	return "Credential already uses the current hasher"
}

type CredentialDetailResponse struct {
	Credential CredentialResponse `json:"credential"`
}

type ObjectCredentialsResponse struct {
	Credentials []CredentialResponse `json:"credentials"`
}

func (r ObjectCredentialsResponse) Meta() map[string]any {
	return map[string]any{"total": len(r.Credentials)}
}

type HasherStatusResponse struct {
	Hashers []hash.Info `json:"hashers"`
}
