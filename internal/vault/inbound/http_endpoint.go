package inbound

import (
	"github.com/shandysiswandi/credvault/internal/pkg/router"
	"github.com/shandysiswandi/credvault/internal/pkg/secret"
	"github.com/shandysiswandi/credvault/internal/vault/usecase"
)

// HTTPEndpoint exposes the credential vault over HTTP.
type HTTPEndpoint struct {
	uc uc
}

// SetSecret creates the credential or replaces its secret.
// Answers 201 on create and 200 on rotation. An Idempotency-Key header makes
// retries replay the first result.
func (h *HTTPEndpoint) SetSecret(r *router.Request) (any, error) {
	var req SetSecretRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.SetSecret(r.Context(), usecase.SetSecretInput{
		ObjectRef:      r.GetParam("ref"),
		Type:           r.GetParam("type"),
		Secret:         secret.New(req.Secret),
		Hasher:         req.Hasher,
		IdempotencyKey: r.IdempotencyKey(),
	})
	if err != nil {
		return nil, err
	}

	return SetSecretResponse{
		Credential: newCredentialResponse(resp.Credential),
		Replayed:   resp.Replayed,
		created:    resp.Created,
	}, nil
}

// VerifySecret answers 200 on a match and 401 otherwise.
func (h *HTTPEndpoint) VerifySecret(r *router.Request) (any, error) {
	var req SecretRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.VerifySecret(r.Context(), usecase.VerifySecretInput{
		ObjectRef: r.GetParam("ref"),
		Type:      r.GetParam("type"),
		Secret:    secret.New(req.Secret),
	})
	if err != nil {
		return nil, err
	}

	return VerifySecretResponse{Algorithm: resp.Algorithm, Upgraded: resp.Upgraded}, nil
}

func (h *HTTPEndpoint) UpgradeSecret(r *router.Request) (any, error) {
	var req SecretRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.UpgradeSecret(r.Context(), usecase.UpgradeSecretInput{
		ObjectRef: r.GetParam("ref"),
		Type:      r.GetParam("type"),
		Secret:    secret.New(req.Secret),
	})
	if err != nil {
		return nil, err
	}

	return UpgradeSecretResponse{Credential: newCredentialResponse(resp.Credential), Upgraded: resp.Upgraded}, nil
}

func (h *HTTPEndpoint) RevokeCredential(r *router.Request) (any, error) {
	if err := h.uc.RevokeCredential(r.Context(), usecase.RevokeCredentialInput{
		ObjectRef: r.GetParam("ref"),
		Type:      r.GetParam("type"),
	}); err != nil {
		return nil, err
	}

	return nil, nil
}

func (h *HTTPEndpoint) DeleteCredential(r *router.Request) (any, error) {
	if err := h.uc.DeleteCredential(r.Context(), usecase.DeleteCredentialInput{
		ObjectRef: r.GetParam("ref"),
		Type:      r.GetParam("type"),
	}); err != nil {
		return nil, err
	}

	return nil, nil
}

func (h *HTTPEndpoint) CredentialDetail(r *router.Request) (any, error) {
	resp, err := h.uc.CredentialDetail(r.Context(), usecase.CredentialDetailInput{
		ObjectRef: r.GetParam("ref"),
		Type:      r.GetParam("type"),
	})
	if err != nil {
		return nil, err
	}

	return CredentialDetailResponse{Credential: newCredentialResponse(resp.Credential)}, nil
}

func (h *HTTPEndpoint) ObjectCredentials(r *router.Request) (any, error) {
	resp, err := h.uc.ObjectCredentials(r.Context(), usecase.ObjectCredentialsInput{ObjectRef: r.GetParam("ref")})
	if err != nil {
		return nil, err
	}

	out := make([]CredentialResponse, 0, len(resp.Credentials))
	for _, c := range resp.Credentials {
		out = append(out, newCredentialResponse(c))
	}

	return ObjectCredentialsResponse{Credentials: out}, nil
}

func (h *HTTPEndpoint) HasherStatus(r *router.Request) (any, error) {
	resp, err := h.uc.HasherStatus(r.Context())
	if err != nil {
		return nil, err
	}

	return HasherStatusResponse{Hashers: resp.Hashers}, nil
}
