package inbound

import (
	"context"

	"github.com/shandysiswandi/credvault/internal/pkg/jwt"
	"github.com/shandysiswandi/credvault/internal/pkg/router"
	"github.com/shandysiswandi/credvault/internal/vault/usecase"
)

type uc interface {
	SetSecret(ctx context.Context, in usecase.SetSecretInput) (*usecase.SetSecretOutput, error)
	VerifySecret(ctx context.Context, in usecase.VerifySecretInput) (*usecase.VerifySecretOutput, error)
	UpgradeSecret(ctx context.Context, in usecase.UpgradeSecretInput) (*usecase.UpgradeSecretOutput, error)

	RevokeCredential(ctx context.Context, in usecase.RevokeCredentialInput) error
	DeleteCredential(ctx context.Context, in usecase.DeleteCredentialInput) error

	CredentialDetail(ctx context.Context, in usecase.CredentialDetailInput) (*usecase.CredentialDetailOutput, error)
	ObjectCredentials(ctx context.Context, in usecase.ObjectCredentialsInput) (*usecase.ObjectCredentialsOutput, error)
	HasherStatus(ctx context.Context) (*usecase.HasherStatusOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	read := router.RequireScope(jwt.ScopeRead)
	write := router.RequireScope(jwt.ScopeWrite)
	admin := router.RequireScope(jwt.ScopeAdmin)

	// Secrets
	r.PUT("/api/v1/vault/objects/:ref/credentials/:type", end.SetSecret, write)
	r.POST("/api/v1/vault/objects/:ref/credentials/:type/verify", end.VerifySecret, read)
	r.POST("/api/v1/vault/objects/:ref/credentials/:type/upgrade", end.UpgradeSecret, write)

	// Lifecycle
	r.POST("/api/v1/vault/objects/:ref/credentials/:type/revoke", end.RevokeCredential, admin)
	r.DELETE("/api/v1/vault/objects/:ref/credentials/:type", end.DeleteCredential, admin)

	// Metadata
	r.GET("/api/v1/vault/objects/:ref/credentials/:type", end.CredentialDetail, read)
	r.GET("/api/v1/vault/objects/:ref/credentials", end.ObjectCredentials, read)
	r.GET("/api/v1/vault/hashers", end.HasherStatus, admin)
}
