package usecase

import (
	"context"

	"github.com/shandysiswandi/credvault/internal/pkg/credential"
	"github.com/shandysiswandi/credvault/internal/pkg/goerror"
	"github.com/shandysiswandi/credvault/internal/pkg/secret"
	"github.com/shandysiswandi/credvault/internal/vault/entity"
)

type (
	UpgradeSecretInput struct {
		ObjectRef string `validate:"required,objectref"`
		Type      string `validate:"required,credtype"`
		Secret    secret.Envelope
	}

	UpgradeSecretOutput struct {
		Credential entity.CredentialInfo
		Upgraded   bool
	}
)

// UpgradeSecret rehashes with the best hasher. The caller must present the
// current secret; nothing is written when it does not match.
func (s *Usecase) UpgradeSecret(ctx context.Context, in UpgradeSecretInput) (*UpgradeSecretOutput, error) {
	ctx, span := s.startSpan(ctx, "UpgradeSecret")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}
	if err := checkSecret(in.Secret); err != nil {
		return nil, err
	}

	rec, obj, err := s.load(ctx, in.ObjectRef, credential.Type(in.Type))
	if err != nil {
		return nil, err
	}
	if rec == nil || rec.Revoked {
		return nil, errInvalidCredentials()
	}

	canUpgrade, err := rec.CanUpgrade()
	if err != nil {
		return nil, mapCoreError(ctx, "UpgradeSecret", rec, err)
	}

	from := rec.Algorithm
	if err := rec.UpgradeHasher(in.Secret, obj); err != nil {
		return nil, mapCoreError(ctx, "UpgradeSecret", rec, err)
	}
	if err := s.save(ctx, rec, credential.ActionUpgraded, false); err != nil {
		return nil, err
	}
	if canUpgrade {
		s.countUpgrade(ctx, from, rec.Algorithm)
	}

	return &UpgradeSecretOutput{Credential: entity.NewCredentialInfo(rec, false), Upgraded: canUpgrade}, nil
}
