package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/credvault/internal/pkg/credential"
	"github.com/shandysiswandi/credvault/internal/pkg/goerror"
	"github.com/shandysiswandi/credvault/internal/vault/entity"
)

type (
	CredentialDetailInput struct {
		ObjectRef string `validate:"required,objectref"`
		Type      string `validate:"required,credtype"`
	}

	CredentialDetailOutput struct {
		Credential entity.CredentialInfo
	}
)

func (s *Usecase) CredentialDetail(ctx context.Context, in CredentialDetailInput) (*CredentialDetailOutput, error) {
	ctx, span := s.startSpan(ctx, "CredentialDetail")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	rec, _, err := s.load(ctx, in.ObjectRef, credential.Type(in.Type))
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, errNotFound()
	}

	return &CredentialDetailOutput{Credential: s.info(ctx, rec)}, nil
}

// info reports CanUpgrade as false when the stored hash cannot be resolved.
func (s *Usecase) info(ctx context.Context, rec *credential.Record) entity.CredentialInfo {
	canUpgrade, err := rec.CanUpgrade()
	if err != nil {
		slog.WarnContext(ctx, "cannot resolve stored hash", "object_ref", rec.ObjectRef, "type", rec.Type, "algorithm", rec.Algorithm, "error", err)
	}
	return entity.NewCredentialInfo(rec, canUpgrade)
}
