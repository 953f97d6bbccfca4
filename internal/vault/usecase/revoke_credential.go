package usecase

import (
	"context"

	"github.com/shandysiswandi/credvault/internal/pkg/credential"
	"github.com/shandysiswandi/credvault/internal/pkg/goerror"
)

type (
	RevokeCredentialInput struct {
		ObjectRef string `validate:"required,objectref"`
		Type      string `validate:"required,credtype"`
	}
)

// RevokeCredential stops a credential from authenticating until a new secret is set.
// Revoking twice is a no-op.
func (s *Usecase) RevokeCredential(ctx context.Context, in RevokeCredentialInput) error {
	ctx, span := s.startSpan(ctx, "RevokeCredential")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	rec, _, err := s.load(ctx, in.ObjectRef, credential.Type(in.Type))
	if err != nil {
		return err
	}
	if rec == nil {
		return errNotFound()
	}
	if rec.Revoked {
		return nil
	}

	rec.Revoke()
	return s.save(ctx, rec, credential.ActionRevoked, false)
}
