package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/credvault/internal/pkg/goerror"
	"github.com/shandysiswandi/credvault/internal/vault/entity"
)

type (
	ObjectCredentialsInput struct {
		ObjectRef string `validate:"required,objectref"`
	}

	ObjectCredentialsOutput struct {
		Credentials []entity.CredentialInfo
	}
)

// ObjectCredentials lists the metadata of every credential an object owns.
func (s *Usecase) ObjectCredentials(ctx context.Context, in ObjectCredentialsInput) (*ObjectCredentialsOutput, error) {
	ctx, span := s.startSpan(ctx, "ObjectCredentials")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	recs, err := s.repoDB.ListCredentialsByObject(ctx, in.ObjectRef)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list credentials", "object_ref", in.ObjectRef, "error", err)
		return nil, goerror.NewServer(err)
	}

	out := make([]entity.CredentialInfo, 0, len(recs))
	for i := range recs {
		rec := &recs[i]
		obj, err := entity.NewObject(rec.Type, rec.ObjectRef)
		if err != nil {
			slog.WarnContext(ctx, "skipping credential of unknown type", "object_ref", rec.ObjectRef, "type", rec.Type)
			continue
		}
		out = append(out, s.info(ctx, rec.Attach(s.registry, obj)))
	}

	return &ObjectCredentialsOutput{Credentials: out}, nil
}
