package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/credvault/internal/pkg/credential"
	"github.com/shandysiswandi/credvault/internal/pkg/goerror"
)

type (
	DeleteCredentialInput struct {
		ObjectRef string `validate:"required,objectref"`
		Type      string `validate:"required,credtype"`
	}
)

// DeleteCredential removes the credential row, revoked or not.
func (s *Usecase) DeleteCredential(ctx context.Context, in DeleteCredentialInput) error {
	ctx, span := s.startSpan(ctx, "DeleteCredential")
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

	ev := rec.Event(credential.ActionDeleted, actorFrom(ctx), s.clock.Now())
	if err := s.hooks.RunBeforeSave(ctx, ev); err != nil {
		slog.WarnContext(ctx, "credential delete rejected by hook", "object_ref", in.ObjectRef, "error", err)
		return goerror.WrapBusiness(err, "credential change rejected", goerror.CodeForbidden)
	}

	err = s.repoDB.DeleteCredential(ctx, in.ObjectRef, rec.Type)
	if errors.Is(err, goerror.ErrNotFound) {
		return errNotFound()
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo delete credential", "object_ref", in.ObjectRef, "type", in.Type, "error", err)
		return goerror.NewServer(err)
	}

	if err := s.hooks.RunAfterSave(ctx, ev); err != nil {
		slog.WarnContext(ctx, "credential after-delete hook failed", "object_ref", in.ObjectRef, "error", err)
	}

	return nil
}
