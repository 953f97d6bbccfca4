package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/credvault/internal/pkg/credential"
	"github.com/shandysiswandi/credvault/internal/pkg/goerror"
	"github.com/shandysiswandi/credvault/internal/pkg/idempotency"
	"github.com/shandysiswandi/credvault/internal/pkg/secret"
	"github.com/shandysiswandi/credvault/internal/pkg/validator"
	"github.com/shandysiswandi/credvault/internal/vault/entity"
)

type (
	SetSecretInput struct {
		ObjectRef string `validate:"required,objectref"`
		Type      string `validate:"required,credtype"`
		Secret    secret.Envelope
		// Hasher pins the algorithm; empty selects the registry's best.
		Hasher         string `validate:"omitempty,algorithm"`
		IdempotencyKey string `validate:"omitempty,max=128"`
	}

	SetSecretOutput struct {
		Credential entity.CredentialInfo
		Created    bool
		Replayed   bool
	}
)

// SetSecret creates the credential or replaces its secret under a fresh salt.
// A revoked credential becomes active again: setting a secret is the rotation
// that revocation asks for.
func (s *Usecase) SetSecret(ctx context.Context, in SetSecretInput) (*SetSecretOutput, error) {
	ctx, span := s.startSpan(ctx, "SetSecret")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}
	if err := checkSecret(in.Secret); err != nil {
		return nil, err
	}

	typ := credential.Type(in.Type)

	var out *SetSecretOutput
	run := func(ctx context.Context) error {
		var err error
		out, err = s.setSecret(ctx, in, typ)
		return err
	}

	if in.IdempotencyKey == "" || s.idemp == nil {
		if err := run(ctx); err != nil {
			return nil, err
		}
		return out, nil
	}

	key := "vault:set:" + in.ObjectRef + ":" + in.Type + ":" + in.IdempotencyKey
	err := s.idemp.Exec(ctx, key, run)
	switch {
	case errors.Is(err, idempotency.ErrAlreadyCompleted):
		return s.replaySetSecret(ctx, in.ObjectRef, typ)
	case errors.Is(err, idempotency.ErrAlreadyInProgress):
		return nil, goerror.NewBusiness("request with this idempotency key is in progress", goerror.CodeConflict)
	case err != nil:
		var gerr *goerror.Error
		if errors.As(err, &gerr) {
			return nil, err
		}
		slog.ErrorContext(ctx, "failed to exec idempotent set secret", "object_ref", in.ObjectRef, "error", err)
		return nil, goerror.NewServer(err)
	}

	return out, nil
}

func (s *Usecase) setSecret(ctx context.Context, in SetSecretInput, typ credential.Type) (*SetSecretOutput, error) {
	rec, obj, err := s.load(ctx, in.ObjectRef, typ)
	if err != nil {
		return nil, err
	}

	created := rec == nil
	if created {
		rec = credential.New(s.registry, obj, typ)
	}

	if in.Hasher != "" {
		h, err := s.registry.Get(in.Hasher)
		if err != nil {
			return nil, goerror.NewInvalidInput(nil, "hasher", "unknown hasher "+in.Hasher)
		}
		err = rec.SetSecretWithHasher(in.Secret, obj, h)
		if err != nil {
			return nil, mapCoreError(ctx, "SetSecret", rec, err)
		}
	} else if err := rec.SetSecret(in.Secret, obj); err != nil {
		return nil, mapCoreError(ctx, "SetSecret", rec, err)
	}
	rec.Revoked = false

	if err := s.save(ctx, rec, credential.ActionSet, created); err != nil {
		return nil, err
	}

	canUpgrade, _ := rec.CanUpgrade()
	return &SetSecretOutput{Credential: entity.NewCredentialInfo(rec, canUpgrade), Created: created}, nil
}

func (s *Usecase) replaySetSecret(ctx context.Context, ref string, typ credential.Type) (*SetSecretOutput, error) {
	rec, _, err := s.load(ctx, ref, typ)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, errNotFound()
	}

	canUpgrade, _ := rec.CanUpgrade()
	return &SetSecretOutput{Credential: entity.NewCredentialInfo(rec, canUpgrade), Replayed: true}, nil
}

func checkSecret(sec secret.Envelope) error {
	if sec.IsEmpty() {
		return goerror.NewInvalidInput(nil, "secret", "secret is required")
	}
	if sec.Len() > validator.MaxSecretBytes {
		return goerror.NewInvalidInput(nil, "secret", "secret is too long")
	}
	return nil
}
