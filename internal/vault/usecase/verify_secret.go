package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/credvault/internal/pkg/credential"
	"github.com/shandysiswandi/credvault/internal/pkg/goerror"
	"github.com/shandysiswandi/credvault/internal/pkg/secret"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type (
	VerifySecretInput struct {
		ObjectRef string `validate:"required,objectref"`
		Type      string `validate:"required,credtype"`
		Secret    secret.Envelope
	}

	VerifySecretOutput struct {
		Algorithm string
		Upgraded  bool
	}
)

// VerifySecret is the authentication boundary. Missing, revoked and
// mismatching credentials all fail with the same error. On success the
// stored hash is moved to the best hasher when rehash_on_verify is on.
func (s *Usecase) VerifySecret(ctx context.Context, in VerifySecretInput) (*VerifySecretOutput, error) {
	ctx, span := s.startSpan(ctx, "VerifySecret")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	out, outcome, err := s.verifySecret(ctx, in)
	if s.verifyCounter != nil {
		s.verifyCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("type", in.Type),
			attribute.String("outcome", outcome),
		))
	}
	return out, err
}

func (s *Usecase) verifySecret(ctx context.Context, in VerifySecretInput) (*VerifySecretOutput, string, error) {
	if in.Secret.IsEmpty() {
		return nil, "empty", errInvalidCredentials()
	}

	rec, obj, err := s.load(ctx, in.ObjectRef, credential.Type(in.Type))
	if err != nil {
		return nil, "error", err
	}
	if rec == nil {
		s.hashDecoy(in.Secret, obj, credential.Type(in.Type))
		slog.WarnContext(ctx, "verify on missing credential", "object_ref", in.ObjectRef, "type", in.Type)
		return nil, "missing", errInvalidCredentials()
	}

	ok, err := rec.CompareSecret(in.Secret, obj)
	if err != nil {
		return nil, "error", mapCoreError(ctx, "VerifySecret", rec, err)
	}
	if !ok {
		slog.WarnContext(ctx, "secret mismatch", "object_ref", in.ObjectRef, "type", in.Type)
		return nil, "mismatch", errInvalidCredentials()
	}
	if rec.Revoked {
		slog.WarnContext(ctx, "verify on revoked credential", "object_ref", in.ObjectRef, "type", in.Type)
		return nil, "revoked", errInvalidCredentials()
	}

	out := &VerifySecretOutput{Algorithm: rec.Algorithm}
	if !s.rehashOnVerify() {
		return out, "ok", nil
	}

	canUpgrade, err := rec.CanUpgrade()
	if err != nil || !canUpgrade {
		return out, "ok", nil
	}

	from := rec.Algorithm
	if err := rec.UpgradeHasher(in.Secret, obj); err != nil {
		slog.WarnContext(ctx, "rehash on verify failed", "object_ref", in.ObjectRef, "from", from, "error", err)
		return out, "ok", nil
	}
	if err := s.save(ctx, rec, credential.ActionUpgraded, false); err != nil {
		// The secret matched; a lost upgrade is retried on the next verify.
		slog.WarnContext(ctx, "failed to save upgraded hash", "object_ref", in.ObjectRef, "error", err)
		return out, "ok", nil
	}

	s.countUpgrade(ctx, from, rec.Algorithm)
	return &VerifySecretOutput{Algorithm: rec.Algorithm, Upgraded: true}, "ok", nil
}

// hashDecoy digests and hashes sec on a throwaway record with the best hasher,
// so a missing credential costs about as much as a mismatch.
func (s *Usecase) hashDecoy(sec secret.Envelope, obj credential.Object, typ credential.Type) {
	_ = credential.New(s.registry, obj, typ).SetSecret(sec, obj)
}

func (s *Usecase) countUpgrade(ctx context.Context, from, to string) {
	if s.upgradeCounter != nil {
		s.upgradeCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("from", from),
			attribute.String("to", to),
		))
	}
}
