package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/credvault/internal/pkg/clock"
	"github.com/shandysiswandi/credvault/internal/pkg/config"
	"github.com/shandysiswandi/credvault/internal/pkg/credential"
	"github.com/shandysiswandi/credvault/internal/pkg/goerror"
	"github.com/shandysiswandi/credvault/internal/pkg/goroutine"
	"github.com/shandysiswandi/credvault/internal/pkg/hash"
	"github.com/shandysiswandi/credvault/internal/pkg/idempotency"
	"github.com/shandysiswandi/credvault/internal/pkg/instrument"
	"github.com/shandysiswandi/credvault/internal/pkg/jwt"
	"github.com/shandysiswandi/credvault/internal/pkg/uid"
	"github.com/shandysiswandi/credvault/internal/pkg/validator"
	"github.com/shandysiswandi/credvault/internal/vault/entity"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// systemActor is recorded when a change is not made on behalf of a token subject.
const systemActor = "system"

type repoDB interface {
	GetCredential(ctx context.Context, ref string, typ credential.Type) (*credential.Record, error)
	ListCredentialsByObject(ctx context.Context, ref string) ([]credential.Record, error)

	CreateCredential(ctx context.Context, rec *credential.Record) error
	// UpdateCredential writes salt, hash, algorithm and revoked together when the
	// row still has expectVersion, otherwise goerror.ErrConflict.
	UpdateCredential(ctx context.Context, rec *credential.Record, expectVersion int64) error
	DeleteCredential(ctx context.Context, ref string, typ credential.Type) error
}

type repoMessaging interface {
	PublishCredentialChange(ctx context.Context, msg entity.ChangeMessage) error
}

type Usecase struct {
	repoDB        repoDB
	repoMessaging repoMessaging
	registry      *hash.Registry
	hooks         credential.Hooks
	idemp         idempotency.Idempotency
	validator     validator.Validator
	cfg           config.Config
	uid           uid.NumberID
	oid           uid.StringID
	clock         clock.Clocker
	ins           instrument.Instrumentation
	goroutine     *goroutine.Manager

	verifyCounter  metric.Int64Counter
	upgradeCounter metric.Int64Counter
}

type Dependency struct {
	RepoDB        repoDB
	RepoMessaging repoMessaging
	Registry      *hash.Registry
	BeforeSave    []credential.Hook
	Idempotency   idempotency.Idempotency
	Validator     validator.Validator
	Config        config.Config
	UID           uid.NumberID
	OID           uid.StringID
	Clock         clock.Clocker
	Instrument    instrument.Instrumentation
	Goroutine     *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	s := &Usecase{
		repoDB:        dep.RepoDB,
		repoMessaging: dep.RepoMessaging,
		registry:      dep.Registry,
		idemp:         dep.Idempotency,
		validator:     dep.Validator,
		cfg:           dep.Config,
		uid:           dep.UID,
		oid:           dep.OID,
		clock:         dep.Clock,
		ins:           dep.Instrument,
		goroutine:     dep.Goroutine,
	}

	s.hooks = credential.Hooks{
		BeforeSave: dep.BeforeSave,
		AfterSave:  []credential.Hook{s.publishChange},
	}

	meter := s.ins.Meter("vault.usecase")
	var err error
	if s.verifyCounter, err = meter.Int64Counter("vault.credential.verify",
		metric.WithDescription("Secret verifications by outcome")); err != nil {
		slog.Error("failed to create verify counter", "error", err)
	}
	if s.upgradeCounter, err = meter.Int64Counter("vault.credential.upgrade",
		metric.WithDescription("Stored hashes moved to a stronger hasher")); err != nil {
		slog.Error("failed to create upgrade counter", "error", err)
	}

	return s
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("vault.usecase").Start(ctx, name)
}

func actorFrom(ctx context.Context) string {
	if clm := jwt.GetAuth(ctx); clm != nil && clm.Actor() != "" {
		return clm.Actor()
	}
	return systemActor
}

// errInvalidCredentials is the single answer for every failed verification,
// so callers cannot tell a wrong secret from a missing or revoked credential.
func errInvalidCredentials() error {
	return goerror.NewBusiness("invalid credentials", goerror.CodeUnauthorized)
}

func errNotFound() error {
	return goerror.NewBusiness("credential not found", goerror.CodeNotFound)
}

// load fetches and attaches a credential. A nil record with a nil error
// means it does not exist.
func (s *Usecase) load(ctx context.Context, ref string, typ credential.Type) (*credential.Record, credential.Object, error) {
	obj, err := entity.NewObject(typ, ref)
	if err != nil {
		return nil, nil, goerror.NewInvalidInput(nil, "type", err.Error())
	}

	rec, err := s.repoDB.GetCredential(ctx, ref, typ)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, obj, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get credential", "object_ref", ref, "type", typ, "error", err)
		return nil, nil, goerror.NewServer(err)
	}

	return rec.Attach(s.registry, obj), obj, nil
}

// mapCoreError translates credential and hash errors for transports.
func mapCoreError(ctx context.Context, op string, rec *credential.Record, err error) error {
	switch {
	case errors.Is(err, credential.ErrEmptySecret):
		return goerror.NewInvalidInput(nil, "secret", "secret is required")
	case errors.Is(err, credential.ErrUpgradeAuthenticationMismatch), errors.Is(err, credential.ErrNoSecret):
		return errInvalidCredentials()
	case errors.Is(err, hash.ErrHasherUnavailable):
		slog.ErrorContext(ctx, "no usable hasher", "op", op, "object_ref", rec.ObjectRef, "type", rec.Type, "error", err)
		return goerror.WrapBusiness(err, "hasher unavailable", goerror.CodeUnavailable)
	default:
		slog.ErrorContext(ctx, "credential operation failed", "op", op,
			"object_ref", rec.ObjectRef, "type", rec.Type, "algorithm", rec.Algorithm, "error", err)
		return goerror.NewServer(err)
	}
}

// save persists rec and runs the hooks. created selects insert over a
// versioned update.
func (s *Usecase) save(ctx context.Context, rec *credential.Record, action credential.Action, created bool) error {
	now := s.clock.Now()
	ev := rec.Event(action, actorFrom(ctx), now)

	if err := s.hooks.RunBeforeSave(ctx, ev); err != nil {
		slog.WarnContext(ctx, "credential change rejected by hook", "object_ref", rec.ObjectRef, "action", action, "error", err)
		return goerror.WrapBusiness(err, "credential change rejected", goerror.CodeForbidden)
	}

	if created {
		rec.ID = s.uid.Generate()
		rec.Version = 1
		rec.CreatedAt = now
		rec.UpdatedAt = now
		if err := s.repoDB.CreateCredential(ctx, rec); err != nil {
			return s.mapSaveError(ctx, rec, err)
		}
	} else {
		expect := rec.Version
		rec.Version++
		rec.UpdatedAt = now
		if err := s.repoDB.UpdateCredential(ctx, rec, expect); err != nil {
			return s.mapSaveError(ctx, rec, err)
		}
	}

	ev.RecordID = rec.ID
	if err := s.hooks.RunAfterSave(ctx, ev); err != nil {
		slog.WarnContext(ctx, "credential after-save hook failed", "object_ref", rec.ObjectRef, "action", action, "error", err)
	}

	return nil
}

func (s *Usecase) mapSaveError(ctx context.Context, rec *credential.Record, err error) error {
	if errors.Is(err, goerror.ErrConflict) {
		slog.WarnContext(ctx, "credential modified concurrently", "object_ref", rec.ObjectRef, "type", rec.Type)
		return goerror.NewBusiness("credential was modified concurrently, retry", goerror.CodeConflict)
	}

	slog.ErrorContext(ctx, "failed to repo save credential", "object_ref", rec.ObjectRef, "type", rec.Type, "error", err)
	return goerror.NewServer(err)
}

func (s *Usecase) rehashOnVerify() bool {
	return s.cfg == nil || !s.cfg.IsSet("modules.vault.rehash_on_verify") || s.cfg.GetBool("modules.vault.rehash_on_verify")
}
