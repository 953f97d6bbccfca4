package vault

import (
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/credvault/internal/pkg/clock"
	"github.com/shandysiswandi/credvault/internal/pkg/config"
	"github.com/shandysiswandi/credvault/internal/pkg/credential"
	"github.com/shandysiswandi/credvault/internal/pkg/goroutine"
	"github.com/shandysiswandi/credvault/internal/pkg/hash"
	"github.com/shandysiswandi/credvault/internal/pkg/idempotency"
	"github.com/shandysiswandi/credvault/internal/pkg/instrument"
	"github.com/shandysiswandi/credvault/internal/pkg/messaging"
	"github.com/shandysiswandi/credvault/internal/pkg/router"
	"github.com/shandysiswandi/credvault/internal/pkg/uid"
	"github.com/shandysiswandi/credvault/internal/pkg/validator"
	"github.com/shandysiswandi/credvault/internal/vault/inbound"
	"github.com/shandysiswandi/credvault/internal/vault/outbound/db"
	"github.com/shandysiswandi/credvault/internal/vault/outbound/mq"
	"github.com/shandysiswandi/credvault/internal/vault/outbound/sqlite"
	"github.com/shandysiswandi/credvault/internal/vault/usecase"
)

var errStoreAmbiguous = errors.New("vault: set exactly one of DBConn or SQLite")

// Dependency lists what the vault module needs. Exactly one store is set.
// Idempotency is optional; without it Idempotency-Key headers are ignored.
type Dependency struct {
	DBConn      *pgxpool.Pool              `validate:"required_without=SQLite"`
	SQLite      *sqlite.DB                 `validate:"required_without=DBConn"`
	Router      *router.Router             `validate:"required"`
	Messaging   messaging.Publisher        `validate:"required"`
	Registry    *hash.Registry             `validate:"required"`
	Goroutine   *goroutine.Manager         `validate:"required"`
	Config      config.Config              `validate:"required"`
	Instrument  instrument.Instrumentation `validate:"required"`
	UID         uid.NumberID               `validate:"required"`
	OID         uid.StringID               `validate:"required"`
	Clock       clock.Clocker              `validate:"required"`
	Validator   validator.Validator        `validate:"required"`
	Idempotency idempotency.Idempotency
	BeforeSave  []credential.Hook
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}
	if dep.DBConn != nil && dep.SQLite != nil {
		return errStoreAmbiguous
	}

	ucDep := usecase.Dependency{
		RepoMessaging: mq.NewMessaging(dep.Messaging, dep.Instrument, dep.Config.GetString("modules.vault.audit_topic")),
		Registry:      dep.Registry,
		BeforeSave:    dep.BeforeSave,
		Idempotency:   dep.Idempotency,
		Validator:     dep.Validator,
		Config:        dep.Config,
		UID:           dep.UID,
		OID:           dep.OID,
		Clock:         dep.Clock,
		Instrument:    dep.Instrument,
		Goroutine:     dep.Goroutine,
	}
	if dep.DBConn != nil {
		ucDep.RepoDB = db.NewDB(dep.DBConn, dep.Instrument)
	} else {
		ucDep.RepoDB = dep.SQLite
	}

	uc := usecase.New(ucDep)

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}
