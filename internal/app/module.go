package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/credvault/internal/vault"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.vault.enabled") {
		if err := vault.New(vault.Dependency{
			DBConn:      a.dbConn,
			SQLite:      a.sqliteDB,
			Router:      a.router,
			Messaging:   a.messaging,
			Registry:    a.registry,
			Goroutine:   a.goroutine,
			Config:      a.config,
			Instrument:  a.ins,
			UID:         a.uid,
			OID:         a.oid,
			Clock:       a.clock,
			Validator:   a.validator,
			Idempotency: a.idemp,
		}); err != nil {
			slog.Error("failed to init module vault", "error", err)
			os.Exit(1)
		}
	}
}
