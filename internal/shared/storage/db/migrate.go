package db

import (
	"context"
	"database/sql"
	"embed"
	"sync"
	"time"

	"github.com/pressly/goose/v3"

	"resume-analyzer/internal/shared/telemetry"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// goose keeps its base FS and dialect in package globals.
var gooseMu sync.Mutex

// RunMigrations applies embedded SQL migrations via goose. If database is nil, it's a no-op.
func RunMigrations(ctx context.Context, database *sql.DB) error {
	if database == nil {
		return nil
	}
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrationFiles)
	defer goose.SetBaseFS(nil)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	start := time.Now()
	if err := goose.UpContext(ctx, database, "migrations"); err != nil {
		return err
	}
	telemetry.Info("db.migrated", map[string]any{"duration_ms": time.Since(start).Milliseconds()})
	return nil
}
