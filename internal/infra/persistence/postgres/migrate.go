package postgres

import (
	"context"
	"database/sql"

	"accounts/internal/errors"
	"accounts/internal/infra/persistence/postgres/migrations"

	"github.com/pressly/goose/v3"
)

const migrationDialect = "postgres"

// Migration commands accepted by Migrate.
const (
	MigrateUp     = "up"
	MigrateDown   = "down"
	MigrateStatus = "status"
)

// gooseRun is a seam for testing goose.RunContext.
var gooseRun = func(ctx context.Context, command string, db *sql.DB, dir string, args ...string) error {
	return goose.RunContext(ctx, command, db, dir, args...)
}

// Migrate applies the embedded schema migrations. command is one of MigrateUp,
// MigrateDown or MigrateStatus.
func Migrate(ctx context.Context, db *sql.DB, command string) error {
	switch command {
	case MigrateUp, MigrateDown, MigrateStatus:
	default:
		return errors.Errorf("unsupported migration command %q", command)
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(migrationDialect); err != nil {
		return errors.Wrap(err, "failed to set migration dialect")
	}

	if err := gooseRun(ctx, command, db, "."); err != nil {
		return errors.Wrapf(err, "failed to run migration %s", command)
	}

	return nil
}
