package store

import (
	"context"
	"embed"
	"log/slog"

	"github.com/pkg/errors"
)

// The schema is idempotent (IF NOT EXISTS) and applied on every open, so a fresh
// in-memory ledger and an existing file both end up current.

//go:embed migration
var migrationFS embed.FS

// LatestSchemaFileName is the full schema for the driver.
const LatestSchemaFileName = "LATEST.sql"

// Migrate applies the latest schema for the given driver name.
func (s *Store) Migrate(ctx context.Context, driverName string) error {
	path := "migration/" + driverName + "/" + LatestSchemaFileName
	schema, err := migrationFS.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read schema %s", path)
	}
	if _, err := s.driver.GetDB().ExecContext(ctx, string(schema)); err != nil {
		return errors.Wrap(err, "failed to apply schema")
	}
	slog.Debug("ledger schema applied", slog.String("driver", driverName))
	return nil
}
