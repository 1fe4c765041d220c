package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_documents",
		SQL: `CREATE TABLE IF NOT EXISTS documents (
  id                UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  owner_id          TEXT        NOT NULL CHECK (owner_id <> ''),
  display_name      TEXT        NOT NULL CHECK (display_name <> ''),
  size_bytes        BIGINT      NOT NULL CHECK (size_bytes > 0),
  mime_type         TEXT        NOT NULL CHECK (mime_type <> ''),
  storage_reference TEXT,
  location_url      TEXT,
  local_path        TEXT,
  folder_name       TEXT,
  last_modified_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
  is_metadata_only  BOOLEAN     NOT NULL DEFAULT TRUE,
  sync_location     TEXT        NOT NULL DEFAULT 'pc' CHECK (sync_location IN ('pc', 'website', 'both')),
  created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
  CONSTRAINT documents_reference_matches_state CHECK (is_metadata_only = (storage_reference IS NULL)),
  CONSTRAINT documents_pc_is_metadata_only CHECK (is_metadata_only OR sync_location <> 'pc')
);`,
	},
	{
		Name: "create_unique_index_documents_storage_reference",
		SQL: `CREATE UNIQUE INDEX IF NOT EXISTS uq_documents_storage_reference
  ON documents (storage_reference) WHERE storage_reference IS NOT NULL;`,
	},
	{
		Name: "create_index_documents_owner_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_owner_created_at ON documents (owner_id, created_at DESC);`,
	},
	{
		Name: "create_index_documents_owner_metadata_only",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_owner_metadata_only ON documents (owner_id, is_metadata_only);`,
	},
}

// EnsureMigrated checks if the 'documents' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *zap.Logger, dbHost string) error {
	start := time.Now()
	log = log.With(zap.String("component", "database"), zap.String("db_host", dbHost))

	log.Info("db_migration_check", zap.String("status", "starting"))

	var exists bool
	err := db.QueryRowContext(ctx, "SELECT to_regclass('public.documents') IS NOT NULL").Scan(&exists)
	if err != nil {
		log.Error("db_migration_failed",
			zap.String("status", "error"),
			zap.Error(err),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("db_migration_skip",
			zap.String("status", "success"),
			zap.String("reason", "schema already exists"),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil
	}

	log.Info("db_migration_start", zap.String("status", "in_progress"))

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				zap.String("status", "error"),
				zap.String("migration_step", step.Name),
				zap.Error(err),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Info("db_migration_step",
			zap.String("status", "success"),
			zap.String("migration_step", step.Name),
			zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
		)
	}

	log.Info("db_migration_success",
		zap.String("status", "success"),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}
