package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'incident_type') THEN
			CREATE TYPE incident_type AS ENUM ('DOUBLE_ENTRY_ATTEMPT', 'NO_ENTRY_EXIT_ATTEMPT', 'UNAUTHORIZED_EXIT');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS parking_entries (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		entry_time TIMESTAMPTZ NOT NULL,
		exit_time TIMESTAMPTZ,
		plate VARCHAR(16) NOT NULL,
		due_payment BIGINT,
		payment_status BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_parking_entries_plate ON parking_entries (plate);`,
	`CREATE INDEX IF NOT EXISTS idx_parking_entries_entry_time ON parking_entries (entry_time);`,
	`CREATE INDEX IF NOT EXISTS idx_parking_entries_plate_unpaid ON parking_entries (plate) WHERE payment_status = FALSE;`,
	// Hardening option: at most one active entry per plate, enforced by the
	// database instead of the admission check. The single-lane deployment relies
	// on physical serialization, so this stays off by default.
	// `CREATE UNIQUE INDEX IF NOT EXISTS uq_parking_entries_active_plate ON parking_entries (plate) WHERE exit_time IS NULL;`,
	`CREATE TABLE IF NOT EXISTS security_incidents (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		plate VARCHAR(16) NOT NULL,
		incident_type incident_type NOT NULL,
		incident_time TIMESTAMPTZ NOT NULL,
		description TEXT NOT NULL,
		resolved BOOLEAN NOT NULL DEFAULT FALSE,
		resolution_notes TEXT,
		additional_info TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_security_incidents_plate ON security_incidents (plate);`,
	`CREATE INDEX IF NOT EXISTS idx_security_incidents_incident_time ON security_incidents (incident_time);`,
	`CREATE INDEX IF NOT EXISTS idx_security_incidents_resolved ON security_incidents (resolved);`,
	`CREATE OR REPLACE FUNCTION set_updated_at()
	RETURNS TRIGGER AS $$
	BEGIN
		NEW.updated_at = NOW();
		RETURN NEW;
	END;
	$$ LANGUAGE plpgsql;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_parking_entries_updated_at') THEN
			CREATE TRIGGER trg_parking_entries_updated_at
				BEFORE UPDATE ON parking_entries
				FOR EACH ROW
				EXECUTE PROCEDURE set_updated_at();
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_security_incidents_updated_at') THEN
			CREATE TRIGGER trg_security_incidents_updated_at
				BEFORE UPDATE ON security_incidents
				FOR EACH ROW
				EXECUTE PROCEDURE set_updated_at();
		END IF;
	END
	$$;`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
