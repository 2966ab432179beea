package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema is applied idempotently at boot. registration_id uniqueness is
// enforced by the database, ids are drawn from registration_seq inside the INSERT.
var schema = []string{
	`CREATE SEQUENCE IF NOT EXISTS registration_seq START 1`,
	`CREATE TABLE IF NOT EXISTS events (
        custom_id TEXT PRIMARY KEY,
        title TEXT NOT NULL,
        category TEXT NOT NULL DEFAULT '',
        type TEXT NOT NULL CHECK (type IN ('Individual', 'Group')),
        team_size_min INT NOT NULL DEFAULT 1,
        team_size_max INT NOT NULL DEFAULT 1,
        department TEXT NOT NULL DEFAULT '',
        date TEXT NOT NULL DEFAULT '',
        external_date TEXT NOT NULL DEFAULT '',
        time TEXT NOT NULL DEFAULT '',
        location TEXT NOT NULL DEFAULT '',
        registration_open BOOLEAN NOT NULL DEFAULT TRUE,
        created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
        CHECK (team_size_min >= 1 AND team_size_min <= team_size_max)
    )`,
	`CREATE TABLE IF NOT EXISTS registrations (
        id UUID PRIMARY KEY,
        registration_id TEXT NOT NULL UNIQUE,
        event_id TEXT NOT NULL REFERENCES events(custom_id),
        is_garden_city_student BOOLEAN NOT NULL,
        leader JSONB NOT NULL,
        team_members JSONB NOT NULL DEFAULT '[]',
        status TEXT NOT NULL DEFAULT 'PENDING',
        qr_payload TEXT NOT NULL,
        final_event_date TEXT NOT NULL DEFAULT '',
        ticket_status TEXT NOT NULL DEFAULT 'PENDING',
        ticket_path TEXT,
        created_at TIMESTAMPTZ NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS idx_registrations_event ON registrations (event_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS entry_decisions (
        id UUID PRIMARY KEY,
        registration_id TEXT NOT NULL,
        reg_id TEXT NOT NULL,
        event_id TEXT NOT NULL,
        leader JSONB NOT NULL,
        team_members JSONB NOT NULL DEFAULT '[]',
        event_details JSONB NOT NULL,
        action TEXT NOT NULL CHECK (action IN ('ENTRY_ALLOWED', 'ENTRY_DENIED')),
        reason TEXT,
        operator_id TEXT,
        scanned_at TIMESTAMPTZ NOT NULL,
        logged_at TIMESTAMPTZ NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS idx_entry_decisions_registration ON entry_decisions (registration_id)`,
	`CREATE INDEX IF NOT EXISTS idx_entry_decisions_reg ON entry_decisions (reg_id)`,
	`CREATE INDEX IF NOT EXISTS idx_entry_decisions_event ON entry_decisions (event_id)`,
	`CREATE INDEX IF NOT EXISTS idx_entry_decisions_scanned ON entry_decisions (scanned_at DESC)`,
	`CREATE TABLE IF NOT EXISTS users (
        id UUID PRIMARY KEY,
        email TEXT NOT NULL UNIQUE,
        password_hash TEXT NOT NULL,
        full_name TEXT NOT NULL,
        role TEXT NOT NULL,
        active BOOLEAN NOT NULL DEFAULT TRUE,
        last_login TIMESTAMPTZ,
        created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
        id UUID PRIMARY KEY,
        user_id UUID NOT NULL REFERENCES users(id),
        token TEXT NOT NULL UNIQUE,
        expires_at TIMESTAMPTZ NOT NULL,
        created_at TIMESTAMPTZ NOT NULL,
        revoked BOOLEAN NOT NULL DEFAULT FALSE,
        revoked_at TIMESTAMPTZ,
        ip_address TEXT NOT NULL DEFAULT '',
        user_agent TEXT NOT NULL DEFAULT ''
    )`,
	`CREATE TABLE IF NOT EXISTS audit_logs (
        id UUID PRIMARY KEY,
        user_id TEXT,
        action TEXT NOT NULL,
        resource TEXT NOT NULL,
        resource_id TEXT,
        old_values JSONB,
        new_values JSONB,
        ip_address TEXT NOT NULL DEFAULT '',
        user_agent TEXT NOT NULL DEFAULT '',
        created_at TIMESTAMPTZ NOT NULL
    )`,
}

// Migrate applies the schema statements in order.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i, err)
		}
	}
	return nil
}
