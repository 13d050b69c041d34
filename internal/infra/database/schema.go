package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaStatements bootstraps the full schema. Every statement is
// idempotent so InitSchema can run on every startup. The unique index
// on (control_point_id, year, period_number) is the idempotency key
// for schedule generation and the sole concurrency guard for it.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS control_categories (
		id          BIGSERIAL PRIMARY KEY,
		project_id  BIGINT NOT NULL,
		name        VARCHAR(255) NOT NULL,
		code        VARCHAR(5) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		position    INTEGER NOT NULL DEFAULT 1,
		active      BOOLEAN NOT NULL DEFAULT TRUE,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT control_categories_code_unique UNIQUE (project_id, code)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_control_categories_project ON control_categories (project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_control_categories_active ON control_categories (active)`,

	`CREATE TABLE IF NOT EXISTS control_points (
		id             BIGSERIAL PRIMARY KEY,
		category_id    BIGINT NOT NULL REFERENCES control_categories (id) ON DELETE CASCADE,
		control_id     VARCHAR(30) NOT NULL,
		name           VARCHAR(255) NOT NULL,
		description    TEXT NOT NULL DEFAULT '',
		frequency      VARCHAR(20) NOT NULL DEFAULT 'monthly',
		position       INTEGER NOT NULL DEFAULT 1,
		active         BOOLEAN NOT NULL DEFAULT TRUE,
		tracker_id     BIGINT,
		priority_id    BIGINT,
		assigned_to_id BIGINT,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT control_points_control_id_unique UNIQUE (category_id, control_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_control_points_frequency ON control_points (frequency)`,
	`CREATE INDEX IF NOT EXISTS idx_control_points_active ON control_points (active)`,

	`CREATE TABLE IF NOT EXISTS schedules (
		id               BIGSERIAL PRIMARY KEY,
		control_point_id BIGINT NOT NULL REFERENCES control_points (id) ON DELETE CASCADE,
		year             INTEGER NOT NULL,
		period_number    INTEGER NOT NULL,
		scheduled_date   DATE NOT NULL,
		due_date         DATE,
		issue_id         BIGINT,
		status           VARCHAR(20) NOT NULL DEFAULT 'pending',
		generated_at     TIMESTAMPTZ,
		completed_at     TIMESTAMPTZ,
		notes            TEXT NOT NULL DEFAULT '',
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT schedules_unique_period UNIQUE (control_point_id, year, period_number)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_schedules_scheduled_date ON schedules (scheduled_date)`,
	`CREATE INDEX IF NOT EXISTS idx_schedules_due_date ON schedules (due_date)`,
	`CREATE INDEX IF NOT EXISTS idx_schedules_status ON schedules (status)`,
	`CREATE INDEX IF NOT EXISTS idx_schedules_year_status ON schedules (year, status)`,
	`CREATE INDEX IF NOT EXISTS idx_schedules_issue ON schedules (issue_id)`,

	`CREATE TABLE IF NOT EXISTS project_settings (
		id                      BIGSERIAL PRIMARY KEY,
		project_id              BIGINT NOT NULL,
		default_tracker_id      BIGINT,
		default_priority_id     BIGINT,
		default_status_id       BIGINT,
		subject_template        VARCHAR(255) NOT NULL DEFAULT '',
		description_template    TEXT NOT NULL DEFAULT '',
		advance_days            INTEGER NOT NULL DEFAULT 7,
		enable_auto_generation  BOOLEAN NOT NULL DEFAULT TRUE,
		weekly_start_day        INTEGER NOT NULL DEFAULT 1,
		monthly_start_day       INTEGER NOT NULL DEFAULT 1,
		quarterly_start_month   INTEGER NOT NULL DEFAULT 1,
		six_monthly_start_month INTEGER NOT NULL DEFAULT 1,
		yearly_start_month      INTEGER NOT NULL DEFAULT 1,
		created_at              TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at              TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT project_settings_project_unique UNIQUE (project_id)
	)`,
}

// InitSchema creates the schema objects that do not exist yet.
func InitSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema initialization failed: %w", err)
		}
	}
	return nil
}
