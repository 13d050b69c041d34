package database

import (
	"context"
	"database/sql"
	"fmt"

	"security_control_scheduler/internal/domain/settings"
)

// ErrSettingsNotFound is returned when a settings row vanishes between
// the lazy create and the read, which should not happen in practice.
var ErrSettingsNotFound = fmt.Errorf("project settings not found")

type PostgresSettingsRepository struct {
	db *sql.DB
}

func NewPostgresSettingsRepository(db *sql.DB) *PostgresSettingsRepository {
	return &PostgresSettingsRepository{db: db}
}

const settingsColumns = `id, project_id, default_tracker_id, default_priority_id, default_status_id, subject_template, description_template, advance_days, enable_auto_generation, weekly_start_day, monthly_start_day, quarterly_start_month, six_monthly_start_month, yearly_start_month, created_at, updated_at`

// ForProject returns the project's settings, lazily creating the record
// with defaults on first access. The unique constraint on project_id
// plus ON CONFLICT DO NOTHING keeps concurrent first accesses down to a
// single stored row.
func (r *PostgresSettingsRepository) ForProject(ctx context.Context, projectID int64) (*settings.Settings, error) {
	s, err := r.get(ctx, projectID)
	if err == nil {
		return s, nil
	}
	if err != ErrSettingsNotFound {
		return nil, err
	}

	def := settings.NewDefaults(projectID)
	insert := `INSERT INTO project_settings
              (project_id, subject_template, description_template, advance_days, enable_auto_generation,
               weekly_start_day, monthly_start_day, quarterly_start_month, six_monthly_start_month, yearly_start_month)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
              ON CONFLICT ON CONSTRAINT project_settings_project_unique DO NOTHING`
	if _, err := r.db.ExecContext(ctx, insert,
		def.ProjectID, def.SubjectTemplate, def.DescriptionTemplate, def.AdvanceDays, def.EnableAutoGeneration,
		def.WeeklyStartDay, def.MonthlyStartDay, def.QuarterlyStartMonth, def.SixMonthlyStartMonth, def.YearlyStartMonth,
	); err != nil {
		return nil, fmt.Errorf("error creating default settings: %w", err)
	}

	return r.get(ctx, projectID)
}

func (r *PostgresSettingsRepository) get(ctx context.Context, projectID int64) (*settings.Settings, error) {
	query := `SELECT ` + settingsColumns + ` FROM project_settings WHERE project_id = $1`
	s := settings.Settings{}
	var trackerID, priorityID, statusID sql.NullInt64
	err := r.db.QueryRowContext(ctx, query, projectID).Scan(
		&s.ID, &s.ProjectID, &trackerID, &priorityID, &statusID,
		&s.SubjectTemplate, &s.DescriptionTemplate, &s.AdvanceDays, &s.EnableAutoGeneration,
		&s.WeeklyStartDay, &s.MonthlyStartDay, &s.QuarterlyStartMonth, &s.SixMonthlyStartMonth, &s.YearlyStartMonth,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSettingsNotFound
		}
		return nil, fmt.Errorf("error getting settings: %w", err)
	}
	s.DefaultTrackerID = trackerID.Int64
	s.DefaultPriorityID = priorityID.Int64
	s.DefaultStatusID = statusID.Int64
	return &s, nil
}

func (r *PostgresSettingsRepository) Update(ctx context.Context, s *settings.Settings) error {
	query := `UPDATE project_settings
              SET default_tracker_id = $1, default_priority_id = $2, default_status_id = $3,
                  subject_template = $4, description_template = $5, advance_days = $6,
                  enable_auto_generation = $7, weekly_start_day = $8, monthly_start_day = $9,
                  quarterly_start_month = $10, six_monthly_start_month = $11, yearly_start_month = $12,
                  updated_at = NOW()
              WHERE id = $13
              RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query,
		nullID(s.DefaultTrackerID), nullID(s.DefaultPriorityID), nullID(s.DefaultStatusID),
		s.SubjectTemplate, s.DescriptionTemplate, s.AdvanceDays,
		s.EnableAutoGeneration, s.WeeklyStartDay, s.MonthlyStartDay,
		s.QuarterlyStartMonth, s.SixMonthlyStartMonth, s.YearlyStartMonth,
		s.ID,
	).Scan(&s.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrSettingsNotFound
		}
		return fmt.Errorf("error updating settings: %w", err)
	}
	return nil
}
