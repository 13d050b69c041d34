package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"security_control_scheduler/internal/domain/schedule"
)

// Custom errors specific to the schedule repository.
var (
	ErrScheduleNotFound  = fmt.Errorf("schedule not found")
	ErrDuplicateSchedule = fmt.Errorf("duplicate schedule (control_point_id, year, period_number)")
)

type PostgresScheduleRepository struct {
	db *sql.DB
}

func NewPostgresScheduleRepository(db *sql.DB) *PostgresScheduleRepository {
	return &PostgresScheduleRepository{db: db}
}

const scheduleColumns = `id, control_point_id, year, period_number, scheduled_date, due_date, issue_id, status, generated_at, completed_at, notes, created_at, updated_at`

// scopeFilter limits a schedule query to one project's control points;
// projectID 0 matches everything.
const scopeFilter = `($1 = 0 OR control_point_id IN (
              SELECT cp.id FROM control_points cp
              JOIN control_categories cc ON cc.id = cp.category_id
              WHERE cc.project_id = $1))`

func (r *PostgresScheduleRepository) Insert(ctx context.Context, s *schedule.Schedule) error {
	query := `INSERT INTO schedules
              (control_point_id, year, period_number, scheduled_date, due_date, issue_id, status, generated_at, completed_at, notes)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
              RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		s.ControlPointID, s.Year, s.PeriodNumber, s.ScheduledDate, nullDate(s.DueDate),
		nullID(s.IssueID), s.Status, s.GeneratedAt, s.CompletedAt, s.Notes,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "schedules_unique_period") {
			return ErrDuplicateSchedule
		}
		return fmt.Errorf("error creating schedule: %w", err)
	}
	return nil
}

// Upsert inserts unless the (control_point, year, period) key already
// exists. ON CONFLICT DO NOTHING makes concurrent duplicate generation
// resolve to exactly one stored row with no error raised.
func (r *PostgresScheduleRepository) Upsert(ctx context.Context, s *schedule.Schedule) (bool, error) {
	query := `INSERT INTO schedules
              (control_point_id, year, period_number, scheduled_date, due_date, issue_id, status, generated_at, completed_at, notes)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
              ON CONFLICT ON CONSTRAINT schedules_unique_period DO NOTHING
              RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		s.ControlPointID, s.Year, s.PeriodNumber, s.ScheduledDate, nullDate(s.DueDate),
		nullID(s.IssueID), s.Status, s.GeneratedAt, s.CompletedAt, s.Notes,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		// Key already exists: the stored row wins, nothing created.
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("error upserting schedule: %w", err)
	}
	return true, nil
}

func scanScheduleRow(scan func(dest ...any) error) (*schedule.Schedule, error) {
	s := schedule.Schedule{}
	var dueDate sql.NullTime
	var issueID sql.NullInt64
	err := scan(&s.ID, &s.ControlPointID, &s.Year, &s.PeriodNumber, &s.ScheduledDate,
		&dueDate, &issueID, &s.Status, &s.GeneratedAt, &s.CompletedAt, &s.Notes,
		&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	s.DueDate = dueDate.Time
	s.IssueID = issueID.Int64
	return &s, nil
}

func (r *PostgresScheduleRepository) getOne(ctx context.Context, query string, args ...any) (*schedule.Schedule, error) {
	s, err := scanScheduleRow(r.db.QueryRowContext(ctx, query, args...).Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrScheduleNotFound
		}
		return nil, fmt.Errorf("error getting schedule: %w", err)
	}
	return s, nil
}

func (r *PostgresScheduleRepository) GetByID(ctx context.Context, id int64) (*schedule.Schedule, error) {
	return r.getOne(ctx, `SELECT `+scheduleColumns+` FROM schedules WHERE id = $1`, id)
}

func (r *PostgresScheduleRepository) GetByKey(ctx context.Context, controlPointID int64, year, period int) (*schedule.Schedule, error) {
	return r.getOne(ctx,
		`SELECT `+scheduleColumns+` FROM schedules WHERE control_point_id = $1 AND year = $2 AND period_number = $3`,
		controlPointID, year, period)
}

func (r *PostgresScheduleRepository) GetByIssueID(ctx context.Context, issueID int64) (*schedule.Schedule, error) {
	return r.getOne(ctx, `SELECT `+scheduleColumns+` FROM schedules WHERE issue_id = $1`, issueID)
}

// Update persists the mutable lifecycle fields as one atomic write.
func (r *PostgresScheduleRepository) Update(ctx context.Context, s *schedule.Schedule) error {
	query := `UPDATE schedules
              SET scheduled_date = $1, due_date = $2, issue_id = $3, status = $4,
                  generated_at = $5, completed_at = $6, notes = $7, updated_at = NOW()
              WHERE id = $8
              RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query,
		s.ScheduledDate, nullDate(s.DueDate), nullID(s.IssueID), s.Status,
		s.GeneratedAt, s.CompletedAt, s.Notes, s.ID,
	).Scan(&s.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrScheduleNotFound
		}
		return fmt.Errorf("error updating schedule: %w", err)
	}
	return nil
}

func (r *PostgresScheduleRepository) list(ctx context.Context, query string, args ...any) ([]*schedule.Schedule, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying schedules: %w", err)
	}
	defer rows.Close()

	schedules := make([]*schedule.Schedule, 0)
	for rows.Next() {
		s, err := scanScheduleRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("error scanning schedule row: %w", err)
		}
		schedules = append(schedules, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schedule rows: %w", err)
	}
	return schedules, nil
}

func (r *PostgresScheduleRepository) ListDueForGeneration(ctx context.Context, projectID int64, cutoff time.Time) ([]*schedule.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules
              WHERE status = 'pending' AND scheduled_date <= $2 AND ` + scopeFilter + `
              ORDER BY scheduled_date, id`
	return r.list(ctx, query, projectID, cutoff)
}

func (r *PostgresScheduleRepository) ListLinkedGenerated(ctx context.Context, projectID int64) ([]*schedule.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules
              WHERE status = 'generated' AND issue_id IS NOT NULL AND ` + scopeFilter + `
              ORDER BY id`
	return r.list(ctx, query, projectID)
}

func (r *PostgresScheduleRepository) ListByControlPointYear(ctx context.Context, controlPointID int64, year int) ([]*schedule.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules
              WHERE control_point_id = $1 AND year = $2
              ORDER BY period_number`
	return r.list(ctx, query, controlPointID, year)
}

func (r *PostgresScheduleRepository) NextScheduledDate(ctx context.Context, controlPointID int64, from time.Time) (time.Time, bool, error) {
	query := `SELECT scheduled_date FROM schedules
              WHERE control_point_id = $1 AND scheduled_date >= $2
              ORDER BY scheduled_date LIMIT 1`
	var d time.Time
	err := r.db.QueryRowContext(ctx, query, controlPointID, from).Scan(&d)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("error getting next scheduled date: %w", err)
	}
	return d, true, nil
}

// MarkOverdue is the bulk overdue sweep. Only pending/generated rows
// qualify; completed and skipped rows are never touched, so re-running
// is a no-op once every qualifying row is flipped.
func (r *PostgresScheduleRepository) MarkOverdue(ctx context.Context, projectID int64, today time.Time) (int64, error) {
	query := `UPDATE schedules
              SET status = 'overdue', updated_at = NOW()
              WHERE status IN ('pending', 'generated') AND due_date < $2 AND ` + scopeFilter
	res, err := r.db.ExecContext(ctx, query, projectID, today)
	if err != nil {
		return 0, fmt.Errorf("error marking schedules overdue: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error reading overdue update count: %w", err)
	}
	return n, nil
}

func (r *PostgresScheduleRepository) DeleteOrphaned(ctx context.Context) (int64, error) {
	query := `DELETE FROM schedules
              WHERE control_point_id NOT IN (SELECT id FROM control_points)`
	res, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("error deleting orphaned schedules: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error reading orphaned delete count: %w", err)
	}
	return n, nil
}

// CountsByStatus aggregates one year's schedules, counting overdue
// functionally: the overdue status plus pending/generated rows whose
// due date has passed, so the column and the predicate always agree.
func (r *PostgresScheduleRepository) CountsByStatus(ctx context.Context, projectID int64, year int, today time.Time) (schedule.StatusCounts, error) {
	query := `SELECT
                COUNT(*),
                COUNT(*) FILTER (WHERE status = 'pending' AND (due_date IS NULL OR due_date >= $3)),
                COUNT(*) FILTER (WHERE status = 'generated' AND (due_date IS NULL OR due_date >= $3)),
                COUNT(*) FILTER (WHERE status = 'completed'),
                COUNT(*) FILTER (WHERE status = 'overdue' OR (status IN ('pending', 'generated') AND due_date < $3)),
                COUNT(*) FILTER (WHERE status = 'skipped')
              FROM schedules
              WHERE year = $2 AND ` + scopeFilter
	var c schedule.StatusCounts
	err := r.db.QueryRowContext(ctx, query, projectID, year, today).Scan(
		&c.Total, &c.Pending, &c.Generated, &c.Completed, &c.Overdue, &c.Skipped)
	if err != nil {
		return schedule.StatusCounts{}, fmt.Errorf("error counting schedules: %w", err)
	}
	return c, nil
}

func nullDate(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
