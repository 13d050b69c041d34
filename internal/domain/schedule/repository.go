package schedule

import (
	"context"
	"time"
)

// StatusCounts aggregates schedules by lifecycle state for reporting.
// Overdue counts functionally overdue rows: status overdue plus
// pending/generated rows whose due date has passed.
type StatusCounts struct {
	Total     int
	Pending   int
	Generated int
	Completed int
	Overdue   int
	Skipped   int
}

// Repository defines persistence operations for schedules. A projectID
// of 0 widens scoped operations to the global set.
type Repository interface {
	// Insert stores a new schedule. A duplicate
	// (control_point, year, period_number) key returns
	// ErrDuplicateSchedule from the implementation.
	Insert(ctx context.Context, s *Schedule) error

	// Upsert inserts the schedule unless its unique key already exists,
	// in which case it reports created=false and leaves the stored row
	// untouched. This is the sole concurrency guard for generation.
	Upsert(ctx context.Context, s *Schedule) (created bool, err error)

	GetByID(ctx context.Context, id int64) (*Schedule, error)
	GetByKey(ctx context.Context, controlPointID int64, year, period int) (*Schedule, error)
	GetByIssueID(ctx context.Context, issueID int64) (*Schedule, error)

	// Update persists the mutable lifecycle fields of one schedule as a
	// single atomic write.
	Update(ctx context.Context, s *Schedule) error

	// ListDueForGeneration returns pending schedules of the project
	// scheduled on or before the cutoff date, oldest first.
	ListDueForGeneration(ctx context.Context, projectID int64, cutoff time.Time) ([]*Schedule, error)

	// ListLinkedGenerated returns generated schedules holding an issue
	// link, the working set for orphan detection and completion sync.
	ListLinkedGenerated(ctx context.Context, projectID int64) ([]*Schedule, error)

	// ListByControlPointYear returns a control point's schedules for a
	// year ordered by period number.
	ListByControlPointYear(ctx context.Context, controlPointID int64, year int) ([]*Schedule, error)

	// NextScheduledDate returns the first stored scheduled date of the
	// control point on/after from, or ok=false when none exists.
	NextScheduledDate(ctx context.Context, controlPointID int64, from time.Time) (time.Time, bool, error)

	// MarkOverdue bulk-flips pending/generated schedules with a due
	// date before today to overdue and reports how many rows changed.
	// Re-running is a no-op once all qualifying rows are flipped.
	MarkOverdue(ctx context.Context, projectID int64, today time.Time) (int64, error)

	// DeleteOrphaned removes schedules whose owning control point no
	// longer exists. Defensive only: cascade delete should make this
	// unreachable.
	DeleteOrphaned(ctx context.Context) (int64, error)

	// CountsByStatus aggregates the year's schedules by status within
	// the scope, with functional overdue counting.
	CountsByStatus(ctx context.Context, projectID int64, year int, today time.Time) (StatusCounts, error)
}
