package schedule

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"security_control_scheduler/internal/domain/control"
)

// Status is the lifecycle state of a schedule.
type Status string

const (
	StatusPending   Status = "pending"
	StatusGenerated Status = "generated"
	StatusCompleted Status = "completed"
	StatusOverdue   Status = "overdue"
	StatusSkipped   Status = "skipped"
)

// Statuses lists every valid schedule status.
func Statuses() []Status {
	return []Status{StatusPending, StatusGenerated, StatusCompleted, StatusOverdue, StatusSkipped}
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusGenerated, StatusCompleted, StatusOverdue, StatusSkipped:
		return true
	}
	return false
}

// Schedule is one concrete period instance of a control point for a
// given year. The triple (ControlPointID, Year, PeriodNumber) is unique
// and serves as the idempotency key for generation.
// Corresponds to the 'schedules' table.
type Schedule struct {
	ID             int64
	ControlPointID int64
	Year           int
	PeriodNumber   int // 1-based, bounded by the frequency's periods-per-year
	ScheduledDate  time.Time
	DueDate        time.Time
	Status         Status
	IssueID        int64 // 0 when no external issue is linked
	GeneratedAt    sql.NullTime
	CompletedAt    sql.NullTime
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Validate checks the schedule invariants at creation time.
func (s *Schedule) Validate() error {
	if s.ControlPointID == 0 {
		return fmt.Errorf("schedule: control point is required")
	}
	if s.Year <= 2000 || s.Year >= 2100 {
		return fmt.Errorf("schedule: year %d out of range", s.Year)
	}
	if s.PeriodNumber <= 0 {
		return fmt.Errorf("schedule: period number must be positive, got %d", s.PeriodNumber)
	}
	if s.ScheduledDate.IsZero() {
		return fmt.Errorf("schedule: scheduled date is required")
	}
	if !s.Status.IsValid() {
		return fmt.Errorf("schedule: unknown status %q", s.Status)
	}
	if !s.DueDate.IsZero() && s.DueDate.Before(s.ScheduledDate) {
		return fmt.Errorf("schedule: due date %s before scheduled date %s",
			s.DueDate.Format("2006-01-02"), s.ScheduledDate.Format("2006-01-02"))
	}
	return nil
}

// Identity renders a stable human-readable identity for batch results,
// e.g. "schedule #42 (2026 P3)".
func (s *Schedule) Identity() string {
	return fmt.Sprintf("schedule #%d (%d P%d)", s.ID, s.Year, s.PeriodNumber)
}

// PeriodLabel renders the period in its frequency-specific form:
// "Week 5", a month name, "Q3", "H2" or the year itself.
func (s *Schedule) PeriodLabel(freq control.Frequency) string {
	switch freq {
	case control.FrequencyWeekly:
		return fmt.Sprintf("Week %d", s.PeriodNumber)
	case control.FrequencyMonthly:
		if s.PeriodNumber >= 1 && s.PeriodNumber <= 12 {
			return time.Month(s.PeriodNumber).String()
		}
		return strconv.Itoa(s.PeriodNumber)
	case control.FrequencyQuarterly:
		return fmt.Sprintf("Q%d", s.PeriodNumber)
	case control.FrequencySixMonthly:
		return fmt.Sprintf("H%d", s.PeriodNumber)
	case control.FrequencyYearly:
		return strconv.Itoa(s.Year)
	default:
		return strconv.Itoa(s.PeriodNumber)
	}
}

// --- state machine ---

// MarkGenerated links the external issue and moves the schedule to
// generated. The caller is responsible for the already-linked no-op
// check that makes issue generation idempotent.
func (s *Schedule) MarkGenerated(issueID int64, now time.Time) {
	s.IssueID = issueID
	s.Status = StatusGenerated
	s.GeneratedAt = sql.NullTime{Time: now, Valid: true}
}

// MarkCompleted records the external issue being closed.
func (s *Schedule) MarkCompleted(now time.Time) {
	s.Status = StatusCompleted
	s.CompletedAt = sql.NullTime{Time: now, Valid: true}
}

// MarkOverdue flips the status to overdue. Completed and skipped are
// terminal-stable and never swept.
func (s *Schedule) MarkOverdue() {
	if s.Status == StatusCompleted || s.Status == StatusSkipped {
		return
	}
	s.Status = StatusOverdue
}

// Skip records an explicit operator decision to skip this period.
func (s *Schedule) Skip(notes string) {
	s.Status = StatusSkipped
	s.Notes = notes
}

// Reopen reverts a completed schedule after its issue is reopened
// externally: back to generated while still linked, pending otherwise.
func (s *Schedule) Reopen() {
	if s.IssueID != 0 {
		s.Status = StatusGenerated
	} else {
		s.Status = StatusPending
	}
	s.CompletedAt = sql.NullTime{}
}

// ResetOrphaned repairs a schedule whose linked issue vanished from the
// external tracker: the link and generation markers are cleared and the
// schedule re-pends, becoming eligible for generation again.
func (s *Schedule) ResetOrphaned() {
	s.IssueID = 0
	s.GeneratedAt = sql.NullTime{}
	s.CompletedAt = sql.NullTime{}
	s.Status = StatusPending
}

// --- derived queries ---

// IsPending reports whether the schedule awaits issue generation.
func (s *Schedule) IsPending() bool { return s.Status == StatusPending }

// IsGenerated reports whether an issue has been generated and is open.
func (s *Schedule) IsGenerated() bool { return s.Status == StatusGenerated }

// IsCompleted reports whether the linked issue was closed.
func (s *Schedule) IsCompleted() bool { return s.Status == StatusCompleted }

// IsSkipped reports whether an operator skipped this period.
func (s *Schedule) IsSkipped() bool { return s.Status == StatusSkipped }

// IsOverdue reports functional overdue-ness: either the status column
// was already swept to overdue, or the schedule is still
// pending/generated with its due date in the past. Both representations
// must agree; the sweep only catches the column up with this predicate.
func (s *Schedule) IsOverdue(today time.Time) bool {
	if s.Status == StatusOverdue {
		return true
	}
	if s.Status != StatusPending && s.Status != StatusGenerated {
		return false
	}
	return !s.DueDate.IsZero() && s.DueDate.Before(DateOnly(today))
}

// DaysUntilDue returns the whole days from today until the due date,
// negative once overdue. Returns 0 with ok=false when no due date is set.
func (s *Schedule) DaysUntilDue(today time.Time) (int, bool) {
	if s.DueDate.IsZero() {
		return 0, false
	}
	return daysBetween(DateOnly(today), DateOnly(s.DueDate)), true
}

// DaysOverdue returns how many days past due the schedule is, 0 when it
// is not functionally overdue.
func (s *Schedule) DaysOverdue(today time.Time) int {
	if !s.IsOverdue(today) {
		return 0
	}
	d := daysBetween(DateOnly(s.DueDate), DateOnly(today))
	if d < 0 {
		return 0
	}
	return d
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
