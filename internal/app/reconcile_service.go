package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"security_control_scheduler/internal/domain/control"
	"security_control_scheduler/internal/domain/schedule"
	"security_control_scheduler/internal/domain/settings"
	"security_control_scheduler/internal/domain/tracker"
	"security_control_scheduler/internal/template"

	"github.com/sirupsen/logrus"
)

// GlobalScope widens a scoped operation to every project.
const GlobalScope int64 = 0

// ReconcileService orchestrates year-scale schedule generation, due
// issue generation, overdue sweeps and orphan repair. Every operation
// is stateless and safe to re-run; concurrency is guarded by the
// (control_point, year, period_number) uniqueness constraint and the
// already-linked no-op check, not by locking.
type ReconcileService struct {
	controls  control.Repository
	schedules schedule.Repository
	settings  settings.Repository
	tracker   tracker.Client
	logger    *logrus.Logger

	authorID       int64 // configured issue author, 0 when unset
	systemAuthorID int64 // last-resort author

	now func() time.Time // injectable clock
}

// NewReconcileService wires the reconciliation service.
func NewReconcileService(
	cr control.Repository,
	sr schedule.Repository,
	str settings.Repository,
	tc tracker.Client,
	logger *logrus.Logger,
	authorID int64,
	systemAuthorID int64,
) *ReconcileService {
	return &ReconcileService{
		controls:       cr,
		schedules:      sr,
		settings:       str,
		tracker:        tc,
		logger:         logger,
		authorID:       authorID,
		systemAuthorID: systemAuthorID,
		now:            time.Now,
	}
}

func (s *ReconcileService) today() time.Time {
	return schedule.DateOnly(s.now())
}

// GenerateYearSchedules materializes every period of the year for each
// active control point in scope, upserting by the unique
// (control_point, year, period) key. Re-running creates nothing new.
// A failing control point is recorded and the others continue.
func (s *ReconcileService) GenerateYearSchedules(ctx context.Context, projectID int64, year int) (BatchResult, error) {
	var res BatchResult

	points, err := s.controls.ListActiveControlPoints(ctx, projectID)
	if err != nil {
		return res, fmt.Errorf("failed to list active control points: %w", err)
	}
	s.logger.WithFields(logrus.Fields{"project_id": projectID, "year": year, "control_points": len(points)}).
		Info("Generating year schedules")

	categories := make(map[int64]*control.Category)
	offsets := make(map[int64]schedule.Offsets)

	for _, point := range points {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		cat, ok := categories[point.CategoryID]
		if !ok {
			cat, err = s.controls.GetCategoryByID(ctx, point.CategoryID)
			if err != nil {
				res.addFailure(point.FullControlID(), fmt.Errorf("failed to load category: %w", err))
				continue
			}
			categories[point.CategoryID] = cat
		}

		off, ok := offsets[cat.ProjectID]
		if !ok {
			st, err := s.settings.ForProject(ctx, cat.ProjectID)
			if err != nil {
				res.addFailure(point.FullControlID(), fmt.Errorf("failed to load settings: %w", err))
				continue
			}
			off = st.Offsets()
			offsets[cat.ProjectID] = off
		}

		created, err := s.generatePointSchedules(ctx, point, year, off)
		res.Created += created
		if err != nil {
			res.addFailure(point.FullControlID(), err)
			continue
		}
		res.Succeeded++
	}

	s.logger.WithFields(logrus.Fields{"year": year, "result": res.String()}).
		Info("Year schedule generation finished")
	return res, nil
}

func (s *ReconcileService) generatePointSchedules(ctx context.Context, point *control.ControlPoint, year int, off schedule.Offsets) (int, error) {
	created := 0
	for period := 1; period <= point.PeriodsPerYear(); period++ {
		scheduled, due := schedule.PeriodDates(point.Frequency, year, period, off)
		sched := &schedule.Schedule{
			ControlPointID: point.ID,
			Year:           year,
			PeriodNumber:   period,
			ScheduledDate:  scheduled,
			DueDate:        due,
			Status:         schedule.StatusPending,
		}
		if err := sched.Validate(); err != nil {
			return created, err
		}
		wasCreated, err := s.schedules.Upsert(ctx, sched)
		if err != nil {
			return created, fmt.Errorf("period %d: %w", period, err)
		}
		if wasCreated {
			created++
		}
	}
	return created, nil
}

// GenerateDueIssues creates a tracked issue for every pending schedule
// inside its scope's advance-notice window and moves it to generated.
// Each schedule is processed independently; a validation failure in the
// tracker leaves that schedule untouched and is collected in the result.
func (s *ReconcileService) GenerateDueIssues(ctx context.Context, projectID int64, actorID int64) (BatchResult, error) {
	var res BatchResult

	projects, err := s.scopeProjects(ctx, projectID)
	if err != nil {
		return res, err
	}

	for _, pid := range projects {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		st, err := s.settings.ForProject(ctx, pid)
		if err != nil {
			res.addFailure(fmt.Sprintf("project #%d", pid), fmt.Errorf("failed to load settings: %w", err))
			continue
		}
		cutoff := s.today().AddDate(0, 0, st.AdvanceDaysOrDefault())
		due, err := s.schedules.ListDueForGeneration(ctx, pid, cutoff)
		if err != nil {
			res.addFailure(fmt.Sprintf("project #%d", pid), fmt.Errorf("failed to list due schedules: %w", err))
			continue
		}
		for _, sched := range due {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			issue, created, err := s.generateIssueFor(ctx, sched, pid, st, actorID)
			if err != nil {
				res.addFailure(sched.Identity(), err)
				continue
			}
			res.Succeeded++
			if created {
				res.Created++
				s.logger.WithFields(logrus.Fields{"schedule_id": sched.ID, "issue_id": issue.ID}).
					Info("Generated issue for schedule")
			}
		}
	}
	return res, nil
}

// GenerateIssue creates (or returns the already linked) issue for a
// single schedule. Calling it twice never creates a second issue.
func (s *ReconcileService) GenerateIssue(ctx context.Context, scheduleID int64, actorID int64) (*tracker.Issue, error) {
	sched, err := s.schedules.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	point, err := s.controls.GetControlPointByID(ctx, sched.ControlPointID)
	if err != nil {
		return nil, err
	}
	cat, err := s.controls.GetCategoryByID(ctx, point.CategoryID)
	if err != nil {
		return nil, err
	}
	st, err := s.settings.ForProject(ctx, cat.ProjectID)
	if err != nil {
		return nil, err
	}
	issue, _, err := s.generateIssueFor(ctx, sched, cat.ProjectID, st, actorID)
	return issue, err
}

// generateIssueFor is the idempotent core of issue generation: an
// already linked schedule returns its issue unchanged, and any failure
// before the final update leaves the schedule in its prior state.
func (s *ReconcileService) generateIssueFor(ctx context.Context, sched *schedule.Schedule, projectID int64, st *settings.Settings, actorID int64) (*tracker.Issue, bool, error) {
	if sched.IssueID != 0 {
		issue, err := s.tracker.GetIssue(ctx, sched.IssueID)
		if err != nil {
			return nil, false, fmt.Errorf("linked issue #%d: %w", sched.IssueID, err)
		}
		return issue, false, nil
	}

	point, err := s.controls.GetControlPointByID(ctx, sched.ControlPointID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load control point: %w", err)
	}
	cat, err := s.controls.GetCategoryByID(ctx, point.CategoryID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load category: %w", err)
	}

	tctx := template.Context{
		ControlID:     point.FullControlID(),
		ControlName:   point.Name,
		Category:      cat.Name,
		Period:        sched.PeriodLabel(point.Frequency),
		Year:          sched.Year,
		Frequency:     point.FrequencyLabel(),
		ScheduledDate: sched.ScheduledDate,
		DueDate:       sched.DueDate,
	}

	req := tracker.IssueRequest{
		ProjectID:    projectID,
		TrackerID:    firstID(point.TrackerID, st.DefaultTrackerID),
		PriorityID:   firstID(point.PriorityID, st.DefaultPriorityID),
		StatusID:     st.DefaultStatusID,
		AssignedToID: point.AssignedToID,
		AuthorID:     resolveAuthorID(s.authorID, actorID, s.systemAuthorID),
		Subject:      template.Render(st.SubjectTemplateOrDefault(), tctx),
		Description:  template.Render(st.DescriptionTemplateOrDefault(), tctx),
		StartDate:    sched.ScheduledDate,
		DueDate:      sched.DueDate,
	}

	issue, err := s.tracker.CreateIssue(ctx, req)
	if err != nil {
		return nil, false, err
	}

	sched.MarkGenerated(issue.ID, s.now())
	if err := s.schedules.Update(ctx, sched); err != nil {
		return nil, false, fmt.Errorf("issue #%d created but schedule update failed: %w", issue.ID, err)
	}
	return issue, true, nil
}

// UpdateOverdueStatuses bulk-flips pending/generated schedules whose
// due date has passed to overdue. Completed and skipped schedules are
// never touched; re-running changes nothing further.
func (s *ReconcileService) UpdateOverdueStatuses(ctx context.Context, projectID int64) (int64, error) {
	n, err := s.schedules.MarkOverdue(ctx, projectID, s.today())
	if err != nil {
		return 0, fmt.Errorf("overdue sweep failed: %w", err)
	}
	if n > 0 {
		s.logger.WithFields(logrus.Fields{"project_id": projectID, "updated": n}).
			Info("Marked schedules overdue")
	}
	return n, nil
}

// ResetOrphanedSchedules finds generated schedules whose linked issue
// no longer resolves in the tracker and repairs them: the link and
// generation markers are cleared and the schedule re-pends. Runs before
// GenerateDueIssues in a combined pass so repaired schedules become
// eligible again immediately.
func (s *ReconcileService) ResetOrphanedSchedules(ctx context.Context, projectID int64) (BatchResult, error) {
	var res BatchResult

	linked, err := s.schedules.ListLinkedGenerated(ctx, projectID)
	if err != nil {
		return res, fmt.Errorf("failed to list linked schedules: %w", err)
	}
	for _, sched := range linked {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		exists, err := s.tracker.IssueExists(ctx, sched.IssueID)
		if err != nil {
			res.addFailure(sched.Identity(), fmt.Errorf("failed to check issue #%d: %w", sched.IssueID, err))
			continue
		}
		if exists {
			continue
		}
		issueID := sched.IssueID
		sched.ResetOrphaned()
		if err := s.schedules.Update(ctx, sched); err != nil {
			res.addFailure(sched.Identity(), err)
			continue
		}
		res.Succeeded++
		s.logger.WithFields(logrus.Fields{"schedule_id": sched.ID, "issue_id": issueID}).
			Warn("Reset schedule with missing issue")
	}
	return res, nil
}

// SyncCompletedFromIssues transitions generated schedules whose linked
// issue is externally closed to completed. Vanished issues are left for
// the orphan repair sweep.
func (s *ReconcileService) SyncCompletedFromIssues(ctx context.Context, projectID int64) (BatchResult, error) {
	var res BatchResult

	linked, err := s.schedules.ListLinkedGenerated(ctx, projectID)
	if err != nil {
		return res, fmt.Errorf("failed to list linked schedules: %w", err)
	}
	for _, sched := range linked {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		issue, err := s.tracker.GetIssue(ctx, sched.IssueID)
		if errors.Is(err, tracker.ErrIssueNotFound) {
			continue
		}
		if err != nil {
			res.addFailure(sched.Identity(), fmt.Errorf("failed to fetch issue #%d: %w", sched.IssueID, err))
			continue
		}
		if !issue.Closed {
			continue
		}
		sched.MarkCompleted(s.now())
		if err := s.schedules.Update(ctx, sched); err != nil {
			res.addFailure(sched.Identity(), err)
			continue
		}
		res.Succeeded++
	}
	if res.Succeeded > 0 {
		s.logger.WithFields(logrus.Fields{"project_id": projectID, "synced": res.Succeeded}).
			Info("Synced completed schedules from closed issues")
	}
	return res, nil
}

// ProcessIssueStatusChange is the push half of the two-way sync
// contract: the tracker (or a poller) reports one issue's closed state
// and the linked schedule follows. Closing completes it; reopening
// reverts it to generated while linked.
func (s *ReconcileService) ProcessIssueStatusChange(ctx context.Context, issueID int64, closed bool) error {
	sched, err := s.schedules.GetByIssueID(ctx, issueID)
	if err != nil {
		return err
	}
	switch {
	case closed && !sched.IsCompleted():
		sched.MarkCompleted(s.now())
	case !closed && sched.IsCompleted():
		sched.Reopen()
	default:
		return nil
	}
	return s.schedules.Update(ctx, sched)
}

// SkipSchedule records an explicit operator decision to skip one
// period. Skipped schedules are terminal: the overdue sweep never
// reverts them.
func (s *ReconcileService) SkipSchedule(ctx context.Context, scheduleID int64, notes string) error {
	sched, err := s.schedules.GetByID(ctx, scheduleID)
	if err != nil {
		return err
	}
	sched.Skip(notes)
	return s.schedules.Update(ctx, sched)
}

// CleanupOrphanedSchedules removes schedules whose owning control point
// no longer exists. Cascade delete should make this unreachable; it is
// a safety net only.
func (s *ReconcileService) CleanupOrphanedSchedules(ctx context.Context) (int64, error) {
	n, err := s.schedules.DeleteOrphaned(ctx)
	if err != nil {
		return 0, fmt.Errorf("orphaned schedule cleanup failed: %w", err)
	}
	if n > 0 {
		s.logger.WithField("deleted", n).Warn("Cleaned up schedules without a control point")
	}
	return n, nil
}

// Reconcile runs one combined pass over the scope: orphan repair first
// so repaired schedules re-qualify, then issue generation, completion
// sync and the overdue sweep.
func (s *ReconcileService) Reconcile(ctx context.Context, projectID int64, actorID int64) (ReconcileSummary, error) {
	var sum ReconcileSummary
	var err error

	if sum.OrphansReset, err = s.ResetOrphanedSchedules(ctx, projectID); err != nil {
		return sum, err
	}
	if sum.IssuesGenerated, err = s.GenerateDueIssues(ctx, projectID, actorID); err != nil {
		return sum, err
	}
	if sum.CompletedSynced, err = s.SyncCompletedFromIssues(ctx, projectID); err != nil {
		return sum, err
	}
	if sum.OverdueMarked, err = s.UpdateOverdueStatuses(ctx, projectID); err != nil {
		return sum, err
	}
	return sum, nil
}

// StatisticsForYear aggregates the year's schedules by status within
// the scope. The completion rate is 0 for an empty scope, never a
// division error.
func (s *ReconcileService) StatisticsForYear(ctx context.Context, projectID int64, year int) (YearStatistics, error) {
	counts, err := s.schedules.CountsByStatus(ctx, projectID, year, s.today())
	if err != nil {
		return YearStatistics{}, fmt.Errorf("failed to aggregate schedules: %w", err)
	}
	return YearStatistics{
		Year:           year,
		Counts:         counts,
		CompletionRate: completionRate(counts.Completed, counts.Total),
	}, nil
}

// CategoryCompletionRate returns the completion percentage across one
// category's control points for a year, 0 when the category has no
// schedules.
func (s *ReconcileService) CategoryCompletionRate(ctx context.Context, categoryID int64, year int) (float64, error) {
	points, err := s.controls.ListControlPoints(ctx, categoryID)
	if err != nil {
		return 0, fmt.Errorf("failed to list control points: %w", err)
	}
	total, completed := 0, 0
	for _, point := range points {
		scheds, err := s.schedules.ListByControlPointYear(ctx, point.ID, year)
		if err != nil {
			return 0, fmt.Errorf("failed to list schedules for %s: %w", point.FullControlID(), err)
		}
		for _, sched := range scheds {
			total++
			if sched.IsCompleted() {
				completed++
			}
		}
	}
	return completionRate(completed, total), nil
}

// NextScheduledDate returns a control point's first stored scheduled
// date on or after today, ok=false when none remains.
func (s *ReconcileService) NextScheduledDate(ctx context.Context, controlPointID int64) (time.Time, bool, error) {
	return s.schedules.NextScheduledDate(ctx, controlPointID, s.today())
}

// ProjectIDs lists the scopes known to the engine, for external
// schedulers fanning sweeps out per project.
func (s *ReconcileService) ProjectIDs(ctx context.Context) ([]int64, error) {
	return s.controls.ListProjectIDs(ctx)
}

// SettingsFor exposes a scope's settings, for external schedulers
// consulting the auto-generation flag. The engine itself does not
// enforce that flag.
func (s *ReconcileService) SettingsFor(ctx context.Context, projectID int64) (*settings.Settings, error) {
	return s.settings.ForProject(ctx, projectID)
}

func (s *ReconcileService) scopeProjects(ctx context.Context, projectID int64) ([]int64, error) {
	if projectID != GlobalScope {
		return []int64{projectID}, nil
	}
	ids, err := s.controls.ListProjectIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return ids, nil
}
