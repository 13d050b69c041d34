package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"security_control_scheduler/internal/domain/control"
	"security_control_scheduler/internal/domain/schedule"
	"security_control_scheduler/internal/domain/settings"
	"security_control_scheduler/internal/domain/tracker"
	idb "security_control_scheduler/internal/infra/database"
)

// --- control repository fake ---

type fakeControlRepo struct {
	mu         sync.Mutex
	nextID     int64
	categories map[int64]*control.Category
	points     map[int64]*control.ControlPoint
}

func newFakeControlRepo() *fakeControlRepo {
	return &fakeControlRepo{
		categories: make(map[int64]*control.Category),
		points:     make(map[int64]*control.ControlPoint),
	}
}

func (r *fakeControlRepo) id() int64 {
	r.nextID++
	return r.nextID
}

func (r *fakeControlRepo) CreateCategory(ctx context.Context, c *control.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := c.Validate(); err != nil {
		return err
	}
	c.ID = r.id()
	r.categories[c.ID] = c
	return nil
}

func (r *fakeControlRepo) GetCategoryByID(ctx context.Context, id int64) (*control.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.categories[id]
	if !ok {
		return nil, idb.ErrCategoryNotFound
	}
	return c, nil
}

func (r *fakeControlRepo) ListCategories(ctx context.Context, projectID int64) ([]*control.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*control.Category, 0)
	for _, c := range r.categories {
		if projectID == 0 || c.ProjectID == projectID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeControlRepo) UpdateCategory(ctx context.Context, c *control.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[c.ID]; !ok {
		return idb.ErrCategoryNotFound
	}
	r.categories[c.ID] = c
	return nil
}

func (r *fakeControlRepo) DeleteCategory(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[id]; !ok {
		return idb.ErrCategoryNotFound
	}
	delete(r.categories, id)
	for pid, p := range r.points {
		if p.CategoryID == id {
			delete(r.points, pid)
		}
	}
	return nil
}

func (r *fakeControlRepo) CreateControlPoint(ctx context.Context, p *control.ControlPoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := p.Validate(); err != nil {
		return err
	}
	p.ID = r.id()
	r.points[p.ID] = p
	return nil
}

func (r *fakeControlRepo) GetControlPointByID(ctx context.Context, id int64) (*control.ControlPoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.points[id]
	if !ok {
		return nil, idb.ErrControlPointNotFound
	}
	return p, nil
}

func (r *fakeControlRepo) ListControlPoints(ctx context.Context, categoryID int64) ([]*control.ControlPoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*control.ControlPoint, 0)
	for _, p := range r.points {
		if p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeControlRepo) ListActiveControlPoints(ctx context.Context, projectID int64) ([]*control.ControlPoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*control.ControlPoint, 0)
	for id := int64(1); id <= r.nextID; id++ {
		p, ok := r.points[id]
		if !ok || !p.Active {
			continue
		}
		cat, ok := r.categories[p.CategoryID]
		if ok && !cat.Active {
			continue
		}
		if projectID != 0 && (!ok || cat.ProjectID != projectID) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *fakeControlRepo) UpdateControlPoint(ctx context.Context, p *control.ControlPoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.points[p.ID]; !ok {
		return idb.ErrControlPointNotFound
	}
	r.points[p.ID] = p
	return nil
}

func (r *fakeControlRepo) DeleteControlPoint(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.points[id]; !ok {
		return idb.ErrControlPointNotFound
	}
	delete(r.points, id)
	return nil
}

func (r *fakeControlRepo) ListProjectIDs(ctx context.Context) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[int64]bool)
	ids := make([]int64, 0)
	for _, c := range r.categories {
		if !seen[c.ProjectID] {
			seen[c.ProjectID] = true
			ids = append(ids, c.ProjectID)
		}
	}
	return ids, nil
}

func (r *fakeControlRepo) projectOf(p *control.ControlPoint) int64 {
	if c, ok := r.categories[p.CategoryID]; ok {
		return c.ProjectID
	}
	return 0
}

// --- schedule repository fake ---

type fakeScheduleRepo struct {
	mu        sync.Mutex
	nextID    int64
	rows      map[int64]*schedule.Schedule
	controls  *fakeControlRepo
	updateErr error // when set, Update fails once with this error
}

func newFakeScheduleRepo(controls *fakeControlRepo) *fakeScheduleRepo {
	return &fakeScheduleRepo{rows: make(map[int64]*schedule.Schedule), controls: controls}
}

func (r *fakeScheduleRepo) key(controlPointID int64, year, period int) string {
	return fmt.Sprintf("%d/%d/%d", controlPointID, year, period)
}

func (r *fakeScheduleRepo) inProject(s *schedule.Schedule, projectID int64) bool {
	if projectID == 0 {
		return true
	}
	p, ok := r.controls.points[s.ControlPointID]
	if !ok {
		return false
	}
	return r.controls.projectOf(p) == projectID
}

func (r *fakeScheduleRepo) Insert(ctx context.Context, s *schedule.Schedule) error {
	created, err := r.Upsert(ctx, s)
	if err != nil {
		return err
	}
	if !created {
		return idb.ErrDuplicateSchedule
	}
	return nil
}

func (r *fakeScheduleRepo) Upsert(ctx context.Context, s *schedule.Schedule) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if r.key(row.ControlPointID, row.Year, row.PeriodNumber) == r.key(s.ControlPointID, s.Year, s.PeriodNumber) {
			return false, nil
		}
	}
	r.nextID++
	s.ID = r.nextID
	cp := *s
	r.rows[s.ID] = &cp
	return true, nil
}

func (r *fakeScheduleRepo) GetByID(ctx context.Context, id int64) (*schedule.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.rows[id]
	if !ok {
		return nil, idb.ErrScheduleNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeScheduleRepo) GetByKey(ctx context.Context, controlPointID int64, year, period int) (*schedule.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.rows {
		if s.ControlPointID == controlPointID && s.Year == year && s.PeriodNumber == period {
			cp := *s
			return &cp, nil
		}
	}
	return nil, idb.ErrScheduleNotFound
}

func (r *fakeScheduleRepo) GetByIssueID(ctx context.Context, issueID int64) (*schedule.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.rows {
		if s.IssueID == issueID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, idb.ErrScheduleNotFound
}

func (r *fakeScheduleRepo) Update(ctx context.Context, s *schedule.Schedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		err := r.updateErr
		r.updateErr = nil
		return err
	}
	if _, ok := r.rows[s.ID]; !ok {
		return idb.ErrScheduleNotFound
	}
	cp := *s
	r.rows[s.ID] = &cp
	return nil
}

func (r *fakeScheduleRepo) listSorted(filter func(*schedule.Schedule) bool) []*schedule.Schedule {
	out := make([]*schedule.Schedule, 0)
	for id := int64(1); id <= r.nextID; id++ {
		s, ok := r.rows[id]
		if ok && filter(s) {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out
}

func (r *fakeScheduleRepo) ListDueForGeneration(ctx context.Context, projectID int64, cutoff time.Time) ([]*schedule.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listSorted(func(s *schedule.Schedule) bool {
		return s.Status == schedule.StatusPending && !s.ScheduledDate.After(cutoff) && r.inProject(s, projectID)
	}), nil
}

func (r *fakeScheduleRepo) ListLinkedGenerated(ctx context.Context, projectID int64) ([]*schedule.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listSorted(func(s *schedule.Schedule) bool {
		return s.Status == schedule.StatusGenerated && s.IssueID != 0 && r.inProject(s, projectID)
	}), nil
}

func (r *fakeScheduleRepo) ListByControlPointYear(ctx context.Context, controlPointID int64, year int) ([]*schedule.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listSorted(func(s *schedule.Schedule) bool {
		return s.ControlPointID == controlPointID && s.Year == year
	}), nil
}

func (r *fakeScheduleRepo) NextScheduledDate(ctx context.Context, controlPointID int64, from time.Time) (time.Time, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var best time.Time
	found := false
	for _, s := range r.rows {
		if s.ControlPointID != controlPointID || s.ScheduledDate.Before(from) {
			continue
		}
		if !found || s.ScheduledDate.Before(best) {
			best = s.ScheduledDate
			found = true
		}
	}
	return best, found, nil
}

func (r *fakeScheduleRepo) MarkOverdue(ctx context.Context, projectID int64, today time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, s := range r.rows {
		if (s.Status == schedule.StatusPending || s.Status == schedule.StatusGenerated) &&
			!s.DueDate.IsZero() && s.DueDate.Before(today) && r.inProject(s, projectID) {
			s.Status = schedule.StatusOverdue
			n++
		}
	}
	return n, nil
}

func (r *fakeScheduleRepo) DeleteOrphaned(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, s := range r.rows {
		if _, ok := r.controls.points[s.ControlPointID]; !ok {
			delete(r.rows, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeScheduleRepo) CountsByStatus(ctx context.Context, projectID int64, year int, today time.Time) (schedule.StatusCounts, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var c schedule.StatusCounts
	for _, s := range r.rows {
		if s.Year != year || !r.inProject(s, projectID) {
			continue
		}
		c.Total++
		if s.IsOverdue(today) {
			c.Overdue++
			continue
		}
		switch s.Status {
		case schedule.StatusPending:
			c.Pending++
		case schedule.StatusGenerated:
			c.Generated++
		case schedule.StatusCompleted:
			c.Completed++
		case schedule.StatusSkipped:
			c.Skipped++
		}
	}
	return c, nil
}

// --- settings repository fake ---

type fakeSettingsRepo struct {
	mu        sync.Mutex
	byProject map[int64]*settings.Settings
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{byProject: make(map[int64]*settings.Settings)}
}

func (r *fakeSettingsRepo) ForProject(ctx context.Context, projectID int64) (*settings.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.byProject[projectID]; ok {
		return s, nil
	}
	s := settings.NewDefaults(projectID)
	s.ID = int64(len(r.byProject) + 1)
	r.byProject[projectID] = s
	return s, nil
}

func (r *fakeSettingsRepo) Update(ctx context.Context, s *settings.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byProject[s.ProjectID] = s
	return nil
}

// --- tracker fake ---

type fakeTracker struct {
	mu        sync.Mutex
	nextID    int64
	issues    map[int64]*tracker.Issue
	created   int
	createErr error // when set, CreateIssue fails once with this error
}

func newFakeTracker() *fakeTracker {
	return &fakeTracker{issues: make(map[int64]*tracker.Issue)}
}

func (f *fakeTracker) CreateIssue(ctx context.Context, req tracker.IssueRequest) (*tracker.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		err := f.createErr
		f.createErr = nil
		return nil, err
	}
	if req.Subject == "" {
		return nil, &tracker.ValidationError{Messages: []string{"Subject cannot be blank"}}
	}
	f.nextID++
	issue := &tracker.Issue{ID: f.nextID, ProjectID: req.ProjectID, Subject: req.Subject}
	f.issues[issue.ID] = issue
	f.created++
	return issue, nil
}

func (f *fakeTracker) GetIssue(ctx context.Context, id int64) (*tracker.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	issue, ok := f.issues[id]
	if !ok {
		return nil, tracker.ErrIssueNotFound
	}
	cp := *issue
	return &cp, nil
}

func (f *fakeTracker) IssueExists(ctx context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.issues[id]
	return ok, nil
}

func (f *fakeTracker) close(id int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if issue, ok := f.issues[id]; ok {
		issue.Closed = true
	}
}

func (f *fakeTracker) delete(id int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.issues, id)
}
