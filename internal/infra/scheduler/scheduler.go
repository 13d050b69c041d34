package scheduler

import (
	"context"
	"time"

	"security_control_scheduler/internal/app"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ReconcileScheduler is the external trigger the engine itself does not
// own: it fires the combined reconciliation pass daily and pre-generates
// next year's schedules in December, consulting each project's
// auto-generation flag before touching it.
type ReconcileScheduler struct {
	cronEngine        *cron.Cron
	service           *app.ReconcileService
	logger            *logrus.Logger
	cronSpecReconcile string
	cronSpecYearGen   string
}

func NewReconcileScheduler(
	service *app.ReconcileService,
	logger *logrus.Logger,
	cronSpecReconcile string, // e.g. "0 6 * * *" (06:00 daily)
	cronSpecYearGen string, // e.g. "0 7 1 12 *" (December 1st)
) *ReconcileScheduler {
	return &ReconcileScheduler{
		cronEngine:        cron.New(cron.WithLocation(time.Local)),
		service:           service,
		logger:            logger,
		cronSpecReconcile: cronSpecReconcile,
		cronSpecYearGen:   cronSpecYearGen,
	}
}

func (s *ReconcileScheduler) Start() error {
	s.logger.Info("Starting reconcile scheduler")

	if _, err := s.cronEngine.AddFunc(s.cronSpecReconcile, s.runReconcile); err != nil {
		return err
	}
	if _, err := s.cronEngine.AddFunc(s.cronSpecYearGen, s.runYearGeneration); err != nil {
		return err
	}

	s.cronEngine.Start()
	s.logger.Info("Reconcile scheduler started with jobs")
	return nil
}

func (s *ReconcileScheduler) runReconcile() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	s.logger.Info("Cron job triggered: reconciliation pass")
	for _, pid := range s.enabledProjects(ctx) {
		sum, err := s.service.Reconcile(ctx, pid, 0)
		if err != nil {
			s.logger.WithField("project_id", pid).Errorf("Reconciliation pass failed: %v", err)
			continue
		}
		s.logger.WithFields(logrus.Fields{
			"project_id":    pid,
			"orphans_reset": sum.OrphansReset.Succeeded,
			"generated":     sum.IssuesGenerated.String(),
			"synced":        sum.CompletedSynced.Succeeded,
			"overdue":       sum.OverdueMarked,
		}).Info("Reconciliation pass finished")
	}
}

func (s *ReconcileScheduler) runYearGeneration() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	year := time.Now().Year() + 1
	s.logger.WithField("year", year).Info("Cron job triggered: next-year schedule generation")
	for _, pid := range s.enabledProjects(ctx) {
		res, err := s.service.GenerateYearSchedules(ctx, pid, year)
		if err != nil {
			s.logger.WithField("project_id", pid).Errorf("Year generation failed: %v", err)
			continue
		}
		s.logger.WithFields(logrus.Fields{"project_id": pid, "result": res.String()}).
			Info("Year generation finished")
	}
}

// enabledProjects lists the scopes whose settings enable automatic
// generation. A project whose settings fail to load is skipped, not
// fatal.
func (s *ReconcileScheduler) enabledProjects(ctx context.Context) []int64 {
	ids, err := s.service.ProjectIDs(ctx)
	if err != nil {
		s.logger.Errorf("Failed to list projects: %v", err)
		return nil
	}
	enabled := make([]int64, 0, len(ids))
	for _, pid := range ids {
		st, err := s.service.SettingsFor(ctx, pid)
		if err != nil {
			s.logger.WithField("project_id", pid).Errorf("Failed to load settings: %v", err)
			continue
		}
		if st.EnableAutoGeneration {
			enabled = append(enabled, pid)
		}
	}
	return enabled
}

func (s *ReconcileScheduler) Stop() {
	s.logger.Info("Stopping reconcile scheduler")
	ctx := s.cronEngine.Stop() // waits for running jobs
	<-ctx.Done()
	s.logger.Info("Reconcile scheduler gracefully stopped")
}
