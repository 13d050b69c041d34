// Package cli wires the batch entry points an external scheduler or an
// operator invokes: schedule generation, the reconciliation sweeps and
// reporting.
package cli

import (
	"context"
	"database/sql"
	"fmt"

	"security_control_scheduler/internal/app"
	"security_control_scheduler/internal/infra/config"
	idb "security_control_scheduler/internal/infra/database"
	"security_control_scheduler/internal/infra/logger"
	"security_control_scheduler/internal/infra/redmine"

	"github.com/sirupsen/logrus"
)

// env bundles everything a command needs once configuration is loaded
// and the database is reachable.
type env struct {
	cfg     *config.AppConfig
	db      *sql.DB
	service *app.ReconcileService
	log     *logrus.Logger
}

func (e *env) close() {
	if e.db != nil {
		e.db.Close()
	}
}

func newEnv(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("could not load configuration: %w", err)
	}
	logger.Init(cfg)
	log := logger.Get()

	db, err := idb.NewPostgresConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}

	controlRepo := idb.NewPostgresControlRepository(db)
	scheduleRepo := idb.NewPostgresScheduleRepository(db)
	settingsRepo := idb.NewPostgresSettingsRepository(db)
	trackerClient := redmine.NewClient(cfg.TrackerBaseURL, cfg.TrackerAPIKey, cfg.TrackerTimeout)

	service := app.NewReconcileService(
		controlRepo, scheduleRepo, settingsRepo, trackerClient,
		log, cfg.IssueAuthorID, cfg.SystemAuthorID,
	)

	return &env{cfg: cfg, db: db, service: service, log: log}, nil
}

func printBatchResult(name string, res app.BatchResult) {
	fmt.Printf("%s: %d succeeded, %d created, %d failed\n", name, res.Succeeded, res.Created, len(res.Failed))
	for _, f := range res.Failed {
		fmt.Printf("  FAILED %s: %s\n", f.Identity, f.Message)
	}
}
