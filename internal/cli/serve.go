package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	idb "security_control_scheduler/internal/infra/database"
	"security_control_scheduler/internal/infra/scheduler"

	"github.com/spf13/cobra"
)

// ServeCmd runs the long-lived scheduler process: it initializes the
// schema and keeps the cron-driven reconciliation and year-generation
// jobs running until interrupted.
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the cron-driven reconciliation scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			if err := initSchema(cmd.Context(), e); err != nil {
				return err
			}

			sched := scheduler.NewReconcileScheduler(
				e.service, e.log, e.cfg.CronSpecReconcile, e.cfg.CronSpecYearGeneration,
			)
			if err := sched.Start(); err != nil {
				return err
			}

			e.log.Info("Scheduler is running. Press Ctrl+C to stop.")
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit

			e.log.Info("Shutting down")
			sched.Stop()
			e.log.Info("Shut down gracefully")
			return nil
		},
	}
	return cmd
}

func initSchema(ctx context.Context, e *env) error {
	return idb.InitSchema(ctx, e.db)
}
