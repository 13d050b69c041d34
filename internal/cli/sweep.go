package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// SweepOverdueCmd flips pending/generated schedules past their due date
// to overdue.
func SweepOverdueCmd() *cobra.Command {
	var projectID int64

	cmd := &cobra.Command{
		Use:   "sweep-overdue",
		Short: "Mark schedules past their due date as overdue",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			n, err := e.service.UpdateOverdueStatuses(cmd.Context(), projectID)
			if err != nil {
				return err
			}
			fmt.Printf("sweep-overdue: %d schedules marked overdue\n", n)
			return nil
		},
	}
	cmd.Flags().Int64Var(&projectID, "project", 0, "limit to one project (0 = all)")
	return cmd
}

// ResetOrphanedCmd repairs schedules whose linked issue vanished from
// the tracker.
func ResetOrphanedCmd() *cobra.Command {
	var projectID int64

	cmd := &cobra.Command{
		Use:   "reset-orphaned",
		Short: "Re-pend schedules whose tracker issue no longer exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			res, err := e.service.ResetOrphanedSchedules(cmd.Context(), projectID)
			if err != nil {
				return err
			}
			printBatchResult("reset-orphaned", res)
			return nil
		},
	}
	cmd.Flags().Int64Var(&projectID, "project", 0, "limit to one project (0 = all)")
	return cmd
}

// SyncCompletedCmd completes generated schedules whose tracker issue
// was closed.
func SyncCompletedCmd() *cobra.Command {
	var projectID int64

	cmd := &cobra.Command{
		Use:   "sync-completed",
		Short: "Complete schedules whose tracker issue is closed",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			res, err := e.service.SyncCompletedFromIssues(cmd.Context(), projectID)
			if err != nil {
				return err
			}
			printBatchResult("sync-completed", res)
			return nil
		},
	}
	cmd.Flags().Int64Var(&projectID, "project", 0, "limit to one project (0 = all)")
	return cmd
}

// ReconcileCmd runs the combined pass: orphan repair, issue generation,
// completion sync, overdue sweep.
func ReconcileCmd() *cobra.Command {
	var projectID int64
	var actorID int64

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Run one full reconciliation pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			sum, err := e.service.Reconcile(cmd.Context(), projectID, actorID)
			if err != nil {
				return err
			}
			printBatchResult("reset-orphaned", sum.OrphansReset)
			printBatchResult("generate-due", sum.IssuesGenerated)
			printBatchResult("sync-completed", sum.CompletedSynced)
			fmt.Printf("sweep-overdue: %d schedules marked overdue\n", sum.OverdueMarked)
			return nil
		},
	}
	cmd.Flags().Int64Var(&projectID, "project", 0, "limit to one project (0 = all)")
	cmd.Flags().Int64Var(&actorID, "author", 0, "acting author id when no configured author is set")
	return cmd
}

// SkipCmd records an operator decision to skip one schedule period.
func SkipCmd() *cobra.Command {
	var scheduleID int64
	var notes string

	cmd := &cobra.Command{
		Use:   "skip",
		Short: "Skip one schedule period",
		RunE: func(cmd *cobra.Command, args []string) error {
			if scheduleID == 0 {
				return fmt.Errorf("--schedule is required")
			}
			e, err := newEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			if err := e.service.SkipSchedule(cmd.Context(), scheduleID, notes); err != nil {
				return err
			}
			fmt.Printf("skip: schedule %d skipped\n", scheduleID)
			return nil
		},
	}
	cmd.Flags().Int64Var(&scheduleID, "schedule", 0, "schedule id to skip")
	cmd.Flags().StringVar(&notes, "notes", "", "reason for skipping")
	return cmd
}

// CleanupCmd removes schedules whose control point no longer exists.
func CleanupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cleanup-orphaned",
		Short: "Delete schedules whose control point was removed",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			n, err := e.service.CleanupOrphanedSchedules(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("cleanup-orphaned: %d schedules deleted\n", n)
			return nil
		},
	}
	return cmd
}
