package main

import (
	"fmt"
	"os"

	"security_control_scheduler/internal/cli"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "scheduler",
		Short: "Recurring security control scheduler",
		Long: `Tracks recurring compliance/security checks, materializes their period
calendars as schedules, and keeps the schedules in sync with issues in an
external tracker.`,
	}

	rootCmd.AddCommand(cli.ServeCmd())
	rootCmd.AddCommand(cli.InitDBCmd())
	rootCmd.AddCommand(cli.GenerateYearCmd())
	rootCmd.AddCommand(cli.GenerateDueCmd())
	rootCmd.AddCommand(cli.GenerateIssueCmd())
	rootCmd.AddCommand(cli.SweepOverdueCmd())
	rootCmd.AddCommand(cli.ResetOrphanedCmd())
	rootCmd.AddCommand(cli.SyncCompletedCmd())
	rootCmd.AddCommand(cli.ReconcileCmd())
	rootCmd.AddCommand(cli.SkipCmd())
	rootCmd.AddCommand(cli.CleanupCmd())
	rootCmd.AddCommand(cli.StatsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
