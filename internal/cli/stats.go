package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// StatsCmd prints the year's schedule counts and completion rate.
func StatsCmd() *cobra.Command {
	var projectID int64
	var year int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show schedule counts and completion rate for a year",
		RunE: func(cmd *cobra.Command, args []string) error {
			if year == 0 {
				year = time.Now().Year()
			}
			e, err := newEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			stats, err := e.service.StatisticsForYear(cmd.Context(), projectID, year)
			if err != nil {
				return err
			}
			c := stats.Counts
			fmt.Printf("Year %d: total=%d pending=%d generated=%d completed=%d overdue=%d skipped=%d\n",
				stats.Year, c.Total, c.Pending, c.Generated, c.Completed, c.Overdue, c.Skipped)
			fmt.Printf("Completion rate: %.1f%%\n", stats.CompletionRate)
			return nil
		},
	}
	cmd.Flags().Int64Var(&projectID, "project", 0, "limit to one project (0 = all)")
	cmd.Flags().IntVar(&year, "year", 0, "year to report (default: current year)")
	return cmd
}

// InitDBCmd creates the database schema.
func InitDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init-db",
		Short: "Create the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			if err := initSchema(cmd.Context(), e); err != nil {
				return err
			}
			fmt.Println("init-db: schema is up to date")
			return nil
		},
	}
	return cmd
}
