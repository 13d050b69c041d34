package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// GenerateYearCmd materializes the year's schedule calendar for every
// active control point in scope.
func GenerateYearCmd() *cobra.Command {
	var projectID int64
	var year int

	cmd := &cobra.Command{
		Use:   "generate-year",
		Short: "Generate the year's schedules for active control points",
		RunE: func(cmd *cobra.Command, args []string) error {
			if year == 0 {
				year = time.Now().Year()
			}
			e, err := newEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			res, err := e.service.GenerateYearSchedules(cmd.Context(), projectID, year)
			if err != nil {
				return err
			}
			printBatchResult(fmt.Sprintf("generate-year %d", year), res)
			return nil
		},
	}
	cmd.Flags().Int64Var(&projectID, "project", 0, "limit to one project (0 = all)")
	cmd.Flags().IntVar(&year, "year", 0, "year to generate (default: current year)")
	return cmd
}

// GenerateDueCmd creates tracker issues for pending schedules inside
// their advance-notice window.
func GenerateDueCmd() *cobra.Command {
	var projectID int64
	var actorID int64

	cmd := &cobra.Command{
		Use:   "generate-due",
		Short: "Create tracker issues for schedules due for generation",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			res, err := e.service.GenerateDueIssues(cmd.Context(), projectID, actorID)
			if err != nil {
				return err
			}
			printBatchResult("generate-due", res)
			return nil
		},
	}
	cmd.Flags().Int64Var(&projectID, "project", 0, "limit to one project (0 = all)")
	cmd.Flags().Int64Var(&actorID, "author", 0, "acting author id when no configured author is set")
	return cmd
}

// GenerateIssueCmd creates (or reports the already linked) issue for
// one schedule.
func GenerateIssueCmd() *cobra.Command {
	var scheduleID int64
	var actorID int64

	cmd := &cobra.Command{
		Use:   "generate-issue",
		Short: "Create the tracker issue for a single schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			if scheduleID == 0 {
				return fmt.Errorf("--schedule is required")
			}
			e, err := newEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			issue, err := e.service.GenerateIssue(cmd.Context(), scheduleID, actorID)
			if err != nil {
				return err
			}
			fmt.Printf("generate-issue: schedule %d linked to issue #%d (%s)\n", scheduleID, issue.ID, issue.Subject)
			return nil
		},
	}
	cmd.Flags().Int64Var(&scheduleID, "schedule", 0, "schedule id to generate the issue for")
	cmd.Flags().Int64Var(&actorID, "author", 0, "acting author id when no configured author is set")
	return cmd
}
