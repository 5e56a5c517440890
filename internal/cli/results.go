package cli

import (
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"lms-client/internal/app"
	"github.com/spf13/cobra"
)

// NewResultsCmd aggregates and prints assessment results for the signed-in
// viewer, newest attempts first.
func NewResultsCmd(configPath *string) *cobra.Command {
	var filterFlag string
	cmd := &cobra.Command{
		Use:   "results",
		Short: "Show aggregated assessment results",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := app.ParseFilter(filterFlag)
			if err != nil {
				return err
			}

			env, err := newEnv(*configPath)
			if err != nil {
				return err
			}
			defer env.Close()

			ctx := cmd.Context()
			viewer, token, err := env.session.Current(ctx)
			if err != nil {
				return err
			}

			courses, err := env.agg.CourseSet(ctx, viewer, token)
			if err != nil {
				return err
			}
			results, soft, err := env.agg.Aggregate(ctx, viewer, token)
			if err != nil {
				return err
			}
			for _, e := range soft {
				log.Printf("skipped %v", e)
			}

			filtered := app.ApplyFilter(results, filter)
			if len(filtered) == 0 {
				fmt.Println("no results")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tCOURSE\tASSESSMENT\tSCORE\tPERCENT\tSTATUS")
			for _, r := range filtered {
				status := "FAIL"
				if r.Passed() {
					status = "PASS"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%.4g/%.4g\t%.0f%%\t%s\n",
					r.AttemptDate.Format("2006-01-02"), r.CourseTitle, r.AssessmentTitle,
					r.Score, r.MaxScore, r.Percentage(), status)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			stats := app.Summarize(len(courses), results)
			fmt.Printf("\n%d courses, %d attempts, %d passed, %d failed, %.2f%% average\n",
				stats.Courses, stats.Attempts, stats.Passed, stats.Failed, stats.AveragePercent)
			return nil
		},
	}
	cmd.Flags().StringVar(&filterFlag, "filter", "all", "all, passed, or failed")
	return cmd
}
