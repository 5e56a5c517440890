package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"lms-client/internal/domain"
	"github.com/spf13/cobra"
)

// NewCoursesCmd lists the viewer's courses: enrolled for students, taught
// for instructors, or open-for-enrollment with --available.
func NewCoursesCmd(configPath *string) *cobra.Command {
	var available bool
	cmd := &cobra.Command{
		Use:   "courses",
		Short: "List your courses",
		RunE: func(cmd *cobra.Command, args []string) error {
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

			var courses []domain.Course
			switch {
			case available:
				courses, err = env.browser.Available(ctx, token)
			default:
				courses, err = env.agg.CourseSet(ctx, viewer, token)
			}
			if err != nil {
				return err
			}

			if len(courses) == 0 {
				fmt.Println("no courses")
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tDESCRIPTION")
			for _, course := range courses {
				fmt.Fprintf(w, "%s\t%s\t%s\n", course.CourseID, course.Title, course.Description)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&available, "available", false, "list courses open for enrollment instead")
	return cmd
}

// NewEnrollCmd joins the viewer to a course.
func NewEnrollCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "enroll <courseId>",
		Short: "Enroll in a course",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(*configPath)
			if err != nil {
				return err
			}
			defer env.Close()

			_, token, err := env.session.Current(cmd.Context())
			if err != nil {
				return err
			}
			message, err := env.browser.Enroll(cmd.Context(), token, args[0])
			if err != nil {
				return err
			}
			if message == "" {
				message = "enrolled"
			}
			fmt.Println(message)
			return nil
		},
	}
}
