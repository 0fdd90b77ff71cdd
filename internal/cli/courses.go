package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"tigersai/internal/service"
)

func newCoursesCmd(admin func() service.AdminService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "courses",
		Short: "Manage authorized courses",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "assign <username> <course-id>...",
		Short: "Replace a user's authorized courses",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := admin().AssignCourses(cmd.Context(), args[0], args[1:])
			if err != nil {
				return fmt.Errorf("assign courses: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s now has courses [%s]\n", u.Username, strings.Join(u.CourseIDs(), ","))
			return nil
		},
	})
	return cmd
}
