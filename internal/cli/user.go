package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"tigersai/internal/model"
	"tigersai/internal/service"
)

func newUserCmd(admin func() service.AdminService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}
	cmd.AddCommand(newUserAddCmd(admin), newUserListCmd(admin))
	return cmd
}

func newUserAddCmd(admin func() service.AdminService) *cobra.Command {
	var (
		password string
		role     string
		extToken string
		courses  []string
	)
	cmd := &cobra.Command{
		Use:   "add <username>",
		Short: "Create a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := model.ParseRole(role)
			if err != nil {
				return err
			}
			u, err := admin().CreateUser(cmd.Context(), args[0], password, r, extToken, courses)
			if err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (id=%d, role=%s, courses=%s)\n",
				u.Username, u.ID, u.Role, strings.Join(u.CourseIDs(), ","))
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "initial password")
	cmd.Flags().StringVar(&role, "role", string(model.RoleStudent), "admin, teacher or student")
	cmd.Flags().StringVar(&extToken, "token", "", "external course-platform token passed to the NLP script")
	cmd.Flags().StringSliceVar(&courses, "courses", nil, "authorized course ids")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newUserListCmd(admin func() service.AdminService) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := admin().ListAllUsers(cmd.Context(), operator)
			if err != nil {
				return fmt.Errorf("list users: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(users) == 0 {
				fmt.Fprintln(out, "No users found.")
				return nil
			}
			fmt.Fprintf(out, "%-6s  %-24s  %s\n", "ID", "USERNAME", "ROLE")
			for _, u := range users {
				fmt.Fprintf(out, "%-6d  %-24s  %s\n", u.ID, u.Username, u.Role)
			}
			return nil
		},
	}
}
