package cli

import (
	"fmt"

	"lms-client/internal/domain"
	"github.com/spf13/cobra"
)

// NewLoginCmd signs in and stores the session in the local store.
func NewLoginCmd(configPath *string) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(*configPath)
			if err != nil {
				return err
			}
			defer env.Close()

			viewer, err := env.session.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Printf("signed in as %s (%s)\n", viewer.Name, viewer.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

// NewRegisterCmd creates an account and signs it in.
func NewRegisterCmd(configPath *string) *cobra.Command {
	var name, email, password, role string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(*configPath)
			if err != nil {
				return err
			}
			defer env.Close()

			viewer, err := env.session.Register(cmd.Context(), name, email, password, domain.ParseRole(role))
			if err != nil {
				return err
			}
			fmt.Printf("registered %s (%s)\n", viewer.Name, viewer.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleStudent), "student or instructor")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

// NewLogoutCmd drops the stored session.
func NewLogoutCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(*configPath)
			if err != nil {
				return err
			}
			defer env.Close()
			return env.session.Logout(cmd.Context())
		},
	}
}
