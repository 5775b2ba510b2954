package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tathya/tathya-cli/pkg/prompter"
	"github.com/tathya/tathya-cli/pkg/service"
)

var loginEmail string

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  "Manage your TATHYA session",
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login to TATHYA",
	Long:  "Authenticate with your campus email and password",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		return service.NewAuthService(app, prompter.PromptPassword).Login(cmd.Context(), loginEmail)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Logout from TATHYA",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		return service.NewAuthService(app, nil).Logout()
	},
}

var meCmd = &cobra.Command{
	Use:   "me",
	Short: "Display current authenticated user",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		return service.NewAuthService(app, nil).Me(cmd.Context())
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email (prompted when empty)")

	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(meCmd)
}
