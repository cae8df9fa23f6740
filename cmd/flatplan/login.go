package main

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate with the flatplan API",
	Long:  `Login stores the issued token pair for future operations.`,
	Example: `  flatplan login --email user@example.com
  flatplan login --email user@example.com --password secret`,
	RunE: runLogin,
}

var (
	loginEmail    string
	loginPassword string
)

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)

	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "",
		"Email address (falls back to auth.email from config)")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "",
		"Password (will prompt if not provided)")
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if loginEmail == "" {
		loginEmail = cfg.Auth.Email
	}
	if loginEmail == "" {
		return fmt.Errorf("email required (use --email or auth.email in config)")
	}

	if loginPassword == "" {
		loginPassword = cfg.Auth.Password
	}
	if loginPassword == "" {
		var err error
		loginPassword, err = promptPassword("Password: ")
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
	}

	if err := apiClient.Session.Login(ctx, loginEmail, loginPassword); err != nil {
		if jsonOutput {
			printJSON(map[string]interface{}{
				"success": false,
				"error":   err.Error(),
			})
		} else {
			printError("Login failed: %v", err)
		}
		return err
	}

	if jsonOutput {
		printJSON(map[string]interface{}{
			"success": true,
			"email":   loginEmail,
		})
	} else {
		printSuccess("Successfully logged in as %s", loginEmail)
	}
	return nil
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Discard the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		apiClient.Session.Logout()

		if jsonOutput {
			printJSON(map[string]interface{}{"success": true})
		} else {
			printSuccess("Logged out")
		}
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the authenticated user",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !apiClient.Session.IsLoggedIn() {
			return fmt.Errorf("not logged in (session: %s)", apiClient.Session.Status())
		}

		user, err := apiClient.Session.FetchUser(cmd.Context())
		if err != nil {
			return err
		}

		if jsonOutput {
			printJSON(user)
			return nil
		}

		printInfo("Logged in as %s", user.Email)
		if user.FirstName != "" || user.LastName != "" {
			printInfo("Name: %s %s", user.FirstName, user.LastName)
		}
		return nil
	},
}

func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)

	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)

	if err != nil {
		return "", err
	}
	return string(password), nil
}
