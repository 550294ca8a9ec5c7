package auth

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crucial707/timetable/cmd/cli/client"
	"github.com/crucial707/timetable/cmd/cli/config"
	"github.com/crucial707/timetable/internal/models"
)

// stdin is read for prompted credentials; tests swap it.
var stdin io.Reader = os.Stdin

// InitAuth registers the account commands on the root command.
func InitAuth(rootCmd *cobra.Command) {
	rootCmd.AddCommand(registerCmd(), loginCmd(), logoutCmd(), deregisterCmd())
}

type tokenData struct {
	Token   string          `json:"token"`
	Profile *models.Profile `json:"profile"`
}

// ==========================
// Register
// ==========================
func registerCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new user",
		Long:  "Register a new user with username and password. The returned token is stored locally.",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, password = promptCredentials(username, password)

			var data tokenData
			if _, err := client.Call("POST", "/auth/register", "", map[string]string{
				"username": username,
				"password": password,
			}, &data); err != nil {
				return fmt.Errorf("failed to register user: %w", err)
			}
			if err := config.SaveToken(data.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			fmt.Println("User registered successfully! Token stored locally.")
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username to register")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted when omitted)")
	return cmd
}

// ==========================
// Login
// ==========================
func loginCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the timetable API",
		Long:  "Authenticate and store a JWT token for subsequent CLI commands.",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, password = promptCredentials(username, password)

			var data tokenData
			if _, err := client.Call("POST", "/auth/login", "", map[string]string{
				"username": username,
				"password": password,
			}, &data); err != nil {
				return fmt.Errorf("failed to login: %w", err)
			}
			if data.Token == "" {
				return fmt.Errorf("login succeeded but no token returned")
			}
			if err := config.SaveToken(data.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			name := username
			if data.Profile != nil && data.Profile.DisplayName != "" {
				name = data.Profile.DisplayName
			}
			fmt.Printf("Login successful. Welcome, %s.\n", name)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username to authenticate as")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted when omitted)")
	return cmd
}

// ==========================
// Logout
// ==========================
func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Logout current user",
		Long:  "Remove locally saved JWT token.",
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := config.RemoveToken()
			if err != nil {
				return err
			}
			if !removed {
				fmt.Println("No user logged in.")
				return nil
			}
			fmt.Println("Logged out successfully.")
			return nil
		},
	}
}

// ==========================
// Deregister
// ==========================
func deregisterCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "deregister",
		Short: "Delete your account and schedule",
		Long:  "Delete the logged-in account after re-entering its password. All schedule entries are removed with it.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = prompt("Password: ")
			}
			if _, err := client.CallAuthed("DELETE", "/auth/account", map[string]string{"password": password}, nil); err != nil {
				return fmt.Errorf("failed to deregister: %w", err)
			}
			if _, err := config.RemoveToken(); err != nil {
				return err
			}
			fmt.Println("Account deleted.")
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "Current password (prompted when omitted)")
	return cmd
}

func promptCredentials(username, password string) (string, string) {
	if username == "" {
		username = prompt("Username: ")
	}
	if password == "" {
		password = prompt("Password: ")
	}
	return username, password
}

func prompt(label string) string {
	fmt.Print(label)
	var v string
	fmt.Fscanln(stdin, &v)
	return strings.TrimSpace(v)
}
