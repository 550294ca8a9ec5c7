package profile

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crucial707/timetable/cmd/cli/client"
	"github.com/crucial707/timetable/cmd/cli/output"
	"github.com/crucial707/timetable/internal/models"
)

// InitProfile registers the profile commands on the root command.
func InitProfile(rootCmd *cobra.Command) {
	profileCmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or update your profile",
	}
	profileCmd.AddCommand(showProfileCmd(), patchProfileCmd())
	rootCmd.AddCommand(profileCmd)
}

func showProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show your profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			var p models.Profile
			if _, err := client.CallAuthed("GET", "/profile", nil, &p); err != nil {
				return fmt.Errorf("failed to fetch profile: %w", err)
			}
			output.RenderTable(
				[]string{"Username", "Display name", "Department", "Phone"},
				[][]interface{}{{p.Username, p.DisplayName, p.Department, p.Phone}},
			)
			return nil
		},
	}
}

func patchProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patch",
		Short: "Update profile fields",
		Long:  "Update any of display name, department and phone. A new display name is also applied to your schedule entries.",
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := map[string]string{}
			for _, field := range models.ProfileFields {
				if cmd.Flags().Changed(field) {
					patch[field], _ = cmd.Flags().GetString(field)
				}
			}
			if len(patch) == 0 {
				return fmt.Errorf("nothing to update: pass at least one field flag")
			}

			var outcomes []models.FieldOutcome
			outcome, err := client.CallAuthed("PATCH", "/profile", patch, &outcomes)
			if err != nil {
				return fmt.Errorf("failed to patch profile: %w", err)
			}
			fmt.Println(outcome.Message)
			output.RenderFieldOutcomes(outcomes)
			return nil
		},
	}

	cmd.Flags().String("display_name", "", "Name shown as instructor on your entries")
	cmd.Flags().String("department", "", "Department")
	cmd.Flags().String("phone", "", "Phone number")
	return cmd
}
