package schedule

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/crucial707/timetable/cmd/cli/client"
	"github.com/crucial707/timetable/cmd/cli/output"
	"github.com/crucial707/timetable/internal/models"
)

// ==========================
// Init Schedule
// ==========================
func InitSchedule(rootCmd *cobra.Command) {
	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "Manage your weekly schedule",
	}

	scheduleCmd.AddCommand(
		addEntryCmd(),
		listEntriesCmd(),
		patchEntriesCmd(),
	)

	rootCmd.AddCommand(scheduleCmd)
}

// ==========================
// ADD
// ==========================
func addEntryCmd() *cobra.Command {
	var in models.NewEntry

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add one period to your schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			var entry models.Entry
			if _, err := client.CallAuthed("POST", "/schedule", in, &entry); err != nil {
				return fmt.Errorf("failed to add entry: %w", err)
			}
			fmt.Printf("Schedule created: period %d, %s %s-%s, %s\n",
				entry.Period, entry.Day, entry.FromTime, entry.ToTime, entry.Subject)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Day, "day", "", "Day of the week")
	cmd.Flags().StringVar(&in.FromTime, "from", "", "Start time")
	cmd.Flags().StringVar(&in.ToTime, "to", "", "End time")
	cmd.Flags().IntVar(&in.Period, "period", 0, "Period number")
	cmd.Flags().StringVar(&in.Subject, "subject", "", "Subject taught")
	cmd.Flags().StringVar(&in.Branch, "branch", "", "Branch")
	cmd.Flags().StringVar(&in.Section, "section", "", "Section")
	return cmd
}

// ==========================
// LIST
// ==========================
func listEntriesCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your schedule ordered by period",
		RunE: func(cmd *cobra.Command, args []string) error {
			var entries []models.Entry
			outcome, err := client.CallAuthed("GET", "/schedule", nil, &entries)
			if err != nil {
				return fmt.Errorf("failed to list schedule: %w", err)
			}

			if jsonOut {
				return output.PrintJSON(entries)
			}
			if len(entries) == 0 {
				fmt.Println(outcome.Message)
				return nil
			}
			output.RenderEntries(entries)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print raw JSON instead of a table")
	return cmd
}

// ==========================
// PATCH
// ==========================

// patchFlags maps CLI flag names onto patch fields.
var patchFlags = []struct{ flag, field, usage string }{
	{"day", "day", "New day"},
	{"from", "from_time", "New start time"},
	{"to", "to_time", "New end time"},
	{"period", "period", "New period number"},
	{"subject", "subject", "New subject"},
	{"branch", "branch", "New branch"},
	{"section", "section", "New section"},
}

func patchEntriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patch",
		Short: "Update fields on all of your entries",
		Long:  "Apply each given field to every entry you own. Only flags you pass are sent.",
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := map[string]any{}
			for _, pf := range patchFlags {
				if !cmd.Flags().Changed(pf.flag) {
					continue
				}
				v, _ := cmd.Flags().GetString(pf.flag)
				if pf.field == "period" {
					n, err := strconv.Atoi(v)
					if err != nil {
						return fmt.Errorf("--period must be a whole number")
					}
					patch[pf.field] = n
					continue
				}
				patch[pf.field] = v
			}
			if len(patch) == 0 {
				return fmt.Errorf("nothing to update: pass at least one field flag")
			}

			var outcomes []models.FieldOutcome
			outcome, err := client.CallAuthed("PATCH", "/schedule", patch, &outcomes)
			if err != nil {
				return fmt.Errorf("failed to patch schedule: %w", err)
			}
			fmt.Println(outcome.Message)
			output.RenderFieldOutcomes(outcomes)
			return nil
		},
	}

	for _, pf := range patchFlags {
		cmd.Flags().String(pf.flag, "", pf.usage)
	}
	return cmd
}
