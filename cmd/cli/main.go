package main

import (
	"fmt"
	"os"

	"github.com/crucial707/timetable/cmd/cli/auth"
	"github.com/crucial707/timetable/cmd/cli/migrate"
	"github.com/crucial707/timetable/cmd/cli/profile"
	"github.com/crucial707/timetable/cmd/cli/root"
	"github.com/crucial707/timetable/cmd/cli/schedule"
)

func main() {
	rootCmd := root.GetRoot()
	auth.InitAuth(rootCmd)
	schedule.InitSchedule(rootCmd)
	profile.InitProfile(rootCmd)
	migrate.InitMigrate(rootCmd)

	// Execute the root Cobra command
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
