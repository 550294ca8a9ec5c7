package migrate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crucial707/timetable/internal/config"
	"github.com/crucial707/timetable/internal/db"
)

// InitMigrate registers the migrate command. It talks to the database directly using the
// same DB_* environment as the API server.
func InitMigrate(rootCmd *cobra.Command) {
	var list bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				names, err := db.Migrations()
				if err != nil {
					return err
				}
				for _, n := range names {
					fmt.Println(n)
				}
				return nil
			}

			cfg := config.Load()
			if err := db.Run(cfg.DatabaseURL()); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Println("Migrations applied.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&list, "list", false, "List embedded migrations without applying them")
	rootCmd.AddCommand(cmd)
}
