package cli

import (
	"github.com/pankajredekar/stockroom/internal/utils"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending migrations",
	Long:  "Applies all migrations that haven't been applied yet",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := loadConfig()
		db := connectDB(cfg)
		defer db.Close()

		run, _ := newRunner(ctx, cfg, db)

		pending, err := run.GetPendingMigrations(ctx)
		if err != nil {
			exit("Failed to get pending migrations: %v", err)
		}
		if len(pending) == 0 {
			utils.PrintSuccess("No pending migrations")
			return
		}

		utils.PrintInfo("Applying %d migration(s)...", len(pending))
		applied, err := run.Migrate(ctx)
		for _, m := range applied {
			utils.PrintInfo("  %s - %s", m.Version(), m.Name())
		}
		if err != nil {
			exit("Failed to apply migrations: %v", err)
		}

		utils.PrintSuccess("Applied %d migration(s)", len(applied))
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
