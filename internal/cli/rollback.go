package cli

import (
	"strconv"

	"github.com/pankajredekar/stockroom/internal/utils"
	"github.com/spf13/cobra"
)

var rollbackCmd = &cobra.Command{
	Use:   "rollback [n]",
	Short: "Rollback migrations",
	Long:  "Rolls back the last N migrations (default: 1)",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		n := 1
		if len(args) > 0 {
			var err error
			n, err = strconv.Atoi(args[0])
			if err != nil || n < 1 {
				exit("Invalid number: %s", args[0])
			}
		}

		cfg := loadConfig()
		db := connectDB(cfg)
		defer db.Close()

		run, ver := newRunner(ctx, cfg, db)

		appliedCount, err := ver.AppliedCount(ctx)
		if err != nil {
			exit("Failed to get applied count: %v", err)
		}
		if appliedCount == 0 {
			utils.PrintWarning("No migrations to rollback")
			return
		}
		if int64(n) > appliedCount {
			n = int(appliedCount)
		}

		utils.PrintInfo("Rolling back %d migration(s)...", n)
		rolled, err := run.Rollback(ctx, n)
		for _, m := range rolled {
			utils.PrintInfo("  %s - %s", m.Version(), m.Name())
		}
		if err != nil {
			exit("Failed to rollback: %v", err)
		}

		utils.PrintSuccess("Rolled back %d migration(s)", len(rolled))
	},
}

func init() {
	rootCmd.AddCommand(rollbackCmd)
}
