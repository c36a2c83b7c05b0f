package cli

import (
	"fmt"
	"strings"

	"github.com/pankajredekar/stockroom/internal/diff"
	"github.com/pankajredekar/stockroom/internal/model"
	"github.com/pankajredekar/stockroom/internal/utils"
	"github.com/spf13/cobra"
)

var showSchema bool

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show migration status",
	Long:  "Shows applied and pending migrations and checks the live schema against them",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := loadConfig()
		db := connectDB(cfg)
		defer db.Close()

		run, ver := newRunner(ctx, cfg, db)

		applied, err := run.GetAppliedMigrations(ctx)
		if err != nil {
			exit("Failed to get applied migrations: %v", err)
		}
		pending, err := run.GetPendingMigrations(ctx)
		if err != nil {
			exit("Failed to get pending migrations: %v", err)
		}

		out := utils.Output
		fmt.Fprintln(out, "\n"+strings.Repeat("=", 60))
		fmt.Fprintln(out, "Migration Status")
		fmt.Fprintln(out, strings.Repeat("=", 60))

		if len(applied) > 0 {
			fmt.Fprintln(out, "\n✓ Applied Migrations:")
			for _, m := range applied {
				fmt.Fprintf(out, "  %s - %s\n", m.Version(), m.Name())
			}
		} else {
			fmt.Fprintln(out, "\n✓ Applied Migrations: (none)")
		}

		if len(pending) > 0 {
			fmt.Fprintln(out, "\n○ Pending Migrations:")
			for _, m := range pending {
				fmt.Fprintf(out, "  %s - %s\n", m.Version(), m.Name())
			}
		} else {
			fmt.Fprintln(out, "\n○ Pending Migrations: (none)")
		}

		simulated := run.SimulateSchema()
		if showSchema {
			fmt.Fprintln(out, "\nSchema after all migrations:")
			fmt.Fprint(out, simulated.String())
		}
		fmt.Fprintln(out)

		modelDiffs, err := diff.CompareModels(simulated, &model.Category{}, &model.Product{}, &model.StockMovement{})
		if err != nil {
			exit("Failed to inspect models: %v", err)
		}
		if len(modelDiffs) > 0 {
			utils.PrintWarning("Models and migrations disagree:")
			for _, d := range modelDiffs {
				fmt.Fprintf(out, "  %s\n", d)
			}
		}

		if len(pending) > 0 {
			utils.PrintWarning("Schema check skipped until pending migrations are applied")
			return
		}
		diffs, err := diff.CompareDatabase(simulated, db.DB, ver.Table())
		if err != nil {
			exit("Failed to inspect database: %v", err)
		}
		if len(diffs) == 0 {
			utils.PrintSuccess("Database schema matches the migrations")
			return
		}
		utils.PrintWarning("Database schema drifted from the migrations:")
		for _, d := range diffs {
			fmt.Fprintf(out, "  %s\n", d)
		}
	},
}

func init() {
	showCmd.Flags().BoolVar(&showSchema, "schema", false, "print the schema the migrations produce")
	rootCmd.AddCommand(showCmd)
}
