package cli

import (
	"context"

	"github.com/pankajredekar/stockroom/internal/config"
	"github.com/pankajredekar/stockroom/internal/utils"
	"github.com/spf13/cobra"
)

var (
	configPath string
	envFile    string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "stockroom",
	Short: "Inventory tracker for small shops",
	Long:  "Stockroom keeps track of products, barcodes and stock levels, from the command line or over HTTP",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := config.LoadEnv(envFile); err != nil {
			utils.PrintWarning("%v", err)
		}
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "configuration file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "environment file loaded before the configuration")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error or silent")
}

// Execute runs the CLI
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
