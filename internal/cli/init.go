package cli

import (
	"os"

	"github.com/pankajredekar/stockroom/internal/config"
	"github.com/pankajredekar/stockroom/internal/utils"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long:  "Creates a stockroom.yml configuration file with default values",
	Run: func(cmd *cobra.Command, args []string) {
		if utils.FileExists(configPath) {
			utils.PrintWarning("%s already exists", configPath)
			return
		}

		data, err := config.Default().Marshal()
		if err != nil {
			exit("Failed to generate config: %v", err)
		}
		if err := os.WriteFile(configPath, data, 0644); err != nil {
			exit("Failed to write config file: %v", err)
		}

		utils.PrintSuccess("Initialized stockroom")
		utils.PrintInfo("Created %s", configPath)
		utils.PrintInfo("Run 'stockroom migrate' to create the tables")
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
