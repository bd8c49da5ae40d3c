package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hal75-user/PC-System-Tool/pkg/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "pcsystem",
	Short: "Rally time-trial scoring and validation",
	Long: `pcsystem processes classic rally time-trial data: it loads the event
settings tables, parses the timekeepers' CSV exports, scores every
competitor over PC, PCG and CO sections and cross-checks the raw data
for measurement problems.`,
	SilenceUsage: true,
}

// Execute runs the CLI. Exit code 1 signals a failure, 2 signals
// validation findings that cannot be confirmed away.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "app.yaml",
		"path to the configuration file")
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	explicit := cmd.Flags().Changed("config") || rootCmd.PersistentFlags().Changed("config")
	cfg, err := config.Load(configPath, explicit)
	if err != nil {
		return config.Config{}, fmt.Errorf("load configuration: %w", err)
	}
	return cfg, nil
}
