package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hal75-user/PC-System-Tool/pkg/sample"
)

// sampleCmd represents the sample command.
var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Generate sample settings and race data",
	Long: `Writes a small self-consistent data set into the configured settings
and race folders: the three settings tables plus timing CSVs for every
section, ready for a first run.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		if err := sample.Generate(cfg.SettingsFolder, cfg.RaceFolder); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Sample data written to %s and %s\n", cfg.SettingsFolder, cfg.RaceFolder)
	},
}

func init() {
	rootCmd.AddCommand(sampleCmd)
}
