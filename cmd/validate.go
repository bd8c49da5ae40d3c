package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hal75-user/PC-System-Tool/pkg/rally"
	"github.com/hal75-user/PC-System-Tool/pkg/report"
	"github.com/hal75-user/PC-System-Tool/pkg/state"
	"github.com/hal75-user/PC-System-Tool/pkg/validate"
)

// validateCmd represents the validate command.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Run the consistency checks and list findings",
	Long: `Runs the full batch pass but prints only the validation findings.
Confirmable findings the operator has already acknowledged are marked
as confirmed. Exits with code 2 when structural errors remain that
cannot be confirmed away.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}

		store, err := state.Open(cfg.StateDB)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open state store: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()

		res, err := rally.Run(cfg, store)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}

		fmt.Print(report.RenderFindings(res.Findings))
		if validate.HasBlocking(res.Findings) {
			os.Exit(2)
		}
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
