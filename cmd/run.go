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

var (
	runCSVPath string
	runDay     int
)

// runCmd represents the run command.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process the race folder and print results",
	Long: `Runs one full batch pass: loads the settings tables, parses every
timing CSV in the race folder, applies stored status overrides,
calculates the result grid and prints it together with the overall
standings and any validation findings.`,
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

		fmt.Print(report.RenderDetail(res.Engine, res.Tables))
		fmt.Println()

		if runDay > 0 {
			sections := res.Tables.SectionsByDay(runDay)
			if len(sections) == 0 {
				fmt.Fprintf(os.Stderr, "no sections defined for day %d\n", runDay)
				os.Exit(1)
			}
			fmt.Printf("Standings, day %d:\n", runDay)
			fmt.Print(report.RenderStandings(
				report.StandingsForSections(res.Engine, res.Tables, sections)))
		} else {
			fmt.Println("Standings:")
			fmt.Print(report.RenderStandings(report.Standings(res.Engine, res.Tables)))
		}

		if len(res.Findings) > 0 {
			fmt.Println()
			fmt.Print(report.RenderFindings(res.Findings))
		}

		if runCSVPath != "" {
			f, err := os.Create(runCSVPath)
			if err != nil {
				fmt.Fprintf(os.Stderr, "create %s: %v\n", runCSVPath, err)
				os.Exit(1)
			}
			err = report.WriteDetailCSV(f, res.Engine, res.Tables)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "write %s: %v\n", runCSVPath, err)
				os.Exit(1)
			}
			fmt.Printf("\nResult grid written to %s\n", runCSVPath)
		}

		if validate.HasBlocking(res.Findings) {
			os.Exit(2)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&runCSVPath, "csv", "", "also write the result grid to this CSV file")
	runCmd.Flags().IntVar(&runDay, "day", 0, "restrict standings to one event day")
}
