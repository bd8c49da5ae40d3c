package cmd

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hal75-user/PC-System-Tool/pkg/models"
	"github.com/hal75-user/PC-System-Tool/pkg/state"
)

// statusCmd represents the status command.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Manage competitor status overrides",
	Long: `Status overrides mark a competitor as retired (RIT), not classified
(N.C.) or blank (BLNK), either for a single section or for the whole
event. Overrides live in the state database and apply on every run.`,
}

var statusSetCmd = &cobra.Command{
	Use:   "set <bib> [section] <status>",
	Short: "Set a section or final status override",
	Args:  cobra.RangeArgs(2, 3),
	Run: func(cmd *cobra.Command, args []string) {
		bib, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid bib %q\n", args[0])
			os.Exit(1)
		}
		status := args[len(args)-1]
		if !validStatus(status) {
			fmt.Fprintf(os.Stderr, "invalid status %q, want %s, %s or %s\n",
				status, models.StatusRetired, models.StatusNotClassified, models.StatusBlank)
			os.Exit(1)
		}

		store := mustOpenStore(cmd)
		defer store.Close()

		if len(args) == 3 {
			section := args[1]
			if err := store.SetSectionStatus(bib, section, status); err != nil {
				fmt.Fprintf(os.Stderr, "set section status: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("Bib %d: %s in %s\n", bib, status, section)
			return
		}
		if err := store.SetFinalStatus(bib, status); err != nil {
			fmt.Fprintf(os.Stderr, "set final status: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Bib %d: %s overall\n", bib, status)
	},
}

var statusClearCmd = &cobra.Command{
	Use:   "clear <bib> [section]",
	Short: "Clear a section or final status override",
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		bib, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid bib %q\n", args[0])
			os.Exit(1)
		}

		store := mustOpenStore(cmd)
		defer store.Close()

		if len(args) == 2 {
			if err := store.ClearSectionStatus(bib, args[1]); err != nil {
				fmt.Fprintf(os.Stderr, "clear section status: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("Bib %d: cleared %s\n", bib, args[1])
			return
		}
		if err := store.ClearFinalStatus(bib); err != nil {
			fmt.Fprintf(os.Stderr, "clear final status: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Bib %d: cleared overall status\n", bib)
	},
}

var statusListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every stored status override",
	Run: func(cmd *cobra.Command, args []string) {
		store := mustOpenStore(cmd)
		defer store.Close()

		finals, err := store.FinalStatuses()
		if err != nil {
			fmt.Fprintf(os.Stderr, "load final statuses: %v\n", err)
			os.Exit(1)
		}
		sections, err := store.SectionStatuses()
		if err != nil {
			fmt.Fprintf(os.Stderr, "load section statuses: %v\n", err)
			os.Exit(1)
		}
		if len(finals) == 0 && len(sections) == 0 {
			fmt.Println("No status overrides stored.")
			return
		}

		bibs := make([]int, 0, len(finals))
		for bib := range finals {
			bibs = append(bibs, bib)
		}
		sort.Ints(bibs)
		for _, bib := range bibs {
			fmt.Printf("Bib %-4d %-5s overall\n", bib, finals[bib])
		}

		keys := make([]models.ResultKey, 0, len(sections))
		for key := range sections {
			keys = append(keys, key)
		}
		sort.Slice(keys, func(i, j int) bool {
			if keys[i].Bib != keys[j].Bib {
				return keys[i].Bib < keys[j].Bib
			}
			return keys[i].Section < keys[j].Section
		})
		for _, key := range keys {
			fmt.Printf("Bib %-4d %-5s in %s\n", key.Bib, sections[key], key.Section)
		}
	},
}

func validStatus(s string) bool {
	switch s {
	case models.StatusRetired, models.StatusNotClassified, models.StatusBlank:
		return true
	}
	return false
}

func mustOpenStore(cmd *cobra.Command) *state.Store {
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
	return store
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.AddCommand(statusSetCmd)
	statusCmd.AddCommand(statusClearCmd)
	statusCmd.AddCommand(statusListCmd)
}
