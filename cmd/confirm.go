package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
)

var (
	confirmList   bool
	confirmRemove bool
)

// confirmCmd represents the confirm command.
var confirmCmd = &cobra.Command{
	Use:   "confirm [key]",
	Short: "Acknowledge a validation finding",
	Long: `Confirming a finding records that an operator has reviewed it and
judged the data acceptable; the finding then no longer counts as open
on later runs. Keys are printed by the validate command and stay
stable across runs. Only confirmable findings honor confirmations.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store := mustOpenStore(cmd)
		defer store.Close()

		if confirmList {
			keys, err := store.ConfirmedKeys()
			if err != nil {
				fmt.Fprintf(os.Stderr, "load confirmed findings: %v\n", err)
				os.Exit(1)
			}
			if len(keys) == 0 {
				fmt.Println("No confirmed findings.")
				return
			}
			sorted := make([]string, 0, len(keys))
			for key := range keys {
				sorted = append(sorted, key)
			}
			sort.Strings(sorted)
			for _, key := range sorted {
				fmt.Println(key)
			}
			return
		}

		if len(args) == 0 {
			fmt.Fprintln(os.Stderr, "a finding key is required (see: pcsystem validate)")
			os.Exit(1)
		}
		key := args[0]

		if confirmRemove {
			if err := store.UnconfirmFinding(key); err != nil {
				fmt.Fprintf(os.Stderr, "remove confirmation: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("Removed confirmation for %s\n", key)
			return
		}
		if err := store.ConfirmFinding(key); err != nil {
			fmt.Fprintf(os.Stderr, "confirm finding: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Confirmed %s\n", key)
	},
}

func init() {
	rootCmd.AddCommand(confirmCmd)
	confirmCmd.Flags().BoolVar(&confirmList, "list", false, "list confirmed finding keys")
	confirmCmd.Flags().BoolVar(&confirmRemove, "remove", false, "withdraw a confirmation")
}
