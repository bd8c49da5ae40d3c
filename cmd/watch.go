package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hal75-user/PC-System-Tool/pkg/logger"
	"github.com/hal75-user/PC-System-Tool/pkg/metrics"
	"github.com/hal75-user/PC-System-Tool/pkg/rally"
	"github.com/hal75-user/PC-System-Tool/pkg/scheduler"
	"github.com/hal75-user/PC-System-Tool/pkg/state"
)

// watchCmd represents the watch command.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run the batch pass on a cron schedule",
	Long: `Runs the batch pass immediately and then again on every tick of the
configured cron schedule, picking up new timing files as timekeepers
drop them into the race folder. Stops on SIGINT or SIGTERM.`,
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

		job := func() {
			if _, err := rally.Run(cfg, store); err != nil {
				logger.Error("Batch run failed: %v", err)
			}
		}
		job()

		sched, err := scheduler.New(cfg.Scheduler.CronSpec, job)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid cron spec %q: %v\n", cfg.Scheduler.CronSpec, err)
			os.Exit(1)
		}
		sched.Start()
		defer sched.Stop()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop

		snap := metrics.Current()
		logger.Info("Shutting down after %d runs (%d failed)", snap.TotalRuns, snap.TotalFailures)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
