package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/redress/internal/wire"
)

// SchedulerCmd returns the scheduler command
func SchedulerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scheduler",
		Short: "Run the escalation scheduler",
		Long:  "Sweep due triggers once or run the scheduler loop until interrupted.",
	}

	cmd.AddCommand(schedulerSweepCmd())
	cmd.AddCommand(schedulerRunCmd())

	return cmd
}

func schedulerSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Process all currently due triggers once",
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			if nowStr, _ := cmd.Flags().GetString("now"); nowStr != "" {
				parsed, err := time.Parse(time.RFC3339, nowStr)
				if err != nil {
					parsed, err = time.Parse(time.DateOnly, nowStr)
				}
				if err != nil {
					return fmt.Errorf("invalid --now value %q: %w", nowStr, err)
				}
				now = parsed
			}

			result, err := wire.SchedulerService().Sweep(context.Background(), now)
			if err != nil {
				return fmt.Errorf("sweep failed: %w", err)
			}

			fmt.Printf("Sweep complete: %d due, %d fired, %d skipped\n", result.Due, result.Fired, result.Skipped)
			for _, e := range result.Errors {
				fmt.Fprintf(os.Stderr, "  error: %v\n", e)
			}
			return nil
		},
	}

	cmd.Flags().String("now", "", "Evaluate due triggers as of this time (RFC3339 or YYYY-MM-DD)")
	return cmd
}

func schedulerRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the scheduler loop until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			interval, _ := cmd.Flags().GetDuration("interval")
			if interval > 0 {
				wire.Config().PollInterval = interval
			}

			fmt.Printf("Scheduler running (poll interval %s). Ctrl-C to stop.\n", wire.Config().PollInterval)
			if err := wire.SchedulerService().Run(ctx); err != nil && ctx.Err() == nil {
				return fmt.Errorf("scheduler stopped: %w", err)
			}
			fmt.Println("Scheduler stopped.")
			return nil
		},
	}

	cmd.Flags().Duration("interval", 0, "Override poll interval (e.g. 30s, 5m)")
	return cmd
}
