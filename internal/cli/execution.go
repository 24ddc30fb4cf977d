package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/example/redress/internal/ports/primary"
	"github.com/example/redress/internal/wire"
)

// ExecutionCmd returns the execution command
func ExecutionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "execution",
		Short: "Manage strategy executions",
		Long:  "Start, inspect, cancel and retry dispute executions.",
	}

	cmd.AddCommand(executionStartCmd())
	cmd.AddCommand(executionShowCmd())
	cmd.AddCommand(executionListCmd())
	cmd.AddCommand(executionCancelCmd())
	cmd.AddCommand(executionRetryCmd())
	cmd.AddCommand(executionRespondCmd())
	cmd.AddCommand(executionFailCmd())

	return cmd
}

func executionStartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Commit to a strategy and submit the dispute",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			itemID, _ := cmd.Flags().GetString("item")
			subjectID, _ := cmd.Flags().GetString("subject")
			strategyID, _ := cmd.Flags().GetString("strategy")

			execution, err := wire.ExecutionService().Start(ctx, primary.StartExecutionRequest{
				ItemID:     itemID,
				SubjectID:  subjectID,
				StrategyID: strategyID,
			})
			if err != nil {
				if execution != nil {
					fmt.Printf("Execution %s stopped at %s: %v\n", execution.ID, execution.CurrentStep, err)
					return nil
				}
				return fmt.Errorf("failed to start execution: %w", err)
			}

			fmt.Printf("✓ Started execution %s (%s against item %s)\n", execution.ID, execution.StrategyID, execution.ItemID)
			if execution.SubmittedAt != nil {
				fmt.Printf("  submitted %s, receipt %s\n", execution.SubmittedAt.Format(time.DateOnly), execution.SubmissionReceipt)
			}
			return nil
		},
	}

	cmd.Flags().String("item", "", "Item ID (required)")
	cmd.Flags().String("subject", "", "Subject ID (required)")
	cmd.Flags().String("strategy", "", "Strategy ID (required)")
	cmd.MarkFlagRequired("item")
	cmd.MarkFlagRequired("subject")
	cmd.MarkFlagRequired("strategy")
	return cmd
}

func executionShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [execution-id]",
		Short: "Show execution details and step history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			execution, err := wire.ExecutionService().Get(ctx, args[0])
			if err != nil {
				return fmt.Errorf("execution not found: %w", err)
			}

			fmt.Printf("Execution: %s\n", execution.ID)
			fmt.Printf("Item: %s\n", execution.ItemID)
			fmt.Printf("Strategy: %s\n", execution.StrategyID)
			fmt.Printf("Subject: %s\n", execution.SubjectID)
			fmt.Printf("Status: %s\n", colorizeStatus(execution.Status))
			if execution.CurrentStep != "" {
				fmt.Printf("Current Step: %s\n", execution.CurrentStep)
			}
			fmt.Printf("Round: %d\n", execution.Round)
			if execution.SubmittedAt != nil {
				fmt.Printf("Submitted: %s (receipt %s)\n", execution.SubmittedAt.Format(time.RFC3339), execution.SubmissionReceipt)
			}
			if execution.ResponseRecordedAt != nil {
				fmt.Printf("Response Recorded: %s\n", execution.ResponseRecordedAt.Format(time.RFC3339))
			}
			if execution.NextStrategyID != "" {
				fmt.Printf("Next Recommended Strategy: %s\n", execution.NextStrategyID)
			}
			if execution.CompletedAt != nil {
				fmt.Printf("Completed: %s\n", execution.CompletedAt.Format(time.RFC3339))
			}

			if len(execution.Steps) > 0 {
				fmt.Println("Steps:")
				for _, step := range execution.Steps {
					line := fmt.Sprintf("  %d. %s [%s]", step.Seq, step.Name, step.Status)
					if step.Result != "" {
						line += ": " + step.Result
					}
					if step.Error != "" {
						line += ": " + color.New(color.FgRed).Sprint(step.Error)
					}
					fmt.Println(line)
				}
			}

			triggers, err := wire.ExecutionService().ListTriggers(ctx, execution.ID)
			if err == nil && len(triggers) > 0 {
				fmt.Println("Triggers:")
				for _, t := range triggers {
					state := "disabled"
					if t.Enabled {
						state = "enabled"
					}
					if t.FiredAt != nil {
						state = "fired " + t.FiredAt.Format(time.DateOnly)
					}
					fmt.Printf("  %s due %s [%s]\n", t.Type, t.DueAt.Format(time.DateOnly), state)
				}
			}
			return nil
		},
	}
}

func executionListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List executions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			subjectID, _ := cmd.Flags().GetString("subject")
			itemID, _ := cmd.Flags().GetString("item")
			status, _ := cmd.Flags().GetString("status")

			executions, err := wire.ExecutionService().List(ctx, primary.ExecutionFilters{
				SubjectID: subjectID,
				ItemID:    itemID,
				Status:    status,
			})
			if err != nil {
				return fmt.Errorf("failed to list executions: %w", err)
			}

			if len(executions) == 0 {
				fmt.Println("No executions found.")
				return nil
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"ID", "Item", "Strategy", "Status", "Step", "Round", "Next"})
			for _, e := range executions {
				next := e.NextStrategyID
				if next == "" {
					next = "-"
				}
				tw.AppendRow(table.Row{e.ID, e.ItemID, e.StrategyID, e.Status, e.CurrentStep, e.Round, next})
			}
			tw.Render()
			return nil
		},
	}

	cmd.Flags().String("subject", "", "Filter by subject ID")
	cmd.Flags().String("item", "", "Filter by item ID")
	cmd.Flags().String("status", "", "Filter by status")
	return cmd
}

func executionCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel [execution-id]",
		Short: "Cancel a pending or running execution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := wire.ExecutionService().Cancel(context.Background(), args[0]); err != nil {
				return fmt.Errorf("failed to cancel execution: %w", err)
			}
			fmt.Printf("✓ Cancelled execution %s\n", args[0])
			return nil
		},
	}
}

func executionRetryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "retry [execution-id]",
		Short: "Retry an execution stalled on a transient failure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			execution, err := wire.ExecutionService().Retry(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("retry failed: %w", err)
			}
			fmt.Printf("✓ Execution %s resumed (status: %s, step: %s)\n", execution.ID, execution.Status, execution.CurrentStep)
			return nil
		},
	}
}

func executionRespondCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "respond [execution-id]",
		Short: "Record a counterparty response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outcome, _ := cmd.Flags().GetString("outcome")
			detail, _ := cmd.Flags().GetString("detail")

			execution, err := wire.ExecutionService().RecordResponse(context.Background(), primary.RecordResponseRequest{
				ExecutionID: args[0],
				Outcome:     outcome,
				Detail:      detail,
			})
			if err != nil {
				return fmt.Errorf("failed to record response: %w", err)
			}

			fmt.Printf("✓ Response recorded for %s (outcome: %s)\n", execution.ID, outcome)
			if execution.NextStrategyID != "" {
				fmt.Printf("  next recommended strategy: %s\n", execution.NextStrategyID)
			}
			return nil
		},
	}

	cmd.Flags().String("outcome", "", "Response outcome: deleted|updated|verified|no-change (required)")
	cmd.Flags().String("detail", "", "Free-text detail")
	cmd.MarkFlagRequired("outcome")
	return cmd
}

func executionFailCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fail [execution-id]",
		Short: "Explicitly mark a stalled execution failed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reason, _ := cmd.Flags().GetString("reason")
			if err := wire.ExecutionService().Fail(context.Background(), args[0], reason); err != nil {
				return fmt.Errorf("failed to mark execution failed: %w", err)
			}
			fmt.Printf("✓ Execution %s marked failed\n", args[0])
			return nil
		},
	}

	cmd.Flags().String("reason", "marked failed by operator", "Failure reason")
	return cmd
}

func colorizeStatus(status string) string {
	switch status {
	case primary.ExecutionStatusCompleted:
		return color.New(color.FgGreen).Sprint(status)
	case primary.ExecutionStatusFailed:
		return color.New(color.FgRed).Sprint(status)
	case primary.ExecutionStatusCancelled:
		return color.New(color.FgYellow).Sprint(status)
	case primary.ExecutionStatusRunning:
		return color.New(color.FgCyan).Sprint(status)
	default:
		return status
	}
}
