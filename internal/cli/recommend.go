package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/example/redress/internal/ports/primary"
	"github.com/example/redress/internal/wire"
)

// RecommendCmd returns the recommend command
func RecommendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Rank applicable strategies for an item",
		Long: `Rank the catalog strategies applicable to a flagged item, scored by
adjusted success probability and impact. The ranking is advisory; nothing
is submitted until an execution is started.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			itemID, _ := cmd.Flags().GetString("item")
			subjectID, _ := cmd.Flags().GetString("subject")
			limit, _ := cmd.Flags().GetInt("limit")
			verbose, _ := cmd.Flags().GetBool("verbose")

			recs, err := wire.SelectionService().Recommend(ctx, primary.RecommendRequest{
				ItemID:    itemID,
				SubjectID: subjectID,
				Limit:     limit,
			})
			if err != nil {
				return fmt.Errorf("failed to compute recommendations: %w", err)
			}

			if len(recs) == 0 {
				fmt.Println("No strategies are currently applicable to this item.")
				return nil
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"#", "Strategy", "Tier", "Success", "Impact", "Timeline", "Warnings"})
			for i, rec := range recs {
				tw.AppendRow(table.Row{
					i + 1,
					rec.StrategyID,
					rec.Tier,
					fmt.Sprintf("%.0f%%", rec.AdjustedSuccessProbability*100),
					fmt.Sprintf("%.2f", rec.ImpactScore),
					rec.ExpectedTimeline,
					len(rec.Contraindications),
				})
			}
			tw.Render()

			if verbose {
				for _, rec := range recs {
					fmt.Printf("\n%s (%s)\n", rec.StrategyID, rec.StrategyName)
					for _, line := range rec.Reasoning {
						fmt.Printf("  - %s\n", line)
					}
					for _, warning := range rec.Contraindications {
						fmt.Printf("  ! %s\n", warning)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().String("item", "", "Item ID (required)")
	cmd.Flags().String("subject", "", "Subject ID (required)")
	cmd.Flags().Int("limit", 0, "Maximum number of recommendations (0 = all)")
	cmd.Flags().BoolP("verbose", "v", false, "Show reasoning and warnings per strategy")
	cmd.MarkFlagRequired("item")
	cmd.MarkFlagRequired("subject")
	return cmd
}
