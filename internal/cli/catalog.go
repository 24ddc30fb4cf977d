package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/redress/internal/wire"
)

// CatalogCmd returns the catalog command
func CatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the strategy catalog",
		Long:  "List and view the built-in remediation strategies.",
	}

	cmd.AddCommand(catalogListCmd())
	cmd.AddCommand(catalogShowCmd())

	return cmd
}

func catalogListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List strategies",
		RunE: func(cmd *cobra.Command, args []string) error {
			tier, _ := cmd.Flags().GetInt("tier")

			strategies := wire.StrategyCatalog().All()
			if tier > 0 {
				strategies = wire.StrategyCatalog().ByTier(tier)
			}

			if len(strategies) == 0 {
				fmt.Println("No strategies found.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTIER\tTACTIC\tBASE RATE\tTARGETS")
			fmt.Fprintln(w, "--\t----\t------\t---------\t-------")
			for _, s := range strategies {
				targets := make([]string, len(s.TargetItems))
				for i, t := range s.TargetItems {
					targets[i] = string(t)
				}
				fmt.Fprintf(w, "%s\t%d\t%s\t%.0f%%\t%s\n",
					s.ID, s.Tier, s.Tactic, s.BaseSuccessRate*100, strings.Join(targets, ","))
			}
			w.Flush()
			return nil
		},
	}

	cmd.Flags().Int("tier", 0, "Filter by tier")
	return cmd
}

func catalogShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [strategy-id]",
		Short: "Show strategy details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := wire.StrategyCatalog().ByID(args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Strategy: %s\n", s.ID)
			fmt.Printf("Name: %s\n", s.Name)
			fmt.Printf("Tactic: %s\n", s.Tactic)
			fmt.Printf("Tier: %d\n", s.Tier)
			fmt.Printf("Base Success Rate: %.0f%%\n", s.BaseSuccessRate*100)
			fmt.Printf("Expected Timeline: %s\n", s.Timeline)
			fmt.Printf("Legal Basis: %s\n", s.LegalBasis)

			targets := make([]string, len(s.TargetItems))
			for i, t := range s.TargetItems {
				targets[i] = string(t)
			}
			fmt.Printf("Targets: %s\n", strings.Join(targets, ", "))

			fmt.Println("Key Tactics:")
			for _, t := range s.KeyTactics {
				fmt.Printf("  - %s\n", t)
			}
			if len(s.Prerequisites) > 0 {
				fmt.Printf("Prerequisites: %s\n", strings.Join(s.Prerequisites, ", "))
			}
			if !s.Active {
				fmt.Println("Status: inactive")
			}
			return nil
		},
	}
}
