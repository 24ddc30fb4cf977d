package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/redress/internal/cli"
	"github.com/example/redress/internal/version"
	"github.com/example/redress/internal/wire"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "redress",
		Short:   "redress - strategy selection and workflow escalation engine",
		Version: version.String(),
		Long: `redress selects remediation strategies for flagged report items, runs
each committed strategy through a dispute workflow, and escalates stalled
disputes on a time-gated follow-up ladder.`,
	}

	rootCmd.PersistentFlags().StringVar(&wire.ConfigPath, "config", "", "Config file path (default ~/.redress/config.yaml)")

	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.CatalogCmd())
	rootCmd.AddCommand(cli.RecommendCmd())
	rootCmd.AddCommand(cli.ExecutionCmd())
	rootCmd.AddCommand(cli.SchedulerCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
