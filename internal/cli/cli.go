package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yannaql/yannaql/internal/util"
)

// BuildInfo carries version metadata baked in at link time via -ldflags.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// Execute builds and runs the root command.
func Execute(ctx context.Context, info BuildInfo) error {
	rootCmd := newRootCommand()
	rootCmd.AddCommand(
		newRunCommand(),
		newCheckCommand(),
		newBrowseCommand(),
		newVersionCommand(info),
	)

	return util.WrapError("execute command", rootCmd.ExecuteContext(ctx))
}

func newRootCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "yannaql",
		Short: "Evaluate acyclic conjunctive queries with the Yannakakis algorithm",
		Long: `yannaql evaluates conjunctive queries written in a small Datalog-like
grammar against a fixed five-relation beer dataset (beers, breweries,
categories, locations, styles).

Every query is checked for alpha-acyclicity before evaluation: acyclic
queries run Yannakakis's join-tree algorithm; cyclic queries report their
status and, for a non-boolean query, an empty answer.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

func newVersionCommand(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("yannaql %s\n", info.Version)
			fmt.Printf("  commit:     %s\n", info.Commit)
			fmt.Printf("  built:      %s\n", info.BuildTime)
		},
	}
}
