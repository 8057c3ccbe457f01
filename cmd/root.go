// Package cmd implements the intelsleuth command-line interface.
package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

// Build information, set with -ldflags at release time.
var (
	Version = "dev"
	Commit  = "none"
)

// cfgFile overrides CONFIG_PATH.
var cfgFile string

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "intelsleuth",
		Short:         "OSINT aggregation service",
		Long:          "IntelSleuth classifies a query, fans it out to public sources and returns categorized, deduplicated findings.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $CONFIG_PATH or config.yml)")

	root.AddCommand(
		newServeCommand(),
		newQueryCommand(),
		newMigrateCommand(),
		newVersionCommand(),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().ExecuteContext(context.Background())
}
