package commands

import (
	"github.com/spf13/cobra"

	"github.com/simonhull/firebird-suite/petrel"
	"github.com/simonhull/firebird-suite/petrel/internal/output"
)

// RootCmd creates and returns the root command for the petrel CLI
func RootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "petrel",
		Short: "Add a notification service extension to an iOS project",
		Long: `Petrel adds an iOS Notification Service Extension to the native project
of an Expo app and turns on the push capabilities it needs.

Running it again is safe: work already done is recognized and skipped.

Learn more: https://github.com/simonhull/firebird-suite`,
		Version:       petrel.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			output.SetVerbose(verbose)
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output for debugging")

	return cmd
}
