package main

import (
	"os"

	"github.com/simonhull/firebird-suite/petrel/internal/commands"
	"github.com/simonhull/firebird-suite/petrel/internal/output"
)

func main() {
	rootCmd := commands.RootCmd()
	rootCmd.AddCommand(commands.ApplyCmd())

	if err := rootCmd.Execute(); err != nil {
		output.Error(err.Error())
		os.Exit(1)
	}
}
