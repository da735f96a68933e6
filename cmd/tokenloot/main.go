// Package main provides the tokenloot CLI: rule-set validation, dry-run
// award simulation, and store schema migration.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "tokenloot",
		Short: "Loot award engine for token placements",
	}
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")
	root.AddCommand(validateCmd())
	root.AddCommand(simulateCmd())
	root.AddCommand(migrateCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
