// Command firelocal is the command-line interface spec.md §1 names as an
// out-of-scope external collaborator of the core engine, made concrete
// here as a thin wrapper over the store package (following cuemby/warren's
// cmd/warren root-command/subcommand layout).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/embeddb/firelocal/config"
	"github.com/embeddb/firelocal/store"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "firelocal",
	Short: "firelocal is an embedded, offline-first hierarchical document store",
}

func init() {
	rootCmd.PersistentFlags().String("data-dir", "./firelocal-data", "Document store data directory")
	rootCmd.PersistentFlags().String("config", "", "Path to config.yaml (optional)")
	rootCmd.PersistentFlags().String("env-file", "", "Path to .env overrides file (optional)")

	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(putCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(compactCmd)
	rootCmd.AddCommand(flushCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(watchCmd)
}

// openEngine loads layered configuration (env > .env > yaml > defaults)
// and opens the store at the resolved data directory, honoring an
// explicit --data-dir override over whatever config.Load resolved.
func openEngine(cmd *cobra.Command) (*store.Engine, error) {
	yamlPath, _ := cmd.Flags().GetString("config")
	envPath, _ := cmd.Flags().GetString("env-file")

	loaded, err := config.Load(yamlPath, envPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	dataDir := loaded.DataDir
	if v, _ := cmd.Flags().GetString("data-dir"); cmd.Flags().Changed("data-dir") {
		dataDir = v
	}

	e, err := store.Open(dataDir, loaded.Options)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dataDir, err)
	}
	return e, nil
}
