package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "mercator",
	Short: "Mercator Jupiter - OpenAI-compatible gateway",
	Long: `Mercator Jupiter is a reverse-proxy gateway that exposes an
OpenAI-compatible chat completion API and a code-completion surface,
translating both into a single upstream vendor's private streaming protocol.

It provides:
  - Multi-tenant token pooling with round-robin and keyed selection
  - Request/response translation and SSE streaming
  - Admin tooling for managing tokens, proxies, and dynamic access keys
  - An in-memory telemetry ring for recent request/response shapes

For more information, visit: https://github.com/relaygw/relay`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Disable default completion command (we'll add our own)
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
