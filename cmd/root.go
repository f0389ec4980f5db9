// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "release-cadence",
	Short: "Weekly release and bug counts for a set of GitHub repositories.",
	Long: `release-cadence fetches releases and bug issues for a fixed set of GitHub
repositories and buckets them by calendar week.

It can run as a proxy server (keeping the GitHub token server-side) or print
the weekly series directly.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().String("repos", "", "Path to the repositories YAML file (default: built-in set, or $RELEASE_CADENCE_REPOS)")
}
