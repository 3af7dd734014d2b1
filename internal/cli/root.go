// Package cli provides the command-line interface for tumblrsearch.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// DefaultConfigDir is used when --config is not given.
const DefaultConfigDir = ".tumblrsearch"

// Version and Commit are set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
)

var configDir string

var rootCmd = &cobra.Command{
	Use:   "tumblrsearch",
	Short: "Serve Tumblr blogs as OpenSearch-searchable feeds",
	Long: "tumblrsearch fetches posts from the Tumblr API, filters them by tag and serves them " +
		"as Atom, JSON or HTML feeds with an OpenSearch description for each feed.",
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "tumblrsearch %s (%s)\n", Version, Commit)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", DefaultConfigDir, "config directory")
	rootCmd.AddCommand(versionCmd, initCmd, serveCmd, searchCmd, latestCmd, describeCmd, feedsCmd, verifyCmd, doctorCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
