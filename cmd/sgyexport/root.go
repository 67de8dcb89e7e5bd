package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sgyexport",
	Short: "Export your personal data from a Schoology account",
	Long: `Schoology Exporter walks the Schoology REST API and mirrors your
personal data to a local directory tree.

Each run creates a fresh timestamped directory containing:
  - School and building records
  - Recent activity updates with attachments
  - Inbox and sent messages with attachments
  - Profiles of every user referenced along the way
  - Every enrolled course: info, grades, and the full course file tree

Credentials are read from a newline-separated file holding the Schoology
domain, consumer key, and consumer secret. The first run walks you through
the one-time browser authorization; the resulting tokens are stored in the
system keychain so later runs start immediately.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is $HOME/.sgyexport.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	// Version template
	rootCmd.SetVersionTemplate(`Schoology Exporter {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	// Disable default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
