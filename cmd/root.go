// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for sqlapi.
// It implements subcommands to run SQL statements through the warehouse SQL API,
// track asynchronous statements, and manage OAuth credentials, using the Cobra
// CLI framework and pterm for terminal output.
package cmd

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"sqlapi/cli/internal/logging"
)

var (
	showVersion bool
	verbose     bool
	envFile     string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "sqlapi",
	Short: "Run SQL against a cloud warehouse over its SQL REST API",
	Long: `sqlapi submits SQL statements to the warehouse SQL API using an OAuth refresh token,
waits for long-running statements to finish, and prints the result as a table or JSON.

Configuration is read from the environment, an optional .env file, the config file in
the XDG config directory, and the OS keychain (see 'sqlapi login').`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logging.SetVerbose(true)
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Printf("sqlapi %s\n", Version)
			return nil
		}
		return cmd.Help()
	},
}

// Execute runs the CLI application and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Println(logging.PresentError("sqlapi", err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show CLI version information")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print debug output (secrets are masked)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load environment variables from this file instead of ./.env")
}
