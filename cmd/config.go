// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"sqlapi/cli/internal/config"
	"sqlapi/cli/internal/logging"
	"sqlapi/cli/internal/render"
)

// configCmd shows the effective configuration with secrets masked.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration (secrets masked)",
	Long: `The config command prints the configuration sqlapi would use, after merging the
environment, .env file, config file and keychain. Secrets are masked and only their
last characters are shown.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		base := "(not set)"
		if ep, err := cfg.Endpoints(); err == nil {
			base = ep.BaseURL
		}
		path, _ := config.Path("")

		if err := render.KeyValues(cmd.OutOrStdout(), configPairs(cfg, base, path)); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			pterm.Println()
			pterm.Warning.Println(err.Error())
		}
		return nil
	},
}

func configPairs(cfg config.Config, base, path string) [][2]string {
	return [][2]string{
		{"account", orNotSet(cfg.Account)},
		{"base url", base},
		{"client id", orNotSet(cfg.OAuth.ClientID)},
		{"client secret", logging.MaskSecret(cfg.OAuth.ClientSecret)},
		{"refresh token", logging.MaskSecret(cfg.OAuth.RefreshToken)},
		{"database", orNotSet(cfg.Defaults.Database)},
		{"schema", orNotSet(cfg.Defaults.Schema)},
		{"warehouse", orNotSet(cfg.Defaults.Warehouse)},
		{"role", orNotSet(cfg.Defaults.Role)},
		{"timeout", cfg.Timeout.String()},
		{"http timeout", cfg.HTTPTimeout.String()},
		{"poll interval", cfg.PollInterval.String()},
		{"config file", orNotSet(path)},
	}
}

func orNotSet(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

func init() {
	rootCmd.AddCommand(configCmd)
}
