// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"sqlapi/cli/internal/config"
	"sqlapi/cli/internal/keychain"
	"sqlapi/cli/internal/terminal"
)

// loginCmd stores OAuth credentials after proving they work.
var loginCmd = &cobra.Command{
	Use:     "login",
	Aliases: []string{"auth"},
	Short:   "Store OAuth credentials in the config file and OS keychain",
	Long: `The login command asks for the account identifier, the OAuth client id and secret,
and a refresh token. Values already present in the environment are offered as defaults.

The credentials are verified by exchanging the refresh token for an access token. On
success the account and client id are written to the config file and the client secret
and refresh token are stored in the OS keychain; secrets never touch the config file.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()

		km, err := keychain.GetManager()
		if err != nil {
			pterm.Println("❌ Secure storage is not available on this system")
			pterm.Println("   Set OAUTH_CLIENT_SECRET and OAUTH_REFRESH_TOKEN in the environment instead.")
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if cfg.Account, err = ask("Account identifier", cfg.Account, false); err != nil {
			return err
		}
		if cfg.OAuth.ClientID, err = ask("OAuth client id", cfg.OAuth.ClientID, false); err != nil {
			return err
		}
		if cfg.OAuth.ClientSecret, err = ask("OAuth client secret", cfg.OAuth.ClientSecret, true); err != nil {
			return err
		}
		if cfg.OAuth.RefreshToken, err = ask("Refresh token", cfg.OAuth.RefreshToken, true); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		s, err := buildSession(cfg)
		if err != nil {
			return err
		}
		stop := startSpinner("Verifying credentials", false)
		_, err = s.tokens.Token(ctx)
		stop()
		if err != nil {
			return s.explain(err, "verifying the refresh token")
		}

		// The refresh token may have been rotated during verification.
		refresh := s.tokens.RefreshToken()
		if err := km.SaveRefreshToken(refresh); err != nil {
			return errors.Wrap(err, "failed to store refresh token")
		}
		if err := km.SaveClientSecret(cfg.OAuth.ClientSecret); err != nil {
			return errors.Wrap(err, "failed to store client secret")
		}
		if err := config.Save("", cfg); err != nil {
			return err
		}

		pterm.Success.Printf("Logged in to %s\n", s.endpoints.BaseURL)
		return nil
	},
}

// ask prompts for a value, keeping current when the answer is empty.
func ask(label, current string, secret bool) (string, error) {
	prompt := label + ": "
	if current != "" {
		shown := current
		if secret {
			shown = "keep current"
		}
		prompt = fmt.Sprintf("%s [%s]: ", label, shown)
	}
	v, err := terminal.Prompt(prompt, secret)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read %s", label)
	}
	if v == "" {
		return current, nil
	}
	return v, nil
}

func init() {
	rootCmd.AddCommand(loginCmd)
}
