// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"sqlapi/cli/internal/keychain"
)

// logoutCmd removes the secrets stored by login.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove stored OAuth secrets from the OS keychain",
	Long: `The logout command removes the refresh token and client secret saved by 'sqlapi login'
from the OS keychain. The non-secret config file and environment variables are left untouched.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		km, err := keychain.GetManager()
		if err != nil {
			return err
		}
		if err := km.ClearAll(); err != nil {
			return err
		}
		fmt.Println("✅ Stored credentials have been removed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
