package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"sqlapi/cli/internal/render"
	"sqlapi/cli/internal/sqlexec"
)

const whoamiSQL = "SELECT CURRENT_USER(), CURRENT_ROLE(), CURRENT_WAREHOUSE()"

// whoamiCmd represents the whoami command for displaying the identity behind the
// configured refresh token.
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the user and role the configured credentials act as",
	Long: `The whoami command exchanges the configured refresh token for an access token and
runs a trivial statement to report the current user, role and warehouse.

This command is useful for verifying credentials before running other commands.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}

		res, err := s.exec.Execute(cmd.Context(), whoamiSQL, s.cfg.Timeout, sqlexec.Overrides{})
		if err != nil {
			return s.explain(err, "checking the current user")
		}
		if !res.Success || len(res.Data) == 0 {
			return printResult(res, 0, false)
		}

		row := res.Data[0]
		cell := func(i int) string {
			if i < len(row) && row[i] != nil {
				return render.Cell(row[i])
			}
			return "(none)"
		}
		fmt.Printf("👤 Current user: %s\n", cell(0))
		return render.KeyValues(cmd.OutOrStdout(), [][2]string{
			{"role", cell(1)},
			{"warehouse", cell(2)},
			{"account", s.endpoints.BaseURL},
		})
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
