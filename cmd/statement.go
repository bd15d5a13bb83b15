// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"sqlapi/cli/internal/sqlexec"
)

var (
	submitFlags struct {
		database, schema, warehouse, role string
		binds                             []string
	}
	statusJSON bool
)

// submitCmd starts a statement without waiting for it.
var submitCmd = &cobra.Command{
	Use:   "submit SQL",
	Short: "Submit a SQL statement asynchronously and print its handle",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bindings, err := parseBindings(submitFlags.binds)
		if err != nil {
			return err
		}
		s, err := newSession()
		if err != nil {
			return err
		}

		handle, err := s.exec.ExecuteAsync(cmd.Context(), strings.Join(args, " "), sqlexec.Overrides{
			Database:  submitFlags.database,
			Schema:    submitFlags.schema,
			Warehouse: submitFlags.warehouse,
			Role:      submitFlags.role,
			Bindings:  bindings,
		})
		if err != nil {
			return s.explain(err, "submitting the statement")
		}
		fmt.Println(handle)
		return nil
	},
}

// statusCmd takes one snapshot of a statement.
var statusCmd = &cobra.Command{
	Use:   "status HANDLE",
	Short: "Show the current state of a submitted statement",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		res, err := s.exec.Status(cmd.Context(), args[0])
		if err != nil {
			return s.explain(err, "fetching the statement status")
		}
		if res.Pending && !statusJSON {
			pterm.Info.Printf("Statement %s is still running\n", res.StatementHandle)
			return nil
		}
		return printResult(res, 0, statusJSON)
	},
}

// cancelCmd asks the service to stop a statement.
var cancelCmd = &cobra.Command{
	Use:   "cancel HANDLE",
	Short: "Cancel a running statement",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		ok, err := s.exec.Cancel(cmd.Context(), args[0])
		if err != nil {
			return s.explain(err, "cancelling the statement")
		}
		if !ok {
			return fmt.Errorf("statement %s was not cancelled", args[0])
		}
		pterm.Success.Printf("Cancelled %s\n", args[0])
		return nil
	},
}

func init() {
	f := submitCmd.Flags()
	f.StringVar(&submitFlags.database, "database", "", "Database to use (overrides MCP_DATABASE)")
	f.StringVar(&submitFlags.schema, "schema", "", "Schema to use (overrides MCP_SCHEMA)")
	f.StringVar(&submitFlags.warehouse, "warehouse", "", "Warehouse to use")
	f.StringVar(&submitFlags.role, "role", "", "Role to use")
	f.StringArrayVar(&submitFlags.binds, "bind", nil, "Positional binding TYPE=VALUE (repeatable)")

	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Print the normalized result as JSON")

	rootCmd.AddCommand(submitCmd, statusCmd, cancelCmd)
}
