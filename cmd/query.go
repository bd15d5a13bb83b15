// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	apperrors "sqlapi/cli/internal/errors"
	"sqlapi/cli/internal/render"
	"sqlapi/cli/internal/sqlexec"
)

var queryFlags struct {
	json          bool
	timeout       time.Duration
	database      string
	schema        string
	warehouse     string
	role          string
	binds         []string
	allPartitions bool
}

// queryCmd runs one statement and waits for its result.
var queryCmd = &cobra.Command{
	Use:   "query SQL",
	Short: "Run a SQL statement and print the result",
	Long: `The query command submits a SQL statement and waits for it to finish, polling the
statement status once per poll interval while the service reports it as running.

The result is printed as a table, or as JSON with --json. Statements that are still
running when --timeout expires are not cancelled; the handle is printed so the
statement can be followed with 'sqlapi status' or stopped with 'sqlapi cancel'.`,
	Example: `  sqlapi query "SELECT CURRENT_VERSION()"
  sqlapi query --json --database ANALYTICS "SELECT * FROM orders LIMIT 10"
  sqlapi query --bind FIXED=42 --bind TEXT=open "SELECT * FROM t WHERE id = ? AND state = ?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sql := strings.Join(args, " ")

		bindings, err := parseBindings(queryFlags.binds)
		if err != nil {
			return err
		}

		s, err := newSession()
		if err != nil {
			return err
		}
		timeout := queryFlags.timeout
		if timeout <= 0 {
			timeout = s.cfg.Timeout
		}

		overrides := sqlexec.Overrides{
			Database:  queryFlags.database,
			Schema:    queryFlags.schema,
			Warehouse: queryFlags.warehouse,
			Role:      queryFlags.role,
			Bindings:  bindings,
		}

		start := time.Now()
		stop := startSpinner("Running statement", queryFlags.json)
		res, err := s.exec.Execute(cmd.Context(), sql, timeout, overrides)
		if err == nil && queryFlags.allPartitions {
			err = s.exec.FetchRemaining(cmd.Context(), res)
		}
		stop()
		elapsed := time.Since(start)

		if err != nil {
			if apperrors.IsTimeout(err) {
				var e *apperrors.E
				if errors.As(err, &e) && e.Handle != "" {
					pterm.Warning.Printf("Statement %s is still running. Check it with: sqlapi status %s\n", e.Handle, e.Handle)
				}
			}
			return s.explain(err, "running the statement")
		}

		return printResult(res, elapsed, queryFlags.json)
	},
}

// printResult prints res and turns an unsuccessful result into a non-zero exit.
func printResult(res *sqlexec.Result, elapsed time.Duration, asJSON bool) error {
	if asJSON {
		if err := render.JSON(os.Stdout, res); err != nil {
			return err
		}
	} else if err := render.Table(os.Stdout, res, elapsed); err != nil {
		return err
	}

	if res.Success || res.Pending {
		return nil
	}
	return fmt.Errorf("statement failed")
}

func init() {
	f := queryCmd.Flags()
	f.BoolVar(&queryFlags.json, "json", false, "Print the normalized result as JSON")
	f.DurationVar(&queryFlags.timeout, "timeout", 0, "Maximum time to wait for the result (default from SQLAPI_TIMEOUT)")
	f.StringVar(&queryFlags.database, "database", "", "Database to use (overrides MCP_DATABASE)")
	f.StringVar(&queryFlags.schema, "schema", "", "Schema to use (overrides MCP_SCHEMA)")
	f.StringVar(&queryFlags.warehouse, "warehouse", "", "Warehouse to use")
	f.StringVar(&queryFlags.role, "role", "", "Role to use")
	f.StringArrayVar(&queryFlags.binds, "bind", nil, "Positional binding TYPE=VALUE for each ? placeholder (repeatable)")
	f.BoolVar(&queryFlags.allPartitions, "all-partitions", false, "Fetch every result partition, not only the first")
	rootCmd.AddCommand(queryCmd)
}
