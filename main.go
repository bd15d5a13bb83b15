// Package main is the entry point for the sqlapi CLI.
// It runs SQL statements against a warehouse account through its SQL REST API.
package main

import (
	"sqlapi/cli/cmd"
)

func main() {
	cmd.Execute()
}
