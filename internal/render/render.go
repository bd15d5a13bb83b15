// Package render prints normalized statement results for humans (psql-style tables)
// and for machines (indented JSON).
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/hako/durafmt"
	"github.com/olekukonko/tablewriter"

	"sqlapi/cli/internal/sqlexec"
)

// NullString is printed for SQL NULL values.
const NullString = "NULL"

// Table renders res in the psql style followed by a row-count footer.
// An error result prints the service message instead of a table.
func Table(w io.Writer, res *sqlexec.Result, elapsed time.Duration) error {
	if res == nil {
		return nil
	}
	if !res.Success {
		return Failure(w, res)
	}

	if len(res.Columns) > 0 {
		table := tablewriter.NewWriter(w)
		table.SetBorder(false)
		table.SetAutoFormatHeaders(false)
		table.SetAutoWrapText(false)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		table.SetHeader(res.ColumnNames())
		table.AppendBulk(Cells(res.Data))
		table.Render()
	}

	_, err := fmt.Fprintln(w, Footer(res.RowCount, elapsed))
	return err
}

// Failure prints an unsuccessful result.
func Failure(w io.Writer, res *sqlexec.Result) error {
	msg := res.Message
	if msg == "" {
		msg = "statement failed without a message"
	}
	line := "ERROR: " + msg
	if res.Code != "" {
		line += " (code " + res.Code
		if res.SQLState != "" {
			line += ", SQL state " + res.SQLState
		}
		line += ")"
	}
	_, err := fmt.Fprintln(w, line)
	return err
}

// Footer returns "(N rows)" with thousands separators and, when known, the elapsed time.
func Footer(rows int64, elapsed time.Duration) string {
	s := fmt.Sprintf("(%s %s)", humanize.Comma(rows), english.PluralWord(int(rows), "row", ""))
	if elapsed > 0 {
		s += " in " + durafmt.Parse(elapsed.Round(time.Millisecond)).String()
	}
	return s
}

// Cells converts result rows to strings, printing nil as NULL.
func Cells(data [][]any) [][]string {
	out := make([][]string, 0, len(data))
	for _, row := range data {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = Cell(v)
		}
		out = append(out, cells)
	}
	return out
}

// Cell formats one value.
func Cell(v any) string {
	switch t := v.(type) {
	case nil:
		return NullString
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	case []any, map[string]any:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// KeyValues prints aligned "key: value" lines in the given order.
func KeyValues(w io.Writer, pairs [][2]string) error {
	rows := make([][]string, 0, len(pairs))
	for _, p := range pairs {
		rows = append(rows, []string{p[0] + ":", p[1]})
	}

	table := tablewriter.NewWriter(w)
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetCenterSeparator("")
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("  ")
	table.AppendBulk(rows)
	table.Render()
	return nil
}
