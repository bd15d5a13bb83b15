package sqlexec

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Column describes one column of a result set.
type Column struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
}

// Result is the normalized outcome of a statement.
// Success is true exactly when the service returned result-set metadata; otherwise
// Message and Code carry the service's error, if it sent one.
type Result struct {
	StatementHandle string   `json:"statement_handle,omitempty"`
	Success         bool     `json:"success"`
	Pending         bool     `json:"pending,omitempty"`
	RowCount        int64    `json:"row_count"`
	Columns         []Column `json:"columns"`
	Data            [][]any  `json:"data"`
	Partitions      int      `json:"partitions,omitempty"`
	Message         string   `json:"message,omitempty"`
	Code            string   `json:"code,omitempty"`
	SQLState        string   `json:"sql_state,omitempty"`
}

// ColumnNames returns the column names in result order.
func (r *Result) ColumnNames() []string {
	names := make([]string, len(r.Columns))
	for i, c := range r.Columns {
		names[i] = c.Name
	}
	return names
}

// NormalizeJSON decodes a raw response body and normalizes it.
// Bodies that are not a JSON object yield an unsuccessful, empty result.
func NormalizeJSON(body []byte) *Result {
	return Normalize(decodeEnvelope(body))
}

// Normalize maps a raw statement response onto a Result. It never fails:
// missing or mistyped fields fall back to their zero values.
func Normalize(raw map[string]any) *Result {
	res := &Result{
		Columns: []Column{},
		Data:    [][]any{},
	}
	if raw == nil {
		return res
	}

	res.StatementHandle = stringValue(raw["statementHandle"])

	if md, ok := raw["resultSetMetaData"]; ok {
		res.Success = true
		meta, _ := md.(map[string]any)
		res.RowCount = intValue(meta["numRows"])
		res.Columns = columns(meta["rowType"])
		if parts, ok := meta["partitionInfo"].([]any); ok {
			res.Partitions = len(parts)
		}
		res.Data = rows(raw["data"])
	}

	if v, ok := raw["message"]; ok {
		res.Message = stringValue(v)
	}
	if v, ok := raw["code"]; ok {
		res.Code = stringValue(v)
	}
	if v, ok := raw["sqlState"]; ok {
		res.SQLState = stringValue(v)
	}
	return res
}

// isTerminal reports whether a status body describes a finished statement.
func isTerminal(raw map[string]any) bool {
	if raw == nil {
		return false
	}
	_, hasMeta := raw["resultSetMetaData"]
	_, hasMessage := raw["message"]
	return hasMeta || hasMessage
}

// decodeEnvelope decodes a JSON object keeping numbers as json.Number.
func decodeEnvelope(body []byte) map[string]any {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil
	}
	return raw
}

func columns(v any) []Column {
	list, _ := v.([]any)
	cols := make([]Column, 0, len(list))
	for _, item := range list {
		desc, _ := item.(map[string]any)
		col := Column{
			Name:     stringValue(desc["name"]),
			Type:     stringValue(desc["type"]),
			Nullable: true,
		}
		if b, ok := desc["nullable"].(bool); ok {
			col.Nullable = b
		}
		cols = append(cols, col)
	}
	return cols
}

// rows copies row arrays as-is; nulls stay nil. Entries that are not arrays are dropped.
func rows(v any) [][]any {
	list, _ := v.([]any)
	out := make([][]any, 0, len(list))
	for _, item := range list {
		row, ok := item.([]any)
		if !ok {
			continue
		}
		out = append(out, row)
	}
	return out
}

func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

func intValue(v any) int64 {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		if f, err := t.Float64(); err == nil {
			return int64(f)
		}
	case float64:
		return int64(t)
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n
		}
	}
	return 0
}
