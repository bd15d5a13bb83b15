package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"sqlapi/cli/internal/sqlexec"
)

// parseBindings turns repeated TYPE=VALUE flags into positional bindings "1", "2", ...
// A value without a type prefix is bound as TEXT.
func parseBindings(flags []string) (map[string]sqlexec.Binding, error) {
	if len(flags) == 0 {
		return nil, nil
	}
	out := make(map[string]sqlexec.Binding, len(flags))
	for i, f := range flags {
		typ, value, ok := strings.Cut(f, "=")
		if !ok {
			typ, value = "TEXT", f
		}
		typ = strings.ToUpper(strings.TrimSpace(typ))
		if typ == "" {
			return nil, fmt.Errorf("binding %d: empty type in %q (want TYPE=VALUE)", i+1, f)
		}
		if !validBindingType(typ) {
			return nil, fmt.Errorf("binding %d: unknown type %q", i+1, typ)
		}
		out[strconv.Itoa(i+1)] = sqlexec.Binding{Type: typ, Value: value}
	}
	return out, nil
}

func validBindingType(t string) bool {
	switch t {
	case "TEXT", "FIXED", "REAL", "BOOLEAN", "DATE", "TIME",
		"TIMESTAMP_LTZ", "TIMESTAMP_NTZ", "TIMESTAMP_TZ", "BINARY":
		return true
	}
	return false
}
