package sqlexec

import (
	"math"
	"time"
)

// Binding is one positional parameter of a prepared statement.
// Type is a service type name such as TEXT, FIXED or BOOLEAN; Value is always
// sent in its string form.
type Binding struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Overrides carries optional per-statement context. Empty fields are treated as
// absent.
type Overrides struct {
	Database  string
	Schema    string
	Warehouse string
	Role      string
	// Bindings are keyed by 1-based position ("1", "2", ...).
	Bindings map[string]Binding
}

// Merge returns o with every empty field filled from defaults.
// Bindings are taken from defaults only when o has none.
func (o Overrides) Merge(defaults Overrides) Overrides {
	out := o
	if out.Database == "" {
		out.Database = defaults.Database
	}
	if out.Schema == "" {
		out.Schema = defaults.Schema
	}
	if out.Warehouse == "" {
		out.Warehouse = defaults.Warehouse
	}
	if out.Role == "" {
		out.Role = defaults.Role
	}
	if len(out.Bindings) == 0 {
		out.Bindings = defaults.Bindings
	}
	return out
}

// statementRequest is the JSON body of a statement submission.
type statementRequest struct {
	Statement string             `json:"statement"`
	Timeout   int                `json:"timeout"`
	Database  string             `json:"database,omitempty"`
	Schema    string             `json:"schema,omitempty"`
	Warehouse string             `json:"warehouse,omitempty"`
	Role      string             `json:"role,omitempty"`
	Bindings  map[string]Binding `json:"bindings,omitempty"`
	Async     bool               `json:"async,omitempty"`
}

func (e *Executor) buildRequest(sql string, timeout time.Duration, o Overrides, async bool) statementRequest {
	m := o.Merge(e.defaults)
	return statementRequest{
		Statement: sql,
		Timeout:   timeoutSeconds(timeout),
		Database:  m.Database,
		Schema:    m.Schema,
		Warehouse: m.Warehouse,
		Role:      m.Role,
		Bindings:  m.Bindings,
		Async:     async,
	}
}

// timeoutSeconds rounds a positive duration up to whole seconds.
func timeoutSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}
