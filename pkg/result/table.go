// Package result is the in-memory output table both drivers append to: a
// "t" (or "freq") column plus one column per node name and branch tag.
package result

import (
	"math"
	"math/cmplx"
)

// Table holds parallel columns keyed by name. Transient runs key the
// independent column "t"; AC runs key it "freq" and add a
// "_DB"/"_PHASE" pair per traced quantity instead of a single column.
type Table struct {
	columns map[string][]float64
	order   []string
}

// New creates an empty table.
func New() *Table {
	return &Table{columns: make(map[string][]float64)}
}

// Append adds value to the named column, creating it (in first-seen order)
// if this is its first use.
func (t *Table) Append(name string, value float64) {
	if _, ok := t.columns[name]; !ok {
		t.order = append(t.order, name)
	}
	t.columns[name] = append(t.columns[name], value)
}

// AppendComplex records one AC sample as magnitude-in-decibels and phase-
// in-degrees under name+"_DB" and name+"_PHASE".
func (t *Table) AppendComplex(name string, v complex128) {
	mag := cmplx.Abs(v)
	db := -300.0
	if mag > 0 {
		db = 20 * math.Log10(mag)
	}
	phase := cmplx.Phase(v) * 180 / math.Pi
	t.Append(name+"_DB", db)
	t.Append(name+"_PHASE", phase)
}

// Column returns the named column and whether it exists.
func (t *Table) Column(name string) ([]float64, bool) {
	v, ok := t.columns[name]
	return v, ok
}

// Columns returns every column name in first-seen order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Len returns the number of samples recorded so far (the length of the
// independent column).
func (t *Table) Len() int {
	if v, ok := t.columns["t"]; ok {
		return len(v)
	}
	if v, ok := t.columns["freq"]; ok {
		return len(v)
	}
	return 0
}

// Map returns the raw column map, for callers (e.g. the CLI printer) that
// want to range over everything at once.
func (t *Table) Map() map[string][]float64 { return t.columns }
