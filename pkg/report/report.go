// Package report shapes analyzer results into ordered tabular row sets.
// It never recomputes metrics: assembly is sorting, limiting, and column
// naming only, so the analyzer output stays the single source of truth.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// UnknownFieldError rejects a sort request naming a column the table does
// not have. It is raised before any analysis runs so a typo in a flag
// never costs a full history scan.
type UnknownFieldError struct {
	Field string
	Known []string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown sort field %q (known: %s)", e.Field, strings.Join(e.Known, ", "))
}

// Table is an ordered row set with a stable column schema. Cells hold
// string, int, float64, bool, or time.Time values.
type Table struct {
	Columns []string
	Rows    [][]any
}

// Fields returns the table's column names.
func (t *Table) Fields() []string {
	out := make([]string, len(t.Columns))
	copy(out, t.Columns)
	return out
}

func (t *Table) column(field string) (int, error) {
	for i, c := range t.Columns {
		if c == field {
			return i, nil
		}
	}
	return 0, &UnknownFieldError{Field: field, Known: t.Fields()}
}

// Options selects the ordering and size of the assembled row set. An empty
// SortBy keeps the analyzer's native order.
type Options struct {
	SortBy     string
	Descending bool
	Limit      int
}

// Assemble returns a new table ordered and truncated per the options. The
// input table is not modified. Sorting is stable: rows equal on the sort
// field keep the analyzer's deterministic order.
func Assemble(t *Table, opts Options) (*Table, error) {
	out := &Table{
		Columns: t.Fields(),
		Rows:    make([][]any, len(t.Rows)),
	}
	copy(out.Rows, t.Rows)

	if opts.SortBy != "" {
		col, err := t.column(opts.SortBy)
		if err != nil {
			return nil, err
		}
		sort.SliceStable(out.Rows, func(i, j int) bool {
			less := cellLess(out.Rows[i][col], out.Rows[j][col])
			if opts.Descending {
				return cellLess(out.Rows[j][col], out.Rows[i][col])
			}
			return less
		})
	}

	if opts.Limit > 0 && len(out.Rows) > opts.Limit {
		out.Rows = out.Rows[:opts.Limit]
	}
	return out, nil
}

// cellLess orders two cells of the same column. Columns are homogeneous by
// construction, so only same-type comparisons matter; anything else falls
// back to the rendered form.
func cellLess(a, b any) bool {
	switch av := a.(type) {
	case int:
		if bv, ok := b.(int); ok {
			return av < bv
		}
	case float64:
		if bv, ok := b.(float64); ok {
			return av < bv
		}
	case string:
		if bv, ok := b.(string); ok {
			return av < bv
		}
	case bool:
		if bv, ok := b.(bool); ok {
			return !av && bv
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Before(bv)
		}
	}
	return Format(a) < Format(b)
}

// Format renders one cell for tabular serialization.
func Format(v any) string {
	switch tv := v.(type) {
	case string:
		return tv
	case int:
		return fmt.Sprintf("%d", tv)
	case float64:
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.4f", tv), "0"), ".")
	case bool:
		if tv {
			return "yes"
		}
		return "no"
	case time.Time:
		return tv.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", tv)
	}
}

// Strings renders the whole table as string cells, headers included, for
// formatter collaborators that only understand text.
func (t *Table) Strings() [][]string {
	out := make([][]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = Format(v)
		}
		out = append(out, cells)
	}
	return out
}
