// Package tabular implements the flat table the reshaper produces: ordered
// nullable columns over rows of heterogeneous JSON values. Event rows only
// carry the fields their event type populates, so a cell can be absent;
// absence and null both read back as nil.
package tabular

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
)

// ErrEmptyTable distinguishes "the caller forgot to fetch data first" from a
// legitimately small result: operations that would produce zero rows fail
// with this instead of returning an empty table.
var ErrEmptyTable = errors.New("table has no rows")

// Row maps column name to cell value. Values are whatever JSON decoding
// produced: float64, string, bool, nil, []any, or map[string]any.
type Row map[string]any

// Table is an ordered set of columns over rows. Columns appear in order of
// first observation; rows for event types lacking a column simply omit it.
type Table struct {
	Columns []string
	Rows    []Row

	colSet map[string]bool
}

// New returns an empty table.
func New() *Table {
	return &Table{colSet: make(map[string]bool)}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// addColumn registers a column if unseen, preserving first-appearance order.
func (t *Table) addColumn(name string) {
	if t.colSet == nil {
		t.colSet = make(map[string]bool)
	}
	if !t.colSet[name] {
		t.colSet[name] = true
		t.Columns = append(t.Columns, name)
	}
}

// AddColumn declares a column without adding any rows. Cells under it read
// as nil until a row sets them.
func (t *Table) AddColumn(name string) {
	t.addColumn(name)
}

// Append adds a row. order lists the row's keys in the order they should
// claim new columns; keys present in the row but missing from order are
// appended sorted, so column layout stays deterministic.
func (t *Table) Append(row Row, order []string) {
	seen := make(map[string]bool, len(order))
	for _, k := range order {
		if _, ok := row[k]; ok {
			t.addColumn(k)
			seen[k] = true
		}
	}

	var rest []string
	for k := range row {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		t.addColumn(k)
	}

	t.Rows = append(t.Rows, row)
}

// Get returns the cell at (row, column); absent cells read as nil.
func (t *Table) Get(row int, column string) any {
	if row < 0 || row >= len(t.Rows) {
		return nil
	}
	return t.Rows[row][column]
}

// KeyString normalises a join-key cell to a comparable string. JSON numbers
// decode as float64; integral ones print without a fraction so they match
// across tables.
func KeyString(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case bool:
		return strconv.FormatBool(x), true
	case float64:
		if x == float64(int64(x)) {
			return strconv.FormatInt(int64(x), 10), true
		}
		return strconv.FormatFloat(x, 'g', -1, 64), true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	default:
		return fmt.Sprintf("%v", x), true
	}
}

// joinIndex buckets right-table row indices by key value.
func joinIndex(right *Table, rightKey string) map[string][]int {
	idx := make(map[string][]int)
	for i, row := range right.Rows {
		if k, ok := KeyString(row[rightKey]); ok {
			idx[k] = append(idx[k], i)
		}
	}
	return idx
}

// rightColumnNames maps each right column to its output name: unchanged when
// it does not collide with a left column, suffixed otherwise. Each of the
// four participant joins uses a distinct suffix so no information is
// overwritten.
func rightColumnNames(left, right *Table, suffix string) map[string]string {
	names := make(map[string]string, len(right.Columns))
	for _, c := range right.Columns {
		if left.colSet[c] {
			names[c] = c + suffix
		} else {
			names[c] = c
		}
	}
	return names
}

// LeftJoin joins right onto t matching t[leftKey] == right[rightKey].
// Every left row is kept; rows whose key is absent or unmatched carry no
// right-side cells (they read back nil). Right columns colliding with an
// existing column are renamed with suffix.
func (t *Table) LeftJoin(right *Table, leftKey, rightKey, suffix string) *Table {
	idx := joinIndex(right, rightKey)
	names := rightColumnNames(t, right, suffix)

	out := New()
	for _, leftRow := range t.Rows {
		matches := []int(nil)
		if k, ok := KeyString(leftRow[leftKey]); ok {
			matches = idx[k]
		}

		if len(matches) == 0 {
			out.Append(cloneRow(leftRow), t.Columns)
			continue
		}
		for _, ri := range matches {
			row := cloneRow(leftRow)
			for _, c := range right.Columns {
				if v, ok := right.Rows[ri][c]; ok {
					row[names[c]] = v
				}
			}
			out.Append(row, joinedOrder(t.Columns, right.Columns, names))
		}
	}

	// Unmatched-only outputs still declare the joined column set.
	for _, c := range joinedOrder(t.Columns, right.Columns, names) {
		out.addColumn(c)
	}

	return out
}

// InnerJoin joins right onto t, dropping left rows without a match.
func (t *Table) InnerJoin(right *Table, leftKey, rightKey, suffix string) *Table {
	idx := joinIndex(right, rightKey)
	names := rightColumnNames(t, right, suffix)

	out := New()
	for _, leftRow := range t.Rows {
		k, ok := KeyString(leftRow[leftKey])
		if !ok {
			continue
		}
		for _, ri := range idx[k] {
			row := cloneRow(leftRow)
			for _, c := range right.Columns {
				if v, ok := right.Rows[ri][c]; ok {
					row[names[c]] = v
				}
			}
			out.Append(row, joinedOrder(t.Columns, right.Columns, names))
		}
	}

	return out
}

// Partition splits the table into one sub-table per distinct value of
// column, each re-indexed from zero with the parent's column layout.
func (t *Table) Partition(column string) (map[string]*Table, error) {
	if t.Len() == 0 {
		return nil, ErrEmptyTable
	}

	groups := make(map[string]*Table)
	for _, row := range t.Rows {
		k, ok := KeyString(row[column])
		if !ok {
			continue
		}
		sub, exists := groups[k]
		if !exists {
			sub = New()
			for _, c := range t.Columns {
				sub.addColumn(c)
			}
			groups[k] = sub
		}
		sub.Rows = append(sub.Rows, cloneRow(row))
	}
	return groups, nil
}

func cloneRow(row Row) Row {
	out := make(Row, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}

// joinedOrder is the column order after a join: left columns first, then
// right columns under their (possibly suffixed) output names.
func joinedOrder(left, right []string, names map[string]string) []string {
	order := make([]string, 0, len(left)+len(right))
	order = append(order, left...)
	for _, c := range right {
		order = append(order, names[c])
	}
	return order
}
