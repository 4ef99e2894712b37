// Package table implements the columnar row-batch storage the algebra
// kernel and evaluator operate on: a named, ordered schema of string-typed
// attributes backing an equal-length set of columns.
//
// Grounded on the source Table (one RecordBatch per relation, columns
// addressed by schema position) but built on plain Go string slices rather
// than an Arrow array library: no retrieved Go repo exercises a low-level
// Arrow array-construction or filter API to ground that surface against, so
// fabricating it would mean guessing unobserved signatures. See DESIGN.md
// for the full reasoning.
package table

import "fmt"

// Table is a named ordered sequence of rows over a named, ordered schema of
// string-typed attributes, stored one column per attribute. All columns have
// equal length; that length is the table's row count.
type Table struct {
	Name    string
	Schema  []string
	Columns [][]string
}

// New builds a table from a schema and a parallel slice of columns. It
// panics if the column count does not match the schema width or if any two
// columns disagree in length — both indicate a caller bug, not a runtime
// condition callers can recover from.
func New(name string, schema []string, columns [][]string) Table {
	if len(columns) != len(schema) {
		panic(fmt.Sprintf("table %s: %d columns for %d-attribute schema", name, len(columns), len(schema)))
	}

	n := 0
	if len(columns) > 0 {
		n = len(columns[0])
	}

	for i, col := range columns {
		if len(col) != n {
			panic(fmt.Sprintf("table %s: column %d has %d rows, want %d", name, i, len(col), n))
		}
	}

	return Table{Name: name, Schema: append([]string(nil), schema...), Columns: columns}
}

// Empty builds a zero-row table over schema, used as the merged-schema
// sentinel cartesian_product returns when either input has no rows.
func Empty(name string, schema []string) Table {
	cols := make([][]string, len(schema))
	for i := range cols {
		cols[i] = []string{}
	}

	return New(name, schema, cols)
}

// NumRows returns the row count, taken from the first column (or zero for a
// zero-attribute schema).
func (t Table) NumRows() int {
	if len(t.Columns) == 0 {
		return 0
	}

	return len(t.Columns[0])
}

// NumCols returns the schema width.
func (t Table) NumCols() int { return len(t.Schema) }

// IsEmpty reports whether the table has no rows.
func (t Table) IsEmpty() bool { return t.NumRows() == 0 }

// ColumnIndex returns the position of the first attribute named name, and
// whether one exists. Schema lookups use the first match, matching the
// rename invariant that attribute names are unique after Database.Rename.
func (t Table) ColumnIndex(name string) (int, bool) {
	for i, attr := range t.Schema {
		if attr == name {
			return i, true
		}
	}

	return 0, false
}

// Column returns the column at position i by reference; callers must not
// mutate it in place since columns may be shared with tables derived by
// Rename, Renamed, or ProjectIndices (Clone is the only deep copy).
func (t Table) Column(i int) []string { return t.Columns[i] }

// Row returns the values of row i across all columns, in schema order.
func (t Table) Row(i int) []string {
	row := make([]string, len(t.Columns))
	for c, col := range t.Columns {
		row[c] = col[i]
	}

	return row
}

// Rename returns a copy of t whose schema has position i renamed to name,
// leaving the row data untouched. Table.Rename never mutates the original:
// callers that need in-place replacement go through Database.SetTable.
func (t Table) Rename(i int, name string) Table {
	schema := append([]string(nil), t.Schema...)
	schema[i] = name

	return Table{Name: t.Name, Schema: schema, Columns: t.Columns}
}

// Renamed returns a copy of t with Name set to name, columns unchanged.
func (t Table) Renamed(name string) Table {
	return Table{Name: name, Schema: t.Schema, Columns: t.Columns}
}

// Clone deep-copies t so that later in-place mutation of the copy's columns
// cannot be observed through t.
func (t Table) Clone() Table {
	cols := make([][]string, len(t.Columns))
	for i, col := range t.Columns {
		cols[i] = append([]string(nil), col...)
	}

	return Table{Name: t.Name, Schema: append([]string(nil), t.Schema...), Columns: cols}
}

// Filter applies a boolean mask to every column in bulk, keeping row i iff
// mask[i] is true. len(mask) must equal NumRows().
func (t Table) Filter(mask []bool) Table {
	n := 0

	for _, keep := range mask {
		if keep {
			n++
		}
	}

	cols := make([][]string, len(t.Columns))

	for c, col := range t.Columns {
		out := make([]string, 0, n)

		for i, keep := range mask {
			if keep {
				out = append(out, col[i])
			}
		}

		cols[c] = out
	}

	return Table{Name: t.Name, Schema: t.Schema, Columns: cols}
}

// ProjectIndices builds a new table by selecting columns at the given
// positions, in the order given, renaming the output schema to outSchema.
// Duplicates in indices are allowed and produce duplicate output columns.
func (t Table) ProjectIndices(indices []int, outSchema []string) Table {
	cols := make([][]string, len(indices))
	for i, idx := range indices {
		cols[i] = t.Columns[idx]
	}

	return New(t.Name, outSchema, cols)
}

// RepeatBlocks returns a copy of t with every column concatenated to itself
// `times` times end-to-end, so the original row index advances in blocks of
// size NumRows(). This is cartesian_product's "fast" (right-hand) side.
func (t Table) RepeatBlocks(times int) Table {
	n := t.NumRows()
	cols := make([][]string, len(t.Columns))

	for c, col := range t.Columns {
		out := make([]string, 0, n*times)
		for k := 0; k < times; k++ {
			out = append(out, col...)
		}

		cols[c] = out
	}

	return Table{Name: t.Name, Schema: t.Schema, Columns: cols}
}

// RepeatEach returns a copy of t with every column's values each repeated
// `times` times consecutively, so the original row index advances every
// `times` output rows. This is cartesian_product's "slow" (left-hand) side, matching
// RepeatBlocks's block size on the other operand.
func (t Table) RepeatEach(times int) Table {
	n := t.NumRows()
	cols := make([][]string, len(t.Columns))

	for c, col := range t.Columns {
		out := make([]string, 0, n*times)

		for _, v := range col {
			for k := 0; k < times; k++ {
				out = append(out, v)
			}
		}

		cols[c] = out
	}

	return Table{Name: t.Name, Schema: t.Schema, Columns: cols}
}
