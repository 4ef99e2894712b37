// Package algebra implements the relational algebra kernel the evaluator
// composes into Yannakakis's three passes: selection, projection, Cartesian
// product, theta-join, semi-join, and first-key intersection.
//
// Grounded directly on data_structure/relational_algebra.rs, translated
// from Arrow record-batch operations to the string-column Table in
// internal/table.
package algebra

import (
	"fmt"

	"github.com/yannaql/yannaql/internal/table"
	"github.com/yannaql/yannaql/internal/term"
)

// Select returns the subset of t's rows satisfying atom's constraints: every
// Constant at position i must equal column i's value, and every variable
// repeated at positions p1 < p2 < ... must hold pairwise-equal values across
// those columns. The mask is built once and applied to every column in bulk,
// preserving schema and row order.
func Select(atom term.Atom, t table.Table) table.Table {
	mask := make([]bool, t.NumRows())
	for i := range mask {
		mask[i] = true
	}

	firstIndexOf := make(map[string]int, len(atom.Terms))

	for i, tm := range atom.Terms {
		switch tm.Kind {
		case term.Constant:
			col := t.Column(i)
			for r, v := range col {
				if mask[r] && v != tm.Name {
					mask[r] = false
				}
			}
		case term.Variable:
			first, ok := firstIndexOf[tm.Name]
			if !ok {
				firstIndexOf[tm.Name] = i
				continue
			}

			left, right := t.Column(first), t.Column(i)
			for r := range mask {
				if mask[r] && left[r] != right[r] {
					mask[r] = false
				}
			}
		}
	}

	return t.Filter(mask)
}

// ProjectByVariables projects t onto the named variables only, looking each
// one up by name in t's schema. It is the common case used by the evaluator,
// where the projection list never contains constants.
func ProjectByVariables(names []string, t table.Table) table.Table {
	indices := make([]int, len(names))

	for i, name := range names {
		idx, ok := t.ColumnIndex(name)
		if !ok {
			panic(fmt.Sprintf("project: column %q not found in table %s after rename", name, t.Name))
		}

		indices[i] = idx
	}

	return t.ProjectIndices(indices, append([]string(nil), names...))
}

// CartesianProduct returns the |L|x|R| row combination of l and r, with
// output schema l.Schema followed by r.Schema. If either input is empty the
// result is an empty table over the merged schema. Left values are held
// constant for blocks of |R| consecutive rows; right values cycle once per
// row within each block — a standard row-replicate layout that, unlike a
// naive equal-tiling of both sides, enumerates every pair exactly once
// regardless of the two row counts' GCD.
func CartesianProduct(l, r table.Table) table.Table {
	schema := append(append([]string(nil), l.Schema...), r.Schema...)
	name := l.Name + "_" + r.Name

	if l.IsEmpty() || r.IsEmpty() {
		return table.Empty(name, schema)
	}

	left := l.RepeatEach(r.NumRows()).Renamed(name)
	right := r.RepeatBlocks(l.NumRows()).Renamed(name)

	cols := make([][]string, 0, len(schema))
	cols = append(cols, left.Columns...)
	cols = append(cols, right.Columns...)

	return table.New(name, schema, cols)
}

// Join computes sigma_{merge(left,right)}(L x R) and projects the result
// onto the variables of the ordered union of the two atoms' terms —
// equivalent to a natural join on shared variable names. Constant positions
// are filtered on but not carried into the result.
func Join(left, right term.Atom, l, r table.Table) table.Table {
	product := CartesianProduct(l, r)
	merged := term.Merge(left, right)
	filtered := Select(merged, product)
	union := term.Union(left, right)

	return ProjectByVariables(variableNames(union), filtered)
}

// SemiJoin returns the rows of l that have at least one matching row in r on
// shared variables, projected onto the variable positions of left.Terms
// (pi over left's variables of Join(left, right, l, r)), renamed to left's
// relation name. Columns at left's constant positions are not in the result.
func SemiJoin(left, right term.Atom, l, r table.Table) table.Table {
	joined := Join(left, right, l, r)
	projected := ProjectByVariables(variableNames(left.Terms), joined)

	return projected.Renamed(left.RelationName)
}

// IntersectionByFirstKey returns the rows of a whose column-0 value also
// occurs in b's column 0. It is not a full-row set intersection: it is a
// membership filter on the first column, valid only between tables that are
// both progressive refinements of the same base relation (as is always the
// case in the evaluator's Step 3 fold). Duplicate rows of a are preserved.
func IntersectionByFirstKey(a, b table.Table) table.Table {
	if a.NumCols() == 0 || b.NumCols() == 0 {
		return a
	}

	present := make(map[string]struct{}, b.NumRows())
	for _, v := range b.Column(0) {
		present[v] = struct{}{}
	}

	mask := make([]bool, a.NumRows())

	for i, v := range a.Column(0) {
		_, mask[i] = present[v]
	}

	return a.Filter(mask)
}

// variableNames extracts the Variable names from an ordered term list,
// preserving order. Used when projecting by variable identity only, which
// is the shape every join/semi-join projection in the evaluator needs since
// shared join terms are always variables after rename.
func variableNames(terms []term.Term) []string {
	names := make([]string, 0, len(terms))

	for _, t := range terms {
		if t.IsVariable() {
			names = append(names, t.Name)
		}
	}

	return names
}
