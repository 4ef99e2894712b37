// Package database holds the fixed five-relation schema the evaluator reads
// from and mutates a working copy of: beers, breweries, categories,
// locations, and styles.
//
// Grounded on data_structure/database.rs's
// Database{beers,breweries,categories,locations,styles}, rename, and
// set_table/get_table panicking on an unknown relation, restyled as a
// small value-type API (see DESIGN.md).
package database

import (
	"fmt"

	"github.com/yannaql/yannaql/internal/table"
	"github.com/yannaql/yannaql/internal/term"
)

// Beers, Breweries, Categories, Locations, and Styles are the five relation
// names the schema fixes; atoms naming any other relation are rejected.
const (
	Beers      = "beers"
	Breweries  = "breweries"
	Categories = "categories"
	Locations  = "locations"
	Styles     = "styles"
)

// Schemas gives the fixed initial column order for each relation, per the
// external interface the demo CSVs are loaded against.
//
//nolint:gochecknoglobals
var Schemas = map[string][]string{
	Beers:      {"beer_id", "brew_id", "beer", "abv", "ibu", "ounces", "style", "style2"},
	Breweries:  {"brew_id", "brew_name", "address1", "address2", "city", "state", "code", "country", "phone", "website", "description"},
	Categories: {"cat_id", "cat_name"},
	Locations:  {"loc_id", "brew_id", "latitude", "longitude", "accuracy"},
	Styles:     {"style_id", "cat_id", "style"},
}

// relationOrder fixes the iteration order used anywhere the five relations
// must be visited deterministically (e.g. LoadCSV, LoadPostgres,
// RelationNames).
//
//nolint:gochecknoglobals
var relationOrder = []string{Beers, Breweries, Categories, Locations, Styles}

// ErrTableNotFound is returned (wrapped with the offending relation name)
// when an atom names a relation outside the fixed schema. Per the error
// handling design this is fatal: the evaluator aborts rather than trying to
// recover.
type ErrTableNotFound struct {
	Relation string
}

func (e *ErrTableNotFound) Error() string {
	return fmt.Sprintf("table not found: %q is not one of beers, breweries, categories, locations, styles", e.Relation)
}

// Database is a total mapping from the five fixed relation names to their
// Table. It is created once from CSV (or an optional live Postgres source)
// and is never observably mutated by the evaluator, which operates on a
// Clone.
type Database struct {
	tables map[string]table.Table
}

// New builds a Database from a complete set of tables, one per fixed
// relation name.
func New(tables map[string]table.Table) *Database {
	d := &Database{tables: make(map[string]table.Table, len(tables))}
	for k, v := range tables {
		d.tables[k] = v
	}

	return d
}

// GetTable returns the table for relation, or an ErrTableNotFound error if
// relation is not one of the fixed five.
func (d *Database) GetTable(relation string) (table.Table, error) {
	t, ok := d.tables[relation]
	if !ok {
		return table.Table{}, &ErrTableNotFound{Relation: relation}
	}

	return t, nil
}

// SetTable replaces relation's row data in place, preserving the slot's
// identity (the map key) but not the previous Table value.
func (d *Database) SetTable(relation string, t table.Table) error {
	if _, ok := d.tables[relation]; !ok {
		return &ErrTableNotFound{Relation: relation}
	}

	d.tables[relation] = t

	return nil
}

// MustSetTable is SetTable for callers that have already validated relation
// against the fixed schema (e.g. the evaluator, which only ever derives
// relation from a join-tree node it built from db's own body atoms); it
// panics on ErrTableNotFound instead of threading the error through every
// traversal step.
func (d *Database) MustSetTable(relation string, t table.Table) {
	if err := d.SetTable(relation, t); err != nil {
		panic(err)
	}
}

// Clone deep-copies the database so the evaluator can freely mutate the
// copy without the input Database being observably affected.
func (d *Database) Clone() *Database {
	out := &Database{tables: make(map[string]table.Table, len(d.tables))}
	for k, v := range d.tables {
		out.tables[k] = v.Clone()
	}

	return out
}

// Rename mutates the clone's table schemas so that, for every body atom,
// position i of the corresponding table's schema is named v iff
// atom.Terms[i] is Variable(v); positions holding a Constant keep their
// original attribute name. When the same relation appears in more than one
// body atom, later atoms win — this is the behavior the original
// implementation exhibits and is flagged (not fixed) as a caller hazard in
// SPEC_FULL.md §4.4.
func (d *Database) Rename(body []term.Atom) error {
	for _, atom := range body {
		t, err := d.GetTable(atom.RelationName)
		if err != nil {
			return err
		}

		if len(atom.Terms) != t.NumCols() {
			return fmt.Errorf("rename: atom %s has arity %d, table %s has %d columns",
				atom.Key(), len(atom.Terms), atom.RelationName, t.NumCols())
		}

		for i, tm := range atom.Terms {
			if tm.IsVariable() {
				t = t.Rename(i, tm.Name)
			}
		}

		if err := d.SetTable(atom.RelationName, t); err != nil {
			return err
		}
	}

	return nil
}

// RelationNames returns the fixed relation names in a stable order.
func RelationNames() []string {
	return append([]string(nil), relationOrder...)
}
