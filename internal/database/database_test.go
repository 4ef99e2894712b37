package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yannaql/yannaql/internal/table"
	"github.com/yannaql/yannaql/internal/term"
)

func fixtureDB() *Database {
	tables := make(map[string]table.Table, len(relationOrder))
	for _, rel := range relationOrder {
		tables[rel] = table.Empty(rel, Schemas[rel])
	}

	return New(tables)
}

func TestGetTableUnknownRelation(t *testing.T) {
	db := fixtureDB()

	_, err := db.GetTable("nonexistent")
	require.Error(t, err)
	assert.ErrorAs(t, err, new(*ErrTableNotFound))
}

func TestCloneIsIndependentOfOriginal(t *testing.T) {
	db := fixtureDB()
	clone := db.Clone()

	renamed, err := clone.GetTable(Beers)
	require.NoError(t, err)

	require.NoError(t, clone.SetTable(Beers, renamed.Rename(0, "x")))

	original, err := db.GetTable(Beers)
	require.NoError(t, err)

	assert.NotEqual(t, "x", original.Schema[0], "mutating a clone must not affect the source database")
}

func TestRenameAppliesVariableNamesByPosition(t *testing.T) {
	db := fixtureDB()

	body := []term.Atom{
		term.NewAtom(Categories, term.Var("catid"), term.Const("'IPA'")),
	}

	require.NoError(t, db.Rename(body))

	t1, err := db.GetTable(Categories)
	require.NoError(t, err)

	assert.Equal(t, []string{"catid", "cat_name"}, t1.Schema, "the constant position keeps its original attribute name")
}

func TestRenameRejectsArityMismatch(t *testing.T) {
	db := fixtureDB()

	body := []term.Atom{
		term.NewAtom(Categories, term.Var("onlyone")),
	}

	err := db.Rename(body)
	assert.Error(t, err)
}

func TestMustSetTablePanicsOnUnknownRelation(t *testing.T) {
	db := fixtureDB()

	assert.Panics(t, func() {
		db.MustSetTable("nope", table.Empty("nope", nil))
	})
}
