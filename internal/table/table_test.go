package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFixture() Table {
	return New("beers", []string{"id", "name"}, [][]string{
		{"1", "2", "3"},
		{"ale", "lager", "stout"},
	})
}

func TestNewPanicsOnSchemaMismatch(t *testing.T) {
	assert.Panics(t, func() {
		New("t", []string{"a", "b"}, [][]string{{"1"}})
	})
}

func TestNewPanicsOnUnequalColumnLengths(t *testing.T) {
	assert.Panics(t, func() {
		New("t", []string{"a", "b"}, [][]string{{"1", "2"}, {"1"}})
	})
}

func TestRowAndNumRows(t *testing.T) {
	tbl := newFixture()

	require.Equal(t, 3, tbl.NumRows())
	assert.Equal(t, []string{"2", "lager"}, tbl.Row(1))
}

func TestFilterKeepsMaskedRows(t *testing.T) {
	tbl := newFixture()

	out := tbl.Filter([]bool{true, false, true})

	require.Equal(t, 2, out.NumRows())
	assert.Equal(t, []string{"1", "3"}, out.Column(0))
	assert.Equal(t, []string{"ale", "stout"}, out.Column(1))
}

func TestCloneIsIndependent(t *testing.T) {
	tbl := newFixture()
	clone := tbl.Clone()

	clone.Columns[0][0] = "mutated"

	assert.Equal(t, "1", tbl.Column(0)[0], "mutating a clone's column must not affect the original")
}

func TestRenameOnlyTouchesOnePosition(t *testing.T) {
	tbl := newFixture()

	renamed := tbl.Rename(0, "beer_id")

	assert.Equal(t, []string{"beer_id", "name"}, renamed.Schema)
	assert.Equal(t, []string{"id", "name"}, tbl.Schema, "Rename must not mutate the receiver")
}

func TestRepeatEachAndRepeatBlocksMatchBlockSize(t *testing.T) {
	tbl := New("t", []string{"v"}, [][]string{{"a", "b"}})

	each := tbl.RepeatEach(3)
	blocks := tbl.RepeatBlocks(3)

	assert.Equal(t, []string{"a", "a", "a", "b", "b", "b"}, each.Column(0))
	assert.Equal(t, []string{"a", "b", "a", "b", "a", "b"}, blocks.Column(0))
}

func TestColumnIndexReportsMissingAttribute(t *testing.T) {
	tbl := newFixture()

	_, ok := tbl.ColumnIndex("nonexistent")
	assert.False(t, ok)

	idx, ok := tbl.ColumnIndex("name")
	require.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestEmptyBuildsZeroRowTable(t *testing.T) {
	empty := Empty("t", []string{"x", "y"})

	assert.True(t, empty.IsEmpty())
	assert.Equal(t, 2, empty.NumCols())
}
