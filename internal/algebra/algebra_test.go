package algebra

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yannaql/yannaql/internal/table"
	"github.com/yannaql/yannaql/internal/term"
)

func breweriesFixture() table.Table {
	// brew_id, brew_name -- row 2 has brew_id == brew_name on purpose so a
	// repeated-variable select (scenario S6) has something to find.
	return table.New("breweries", []string{"brew_id", "brew_name"}, [][]string{
		{"1", "dup", "3"},
		{"alpha", "dup", "gamma"},
	})
}

func TestSelectConstantConstraint(t *testing.T) {
	atom := term.NewAtom("breweries", term.Var("x"), term.Const("dup"))

	out := Select(atom, breweriesFixture())

	require.Equal(t, 1, out.NumRows())
	assert.Equal(t, "dup", out.Row(0)[0])
}

func TestSelectRepeatedVariableConstraint(t *testing.T) {
	// Answer():-breweries(x,x). -- only the row where brew_id == brew_name
	// survives (scenario S6).
	atom := term.NewAtom("breweries", term.Var("x"), term.Var("x"))

	out := Select(atom, breweriesFixture())

	require.Equal(t, 1, out.NumRows())
	assert.Equal(t, []string{"dup", "dup"}, out.Row(0))
}

func TestSelectIsIdempotent(t *testing.T) {
	atom := term.NewAtom("breweries", term.Var("x"), term.Const("dup"))
	tbl := breweriesFixture()

	once := Select(atom, tbl)
	twice := Select(atom, once)

	assert.Equal(t, once.Columns, twice.Columns)
}

func TestCartesianProductRowCount(t *testing.T) {
	left := table.New("l", []string{"a"}, [][]string{{"1", "2", "3"}})
	right := table.New("r", []string{"b"}, [][]string{{"x", "y"}})

	out := CartesianProduct(left, right)

	// 3 x 2 = 6 rows. gcd(3,2) = 1, so this pair would not expose a naive
	// equal-tiling bug; the gcd > 1 case is covered by
	// TestCartesianProductEnumeratesEveryPairWhenGCDIsNotOne.
	assert.Equal(t, 6, out.NumRows())
	assert.Equal(t, []string{"a", "b"}, out.Schema)
}

func TestCartesianProductEnumeratesEveryPairWhenGCDIsNotOne(t *testing.T) {
	left := table.New("l", []string{"a"}, [][]string{{"1", "2", "3", "4"}})
	right := table.New("r", []string{"b"}, [][]string{{"x", "y"}})

	out := CartesianProduct(left, right)

	require.Equal(t, 8, out.NumRows())

	seen := make(map[string]bool)
	for i := 0; i < out.NumRows(); i++ {
		row := out.Row(i)
		seen[row[0]+"/"+row[1]] = true
	}

	assert.Len(t, seen, 8, "every (left, right) pair must appear exactly once")
}

func TestCartesianProductWithEmptySide(t *testing.T) {
	left := table.New("l", []string{"a"}, [][]string{{"1"}})
	right := table.Empty("r", []string{"b"})

	out := CartesianProduct(left, right)

	assert.True(t, out.IsEmpty())
	assert.Equal(t, []string{"a", "b"}, out.Schema)
}

func TestJoinOnSharedVariable(t *testing.T) {
	beers := term.NewAtom("beers", term.Var("bid"), term.Var("name"))
	locations := term.NewAtom("locations", term.Var("bid"), term.Var("lat"))

	beersTable := table.New("beers", []string{"bid", "name"}, [][]string{
		{"1", "2"},
		{"Ale", "Lager"},
	})
	locationsTable := table.New("locations", []string{"bid", "lat"}, [][]string{
		{"1", "1", "3"},
		{"10.0", "11.0", "30.0"},
	})

	out := Join(beers, locations, beersTable, locationsTable)

	require.Equal(t, []string{"bid", "name", "lat"}, out.Schema)
	require.Equal(t, 2, out.NumRows(), "bid=1 matches two location rows; bid=2 and bid=3 do not line up")
}

func TestJoinIsCommutativeUpToColumnOrder(t *testing.T) {
	left := term.NewAtom("beers", term.Var("bid"), term.Var("name"))
	right := term.NewAtom("locations", term.Var("bid"), term.Var("lat"))

	beersTable := table.New("beers", []string{"bid", "name"}, [][]string{{"1", "2"}, {"Ale", "Lager"}})
	locationsTable := table.New("locations", []string{"bid", "lat"}, [][]string{{"1", "2"}, {"10.0", "11.0"}})

	lr := Join(left, right, beersTable, locationsTable)
	rl := Join(right, left, locationsTable, beersTable)

	assert.ElementsMatch(t, rowSet(lr, []string{"bid", "name", "lat"}), rowSet(rl, []string{"bid", "name", "lat"}))
}

func TestSemiJoinKeepsOnlyMatchingLeftRows(t *testing.T) {
	left := term.NewAtom("beers", term.Var("bid"), term.Var("name"))
	right := term.NewAtom("locations", term.Var("bid"))

	beersTable := table.New("beers", []string{"bid", "name"}, [][]string{{"1", "2"}, {"Ale", "Lager"}})
	locationsTable := table.New("locations", []string{"bid"}, [][]string{{"1"}})

	out := SemiJoin(left, right, beersTable, locationsTable)

	require.Equal(t, 1, out.NumRows())
	assert.Equal(t, "Ale", out.Row(0)[1])
	assert.Equal(t, "beers", out.Name, "semi_join renames its result to the left atom's relation")
}

func TestCartesianProductMatchesExpectedTableStructurally(t *testing.T) {
	left := table.New("l", []string{"a"}, [][]string{{"1", "2"}})
	right := table.New("r", []string{"b"}, [][]string{{"x", "y"}})

	out := CartesianProduct(left, right)

	want := table.New("l_r", []string{"a", "b"}, [][]string{
		{"1", "1", "2", "2"},
		{"x", "y", "x", "y"},
	})

	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("CartesianProduct() mismatch (-want +got):\n%s", diff)
	}
}

func TestIntersectionByFirstKey(t *testing.T) {
	a := table.New("a", []string{"k"}, [][]string{{"1", "2", "3"}})
	b := table.New("b", []string{"k"}, [][]string{{"2", "3", "3"}})

	out := IntersectionByFirstKey(a, b)

	assert.Equal(t, []string{"2", "3"}, out.Column(0))
}

// rowSet extracts each row projected onto cols, for order-independent
// comparison between two column-reordered results.
func rowSet(t table.Table, cols []string) []string {
	indices := make([]int, len(cols))

	for i, c := range cols {
		idx, _ := t.ColumnIndex(c)
		indices[i] = idx
	}

	var out []string

	for r := 0; r < t.NumRows(); r++ {
		row := t.Row(r)

		key := ""
		for _, idx := range indices {
			key += row[idx] + "|"
		}

		out = append(out, key)
	}

	sort.Strings(out)

	return out
}
