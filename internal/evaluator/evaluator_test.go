package evaluator

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yannaql/yannaql/internal/database"
	"github.com/yannaql/yannaql/internal/table"
	"github.com/yannaql/yannaql/internal/term"
)

// smallDB builds a miniature instance of the fixed five-relation schema,
// small enough to hand-verify the expected join results.
func smallDB() *database.Database {
	tables := map[string]table.Table{
		database.Beers: table.New(database.Beers, database.Schemas[database.Beers], [][]string{
			{"b1", "b2"},              // beer_id
			{"w1", "w2"},              // brew_id
			{"Tripel", "Lager"},       // beer
			{"0.09", "0.05"},          // abv
			{"30", "18"},              // ibu
			{"12", "12"},              // ounces
			{"Belgian", "Vienna Lager"}, // style
			{"Strong", "Lager2"},      // style2
		}),
		database.Breweries: table.New(database.Breweries, database.Schemas[database.Breweries], [][]string{
			{"w1", "w2"},           // brew_id
			{"Westmalle", "Snake"}, // brew_name
			{"a1", "a2"},           // address1
			{"", ""},               // address2
			{"c1", "c2"},           // city
			{"s1", "s2"},           // state
			{"", ""},               // code
			{"BE", "US"},           // country
			{"", ""},               // phone
			{"", ""},               // website
			{"", ""},               // description
		}),
		database.Categories: table.New(database.Categories, database.Schemas[database.Categories], [][]string{
			{"c1", "c2"},
			{"Trappist", "Lager"},
		}),
		database.Locations: table.New(database.Locations, database.Schemas[database.Locations], [][]string{
			{"l1", "l2"},         // loc_id
			{"w1", "w2"},         // brew_id
			{"51.0", "50.7428"},  // latitude
			{"4.0", "3.6875"},    // longitude
			{"EXACT", "RANGE_INTERPOLATED"}, // accuracy
		}),
		database.Styles: table.New(database.Styles, database.Schemas[database.Styles], [][]string{
			{"st1", "st2"},
			{"c1", "c2"},
			{"Belgian", "Vienna Lager"},
		}),
	}

	return database.New(tables)
}

func TestEvaluateColumnQueryJoinsAcrossRelations(t *testing.T) {
	e := New(nil)

	// Answer(x,y,z,w):-beers(u1,v,x,'0.05','18',u2,'Vienna Lager',u3),
	//                  locations(u4,v,y,z,w). -- scenario S3 shape.
	q := term.Query{
		Head: term.NewAtom(term.HeadRelation, term.Var("x"), term.Var("y"), term.Var("z"), term.Var("w")),
		Body: []term.Atom{
			term.NewAtom(database.Beers,
				term.Var("u1"), term.Var("v"), term.Var("x"),
				term.Const("0.05"), term.Const("18"), term.Var("u2"),
				term.Const("Vienna Lager"), term.Var("u3")),
			term.NewAtom(database.Locations,
				term.Var("u4"), term.Var("v"), term.Var("y"), term.Var("z"), term.Var("w")),
		},
	}

	res, err := e.Evaluate(q, smallDB())
	require.NoError(t, err)

	assert.True(t, res.Acyclic)
	require.Equal(t, 1, res.Answer.NumRows())
	assert.Equal(t, []string{"Lager", "50.7428", "3.6875", "RANGE_INTERPOLATED"}, res.Answer.Row(0))
}

func TestEvaluateBooleanQuery(t *testing.T) {
	e := New(nil)

	q := term.Query{
		Head: term.NewAtom(term.HeadRelation),
		Body: []term.Atom{
			term.NewAtom(database.Beers,
				term.Var("u1"), term.Var("v"), term.Var("u2"),
				term.Const("0.09"), term.Var("u3"), term.Var("u4"), term.Var("u5"), term.Var("u6")),
			term.NewAtom(database.Breweries,
				term.Var("v"), term.Var("u7"), term.Var("u8"), term.Var("u9"), term.Var("u10"),
				term.Var("u11"), term.Var("u12"), term.Var("u13"), term.Var("u14"), term.Var("u15"), term.Var("u16")),
		},
	}

	res, err := e.Evaluate(q, smallDB())
	require.NoError(t, err)

	require.NotNil(t, res.Boolean)
	assert.True(t, *res.Boolean, "a beer with abv 0.09 exists and joins to a brewery")
}

func TestEvaluateBooleanQueryFalseWhenNoMatch(t *testing.T) {
	e := New(nil)

	q := term.Query{
		Head: term.NewAtom(term.HeadRelation),
		Body: []term.Atom{
			term.NewAtom(database.Beers,
				term.Var("u1"), term.Var("v"), term.Var("u2"),
				term.Const("0.99"), term.Var("u3"), term.Var("u4"), term.Var("u5"), term.Var("u6")),
		},
	}

	res, err := e.Evaluate(q, smallDB())
	require.NoError(t, err)

	require.NotNil(t, res.Boolean)
	assert.False(t, *res.Boolean)
}

func TestEvaluateCyclicQueryReturnsEmptyResult(t *testing.T) {
	e := New(nil)

	q := term.Query{
		Head: term.NewAtom(term.HeadRelation, term.Var("x")),
		Body: []term.Atom{
			term.NewAtom("r", term.Var("x"), term.Var("y")),
			term.NewAtom("s", term.Var("y"), term.Var("z")),
			term.NewAtom("t", term.Var("z"), term.Var("x")),
		},
	}

	db := database.New(map[string]table.Table{
		"r": table.Empty("r", []string{"a", "b"}),
		"s": table.Empty("s", []string{"a", "b"}),
		"t": table.Empty("t", []string{"a", "b"}),
	})

	res, err := e.Evaluate(q, db)
	require.NoError(t, err)

	assert.False(t, res.Acyclic)
	assert.True(t, res.Answer.IsEmpty())
}

func TestEvaluateIsAnswerPreservingAgainstNaiveJoin(t *testing.T) {
	e := New(nil)

	q := term.Query{
		Head: term.NewAtom(term.HeadRelation, term.Var("name"), term.Var("cat")),
		Body: []term.Atom{
			term.NewAtom(database.Breweries,
				term.Var("w"), term.Var("name"), term.Var("u1"), term.Var("u2"), term.Var("u3"),
				term.Var("u4"), term.Var("u5"), term.Var("cat"), term.Var("u7"), term.Var("u8"), term.Var("u9")),
			term.NewAtom(database.Beers,
				term.Var("u10"), term.Var("w"), term.Var("u11"), term.Var("u12"), term.Var("u13"),
				term.Var("u14"), term.Var("u15"), term.Var("u16")),
		},
	}

	db := smallDB()

	res, err := e.Evaluate(q, db)
	require.NoError(t, err)

	naive := naiveJoin(t, db)

	assert.ElementsMatch(t, naive, rowStrings(res.Answer))
}

// naiveJoin computes the expected answer via an unoptimized nested loop over
// every combination of rows in the body relations, for cross-checking the
// Yannakakis result without trusting any of the production code under test.
// It is hardcoded to the breweries-join-beers shape of the test above, not a
// general reference evaluator.
func naiveJoin(t *testing.T, db *database.Database) []string {
	t.Helper()

	breweries, err := db.GetTable(database.Breweries)
	require.NoError(t, err)

	beers, err := db.GetTable(database.Beers)
	require.NoError(t, err)

	var out []string

	for bi := 0; bi < breweries.NumRows(); bi++ {
		brow := breweries.Row(bi)
		for ki := 0; ki < beers.NumRows(); ki++ {
			krow := beers.Row(ki)
			if brow[0] != krow[1] { // brew_id join
				continue
			}

			out = append(out, brow[1]+"|"+brow[7]) // name | country stands in for "cat" in this fixture
		}
	}

	return out
}

func rowStrings(t table.Table) []string {
	var out []string

	for r := 0; r < t.NumRows(); r++ {
		row := t.Row(r)
		out = append(out, row[0]+"|"+row[1])
	}

	sort.Strings(out)

	return out
}
