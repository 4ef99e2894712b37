// Package evaluator drives the Yannakakis algorithm end to end: rename,
// acyclicity check, join-tree construction, the bottom-up/top-down
// semi-join passes, the bottom-up join pass, and the final projection onto
// the query's head.
//
// Grounded on Query::yannakakis /
// yannakakis_boolean / remove_dangling_tuple_post_order /
// remove_dangling_tuple_pre_order in data_structure/query.rs, restructured
// as a standalone orchestration type holding no mutable state beyond its
// logger, exposing one entry-point method per query shape that fans out
// into private per-phase helpers.
package evaluator

import (
	"log/slog"

	"github.com/yannaql/yannaql/internal/algebra"
	"github.com/yannaql/yannaql/internal/database"
	"github.com/yannaql/yannaql/internal/hypergraph"
	"github.com/yannaql/yannaql/internal/jointree"
	"github.com/yannaql/yannaql/internal/logger"
	"github.com/yannaql/yannaql/internal/table"
	"github.com/yannaql/yannaql/internal/term"
)

// Evaluator runs Yannakakis evaluations against a Database. It holds no
// per-query state; every call to Evaluate or EvaluateBoolean operates on a
// fresh clone of the database it is given.
type Evaluator struct {
	log *slog.Logger
}

// New builds an Evaluator. A nil logger falls back to the package logger.
func New(log *slog.Logger) *Evaluator {
	if log == nil {
		log = logger.Get()
	}

	return &Evaluator{log: log}
}

// Result is the outcome of evaluating a query: the acyclicity verdict, the
// optional boolean answer (only set for boolean queries), and the answer
// table (only populated for non-boolean queries).
type Result struct {
	Acyclic bool
	Boolean *bool
	Answer  table.Table
}

// Evaluate runs the full algorithm for query against db, returning a single
// result table whose schema matches query.Head.Terms in order. For a boolean
// query it runs the same Step-3-only check as EvaluateBoolean, reports the
// verdict in Result.Boolean, and leaves Answer as a zero-column table.
func (e *Evaluator) Evaluate(query term.Query, db *database.Database) (Result, error) {
	working := db.Clone()

	if err := working.Rename(query.Body); err != nil {
		return Result{}, err
	}

	acyclic := isAcyclicBody(query.Body)

	if query.IsBoolean() {
		answer, err := e.evaluateBooleanOn(query, working, acyclic)
		if err != nil {
			return Result{}, err
		}

		return Result{Acyclic: acyclic, Boolean: &answer}, nil
	}

	if !acyclic {
		logger.ForQuery(e.log, query).Warn("cyclic query, returning empty result")

		return Result{Acyclic: false, Answer: table.Empty(term.HeadRelation, headSchema(query.Head))}, nil
	}

	tree, ok := jointree.Construct(query.Body)
	if !ok {
		// isAcyclicBody and jointree.Construct run the identical ear
		// reduction; disagreement signals a bug, not a cyclic query.
		panic("evaluator: is_acyclic reported true but join tree construction failed")
	}

	q := e.bottomUpSemiJoin(working, tree)

	root := tree.Root()

	rootTable, err := q.GetTable(root.RelationName)
	if err != nil {
		return Result{}, err
	}

	if rootTable.IsEmpty() {
		return Result{Acyclic: true, Answer: table.Empty(term.HeadRelation, headSchema(query.Head))}, nil
	}

	a := e.topDownSemiJoin(q, tree)
	o := e.bottomUpJoin(a, tree, query.Head)

	oRoot, err := o.GetTable(root.RelationName)
	if err != nil {
		return Result{}, err
	}

	answer := algebra.ProjectByVariables(headVariableNames(query.Head), oRoot).Renamed(term.HeadRelation)

	return Result{Acyclic: true, Answer: answer}, nil
}

// EvaluateBoolean runs only Step 3 (the bottom-up semi-join pass) and
// reports whether the root's table is nonempty; Steps 4-6 are skipped. It
// gives the same verdict Evaluate reports in Result.Boolean.
func (e *Evaluator) EvaluateBoolean(query term.Query, db *database.Database) (bool, error) {
	working := db.Clone()

	if err := working.Rename(query.Body); err != nil {
		return false, err
	}

	return e.evaluateBooleanOn(query, working, isAcyclicBody(query.Body))
}

func (e *Evaluator) evaluateBooleanOn(query term.Query, working *database.Database, acyclic bool) (bool, error) {
	if !acyclic {
		return false, nil
	}

	tree, ok := jointree.Construct(query.Body)
	if !ok {
		panic("evaluator: is_acyclic reported true but join tree construction failed")
	}

	q := e.bottomUpSemiJoin(working, tree)

	rootTable, err := q.GetTable(tree.Root().RelationName)
	if err != nil {
		return false, err
	}

	return !rootTable.IsEmpty(), nil
}

// bottomUpSemiJoin is Step 3: Q starts as a clone of working and is
// visited in post-order (a node is ready once every child is processed).
// Leaves are simply selected; internal nodes additionally fold
// intersection_by_first_key(select(s), semi_join(s, c, ...)) over their
// children, in deterministic relation-name order so the result does not
// depend on the join tree's unordered child set.
func (e *Evaluator) bottomUpSemiJoin(working *database.Database, tree *jointree.JoinTree) *database.Database {
	q := working.Clone()

	remaining := tree.Nodes()

	for len(remaining) > 0 {
		node, ok := tree.FindNodeWithNoChildIn(remaining)
		if !ok {
			panic("evaluator: post-order traversal stalled with nodes remaining")
		}

		remaining = removeAtom(remaining, node)

		nodeTable, err := q.GetTable(node.RelationName)
		if err != nil {
			panic(err)
		}

		qs := algebra.Select(node, nodeTable)

		for _, child := range tree.Children(node) {
			childTable, err := q.GetTable(child.RelationName)
			if err != nil {
				panic(err)
			}

			sj := algebra.SemiJoin(node, child, qs, childTable)
			qs = algebra.IntersectionByFirstKey(qs, sj)
		}

		if err := q.SetTable(node.RelationName, qs); err != nil {
			panic(err)
		}
	}

	return q
}

// topDownSemiJoin is Step 4: A starts as a clone of Q with the root
// untouched, visited in pre-order (a node is ready once its parent is
// processed). Each child's table is replaced by the rows of Q[child] that
// survive semi_join(child, parent, Q[child], A[parent]), matched by first
// column as in Step 3, so A[child] keeps Q[child]'s full positional schema
// for Step 5's joins.
func (e *Evaluator) topDownSemiJoin(q *database.Database, tree *jointree.JoinTree) *database.Database {
	a := q.Clone()

	remaining := tree.Nodes()

	for len(remaining) > 0 {
		node, ok := tree.FindNodeWithNoParentIn(remaining)
		if !ok {
			panic("evaluator: pre-order traversal stalled with nodes remaining")
		}

		remaining = removeAtom(remaining, node)

		parentTable, err := a.GetTable(node.RelationName)
		if err != nil {
			panic(err)
		}

		for _, child := range tree.Children(node) {
			childQTable, err := q.GetTable(child.RelationName)
			if err != nil {
				panic(err)
			}

			sj := algebra.SemiJoin(child, node, childQTable, parentTable)
			a.MustSetTable(child.RelationName, algebra.IntersectionByFirstKey(childQTable, sj))
		}
	}

	return a
}

// bottomUpJoin is Step 5: O starts as a clone of A, visited in post-order.
// Each internal node folds join(s, c, O[s], O[c]) over its children,
// projecting back onto union(s.terms, head.terms) after every fold so the
// accumulated join never carries more columns than the rest of the tree
// still needs.
func (e *Evaluator) bottomUpJoin(a *database.Database, tree *jointree.JoinTree, head term.Atom) *database.Database {
	o := a.Clone()

	remaining := tree.Nodes()

	for len(remaining) > 0 {
		node, ok := tree.FindNodeWithNoChildIn(remaining)
		if !ok {
			panic("evaluator: post-order traversal stalled with nodes remaining")
		}

		remaining = removeAtom(remaining, node)

		if tree.IsLeaf(node) {
			continue
		}

		sTable, err := o.GetTable(node.RelationName)
		if err != nil {
			panic(err)
		}

		keep := keepVariables(node, head)

		for _, child := range tree.Children(node) {
			cTable, err := o.GetTable(child.RelationName)
			if err != nil {
				panic(err)
			}

			joined := algebra.Join(node, child, sTable, cTable)
			sTable = algebra.ProjectByVariables(keep, joined).Renamed(node.RelationName)
		}

		o.MustSetTable(node.RelationName, sTable)
	}

	return o
}

func isAcyclicBody(body []term.Atom) bool {
	return hypergraph.IsAcyclic(body)
}

func removeAtom(atoms []term.Atom, target term.Atom) []term.Atom {
	out := atoms[:0]

	for _, a := range atoms {
		if !a.Equal(target) {
			out = append(out, a)
		}
	}

	return out
}

// headSchema is the output schema for a non-boolean query: the head's
// variable names, in order.
func headSchema(head term.Atom) []string {
	return headVariableNames(head)
}

func headVariableNames(head term.Atom) []string {
	names := make([]string, 0, len(head.Terms))

	for _, t := range head.Terms {
		if t.IsVariable() {
			names = append(names, t.Name)
		}
	}

	return names
}

// keepVariables is the union of a node's own variables and the head's
// variables: the columns Step 5's per-child projection retains, since
// anything else is dead weight once joined further up the tree.
func keepVariables(node, head term.Atom) []string {
	seen := make(map[string]struct{}, len(node.Terms)+len(head.Terms))

	var out []string

	for _, v := range node.Variables() {
		if _, ok := seen[v]; ok {
			continue
		}

		seen[v] = struct{}{}

		out = append(out, v)
	}

	for _, v := range head.Variables() {
		if _, ok := seen[v]; ok {
			continue
		}

		seen[v] = struct{}{}

		out = append(out, v)
	}

	return out
}
