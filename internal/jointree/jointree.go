// Package jointree builds the rooted tree of body atoms the evaluator
// traverses: nodes are body atoms, edges are the (witness, ear) pairs GYO
// ear reduction produces.
//
// The tree's node order and acyclicity cross-check are computed by
// atomDAG, a Kahn's-algorithm topological sort specialized to Atom.Key()
// strings (Atom itself cannot key a generic graph — it carries a slice of
// terms, so it is not comparable): every edge (witness -> ear) is recorded
// as "ear depends on witness" so the sort naturally yields a root-first,
// deterministic visiting order. Parent/child/descendant lookups still go
// through a side table, since a DAG has no notion of "the" parent of a
// node.
package jointree

import (
	"fmt"
	"sort"

	"github.com/yannaql/yannaql/internal/hypergraph"
	"github.com/yannaql/yannaql/internal/term"
)

// atomDAG is a directed graph over atom keys, used only to turn the set of
// (witness -> ear) edges Construct records into a deterministic, root-first
// node order and to cross-check that the edge set it built is itself
// acyclic. It tracks in-degree incrementally as dependencies are added so
// topologicalSort never has to recompute it from scratch.
type atomDAG struct {
	nodes    map[string]bool
	deps     map[string]map[string]bool // node -> nodes that must precede it
	inDegree map[string]int
}

func newAtomDAG() *atomDAG {
	return &atomDAG{
		nodes:    make(map[string]bool),
		deps:     make(map[string]map[string]bool),
		inDegree: make(map[string]int),
	}
}

func (g *atomDAG) addNode(key string) {
	g.nodes[key] = true
	if g.deps[key] == nil {
		g.deps[key] = make(map[string]bool)
	}
}

// addDependency records that node depends on precedesNode (precedesNode
// must be visited first). Both nodes must already exist.
func (g *atomDAG) addDependency(node, precedesNode string) error {
	if !g.nodes[node] || !g.nodes[precedesNode] {
		return fmt.Errorf("atomDAG: both nodes must exist before adding an edge: %s -> %s", precedesNode, node)
	}

	if !g.deps[node][precedesNode] {
		g.deps[node][precedesNode] = true
		g.inDegree[node]++
	}

	return nil
}

// errCyclicAtoms reports that the atom dependency graph could not be fully
// ordered: some nodes retained a nonzero in-degree.
type errCyclicAtoms struct {
	remaining []string
}

func (e *errCyclicAtoms) Error() string {
	return fmt.Sprintf("atomDAG: cyclic dependency among atoms: %v", e.remaining)
}

// topologicalSort returns every node in dependency order (a node only
// appears after every node it depends on), breaking ties deterministically
// by sorting the ready queue before each pop. Kahn's algorithm: repeatedly
// remove every currently-ready node (in-degree zero), decrementing the
// in-degree of whatever depended on it, until nothing more can be removed.
func (g *atomDAG) topologicalSort() ([]string, error) {
	inDegree := make(map[string]int, len(g.inDegree))
	for k, v := range g.inDegree {
		inDegree[k] = v
	}

	deps := make(map[string]map[string]bool, len(g.deps))
	for node, precedesSet := range g.deps {
		deps[node] = make(map[string]bool, len(precedesSet))
		for k, v := range precedesSet {
			deps[node][k] = v
		}
	}

	var queue []string

	for node := range g.nodes {
		if inDegree[node] == 0 {
			queue = append(queue, node)
		}
	}

	sort.Strings(queue)

	var result []string

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		result = append(result, node)

		var ready []string

		for dependent, precedesSet := range deps {
			if !precedesSet[node] {
				continue
			}

			delete(precedesSet, node)
			inDegree[dependent]--

			if inDegree[dependent] == 0 {
				ready = append(ready, dependent)
			}
		}

		if len(ready) > 0 {
			queue = append(queue, ready...)
			sort.Strings(queue)
		}
	}

	if len(result) != len(g.nodes) {
		var remaining []string

		for node, degree := range inDegree {
			if degree > 0 {
				remaining = append(remaining, node)
			}
		}

		sort.Strings(remaining)

		return nil, &errCyclicAtoms{remaining: remaining}
	}

	return result, nil
}

// JoinTree is a rooted tree over body atoms: exactly one node has no
// parent (the root), every other node has exactly one parent, and the node
// set is connected and acyclic.
type JoinTree struct {
	nodes  []term.Atom
	byKey  map[string]term.Atom
	parent map[string]string   // child key -> parent key
	kids   map[string][]string // parent key -> direct child keys, insertion order
	root   string
}

// Construct runs GYO ear reduction over body: each time an ear is found
// with a distinct witness, it records the edge (witness -> ear) and
// removes the ear; when ear equals its own witness, it is removed without
// contributing an edge (identical atoms add no join constraint). If a
// nonempty hyperedge set remains once no further
// ear can be found, the query is cyclic and Construct returns ok=false.
func Construct(body []term.Atom) (*JoinTree, bool) {
	h := hypergraph.New(body)

	t := &JoinTree{
		byKey:  make(map[string]term.Atom),
		parent: make(map[string]string),
		kids:   make(map[string][]string),
	}

	g := newAtomDAG()

	for _, atom := range h.Edges() {
		t.addAtom(atom)
		g.addNode(atom.Key())
	}

	for {
		ear, witness, ok := h.FindEar()
		if !ok {
			break
		}

		if !ear.Equal(witness) {
			t.addEdge(witness, ear)

			// ear depends on witness: witness must be visited first, so
			// topologicalSort surfaces parents before their children.
			if err := g.addDependency(ear.Key(), witness.Key()); err != nil {
				panic("jointree: " + err.Error())
			}
		}

		h.Remove(ear)
	}

	if !h.IsEmpty() {
		return nil, false
	}

	order, err := g.topologicalSort()
	if err != nil {
		// Ear reduction already confirmed H emptied acyclically; a cycle
		// surfacing here would mean the two structures disagree, a bug.
		panic("jointree: " + err.Error())
	}

	t.nodes = make([]term.Atom, len(order))
	for i, key := range order {
		t.nodes[i] = t.byKey[key]
	}

	root, ok := t.findRoot()
	if !ok {
		return nil, false
	}

	t.root = root

	return t, true
}

func (t *JoinTree) addAtom(atom term.Atom) {
	key := atom.Key()
	if _, exists := t.byKey[key]; exists {
		return
	}

	t.byKey[key] = atom
}

func (t *JoinTree) addEdge(parent, child term.Atom) {
	t.addAtom(parent)
	t.addAtom(child)

	pk, ck := parent.Key(), child.Key()
	t.parent[ck] = pk
	t.kids[pk] = append(t.kids[pk], ck)
}

// findRoot returns the unique node with no parent. A nonempty tree always
// has exactly one under the join-tree invariants; Construct only calls this
// after confirming the hypergraph emptied, so failure here signals a bug
// rather than a cyclic query.
func (t *JoinTree) findRoot() (string, bool) {
	if len(t.nodes) == 0 {
		return "", false
	}

	for _, atom := range t.nodes {
		key := atom.Key()
		if _, hasParent := t.parent[key]; !hasParent {
			return key, true
		}
	}

	return "", false
}

// Root returns the tree's unique parentless node.
func (t *JoinTree) Root() term.Atom { return t.byKey[t.root] }

// Nodes returns every atom in the tree, in a deterministic order (the
// root-first topological order atomDAG derives from the tree's edges, ties
// broken by atom key).
func (t *JoinTree) Nodes() []term.Atom { return append([]term.Atom(nil), t.nodes...) }

// Parent returns node's parent and whether one exists (false only for the
// root).
func (t *JoinTree) Parent(node term.Atom) (term.Atom, bool) {
	pk, ok := t.parent[node.Key()]
	if !ok {
		return term.Atom{}, false
	}

	return t.byKey[pk], true
}

// Children returns node's direct children, sorted by (relation name,
// terms) so traversal order never depends on map iteration order.
func (t *JoinTree) Children(node term.Atom) []term.Atom {
	keys := append([]string(nil), t.kids[node.Key()]...)
	out := make([]term.Atom, len(keys))

	for i, k := range keys {
		out[i] = t.byKey[k]
	}

	sortAtoms(out)

	return out
}

// Descendants returns every node reachable by following Children
// transitively, in deterministic pre-order.
func (t *JoinTree) Descendants(node term.Atom) []term.Atom {
	var out []term.Atom

	var walk func(term.Atom)

	walk = func(n term.Atom) {
		for _, c := range t.Children(n) {
			out = append(out, c)
			walk(c)
		}
	}

	walk(node)

	return out
}

// IsLeaf reports whether node has no children.
func (t *JoinTree) IsLeaf(node term.Atom) bool {
	return len(t.kids[node.Key()]) == 0
}

// FindNodeWithNoChildIn returns a node from remaining all of whose children
// (if any) are absent from remaining — the post-order traversal selector
// Step 3 uses. Candidates are scanned in (relation name, terms) order so
// repeated calls over a shrinking remaining set produce a reproducible
// traversal.
func (t *JoinTree) FindNodeWithNoChildIn(remaining []term.Atom) (term.Atom, bool) {
	inRemaining := atomSet(remaining)

	for _, node := range t.orderedSubset(remaining) {
		ready := true

		for _, k := range t.kids[node.Key()] {
			if _, stillThere := inRemaining[k]; stillThere {
				ready = false
				break
			}
		}

		if ready {
			return node, true
		}
	}

	return term.Atom{}, false
}

// FindNodeWithNoParentIn returns a node from remaining whose parent (if
// any) is absent from remaining — the pre-order traversal selector Step 4
// uses.
func (t *JoinTree) FindNodeWithNoParentIn(remaining []term.Atom) (term.Atom, bool) {
	inRemaining := atomSet(remaining)

	for _, node := range t.orderedSubset(remaining) {
		pk, hasParent := t.parent[node.Key()]
		if !hasParent {
			return node, true
		}

		if _, stillThere := inRemaining[pk]; !stillThere {
			return node, true
		}
	}

	return term.Atom{}, false
}

// orderedSubset returns remaining sorted by (relation name, terms).
func (t *JoinTree) orderedSubset(remaining []term.Atom) []term.Atom {
	out := append([]term.Atom(nil), remaining...)
	sortAtoms(out)

	return out
}

func atomSet(atoms []term.Atom) map[string]struct{} {
	set := make(map[string]struct{}, len(atoms))
	for _, a := range atoms {
		set[a.Key()] = struct{}{}
	}

	return set
}

func sortAtoms(atoms []term.Atom) {
	sort.SliceStable(atoms, func(i, j int) bool {
		a, b := atoms[i], atoms[j]
		if a.RelationName != b.RelationName {
			return a.RelationName < b.RelationName
		}

		for k := 0; k < len(a.Terms) && k < len(b.Terms); k++ {
			as, bs := a.Terms[k].String(), b.Terms[k].String()
			if as != bs {
				return as < bs
			}
		}

		return len(a.Terms) < len(b.Terms)
	})
}
