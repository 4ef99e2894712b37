// Package hypergraph implements the GYO ear-reduction test for
// alpha-acyclicity: a mapping from hyperedge (body atom) to the set of
// variable vertices it touches, with deterministic ear-finding and removal.
//
// Grounded on the is_acyclic/find_ear/remove_edge logic in
// data_structure/query.rs, restructured as its own package with a
// sort-before-pick discipline (sort candidates by a stable key before
// picking one, so output is reproducible across runs).
package hypergraph

import (
	"sort"

	"github.com/yannaql/yannaql/internal/term"
)

// Hypergraph maps each hyperedge (body atom) to its vertex set (the atom's
// distinct variable names). Constants are not vertices.
type Hypergraph struct {
	edges    []term.Atom
	vertices map[string]map[string]struct{} // atom.Key() -> variable set
}

// New builds a hypergraph with one hyperedge per distinct body atom.
// Structurally identical body atoms collapse to the same hyperedge key:
// they add no distinguishing join constraint, so only one node is created
// for them.
func New(body []term.Atom) *Hypergraph {
	h := &Hypergraph{
		vertices: make(map[string]map[string]struct{}, len(body)),
	}

	for _, atom := range body {
		key := atom.Key()
		if _, exists := h.vertices[key]; exists {
			continue
		}

		h.edges = append(h.edges, atom)

		set := make(map[string]struct{}, len(atom.Terms))
		for _, v := range atom.Variables() {
			set[v] = struct{}{}
		}

		h.vertices[key] = set
	}

	return h
}

// Edges returns the current hyperedges in deterministic order: sorted by
// (relation name, terms), so the join tree built from repeated runs is
// reproducible.
func (h *Hypergraph) Edges() []term.Atom {
	out := append([]term.Atom(nil), h.edges...)
	sortAtoms(out)

	return out
}

// IsEmpty reports whether every hyperedge has been removed.
func (h *Hypergraph) IsEmpty() bool { return len(h.edges) == 0 }

// exclusiveTo reports whether variable v occurs in no hyperedge other than
// except.
func (h *Hypergraph) exclusiveTo(v, except string) bool {
	for _, atom := range h.edges {
		key := atom.Key()
		if key == except {
			continue
		}

		if _, ok := h.vertices[key][v]; ok {
			return false
		}
	}

	return true
}

// FindEar scans hyperedges in deterministic order and returns the first
// (ear, witness) pair: an ear is a hyperedge all of whose vertices are
// exclusive to it (witness = ear itself), or one whose non-exclusive
// vertices are all contained in some other hyperedge (the witness). It
// returns ok=false if no ear exists in the current hypergraph.
func (h *Hypergraph) FindEar() (ear, witness term.Atom, ok bool) {
	for _, candidate := range h.Edges() {
		key := candidate.Key()

		var nonExclusive []string

		for v := range h.vertices[key] {
			if !h.exclusiveTo(v, key) {
				nonExclusive = append(nonExclusive, v)
			}
		}

		if len(nonExclusive) == 0 {
			return candidate, candidate, true
		}

		if w, ok := h.findWitness(candidate, nonExclusive); ok {
			return candidate, w, true
		}
	}

	return term.Atom{}, term.Atom{}, false
}

// findWitness looks (in deterministic order) for another hyperedge
// containing every vertex in nonExclusive.
func (h *Hypergraph) findWitness(candidate term.Atom, nonExclusive []string) (term.Atom, bool) {
	for _, other := range h.Edges() {
		if other.Equal(candidate) {
			continue
		}

		set := h.vertices[other.Key()]

		covers := true

		for _, v := range nonExclusive {
			if _, ok := set[v]; !ok {
				covers = false
				break
			}
		}

		if covers {
			return other, true
		}
	}

	return term.Atom{}, false
}

// Remove deletes ear from the hypergraph.
func (h *Hypergraph) Remove(ear term.Atom) {
	key := ear.Key()
	delete(h.vertices, key)

	out := h.edges[:0]

	for _, atom := range h.edges {
		if atom.Key() != key {
			out = append(out, atom)
		}
	}

	h.edges = out
}

// IsAcyclic reports whether repeatedly removing ears from a fresh
// hypergraph over body empties it. Equivalent formulation: ear reduction
// run to completion leaves no residual hyperedges.
func IsAcyclic(body []term.Atom) bool {
	h := New(body)

	for {
		ear, _, ok := h.FindEar()
		if !ok {
			break
		}

		h.Remove(ear)
	}

	return h.IsEmpty()
}

// sortAtoms orders atoms by (relation name, then terms lexicographically),
// a deterministic tie-break for reproducible join trees.
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
