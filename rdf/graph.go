package rdf

import "sort"

// Graph is an in-memory set of triples. Duplicates collapse and
// insertion order carries no meaning; adding an existing triple is a
// no-op. The zero value is not usable; call NewGraph.
//
// Graph is not safe for concurrent mutation. Parsing, querying, and
// validation all treat graphs as build-once values.
type Graph struct {
	triples     map[Triple]struct{}
	bySubject   map[Term][]Triple
	byPredicate map[IRI][]Triple
}

// NewGraph returns an empty graph, optionally seeded with triples.
func NewGraph(ts ...Triple) *Graph {
	g := &Graph{
		triples:     make(map[Triple]struct{}),
		bySubject:   make(map[Term][]Triple),
		byPredicate: make(map[IRI][]Triple),
	}
	g.AddAll(ts...)
	return g
}

// Add inserts a triple and reports whether it was newly added.
// Re-adding an existing triple leaves the graph unchanged.
func (g *Graph) Add(t Triple) bool {
	if _, ok := g.triples[t]; ok {
		return false
	}
	g.triples[t] = struct{}{}
	g.bySubject[t.S] = append(g.bySubject[t.S], t)
	g.byPredicate[t.P] = append(g.byPredicate[t.P], t)
	return true
}

// AddAll inserts the given triples and returns how many were new.
func (g *Graph) AddAll(ts ...Triple) int {
	added := 0
	for _, t := range ts {
		if g.Add(t) {
			added++
		}
	}
	return added
}

// Merge adds every triple of other into g (set union) and returns how
// many were new. The other graph is not modified.
func (g *Graph) Merge(other *Graph) int {
	if other == nil {
		return 0
	}
	added := 0
	for t := range other.triples {
		if g.Add(t) {
			added++
		}
	}
	return added
}

// Remove deletes a triple and reports whether it was present.
func (g *Graph) Remove(t Triple) bool {
	if _, ok := g.triples[t]; !ok {
		return false
	}
	delete(g.triples, t)
	g.bySubject[t.S] = removeTriple(g.bySubject[t.S], t)
	if len(g.bySubject[t.S]) == 0 {
		delete(g.bySubject, t.S)
	}
	g.byPredicate[t.P] = removeTriple(g.byPredicate[t.P], t)
	if len(g.byPredicate[t.P]) == 0 {
		delete(g.byPredicate, t.P)
	}
	return true
}

func removeTriple(ts []Triple, t Triple) []Triple {
	for i := range ts {
		if ts[i] == t {
			return append(ts[:i], ts[i+1:]...)
		}
	}
	return ts
}

// Has reports whether the triple is in the graph.
func (g *Graph) Has(t Triple) bool {
	_, ok := g.triples[t]
	return ok
}

// Len returns the number of triples in the graph.
func (g *Graph) Len() int { return len(g.triples) }

// Triples returns a sorted snapshot of the graph's triples, ordered by
// subject, predicate, object. The slice is freshly allocated.
func (g *Graph) Triples() []Triple {
	ts := make([]Triple, 0, len(g.triples))
	for t := range g.triples {
		ts = append(ts, t)
	}
	sort.Slice(ts, func(i, j int) bool { return lessTriple(ts[i], ts[j]) })
	return ts
}

func lessTriple(a, b Triple) bool {
	if as, bs := termString(a.S), termString(b.S); as != bs {
		return as < bs
	}
	if a.P.Value != b.P.Value {
		return a.P.Value < b.P.Value
	}
	return termString(a.O) < termString(b.O)
}

// Match returns the triples matching the given pattern; a nil term
// matches anything. The result order is unspecified.
func (g *Graph) Match(s, p, o Term) []Triple {
	var candidates []Triple
	switch {
	case s != nil:
		candidates = g.bySubject[s]
	case p != nil:
		pi, ok := p.(IRI)
		if !ok {
			return nil
		}
		candidates = g.byPredicate[pi]
	default:
		candidates = make([]Triple, 0, len(g.triples))
		for t := range g.triples {
			candidates = append(candidates, t)
		}
	}

	var out []Triple
	for _, t := range candidates {
		if s != nil && t.S != s {
			continue
		}
		if p != nil && Term(t.P) != p {
			continue
		}
		if o != nil && t.O != o {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Objects returns the objects of all (s, p, ·) triples.
func (g *Graph) Objects(s Term, p IRI) []Term {
	var out []Term
	for _, t := range g.bySubject[s] {
		if t.P == p {
			out = append(out, t.O)
		}
	}
	return out
}

// Subjects returns the subjects of all (·, p, o) triples.
func (g *Graph) Subjects(p IRI, o Term) []Term {
	var out []Term
	for _, t := range g.byPredicate[p] {
		if o == nil || t.O == o {
			out = append(out, t.S)
		}
	}
	return out
}

// Clone returns an independent copy of the graph.
func (g *Graph) Clone() *Graph {
	c := NewGraph()
	for t := range g.triples {
		c.Add(t)
	}
	return c
}

// Equal reports whether both graphs contain exactly the same triples.
func (g *Graph) Equal(other *Graph) bool {
	if other == nil || len(g.triples) != len(other.triples) {
		return false
	}
	for t := range g.triples {
		if !other.Has(t) {
			return false
		}
	}
	return true
}
