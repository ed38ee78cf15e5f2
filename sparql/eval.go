package sparql

import (
	"sort"
	"strings"

	"github.com/geoknoesis/ldkit-go/rdf"
)

// binding maps variable names to terms. Every binding produced for one
// pattern binds exactly that pattern's variables; joined bindings bind
// the union of the joined patterns' variables.
type binding map[string]rdf.Term

// pair is one (start, end) endpoint pair of a path evaluation.
type pair struct {
	s, o rdf.Term
}

// Construct evaluates the query against g and instantiates the
// template once per solution, collecting the results into a fresh
// graph. Set semantics apply throughout: duplicate solutions and
// duplicate output triples collapse, so logically equivalent pattern
// formulations produce identical graphs. A query with no solutions
// yields an empty graph, not an error. Neither input is modified.
func Construct(g *rdf.Graph, q *Query) (*rdf.Graph, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	solutions := []binding{{}}
	for _, tp := range q.Where {
		rows := patternBindings(g, tp)
		solutions = joinBindings(solutions, rows)
		if len(solutions) == 0 {
			break
		}
	}

	out := rdf.NewGraph()
	for _, sol := range solutions {
		for _, tt := range q.Template {
			if t, ok := instantiate(tt, sol); ok {
				out.Add(t)
			}
		}
	}
	return out, nil
}

// Construct evaluates the query against g. See the package-level
// Construct.
func (q *Query) Construct(g *rdf.Graph) (*rdf.Graph, error) {
	return Construct(g, q)
}

// pathPairs evaluates a property path to its set of endpoint pairs:
// an atomic predicate yields the (s, o) pairs of its triples, an
// inverse path swaps them, and a sequence joins consecutive hops
// through the shared intermediate node.
func pathPairs(g *rdf.Graph, p Path) []pair {
	switch path := p.(type) {
	case PredicatePath:
		ts := g.Match(nil, path.IRI, nil)
		pairs := make([]pair, 0, len(ts))
		for _, t := range ts {
			pairs = append(pairs, pair{s: t.S, o: t.O})
		}
		return pairs
	case InversePath:
		inner := pathPairs(g, path.Path)
		swapped := make([]pair, len(inner))
		for i, pr := range inner {
			swapped[i] = pair{s: pr.o, o: pr.s}
		}
		return swapped
	case SequencePath:
		if len(path.Parts) == 0 {
			return nil
		}
		pairs := pathPairs(g, path.Parts[0])
		for _, part := range path.Parts[1:] {
			if len(pairs) == 0 {
				return nil
			}
			pairs = chainPairs(pairs, pathPairs(g, part))
		}
		return pairs
	default:
		return nil
	}
}

// chainPairs joins two pair sets through the shared middle node,
// collapsing duplicate endpoint pairs.
func chainPairs(left, right []pair) []pair {
	byStart := make(map[rdf.Term][]rdf.Term, len(right))
	for _, pr := range right {
		byStart[pr.s] = append(byStart[pr.s], pr.o)
	}
	seen := make(map[pair]struct{})
	var out []pair
	for _, l := range left {
		for _, end := range byStart[l.o] {
			joined := pair{s: l.s, o: end}
			if _, ok := seen[joined]; ok {
				continue
			}
			seen[joined] = struct{}{}
			out = append(out, joined)
		}
	}
	return out
}

// patternBindings enumerates the bindings of the pattern's variables
// consistent with the graph.
func patternBindings(g *rdf.Graph, tp TriplePattern) []binding {
	var rows []binding
	for _, pr := range pathPairs(g, tp.Path) {
		b := make(binding, 2)
		if !bindNode(b, tp.Subject, pr.s) {
			continue
		}
		if !bindNode(b, tp.Object, pr.o) {
			continue
		}
		rows = append(rows, b)
	}
	return rows
}

// bindNode unifies a pattern node with a concrete term, extending b.
// A repeated variable must rebind to the same term.
func bindNode(b binding, n Node, term rdf.Term) bool {
	switch node := n.(type) {
	case Var:
		if prev, ok := b[node.Name]; ok {
			return prev == term
		}
		b[node.Name] = term
		return true
	case Const:
		return node.Term == term
	default:
		return false
	}
}

// joinBindings joins two binding sets on their shared variables with
// a hash join; with no shared variables it degenerates to the cross
// product.
func joinBindings(left, right []binding) []binding {
	if len(left) == 0 || len(right) == 0 {
		return nil
	}
	shared := sharedVars(left[0], right[0])
	if len(shared) == 0 {
		out := make([]binding, 0, len(left)*len(right))
		for _, l := range left {
			for _, r := range right {
				out = append(out, mergeBinding(l, r))
			}
		}
		return out
	}

	index := make(map[string][]binding, len(right))
	for _, r := range right {
		key := joinKey(r, shared)
		index[key] = append(index[key], r)
	}
	var out []binding
	for _, l := range left {
		for _, r := range index[joinKey(l, shared)] {
			out = append(out, mergeBinding(l, r))
		}
	}
	return out
}

func sharedVars(l, r binding) []string {
	var shared []string
	for name := range l {
		if _, ok := r[name]; ok {
			shared = append(shared, name)
		}
	}
	sort.Strings(shared)
	return shared
}

// joinKey renders the shared variables' terms into a hash key. Term
// String() forms are unambiguous, so distinct assignments produce
// distinct keys.
func joinKey(b binding, vars []string) string {
	var key strings.Builder
	for _, name := range vars {
		key.WriteString(b[name].String())
		key.WriteByte(0)
	}
	return key.String()
}

func mergeBinding(l, r binding) binding {
	merged := make(binding, len(l)+len(r))
	for name, term := range l {
		merged[name] = term
	}
	for name, term := range r {
		merged[name] = term
	}
	return merged
}

// instantiate applies a solution to one template triple. Instantiated
// triples that would violate RDF positional rules (a literal subject,
// a non-IRI predicate) are skipped for that solution rather than
// reported as errors.
func instantiate(tt TemplateTriple, sol binding) (rdf.Triple, bool) {
	s := resolveNode(tt.Subject, sol)
	p := resolveNode(tt.Predicate, sol)
	o := resolveNode(tt.Object, sol)
	if s == nil || p == nil || o == nil {
		return rdf.Triple{}, false
	}
	pred, ok := p.(rdf.IRI)
	if !ok {
		return rdf.Triple{}, false
	}
	t := rdf.Triple{S: s, P: pred, O: o}
	if err := t.Validate(); err != nil {
		return rdf.Triple{}, false
	}
	return t, true
}

func resolveNode(n Node, sol binding) rdf.Term {
	switch node := n.(type) {
	case Var:
		return sol[node.Name]
	case Const:
		return node.Term
	default:
		return nil
	}
}
