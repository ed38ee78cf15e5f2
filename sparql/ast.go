package sparql

import (
	"strings"

	"github.com/geoknoesis/ldkit-go/rdf"
)

// Node is one endpoint position of a triple pattern or template: a
// variable or a constant RDF term.
type Node interface {
	node()
	String() string
}

// Var is a query variable.
type Var struct {
	// Name is the variable name without the leading '?'.
	Name string
}

func (Var) node() {}

// String renders the variable in query syntax.
func (v Var) String() string { return "?" + v.Name }

// Const is a constant term in a pattern or template.
type Const struct {
	Term rdf.Term
}

func (Const) node() {}

// String renders the underlying term.
func (c Const) String() string {
	if c.Term == nil {
		return "<nil>"
	}
	return c.Term.String()
}

// Path is a property path expression over predicates.
type Path interface {
	path()
	String() string
}

// PredicatePath matches triples of a single predicate.
type PredicatePath struct {
	IRI rdf.IRI
}

func (PredicatePath) path() {}

// String renders the predicate in angle brackets.
func (p PredicatePath) String() string { return p.IRI.String() }

// InversePath traverses its inner path backward: ^p relates o to s
// wherever p relates s to o.
type InversePath struct {
	Path Path
}

func (InversePath) path() {}

// String renders the path in query syntax.
func (p InversePath) String() string { return "^" + p.Path.String() }

// SequencePath chains its parts left to right through intermediate
// nodes: p1/p2 relates s to o when some m satisfies both hops.
type SequencePath struct {
	Parts []Path
}

func (SequencePath) path() {}

// String renders the path in query syntax.
func (p SequencePath) String() string {
	parts := make([]string, len(p.Parts))
	for i, part := range p.Parts {
		parts[i] = part.String()
	}
	return strings.Join(parts, "/")
}

// TriplePattern matches graph triples whose endpoints satisfy the
// subject and object nodes and whose predicates satisfy the path.
type TriplePattern struct {
	Subject Node
	Path    Path
	Object  Node
}

// String renders the pattern in query syntax.
func (tp TriplePattern) String() string {
	return nodeString(tp.Subject) + " " + pathString(tp.Path) + " " + nodeString(tp.Object) + " ."
}

// TemplateTriple produces one output triple per solution. The
// predicate is a plain node, not a path: templates emit concrete
// triples.
type TemplateTriple struct {
	Subject   Node
	Predicate Node
	Object    Node
}

// String renders the template triple in query syntax.
func (tt TemplateTriple) String() string {
	return nodeString(tt.Subject) + " " + nodeString(tt.Predicate) + " " + nodeString(tt.Object) + " ."
}

// Query is a CONSTRUCT query: a template instantiated once per
// solution of the WHERE pattern conjunction. Queries can be built
// programmatically or parsed from text via ParseQuery.
type Query struct {
	Template []TemplateTriple
	Where    []TriplePattern
}

// Validate checks the structural rules: the WHERE block must contain
// at least one pattern, and every template variable must occur
// somewhere in the WHERE block. Violations are reported as a
// *QueryError wrapping ErrEmptyPattern or ErrUnboundTemplateVariable.
func (q *Query) Validate() error {
	if len(q.Where) == 0 {
		return &QueryError{Err: ErrEmptyPattern}
	}
	bound := make(map[string]struct{})
	for _, tp := range q.Where {
		if v, ok := tp.Subject.(Var); ok {
			bound[v.Name] = struct{}{}
		}
		if v, ok := tp.Object.(Var); ok {
			bound[v.Name] = struct{}{}
		}
	}
	for _, tt := range q.Template {
		for _, n := range []Node{tt.Subject, tt.Predicate, tt.Object} {
			v, ok := n.(Var)
			if !ok {
				continue
			}
			if _, ok := bound[v.Name]; !ok {
				return &QueryError{Var: v.Name, Err: ErrUnboundTemplateVariable}
			}
		}
	}
	return nil
}

func nodeString(n Node) string {
	if n == nil {
		return "<nil>"
	}
	return n.String()
}

func pathString(p Path) string {
	if p == nil {
		return "<nil>"
	}
	return p.String()
}
