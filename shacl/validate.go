package shacl

import (
	"fmt"
	"sort"

	"github.com/geoknoesis/ldkit-go/rdf"
	"github.com/geoknoesis/ldkit-go/vocab"
)

// Validate parses the shapes graph and evaluates it against the data
// graph. Neither graph is modified. Definition problems in the shapes
// graph return an error; constraint failures never do, they become
// report results.
func Validate(data, shapes *rdf.Graph) (*Report, error) {
	parsed, err := ParseShapes(shapes)
	if err != nil {
		return nil, err
	}
	return parsed.Validate(data), nil
}

// Validate evaluates the parsed shapes against a data graph. The data
// graph is not modified.
func (s *Shapes) Validate(data *rdf.Graph) *Report {
	v := &validator{
		data:    data,
		shapes:  s,
		closure: make(map[rdf.IRI]map[rdf.IRI]bool),
	}
	return v.run()
}

type validator struct {
	data   *rdf.Graph
	shapes *Shapes

	// closure caches, per class, the set of that class and all its
	// transitive rdfs:subClassOf superclasses.
	closure map[rdf.IRI]map[rdf.IRI]bool
}

func (v *validator) run() *Report {
	var results []Violation
	for _, ns := range v.shapes.NodeShapes {
		for _, focus := range v.focusNodes(ns) {
			for _, ps := range ns.Properties {
				results = append(results, v.checkProperty(focus, ps)...)
			}
		}
	}
	sortViolations(results)
	return &Report{Conforms: len(results) == 0, Results: results}
}

// focusNodes returns the data graph subjects asserted rdf:type C for
// any target class C of the shape. Targeting uses asserted types only;
// the subclass closure applies to sh:class, not to sh:targetClass.
func (v *validator) focusNodes(ns *NodeShape) []rdf.Term {
	seen := make(map[rdf.Term]struct{})
	var out []rdf.Term
	for _, class := range ns.TargetClasses {
		for _, s := range v.data.Subjects(rdf.IRI{Value: vocab.RdfType}, class) {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

func (v *validator) checkProperty(focus rdf.Term, ps *PropertyShape) []Violation {
	values := v.data.Objects(focus, ps.Path)

	var out []Violation
	if ps.MinCount != nil && len(values) < *ps.MinCount {
		out = append(out, Violation{
			Component:   rdf.IRI{Value: vocab.ShMinCountConstraintComponent},
			SourceShape: ps.ID,
			FocusNode:   focus,
			Path:        ps.Path,
			Message:     fmt.Sprintf("found %d values, minimum is %d", len(values), *ps.MinCount),
		})
	}
	if ps.MaxCount != nil && len(values) > *ps.MaxCount {
		out = append(out, Violation{
			Component:   rdf.IRI{Value: vocab.ShMaxCountConstraintComponent},
			SourceShape: ps.ID,
			FocusNode:   focus,
			Path:        ps.Path,
			Message:     fmt.Sprintf("found %d values, maximum is %d", len(values), *ps.MaxCount),
		})
	}
	if ps.Class.Value != "" {
		for _, value := range values {
			if v.isInstance(value, ps.Class) {
				continue
			}
			out = append(out, Violation{
				Component:   rdf.IRI{Value: vocab.ShClassConstraintComponent},
				SourceShape: ps.ID,
				FocusNode:   focus,
				Path:        ps.Path,
				Value:       value,
				Message:     fmt.Sprintf("value %s is not an instance of %s", value, ps.Class),
			})
		}
	}
	return out
}

// isInstance reports whether the value node is an instance of the
// class: asserted rdf:type C, or rdf:type D with D a transitive
// rdfs:subClassOf C. Literals are never instances.
func (v *validator) isInstance(value rdf.Term, class rdf.IRI) bool {
	if value.Kind() == rdf.TermLiteral {
		return false
	}
	for _, t := range v.data.Objects(value, rdf.IRI{Value: vocab.RdfType}) {
		asserted, ok := t.(rdf.IRI)
		if !ok {
			continue
		}
		if v.superClasses(asserted)[class] {
			return true
		}
	}
	return false
}

// superClasses returns the class and every class reachable from it over
// rdfs:subClassOf edges asserted in the data or shapes graph.
func (v *validator) superClasses(class rdf.IRI) map[rdf.IRI]bool {
	if cached, ok := v.closure[class]; ok {
		return cached
	}
	out := map[rdf.IRI]bool{class: true}
	queue := []rdf.IRI{class}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		for _, super := range v.superEdges(c) {
			if !out[super] {
				out[super] = true
				queue = append(queue, super)
			}
		}
	}
	v.closure[class] = out
	return out
}

func (v *validator) superEdges(class rdf.IRI) []rdf.IRI {
	sub := rdf.IRI{Value: vocab.RdfsSubClassOf}
	var out []rdf.IRI
	for _, g := range []*rdf.Graph{v.data, v.shapes.source} {
		if g == nil {
			continue
		}
		for _, o := range g.Objects(class, sub) {
			if super, ok := o.(rdf.IRI); ok {
				out = append(out, super)
			}
		}
	}
	return out
}

// sortViolations orders results by focus node, path, component, and
// value so reports are deterministic across runs.
func sortViolations(vs []Violation) {
	sort.SliceStable(vs, func(i, j int) bool {
		a, b := vs[i], vs[j]
		if x, y := termKey(a.FocusNode), termKey(b.FocusNode); x != y {
			return x < y
		}
		if a.Path.Value != b.Path.Value {
			return a.Path.Value < b.Path.Value
		}
		if a.Component.Value != b.Component.Value {
			return a.Component.Value < b.Component.Value
		}
		return termKey(a.Value) < termKey(b.Value)
	})
}

func termKey(t rdf.Term) string {
	if t == nil {
		return ""
	}
	return t.String()
}
