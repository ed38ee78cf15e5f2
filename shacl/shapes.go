package shacl

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/geoknoesis/ldkit-go/rdf"
	"github.com/geoknoesis/ldkit-go/vocab"
)

// ParseShapes extracts shape definitions from a shapes graph. Node
// shapes are the subjects typed sh:NodeShape; their property shapes are
// the objects of sh:property, inline blank nodes or IRI references to
// standalone shapes. All definition problems surface here as
// *DefinitionError; validation itself cannot fail.
//
// The shapes graph is not modified. It is retained by the returned
// Shapes for the rdfs:subClassOf closure used by sh:class.
func ParseShapes(shapes *rdf.Graph) (*Shapes, error) {
	p := &shapesParser{
		graph: shapes,
		cache: make(map[rdf.Term]*PropertyShape),
	}
	return p.parse()
}

// shapesParser walks a shapes graph. The cache resolves each property
// shape term exactly once, so a shape referenced by IRI from several
// node shapes is shared by pointer.
type shapesParser struct {
	graph *rdf.Graph
	cache map[rdf.Term]*PropertyShape
}

func (p *shapesParser) parse() (*Shapes, error) {
	out := &Shapes{source: p.graph}
	for _, id := range p.nodeShapeIDs() {
		ns, err := p.nodeShape(id)
		if err != nil {
			return nil, err
		}
		out.NodeShapes = append(out.NodeShapes, ns)
	}
	// Standalone property shapes are checked even when nothing
	// references them, so a malformed shapes graph never parses.
	for _, id := range p.propertyShapeIDs() {
		if _, err := p.propertyShape(id); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// nodeShapeIDs returns the subjects typed sh:NodeShape, deduplicated
// and sorted for deterministic shape order.
func (p *shapesParser) nodeShapeIDs() []rdf.Term {
	return p.typedSubjects(vocab.ShNodeShape)
}

// propertyShapeIDs returns the subjects explicitly typed
// sh:PropertyShape. Inline shapes usually carry no type; they are
// reached through sh:property instead.
func (p *shapesParser) propertyShapeIDs() []rdf.Term {
	return p.typedSubjects(vocab.ShPropertyShape)
}

func (p *shapesParser) typedSubjects(class string) []rdf.Term {
	subjects := p.graph.Subjects(rdf.IRI{Value: vocab.RdfType}, rdf.IRI{Value: class})
	seen := make(map[rdf.Term]struct{}, len(subjects))
	out := subjects[:0]
	for _, s := range subjects {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

func (p *shapesParser) nodeShape(id rdf.Term) (*NodeShape, error) {
	ns := &NodeShape{ID: id}

	for _, o := range p.graph.Objects(id, rdf.IRI{Value: vocab.ShTargetClass}) {
		class, ok := o.(rdf.IRI)
		if !ok {
			return nil, &DefinitionError{Shape: id, Err: fmt.Errorf("%w: got %s", ErrInvalidTargetClass, o)}
		}
		ns.TargetClasses = append(ns.TargetClasses, class)
	}
	sort.Slice(ns.TargetClasses, func(i, j int) bool {
		return ns.TargetClasses[i].Value < ns.TargetClasses[j].Value
	})

	refs := p.graph.Objects(id, rdf.IRI{Value: vocab.ShProperty})
	sort.Slice(refs, func(i, j int) bool { return refs[i].String() < refs[j].String() })
	for _, ref := range refs {
		ps, err := p.propertyShape(ref)
		if err != nil {
			return nil, err
		}
		ns.Properties = append(ns.Properties, ps)
	}
	sort.SliceStable(ns.Properties, func(i, j int) bool {
		a, b := ns.Properties[i], ns.Properties[j]
		if a.Path.Value != b.Path.Value {
			return a.Path.Value < b.Path.Value
		}
		return a.ID.String() < b.ID.String()
	})
	return ns, nil
}

// propertyShape resolves a property shape term. Anything that is the
// object of sh:property counts as a property shape whether or not it is
// typed; only literals are rejected outright. An IRI reference with no
// sh:path in the shapes graph is a dangling reference.
func (p *shapesParser) propertyShape(ref rdf.Term) (*PropertyShape, error) {
	if ref.Kind() == rdf.TermLiteral {
		return nil, &DefinitionError{Shape: ref, Err: ErrPropertyShapeExpected}
	}
	if ps, ok := p.cache[ref]; ok {
		return ps, nil
	}

	ps := &PropertyShape{ID: ref}

	paths := p.graph.Objects(ref, rdf.IRI{Value: vocab.ShPath})
	switch {
	case len(paths) == 0:
		return nil, &DefinitionError{Shape: ref, Err: ErrMissingPath}
	case len(paths) > 1:
		return nil, &DefinitionError{Shape: ref, Err: fmt.Errorf("%w: %d sh:path values", ErrInvalidPath, len(paths))}
	}
	path, ok := paths[0].(rdf.IRI)
	if !ok {
		return nil, &DefinitionError{Shape: ref, Err: fmt.Errorf("%w: got %s", ErrInvalidPath, paths[0])}
	}
	ps.Path = path

	classes := p.graph.Objects(ref, rdf.IRI{Value: vocab.ShClass})
	if len(classes) > 1 {
		return nil, &DefinitionError{Shape: ref, Err: fmt.Errorf("%w: %d sh:class values", ErrInvalidClass, len(classes))}
	}
	if len(classes) == 1 {
		class, ok := classes[0].(rdf.IRI)
		if !ok {
			return nil, &DefinitionError{Shape: ref, Err: fmt.Errorf("%w: got %s", ErrInvalidClass, classes[0])}
		}
		ps.Class = class
	}

	minCount, err := p.cardinality(ref, vocab.ShMinCount)
	if err != nil {
		return nil, err
	}
	ps.MinCount = minCount

	maxCount, err := p.cardinality(ref, vocab.ShMaxCount)
	if err != nil {
		return nil, err
	}
	ps.MaxCount = maxCount

	if ps.MinCount != nil && ps.MaxCount != nil && *ps.MinCount > *ps.MaxCount {
		return nil, &DefinitionError{
			Shape: ref,
			Err:   fmt.Errorf("%w: %d > %d", ErrCardinalityOrder, *ps.MinCount, *ps.MaxCount),
		}
	}

	p.cache[ref] = ps
	return ps, nil
}

// cardinality reads an sh:minCount or sh:maxCount value. The value must
// be a single non-negative xsd:integer literal.
func (p *shapesParser) cardinality(shape rdf.Term, pred string) (*int, error) {
	values := p.graph.Objects(shape, rdf.IRI{Value: pred})
	if len(values) == 0 {
		return nil, nil
	}
	if len(values) > 1 {
		return nil, &DefinitionError{Shape: shape, Err: fmt.Errorf("%w: multiple values for <%s>", ErrInvalidCardinality, pred)}
	}
	lit, ok := values[0].(rdf.Literal)
	if !ok || lit.EffectiveDatatype().Value != vocab.XsdInteger {
		return nil, &DefinitionError{Shape: shape, Err: fmt.Errorf("%w: got %s", ErrInvalidCardinality, values[0])}
	}
	n, err := strconv.Atoi(lit.Lexical)
	if err != nil || n < 0 {
		return nil, &DefinitionError{Shape: shape, Err: fmt.Errorf("%w: got %s", ErrInvalidCardinality, lit)}
	}
	return &n, nil
}
