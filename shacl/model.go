package shacl

import (
	"github.com/geoknoesis/ldkit-go/rdf"
)

// NodeShape constrains the instances of its target classes through a
// list of property shapes.
type NodeShape struct {
	// ID is the term naming the shape in the shapes graph.
	ID rdf.Term
	// TargetClasses selects the focus nodes: subjects asserted
	// rdf:type C for any listed class C.
	TargetClasses []rdf.IRI
	// Properties are the attached property shapes, inline or shared.
	Properties []*PropertyShape
}

// PropertyShape constrains the values of one predicate at a focus
// node. A shape defined standalone and referenced from several node
// shapes is parsed once and shared by pointer.
type PropertyShape struct {
	// ID is the term naming the shape: an IRI for standalone shapes, a
	// blank node for inline ones.
	ID rdf.Term
	// Path is the constrained predicate.
	Path rdf.IRI
	// Class requires every value to be an instance of the class,
	// following rdfs:subClassOf transitively. The zero value disables
	// the constraint.
	Class rdf.IRI
	// MinCount and MaxCount bound the number of values; nil means
	// unbounded.
	MinCount *int
	MaxCount *int
}

// Shapes is a parsed shapes graph, ready to validate data graphs.
type Shapes struct {
	NodeShapes []*NodeShape

	// source is kept for the subclass closure: sh:class entailment
	// follows rdfs:subClassOf edges asserted in either graph.
	source *rdf.Graph
}

// Violation is one validation result: a constraint that failed for a
// focus node. Violations are report entries, never errors.
type Violation struct {
	// Component identifies the violated constraint kind
	// (sh:MinCountConstraintComponent and friends).
	Component rdf.IRI
	// SourceShape is the property shape that produced the result.
	SourceShape rdf.Term
	// FocusNode is the node that was being validated.
	FocusNode rdf.Term
	// Path is the constrained predicate.
	Path rdf.IRI
	// Value is the offending value node; nil for cardinality
	// violations, which concern the whole value set.
	Value rdf.Term
	// Message describes the failure for humans.
	Message string
}

// Report is the outcome of validating a data graph against a shapes
// graph.
type Report struct {
	// Conforms is true exactly when Results is empty.
	Conforms bool
	// Results lists the violations, ordered by focus node, path,
	// component, and value so reports are deterministic.
	Results []Violation
}
