package shacl

import (
	"errors"
	"fmt"

	"github.com/geoknoesis/ldkit-go/rdf"
)

var (
	// ErrPropertyShapeExpected indicates an sh:property value that
	// cannot be a property shape (a literal).
	ErrPropertyShapeExpected = errors.New("shacl: sh:property must reference a property shape")
	// ErrMissingPath indicates a property shape with no sh:path in the
	// shapes graph, including dangling IRI references.
	ErrMissingPath = errors.New("shacl: property shape has no sh:path")
	// ErrInvalidPath indicates an sh:path that is not a single IRI.
	// Complex SHACL path expressions are not supported.
	ErrInvalidPath = errors.New("shacl: sh:path must be a single IRI")
	// ErrInvalidClass indicates an sh:class that is not a single IRI.
	ErrInvalidClass = errors.New("shacl: sh:class must be a single IRI")
	// ErrInvalidTargetClass indicates an sh:targetClass that is not an IRI.
	ErrInvalidTargetClass = errors.New("shacl: sh:targetClass must be an IRI")
	// ErrInvalidCardinality indicates an sh:minCount or sh:maxCount that
	// is not a non-negative integer literal.
	ErrInvalidCardinality = errors.New("shacl: cardinality must be a non-negative integer")
	// ErrCardinalityOrder indicates sh:minCount > sh:maxCount.
	ErrCardinalityOrder = errors.New("shacl: sh:minCount exceeds sh:maxCount")
)

// DefinitionError reports a malformed shape definition found while
// parsing a shapes graph.
type DefinitionError struct {
	// Shape names the offending shape: a node shape or property shape
	// term, possibly a blank node for inline shapes.
	Shape rdf.Term
	Err   error
}

func (e *DefinitionError) Error() string {
	if e.Shape == nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v (shape %s)", e.Err, e.Shape)
}

func (e *DefinitionError) Unwrap() error { return e.Err }
