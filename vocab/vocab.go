// Package vocab provides IRI constants for the W3C vocabularies the toolkit
// works with: RDF, RDF Schema, XML Schema datatypes, and SHACL.
//
// Constants are plain strings so any package can use them without importing
// the data model; wrap them in the term type of the consuming package as
// needed.
//
// References:
// - RDF 1.1 Concepts: https://www.w3.org/TR/rdf11-concepts/
// - RDF Schema 1.1: https://www.w3.org/TR/rdf-schema/
// - XSD datatypes: https://www.w3.org/TR/xmlschema11-2/
// - SHACL: https://www.w3.org/TR/shacl/
package vocab

// Namespace IRIs.
const (
	RDFNamespace   = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFSNamespace  = "http://www.w3.org/2000/01/rdf-schema#"
	XSDNamespace   = "http://www.w3.org/2001/XMLSchema#"
	SHACLNamespace = "http://www.w3.org/ns/shacl#"
)

// RDF core vocabulary.
const (
	// RdfType asserts that a resource is an instance of a class.
	// Turtle and SPARQL abbreviate it as the keyword `a`.
	RdfType = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"

	// RdfFirst and RdfRest link the cells of an RDF collection;
	// RdfNil terminates it. Turtle `( ... )` syntax expands to these.
	RdfFirst = "http://www.w3.org/1999/02/22-rdf-syntax-ns#first"
	RdfRest  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#rest"
	RdfNil   = "http://www.w3.org/1999/02/22-rdf-syntax-ns#nil"

	// RdfLangString is the datatype of language-tagged literals.
	RdfLangString = "http://www.w3.org/1999/02/22-rdf-syntax-ns#langString"
)

// RDF Schema vocabulary.
const (
	// RdfsClass is the class of classes.
	RdfsClass = "http://www.w3.org/2000/01/rdf-schema#Class"

	// RdfsSubClassOf declares a subclass axiom. The shape validator's
	// class constraint follows these edges transitively.
	RdfsSubClassOf = "http://www.w3.org/2000/01/rdf-schema#subClassOf"

	// RdfsLabel provides a human-readable name for a resource.
	RdfsLabel = "http://www.w3.org/2000/01/rdf-schema#label"

	// RdfsComment provides a human-readable description.
	RdfsComment = "http://www.w3.org/2000/01/rdf-schema#comment"
)

// XML Schema datatype IRIs.
const (
	XsdString   = "http://www.w3.org/2001/XMLSchema#string"
	XsdBoolean  = "http://www.w3.org/2001/XMLSchema#boolean"
	XsdInteger  = "http://www.w3.org/2001/XMLSchema#integer"
	XsdDecimal  = "http://www.w3.org/2001/XMLSchema#decimal"
	XsdDouble   = "http://www.w3.org/2001/XMLSchema#double"
	XsdDateTime = "http://www.w3.org/2001/XMLSchema#dateTime"
	XsdAnyURI   = "http://www.w3.org/2001/XMLSchema#anyURI"
)

// SHACL shape vocabulary.
const (
	// ShNodeShape and ShPropertyShape are the two shape classes.
	ShNodeShape     = "http://www.w3.org/ns/shacl#NodeShape"
	ShPropertyShape = "http://www.w3.org/ns/shacl#PropertyShape"

	// ShTargetClass selects the focus nodes a node shape applies to.
	ShTargetClass = "http://www.w3.org/ns/shacl#targetClass"

	// ShProperty attaches a property shape to a node shape, either as an
	// inline blank node or as an IRI reference to a standalone shape.
	ShProperty = "http://www.w3.org/ns/shacl#property"

	// ShPath names the predicate a property shape constrains.
	ShPath = "http://www.w3.org/ns/shacl#path"

	// Constraint parameters.
	ShClass    = "http://www.w3.org/ns/shacl#class"
	ShMinCount = "http://www.w3.org/ns/shacl#minCount"
	ShMaxCount = "http://www.w3.org/ns/shacl#maxCount"
)

// SHACL validation report vocabulary.
const (
	ShValidationReport = "http://www.w3.org/ns/shacl#ValidationReport"
	ShValidationResult = "http://www.w3.org/ns/shacl#ValidationResult"
	ShConforms         = "http://www.w3.org/ns/shacl#conforms"
	ShResult           = "http://www.w3.org/ns/shacl#result"
	ShFocusNode        = "http://www.w3.org/ns/shacl#focusNode"
	ShResultPath       = "http://www.w3.org/ns/shacl#resultPath"
	ShValue            = "http://www.w3.org/ns/shacl#value"
	ShSourceShape      = "http://www.w3.org/ns/shacl#sourceShape"
	ShResultMessage    = "http://www.w3.org/ns/shacl#resultMessage"
	ShResultSeverity   = "http://www.w3.org/ns/shacl#resultSeverity"
	ShViolation        = "http://www.w3.org/ns/shacl#Violation"

	ShSourceConstraintComponent = "http://www.w3.org/ns/shacl#sourceConstraintComponent"

	// Constraint component IRIs used as violation kinds.
	ShMinCountConstraintComponent = "http://www.w3.org/ns/shacl#MinCountConstraintComponent"
	ShMaxCountConstraintComponent = "http://www.w3.org/ns/shacl#MaxCountConstraintComponent"
	ShClassConstraintComponent    = "http://www.w3.org/ns/shacl#ClassConstraintComponent"
)

// Prefixes returns the default prefix table for the vocabularies above.
// The map is freshly allocated on each call; callers may extend it.
func Prefixes() map[string]string {
	return map[string]string{
		"rdf":  RDFNamespace,
		"rdfs": RDFSNamespace,
		"xsd":  XSDNamespace,
		"sh":   SHACLNamespace,
	}
}
