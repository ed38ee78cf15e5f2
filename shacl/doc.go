// Package shacl validates rdf data graphs against a SHACL subset.
//
// Copyright 2026 Geoknoesis LLC (www.geoknoesis.com)
//
// Author: Stephane Fellah (stephanef@geoknoesis.com)
// Geosemantic-AI expert with 30 years of experience
//
// Shapes are read from an ordinary rdf graph: sh:NodeShape subjects
// with sh:targetClass targets and sh:property shapes carrying sh:path,
// sh:class, sh:minCount, and sh:maxCount. Property shapes may be
// inlined as blank nodes or shared by IRI between node shapes; a shared
// shape behaves exactly as if it were inlined at every reference.
//
//	shapes, err := shacl.ParseShapes(shapesGraph)
//	if err != nil {
//	    // malformed shape definitions (*DefinitionError)
//	}
//	report := shapes.Validate(dataGraph)
//	if !report.Conforms {
//	    fmt.Print(report.Text())
//	}
//
// Malformed shape definitions are errors; constraint failures are not.
// They become Violation results in a Report, ordered deterministically
// and renderable as text or as an RDF report graph.
//
// The sh:class constraint accepts a value whose asserted type is a
// transitive rdfs:subClassOf the expected class, with subclass edges
// read from both the data and shapes graphs. No other inference is
// performed; shape targeting matches asserted rdf:type only.
package shacl
