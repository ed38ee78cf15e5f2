// Package sparql evaluates a CONSTRUCT subset of SPARQL against
// in-memory rdf graphs.
//
// Copyright 2026 Geoknoesis LLC (www.geoknoesis.com)
//
// Author: Stephane Fellah (stephanef@geoknoesis.com)
// Geosemantic-AI expert with 30 years of experience
//
// The subset covers PREFIX/BASE prologues, a CONSTRUCT template, and a
// WHERE block of triple patterns with variables, constants, and
// property paths (sequence p1/p2 and inverse ^p, with ^ binding
// tighter than /). Evaluation enumerates bindings per pattern and
// joins them on shared variables; the template is instantiated once
// per solution into a set-semantics graph, so equivalent pattern
// formulations yield identical results.
//
//	q, err := sparql.ParseQuery(`
//	    PREFIX ex: <https://example.org/kinematics#>
//	    CONSTRUCT { ?position ex:as-seen-by ?frame }
//	    WHERE { ?position ^ex:of-position/ex:as-seen-by ?frame }
//	`)
//	if err != nil {
//	    // handle error
//	}
//	result, err := q.Construct(graph)
//
// Queries can also be assembled programmatically from Query,
// TriplePattern, TemplateTriple, Var, Const, and the path types; the
// same validation applies through (*Query).Validate.
//
// FILTER, OPTIONAL, UNION, SELECT, and named graphs are not part of
// the subset.
package sparql
