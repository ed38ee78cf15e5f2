// Package rdf provides a compact RDF triple model with streaming
// parsers and encoders.
//
// Copyright 2026 Geoknoesis LLC (www.geoknoesis.com)
//
// Author: Stephane Fellah (stephanef@geoknoesis.com)
// Geosemantic-AI expert with 30 years of experience
//
// It focuses on predictable, low-allocation I/O with a small surface:
//   - Decode: NewDecoder() returns a pull-style decoder.
//   - Encode: NewEncoder() returns a push-style encoder.
//   - Parse: Parse() streams triples to a handler.
//   - Graphs: ParseGraph() and SerializeGraph() work on whole graphs.
//
// Supported formats: Turtle, N-Triples, and JSON-LD. FormatAuto sniffs
// the format from the input's leading bytes. The toolkit works on
// single graphs; N-Quads input carrying named graph labels fails with
// ErrNamedGraphsUnsupported.
//
// Example (decoding):
//
//	dec, err := rdf.NewDecoder(strings.NewReader(input), rdf.FormatTurtle)
//	if err != nil {
//	    // handle error
//	}
//	defer dec.Close()
//
//	for {
//	    triple, err := dec.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        // handle error
//	    }
//	    // process triple.S, triple.P, triple.O
//	}
//
// For unsupported formats, NewDecoder and NewEncoder return
// ErrUnsupportedFormat.
//
// Decoders accept functional options (OptBase, OptMaxLineBytes,
// OptMaxStatementBytes, ...) to resolve relative IRIs and to enforce
// input limits on untrusted data. Parse failures carry position and an
// excerpt of the offending statement through *ParseError.
//
// Remote JSON-LD contexts are refused unless a DocumentLoader is
// configured via OptDocumentLoader.
package rdf
