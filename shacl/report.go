package shacl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/geoknoesis/ldkit-go/rdf"
	"github.com/geoknoesis/ldkit-go/vocab"
)

// Text renders the report for humans: a conformance line, then one
// numbered block per violation. The block order is the deterministic
// result order.
func (r *Report) Text() string {
	if r.Conforms {
		return "conforms: true\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "conforms: false\nviolations: %d\n", len(r.Results))
	for i, v := range r.Results {
		fmt.Fprintf(&b, "\n[%d] %s\n", i+1, v.Message)
		fmt.Fprintf(&b, "    focus node: %s\n", termKey(v.FocusNode))
		fmt.Fprintf(&b, "    path:       %s\n", v.Path)
		if v.Value != nil {
			fmt.Fprintf(&b, "    value:      %s\n", v.Value)
		}
		fmt.Fprintf(&b, "    component:  %s\n", localName(v.Component))
		fmt.Fprintf(&b, "    shape:      %s\n", termKey(v.SourceShape))
	}
	return b.String()
}

// localName strips the namespace part of an IRI for display.
func localName(iri rdf.IRI) string {
	if i := strings.LastIndexAny(iri.Value, "#/"); i >= 0 && i+1 < len(iri.Value) {
		return iri.Value[i+1:]
	}
	return iri.Value
}

// Graph renders the report as RDF using the SHACL results vocabulary,
// ready for serialization through the rdf codecs. Blank node labels are
// deterministic ("report", "r1", "r2", ...) so repeated renderings of
// the same report serialize identically.
func (r *Report) Graph() *rdf.Graph {
	g := rdf.NewGraph()
	report := rdf.BlankNode{ID: "report"}
	g.Add(rdf.Triple{S: report, P: rdf.IRI{Value: vocab.RdfType}, O: rdf.IRI{Value: vocab.ShValidationReport}})
	g.Add(rdf.Triple{
		S: report,
		P: rdf.IRI{Value: vocab.ShConforms},
		O: rdf.NewTypedLiteral(strconv.FormatBool(r.Conforms), rdf.IRI{Value: vocab.XsdBoolean}),
	})
	for i, v := range r.Results {
		result := rdf.BlankNode{ID: "r" + strconv.Itoa(i+1)}
		g.Add(rdf.Triple{S: report, P: rdf.IRI{Value: vocab.ShResult}, O: result})
		g.Add(rdf.Triple{S: result, P: rdf.IRI{Value: vocab.RdfType}, O: rdf.IRI{Value: vocab.ShValidationResult}})
		g.Add(rdf.Triple{S: result, P: rdf.IRI{Value: vocab.ShResultSeverity}, O: rdf.IRI{Value: vocab.ShViolation}})
		g.Add(rdf.Triple{S: result, P: rdf.IRI{Value: vocab.ShSourceConstraintComponent}, O: v.Component})
		if v.SourceShape != nil {
			g.Add(rdf.Triple{S: result, P: rdf.IRI{Value: vocab.ShSourceShape}, O: v.SourceShape})
		}
		if v.FocusNode != nil {
			g.Add(rdf.Triple{S: result, P: rdf.IRI{Value: vocab.ShFocusNode}, O: v.FocusNode})
		}
		if v.Path.Value != "" {
			g.Add(rdf.Triple{S: result, P: rdf.IRI{Value: vocab.ShResultPath}, O: v.Path})
		}
		if v.Value != nil {
			g.Add(rdf.Triple{S: result, P: rdf.IRI{Value: vocab.ShValue}, O: v.Value})
		}
		if v.Message != "" {
			g.Add(rdf.Triple{S: result, P: rdf.IRI{Value: vocab.ShResultMessage}, O: rdf.NewLiteral(v.Message)})
		}
	}
	return g
}
