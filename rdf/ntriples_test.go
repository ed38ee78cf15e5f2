package rdf

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/geoknoesis/ldkit-go/vocab"
)

func TestNTriplesDecode(t *testing.T) {
	input := `<http://example.org/s> <http://example.org/p> <http://example.org/o> .
_:b1 <http://example.org/p> "plain" .
<http://example.org/s> <http://example.org/p2> "hi"@en .
<http://example.org/s> <http://example.org/p3> "1"^^<http://www.w3.org/2001/XMLSchema#integer> .
`
	dec, err := NewDecoder(strings.NewReader(input), FormatNTriples)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var triples []Triple
	for {
		triple, err := dec.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		triples = append(triples, triple)
	}
	if len(triples) != 4 {
		t.Fatalf("unexpected triple count: %d", len(triples))
	}
	if triples[0] != exTriple("s", "p", "o") {
		t.Fatalf("unexpected first triple: %v", triples[0])
	}
	if triples[1].S != (BlankNode{ID: "b1"}) {
		t.Fatalf("unexpected blank subject: %v", triples[1].S)
	}
	if triples[2].O != NewLangLiteral("hi", "en") {
		t.Fatalf("unexpected lang literal: %v", triples[2].O)
	}
	if triples[3].O != NewTypedLiteral("1", IRI{Value: vocab.XsdInteger}) {
		t.Fatalf("unexpected typed literal: %v", triples[3].O)
	}
}

func TestNTriplesCommentsAndBlankLines(t *testing.T) {
	input := "# header comment\n\n<http://example.org/s> <http://example.org/p> <http://example.org/o> .\n\n"
	g, err := ParseGraphString(context.Background(), input, FormatNTriples)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Len() != 1 {
		t.Fatalf("unexpected triple count: %d", g.Len())
	}
}

func TestNTriplesEscapes(t *testing.T) {
	input := `<http://example.org/s> <http://example.org/p> "line\nbreak \"quoted\" ué" .` + "\n"
	g, err := ParseGraphString(context.Background(), input, FormatNTriples)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	objects := g.Objects(IRI{Value: "http://example.org/s"}, IRI{Value: "http://example.org/p"})
	if len(objects) != 1 {
		t.Fatalf("unexpected objects: %v", objects)
	}
	want := "line\nbreak \"quoted\" ué"
	if lit, ok := objects[0].(Literal); !ok || lit.Lexical != want {
		t.Fatalf("unexpected literal: %#v", objects[0])
	}
}

func TestNTriplesSyntaxErrorPosition(t *testing.T) {
	input := "<http://example.org/s> <http://example.org/p> <http://example.org/o> .\n<http://example.org/s> nonsense .\n"
	_, err := ParseGraphString(context.Background(), input, FormatNTriples)
	if err == nil {
		t.Fatal("expected syntax error")
	}
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if perr.Line != 2 {
		t.Fatalf("unexpected line: %d", perr.Line)
	}
	if perr.Format != FormatNTriples {
		t.Fatalf("unexpected format: %s", perr.Format)
	}
}

func TestNTriplesMissingDot(t *testing.T) {
	input := "<http://example.org/s> <http://example.org/p> <http://example.org/o>\n"
	_, err := ParseGraphString(context.Background(), input, FormatNTriples)
	if err == nil {
		t.Fatal("expected missing dot error")
	}
	if !strings.Contains(err.Error(), "expected '.'") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestNTriplesLiteralSubjectRejected(t *testing.T) {
	input := "\"lit\" <http://example.org/p> <http://example.org/o> .\n"
	_, err := ParseGraphString(context.Background(), input, FormatNTriples)
	if err == nil {
		t.Fatal("expected subject error")
	}
}

func TestNTriplesEncodeCanonical(t *testing.T) {
	g := NewGraph(
		Triple{S: IRI{Value: "http://example.org/s"}, P: IRI{Value: "http://example.org/p"}, O: NewLangLiteral("hi", "en")},
		Triple{S: BlankNode{ID: "b1"}, P: IRI{Value: "http://example.org/p"}, O: NewTypedLiteral("1", IRI{Value: vocab.XsdInteger})},
	)
	out, err := SerializeGraphString(context.Background(), g, FormatNTriples)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "<http://example.org/s> <http://example.org/p> \"hi\"@en .\n" +
		"_:b1 <http://example.org/p> \"1\"^^<http://www.w3.org/2001/XMLSchema#integer> .\n"
	if out != want {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestNTriplesIgnoresPrefixOption(t *testing.T) {
	// N-Triples has no prefix mechanism; the option must not leak in.
	g := NewGraph(exTriple("s", "p", "o"))
	out, err := SerializeGraphString(context.Background(), g, FormatNTriples, OptPrefixes(map[string]string{"ex": "http://example.org/"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(out, "ex:") {
		t.Fatalf("prefixed names leaked into N-Triples:\n%s", out)
	}
}

func TestNTriplesRoundTrip(t *testing.T) {
	input := "<http://example.org/s> <http://example.org/p> \"v \\\"x\\\"\"@en .\n"
	g, err := ParseGraphString(context.Background(), input, FormatNTriples)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err := SerializeGraphString(context.Background(), g, FormatNTriples)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != input {
		t.Fatalf("round trip changed document:\n%s\nvs\n%s", input, out)
	}
}
