package rdf

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/geoknoesis/ldkit-go/vocab"
)

func TestTurtleEncoderHeaderAndAbbreviation(t *testing.T) {
	g := NewGraph(
		Triple{S: IRI{Value: "http://example.org/s"}, P: IRI{Value: vocab.RdfType}, O: IRI{Value: "http://example.org/Thing"}},
		Triple{S: IRI{Value: "http://example.org/s"}, P: IRI{Value: "http://example.org/p"}, O: NewTypedLiteral("1", IRI{Value: vocab.XsdInteger})},
	)
	prefixes := map[string]string{
		"ex":  "http://example.org/",
		"xsd": vocab.XSDNamespace,
	}
	out, err := SerializeGraphString(context.Background(), g, FormatTurtle, OptPrefixes(prefixes))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "@prefix ex: <http://example.org/> .\n" +
		"@prefix xsd: <http://www.w3.org/2001/XMLSchema#> .\n" +
		"\n" +
		"ex:s ex:p \"1\"^^xsd:integer .\n" +
		"ex:s a ex:Thing .\n"
	if out != want {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestTurtleEncoderBaseHeader(t *testing.T) {
	g := NewGraph(exTriple("s", "p", "o"))
	out, err := SerializeGraphString(context.Background(), g, FormatTurtle, OptBase("http://example.org/"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out, "@base <http://example.org/> .\n\n") {
		t.Fatalf("missing base header:\n%s", out)
	}
}

func TestTurtleEncoderNoHeaderWithoutPrefixes(t *testing.T) {
	g := NewGraph(exTriple("s", "p", "o"))
	out, err := SerializeGraphString(context.Background(), g, FormatTurtle)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "<http://example.org/s> <http://example.org/p> <http://example.org/o> .\n"
	if out != want {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestTurtleEncoderFallsBackToFullIRI(t *testing.T) {
	// The local part "o/path" cannot form a prefixed name, so the IRI
	// is written in full.
	g := NewGraph(Triple{
		S: IRI{Value: "http://example.org/s"},
		P: IRI{Value: "http://example.org/p"},
		O: IRI{Value: "http://example.org/o/path"},
	})
	out, err := SerializeGraphString(context.Background(), g, FormatTurtle, OptPrefixes(map[string]string{"ex": "http://example.org/"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "<http://example.org/o/path>") {
		t.Fatalf("expected full IRI fallback:\n%s", out)
	}
	if !strings.Contains(out, "ex:s ex:p") {
		t.Fatalf("expected abbreviated subject and predicate:\n%s", out)
	}
}

func TestTurtleEncoderDeterministic(t *testing.T) {
	g := NewGraph(
		exTriple("s2", "p", "o"),
		exTriple("s1", "p", "o2"),
		exTriple("s1", "p", "o1"),
	)
	first, err := SerializeGraphString(context.Background(), g, FormatTurtle, OptPrefixes(map[string]string{"ex": "http://example.org/"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := SerializeGraphString(context.Background(), g, FormatTurtle, OptPrefixes(map[string]string{"ex": "http://example.org/"}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if again != first {
			t.Fatalf("serialization not deterministic:\n%s\nvs\n%s", first, again)
		}
	}
	if strings.Index(first, "ex:s1 ex:p ex:o1 .") > strings.Index(first, "ex:s2") {
		t.Fatalf("triples not in sorted order:\n%s", first)
	}
}

func TestTurtleEncoderRejectsInvalidTriple(t *testing.T) {
	var buf bytes.Buffer
	enc, err := NewEncoder(&buf, FormatTurtle)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := enc.Write(Triple{P: IRI{Value: "http://example.org/p"}, O: NewLiteral("v")}); err == nil {
		t.Fatal("expected invalid triple error")
	}
}

func TestTurtleEncoderWriteAfterClose(t *testing.T) {
	var buf bytes.Buffer
	enc, err := NewEncoder(&buf, FormatTurtle)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := enc.Write(exTriple("s", "p", "o")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := enc.Write(exTriple("s2", "p", "o")); err == nil {
		t.Fatal("expected write-after-close error")
	}
}

func TestTurtleEncoderRoundTrip(t *testing.T) {
	g := NewGraph(
		Triple{S: IRI{Value: "http://example.org/s"}, P: IRI{Value: vocab.RdfType}, O: IRI{Value: "http://example.org/Thing"}},
		Triple{S: IRI{Value: "http://example.org/s"}, P: IRI{Value: "http://example.org/p"}, O: NewLangLiteral("hello", "en")},
		Triple{S: IRI{Value: "http://example.org/s"}, P: IRI{Value: "http://example.org/q"}, O: NewTypedLiteral("4.2", IRI{Value: vocab.XsdDecimal})},
	)
	out, err := SerializeGraphString(context.Background(), g, FormatTurtle, OptPrefixes(map[string]string{"ex": "http://example.org/"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	back, err := ParseGraphString(context.Background(), out, FormatTurtle)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !g.Equal(back) {
		t.Fatalf("round trip changed graph:\n%s", out)
	}
}
