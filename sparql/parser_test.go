package sparql

import (
	"errors"
	"strings"
	"testing"

	"github.com/geoknoesis/ldkit-go/rdf"
	"github.com/geoknoesis/ldkit-go/vocab"
)

func TestParseQueryBasic(t *testing.T) {
	q, err := ParseQuery(`
PREFIX ex: <http://example.org/>
CONSTRUCT { ?s ex:related ?o }
WHERE { ?s ex:p ?o }
`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(q.Template) != 1 || len(q.Where) != 1 {
		t.Fatalf("unexpected query shape: %d templates, %d patterns", len(q.Template), len(q.Where))
	}

	tt := q.Template[0]
	if tt.Subject != (Var{Name: "s"}) || tt.Object != (Var{Name: "o"}) {
		t.Fatalf("unexpected template endpoints: %v", tt)
	}
	pred, ok := tt.Predicate.(Const)
	if !ok || pred.Term != (rdf.IRI{Value: "http://example.org/related"}) {
		t.Fatalf("unexpected template predicate: %v", tt.Predicate)
	}

	tp := q.Where[0]
	path, ok := tp.Path.(PredicatePath)
	if !ok || path.IRI.Value != "http://example.org/p" {
		t.Fatalf("unexpected pattern path: %v", tp.Path)
	}
}

func TestParseQueryTypeKeyword(t *testing.T) {
	q, err := ParseQuery(`
PREFIX ex: <http://example.org/>
CONSTRUCT { ?s a ex:Output }
WHERE { ?s a ex:Input }
`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pred, ok := q.Template[0].Predicate.(Const)
	if !ok || pred.Term != (rdf.IRI{Value: vocab.RdfType}) {
		t.Fatalf("template 'a' not expanded: %v", q.Template[0].Predicate)
	}
	path, ok := q.Where[0].Path.(PredicatePath)
	if !ok || path.IRI.Value != vocab.RdfType {
		t.Fatalf("pattern 'a' not expanded: %v", q.Where[0].Path)
	}
}

func TestParseQueryInversePath(t *testing.T) {
	q, err := ParseQuery(`
PREFIX ex: <http://example.org/>
CONSTRUCT { ?o ex:q ?s }
WHERE { ?o ^ex:p ?s }
`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	inv, ok := q.Where[0].Path.(InversePath)
	if !ok {
		t.Fatalf("expected inverse path, got %T", q.Where[0].Path)
	}
	inner, ok := inv.Path.(PredicatePath)
	if !ok || inner.IRI.Value != "http://example.org/p" {
		t.Fatalf("unexpected inner path: %v", inv.Path)
	}
}

func TestParseQuerySequencePathPrecedence(t *testing.T) {
	// '^' binds tighter than '/': ^p/q inverts only the first hop.
	q, err := ParseQuery(`
PREFIX ex: <http://example.org/>
CONSTRUCT { ?x ex:r ?y }
WHERE { ?x ^ex:p/ex:q ?y }
`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	seq, ok := q.Where[0].Path.(SequencePath)
	if !ok {
		t.Fatalf("expected sequence path, got %T", q.Where[0].Path)
	}
	if len(seq.Parts) != 2 {
		t.Fatalf("unexpected part count: %d", len(seq.Parts))
	}
	if _, ok := seq.Parts[0].(InversePath); !ok {
		t.Fatalf("first part should be inverse, got %T", seq.Parts[0])
	}
	if _, ok := seq.Parts[1].(PredicatePath); !ok {
		t.Fatalf("second part should be a predicate, got %T", seq.Parts[1])
	}
	if seq.String() != "^<http://example.org/p>/<http://example.org/q>" {
		t.Fatalf("unexpected path rendering: %s", seq.String())
	}
}

func TestParseQueryPredicateObjectLists(t *testing.T) {
	q, err := ParseQuery(`
PREFIX ex: <http://example.org/>
CONSTRUCT { ?s ex:p1 ?o1 , ?o2 ; ex:p2 ?o1 }
WHERE { ?s ex:q1 ?o1 ; ex:q2 ?o2 . }
`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(q.Template) != 3 {
		t.Fatalf("unexpected template count: %d", len(q.Template))
	}
	if len(q.Where) != 2 {
		t.Fatalf("unexpected pattern count: %d", len(q.Where))
	}
	if q.Where[0].Subject != q.Where[1].Subject {
		t.Fatal("semicolon list lost shared subject")
	}
}

func TestParseQueryLiterals(t *testing.T) {
	q, err := ParseQuery(`
PREFIX ex: <http://example.org/>
PREFIX xsd: <http://www.w3.org/2001/XMLSchema#>
CONSTRUCT { ?s ex:p "plain" }
WHERE {
  ?s ex:a "tagged"@en .
  ?s ex:b "typed"^^xsd:date .
  ?s ex:c 42 .
  ?s ex:d 4.2 .
  ?s ex:e true .
}
`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantObjects := []rdf.Term{
		rdf.NewLangLiteral("tagged", "en"),
		rdf.NewTypedLiteral("typed", rdf.IRI{Value: "http://www.w3.org/2001/XMLSchema#date"}),
		rdf.NewTypedLiteral("42", rdf.IRI{Value: vocab.XsdInteger}),
		rdf.NewTypedLiteral("4.2", rdf.IRI{Value: vocab.XsdDecimal}),
		rdf.NewTypedLiteral("true", rdf.IRI{Value: vocab.XsdBoolean}),
	}
	if len(q.Where) != len(wantObjects) {
		t.Fatalf("unexpected pattern count: %d", len(q.Where))
	}
	for i, want := range wantObjects {
		obj, ok := q.Where[i].Object.(Const)
		if !ok || obj.Term != want {
			t.Fatalf("pattern %d: unexpected object %v, want %v", i, q.Where[i].Object, want)
		}
	}
}

func TestParseQueryBaseResolution(t *testing.T) {
	q, err := ParseQuery(`
BASE <http://example.org/ns/>
CONSTRUCT { ?s <p> ?o }
WHERE { ?s <q> ?o }
`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pred, ok := q.Template[0].Predicate.(Const)
	if !ok || pred.Term != (rdf.IRI{Value: "http://example.org/ns/p"}) {
		t.Fatalf("relative IRI not resolved: %v", q.Template[0].Predicate)
	}
}

func TestParseQueryComments(t *testing.T) {
	q, err := ParseQuery(`
# produce the transitive link
PREFIX ex: <http://example.org/> # namespace
CONSTRUCT { ?s ex:p ?o } # template
WHERE { ?s ex:q ?o } # pattern
`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(q.Where) != 1 {
		t.Fatalf("unexpected pattern count: %d", len(q.Where))
	}
}

func TestParseQueryKeywordCase(t *testing.T) {
	if _, err := ParseQuery("construct { <http://e.org/s> <http://e.org/p> ?o } where { <http://e.org/s> <http://e.org/q> ?o }"); err != nil {
		t.Fatalf("lowercase keywords rejected: %v", err)
	}
}

func TestParseQueryUnknownPrefix(t *testing.T) {
	_, err := ParseQuery(`
CONSTRUCT { ?s ex:p ?o }
WHERE { ?s ex:q ?o }
`)
	if err == nil {
		t.Fatal("expected unknown prefix error")
	}
	if !errors.Is(err, ErrUnknownPrefix) {
		t.Fatalf("expected ErrUnknownPrefix, got %v", err)
	}
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if perr.Line != 2 {
		t.Fatalf("unexpected line: %d", perr.Line)
	}
	if !strings.Contains(err.Error(), `unknown prefix "ex"`) {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestParseQueryMissingConstruct(t *testing.T) {
	_, err := ParseQuery("SELECT * WHERE { ?s ?p ?o }")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "expected CONSTRUCT") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestParseQueryVariablePathRejected(t *testing.T) {
	_, err := ParseQuery(`
CONSTRUCT { ?s <http://example.org/p> ?o }
WHERE { ?s ?p ?o }
`)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "variables are not allowed in property paths") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestParseQueryPathInTemplateRejected(t *testing.T) {
	_, err := ParseQuery(`
PREFIX ex: <http://example.org/>
CONSTRUCT { ?s ^ex:p ?o }
WHERE { ?s ex:q ?o }
`)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "property paths are not allowed in templates") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestParseQueryBlankNodesRejected(t *testing.T) {
	for _, query := range []string{
		"CONSTRUCT { _:b <http://e.org/p> ?o } WHERE { ?s <http://e.org/q> ?o }",
		"CONSTRUCT { ?s <http://e.org/p> ?o } WHERE { [ ] <http://e.org/q> ?o }",
	} {
		_, err := ParseQuery(query)
		if err == nil {
			t.Fatalf("expected blank node rejection: %s", query)
		}
		if !strings.Contains(err.Error(), "blank nodes are not supported") {
			t.Fatalf("unexpected message: %v", err)
		}
	}
}

func TestParseQueryEmptyPattern(t *testing.T) {
	_, err := ParseQuery("CONSTRUCT { <http://e.org/s> <http://e.org/p> <http://e.org/o> } WHERE { }")
	if err == nil {
		t.Fatal("expected empty pattern error")
	}
	if !errors.Is(err, ErrEmptyPattern) {
		t.Fatalf("expected ErrEmptyPattern, got %v", err)
	}
	var qerr *QueryError
	if !errors.As(err, &qerr) {
		t.Fatalf("expected *QueryError, got %T", err)
	}
}

func TestParseQueryUnboundTemplateVariable(t *testing.T) {
	_, err := ParseQuery(`
PREFIX ex: <http://example.org/>
CONSTRUCT { ?missing ex:p ?o }
WHERE { ?s ex:q ?o }
`)
	if err == nil {
		t.Fatal("expected unbound variable error")
	}
	if !errors.Is(err, ErrUnboundTemplateVariable) {
		t.Fatalf("expected ErrUnboundTemplateVariable, got %v", err)
	}
	var qerr *QueryError
	if !errors.As(err, &qerr) {
		t.Fatalf("expected *QueryError, got %T", err)
	}
	if qerr.Var != "missing" {
		t.Fatalf("unexpected variable: %q", qerr.Var)
	}
	if qerr.Error() != "sparql: unbound template variable ?missing" {
		t.Fatalf("unexpected message: %s", qerr.Error())
	}
}

func TestParseQueryTrailingContent(t *testing.T) {
	_, err := ParseQuery("CONSTRUCT { ?s <http://e.org/p> ?o } WHERE { ?s <http://e.org/q> ?o } LIMIT 10")
	if err == nil {
		t.Fatal("expected trailing content error")
	}
	if !strings.Contains(err.Error(), "unexpected content after WHERE block") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestParseErrorExcerptCaret(t *testing.T) {
	_, err := ParseQuery("CONSTRUCT { ?s <http://e.org/p> ?o } WHERE { ?s nonsense ?o }")
	if err == nil {
		t.Fatal("expected parse error")
	}
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	excerpt := perr.Excerpt()
	if excerpt == "" || !strings.Contains(excerpt, "^") {
		t.Fatalf("expected caret excerpt: %q", excerpt)
	}
}

func TestQueryValidateProgrammatic(t *testing.T) {
	p := rdf.IRI{Value: "http://example.org/p"}
	q := &Query{
		Template: []TemplateTriple{{Subject: Var{Name: "s"}, Predicate: Const{Term: p}, Object: Var{Name: "o"}}},
		Where:    []TriplePattern{{Subject: Var{Name: "s"}, Path: PredicatePath{IRI: p}, Object: Var{Name: "o"}}},
	}
	if err := q.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	q.Where = nil
	if err := q.Validate(); !errors.Is(err, ErrEmptyPattern) {
		t.Fatalf("expected ErrEmptyPattern, got %v", err)
	}
}
