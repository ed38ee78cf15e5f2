package rdf

import (
	"fmt"
	"strings"

	"github.com/geoknoesis/ldkit-go/vocab"
)

// TermKind identifies RDF term types.
type TermKind uint8

const (
	// TermIRI represents an IRI term.
	TermIRI TermKind = iota
	// TermBlankNode represents a blank node term.
	TermBlankNode
	// TermLiteral represents a literal term.
	TermLiteral
)

// String returns a short name for the kind.
func (k TermKind) String() string {
	switch k {
	case TermIRI:
		return "IRI"
	case TermBlankNode:
		return "BlankNode"
	case TermLiteral:
		return "Literal"
	default:
		return "Unknown"
	}
}

// Term is a value that can appear in RDF statements. All
// implementations are small comparable value types, so terms and
// triples compare with == and work as map keys.
type Term interface {
	Kind() TermKind
	// String renders the term in N-Triples style, for diagnostics and
	// deterministic ordering.
	String() string
}

// IRI represents an RDF IRI. Prefix and base expansion happen during
// parsing; stored values are always fully expanded.
type IRI struct {
	// Value is the IRI string value.
	Value string
}

// Kind implements Term.
func (IRI) Kind() TermKind { return TermIRI }

// String renders the IRI in angle brackets.
func (i IRI) String() string { return "<" + i.Value + ">" }

// BlankNode represents an anonymous node with a document-scoped label.
type BlankNode struct {
	// ID is the blank node label, without the "_:" prefix.
	ID string
}

// Kind implements Term.
func (BlankNode) Kind() TermKind { return TermBlankNode }

// String renders the blank node label.
func (b BlankNode) String() string { return "_:" + b.ID }

// Literal represents a data value: a lexical form plus a datatype, or
// a language-tagged string.
type Literal struct {
	// Lexical is the literal's lexical form.
	Lexical string
	// Datatype is the literal's datatype IRI. A zero value means
	// xsd:string.
	Datatype IRI
	// Lang is the language tag; when non-empty the effective datatype
	// is rdf:langString.
	Lang string
}

// Kind implements Term.
func (Literal) Kind() TermKind { return TermLiteral }

// String renders the literal in N-Triples style.
func (l Literal) String() string {
	quoted := `"` + escapeLiteral(l.Lexical) + `"`
	if l.Lang != "" {
		return quoted + "@" + l.Lang
	}
	if l.Datatype.Value != "" && l.Datatype.Value != vocab.XsdString {
		return quoted + "^^" + l.Datatype.String()
	}
	return quoted
}

// escapeLiteral applies the string escapes shared by N-Triples and
// Turtle. Printable characters pass through unescaped.
func escapeLiteral(s string) string {
	if strings.IndexFunc(s, func(r rune) bool { return r == '"' || r == '\\' || r < 0x20 }) < 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, `\u%04X`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

// EffectiveDatatype resolves the literal's datatype, applying the
// rdf:langString and xsd:string defaults.
func (l Literal) EffectiveDatatype() IRI {
	if l.Lang != "" {
		return IRI{Value: vocab.RdfLangString}
	}
	if l.Datatype.Value == "" {
		return IRI{Value: vocab.XsdString}
	}
	return l.Datatype
}

// NewLiteral returns a plain xsd:string literal.
func NewLiteral(lexical string) Literal {
	return Literal{Lexical: lexical}
}

// NewTypedLiteral returns a literal with an explicit datatype.
func NewTypedLiteral(lexical string, datatype IRI) Literal {
	return Literal{Lexical: lexical, Datatype: datatype}
}

// NewLangLiteral returns a language-tagged string literal.
func NewLangLiteral(lexical, lang string) Literal {
	return Literal{Lexical: lexical, Lang: lang}
}

// Triple represents an RDF triple.
type Triple struct {
	S Term
	P IRI
	O Term
}

// String renders the triple as an N-Triples statement without the
// trailing newline.
func (t Triple) String() string {
	return fmt.Sprintf("%s %s %s .", termString(t.S), t.P.String(), termString(t.O))
}

// Validate checks the RDF positional rules: the subject must be a
// non-empty IRI or blank node, the predicate a non-empty IRI, and the
// object any non-nil term.
func (t Triple) Validate() error {
	switch s := t.S.(type) {
	case nil:
		return fmt.Errorf("%w: missing subject", ErrInvalidTriple)
	case IRI:
		if s.Value == "" {
			return fmt.Errorf("%w: empty subject IRI", ErrInvalidTriple)
		}
	case BlankNode:
		if s.ID == "" {
			return fmt.Errorf("%w: empty blank node label in subject", ErrInvalidTriple)
		}
	case Literal:
		return fmt.Errorf("%w: literal subject", ErrInvalidTriple)
	}
	if t.P.Value == "" {
		return fmt.Errorf("%w: empty predicate IRI", ErrInvalidTriple)
	}
	if t.O == nil {
		return fmt.Errorf("%w: missing object", ErrInvalidTriple)
	}
	return nil
}

func termString(t Term) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
