package rdf

import (
	"bufio"
	"io"
	"sort"

	"github.com/geoknoesis/ldkit-go/vocab"
)

// turtleEncoder writes one triple per line, emitting an @base/@prefix
// header before the first statement. IRIs abbreviate to prefixed names
// against the configured prefix table; rdf:type renders as 'a'.
type turtleEncoder struct {
	writer  *bufio.Writer
	opts    Options
	err     error
	started bool
}

func newTurtleEncoder(w io.Writer, opts Options) *turtleEncoder {
	return &turtleEncoder{writer: bufio.NewWriter(w), opts: opts}
}

func (e *turtleEncoder) Write(t Triple) error {
	if e.err != nil {
		return e.err
	}
	if err := t.Validate(); err != nil {
		return err
	}
	if !e.started {
		if err := e.writeHeader(); err != nil {
			return err
		}
	}

	line := renderTermTurtle(t.S, e.opts.Prefixes) + " " +
		renderPredicateTurtle(t.P, e.opts.Prefixes) + " " +
		renderTermTurtle(t.O, e.opts.Prefixes) + " .\n"
	if _, err := e.writer.WriteString(line); err != nil {
		e.err = err
		return err
	}
	return nil
}

func (e *turtleEncoder) Flush() error {
	if e.err != nil {
		return e.err
	}
	return e.writer.Flush()
}

func (e *turtleEncoder) Close() error {
	if e.err != nil {
		return e.err
	}
	if err := e.writer.Flush(); err != nil {
		e.err = err
		return err
	}
	e.err = errEncoderClosed
	return nil
}

func (e *turtleEncoder) writeHeader() error {
	e.started = true
	if e.opts.Base != "" {
		if _, err := e.writer.WriteString("@base <" + e.opts.Base + "> .\n"); err != nil {
			e.err = err
			return err
		}
	}
	if len(e.opts.Prefixes) == 0 {
		if e.opts.Base != "" {
			return e.writeHeaderGap()
		}
		return nil
	}
	for _, prefix := range sortedPrefixKeys(e.opts.Prefixes) {
		line := "@prefix " + prefix + ": <" + e.opts.Prefixes[prefix] + "> .\n"
		if _, err := e.writer.WriteString(line); err != nil {
			e.err = err
			return err
		}
	}
	return e.writeHeaderGap()
}

func (e *turtleEncoder) writeHeaderGap() error {
	if _, err := e.writer.WriteString("\n"); err != nil {
		e.err = err
		return err
	}
	return nil
}

func sortedPrefixKeys(prefixes map[string]string) []string {
	keys := make([]string, 0, len(prefixes))
	for key := range prefixes {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func renderPredicateTurtle(iri IRI, prefixes map[string]string) string {
	if iri.Value == vocab.RdfType {
		return "a"
	}
	return renderIRITurtle(iri, prefixes)
}

func renderIRITurtle(iri IRI, prefixes map[string]string) string {
	if qname, ok := abbreviateQName(iri.Value, prefixes); ok {
		return qname
	}
	return iri.String()
}

func renderTermTurtle(term Term, prefixes map[string]string) string {
	switch value := term.(type) {
	case IRI:
		return renderIRITurtle(value, prefixes)
	case BlankNode:
		return value.String()
	case Literal:
		quoted := `"` + escapeLiteral(value.Lexical) + `"`
		if value.Lang != "" {
			return quoted + "@" + value.Lang
		}
		if value.Datatype.Value != "" && value.Datatype.Value != vocab.XsdString {
			return quoted + "^^" + renderIRITurtle(value.Datatype, prefixes)
		}
		return quoted
	default:
		return termString(term)
	}
}
