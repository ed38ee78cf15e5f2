package rdf

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// turtleDecoder streams triples from Turtle input. Lines accumulate
// until a statement-terminating '.' appears; @prefix/@base directives
// take effect in document order for the statements that follow them.
type turtleDecoder struct {
	reader   *bufio.Reader
	opts     Options
	err      error
	prefixes map[string]string
	base     string
	bnodes   blankNodeGenerator
	pending  []Triple // remaining triples of the current statement
	line     int      // 1-based line most recently read
	stmtLine int      // line where the current statement started
}

func newTurtleDecoder(r io.Reader, opts Options) *turtleDecoder {
	d := &turtleDecoder{
		reader:   bufio.NewReader(r),
		opts:     opts,
		prefixes: map[string]string{},
		base:     opts.Base,
	}
	for prefix, iri := range opts.Prefixes {
		d.prefixes[prefix] = iri
	}
	return d
}

func (d *turtleDecoder) Next() (Triple, error) {
	if len(d.pending) > 0 {
		t := d.pending[0]
		d.pending = d.pending[1:]
		return t, nil
	}
	if d.err != nil {
		return Triple{}, d.err
	}

	for {
		if err := checkDecodeContext(d.opts.Context); err != nil {
			return Triple{}, d.fail(err)
		}

		statement, err := d.readStatement()
		if err != nil {
			if err == io.EOF {
				return Triple{}, io.EOF
			}
			return Triple{}, d.fail(err)
		}

		triples, err := parseTurtleStatement(d.prefixes, d.base, &d.bnodes, statement)
		if err != nil {
			return Triple{}, d.fail(d.wrapStatementError(statement, err))
		}
		if len(triples) == 0 {
			continue
		}
		d.pending = triples[1:]
		return triples[0], nil
	}
}

func (d *turtleDecoder) Err() error {
	return d.err
}

func (d *turtleDecoder) Close() error {
	return nil
}

func (d *turtleDecoder) fail(err error) error {
	d.err = err
	return err
}

// readStatement accumulates input lines into one complete statement,
// applying directives and stripping comments along the way. Multi-line
// statements join with single spaces, so raw newlines inside long
// literals are normalized.
func (d *turtleDecoder) readStatement() (string, error) {
	var statement strings.Builder
	d.stmtLine = 0
	for {
		if err := checkDecodeContext(d.opts.Context); err != nil {
			return "", err
		}

		line, err := readLineWithLimit(d.reader, d.opts.MaxLineBytes)
		if err != nil {
			if err == io.EOF {
				if statement.Len() == 0 {
					return "", io.EOF
				}
				// Parse what accumulated; a missing final '.' surfaces
				// as a statement-level syntax error.
				return statement.String(), nil
			}
			if errors.Is(err, ErrLineTooLong) {
				return "", wrapParseErrorWithPosition(FormatTurtle, "", d.line+1, 0, 0, err)
			}
			return "", err
		}
		d.line++

		trimmed := strings.TrimSpace(stripComment(line))
		if trimmed == "" {
			continue
		}
		if statement.Len() == 0 && d.handleDirective(trimmed) {
			continue
		}

		if statement.Len() == 0 {
			d.stmtLine = d.line
		} else {
			statement.WriteByte(' ')
		}
		statement.WriteString(trimmed)
		if statement.Len() > d.opts.MaxStatementBytes {
			return "", wrapParseErrorWithPosition(FormatTurtle, "", d.stmtLine, 0, 0, ErrStatementTooLong)
		}

		if isStatementComplete(statement.String()) {
			return statement.String(), nil
		}
	}
}

// handleDirective applies a directive line. Directives are recognized
// only between statements and must fit on one line.
func (d *turtleDecoder) handleDirective(line string) bool {
	if prefix, iri, ok := parseAtPrefixDirective(line); ok {
		d.prefixes[prefix] = d.resolveDirectiveIRI(iri)
		return true
	}
	if prefix, iri, ok := parseBarePrefixDirective(line); ok {
		d.prefixes[prefix] = d.resolveDirectiveIRI(iri)
		return true
	}
	if iri, ok := parseAtBaseDirective(line); ok {
		d.base = d.resolveDirectiveIRI(iri)
		return true
	}
	if iri, ok := parseBareBaseDirective(line); ok {
		d.base = d.resolveDirectiveIRI(iri)
		return true
	}
	return false
}

// resolveDirectiveIRI resolves a directive's IRI against the current
// base so relative @base/@prefix values chain in document order.
func (d *turtleDecoder) resolveDirectiveIRI(iri string) string {
	if d.base == "" {
		return iri
	}
	return ResolveIRI(d.base, iri)
}

func (d *turtleDecoder) wrapStatementError(statement string, err error) error {
	column := 0
	var serr *syntaxError
	if errors.As(err, &serr) {
		column = serr.pos + 1
	}
	if !d.opts.DebugStatements {
		statement, column = trimStatement(statement, column)
	}
	return wrapParseErrorWithPosition(FormatTurtle, statement, d.stmtLine, column, 0, err)
}
