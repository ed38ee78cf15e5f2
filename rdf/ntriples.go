package rdf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ntDecoder streams triples from N-Triples input, one statement per
// line. In bridge mode it reads N-Quads statement syntax and fails on
// any statement carrying a graph label: the data model holds single
// default graphs only, and the JSON-LD codec relies on that rejection
// to surface dataset input as ErrNamedGraphsUnsupported.
type ntDecoder struct {
	reader *bufio.Reader
	opts   Options
	err    error
	line   int
	quads  bool
}

func newNTriplesDecoder(r io.Reader, opts Options) *ntDecoder {
	return &ntDecoder{reader: bufio.NewReader(r), opts: opts}
}

// newNQuadsBridgeDecoder reads the N-Quads emitted by the JSON-LD
// processor, rejecting named graph labels.
func newNQuadsBridgeDecoder(r io.Reader, opts Options) *ntDecoder {
	return &ntDecoder{reader: bufio.NewReader(r), opts: opts, quads: true}
}

func (d *ntDecoder) Next() (Triple, error) {
	if d.err != nil {
		return Triple{}, d.err
	}
	for {
		if err := checkDecodeContext(d.opts.Context); err != nil {
			return Triple{}, d.fail(err)
		}

		line, err := readLineWithLimit(d.reader, d.opts.MaxLineBytes)
		if err != nil {
			if err == io.EOF {
				return Triple{}, io.EOF
			}
			if errors.Is(err, ErrLineTooLong) {
				err = wrapParseErrorWithPosition(FormatNTriples, "", d.line+1, 0, 0, err)
			}
			return Triple{}, d.fail(err)
		}
		d.line++

		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		t, err := parseNTStatement(trimmed, d.quads)
		if err != nil {
			return Triple{}, d.fail(d.wrapLineError(trimmed, err))
		}
		return t, nil
	}
}

func (d *ntDecoder) Err() error {
	return d.err
}

func (d *ntDecoder) Close() error {
	return nil
}

func (d *ntDecoder) fail(err error) error {
	d.err = err
	return err
}

func (d *ntDecoder) wrapLineError(line string, err error) error {
	column := 0
	var serr *syntaxError
	if errors.As(err, &serr) {
		column = serr.pos + 1
	}
	if !d.opts.DebugStatements {
		line, column = trimStatement(line, column)
	}
	return wrapParseErrorWithPosition(FormatNTriples, line, d.line, column, 0, err)
}

// parseNTStatement parses one N-Triples statement. With quads set, a
// statement may carry a fourth term, which is always rejected.
func parseNTStatement(line string, quads bool) (Triple, error) {
	c := &ntCursor{input: line}

	subject, err := c.parseSubject()
	if err != nil {
		return Triple{}, err
	}
	predicate, err := c.parseIRIRef()
	if err != nil {
		return Triple{}, err
	}
	object, err := c.parseObject()
	if err != nil {
		return Triple{}, err
	}

	c.skipWS()
	if quads && c.pos < len(c.input) && c.input[c.pos] != '.' {
		graph, err := c.parseSubject()
		if err != nil {
			return Triple{}, err
		}
		return Triple{}, fmt.Errorf("%w: graph label %s", ErrNamedGraphsUnsupported, graph)
	}

	if !c.consume('.') {
		return Triple{}, c.errorf("expected '.' at end of statement")
	}
	c.skipWS()
	if c.pos < len(c.input) {
		return Triple{}, c.errorf("unexpected content after '.'")
	}
	return Triple{S: subject, P: predicate, O: object}, nil
}

type ntCursor struct {
	input string
	pos   int
}

func (c *ntCursor) errorf(format string, args ...any) error {
	return &syntaxError{pos: c.pos, msg: fmt.Sprintf(format, args...)}
}

func (c *ntCursor) skipWS() {
	for c.pos < len(c.input) {
		switch c.input[c.pos] {
		case ' ', '\t', '\r', '\n':
			c.pos++
		default:
			return
		}
	}
}

func (c *ntCursor) consume(ch byte) bool {
	c.skipWS()
	if c.pos < len(c.input) && c.input[c.pos] == ch {
		c.pos++
		return true
	}
	return false
}

// parseSubject accepts an IRI or a blank node label.
func (c *ntCursor) parseSubject() (Term, error) {
	c.skipWS()
	if c.pos >= len(c.input) {
		return nil, c.errorf("unexpected end of statement")
	}
	switch {
	case c.input[c.pos] == '<':
		return c.parseIRIRef()
	case strings.HasPrefix(c.input[c.pos:], "_:"):
		return c.parseBlankNode()
	default:
		return nil, c.errorf("expected IRI or blank node")
	}
}

func (c *ntCursor) parseObject() (Term, error) {
	c.skipWS()
	if c.pos >= len(c.input) {
		return nil, c.errorf("unexpected end of statement")
	}
	switch {
	case c.input[c.pos] == '<':
		return c.parseIRIRef()
	case strings.HasPrefix(c.input[c.pos:], "_:"):
		return c.parseBlankNode()
	case c.input[c.pos] == '"':
		return c.parseLiteral()
	default:
		return nil, c.errorf("expected IRI, blank node, or literal")
	}
}

func (c *ntCursor) parseIRIRef() (IRI, error) {
	if !c.consume('<') {
		return IRI{}, c.errorf("expected IRI")
	}
	start := c.pos
	for c.pos < len(c.input) && c.input[c.pos] != '>' {
		if c.input[c.pos] <= 0x20 {
			return IRI{}, c.errorf("invalid character in IRI")
		}
		c.pos++
	}
	if c.pos >= len(c.input) {
		return IRI{}, c.errorf("unterminated IRI")
	}
	value := c.input[start:c.pos]
	c.pos++

	// IRIREF may carry \u/\U escapes for characters outside ASCII.
	if strings.Contains(value, "\\") {
		decoded, err := UnescapeString(value)
		if err != nil {
			return IRI{}, c.errorf("%v", err)
		}
		value = decoded
	}
	return IRI{Value: value}, nil
}

func (c *ntCursor) parseBlankNode() (BlankNode, error) {
	c.skipWS()
	if !strings.HasPrefix(c.input[c.pos:], "_:") {
		return BlankNode{}, c.errorf("expected blank node")
	}
	c.pos += 2
	start := c.pos
	for c.pos < len(c.input) && !isTermDelimiter(c.input[c.pos]) {
		c.pos++
	}
	if start == c.pos {
		return BlankNode{}, c.errorf("blank node label missing")
	}
	return BlankNode{ID: c.input[start:c.pos]}, nil
}

func (c *ntCursor) parseLiteral() (Literal, error) {
	if !c.consume('"') {
		return Literal{}, c.errorf("expected literal")
	}
	start := c.pos
	for c.pos < len(c.input) {
		ch := c.input[c.pos]
		if ch == '\\' {
			c.pos += 2
			continue
		}
		if ch == '"' {
			break
		}
		c.pos++
	}
	if c.pos >= len(c.input) {
		return Literal{}, c.errorf("unterminated string literal")
	}
	raw := c.input[start:c.pos]
	c.pos++

	lexical, err := UnescapeString(raw)
	if err != nil {
		return Literal{}, c.errorf("%v", err)
	}

	if c.pos < len(c.input) && c.input[c.pos] == '@' {
		c.pos++
		start := c.pos
		for c.pos < len(c.input) && !isTermDelimiter(c.input[c.pos]) {
			c.pos++
		}
		lang := c.input[start:c.pos]
		if !isValidLangTag(lang) {
			return Literal{}, c.errorf("invalid language tag %q", lang)
		}
		return Literal{Lexical: lexical, Lang: lang}, nil
	}
	if strings.HasPrefix(c.input[c.pos:], "^^") {
		c.pos += 2
		dt, err := c.parseIRIRef()
		if err != nil {
			return Literal{}, err
		}
		return Literal{Lexical: lexical, Datatype: dt}, nil
	}
	return Literal{Lexical: lexical}, nil
}

func isTermDelimiter(ch byte) bool {
	switch ch {
	case ' ', '\t', '\r', '\n', '.':
		return true
	default:
		return false
	}
}

// ntEncoder writes canonical N-Triples, one statement per line.
// Triple.String already renders the canonical form, escapes included.
type ntEncoder struct {
	writer *bufio.Writer
	err    error
}

func newNTriplesEncoder(w io.Writer, _ Options) *ntEncoder {
	return &ntEncoder{writer: bufio.NewWriter(w)}
}

func (e *ntEncoder) Write(t Triple) error {
	if e.err != nil {
		return e.err
	}
	if err := t.Validate(); err != nil {
		return err
	}
	if _, err := e.writer.WriteString(t.String() + "\n"); err != nil {
		e.err = err
		return err
	}
	return nil
}

func (e *ntEncoder) Flush() error {
	if e.err != nil {
		return e.err
	}
	return e.writer.Flush()
}

func (e *ntEncoder) Close() error {
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
