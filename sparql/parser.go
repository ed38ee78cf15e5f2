package sparql

import (
	"fmt"
	"strings"

	"github.com/geoknoesis/ldkit-go/rdf"
	"github.com/geoknoesis/ldkit-go/vocab"
)

// ParseQuery parses the CONSTRUCT query subset: an optional
// PREFIX/BASE prologue, a CONSTRUCT template block, and a WHERE
// pattern block. WHERE predicates accept property paths built from
// IRIs, inversion '^', and sequencing '/', with '^' binding tighter.
// Syntax errors are reported as *ParseError; structural errors
// (empty pattern, unbound template variables) as *QueryError.
func ParseQuery(text string) (*Query, error) {
	c := &queryCursor{input: text, prefixes: make(map[string]string)}
	q, err := c.parseQuery()
	if err != nil {
		return nil, c.positioned(err)
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return q, nil
}

type queryCursor struct {
	input    string
	pos      int
	prefixes map[string]string
	base     string
}

func (c *queryCursor) errorf(pos int, format string, args ...any) error {
	return &syntaxError{pos: pos, err: fmt.Errorf(format, args...)}
}

// positioned converts an internal syntax error into a ParseError with
// line, column, and the offending line text.
func (c *queryCursor) positioned(err error) error {
	serr, ok := err.(*syntaxError)
	if !ok {
		return err
	}
	line, column, lineText := lineAt(c.input, serr.pos)
	return &ParseError{
		Query:  lineText,
		Line:   line,
		Column: column,
		Offset: serr.pos,
		Err:    serr.err,
	}
}

// lineAt maps a byte offset to its 1-based line and column and the
// text of that line.
func lineAt(input string, offset int) (line, column int, lineText string) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(input) {
		offset = len(input)
	}

	lineStart := 0
	line = 1
	for i := 0; i < offset; i++ {
		if input[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	lineEnd := len(input)
	for i := lineStart; i < len(input); i++ {
		if input[i] == '\n' {
			lineEnd = i
			break
		}
	}
	column = offset - lineStart + 1
	return line, column, strings.TrimRight(input[lineStart:lineEnd], "\r")
}

func (c *queryCursor) parseQuery() (*Query, error) {
	if err := c.parsePrologue(); err != nil {
		return nil, err
	}
	if !c.matchKeyword("CONSTRUCT") {
		return nil, c.errorf(c.pos, "expected CONSTRUCT")
	}
	template, err := c.parseTemplateBlock()
	if err != nil {
		return nil, err
	}
	if !c.matchKeyword("WHERE") {
		return nil, c.errorf(c.pos, "expected WHERE")
	}
	where, err := c.parsePatternBlock()
	if err != nil {
		return nil, err
	}
	c.skipWS()
	if !c.eof() {
		return nil, c.errorf(c.pos, "unexpected content after WHERE block")
	}
	return &Query{Template: template, Where: where}, nil
}

func (c *queryCursor) parsePrologue() error {
	for {
		switch {
		case c.matchKeyword("PREFIX"):
			if err := c.parsePrefixDecl(); err != nil {
				return err
			}
		case c.matchKeyword("BASE"):
			iri, err := c.parseIRIRef()
			if err != nil {
				return err
			}
			c.base = iri.Value
		default:
			return nil
		}
	}
}

func (c *queryCursor) parsePrefixDecl() error {
	c.skipWS()
	start := c.pos
	for c.pos < len(c.input) && c.input[c.pos] != ':' {
		if !isPrefixLabelByte(c.input[c.pos]) {
			return c.errorf(c.pos, "invalid prefix declaration")
		}
		c.pos++
	}
	if c.eof() {
		return c.errorf(start, "unterminated prefix declaration")
	}
	name := c.input[start:c.pos]
	c.pos++ // ':'
	iri, err := c.parseIRIRef()
	if err != nil {
		return err
	}
	c.prefixes[name] = iri.Value
	return nil
}

// parseTemplateBlock parses '{ template-triples }'.
func (c *queryCursor) parseTemplateBlock() ([]TemplateTriple, error) {
	if err := c.expect('{'); err != nil {
		return nil, err
	}
	var out []TemplateTriple
	for {
		c.skipWS()
		if c.eof() {
			return nil, c.errorf(c.pos, "unterminated template block")
		}
		if c.peek() == '}' {
			c.pos++
			return out, nil
		}
		if err := c.parseTemplateTriples(&out); err != nil {
			return nil, err
		}
	}
}

// parseTemplateTriples parses one subject with its predicate-object
// list, appending one template triple per predicate-object pair.
func (c *queryCursor) parseTemplateTriples(out *[]TemplateTriple) error {
	subj, err := c.parseNode(false)
	if err != nil {
		return err
	}
	for {
		pred, err := c.parseTemplatePredicate()
		if err != nil {
			return err
		}
		if err := c.parseObjectList(func(obj Node) {
			*out = append(*out, TemplateTriple{Subject: subj, Predicate: pred, Object: obj})
		}); err != nil {
			return err
		}
		if !c.continueList() {
			break
		}
	}
	c.consumeDot()
	return nil
}

// parsePatternBlock parses '{ pattern-triples }'.
func (c *queryCursor) parsePatternBlock() ([]TriplePattern, error) {
	if err := c.expect('{'); err != nil {
		return nil, err
	}
	var out []TriplePattern
	for {
		c.skipWS()
		if c.eof() {
			return nil, c.errorf(c.pos, "unterminated pattern block")
		}
		if c.peek() == '}' {
			c.pos++
			return out, nil
		}
		if err := c.parsePatternTriples(&out); err != nil {
			return nil, err
		}
	}
}

func (c *queryCursor) parsePatternTriples(out *[]TriplePattern) error {
	subj, err := c.parseNode(false)
	if err != nil {
		return err
	}
	for {
		path, err := c.parsePath()
		if err != nil {
			return err
		}
		if err := c.parseObjectList(func(obj Node) {
			*out = append(*out, TriplePattern{Subject: subj, Path: path, Object: obj})
		}); err != nil {
			return err
		}
		if !c.continueList() {
			break
		}
	}
	c.consumeDot()
	return nil
}

// parseObjectList parses 'object (, object)*', emitting each object.
func (c *queryCursor) parseObjectList(emit func(Node)) error {
	for {
		obj, err := c.parseNode(true)
		if err != nil {
			return err
		}
		emit(obj)
		c.skipWS()
		if c.peek() != ',' {
			return nil
		}
		c.pos++
	}
}

// continueList consumes a ';' separator and reports whether another
// predicate-object pair follows. A trailing ';' before '.' or '}' is
// tolerated, as in Turtle.
func (c *queryCursor) continueList() bool {
	c.skipWS()
	if c.peek() != ';' {
		return false
	}
	c.pos++
	c.skipWS()
	if c.peek() == '.' || c.peek() == '}' {
		return false
	}
	return true
}

// consumeDot consumes an optional statement terminator; the final dot
// before '}' may be omitted.
func (c *queryCursor) consumeDot() {
	c.skipWS()
	if c.peek() == '.' {
		c.pos++
	}
}

// parsePath parses 'elt (/ elt)*'.
func (c *queryCursor) parsePath() (Path, error) {
	first, err := c.parsePathElt()
	if err != nil {
		return nil, err
	}
	parts := []Path{first}
	for {
		c.skipWS()
		if c.peek() != '/' {
			break
		}
		c.pos++
		next, err := c.parsePathElt()
		if err != nil {
			return nil, err
		}
		parts = append(parts, next)
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return SequencePath{Parts: parts}, nil
}

// parsePathElt parses '^'? primary, so inversion binds tighter than
// sequencing.
func (c *queryCursor) parsePathElt() (Path, error) {
	c.skipWS()
	if c.peek() == '^' {
		c.pos++
		inner, err := c.parsePathPrimary()
		if err != nil {
			return nil, err
		}
		return InversePath{Path: inner}, nil
	}
	return c.parsePathPrimary()
}

func (c *queryCursor) parsePathPrimary() (Path, error) {
	c.skipWS()
	start := c.pos
	switch {
	case c.eof():
		return nil, c.errorf(start, "expected property path")
	case c.peek() == '<':
		iri, err := c.parseIRIRef()
		if err != nil {
			return nil, err
		}
		return PredicatePath{IRI: iri}, nil
	case c.isTypeKeyword():
		c.pos++
		return PredicatePath{IRI: rdf.IRI{Value: vocab.RdfType}}, nil
	case c.peek() == '?':
		return nil, c.errorf(start, "variables are not allowed in property paths")
	default:
		iri, err := c.parsePrefixedName()
		if err != nil {
			return nil, err
		}
		return PredicatePath{IRI: iri}, nil
	}
}

// parseTemplatePredicate parses a template predicate: a variable, 'a',
// an IRI, or a prefixed name. Property path operators are rejected.
func (c *queryCursor) parseTemplatePredicate() (Node, error) {
	c.skipWS()
	start := c.pos
	switch {
	case c.eof():
		return nil, c.errorf(start, "expected predicate")
	case c.peek() == '?':
		v, err := c.parseVar()
		if err != nil {
			return nil, err
		}
		return v, nil
	case c.peek() == '^':
		return nil, c.errorf(start, "property paths are not allowed in templates")
	case c.peek() == '<':
		iri, err := c.parseIRIRef()
		if err != nil {
			return nil, err
		}
		return Const{Term: iri}, nil
	case c.isTypeKeyword():
		c.pos++
		return Const{Term: rdf.IRI{Value: vocab.RdfType}}, nil
	default:
		iri, err := c.parsePrefixedName()
		if err != nil {
			return nil, err
		}
		return Const{Term: iri}, nil
	}
}

// parseNode parses a subject or object: a variable, an IRI, a
// prefixed name, or (in object position) a literal.
func (c *queryCursor) parseNode(allowLiteral bool) (Node, error) {
	c.skipWS()
	start := c.pos
	switch {
	case c.eof():
		return nil, c.errorf(start, "unexpected end of query")
	case c.peek() == '?':
		v, err := c.parseVar()
		if err != nil {
			return nil, err
		}
		return v, nil
	case c.peek() == '<':
		iri, err := c.parseIRIRef()
		if err != nil {
			return nil, err
		}
		return Const{Term: iri}, nil
	case c.peek() == '"' || c.peek() == '\'':
		if !allowLiteral {
			return nil, c.errorf(start, "literal not allowed in subject position")
		}
		lit, err := c.parseLiteral()
		if err != nil {
			return nil, err
		}
		return Const{Term: lit}, nil
	case c.peek() == '_' && strings.HasPrefix(c.input[c.pos:], "_:"):
		return nil, c.errorf(start, "blank nodes are not supported in queries")
	case c.peek() == '[':
		return nil, c.errorf(start, "blank nodes are not supported in queries")
	default:
		if allowLiteral {
			if lit, ok, err := c.tryParseNumericLiteral(); err != nil {
				return nil, err
			} else if ok {
				return Const{Term: lit}, nil
			}
			if lit, ok := c.tryParseBooleanLiteral(); ok {
				return Const{Term: lit}, nil
			}
		}
		iri, err := c.parsePrefixedName()
		if err != nil {
			return nil, err
		}
		return Const{Term: iri}, nil
	}
}

func (c *queryCursor) parseVar() (Var, error) {
	start := c.pos
	c.pos++ // '?'
	nameStart := c.pos
	for c.pos < len(c.input) && isVarNameByte(c.input[c.pos]) {
		c.pos++
	}
	if c.pos == nameStart {
		return Var{}, c.errorf(start, "empty variable name")
	}
	return Var{Name: c.input[nameStart:c.pos]}, nil
}

func (c *queryCursor) parseIRIRef() (rdf.IRI, error) {
	c.skipWS()
	start := c.pos
	if c.peek() != '<' {
		return rdf.IRI{}, c.errorf(start, "expected IRI reference")
	}
	c.pos++
	iriStart := c.pos
	for c.pos < len(c.input) {
		ch := c.input[c.pos]
		if ch == '>' {
			raw := c.input[iriStart:c.pos]
			c.pos++
			return c.expandIRI(start, raw)
		}
		if ch <= 0x20 || ch == '<' || ch == '"' || ch == '{' || ch == '}' || ch == '|' || ch == '`' {
			return rdf.IRI{}, c.errorf(c.pos, "invalid character in IRI reference")
		}
		c.pos++
	}
	return rdf.IRI{}, c.errorf(start, "unterminated IRI reference")
}

func (c *queryCursor) expandIRI(pos int, raw string) (rdf.IRI, error) {
	if strings.Contains(raw, "\\") {
		decoded, err := rdf.UnescapeString(raw)
		if err != nil {
			return rdf.IRI{}, c.errorf(pos, "invalid IRI escape: %v", err)
		}
		raw = decoded
	}
	value := raw
	if c.base != "" {
		value = rdf.ResolveIRI(c.base, raw)
	}
	if err := rdf.ValidateIRI(value); err != nil {
		return rdf.IRI{}, c.errorf(pos, "%v", err)
	}
	return rdf.IRI{Value: value}, nil
}

func (c *queryCursor) parsePrefixedName() (rdf.IRI, error) {
	start := c.pos
	for c.pos < len(c.input) {
		ch := c.input[c.pos]
		if ch == '\\' && c.pos+1 < len(c.input) && isLocalEscapeByte(c.input[c.pos+1]) {
			c.pos += 2
			continue
		}
		if ch == '.' {
			// A dot ends the token unless a name character follows:
			// PN_LOCAL admits interior dots but never a trailing one.
			if c.pos+1 >= len(c.input) || !isLocalByte(c.input[c.pos+1]) {
				break
			}
			c.pos++
			continue
		}
		if !isLocalByte(ch) && ch != ':' {
			break
		}
		c.pos++
	}
	token := c.input[start:c.pos]
	if token == "" {
		return rdf.IRI{}, c.errorf(start, "expected term")
	}
	prefix, local, ok := strings.Cut(token, ":")
	if !ok {
		return rdf.IRI{}, c.errorf(start, "expected prefixed name, found %q", token)
	}
	ns, ok := c.prefixes[prefix]
	if !ok {
		return rdf.IRI{}, c.errorf(start, "%w %q", ErrUnknownPrefix, prefix)
	}
	return rdf.IRI{Value: ns + unescapeLocal(local)}, nil
}

func (c *queryCursor) parseLiteral() (rdf.Literal, error) {
	start := c.pos
	quote := c.input[c.pos]
	c.pos++
	bodyStart := c.pos
	for c.pos < len(c.input) && c.input[c.pos] != quote {
		ch := c.input[c.pos]
		if ch == '\\' {
			c.pos += 2
			continue
		}
		if ch == '\n' || ch == '\r' {
			return rdf.Literal{}, c.errorf(c.pos, "unterminated string literal")
		}
		c.pos++
	}
	if c.pos >= len(c.input) {
		return rdf.Literal{}, c.errorf(start, "unterminated string literal")
	}
	raw := c.input[bodyStart:c.pos]
	c.pos++

	lexical, err := rdf.UnescapeString(raw)
	if err != nil {
		return rdf.Literal{}, c.errorf(start, "invalid string escape: %v", err)
	}

	// Language tag or datatype follows the closing quote directly.
	if c.pos < len(c.input) && c.input[c.pos] == '@' {
		c.pos++
		tagStart := c.pos
		for c.pos < len(c.input) && (isASCIIAlnumByte(c.input[c.pos]) || c.input[c.pos] == '-') {
			c.pos++
		}
		tag := c.input[tagStart:c.pos]
		if !isLangTag(tag) {
			return rdf.Literal{}, c.errorf(tagStart, "invalid language tag %q", tag)
		}
		return rdf.Literal{Lexical: lexical, Lang: tag}, nil
	}
	if strings.HasPrefix(c.input[c.pos:], "^^") {
		c.pos += 2
		var dt rdf.IRI
		var dtErr error
		if c.peek() == '<' {
			dt, dtErr = c.parseIRIRef()
		} else {
			dt, dtErr = c.parsePrefixedName()
		}
		if dtErr != nil {
			return rdf.Literal{}, dtErr
		}
		return rdf.Literal{Lexical: lexical, Datatype: dt}, nil
	}
	return rdf.Literal{Lexical: lexical}, nil
}

// tryParseNumericLiteral parses a bare numeric token, typing it
// xsd:integer, xsd:decimal, or xsd:double by lexical shape.
func (c *queryCursor) tryParseNumericLiteral() (rdf.Literal, bool, error) {
	start := c.pos
	ch := c.peek()
	if ch != '+' && ch != '-' && ch != '.' && (ch < '0' || ch > '9') {
		return rdf.Literal{}, false, nil
	}
	if ch == '.' && (c.pos+1 >= len(c.input) || c.input[c.pos+1] < '0' || c.input[c.pos+1] > '9') {
		return rdf.Literal{}, false, nil
	}

	end := c.pos
	if c.input[end] == '+' || c.input[end] == '-' {
		end++
	}
	hasDigits := false
	hasDot := false
	hasExponent := false
	for end < len(c.input) {
		b := c.input[end]
		if b >= '0' && b <= '9' {
			hasDigits = true
			end++
			continue
		}
		if b == '.' && !hasDot && !hasExponent {
			// A dot ends the token unless digits follow.
			if end+1 >= len(c.input) || c.input[end+1] < '0' || c.input[end+1] > '9' {
				break
			}
			hasDot = true
			end++
			continue
		}
		if (b == 'e' || b == 'E') && hasDigits && !hasExponent {
			hasExponent = true
			end++
			if end < len(c.input) && (c.input[end] == '+' || c.input[end] == '-') {
				end++
			}
			continue
		}
		break
	}
	if !hasDigits {
		return rdf.Literal{}, false, nil
	}
	if end < len(c.input) && !isTokenDelimiter(c.input[end]) {
		return rdf.Literal{}, false, c.errorf(end, "malformed numeric literal")
	}

	lexical := c.input[start:end]
	c.pos = end
	datatype := vocab.XsdInteger
	switch {
	case hasExponent:
		datatype = vocab.XsdDouble
	case hasDot:
		datatype = vocab.XsdDecimal
	}
	return rdf.Literal{Lexical: lexical, Datatype: rdf.IRI{Value: datatype}}, true, nil
}

func (c *queryCursor) tryParseBooleanLiteral() (rdf.Literal, bool) {
	for _, kw := range [...]string{"true", "false"} {
		end := c.pos + len(kw)
		if end > len(c.input) || c.input[c.pos:end] != kw {
			continue
		}
		if end < len(c.input) && !isTokenDelimiter(c.input[end]) {
			continue
		}
		c.pos = end
		return rdf.Literal{Lexical: kw, Datatype: rdf.IRI{Value: vocab.XsdBoolean}}, true
	}
	return rdf.Literal{}, false
}

// isTypeKeyword reports whether the cursor sits on the bare keyword
// 'a' (rdf:type shorthand) rather than a prefixed name starting with
// the letter a.
func (c *queryCursor) isTypeKeyword() bool {
	if c.peek() != 'a' {
		return false
	}
	if c.pos+1 >= len(c.input) {
		return true
	}
	next := c.input[c.pos+1]
	return !isLocalByte(next) && next != ':'
}

func (c *queryCursor) skipWS() {
	for c.pos < len(c.input) {
		ch := c.input[c.pos]
		if ch == '#' {
			for c.pos < len(c.input) && c.input[c.pos] != '\n' {
				c.pos++
			}
			continue
		}
		if ch != ' ' && ch != '\t' && ch != '\r' && ch != '\n' {
			return
		}
		c.pos++
	}
}

func (c *queryCursor) eof() bool { return c.pos >= len(c.input) }

func (c *queryCursor) peek() byte {
	if c.eof() {
		return 0
	}
	return c.input[c.pos]
}

func (c *queryCursor) expect(ch byte) error {
	c.skipWS()
	if c.peek() != ch {
		return c.errorf(c.pos, "expected %q", string(ch))
	}
	c.pos++
	return nil
}

// matchKeyword consumes the keyword case-insensitively when the
// upcoming token equals it.
func (c *queryCursor) matchKeyword(kw string) bool {
	c.skipWS()
	end := c.pos + len(kw)
	if end > len(c.input) {
		return false
	}
	if !strings.EqualFold(c.input[c.pos:end], kw) {
		return false
	}
	if end < len(c.input) && isVarNameByte(c.input[end]) {
		return false
	}
	c.pos = end
	return true
}

func isVarNameByte(ch byte) bool {
	return ch == '_' || ch >= '0' && ch <= '9' || ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z'
}

func isASCIIAlnumByte(ch byte) bool {
	return ch >= '0' && ch <= '9' || ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z'
}

func isPrefixLabelByte(ch byte) bool {
	return isVarNameByte(ch) || ch == '-' || ch == '.'
}

// isLocalByte reports bytes that may appear in the local part of a
// prefixed name. Multi-byte UTF-8 sequences pass through.
func isLocalByte(ch byte) bool {
	return isVarNameByte(ch) || ch == '-' || ch == '%' || ch >= 0x80
}

func isLocalEscapeByte(ch byte) bool {
	switch ch {
	case '_', '~', '.', '-', '!', '$', '&', '\'', '(', ')', '*', '+', ',', ';', '=', '/', '?', '#', '@', '%':
		return true
	}
	return false
}

// unescapeLocal strips PN_LOCAL backslash escapes, keeping the
// escaped character.
func unescapeLocal(local string) string {
	if !strings.Contains(local, "\\") {
		return local
	}
	var b strings.Builder
	b.Grow(len(local))
	for i := 0; i < len(local); i++ {
		if local[i] == '\\' && i+1 < len(local) {
			i++
		}
		b.WriteByte(local[i])
	}
	return b.String()
}

func isTokenDelimiter(ch byte) bool {
	switch ch {
	case ' ', '\t', '\r', '\n', ',', ';', '.', '}', ')', '#':
		return true
	}
	return false
}

func isLangTag(tag string) bool {
	if tag == "" {
		return false
	}
	for i, part := range strings.Split(tag, "-") {
		if part == "" {
			return false
		}
		for j := 0; j < len(part); j++ {
			ch := part[j]
			if ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' {
				continue
			}
			if i > 0 && ch >= '0' && ch <= '9' {
				continue
			}
			return false
		}
	}
	return true
}
