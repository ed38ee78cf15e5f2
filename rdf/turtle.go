package rdf

import (
	"fmt"
	"strings"

	"github.com/geoknoesis/ldkit-go/vocab"
)

// parseTurtleStatement parses one complete Turtle triple statement and
// returns its triples, expansion triples from collections and blank
// node property lists included. Directives never reach this function;
// the decoder handles them line-wise.
func parseTurtleStatement(prefixes map[string]string, base string, bnodes *blankNodeGenerator, statement string) ([]Triple, error) {
	cursor := &turtleCursor{
		input:    statement,
		prefixes: prefixes,
		base:     base,
		bnodes:   bnodes,
	}

	subject, err := cursor.parseSubject()
	if err != nil {
		return nil, err
	}

	cursor.skipWS()
	// A blank node property list may stand alone as a whole statement.
	if cursor.lastTermBlankNodeList && cursor.pos < len(cursor.input) && cursor.input[cursor.pos] == '.' {
		cursor.pos++
		if err := cursor.ensureStatementEnd(); err != nil {
			return nil, err
		}
		return cursor.expansion, nil
	}

	triples, err := cursor.parsePredicateObjectList(subject)
	if err != nil {
		return nil, err
	}
	return append(triples, cursor.expansion...), nil
}

// turtleCursor is a recursive-descent parser over a single statement.
type turtleCursor struct {
	input    string
	pos      int
	prefixes map[string]string
	base     string
	bnodes   *blankNodeGenerator
	// expansion collects triples generated while parsing collections
	// and blank node property lists.
	expansion             []Triple
	lastTermBlankNodeList bool
}

// blankNodeGenerator mints fresh anonymous blank node labels. The
// decoder shares one generator across all statements of a document so
// labels stay unique within it.
type blankNodeGenerator struct {
	counter int
}

func (g *blankNodeGenerator) next() BlankNode {
	g.counter++
	return BlankNode{ID: fmt.Sprintf("b%d", g.counter)}
}

// syntaxError records the byte position of a syntax failure inside the
// statement so the decoder can report line/column context.
type syntaxError struct {
	pos int
	msg string
}

func (e *syntaxError) Error() string { return e.msg }

func (c *turtleCursor) errorf(format string, args ...any) error {
	return &syntaxError{pos: c.pos, msg: fmt.Sprintf(format, args...)}
}

func (c *turtleCursor) skipWS() {
	for c.pos < len(c.input) {
		switch c.input[c.pos] {
		case ' ', '\t', '\r', '\n':
			c.pos++
		default:
			return
		}
	}
}

func (c *turtleCursor) consume(ch byte) bool {
	c.skipWS()
	if c.pos < len(c.input) && c.input[c.pos] == ch {
		c.pos++
		return true
	}
	return false
}

func (c *turtleCursor) peekNext() byte {
	if c.pos+1 >= len(c.input) {
		return 0
	}
	return c.input[c.pos+1]
}

// ensureStatementEnd verifies nothing follows the terminating '.'.
func (c *turtleCursor) ensureStatementEnd() error {
	c.skipWS()
	if c.pos < len(c.input) {
		return c.errorf("unexpected content after '.'")
	}
	return nil
}

func (c *turtleCursor) parseSubject() (Term, error) {
	c.skipWS()
	return c.parseTerm(false)
}

func (c *turtleCursor) parsePredicate() (IRI, error) {
	c.skipWS()
	if strings.HasPrefix(c.input[c.pos:], "a") && c.terminatorAt(c.pos+1) {
		c.pos++
		return IRI{Value: vocab.RdfType}, nil
	}
	term, err := c.parseTerm(false)
	if err != nil {
		return IRI{}, err
	}
	if iri, ok := term.(IRI); ok {
		return iri, nil
	}
	return IRI{}, c.errorf("predicate must be an IRI")
}

func (c *turtleCursor) parseObject() (Term, error) {
	return c.parseTerm(true)
}

// parseObjectList parses the comma-separated objects of one predicate.
// It reports whether the statement's terminating '.' was consumed.
func (c *turtleCursor) parseObjectList(subject Term, predicate IRI) ([]Triple, bool, error) {
	var triples []Triple
	for {
		object, err := c.parseObject()
		if err != nil {
			return nil, false, err
		}
		triples = append(triples, Triple{S: subject, P: predicate, O: object})

		c.skipWS()
		if c.pos < len(c.input) && c.input[c.pos] == ',' {
			c.pos++
			c.skipWS()
			continue
		}
		if c.pos < len(c.input) && c.input[c.pos] == '.' {
			c.pos++
			if err := c.ensureStatementEnd(); err != nil {
				return nil, false, err
			}
			return triples, true, nil
		}
		return triples, false, nil
	}
}

func (c *turtleCursor) parsePredicateObjectList(subject Term) ([]Triple, error) {
	var triples []Triple
	for {
		predicate, err := c.parsePredicate()
		if err != nil {
			return nil, err
		}

		objectTriples, ended, err := c.parseObjectList(subject, predicate)
		if err != nil {
			return nil, err
		}
		triples = append(triples, objectTriples...)
		if ended {
			return triples, nil
		}

		c.skipWS()
		// Semicolons continue with the next predicate; repeats and a
		// trailing semicolon before '.' are allowed.
		hadSemicolon := false
		for c.pos < len(c.input) && c.input[c.pos] == ';' {
			hadSemicolon = true
			c.pos++
			c.skipWS()
		}
		if hadSemicolon {
			if c.pos < len(c.input) && c.input[c.pos] == '.' {
				c.pos++
				return triples, c.ensureStatementEnd()
			}
			continue
		}

		if c.pos < len(c.input) && c.input[c.pos] == '.' {
			c.pos++
			return triples, c.ensureStatementEnd()
		}
		return nil, c.errorf("expected ',', ';', or '.'")
	}
}

// parseTerm parses any term. Literals are rejected when the position
// does not allow them (subjects, predicates, datatypes).
func (c *turtleCursor) parseTerm(allowLiteral bool) (Term, error) {
	c.skipWS()
	c.lastTermBlankNodeList = false
	if c.pos >= len(c.input) {
		return nil, c.errorf("unexpected end of statement")
	}

	switch {
	case c.input[c.pos] == '<':
		return c.parseIRI()
	case strings.HasPrefix(c.input[c.pos:], "_:"):
		return c.parseBlankNode()
	case c.input[c.pos] == '[':
		return c.parseBlankNodePropertyList()
	case c.input[c.pos] == '(':
		return c.parseCollection()
	case c.input[c.pos] == '"' || c.input[c.pos] == '\'':
		if !allowLiteral {
			return nil, c.errorf("literal not allowed here")
		}
		quote := c.input[c.pos]
		if strings.HasPrefix(c.input[c.pos:], strings.Repeat(string(quote), 3)) {
			return c.parseLongLiteral(quote)
		}
		return c.parseLiteralWithQuote(quote)
	}

	if allowLiteral {
		if num, ok := c.tryParseNumericLiteral(); ok {
			return num, nil
		}
		if boolean, ok := c.tryParseBooleanLiteral(); ok {
			return boolean, nil
		}
	}
	return c.parsePrefixedName()
}

func (c *turtleCursor) parseIRI() (Term, error) {
	if !c.consume('<') {
		return nil, c.errorf("expected IRI")
	}
	var b strings.Builder
	for c.pos < len(c.input) {
		ch := c.input[c.pos]
		if ch == '>' {
			c.pos++
			value := b.String()
			if c.base != "" {
				value = ResolveIRI(c.base, value)
			}
			return IRI{Value: value}, nil
		}
		if ch == '\\' {
			// IRIREF allows \uXXXX and \UXXXXXXXX escapes only.
			cp, n, err := c.decodeIRIEscape()
			if err != nil {
				return nil, err
			}
			if isDisallowedIRIChar(cp) {
				return nil, c.errorf("invalid character in IRI")
			}
			b.WriteRune(cp)
			c.pos += n
			continue
		}
		// Control characters and delimiters must be escaped. Bytes
		// >= 0x80 are parts of multi-byte UTF-8 runes and pass through.
		if ch <= 0x20 || ch == 0x7F || ch == '<' || ch == '"' || ch == '{' || ch == '}' || ch == '|' || ch == '^' || ch == '`' {
			return nil, c.errorf("invalid character in IRI")
		}
		b.WriteByte(ch)
		c.pos++
	}
	return nil, c.errorf("unterminated IRI")
}

func (c *turtleCursor) decodeIRIEscape() (rune, int, error) {
	rest := c.input[c.pos:]
	if len(rest) < 2 {
		return 0, 0, c.errorf("unterminated IRI")
	}
	switch rest[1] {
	case 'u':
		if len(rest) < 6 {
			return 0, 0, c.errorf("unterminated IRI")
		}
		cp := decodeHexRune(rest[2:6])
		if cp < 0 || !isValidCodePoint(cp) {
			return 0, 0, c.errorf("invalid escape in IRI")
		}
		return cp, 6, nil
	case 'U':
		if len(rest) < 10 {
			return 0, 0, c.errorf("unterminated IRI")
		}
		cp := decodeHexRune(rest[2:10])
		if cp < 0 || !isValidCodePoint(cp) {
			return 0, 0, c.errorf("invalid escape in IRI")
		}
		return cp, 10, nil
	default:
		return 0, 0, c.errorf("invalid escape in IRI")
	}
}

// isDisallowedIRIChar reports code points that may not appear in an
// IRI even via escapes.
func isDisallowedIRIChar(cp rune) bool {
	if cp <= 0x20 || cp == 0x7F {
		return true
	}
	switch cp {
	case '<', '>', '"', '{', '}', '|', '^', '`', '\\':
		return true
	}
	return false
}

func (c *turtleCursor) tryParseNumericLiteral() (Literal, bool) {
	start := c.pos
	if c.pos < len(c.input) && (c.input[c.pos] == '+' || c.input[c.pos] == '-') {
		c.pos++
	}
	if c.pos >= len(c.input) {
		c.pos = start
		return Literal{}, false
	}

	hasDot := false
	hasExponent := false
	hasDigits := false

	// Numbers may start with '.' (.5, -.7).
	if c.input[c.pos] == '.' {
		if c.pos+1 < len(c.input) && c.input[c.pos+1] >= '0' && c.input[c.pos+1] <= '9' {
			hasDot = true
			c.pos++
		} else {
			c.pos = start
			return Literal{}, false
		}
	}

	for c.pos < len(c.input) {
		ch := c.input[c.pos]
		if ch >= '0' && ch <= '9' {
			hasDigits = true
			c.pos++
		} else if ch == '.' && !hasDot && !hasExponent {
			// A dot is a decimal point only when followed by a digit
			// or exponent; otherwise it terminates the statement.
			next := c.peekNext()
			if (next >= '0' && next <= '9') || next == 'e' || next == 'E' {
				hasDot = true
				c.pos++
			} else {
				break
			}
		} else if (ch == 'e' || ch == 'E') && !hasExponent && hasDigits {
			hasExponent = true
			c.pos++
			if c.pos < len(c.input) && (c.input[c.pos] == '+' || c.input[c.pos] == '-') {
				c.pos++
			}
			if c.pos >= len(c.input) || c.input[c.pos] < '0' || c.input[c.pos] > '9' {
				c.pos = start
				return Literal{}, false
			}
		} else {
			break
		}
	}

	if !hasDigits {
		c.pos = start
		return Literal{}, false
	}
	if c.pos < len(c.input) && !isTurtleTerminator(c.input[c.pos], c.peekNext()) {
		c.pos = start
		return Literal{}, false
	}

	lexical := c.input[start:c.pos]
	var datatype IRI
	switch {
	case hasExponent:
		datatype = IRI{Value: vocab.XsdDouble}
	case hasDot:
		datatype = IRI{Value: vocab.XsdDecimal}
	default:
		datatype = IRI{Value: vocab.XsdInteger}
	}
	return Literal{Lexical: lexical, Datatype: datatype}, true
}

func (c *turtleCursor) tryParseBooleanLiteral() (Literal, bool) {
	for _, lexical := range [...]string{"true", "false"} {
		if strings.HasPrefix(c.input[c.pos:], lexical) && c.terminatorAt(c.pos+len(lexical)) {
			c.pos += len(lexical)
			return Literal{Lexical: lexical, Datatype: IRI{Value: vocab.XsdBoolean}}, true
		}
	}
	return Literal{}, false
}

// terminatorAt reports whether the token running up to pos ends there:
// either the statement ends or a Turtle terminator follows.
func (c *turtleCursor) terminatorAt(pos int) bool {
	if pos >= len(c.input) {
		return true
	}
	next := byte(0)
	if pos+1 < len(c.input) {
		next = c.input[pos+1]
	}
	return isTurtleTerminator(c.input[pos], next)
}

func (c *turtleCursor) parsePrefixedName() (Term, error) {
	start := c.pos
	for c.pos < len(c.input) {
		ch := c.input[c.pos]
		if ch == '\\' && c.pos+1 < len(c.input) {
			c.pos += 2
			continue
		}
		if isTurtleTerminator(ch, c.peekNext()) {
			break
		}
		c.pos++
	}
	token := c.input[start:c.pos]
	if token == "" {
		return nil, c.errorf("expected term")
	}

	prefix, local, found := strings.Cut(token, ":")
	if !found {
		return nil, c.errorf("invalid token %q", token)
	}
	namespace, ok := c.prefixes[prefix]
	if !ok {
		return nil, c.errorf("unknown prefix %q", prefix)
	}
	if local == "" {
		return IRI{Value: namespace}, nil
	}

	if local[0] == '.' || local[0] == '-' {
		return nil, c.errorf("invalid token %q", token)
	}
	if strings.HasSuffix(local, ".") && (len(local) < 2 || local[len(local)-2] != '\\') {
		return nil, c.errorf("invalid token %q", token)
	}
	for i := 0; i < len(local); i++ {
		switch local[i] {
		case '~', '^':
			return nil, c.errorf("invalid token %q", token)
		case '\\':
			if i+1 >= len(local) || !isPNLocalEscape(local[i+1]) {
				return nil, c.errorf("invalid token %q", token)
			}
			i++
		case '%':
			if i+2 >= len(local) || !isHexDigit(local[i+1]) || !isHexDigit(local[i+2]) {
				return nil, c.errorf("invalid token %q", token)
			}
			i += 2
		}
	}
	return IRI{Value: namespace + unescapePNLocal(local)}, nil
}

func (c *turtleCursor) parseBlankNode() (Term, error) {
	if !strings.HasPrefix(c.input[c.pos:], "_:") {
		return nil, c.errorf("expected blank node")
	}
	c.pos += 2
	start := c.pos
	for c.pos < len(c.input) {
		ch := c.input[c.pos]
		if ch == ':' || isTurtleTerminator(ch, c.peekNext()) {
			break
		}
		c.pos++
	}
	if start == c.pos {
		return nil, c.errorf("blank node label missing")
	}
	label := c.input[start:c.pos]
	if label[0] == '.' || label[len(label)-1] == '.' {
		return nil, c.errorf("invalid blank node label")
	}
	return BlankNode{ID: label}, nil
}

func (c *turtleCursor) parseLiteralWithQuote(quote byte) (Term, error) {
	if !c.consume(quote) {
		return nil, c.errorf("expected literal")
	}
	start := c.pos
	for c.pos < len(c.input) {
		ch := c.input[c.pos]
		if ch == '\\' {
			c.pos += 2
			continue
		}
		if ch == quote {
			break
		}
		c.pos++
	}
	if c.pos >= len(c.input) {
		return nil, c.errorf("unterminated string literal")
	}
	raw := c.input[start:c.pos]
	c.pos++

	lexical, err := UnescapeString(raw)
	if err != nil {
		return nil, c.errorf("%v", err)
	}
	return c.finishLiteral(lexical)
}

// parseLongLiteral parses a triple-quoted string ("""...""" or
// '''...'''). Unescaped quotes are allowed inside as long as fewer
// than three repeat.
func (c *turtleCursor) parseLongLiteral(quote byte) (Term, error) {
	c.pos += 3
	start := c.pos
	closing := strings.Repeat(string(quote), 3)
	for c.pos < len(c.input) {
		ch := c.input[c.pos]
		if ch == '\\' {
			c.pos += 2
			continue
		}
		if ch == quote && strings.HasPrefix(c.input[c.pos:], closing) {
			break
		}
		c.pos++
	}
	if c.pos >= len(c.input) {
		return nil, c.errorf("unterminated long string literal")
	}
	raw := c.input[start:c.pos]
	c.pos += 3

	lexical, err := UnescapeString(raw)
	if err != nil {
		return nil, c.errorf("%v", err)
	}
	return c.finishLiteral(lexical)
}

// finishLiteral attaches an optional language tag or datatype.
func (c *turtleCursor) finishLiteral(lexical string) (Term, error) {
	if c.pos < len(c.input) && c.input[c.pos] == '@' {
		c.pos++
		start := c.pos
		for c.pos < len(c.input) && !isTurtleTerminator(c.input[c.pos], c.peekNext()) && c.input[c.pos] != '^' {
			c.pos++
		}
		lang := c.input[start:c.pos]
		if !isValidLangTag(lang) {
			return nil, c.errorf("invalid language tag %q", lang)
		}
		if strings.HasPrefix(c.input[c.pos:], "^^") {
			return nil, c.errorf("literal cannot carry both language tag and datatype")
		}
		return Literal{Lexical: lexical, Lang: lang}, nil
	}
	if strings.HasPrefix(c.input[c.pos:], "^^") {
		c.pos += 2
		dt, err := c.parseTerm(false)
		if err != nil {
			return nil, err
		}
		iri, ok := dt.(IRI)
		if !ok {
			return nil, c.errorf("datatype must be an IRI")
		}
		return Literal{Lexical: lexical, Datatype: iri}, nil
	}
	return Literal{Lexical: lexical}, nil
}

// parseCollection parses (object*) into an rdf:first/rdf:rest chain,
// returning the head node (rdf:nil for an empty collection). The
// chain's triples land in the expansion list.
func (c *turtleCursor) parseCollection() (Term, error) {
	if !c.consume('(') {
		return nil, c.errorf("expected '('")
	}

	var objects []Term
	for {
		c.skipWS()
		if c.pos >= len(c.input) {
			return nil, c.errorf("unterminated collection")
		}
		if c.input[c.pos] == ')' {
			c.pos++
			break
		}
		obj, err := c.parseTerm(true)
		if err != nil {
			return nil, err
		}
		objects = append(objects, obj)
	}

	if len(objects) == 0 {
		return IRI{Value: vocab.RdfNil}, nil
	}

	head := c.bnodes.next()
	current := head
	for i, obj := range objects {
		c.expansion = append(c.expansion, Triple{S: current, P: IRI{Value: vocab.RdfFirst}, O: obj})
		if i == len(objects)-1 {
			c.expansion = append(c.expansion, Triple{S: current, P: IRI{Value: vocab.RdfRest}, O: IRI{Value: vocab.RdfNil}})
			break
		}
		next := c.bnodes.next()
		c.expansion = append(c.expansion, Triple{S: current, P: IRI{Value: vocab.RdfRest}, O: next})
		current = next
	}
	return head, nil
}

// parseBlankNodePropertyList parses [predicateObjectList] and returns
// the fresh blank node; the inner triples land in the expansion list.
// The empty form [] is a plain anonymous node.
func (c *turtleCursor) parseBlankNodePropertyList() (Term, error) {
	if !c.consume('[') {
		return nil, c.errorf("expected '['")
	}
	c.skipWS()

	bn := c.bnodes.next()
	if c.pos < len(c.input) && c.input[c.pos] == ']' {
		c.pos++
		c.skipWS()
		c.lastTermBlankNodeList = true
		return bn, nil
	}

	for {
		predicate, err := c.parsePredicate()
		if err != nil {
			return nil, err
		}

		for {
			object, err := c.parseObject()
			if err != nil {
				return nil, err
			}
			c.expansion = append(c.expansion, Triple{S: bn, P: predicate, O: object})

			c.skipWS()
			if c.pos < len(c.input) && c.input[c.pos] == ',' {
				c.pos++
				c.skipWS()
				continue
			}
			break
		}

		c.skipWS()
		if c.pos < len(c.input) && c.input[c.pos] == ']' {
			c.pos++
			c.skipWS()
			c.lastTermBlankNodeList = true
			return bn, nil
		}
		hadSemicolon := false
		for c.pos < len(c.input) && c.input[c.pos] == ';' {
			hadSemicolon = true
			c.pos++
			c.skipWS()
		}
		if hadSemicolon {
			// A trailing semicolon before ']' is allowed.
			if c.pos < len(c.input) && c.input[c.pos] == ']' {
				c.pos++
				c.skipWS()
				c.lastTermBlankNodeList = true
				return bn, nil
			}
			continue
		}
		return nil, c.errorf("expected ',', ';', or ']'")
	}
}

// isTurtleTerminator reports whether ch ends a bare token. A dot only
// terminates when what follows cannot continue a decimal literal or
// prefixed name.
func isTurtleTerminator(ch byte, next byte) bool {
	switch ch {
	case ' ', '\t', '\r', '\n', ';', ',', '(', ')', '[', ']', '}', '>', '"', '\'', '<':
		return true
	case '.':
		switch next {
		case 0, ' ', '\t', '\r', '\n', ';', ',', ')', ']', '}':
			return true
		default:
			return false
		}
	default:
		return false
	}
}
