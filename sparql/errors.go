package sparql

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyPattern indicates a query whose WHERE block contains no
	// triple patterns.
	ErrEmptyPattern = errors.New("sparql: empty graph pattern")
	// ErrUnboundTemplateVariable indicates a CONSTRUCT template variable
	// that never occurs in the WHERE block.
	ErrUnboundTemplateVariable = errors.New("sparql: unbound template variable")
	// ErrUnknownPrefix indicates a prefixed name with no matching
	// PREFIX declaration.
	ErrUnknownPrefix = errors.New("sparql: unknown prefix")
)

// QueryError reports a structurally invalid query, from Validate or
// from programmatic construction.
type QueryError struct {
	// Var is the offending variable name, when one is involved.
	Var string
	Err error
}

func (e *QueryError) Error() string {
	if e.Var != "" {
		return fmt.Sprintf("%s ?%s", e.Err, e.Var)
	}
	return e.Err.Error()
}

func (e *QueryError) Unwrap() error { return e.Err }

// ParseError reports a query syntax error with its position and the
// offending line.
type ParseError struct {
	Query  string // offending line of the query text
	Line   int    // 1-based line number
	Column int    // 1-based column within the line
	Offset int    // byte offset in the query text
	Err    error  // underlying error
}

func (e *ParseError) Error() string {
	var msg strings.Builder
	msg.WriteString("query")
	if e.Line > 0 {
		if e.Column > 0 {
			fmt.Fprintf(&msg, ":%d:%d", e.Line, e.Column)
		} else {
			fmt.Fprintf(&msg, ":%d", e.Line)
		}
	}
	msg.WriteString(": ")
	msg.WriteString(e.Err.Error())
	if excerpt := e.Excerpt(); excerpt != "" {
		msg.WriteString("\n  ")
		msg.WriteString(excerpt)
	}
	return msg.String()
}

func (e *ParseError) Unwrap() error { return e.Err }

// Excerpt renders the offending line with a caret under the error
// column. Returns "" when no line was captured.
func (e *ParseError) Excerpt() string {
	if e.Query == "" {
		return ""
	}

	const contextLen = 40

	if e.Column <= 0 {
		if len(e.Query) > 2*contextLen {
			return e.Query[:2*contextLen] + "..."
		}
		return e.Query
	}

	pos := e.Column - 1
	if pos > len(e.Query) {
		pos = len(e.Query)
	}

	start := pos - contextLen
	if start < 0 {
		start = 0
	}
	end := pos + contextLen
	if end > len(e.Query) {
		end = len(e.Query)
	}

	excerpt := e.Query[start:end]
	caret := pos - start
	if start > 0 {
		excerpt = "..." + excerpt
		caret += 3
	}
	if end < len(e.Query) {
		excerpt += "..."
	}
	if caret >= len(excerpt) {
		caret = len(excerpt) - 1
	}
	if caret < 0 {
		caret = 0
	}

	var b strings.Builder
	b.WriteString(excerpt)
	b.WriteString("\n  ")
	b.WriteString(strings.Repeat(" ", caret))
	b.WriteByte('^')
	return b.String()
}

// syntaxError carries a byte offset through the parser; ParseQuery
// converts it into a positioned ParseError.
type syntaxError struct {
	pos int
	err error
}

func (e *syntaxError) Error() string { return e.err.Error() }

func (e *syntaxError) Unwrap() error { return e.err }
