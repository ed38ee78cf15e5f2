package rdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrorCode represents a programmatic error code for error handling.
type ErrorCode string

const (
	// ErrCodeUnsupportedFormat indicates an unsupported format.
	ErrCodeUnsupportedFormat ErrorCode = "UNSUPPORTED_FORMAT"
	// ErrCodeLineTooLong indicates a line exceeded the configured limit.
	ErrCodeLineTooLong ErrorCode = "LINE_TOO_LONG"
	// ErrCodeStatementTooLong indicates a statement exceeded the configured limit.
	ErrCodeStatementTooLong ErrorCode = "STATEMENT_TOO_LONG"
	// ErrCodeParseError indicates a general parse error.
	ErrCodeParseError ErrorCode = "PARSE_ERROR"
	// ErrCodeContextCanceled indicates the context was canceled.
	ErrCodeContextCanceled ErrorCode = "CONTEXT_CANCELED"
	// ErrCodeInvalidIRI indicates an invalid IRI was encountered.
	ErrCodeInvalidIRI ErrorCode = "INVALID_IRI"
	// ErrCodeInvalidTriple indicates a structurally invalid triple.
	ErrCodeInvalidTriple ErrorCode = "INVALID_TRIPLE"
	// ErrCodeNamedGraphs indicates input that requires RDF dataset support.
	ErrCodeNamedGraphs ErrorCode = "NAMED_GRAPHS_UNSUPPORTED"
	// ErrCodeRemoteContext indicates a refused remote JSON-LD context fetch.
	ErrCodeRemoteContext ErrorCode = "REMOTE_CONTEXTS_DISABLED"
)

var (
	// ErrUnsupportedFormat indicates an unsupported format.
	ErrUnsupportedFormat = errors.New("unsupported RDF format")
	// ErrLineTooLong indicates a line exceeded the configured limit.
	ErrLineTooLong = errors.New("rdf: line exceeds configured limit")
	// ErrStatementTooLong indicates a statement exceeded the configured limit.
	ErrStatementTooLong = errors.New("rdf: statement exceeds configured limit")
	// ErrInvalidIRI indicates a malformed IRI.
	ErrInvalidIRI = errors.New("rdf: invalid IRI")
	// ErrInvalidTriple indicates a triple violating RDF positional rules.
	ErrInvalidTriple = errors.New("rdf: invalid triple")
	// ErrNamedGraphsUnsupported indicates input carrying named graphs;
	// this toolkit handles single default graphs only.
	ErrNamedGraphsUnsupported = errors.New("rdf: named graphs are not supported")
	// ErrRemoteContextsDisabled indicates a JSON-LD document referenced a
	// remote context while no document loader was configured.
	ErrRemoteContextsDisabled = errors.New("rdf: remote JSON-LD context loading is disabled")

	errEncoderClosed = errors.New("rdf: encoder closed")
)

// Code returns the error code for an error, or ErrCodeParseError if unknown.
// Returns empty string for nil errors or io.EOF (which is not an error condition).
func Code(err error) ErrorCode {
	if err == nil || errors.Is(err, io.EOF) {
		return ""
	}

	switch {
	case errors.Is(err, ErrUnsupportedFormat):
		return ErrCodeUnsupportedFormat
	case errors.Is(err, ErrLineTooLong):
		return ErrCodeLineTooLong
	case errors.Is(err, ErrStatementTooLong):
		return ErrCodeStatementTooLong
	case errors.Is(err, ErrInvalidIRI):
		return ErrCodeInvalidIRI
	case errors.Is(err, ErrInvalidTriple):
		return ErrCodeInvalidTriple
	case errors.Is(err, ErrNamedGraphsUnsupported):
		return ErrCodeNamedGraphs
	case errors.Is(err, ErrRemoteContextsDisabled):
		return ErrCodeRemoteContext
	}

	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		// Prefer a more specific code carried by the wrapped error.
		if under := Code(parseErr.Err); under != "" && under != ErrCodeParseError {
			return under
		}
		return ErrCodeParseError
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ErrCodeContextCanceled
	}

	return ErrCodeParseError
}

// ParseError provides structured context for parse failures: the format,
// the offending statement, and the position within it.
type ParseError struct {
	Format    Format // format being decoded
	Statement string // offending statement or input excerpt
	Line      int    // 1-based line number (0 if unknown)
	Column    int    // 1-based column number (0 if unknown)
	Offset    int    // byte offset in input (0 if unknown)
	Err       error  // underlying error
}

func (e *ParseError) Error() string {
	var msg strings.Builder
	msg.WriteString(string(e.Format))

	if e.Line > 0 {
		if e.Column > 0 {
			fmt.Fprintf(&msg, ":%d:%d", e.Line, e.Column)
		} else {
			fmt.Fprintf(&msg, ":%d", e.Line)
		}
	} else if e.Offset > 0 {
		fmt.Fprintf(&msg, " (offset %d)", e.Offset)
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

// Excerpt renders the offending fragment of the statement with a caret
// under the error column, windowed to keep long statements readable.
// Returns "" when no statement was captured.
func (e *ParseError) Excerpt() string {
	if e.Statement == "" {
		return ""
	}

	const maxExcerptLen = 80
	const contextLen = 40

	if e.Column <= 0 {
		if len(e.Statement) > maxExcerptLen {
			return e.Statement[:maxExcerptLen] + "..."
		}
		return e.Statement
	}

	pos := e.Column - 1
	if pos > len(e.Statement) {
		pos = len(e.Statement)
	}

	start := pos - contextLen
	if start < 0 {
		start = 0
	}
	end := pos + contextLen
	if end > len(e.Statement) {
		end = len(e.Statement)
	}

	excerpt := e.Statement[start:end]
	caret := pos - start
	if start > 0 {
		excerpt = "..." + excerpt
		caret += 3
	}
	if end < len(e.Statement) {
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

// wrapParseError adds format/statement context to a parse error.
func wrapParseError(format Format, statement string, offset int, err error) error {
	return wrapParseErrorWithPosition(format, statement, 0, 0, offset, err)
}

// trimStatement windows a long statement around the error column so
// parse errors stay readable without carrying whole documents. The
// returned column is adjusted to the window.
func trimStatement(statement string, column int) (string, int) {
	const window = 200
	if len(statement) <= window {
		return statement, column
	}
	pos := 0
	if column > 0 {
		pos = column - 1
	}
	if pos > len(statement) {
		pos = len(statement)
	}
	start := pos - window/2
	if start < 0 {
		start = 0
	}
	end := start + window
	if end > len(statement) {
		end = len(statement)
		start = end - window
	}
	trimmed := statement[start:end]
	if column <= 0 {
		return trimmed, 0
	}
	return trimmed, column - start
}

// wrapParseErrorWithPosition adds format/statement/position context to a
// parse error. Position information already carried by a wrapped
// *ParseError is preserved when the caller has none.
func wrapParseErrorWithPosition(format Format, statement string, line, column, offset int, err error) error {
	if err == nil {
		return nil
	}
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		if parseErr.Line > 0 && line == 0 {
			line = parseErr.Line
		}
		if parseErr.Column > 0 && column == 0 {
			column = parseErr.Column
		}
		if parseErr.Offset > 0 && offset == 0 {
			offset = parseErr.Offset
		}
	}
	return &ParseError{
		Format:    format,
		Statement: statement,
		Line:      line,
		Column:    column,
		Offset:    offset,
		Err:       err,
	}
}
