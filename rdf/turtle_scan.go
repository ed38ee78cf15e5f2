package rdf

import (
	"bufio"
	"context"
	"io"
	"strings"
)

// Turtle directive keywords. Both the Turtle (@prefix) and SPARQL
// (PREFIX) spellings are accepted.
const (
	directiveAtPrefix = "@prefix"
	directiveAtBase   = "@base"
	directivePrefix   = "PREFIX"
	directiveBase     = "BASE"
)

// readLineWithLimit reads one line including its terminator,
// returning ErrLineTooLong when the line exceeds maxBytes. A final
// line without a newline is returned as-is at EOF.
func readLineWithLimit(reader *bufio.Reader, maxBytes int) (string, error) {
	var buffer []byte
	for {
		part, err := reader.ReadSlice('\n')
		buffer = append(buffer, part...)
		if maxBytes > 0 && len(buffer) > maxBytes {
			discardLine(reader)
			return "", ErrLineTooLong
		}
		switch err {
		case nil:
			return string(buffer), nil
		case bufio.ErrBufferFull:
			continue
		case io.EOF:
			if len(buffer) > 0 {
				return string(buffer), nil
			}
			return "", io.EOF
		default:
			return "", err
		}
	}
}

// discardLine skips the remainder of an over-long line so decoding
// can report the error without leaving the reader mid-line.
func discardLine(reader *bufio.Reader) {
	for {
		if _, err := reader.ReadSlice('\n'); err != bufio.ErrBufferFull {
			return
		}
	}
}

func checkDecodeContext(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// stripComment removes a trailing # comment, leaving # intact inside
// string literals, IRIs, and PN_LOCAL escapes.
func stripComment(line string) string {
	inString := false
	inIRI := false
	quote := byte(0)

	for i := 0; i < len(line); i++ {
		ch := line[i]

		if inString {
			if ch == quote && (i == 0 || line[i-1] != '\\') {
				inString = false
				quote = 0
			}
			continue
		}
		if inIRI {
			if ch == '>' {
				inIRI = false
			}
			continue
		}

		switch ch {
		case '"', '\'':
			inString = true
			quote = ch
		case '<':
			inIRI = true
		case '#':
			if i > 0 && line[i-1] == '\\' {
				continue
			}
			return line[:i]
		}
	}
	return line
}

// isStatementComplete reports whether the accumulated text forms a
// full Turtle statement: a terminating '.' outside strings, IRIs,
// blank node property lists, and collections.
func isStatementComplete(stmt string) bool {
	inString := false
	longString := false
	quote := byte(0)
	inIRI := false
	brackets := 0
	parens := 0

	for i := 0; i < len(stmt); i++ {
		ch := stmt[i]

		if inString {
			if ch == '\\' {
				i++
				continue
			}
			if ch == quote {
				if longString {
					if i+2 < len(stmt) && stmt[i+1] == quote && stmt[i+2] == quote {
						inString = false
						longString = false
						i += 2
					}
				} else {
					inString = false
				}
			}
			continue
		}
		if inIRI {
			if ch == '>' {
				inIRI = false
			}
			continue
		}

		switch ch {
		case '<':
			inIRI = true
		case '"', '\'':
			inString = true
			quote = ch
			if i+2 < len(stmt) && stmt[i+1] == ch && stmt[i+2] == ch {
				longString = true
				i += 2
			}
		case '[':
			brackets++
		case ']':
			if brackets > 0 {
				brackets--
			}
		case '(':
			parens++
		case ')':
			if parens > 0 {
				parens--
			}
		case '.':
			if brackets != 0 || parens != 0 {
				continue
			}
			// A dot between digits or before a name character is part
			// of a decimal literal or prefixed name, not a terminator.
			if i > 0 && stmt[i-1] >= '0' && stmt[i-1] <= '9' && i+1 < len(stmt) {
				next := stmt[i+1]
				if (next >= 'a' && next <= 'z') || (next >= 'A' && next <= 'Z') || next == '_' || (next >= '0' && next <= '9') {
					continue
				}
			}
			if strings.TrimSpace(stmt[i+1:]) == "" {
				return true
			}
		}
	}
	return false
}

// parseAtPrefixDirective parses "@prefix p: <iri> ." returning the
// prefix label and namespace IRI.
func parseAtPrefixDirective(line string) (prefix, iri string, ok bool) {
	if !strings.HasPrefix(line, directiveAtPrefix) {
		return "", "", false
	}
	rest := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(line[len(directiveAtPrefix):]), "."))
	return splitPrefixBinding(rest)
}

// parseBarePrefixDirective parses the SPARQL-style "PREFIX p: <iri>"
// (case-insensitive keyword, no terminating dot).
func parseBarePrefixDirective(line string) (prefix, iri string, ok bool) {
	if len(line) < len(directivePrefix) || !strings.EqualFold(line[:len(directivePrefix)], directivePrefix) {
		return "", "", false
	}
	return splitPrefixBinding(strings.TrimSpace(line[len(directivePrefix):]))
}

func splitPrefixBinding(rest string) (prefix, iri string, ok bool) {
	colon := strings.Index(rest, ":")
	if colon < 0 {
		return "", "", false
	}
	prefix = strings.TrimSpace(rest[:colon])
	if !isValidPrefixName(prefix) {
		return "", "", false
	}
	iriPart := strings.TrimSpace(rest[colon+1:])
	if !strings.HasPrefix(iriPart, "<") {
		return "", "", false
	}
	close := strings.IndexByte(iriPart, '>')
	if close <= 0 {
		return "", "", false
	}
	if tail := strings.TrimSpace(iriPart[close+1:]); tail != "" {
		return "", "", false
	}
	return prefix, iriPart[1:close], true
}

// parseAtBaseDirective parses "@base <iri> .".
func parseAtBaseDirective(line string) (string, bool) {
	if !strings.HasPrefix(line, directiveAtBase) {
		return "", false
	}
	rest := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(line[len(directiveAtBase):]), "."))
	return extractAngleIRI(rest)
}

// parseBareBaseDirective parses the SPARQL-style "BASE <iri>".
func parseBareBaseDirective(line string) (string, bool) {
	if len(line) < len(directiveBase) || !strings.EqualFold(line[:len(directiveBase)], directiveBase) {
		return "", false
	}
	rest := strings.TrimSpace(line[len(directiveBase):])
	if strings.HasSuffix(rest, ".") {
		// A terminating dot means @base spelling was intended; reject
		// so the statement path reports the malformed directive.
		return "", false
	}
	return extractAngleIRI(rest)
}

func extractAngleIRI(rest string) (string, bool) {
	if !strings.HasPrefix(rest, "<") {
		return "", false
	}
	close := strings.IndexByte(rest, '>')
	if close <= 0 {
		return "", false
	}
	if tail := strings.TrimSpace(rest[close+1:]); tail != "" {
		return "", false
	}
	return rest[1:close], true
}
