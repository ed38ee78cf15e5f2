package rdf

import (
	"fmt"
	"strings"
)

// Unicode surrogate range constants used by \uXXXX decoding.
const (
	surrogateHighStart = 0xD800
	surrogateHighEnd   = 0xDBFF
	surrogateLowStart  = 0xDC00
	surrogateLowEnd    = 0xDFFF
	surrogateBase      = 0x10000
)

func isHexDigit(ch byte) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

// parseHexDigit converts a single hex digit byte to its integer value.
func parseHexDigit(ch byte) (int, bool) {
	switch {
	case ch >= '0' && ch <= '9':
		return int(ch - '0'), true
	case ch >= 'a' && ch <= 'f':
		return int(ch-'a') + 10, true
	case ch >= 'A' && ch <= 'F':
		return int(ch-'A') + 10, true
	default:
		return 0, false
	}
}

// decodeHexRune decodes a fixed-width hex string to a code point.
// Returns -1 on any non-hex digit.
func decodeHexRune(hex string) rune {
	var cp rune
	for i := 0; i < len(hex); i++ {
		digit, ok := parseHexDigit(hex[i])
		if !ok {
			return -1
		}
		cp = cp*16 + rune(digit)
	}
	return cp
}

func isValidCodePoint(cp rune) bool {
	if cp < 0 || cp > 0x10FFFF {
		return false
	}
	return cp < surrogateHighStart || cp > surrogateLowEnd
}

// isValidLangTag checks BCP 47 well-formedness at the level Turtle
// requires: an alphabetic primary subtag followed by alphanumeric
// subtags separated by hyphens.
func isValidLangTag(tag string) bool {
	if tag == "" {
		return false
	}
	parts := strings.Split(tag, "-")
	if len(parts[0]) < 1 || len(parts[0]) > 8 {
		return false
	}
	for i, part := range parts {
		if part == "" {
			return false
		}
		for j := 0; j < len(part); j++ {
			ch := part[j]
			alpha := (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
			digit := ch >= '0' && ch <= '9'
			if i == 0 && !alpha {
				return false
			}
			if i > 0 && !alpha && !digit {
				return false
			}
		}
	}
	return true
}

// isValidPrefixName checks a PNAME_NS prefix label (the part before
// the colon). The empty prefix is valid.
func isValidPrefixName(prefix string) bool {
	if prefix == "" {
		return true
	}
	if prefix[0] == '.' || prefix[len(prefix)-1] == '.' {
		return false
	}
	first := prefix[0]
	if !((first >= 'a' && first <= 'z') || (first >= 'A' && first <= 'Z') || first == '_' || first >= 0x80) {
		return false
	}
	for i := 1; i < len(prefix); i++ {
		ch := prefix[i]
		if ch == '.' || ch == '_' || ch == '-' ||
			(ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') ||
			(ch >= '0' && ch <= '9') || ch >= 0x80 {
			continue
		}
		return false
	}
	return true
}

// isPNLocalEscape reports whether ch may follow a backslash inside a
// prefixed-name local part (PN_LOCAL_ESC).
func isPNLocalEscape(ch byte) bool {
	switch ch {
	case '_', '~', '.', '-', '!', '$', '&', '\'', '(', ')', '*', '+', ',', ';', '=', '/', '?', '#', '@', '%':
		return true
	default:
		return false
	}
}

// unescapePNLocal removes PN_LOCAL backslash escapes after validation,
// so ex:a\,b expands with a literal comma in the IRI.
func unescapePNLocal(local string) string {
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

// UnescapeString decodes the escape sequences of RDF string literals:
// simple escapes (\n, \t, \r, \b, \f, \", \', \\), \uXXXX with
// surrogate pairs, and \UXXXXXXXX.
func UnescapeString(s string) (string, error) {
	// Fast path: nothing to decode.
	if !strings.ContainsRune(s, '\\') {
		return s, nil
	}

	var b strings.Builder
	b.Grow(len(s))
	pos := 0
	for pos < len(s) {
		ch := s[pos]
		if ch != '\\' {
			b.WriteByte(ch)
			pos++
			continue
		}
		if pos+1 >= len(s) {
			return "", fmt.Errorf("unterminated escape")
		}
		switch next := s[pos+1]; next {
		case 'n':
			b.WriteByte('\n')
			pos += 2
		case 't':
			b.WriteByte('\t')
			pos += 2
		case 'r':
			b.WriteByte('\r')
			pos += 2
		case 'b':
			b.WriteByte('\b')
			pos += 2
		case 'f':
			b.WriteByte('\f')
			pos += 2
		case '"', '\'', '\\':
			b.WriteByte(next)
			pos += 2
		case 'u':
			n, err := decodeShortEscape(&b, s, pos)
			if err != nil {
				return "", err
			}
			pos += n
		case 'U':
			n, err := decodeLongEscape(&b, s, pos)
			if err != nil {
				return "", err
			}
			pos += n
		default:
			return "", fmt.Errorf("invalid escape sequence \\%c", next)
		}
	}
	return b.String(), nil
}

// decodeShortEscape handles \uXXXX at s[pos], including a following
// low surrogate. Returns the number of bytes consumed.
func decodeShortEscape(b *strings.Builder, s string, pos int) (int, error) {
	if pos+6 > len(s) {
		return 0, fmt.Errorf("truncated \\u escape")
	}
	cp := decodeHexRune(s[pos+2 : pos+6])
	if cp < 0 {
		return 0, fmt.Errorf("invalid \\u escape")
	}

	if cp >= surrogateHighStart && cp <= surrogateHighEnd {
		if pos+12 > len(s) || s[pos+6] != '\\' || s[pos+7] != 'u' {
			return 0, fmt.Errorf("unpaired surrogate in \\u escape")
		}
		low := decodeHexRune(s[pos+8 : pos+12])
		if low < surrogateLowStart || low > surrogateLowEnd {
			return 0, fmt.Errorf("invalid low surrogate in \\u escape")
		}
		combined := surrogateBase + ((cp - surrogateHighStart) << 10) + (low - surrogateLowStart)
		if !isValidCodePoint(combined) {
			return 0, fmt.Errorf("invalid \\u escape")
		}
		b.WriteRune(combined)
		return 12, nil
	}

	if !isValidCodePoint(cp) {
		return 0, fmt.Errorf("invalid \\u escape")
	}
	b.WriteRune(cp)
	return 6, nil
}

// decodeLongEscape handles \UXXXXXXXX at s[pos].
func decodeLongEscape(b *strings.Builder, s string, pos int) (int, error) {
	if pos+10 > len(s) {
		return 0, fmt.Errorf("truncated \\U escape")
	}
	cp := decodeHexRune(s[pos+2 : pos+10])
	if cp < 0 || !isValidCodePoint(cp) {
		return 0, fmt.Errorf("invalid \\U escape")
	}
	b.WriteRune(cp)
	return 10, nil
}
