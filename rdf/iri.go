package rdf

import (
	"fmt"
	"net/url"
	"strings"
)

// ResolveIRI resolves a relative IRI reference against a base IRI per
// RFC 3986. Invalid inputs fall back to path-style concatenation so
// the parser can still surface the resulting IRI in error messages.
func ResolveIRI(base, relative string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return concatIRI(base, relative)
	}
	relURL, err := url.Parse(relative)
	if err != nil {
		return concatIRI(base, relative)
	}
	if relURL.Scheme != "" {
		return relative
	}
	return baseURL.ResolveReference(relURL).String()
}

func concatIRI(base, relative string) string {
	if strings.HasSuffix(base, "/") || strings.HasSuffix(base, "#") {
		return base + relative
	}
	if i := strings.LastIndex(base, "/"); i >= 0 {
		return base[:i+1] + relative
	}
	return base + "/" + relative
}

// ValidateIRI checks that a string is a plausible IRI: parseable,
// carrying a well-formed scheme when absolute, and free of characters
// that must be percent-encoded. Errors wrap ErrInvalidIRI.
//
// This is structural validation, not full RFC 3987 conformance.
func ValidateIRI(iri string) error {
	if iri == "" {
		return fmt.Errorf("%w: empty IRI", ErrInvalidIRI)
	}

	parsed, err := url.Parse(iri)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidIRI, err)
	}

	if parsed.Scheme == "" {
		if strings.HasPrefix(iri, "//") {
			return fmt.Errorf("%w: network-path reference without scheme: %s", ErrInvalidIRI, iri)
		}
	} else {
		first := parsed.Scheme[0]
		if !isASCIILetter(first) {
			return fmt.Errorf("%w: scheme must start with a letter: %s", ErrInvalidIRI, iri)
		}
	}

	for i, r := range iri {
		if r < 0x20 {
			return fmt.Errorf("%w: control character at position %d: %s", ErrInvalidIRI, i, iri)
		}
		if r == '<' || r == '>' || r == '"' || r == '{' || r == '}' || r == '|' || r == '^' || r == '\\' || r == '`' {
			return fmt.Errorf("%w: character %q at position %d must be percent-encoded: %s", ErrInvalidIRI, r, i, iri)
		}
	}

	return nil
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
