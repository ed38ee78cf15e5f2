package rdf

import "strings"

// detectSampleSize is how many leading bytes DetectFormat inspects.
const detectSampleSize = 512

// DetectFormat guesses the serialization format from a leading content
// sample. Detection is heuristic: JSON-LD from JSON delimiters and
// keywords, Turtle from directives and prefixed-name syntax, N-Triples
// from absolute-term statement shape. It reports false when the sample
// is empty or matches nothing.
func DetectFormat(sample []byte) (Format, bool) {
	if len(sample) > detectSampleSize {
		sample = sample[:detectSampleSize]
	}
	s := strings.TrimSpace(string(sample))
	if s == "" {
		return "", false
	}

	// JSON delimiters settle it; a bare JSON document without JSON-LD
	// keywords still decodes through the JSON-LD path.
	if s[0] == '{' || s[0] == '[' {
		return FormatJSONLD, true
	}

	// Leading comment lines carry no format signal; skip them.
	for strings.HasPrefix(s, "#") {
		nl := strings.IndexByte(s, '\n')
		if nl < 0 {
			return "", false
		}
		s = strings.TrimSpace(s[nl+1:])
		if s == "" {
			return "", false
		}
	}

	upper := strings.ToUpper(s)
	if strings.HasPrefix(s, "@prefix") || strings.HasPrefix(s, "@base") ||
		strings.HasPrefix(upper, "PREFIX") || strings.HasPrefix(upper, "BASE") {
		return FormatTurtle, true
	}

	// N-Triples statements use only absolute terms: no directives,
	// prefixed names, brackets, or collections.
	if (strings.HasPrefix(s, "<") || strings.HasPrefix(s, "_:")) &&
		!strings.ContainsAny(s, "[(") {
		if strings.Count(firstContentLine(s), "<") >= 2 {
			return FormatNTriples, true
		}
		if strings.HasPrefix(s, "_:") {
			return FormatNTriples, true
		}
		return FormatTurtle, true
	}

	// Prefixed names (ex:thing) without a leading directive still mean
	// Turtle, as do blank node property lists and collections.
	if strings.ContainsAny(s, "[(") {
		return FormatTurtle, true
	}
	for _, field := range strings.Fields(s) {
		if strings.Contains(field, ":") && !strings.HasPrefix(field, "_:") && !strings.HasPrefix(field, "<") {
			return FormatTurtle, true
		}
	}

	return "", false
}

func firstContentLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return line
	}
	return ""
}
