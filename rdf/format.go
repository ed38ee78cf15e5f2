package rdf

import (
	"path/filepath"
	"strings"
)

// Format identifies RDF serialization formats.
type Format string

const (
	FormatTurtle   Format = "turtle"
	FormatNTriples Format = "ntriples"
	FormatJSONLD   Format = "jsonld"

	// FormatAuto asks NewDecoder to detect the format from a leading
	// content sample.
	FormatAuto Format = ""
)

// Formats lists the supported formats in display order.
func Formats() []Format {
	return []Format{FormatTurtle, FormatNTriples, FormatJSONLD}
}

// ParseFormat normalizes a format name or MIME type.
func ParseFormat(value string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "auto":
		return FormatAuto, true
	case "turtle", "ttl", "text/turtle":
		return FormatTurtle, true
	case "ntriples", "nt", "n-triples", "application/n-triples":
		return FormatNTriples, true
	case "jsonld", "json-ld", "json", "application/ld+json", "application/json":
		return FormatJSONLD, true
	default:
		return "", false
	}
}

// FormatFromPath derives a format from a file extension.
func FormatFromPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ttl", ".turtle":
		return FormatTurtle, true
	case ".nt", ".ntriples":
		return FormatNTriples, true
	case ".jsonld", ".json":
		return FormatJSONLD, true
	default:
		return "", false
	}
}

// FormatFromContentType derives a format from an HTTP-style content
// type, ignoring any parameters.
func FormatFromContentType(contentType string) (Format, bool) {
	mediaType := contentType
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = mediaType[:i]
	}
	return ParseFormat(mediaType)
}

// ContentType returns the preferred MIME type for a format.
func (f Format) ContentType() string {
	switch f {
	case FormatTurtle:
		return "text/turtle"
	case FormatNTriples:
		return "application/n-triples"
	case FormatJSONLD:
		return "application/ld+json"
	default:
		return "application/octet-stream"
	}
}
