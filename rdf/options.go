package rdf

import (
	"context"

	"github.com/piprate/json-gold/ld"
)

// Default resource limits for streaming decoders. Lines and statements
// beyond these fail with ErrLineTooLong / ErrStatementTooLong rather
// than growing buffers without bound.
const (
	DefaultMaxLineBytes      = 1 << 20 // 1 MiB
	DefaultMaxStatementBytes = 4 << 20 // 4 MiB
)

// Options configures decoders, encoders, and the parse/serialize
// facades. Construct via the Opt* functional options.
type Options struct {
	// Context cancels streaming decode loops between statements.
	Context context.Context

	// Base resolves relative IRI references during parsing and is also
	// handed to the JSON-LD processor.
	Base string

	// MaxLineBytes caps a single input line; 0 means the default.
	MaxLineBytes int

	// MaxStatementBytes caps an accumulated multi-line statement;
	// 0 means the default.
	MaxStatementBytes int

	// DebugStatements carries the full offending statement into parse
	// errors instead of a trimmed excerpt.
	DebugStatements bool

	// Prefixes is the prefix table the Turtle encoder writes as
	// @prefix directives and abbreviates IRIs against.
	Prefixes map[string]string

	// JSONLDContext, when non-nil, compacts JSON-LD output against the
	// given context document (a map or a parsed JSON value).
	JSONLDContext any

	// DocumentLoader resolves remote JSON-LD context references. When
	// nil, remote fetches are refused with ErrRemoteContextsDisabled.
	DocumentLoader DocumentLoader
}

// DocumentLoader resolves JSON-LD documents referenced from @context.
// It matches json-gold's loader contract, so callers can plug in
// ld.NewDefaultDocumentLoader or a caching loader directly.
type DocumentLoader interface {
	LoadDocument(u string) (*ld.RemoteDocument, error)
}

// Option configures Options.
type Option func(*Options)

// OptContext sets the context used for cancellation checks.
func OptContext(ctx context.Context) Option {
	return func(o *Options) { o.Context = ctx }
}

// OptBase sets the base IRI for resolving relative references.
func OptBase(base string) Option {
	return func(o *Options) { o.Base = base }
}

// OptMaxLineBytes caps a single input line.
func OptMaxLineBytes(n int) Option {
	return func(o *Options) { o.MaxLineBytes = n }
}

// OptMaxStatementBytes caps an accumulated statement.
func OptMaxStatementBytes(n int) Option {
	return func(o *Options) { o.MaxStatementBytes = n }
}

// OptDebugStatements includes full statements in parse errors.
func OptDebugStatements(debug bool) Option {
	return func(o *Options) { o.DebugStatements = debug }
}

// OptPrefixes sets the prefix table for Turtle serialization.
func OptPrefixes(prefixes map[string]string) Option {
	return func(o *Options) { o.Prefixes = prefixes }
}

// OptJSONLDContext compacts JSON-LD output against the given context.
func OptJSONLDContext(doc any) Option {
	return func(o *Options) { o.JSONLDContext = doc }
}

// OptDocumentLoader enables remote JSON-LD context resolution through
// the given loader.
func OptDocumentLoader(loader DocumentLoader) Option {
	return func(o *Options) { o.DocumentLoader = loader }
}

// buildOptions applies opts over the defaults and normalizes limits.
func buildOptions(opts []Option) Options {
	o := Options{
		Context:           context.Background(),
		MaxLineBytes:      DefaultMaxLineBytes,
		MaxStatementBytes: DefaultMaxStatementBytes,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	o.normalize()
	return o
}

func (o *Options) normalize() {
	if o.Context == nil {
		o.Context = context.Background()
	}
	if o.MaxLineBytes <= 0 {
		o.MaxLineBytes = DefaultMaxLineBytes
	}
	if o.MaxStatementBytes <= 0 {
		o.MaxStatementBytes = DefaultMaxStatementBytes
	}
	// A statement is at least one line.
	if o.MaxStatementBytes < o.MaxLineBytes {
		o.MaxStatementBytes = o.MaxLineBytes
	}
}
