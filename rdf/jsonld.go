package rdf

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/piprate/json-gold/ld"
)

// jsonldDecoder reads a complete JSON-LD document, converts it to RDF
// through json-gold, and replays the resulting triples. JSON-LD is a
// document format, not a line format, so the whole input is buffered;
// MaxStatementBytes caps the document size.
type jsonldDecoder struct {
	reader  io.Reader
	opts    Options
	pending []Triple
	loaded  bool
	err     error
}

func newJSONLDDecoder(r io.Reader, opts Options) *jsonldDecoder {
	return &jsonldDecoder{reader: r, opts: opts}
}

func (d *jsonldDecoder) Next() (Triple, error) {
	if d.err != nil {
		return Triple{}, d.err
	}
	if !d.loaded {
		d.loaded = true
		if err := d.decode(); err != nil {
			return Triple{}, d.fail(err)
		}
	}
	if len(d.pending) == 0 {
		return Triple{}, io.EOF
	}
	t := d.pending[0]
	d.pending = d.pending[1:]
	return t, nil
}

// Err returns the first error encountered, if any. io.EOF is not
// reported here.
func (d *jsonldDecoder) Err() error {
	if d.err == io.EOF {
		return nil
	}
	return d.err
}

func (d *jsonldDecoder) Close() error { return nil }

func (d *jsonldDecoder) fail(err error) error {
	d.err = err
	return err
}

func (d *jsonldDecoder) decode() error {
	if err := checkDecodeContext(d.opts.Context); err != nil {
		return err
	}

	data, err := readDocument(d.reader, d.opts.MaxStatementBytes)
	if err != nil {
		return err
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return wrapJSONError(data, d.opts, err)
	}

	loader := &guardedDocumentLoader{inner: d.opts.DocumentLoader}
	proc := ld.NewJsonLdProcessor()
	result, err := proc.ToRDF(doc, newProcessorOptions(d.opts, loader))
	if err != nil {
		return wrapParseError(FormatJSONLD, "", 0, loader.resolve(err))
	}
	dataset, ok := result.(*ld.RDFDataset)
	if !ok {
		return wrapParseError(FormatJSONLD, "", 0, fmt.Errorf("unexpected ToRDF result %T", result))
	}
	serialized, err := (&ld.NQuadRDFSerializer{}).Serialize(dataset)
	if err != nil {
		return wrapParseError(FormatJSONLD, "", 0, err)
	}
	nquads, ok := serialized.(string)
	if !ok {
		return wrapParseError(FormatJSONLD, "", 0, fmt.Errorf("unexpected serializer result %T", serialized))
	}

	triples, err := d.parseBridge(nquads)
	if err != nil {
		return err
	}
	d.pending = triples
	return nil
}

// parseBridge replays json-gold's N-Quads output through the N-Quads
// reader. Named graph labels in the dataset surface here as
// ErrNamedGraphsUnsupported.
func (d *jsonldDecoder) parseBridge(nquads string) ([]Triple, error) {
	bridge := newNQuadsBridgeDecoder(strings.NewReader(nquads), d.opts)
	var triples []Triple
	for {
		t, err := bridge.Next()
		if err == io.EOF {
			return triples, nil
		}
		if err != nil {
			// Line numbers refer to the intermediate N-Quads text,
			// not the JSON-LD input; keep the statement excerpt only.
			var perr *ParseError
			if errors.As(err, &perr) {
				return nil, &ParseError{
					Format:    FormatJSONLD,
					Statement: perr.Statement,
					Column:    perr.Column,
					Err:       perr.Err,
				}
			}
			return nil, wrapParseError(FormatJSONLD, "", 0, err)
		}
		triples = append(triples, t)
	}
}

// readDocument buffers the whole input, failing with
// ErrStatementTooLong when it exceeds max bytes.
func readDocument(r io.Reader, max int) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, int64(max)+1))
	if err != nil {
		return nil, err
	}
	if len(data) > max {
		return nil, wrapParseError(FormatJSONLD, "", 0, fmt.Errorf("%w (limit %d bytes)", ErrStatementTooLong, max))
	}
	return data, nil
}

// wrapJSONError converts an encoding/json error into a positioned
// ParseError. Syntax and type errors carry a byte offset; everything
// else is wrapped without position.
func wrapJSONError(data []byte, opts Options, err error) error {
	var offset int64
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		offset = syntaxErr.Offset
	case errors.As(err, &typeErr):
		offset = typeErr.Offset
	default:
		return wrapParseError(FormatJSONLD, "", 0, err)
	}

	line, column, lineText := jsonErrorPosition(data, offset)
	statement := lineText
	if !opts.DebugStatements {
		statement, column = trimStatement(statement, column)
	}
	return wrapParseErrorWithPosition(FormatJSONLD, statement, line, column, int(offset), err)
}

// jsonErrorPosition maps a byte offset into line, column, and the text
// of the offending line.
func jsonErrorPosition(data []byte, offset int64) (line, column int, lineText string) {
	if offset < 0 {
		offset = 0
	}
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	pos := int(offset)

	lineStart := 0
	line = 1
	for i := 0; i < pos; i++ {
		if data[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	lineEnd := len(data)
	for i := lineStart; i < len(data); i++ {
		if data[i] == '\n' {
			lineEnd = i
			break
		}
	}
	column = pos - lineStart + 1
	return line, column, string(data[lineStart:lineEnd])
}

// guardedDocumentLoader refuses remote context fetches when no loader
// is configured and records the refusal. json-gold folds loader
// failures into JsonLdError values without an Unwrap method, so the
// recorded error is how ErrRemoteContextsDisabled survives the round
// trip through the processor.
type guardedDocumentLoader struct {
	inner   DocumentLoader
	refused error
}

func (l *guardedDocumentLoader) LoadDocument(u string) (*ld.RemoteDocument, error) {
	if l.inner == nil {
		err := fmt.Errorf("%w: %s", ErrRemoteContextsDisabled, u)
		if l.refused == nil {
			l.refused = err
		}
		return nil, err
	}
	return l.inner.LoadDocument(u)
}

// resolve maps a processor error back to the refusal that caused it.
func (l *guardedDocumentLoader) resolve(err error) error {
	if err != nil && l.refused != nil {
		return l.refused
	}
	return err
}

// newProcessorOptions builds json-gold options from decode/encode
// options. UseNativeTypes stays off so literal lexical forms survive
// conversion unchanged, and the document loader is always overridden:
// json-gold's default loader fetches over the network.
func newProcessorOptions(opts Options, loader ld.DocumentLoader) *ld.JsonLdOptions {
	goldOpts := ld.NewJsonLdOptions(opts.Base)
	goldOpts.DocumentLoader = loader
	goldOpts.UseNativeTypes = false
	goldOpts.ProduceGeneralizedRdf = false
	return goldOpts
}

// jsonldEncoder buffers triples and renders a single JSON-LD document
// on Close, optionally compacted against Options.JSONLDContext.
type jsonldEncoder struct {
	writer  io.Writer
	opts    Options
	triples []Triple
	err     error
}

func newJSONLDEncoder(w io.Writer, opts Options) *jsonldEncoder {
	return &jsonldEncoder{writer: w, opts: opts}
}

func (e *jsonldEncoder) Write(t Triple) error {
	if e.err != nil {
		return e.err
	}
	if err := t.Validate(); err != nil {
		return err
	}
	e.triples = append(e.triples, t)
	return nil
}

// Flush is a no-op: the document can only be rendered once all triples
// are known, which happens in Close.
func (e *jsonldEncoder) Flush() error {
	return e.err
}

func (e *jsonldEncoder) Close() error {
	if e.err == errEncoderClosed {
		return nil
	}
	if e.err != nil {
		return e.err
	}
	err := e.render()
	e.err = errEncoderClosed
	return err
}

func (e *jsonldEncoder) render() error {
	var nquads strings.Builder
	for _, t := range e.triples {
		nquads.WriteString(t.String())
		nquads.WriteByte('\n')
	}

	loader := &guardedDocumentLoader{inner: e.opts.DocumentLoader}
	proc := ld.NewJsonLdProcessor()
	goldOpts := newProcessorOptions(e.opts, loader)
	goldOpts.Format = "application/n-quads"
	doc, err := proc.FromRDF(nquads.String(), goldOpts)
	if err != nil {
		return loader.resolve(err)
	}

	if e.opts.JSONLDContext != nil {
		doc, err = proc.Compact(doc, e.opts.JSONLDContext, newProcessorOptions(e.opts, loader))
		if err != nil {
			return loader.resolve(err)
		}
	}

	// encoding/json sorts map keys, which keeps output deterministic.
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = e.writer.Write(data)
	return err
}
