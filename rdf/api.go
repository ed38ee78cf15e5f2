package rdf

import (
	"bytes"
	"context"
	"io"
)

// Decoder streams triples from an input. Next returns io.EOF after the
// last triple; any other error is sticky and also reported by Err.
type Decoder interface {
	Next() (Triple, error)
	Err() error
	Close() error
}

// Encoder streams triples to an output. Line-oriented formats write as
// they go; whole-document formats (JSON-LD) buffer and render on
// Close, so Close must always be called.
type Encoder interface {
	Write(Triple) error
	Flush() error
	Close() error
}

// TripleHandler processes triples in push mode.
type TripleHandler interface {
	Handle(Triple) error
}

// TripleHandlerFunc adapts a function to a TripleHandler.
type TripleHandlerFunc func(Triple) error

// Handle calls the underlying function.
func (h TripleHandlerFunc) Handle(t Triple) error { return h(t) }

// NewDecoder creates a decoder for the given format. FormatAuto
// detects the format from a leading content sample; detection reads
// from r, but the returned decoder still sees the full input.
func NewDecoder(r io.Reader, format Format, opts ...Option) (Decoder, error) {
	options := buildOptions(opts)

	if format == FormatAuto {
		detected, reader, ok := sniffFormat(r)
		if !ok {
			return nil, ErrUnsupportedFormat
		}
		format = detected
		r = reader
	}

	switch format {
	case FormatTurtle:
		return newTurtleDecoder(r, options), nil
	case FormatNTriples:
		return newNTriplesDecoder(r, options), nil
	case FormatJSONLD:
		return newJSONLDDecoder(r, options), nil
	default:
		return nil, ErrUnsupportedFormat
	}
}

// NewEncoder creates an encoder for the given format.
func NewEncoder(w io.Writer, format Format, opts ...Option) (Encoder, error) {
	options := buildOptions(opts)

	switch format {
	case FormatTurtle:
		return newTurtleEncoder(w, options), nil
	case FormatNTriples:
		return newNTriplesEncoder(w, options), nil
	case FormatJSONLD:
		return newJSONLDEncoder(w, options), nil
	default:
		return nil, ErrUnsupportedFormat
	}
}

// Parse decodes r and streams every triple to the handler. A nil ctx
// defaults to context.Background(); cancellation is checked between
// statements. A handler error aborts the parse and is returned as-is.
func Parse(ctx context.Context, r io.Reader, format Format, handler TripleHandler, opts ...Option) error {
	if ctx == nil {
		ctx = context.Background()
	}
	opts = append([]Option{OptContext(ctx)}, opts...)

	dec, err := NewDecoder(r, format, opts...)
	if err != nil {
		return err
	}
	defer dec.Close()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		t, err := dec.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		if err := handler.Handle(t); err != nil {
			return err
		}
	}
}

// sniffFormat reads a leading sample for format detection and returns
// a reader that replays the sample before the remaining input.
func sniffFormat(r io.Reader) (Format, io.Reader, bool) {
	buf := make([]byte, detectSampleSize)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return FormatAuto, r, false
	}

	sample := buf[:n]
	combined := io.MultiReader(bytes.NewReader(sample), r)

	format, ok := DetectFormat(sample)
	if !ok {
		return FormatAuto, combined, false
	}
	return format, combined, true
}
