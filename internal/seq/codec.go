// Package seq converts between CityJSON documents and CityJSONSeq streams:
// splitting a document into a header plus one feature per line, merging one
// or more streams back into a single document, and the newline-delimited
// framing both directions share.
package seq

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	gojson "github.com/goccy/go-json"

	"github.com/cityjson/cjseq/internal/cityjson"
)

// maxLineBytes caps a single stream line. Features of real-world datasets
// stay well under this; anything larger is almost certainly not line-
// delimited input.
const maxLineBytes = 64 << 20

// Decoder reads a CityJSONSeq stream: one header line followed by one
// feature per line. Blank lines are skipped.
type Decoder struct {
	scan *bufio.Scanner
	line int
	raw  []byte
	feat *cityjson.Feature
	err  error
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	scan := bufio.NewScanner(r)
	scan.Buffer(make([]byte, 64*1024), maxLineBytes)
	return &Decoder{scan: scan}
}

// Header reads, parses and validates the first line of the stream.
func (d *Decoder) Header() (*cityjson.Document, error) {
	data, err := d.nextLine()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty stream, expected a header line", cityjson.ErrParse)
		}
		return nil, err
	}
	var doc cityjson.Document
	if err := gojson.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: line %d: %w", cityjson.ErrParse, d.line, err)
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("line %d: %w", d.line, err)
	}
	return &doc, nil
}

// Scan advances to the next feature line. It returns false at the end of the
// stream or on error; Err tells the two apart.
func (d *Decoder) Scan() bool {
	d.feat = nil
	data, err := d.nextLine()
	if errors.Is(err, io.EOF) {
		return false
	}
	if err != nil {
		d.err = err
		return false
	}
	var f cityjson.Feature
	if err := gojson.Unmarshal(data, &f); err != nil {
		d.err = fmt.Errorf("%w: line %d: %w", cityjson.ErrParse, d.line, err)
		return false
	}
	if err := f.Validate(); err != nil {
		d.err = fmt.Errorf("line %d: %w", d.line, err)
		return false
	}
	d.feat = &f
	return true
}

// Feature returns the feature parsed by the last successful Scan.
func (d *Decoder) Feature() *cityjson.Feature { return d.feat }

// Err returns the first error the Decoder hit, nil at a clean end of stream.
func (d *Decoder) Err() error { return d.err }

// RawLine returns the bytes of the last line read by Header or Scan. The
// slice is reused; it is valid until the next read.
func (d *Decoder) RawLine() []byte { return d.raw }

// Line returns the 1-based number of the last line read.
func (d *Decoder) Line() int { return d.line }

func (d *Decoder) nextLine() ([]byte, error) {
	for d.scan.Scan() {
		d.line++
		line := bytes.TrimSpace(d.scan.Bytes())
		if len(line) == 0 {
			continue
		}
		d.raw = append(d.raw[:0], line...)
		return d.raw, nil
	}
	if err := d.scan.Err(); err != nil {
		return nil, fmt.Errorf("seq: read line %d: %w", d.line+1, err)
	}
	return nil, io.EOF
}

// Encoder writes newline-delimited JSON lines.
type Encoder struct {
	w *bufio.Writer
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: bufio.NewWriter(w)}
}

// Encode writes v as a single newline-terminated JSON line.
func (e *Encoder) Encode(v any) error {
	data, err := gojson.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := e.w.Write(data); err != nil {
		return err
	}
	return e.w.WriteByte('\n')
}

// EncodeRaw writes an already-encoded line followed by a newline.
func (e *Encoder) EncodeRaw(line []byte) error {
	if _, err := e.w.Write(line); err != nil {
		return err
	}
	return e.w.WriteByte('\n')
}

// Flush drains buffered output to the underlying writer.
func (e *Encoder) Flush() error { return e.w.Flush() }
