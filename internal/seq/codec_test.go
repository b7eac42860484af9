package seq

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/cityjson/cjseq/internal/cityjson"
)

const streamHeader = `{"type":"CityJSON","version":"2.0","transform":{"scale":[0.001,0.001,0.001],"translate":[0,0,0]},"CityObjects":{},"vertices":[]}`

func featureLine(id string) string {
	return `{"type":"CityJSONFeature","id":"` + id + `","CityObjects":{"` + id +
		`":{"type":"Building","geometry":[{"type":"MultiPoint","lod":"1","boundaries":[0]}]}},"vertices":[[0,0,0]]}`
}

func TestDecoderReadsStream(t *testing.T) {
	input := streamHeader + "\n" + featureLine("f1") + "\n\n" + featureLine("f2") + "\n"
	dec := NewDecoder(strings.NewReader(input))

	header, err := dec.Header()
	if err != nil {
		t.Fatalf("Header: %v", err)
	}
	if header.Version != "2.0" || len(header.CityObjects) != 0 {
		t.Errorf("header = %+v", header)
	}
	if dec.Line() != 1 {
		t.Errorf("Line after header = %d, want 1", dec.Line())
	}
	if string(dec.RawLine()) != streamHeader {
		t.Errorf("RawLine = %s", dec.RawLine())
	}

	if !dec.Scan() {
		t.Fatalf("Scan 1 failed: %v", dec.Err())
	}
	if got := dec.Feature().ID; got != "f1" {
		t.Errorf("first feature = %q, want f1", got)
	}
	if dec.Line() != 2 {
		t.Errorf("Line = %d, want 2", dec.Line())
	}

	// The blank line in between is skipped, not an error.
	if !dec.Scan() {
		t.Fatalf("Scan 2 failed: %v", dec.Err())
	}
	if got := dec.Feature().ID; got != "f2" {
		t.Errorf("second feature = %q, want f2", got)
	}
	if dec.Line() != 4 {
		t.Errorf("Line = %d, want 4", dec.Line())
	}

	if dec.Scan() {
		t.Error("Scan returned true past the end of the stream")
	}
	if err := dec.Err(); err != nil {
		t.Errorf("Err at clean end of stream = %v", err)
	}
}

func TestDecoderEmptyStream(t *testing.T) {
	dec := NewDecoder(strings.NewReader("\n \n"))
	_, err := dec.Header()
	if !errors.Is(err, cityjson.ErrParse) {
		t.Errorf("Header error = %v, want ErrParse", err)
	}
}

func TestDecoderBadJSONLine(t *testing.T) {
	dec := NewDecoder(strings.NewReader(streamHeader + "\n{not json\n"))
	if _, err := dec.Header(); err != nil {
		t.Fatalf("Header: %v", err)
	}
	if dec.Scan() {
		t.Fatal("Scan accepted a malformed line")
	}
	err := dec.Err()
	if !errors.Is(err, cityjson.ErrParse) {
		t.Fatalf("Err = %v, want ErrParse", err)
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("Err = %v, want the offending line number", err)
	}
}

func TestDecoderHeaderVersionGate(t *testing.T) {
	bad := strings.Replace(streamHeader, `"2.0"`, `"3.0"`, 1)
	dec := NewDecoder(strings.NewReader(bad + "\n"))
	_, err := dec.Header()
	if !errors.Is(err, cityjson.ErrVersionUnsupported) {
		t.Fatalf("Header error = %v, want ErrVersionUnsupported", err)
	}
	if !strings.Contains(err.Error(), "line 1") {
		t.Errorf("Header error = %v, want the offending line number", err)
	}
}

func TestDecoderRejectsRootlessFeature(t *testing.T) {
	line := `{"type":"CityJSONFeature","id":"f1","CityObjects":{"other":{"type":"Building"}},"vertices":[]}`
	dec := NewDecoder(strings.NewReader(streamHeader + "\n" + line + "\n"))
	if _, err := dec.Header(); err != nil {
		t.Fatalf("Header: %v", err)
	}
	if dec.Scan() {
		t.Fatal("Scan accepted a feature without its root object")
	}
	if !errors.Is(dec.Err(), cityjson.ErrSchemaViolation) {
		t.Errorf("Err = %v, want ErrSchemaViolation", dec.Err())
	}
}

func TestEncoderFramesLines(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	if err := enc.Encode(map[string]int{"n": 1}); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := enc.EncodeRaw([]byte(`{"raw":true}`)); err != nil {
		t.Fatalf("EncodeRaw: %v", err)
	}
	if err := enc.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	want := "{\"n\":1}\n{\"raw\":true}\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}
