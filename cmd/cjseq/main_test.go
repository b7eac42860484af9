package main

import (
	"bytes"
	"errors"
	"flag"
	"strings"
	"testing"

	gojson "github.com/goccy/go-json"

	"github.com/cityjson/cjseq/internal/cityjson"
	"github.com/cityjson/cjseq/internal/filter"
	"github.com/cityjson/cjseq/internal/fsutil"
	"github.com/cityjson/cjseq/internal/seq"
)

const testDoc = `{
	"type": "CityJSON",
	"version": "2.0",
	"transform": {"scale": [0.001, 0.001, 0.001], "translate": [85000.0, 446000.0, 0.0]},
	"CityObjects": {
		"near": {"type": "Building", "geometry": [{"type": "MultiPoint", "lod": "1", "boundaries": [0, 1]}]},
		"far": {"type": "Building", "geometry": [{"type": "MultiPoint", "lod": "1", "boundaries": [2]}]}
	},
	"vertices": [[0, 0, 0], [1000, 1000, 0], [5000000, 5000000, 0]]
}`

func streamLines(t *testing.T, fsys fsutil.FileSystem, name string) []string {
	t.Helper()
	data, err := fsys.ReadFile(name)
	if err != nil {
		t.Fatalf("ReadFile(%s): %v", name, err)
	}
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func TestCatThenCollectRoundTrip(t *testing.T) {
	fsys := fsutil.NewMemoryFileSystem()
	if err := fsys.WriteFile("in.city.json", []byte(testDoc), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := runCat(fsys, "in.city.json", "stream.jsonl", seq.OrderAlphabetical); err != nil {
		t.Fatalf("runCat: %v", err)
	}
	lines := streamLines(t, fsys, "stream.jsonl")
	if len(lines) != 3 {
		t.Fatalf("stream has %d lines, want header plus two features", len(lines))
	}
	if !strings.Contains(lines[0], `"CityObjects":{}`) {
		t.Errorf("header line = %s", lines[0])
	}
	if !strings.Contains(lines[1], `"id":"far"`) || !strings.Contains(lines[2], `"id":"near"`) {
		t.Errorf("features out of order:\n%s\n%s", lines[1], lines[2])
	}

	if err := runCollect(fsys, []string{"stream.jsonl"}, "out.city.json", 3); err != nil {
		t.Fatalf("runCollect: %v", err)
	}
	data, err := fsys.ReadFile("out.city.json")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	doc := &cityjson.Document{}
	if err := gojson.Unmarshal(data, doc); err != nil {
		t.Fatalf("Unmarshal output: %v", err)
	}
	if len(doc.CityObjects) != 2 {
		t.Errorf("output has %d city objects, want 2", len(doc.CityObjects))
	}
	if _, ok := doc.CityObjects["near"]; !ok {
		t.Error("output lost city object near")
	}
	if _, ok := doc.CityObjects["far"]; !ok {
		t.Error("output lost city object far")
	}
	if len(doc.Vertices) != 3 {
		t.Errorf("output has %d vertices, want 3", len(doc.Vertices))
	}
	if doc.Transform.Translate != [3]float64{85000, 446000, 0} {
		t.Errorf("translate = %v", doc.Transform.Translate)
	}
	if doc.Transform.Scale != [3]float64{0.001, 0.001, 0.001} {
		t.Errorf("scale = %v", doc.Transform.Scale)
	}
}

func TestCatWritesGzip(t *testing.T) {
	fsys := fsutil.NewMemoryFileSystem()
	if err := fsys.WriteFile("in.city.json", []byte(testDoc), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := runCat(fsys, "in.city.json", "stream.jsonl.gz", seq.OrderNone); err != nil {
		t.Fatalf("runCat: %v", err)
	}
	stored, err := fsys.ReadFile("stream.jsonl.gz")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(stored) < 2 || !bytes.Equal(stored[:2], []byte{0x1f, 0x8b}) {
		t.Fatal("output is not gzip compressed")
	}

	if err := runCollect(fsys, []string{"stream.jsonl.gz"}, "out.city.json", 3); err != nil {
		t.Fatalf("runCollect from gzip: %v", err)
	}
	data, err := fsys.ReadFile("out.city.json")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	doc := &cityjson.Document{}
	if err := gojson.Unmarshal(data, doc); err != nil {
		t.Fatalf("Unmarshal output: %v", err)
	}
	if len(doc.CityObjects) != 2 {
		t.Errorf("output has %d city objects, want 2", len(doc.CityObjects))
	}
}

func TestFilterKeepsWindowedFeatures(t *testing.T) {
	fsys := fsutil.NewMemoryFileSystem()
	if err := fsys.WriteFile("in.city.json", []byte(testDoc), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := runCat(fsys, "in.city.json", "stream.jsonl", seq.OrderAlphabetical); err != nil {
		t.Fatalf("runCat: %v", err)
	}

	cfg := &filter.Config{BBox: &[4]float64{84999, 445999, 85002, 446002}}
	if err := runFilter(fsys, cfg, "stream.jsonl", "filtered.jsonl"); err != nil {
		t.Fatalf("runFilter: %v", err)
	}

	in := streamLines(t, fsys, "stream.jsonl")
	out := streamLines(t, fsys, "filtered.jsonl")
	if len(out) != 2 {
		t.Fatalf("filtered stream has %d lines, want header plus near", len(out))
	}
	// The header passes through byte for byte.
	if out[0] != in[0] {
		t.Errorf("header changed:\n in: %s\nout: %s", in[0], out[0])
	}
	if !strings.Contains(out[1], `"id":"near"`) {
		t.Errorf("kept line = %s, want near", out[1])
	}
}

func TestFilterPreservesStreamOrder(t *testing.T) {
	fsys := fsutil.NewMemoryFileSystem()
	if err := fsys.WriteFile("in.city.json", []byte(testDoc), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := runCat(fsys, "in.city.json", "stream.jsonl", seq.OrderAlphabetical); err != nil {
		t.Fatalf("runCat: %v", err)
	}

	// A window wide enough for everything: the stream passes through whole,
	// line for line.
	cfg := &filter.Config{BBox: &[4]float64{0, 0, 1e6, 1e6}}
	if err := runFilter(fsys, cfg, "stream.jsonl", "filtered.jsonl"); err != nil {
		t.Fatalf("runFilter: %v", err)
	}
	in := streamLines(t, fsys, "stream.jsonl")
	out := streamLines(t, fsys, "filtered.jsonl")
	if len(out) != len(in) {
		t.Fatalf("filtered stream has %d lines, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("line %d changed:\n in: %s\nout: %s", i+1, in[i], out[i])
		}
	}
}

func TestCatRejectsUnsupportedVersion(t *testing.T) {
	fsys := fsutil.NewMemoryFileSystem()
	old := strings.Replace(testDoc, `"2.0"`, `"1.0"`, 1)
	if err := fsys.WriteFile("in.city.json", []byte(old), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	err := runCat(fsys, "in.city.json", "stream.jsonl", seq.OrderNone)
	if !errors.Is(err, cityjson.ErrVersionUnsupported) {
		t.Errorf("runCat error = %v, want ErrVersionUnsupported", err)
	}
}

func TestCatRejectsMalformedInput(t *testing.T) {
	fsys := fsutil.NewMemoryFileSystem()
	if err := fsys.WriteFile("in.city.json", []byte("{oops"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	err := runCat(fsys, "in.city.json", "stream.jsonl", seq.OrderNone)
	if !errors.Is(err, cityjson.ErrParse) {
		t.Errorf("runCat error = %v, want ErrParse", err)
	}
}

func TestCollectReportsFailingFile(t *testing.T) {
	fsys := fsutil.NewMemoryFileSystem()
	err := runCollect(fsys, []string{"missing.jsonl"}, "out.city.json", 3)
	if err == nil || !strings.Contains(err.Error(), "missing.jsonl") {
		t.Errorf("runCollect error = %v, want the file name", err)
	}
}

func TestParseBBox(t *testing.T) {
	tests := []struct {
		in      string
		want    [4]float64
		wantErr bool
	}{
		{"1,2,3,4", [4]float64{1, 2, 3, 4}, false},
		{"85000.5, 446000, 86000, 447000.25", [4]float64{85000.5, 446000, 86000, 447000.25}, false},
		{"1,2,3", [4]float64{}, true},
		{"a,b,c,d", [4]float64{}, true},
		{"", [4]float64{}, true},
	}
	for _, tt := range tests {
		got, err := parseBBox(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseBBox(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parseBBox(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseCircle(t *testing.T) {
	got, err := parseCircle("85000, 446000, 250.5")
	if err != nil {
		t.Fatalf("parseCircle: %v", err)
	}
	want := filter.Circle{X: 85000, Y: 446000, R: 250.5}
	if got != want {
		t.Errorf("parseCircle = %+v, want %+v", got, want)
	}
	if _, err := parseCircle("1,2"); err == nil {
		t.Error("parseCircle accepted two values")
	}
}

func TestFlagConfigCollectsSetFlags(t *testing.T) {
	fs := flag.NewFlagSet("filter", flag.ContinueOnError)
	bbox := fs.String("bbox", "", "")
	radius := fs.String("radius", "", "")
	cotype := fs.String("cotype", "", "")
	exclude := fs.Bool("exclude", false, "")
	random := fs.Int("random", 0, "")
	seed := fs.Int64("seed", 0, "")
	if err := fs.Parse([]string{"-bbox", "0,0,10,10", "-random", "5"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	cfg, err := flagConfig(fs, *bbox, *radius, *cotype, *exclude, *random, *seed)
	if err != nil {
		t.Fatalf("flagConfig: %v", err)
	}
	if cfg.BBox == nil || *cfg.BBox != [4]float64{0, 0, 10, 10} {
		t.Errorf("BBox = %v", cfg.BBox)
	}
	if cfg.Random == nil || *cfg.Random != 5 {
		t.Errorf("Random = %v", cfg.Random)
	}
	if cfg.Radius != nil || cfg.Type != nil || cfg.Exclude != nil || cfg.Seed != nil {
		t.Errorf("unset flags leaked into the config: %+v", cfg)
	}
}

func TestFlagConfigBadBBox(t *testing.T) {
	fs := flag.NewFlagSet("filter", flag.ContinueOnError)
	bbox := fs.String("bbox", "", "")
	if err := fs.Parse([]string{"-bbox", "1,2"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := flagConfig(fs, *bbox, "", "", false, 0, 0); err == nil {
		t.Error("flagConfig accepted a two-value bbox")
	}
}
