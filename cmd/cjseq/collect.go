package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	gojson "github.com/goccy/go-json"

	"github.com/cityjson/cjseq/internal/fsutil"
	"github.com/cityjson/cjseq/internal/seq"
)

// runCollect merges one or more CityJSONSeq streams into a single document.
// Files are visited in lexicographic order so reruns produce identical
// output; with no files the stream is read from stdin.
func runCollect(fsys fsutil.FileSystem, files []string, out string, precision int) error {
	merger := seq.NewMerger(seq.MergeOptions{Precision: precision})

	if len(files) == 0 {
		if err := collectStream(merger, os.Stdin); err != nil {
			return err
		}
	} else {
		sorted := append([]string(nil), files...)
		sort.Strings(sorted)
		for _, name := range sorted {
			if err := collectFile(merger, fsys, name); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
		}
	}

	doc, err := merger.Document()
	if err != nil {
		return err
	}
	data, err := gojson.Marshal(doc)
	if err != nil {
		return err
	}

	w, err := openOutput(fsys, out)
	if err != nil {
		return err
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return err
	}
	return w.Close()
}

func collectFile(m *seq.Merger, fsys fsutil.FileSystem, name string) error {
	in, err := fsutil.OpenReader(fsys, name)
	if err != nil {
		return err
	}
	defer in.Close()
	return collectStream(m, in)
}

// collectStream feeds one header-plus-features stream into the merger.
func collectStream(m *seq.Merger, r io.Reader) error {
	dec := seq.NewDecoder(r)
	header, err := dec.Header()
	if err != nil {
		return err
	}
	if err := m.BeginSource(header); err != nil {
		return err
	}
	for dec.Scan() {
		if err := m.Add(dec.Feature()); err != nil {
			return fmt.Errorf("line %d: %w", dec.Line(), err)
		}
	}
	return dec.Err()
}
