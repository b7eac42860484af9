package main

import (
	"fmt"
	"io"

	gojson "github.com/goccy/go-json"

	"github.com/cityjson/cjseq/internal/cityjson"
	"github.com/cityjson/cjseq/internal/fsutil"
	"github.com/cityjson/cjseq/internal/monitoring"
	"github.com/cityjson/cjseq/internal/seq"
)

// runCat splits one CityJSON document into a header line followed by one
// line per root city object.
func runCat(fsys fsutil.FileSystem, file, out string, order seq.Order) error {
	in, err := openInput(fsys, file)
	if err != nil {
		return err
	}
	defer in.Close()

	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	doc := &cityjson.Document{}
	if err := gojson.Unmarshal(data, doc); err != nil {
		return fmt.Errorf("%w: %w", cityjson.ErrParse, err)
	}

	splitter, err := seq.NewSplitter(doc, seq.SplitOptions{Order: order})
	if err != nil {
		return err
	}

	w, err := openOutput(fsys, out)
	if err != nil {
		return err
	}
	enc := seq.NewEncoder(w)
	if err := enc.Encode(splitter.Header()); err != nil {
		return err
	}
	count := 0
	err = splitter.Features(func(f *cityjson.Feature) error {
		count++
		return enc.Encode(f)
	})
	if err != nil {
		return err
	}
	if err := enc.Flush(); err != nil {
		return err
	}
	monitoring.Logf("cat: wrote %d features", count)
	return w.Close()
}
