package main

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/cityjson/cjseq/internal/filter"
	"github.com/cityjson/cjseq/internal/fsutil"
	"github.com/cityjson/cjseq/internal/monitoring"
	"github.com/cityjson/cjseq/internal/seq"
)

// runFilter copies the header line untouched and re-emits the feature lines
// the predicates keep, byte for byte.
func runFilter(fsys fsutil.FileSystem, cfg *filter.Config, file, out string) error {
	in, err := openInput(fsys, file)
	if err != nil {
		return err
	}
	defer in.Close()

	dec := seq.NewDecoder(in)
	header, err := dec.Header()
	if err != nil {
		return err
	}
	keeper, err := filter.New(cfg, header.Transform)
	if err != nil {
		return err
	}

	w, err := openOutput(fsys, out)
	if err != nil {
		return err
	}
	enc := seq.NewEncoder(w)
	if err := enc.EncodeRaw(dec.RawLine()); err != nil {
		return err
	}

	kept, seen := 0, 0
	for dec.Scan() {
		seen++
		ok, err := keeper.Keep(dec.Feature())
		if err != nil {
			return fmt.Errorf("line %d: %w", dec.Line(), err)
		}
		if !ok {
			continue
		}
		kept++
		if err := enc.EncodeRaw(dec.RawLine()); err != nil {
			return err
		}
	}
	if err := dec.Err(); err != nil {
		return err
	}
	if err := enc.Flush(); err != nil {
		return err
	}
	monitoring.Logf("filter: kept %d of %d features", kept, seen)
	return w.Close()
}

// flagConfig builds a Config from the flags the user actually set so that
// values loaded from -config survive unless overridden.
func flagConfig(fs *flag.FlagSet, bbox, radius, cotype string, exclude bool, random int, seed int64) (*filter.Config, error) {
	cfg := &filter.Config{}
	var err error
	fs.Visit(func(fl *flag.Flag) {
		if err != nil {
			return
		}
		switch fl.Name {
		case "bbox":
			b, perr := parseBBox(bbox)
			if perr != nil {
				err = perr
				return
			}
			cfg.BBox = &b
		case "radius":
			c, perr := parseCircle(radius)
			if perr != nil {
				err = perr
				return
			}
			cfg.Radius = &c
		case "cotype":
			cfg.Type = &cotype
		case "exclude":
			cfg.Exclude = &exclude
		case "random":
			cfg.Random = &random
		case "seed":
			cfg.Seed = &seed
		}
	})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseBBox reads a comma-separated minx,miny,maxx,maxy window.
func parseBBox(s string) ([4]float64, error) {
	var b [4]float64
	vals, err := parseFloats(s, 4)
	if err != nil {
		return b, fmt.Errorf("bbox wants minx,miny,maxx,maxy: %w", err)
	}
	copy(b[:], vals)
	return b, nil
}

// parseCircle reads a comma-separated x,y,r circle.
func parseCircle(s string) (filter.Circle, error) {
	vals, err := parseFloats(s, 3)
	if err != nil {
		return filter.Circle{}, fmt.Errorf("radius wants x,y,r: %w", err)
	}
	return filter.Circle{X: vals[0], Y: vals[1], R: vals[2]}, nil
}

func parseFloats(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d comma-separated numbers, got %q", n, s)
	}
	vals := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q", p)
		}
		vals[i] = v
	}
	return vals, nil
}
