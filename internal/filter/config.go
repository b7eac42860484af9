// Package filter evaluates per-feature predicates over CityJSONSeq streams:
// bounding box, radius, city object type, exclusion and random sampling.
package filter

import (
	"bytes"
	"fmt"
	"path/filepath"

	gojson "github.com/goccy/go-json"

	"github.com/cityjson/cjseq/internal/fsutil"
)

// Circle is a radius query: center in real-world x/y plus radius.
type Circle struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	R float64 `json:"r"`
}

// Config selects which features a stream keeps. Predicates are optional and
// combine as a conjunction; Exclude inverts the combined outcome, and Random
// independently keeps about one in Random of the features that survive.
// Fields omitted from a JSON file stay nil, so partial configs are safe.
type Config struct {
	BBox    *[4]float64 `json:"bbox,omitempty"` // minx, miny, maxx, maxy
	Radius  *Circle     `json:"radius,omitempty"`
	Type    *string     `json:"cotype,omitempty"` // root city object type
	Exclude *bool       `json:"exclude,omitempty"`
	Random  *int        `json:"random,omitempty"` // keep 1 in Random
	Seed    *int64      `json:"seed,omitempty"`   // seed for the random draw
}

// Load reads a filter config from a JSON file. Unknown members are rejected
// to catch typos.
func Load(fsys fsutil.FileSystem, path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("filter config must have .json extension, got %q", ext)
	}
	data, err := fsys.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read filter config: %w", err)
	}
	cfg := &Config{}
	dec := gojson.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse filter config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid filter config: %w", err)
	}
	return cfg, nil
}

// Override copies o's set fields over c. The command line uses it to let
// flags win over file values.
func (c *Config) Override(o *Config) {
	if o == nil {
		return
	}
	if o.BBox != nil {
		c.BBox = o.BBox
	}
	if o.Radius != nil {
		c.Radius = o.Radius
	}
	if o.Type != nil {
		c.Type = o.Type
	}
	if o.Exclude != nil {
		c.Exclude = o.Exclude
	}
	if o.Random != nil {
		c.Random = o.Random
	}
	if o.Seed != nil {
		c.Seed = o.Seed
	}
}

// Validate checks the values that have been set.
func (c *Config) Validate() error {
	if c.BBox != nil {
		b := *c.BBox
		if b[0] > b[2] || b[1] > b[3] {
			return fmt.Errorf("bbox min corner (%v, %v) exceeds max corner (%v, %v)", b[0], b[1], b[2], b[3])
		}
	}
	if c.Radius != nil && !(c.Radius.R >= 0) {
		return fmt.Errorf("radius must be non-negative, got %v", c.Radius.R)
	}
	if c.Random != nil && *c.Random < 1 {
		return fmt.Errorf("random must be at least 1, got %d", *c.Random)
	}
	return nil
}
