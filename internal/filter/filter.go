package filter

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/paulmach/orb"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/cityjson/cjseq/internal/cityjson"
)

// Filter applies a Config to features quantized under one stream header's
// transform. It keeps no state between features beyond the random source,
// so memory stays bounded by a single feature.
type Filter struct {
	cfg     Config
	tr      cityjson.Transform
	window  *orb.Bound
	exclude bool
	draw    *distuv.Bernoulli
}

// New builds a Filter for features governed by tr.
func New(cfg *Config, tr cityjson.Transform) (*Filter, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := tr.Valid(); err != nil {
		return nil, err
	}
	f := &Filter{cfg: *cfg, tr: tr}
	if cfg.BBox != nil {
		b := *cfg.BBox
		f.window = &orb.Bound{Min: orb.Point{b[0], b[1]}, Max: orb.Point{b[2], b[3]}}
	}
	if cfg.Exclude != nil {
		f.exclude = *cfg.Exclude
	}
	if cfg.Random != nil {
		bern := distuv.Bernoulli{P: 1 / float64(*cfg.Random)}
		if cfg.Seed != nil {
			bern.Src = rand.NewPCG(uint64(*cfg.Seed), uint64(*cfg.Seed))
		}
		f.draw = &bern
	}
	return f, nil
}

// Keep decides one feature. Spatial predicates test the x/y bounding box of
// every vertex the feature's own boundaries reference, with contact counting
// as inside; template anchors index the header's pools and are not part of
// that box. A feature that references no vertices fails the spatial tests.
func (f *Filter) Keep(feat *cityjson.Feature) (bool, error) {
	keep := true
	if f.window != nil || f.cfg.Radius != nil {
		bound, ok, err := f.featureBound(feat)
		if err != nil {
			return false, err
		}
		switch {
		case !ok:
			keep = false
		case f.window != nil && !f.window.Intersects(bound):
			keep = false
		case f.cfg.Radius != nil && !touchesCircle(bound, *f.cfg.Radius):
			keep = false
		}
	}
	if keep && f.cfg.Type != nil {
		root, err := feat.Root()
		if err != nil {
			return false, err
		}
		if root.Type != *f.cfg.Type {
			keep = false
		}
	}
	if f.exclude {
		keep = !keep
	}
	if keep && f.draw != nil {
		keep = f.draw.Rand() == 1
	}
	return keep, nil
}

// featureBound computes the x/y extent over the real-world coordinates of
// every vertex referenced by non-instance boundaries. ok is false when no
// vertex is referenced.
func (f *Filter) featureBound(feat *cityjson.Feature) (orb.Bound, bool, error) {
	var bound orb.Bound
	found := false
	for id, co := range feat.CityObjects {
		for _, g := range co.Geometry {
			if g.IsInstance() {
				continue
			}
			err := g.Boundaries.Walk(func(idx int) error {
				if idx < 0 || idx >= len(feat.Vertices) {
					return fmt.Errorf("%w: city object %q references vertex %d of %d", cityjson.ErrSchemaViolation, id, idx, len(feat.Vertices))
				}
				p := f.tr.Real(feat.Vertices[idx])
				pt := orb.Point{p[0], p[1]}
				if !found {
					bound = orb.Bound{Min: pt, Max: pt}
					found = true
				} else {
					bound = bound.Extend(pt)
				}
				return nil
			})
			if err != nil {
				return orb.Bound{}, false, err
			}
		}
	}
	return bound, found, nil
}

// touchesCircle reports whether the closest point of b to the circle center
// lies within the radius.
func touchesCircle(b orb.Bound, c Circle) bool {
	dx := math.Max(0, math.Max(b.Min[0]-c.X, c.X-b.Max[0]))
	dy := math.Max(0, math.Max(b.Min[1]-c.Y, c.Y-b.Max[1]))
	return dx*dx+dy*dy <= c.R*c.R
}
