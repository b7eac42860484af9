package seq

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/cityjson/cjseq/internal/cityjson"
	"github.com/cityjson/cjseq/internal/monitoring"
)

// DefaultPrecision is the number of decimals the merge keeps when it
// recomputes the output transform.
const DefaultPrecision = 3

// maxQuantized bounds quantized coordinates so they survive readers that
// parse JSON numbers as float64.
const maxQuantized = float64(1<<53 - 1)

// MergeOptions configures a Merger.
type MergeOptions struct {
	// Precision is the number of decimals of the output grid. Values below
	// one fall back to DefaultPrecision.
	Precision int
}

type mergeSource struct {
	transform     cityjson.Transform
	templateCount int
	anchorCount   int
	// offsets into the merged pools for this source's templates
	templateOffset int
	anchorOffset   int
}

type pendingFeature struct {
	feat *cityjson.Feature
	src  int
}

// Merger assembles one CityJSON document from one or more CityJSONSeq
// streams. Call BeginSource for each stream's header and Add for each of its
// features, in stream order, then Document exactly once.
//
// Merging is two-phase: input is buffered while the union of real-world
// bounding boxes accumulates, and only then is the output transform fixed
// (translate at the union's minimum corner, uniform decimal scale coarsened
// until quantized values fit maxQuantized) and every vertex re-quantized
// onto it. Distinct quantized triples get global indices in first-encounter
// order over the features in stream order.
type Merger struct {
	precision int

	first     *cityjson.Document
	sources   []mergeSource
	pending   []pendingFeature
	assembled map[string]struct{}

	templates  []*cityjson.Geometry
	tmplVerts  [][3]float64
	appearance *appearanceMerger

	min, max  [3]float64
	hasBounds bool
}

// NewMerger returns a Merger producing opts.Precision decimals.
func NewMerger(opts MergeOptions) *Merger {
	p := opts.Precision
	if p < 1 {
		p = DefaultPrecision
	}
	return &Merger{
		precision:  p,
		assembled:  map[string]struct{}{},
		appearance: newAppearanceMerger(),
	}
}

// BeginSource starts the next input stream. The header's transform governs
// the stream's features; its geometry templates are appended to the merged
// pools with running offsets, and appearance entries they reference are
// folded into the output.
func (m *Merger) BeginSource(hdr *cityjson.Document) error {
	if err := hdr.Validate(); err != nil {
		return err
	}
	if len(hdr.CityObjects) != 0 || len(hdr.Vertices) != 0 {
		return fmt.Errorf("%w: header line must have empty CityObjects and vertices", cityjson.ErrSchemaViolation)
	}
	src := mergeSource{
		transform:      hdr.Transform,
		templateOffset: len(m.templates),
		anchorOffset:   len(m.tmplVerts),
	}
	if gt := hdr.GeometryTemplates; gt != nil {
		src.templateCount = len(gt.Templates)
		src.anchorCount = len(gt.VerticesTemplates)
		clones := make([]*cityjson.Geometry, len(gt.Templates))
		for i, tmpl := range gt.Templates {
			cp := tmpl.Clone()
			if err := cp.Boundaries.Walk(func(idx int) error {
				if idx < 0 || idx >= src.anchorCount {
					return fmt.Errorf("%w: template %d: vertex index %d out of range", cityjson.ErrSchemaViolation, i, idx)
				}
				return nil
			}); err != nil {
				return err
			}
			cp.Boundaries = cp.Boundaries.Offset(src.anchorOffset)
			clones[i] = cp
		}
		if err := m.appearance.merge(clones, hdr.Appearance); err != nil {
			return err
		}
		m.templates = append(m.templates, clones...)
		m.tmplVerts = append(m.tmplVerts, gt.VerticesTemplates...)
	}
	if m.first == nil {
		m.first = hdr
	}
	m.sources = append(m.sources, src)
	return nil
}

// Add buffers one feature of the current source. It rejects ids already
// assembled and indices out of range, and extends the union bounding box
// with the feature's real-world coordinates.
func (m *Merger) Add(f *cityjson.Feature) error {
	if len(m.sources) == 0 {
		return fmt.Errorf("seq: Add called before BeginSource")
	}
	if err := f.Validate(); err != nil {
		return err
	}
	for id := range f.CityObjects {
		if _, dup := m.assembled[id]; dup {
			return fmt.Errorf("%w: %q", cityjson.ErrDuplicateFeatureID, id)
		}
	}
	srcIdx := len(m.sources) - 1
	src := m.sources[srcIdx]
	for id, co := range f.CityObjects {
		for _, g := range co.Geometry {
			if g.IsInstance() {
				if g.Template == nil || *g.Template < 0 || *g.Template >= src.templateCount {
					return fmt.Errorf("%w: %q: template index out of range", cityjson.ErrSchemaViolation, id)
				}
				if err := g.Boundaries.Walk(func(idx int) error {
					if idx < 0 || idx >= src.anchorCount {
						return fmt.Errorf("%w: %q: template anchor %d out of range", cityjson.ErrSchemaViolation, id, idx)
					}
					return nil
				}); err != nil {
					return err
				}
				continue
			}
			if err := g.Boundaries.Walk(func(idx int) error {
				if idx < 0 || idx >= len(f.Vertices) {
					return fmt.Errorf("%w: %q: vertex index %d out of range", cityjson.ErrSchemaViolation, id, idx)
				}
				return nil
			}); err != nil {
				return err
			}
		}
	}
	for id := range f.CityObjects {
		m.assembled[id] = struct{}{}
	}
	for _, v := range f.Vertices {
		m.extend(src.transform.Real(v))
	}
	m.pending = append(m.pending, pendingFeature{feat: f, src: srcIdx})
	return nil
}

func (m *Merger) extend(p [3]float64) {
	if !m.hasBounds {
		m.min, m.max = p, p
		m.hasBounds = true
		return
	}
	for i := 0; i < 3; i++ {
		m.min[i] = math.Min(m.min[i], p[i])
		m.max[i] = math.Max(m.max[i], p[i])
	}
}

// Document runs the second phase and returns the assembled document. The
// envelope (type, version, metadata, extensions, unknown members) comes from
// the first header.
func (m *Merger) Document() (*cityjson.Document, error) {
	if m.first == nil {
		return nil, fmt.Errorf("seq: merge requires at least one header")
	}
	tr := m.finalTransform()
	out := &cityjson.Document{
		Type:        m.first.Type,
		Version:     m.first.Version,
		Extensions:  m.first.Extensions,
		Metadata:    m.first.Metadata.Clone(),
		Transform:   tr,
		CityObjects: make(map[string]*cityjson.CityObject, len(m.assembled)),
		Extra:       m.first.Extra,
	}

	vmap := make(map[cityjson.Vertex]int)
	var vertices []cityjson.Vertex
	for _, pf := range m.pending {
		f := pf.feat
		src := m.sources[pf.src]

		local := make([]int, len(f.Vertices))
		for i, v := range f.Vertices {
			q := tr.Quantize(src.transform.Real(v))
			g, ok := vmap[q]
			if !ok {
				g = len(vertices)
				vmap[q] = g
				vertices = append(vertices, q)
			}
			local[i] = g
		}

		var geoms []*cityjson.Geometry
		for _, id := range featureIDs(f) {
			co := f.CityObjects[id].Clone()
			for _, g := range co.Geometry {
				if g.IsInstance() {
					t := *g.Template + src.templateOffset
					g.Template = &t
					g.Boundaries = g.Boundaries.Offset(src.anchorOffset)
				} else {
					g.Boundaries = g.Boundaries.Remap(func(old int) int { return local[old] })
				}
				geoms = append(geoms, g)
			}
			out.CityObjects[id] = co
		}
		if err := m.appearance.merge(geoms, f.Appearance); err != nil {
			return nil, err
		}
	}
	out.Vertices = vertices
	if len(m.templates) > 0 {
		out.GeometryTemplates = &cityjson.GeometryTemplates{
			Templates:         m.templates,
			VerticesTemplates: m.tmplVerts,
		}
	}
	out.Appearance = m.appearance.build()
	m.finishMetadata(out)

	monitoring.Logf("collect: %d features, %d city objects, %d vertices, %d sources",
		len(m.pending), len(out.CityObjects), len(vertices), len(m.sources))
	return out, nil
}

// finalTransform picks the output grid: translate at the union bounding
// box's minimum corner, scale at 10^-precision coarsened by factors of ten
// until the largest extent quantizes below maxQuantized.
func (m *Merger) finalTransform() cityjson.Transform {
	decimals := m.precision
	scale := math.Pow10(-decimals)
	if !m.hasBounds {
		return cityjson.Transform{Scale: [3]float64{scale, scale, scale}}
	}
	extent := 0.0
	for i := 0; i < 3; i++ {
		extent = math.Max(extent, m.max[i]-m.min[i])
	}
	for extent/scale > maxQuantized {
		decimals--
		scale = math.Pow10(-decimals)
	}
	return cityjson.Transform{
		Scale:     [3]float64{scale, scale, scale},
		Translate: m.min,
	}
}

func (m *Merger) finishMetadata(out *cityjson.Document) {
	multi := len(m.sources) > 1
	if out.Metadata == nil {
		if !multi {
			return
		}
		out.Metadata = &cityjson.Metadata{}
	}
	if m.hasBounds {
		out.Metadata.GeographicalExtent = &[6]float64{
			m.min[0], m.min[1], m.min[2],
			m.max[0], m.max[1], m.max[2],
		}
	}
	if multi {
		// The combination is a new dataset; a stale identifier would
		// misattribute it to the first input.
		out.Metadata.Identifier = uuid.NewString()
	}
}

// featureIDs returns the feature's object ids with the root first and the
// rest sorted, so pool append order does not depend on map iteration.
func featureIDs(f *cityjson.Feature) []string {
	ids := make([]string, 0, len(f.CityObjects))
	for id := range f.CityObjects {
		if id != f.ID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return append([]string{f.ID}, ids...)
}
