package seq

import (
	"fmt"
	"sort"

	"github.com/cityjson/cjseq/internal/cityjson"
)

// Order selects how the splitter sequences features.
type Order string

const (
	// OrderNone emits features in whatever order the city object map
	// yields them.
	OrderNone Order = "none"
	// OrderAlphabetical emits features sorted by root id.
	OrderAlphabetical Order = "alphabetical"
)

// SplitOptions configures a Splitter. The zero value means OrderNone.
type SplitOptions struct {
	Order Order
}

// Splitter turns one CityJSON document into a header plus one feature per
// parentless city object. Construction validates the document envelope and
// builds the header, so an unusable document yields an error before anything
// is emitted.
type Splitter struct {
	doc    *cityjson.Document
	header *cityjson.Document
	roots  []string
}

// NewSplitter validates doc and prepares the stream. doc is not modified.
func NewSplitter(doc *cityjson.Document, opts SplitOptions) (*Splitter, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	roots := make([]string, 0, len(doc.CityObjects))
	for id, co := range doc.CityObjects {
		if co.IsRoot() {
			roots = append(roots, id)
		}
	}
	switch opts.Order {
	case OrderNone, "":
	case OrderAlphabetical:
		sort.Strings(roots)
	default:
		return nil, fmt.Errorf("seq: unknown order %q", opts.Order)
	}
	s := &Splitter{doc: doc, roots: roots}
	header, err := s.buildHeader()
	if err != nil {
		return nil, err
	}
	s.header = header
	return s, nil
}

// Header returns the stream header: the document stripped of city objects
// and vertices, with template-referenced appearance entries compacted in.
func (s *Splitter) Header() *cityjson.Document { return s.header }

// Features calls emit once per feature, in the configured root order. Each
// feature carries its root, all transitive descendants, a vertex pool local
// to the feature, and the slice of the appearance its geometries reference.
func (s *Splitter) Features(emit func(*cityjson.Feature) error) error {
	for _, id := range s.roots {
		f, err := s.feature(id)
		if err != nil {
			return err
		}
		if err := emit(f); err != nil {
			return err
		}
	}
	return nil
}

func (s *Splitter) buildHeader() (*cityjson.Document, error) {
	hdr := &cityjson.Document{
		Type:        s.doc.Type,
		Version:     s.doc.Version,
		Metadata:    s.doc.Metadata.Clone(),
		Transform:   s.doc.Transform,
		CityObjects: map[string]*cityjson.CityObject{},
		Vertices:    []cityjson.Vertex{},
		Extra:       s.doc.Extra,
	}
	if len(s.doc.Extensions) > 0 {
		hdr.Extensions = make(map[string]cityjson.Extension, len(s.doc.Extensions))
		for name, ext := range s.doc.Extensions {
			hdr.Extensions[name] = ext
		}
	}
	if gt := s.doc.GeometryTemplates; gt != nil {
		slicer := newAppearanceSlicer(s.doc.Appearance)
		templates := make([]*cityjson.Geometry, len(gt.Templates))
		for i, tmpl := range gt.Templates {
			cp := tmpl.Clone()
			if err := cp.Boundaries.Walk(func(idx int) error {
				if idx < 0 || idx >= len(gt.VerticesTemplates) {
					return fmt.Errorf("%w: template %d: vertex index %d out of range", cityjson.ErrSchemaViolation, i, idx)
				}
				return nil
			}); err != nil {
				return nil, err
			}
			if err := slicer.slice(cp); err != nil {
				return nil, err
			}
			templates[i] = cp
		}
		hdr.GeometryTemplates = &cityjson.GeometryTemplates{
			Templates:         templates,
			VerticesTemplates: append([][3]float64(nil), gt.VerticesTemplates...),
		}
		hdr.Appearance = slicer.build()
	}
	return hdr, nil
}

func (s *Splitter) feature(rootID string) (*cityjson.Feature, error) {
	ids, err := s.collect(rootID)
	if err != nil {
		return nil, err
	}

	vmap := map[int]int{}
	var vorder []int
	slicer := newAppearanceSlicer(s.doc.Appearance)
	objects := make(map[string]*cityjson.CityObject, len(ids))

	for _, id := range ids {
		co := s.doc.CityObjects[id].Clone()
		for _, g := range co.Geometry {
			if g.IsInstance() {
				if err := s.checkInstance(id, g); err != nil {
					return nil, err
				}
			} else {
				if err := g.Boundaries.Walk(func(idx int) error {
					if idx < 0 || idx >= len(s.doc.Vertices) {
						return fmt.Errorf("%w: %q: vertex index %d out of range", cityjson.ErrSchemaViolation, id, idx)
					}
					if _, ok := vmap[idx]; !ok {
						vmap[idx] = len(vorder)
						vorder = append(vorder, idx)
					}
					return nil
				}); err != nil {
					return nil, err
				}
				g.Boundaries = g.Boundaries.Remap(func(old int) int { return vmap[old] })
			}
			if err := slicer.slice(g); err != nil {
				return nil, err
			}
		}
		objects[id] = co
	}

	vertices := make([]cityjson.Vertex, len(vorder))
	for i, old := range vorder {
		vertices[i] = s.doc.Vertices[old]
	}
	return &cityjson.Feature{
		Type:        cityjson.TypeFeature,
		ID:          rootID,
		CityObjects: objects,
		Vertices:    vertices,
		Appearance:  slicer.build(),
	}, nil
}

// collect returns rootID plus all transitive descendants, depth-first in
// children order. Objects reachable through two parents appear once.
func (s *Splitter) collect(rootID string) ([]string, error) {
	var ids []string
	seen := map[string]bool{}
	var visit func(id string) error
	visit = func(id string) error {
		if seen[id] {
			return nil
		}
		co, ok := s.doc.CityObjects[id]
		if !ok {
			return fmt.Errorf("%w: city object %q not found (reached from %q)", cityjson.ErrSchemaViolation, id, rootID)
		}
		seen[id] = true
		ids = append(ids, id)
		for _, child := range co.Children {
			if err := visit(child); err != nil {
				return err
			}
		}
		return nil
	}
	if err := visit(rootID); err != nil {
		return nil, err
	}
	return ids, nil
}

// checkInstance validates a GeometryInstance against the document's template
// pools. Its indices are left alone: they keep pointing into the header.
func (s *Splitter) checkInstance(id string, g *cityjson.Geometry) error {
	gt := s.doc.GeometryTemplates
	if gt == nil {
		return fmt.Errorf("%w: %q has a geometry instance but the document has no geometry-templates", cityjson.ErrSchemaViolation, id)
	}
	if g.Template == nil || *g.Template < 0 || *g.Template >= len(gt.Templates) {
		return fmt.Errorf("%w: %q: template index out of range", cityjson.ErrSchemaViolation, id)
	}
	return g.Boundaries.Walk(func(idx int) error {
		if idx < 0 || idx >= len(gt.VerticesTemplates) {
			return fmt.Errorf("%w: %q: template anchor %d out of range", cityjson.ErrSchemaViolation, id, idx)
		}
		return nil
	})
}
