package cityjson

import gojson "github.com/goccy/go-json"

// GeometryType enumerates the CityJSON geometry types.
type GeometryType string

const (
	MultiPoint       GeometryType = "MultiPoint"
	MultiLineString  GeometryType = "MultiLineString"
	MultiSurface     GeometryType = "MultiSurface"
	CompositeSurface GeometryType = "CompositeSurface"
	Solid            GeometryType = "Solid"
	MultiSolid       GeometryType = "MultiSolid"
	CompositeSolid   GeometryType = "CompositeSolid"
	GeometryInstance GeometryType = "GeometryInstance"
)

// Geometry is a single geometry of a city object. A GeometryInstance carries
// template and transformationMatrix instead of semantics; its boundaries hold
// the single anchor index into the vertices-templates pool.
type Geometry struct {
	Type                 GeometryType                 `json:"type"`
	LoD                  string                       `json:"lod,omitempty"`
	Boundaries           Boundaries                   `json:"boundaries"`
	Semantics            *Semantics                   `json:"semantics,omitempty"`
	Material             map[string]MaterialReference `json:"material,omitempty"`
	Texture              map[string]TextureReference  `json:"texture,omitempty"`
	Template             *int                         `json:"template,omitempty"`
	TransformationMatrix *[16]float64                 `json:"transformationMatrix,omitempty"`
}

// IsInstance reports whether g references a geometry template.
func (g *Geometry) IsInstance() bool { return g.Type == GeometryInstance }

// Clone returns a deep copy of g.
func (g *Geometry) Clone() *Geometry {
	if g == nil {
		return nil
	}
	out := *g
	out.Boundaries = g.Boundaries.Remap(func(idx int) int { return idx })
	if g.Semantics != nil {
		out.Semantics = &Semantics{
			Values:   g.Semantics.Values.RemapLeaves(func(_, v int) int { return v }),
			Surfaces: append([]SemanticsSurface(nil), g.Semantics.Surfaces...),
		}
	}
	if g.Material != nil {
		out.Material = make(map[string]MaterialReference, len(g.Material))
		for theme, ref := range g.Material {
			out.Material[theme] = ref.clone()
		}
	}
	if g.Texture != nil {
		out.Texture = make(map[string]TextureReference, len(g.Texture))
		for theme, ref := range g.Texture {
			out.Texture[theme] = ref.clone()
		}
	}
	if g.Template != nil {
		t := *g.Template
		out.Template = &t
	}
	if g.TransformationMatrix != nil {
		m := *g.TransformationMatrix
		out.TransformationMatrix = &m
	}
	return &out
}

// Semantics attaches surface typing to a geometry. Values mirrors the shape
// of the boundaries one nesting level up and indexes Surfaces; both are local
// to the geometry and survive splitting and merging untouched.
type Semantics struct {
	Values   NullableIndices    `json:"values"`
	Surfaces []SemanticsSurface `json:"surfaces"`
}

// SemanticsSurface is one semantic surface. Attributes beyond the defined
// members are preserved verbatim in Extra.
type SemanticsSurface struct {
	Type     string                       `json:"type"`
	Parent   *int                         `json:"parent,omitempty"`
	Children []int                        `json:"children,omitempty"`
	Extra    map[string]gojson.RawMessage `json:"-"`
}

var semanticsSurfaceKeys = []string{"type", "parent", "children"}

func (s SemanticsSurface) MarshalJSON() ([]byte, error) {
	type surface SemanticsSurface
	b, err := gojson.Marshal(surface(s))
	if err != nil {
		return nil, err
	}
	return appendExtras(b, s.Extra)
}

func (s *SemanticsSurface) UnmarshalJSON(data []byte) error {
	type surface SemanticsSurface
	var raw surface
	if err := gojson.Unmarshal(data, &raw); err != nil {
		return err
	}
	extra, err := extraFields(data, semanticsSurfaceKeys)
	if err != nil {
		return err
	}
	raw.Extra = extra
	*s = SemanticsSurface(raw)
	return nil
}

// MaterialReference selects materials for one theme: Value applies a single
// material to the whole geometry, Values mirrors the surface structure.
type MaterialReference struct {
	Value  *int             `json:"value,omitempty"`
	Values *NullableIndices `json:"values,omitempty"`
}

func (r MaterialReference) clone() MaterialReference {
	var out MaterialReference
	if r.Value != nil {
		v := *r.Value
		out.Value = &v
	}
	if r.Values != nil {
		vv := r.Values.RemapLeaves(func(_, v int) int { return v })
		out.Values = &vv
	}
	return out
}

// TextureReference maps texture and UV indices onto geometry rings for one
// theme. In every innermost array the first element indexes textures and the
// remaining elements index vertices-texture.
type TextureReference struct {
	Values NullableIndices `json:"values"`
}

func (r TextureReference) clone() TextureReference {
	return TextureReference{Values: r.Values.RemapLeaves(func(_, v int) int { return v })}
}
