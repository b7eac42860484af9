package seq

import (
	"fmt"
	"sort"

	"github.com/cityjson/cjseq/internal/cityjson"
)

// appearanceSlicer compacts the appearance entries referenced by a set of
// geometries into a fresh appearance, assigning new indices in first-
// encounter order. Geometries are rewritten in place, so callers hand it
// copies they own. Splitting uses one slicer per feature and one for the
// header's templates.
type appearanceSlicer struct {
	src *cityjson.Appearance

	matNew   map[int]int
	matOrder []int
	texNew   map[int]int
	texOrder []int
	uvNew    map[int]int
	uvOrder  []int
}

func newAppearanceSlicer(src *cityjson.Appearance) *appearanceSlicer {
	return &appearanceSlicer{
		src:    src,
		matNew: map[int]int{},
		texNew: map[int]int{},
		uvNew:  map[int]int{},
	}
}

func (s *appearanceSlicer) slice(g *cityjson.Geometry) error {
	for _, theme := range sortedThemes(g.Material) {
		ref := g.Material[theme]
		if ref.Value != nil {
			if err := s.checkMaterial(*ref.Value); err != nil {
				return err
			}
			v := s.material(*ref.Value)
			ref.Value = &v
		}
		if ref.Values != nil {
			if err := ref.Values.WalkLeaves(func(_, old int) error {
				return s.checkMaterial(old)
			}); err != nil {
				return err
			}
			vv := ref.Values.RemapLeaves(func(_, old int) int {
				return s.material(old)
			})
			ref.Values = &vv
		}
		g.Material[theme] = ref
	}
	for _, theme := range sortedThemes(g.Texture) {
		ref := g.Texture[theme]
		if err := ref.Values.WalkLeaves(func(pos, old int) error {
			if pos == 0 {
				return s.checkTexture(old)
			}
			return s.checkUV(old)
		}); err != nil {
			return err
		}
		g.Texture[theme] = cityjson.TextureReference{
			Values: ref.Values.RemapLeaves(func(pos, old int) int {
				if pos == 0 {
					return s.texture(old)
				}
				return s.uv(old)
			}),
		}
	}
	return nil
}

func (s *appearanceSlicer) checkMaterial(idx int) error {
	if s.src == nil || idx < 0 || idx >= len(s.src.Materials) {
		return fmt.Errorf("%w: material index %d out of range", cityjson.ErrSchemaViolation, idx)
	}
	return nil
}

func (s *appearanceSlicer) checkTexture(idx int) error {
	if s.src == nil || idx < 0 || idx >= len(s.src.Textures) {
		return fmt.Errorf("%w: texture index %d out of range", cityjson.ErrSchemaViolation, idx)
	}
	return nil
}

func (s *appearanceSlicer) checkUV(idx int) error {
	if s.src == nil || idx < 0 || idx >= len(s.src.VerticesTexture) {
		return fmt.Errorf("%w: vertices-texture index %d out of range", cityjson.ErrSchemaViolation, idx)
	}
	return nil
}

func (s *appearanceSlicer) material(old int) int {
	if n, ok := s.matNew[old]; ok {
		return n
	}
	n := len(s.matOrder)
	s.matNew[old] = n
	s.matOrder = append(s.matOrder, old)
	return n
}

func (s *appearanceSlicer) texture(old int) int {
	if n, ok := s.texNew[old]; ok {
		return n
	}
	n := len(s.texOrder)
	s.texNew[old] = n
	s.texOrder = append(s.texOrder, old)
	return n
}

func (s *appearanceSlicer) uv(old int) int {
	if n, ok := s.uvNew[old]; ok {
		return n
	}
	n := len(s.uvOrder)
	s.uvNew[old] = n
	s.uvOrder = append(s.uvOrder, old)
	return n
}

// build returns the compacted appearance, or nil when the geometries
// referenced nothing.
func (s *appearanceSlicer) build() *cityjson.Appearance {
	if len(s.matOrder) == 0 && len(s.texOrder) == 0 && len(s.uvOrder) == 0 {
		return nil
	}
	out := &cityjson.Appearance{}
	if len(s.matOrder) > 0 {
		out.Materials = make([]cityjson.Material, len(s.matOrder))
		for i, old := range s.matOrder {
			out.Materials[i] = s.src.Materials[old]
		}
		out.DefaultThemeMaterial = s.src.DefaultThemeMaterial
	}
	if len(s.texOrder) > 0 {
		out.Textures = make([]cityjson.Texture, len(s.texOrder))
		for i, old := range s.texOrder {
			out.Textures[i] = s.src.Textures[old]
		}
		out.DefaultThemeTexture = s.src.DefaultThemeTexture
	}
	if len(s.uvOrder) > 0 {
		out.VerticesTexture = make([][2]float64, len(s.uvOrder))
		for i, old := range s.uvOrder {
			out.VerticesTexture[i] = s.src.VerticesTexture[old]
		}
	}
	return out
}

// appearanceMerger assembles the output appearance of a merge, deduplicating
// materials by name and textures by image across every contributing header
// and feature. UV coordinate pools are appended wholesale with a running
// offset.
type appearanceMerger struct {
	materials  []cityjson.Material
	matByName  map[string]int
	textures   []cityjson.Texture
	texByImage map[string]int
	uv         [][2]float64

	defaultThemeTexture  string
	defaultThemeMaterial string
}

func newAppearanceMerger() *appearanceMerger {
	return &appearanceMerger{
		matByName:  map[string]int{},
		texByImage: map[string]int{},
	}
}

// merge rewrites the material and texture references of geoms (copies owned
// by the caller) onto the output pools, then appends app's UV coordinates.
func (am *appearanceMerger) merge(geoms []*cityjson.Geometry, app *cityjson.Appearance) error {
	uvOffset := len(am.uv)
	for _, g := range geoms {
		for _, theme := range sortedThemes(g.Material) {
			ref := g.Material[theme]
			if ref.Value != nil {
				old := *ref.Value
				if err := checkIndex(app == nil || old < 0 || old >= len(app.Materials), "material", old); err != nil {
					return err
				}
				v := am.material(app.Materials[old])
				ref.Value = &v
			}
			if ref.Values != nil {
				if err := ref.Values.WalkLeaves(func(_, old int) error {
					return checkIndex(app == nil || old < 0 || old >= len(app.Materials), "material", old)
				}); err != nil {
					return err
				}
				vv := ref.Values.RemapLeaves(func(_, old int) int {
					return am.material(app.Materials[old])
				})
				ref.Values = &vv
			}
			g.Material[theme] = ref
		}
		for _, theme := range sortedThemes(g.Texture) {
			ref := g.Texture[theme]
			if err := ref.Values.WalkLeaves(func(pos, old int) error {
				if pos == 0 {
					return checkIndex(app == nil || old < 0 || old >= len(app.Textures), "texture", old)
				}
				return checkIndex(app == nil || old < 0 || old >= len(app.VerticesTexture), "vertices-texture", old)
			}); err != nil {
				return err
			}
			g.Texture[theme] = cityjson.TextureReference{
				Values: ref.Values.RemapLeaves(func(pos, old int) int {
					if pos == 0 {
						return am.texture(app.Textures[old])
					}
					return old + uvOffset
				}),
			}
		}
	}
	if app != nil {
		am.uv = append(am.uv, app.VerticesTexture...)
		if am.defaultThemeTexture == "" {
			am.defaultThemeTexture = app.DefaultThemeTexture
		}
		if am.defaultThemeMaterial == "" {
			am.defaultThemeMaterial = app.DefaultThemeMaterial
		}
	}
	return nil
}

func (am *appearanceMerger) material(mat cityjson.Material) int {
	if n, ok := am.matByName[mat.Name]; ok {
		return n
	}
	n := len(am.materials)
	am.matByName[mat.Name] = n
	am.materials = append(am.materials, mat)
	return n
}

func (am *appearanceMerger) texture(tex cityjson.Texture) int {
	if n, ok := am.texByImage[tex.Image]; ok {
		return n
	}
	n := len(am.textures)
	am.texByImage[tex.Image] = n
	am.textures = append(am.textures, tex)
	return n
}

// build returns the merged appearance, or nil when nothing contributed.
func (am *appearanceMerger) build() *cityjson.Appearance {
	out := &cityjson.Appearance{
		Materials:            am.materials,
		Textures:             am.textures,
		VerticesTexture:      am.uv,
		DefaultThemeTexture:  am.defaultThemeTexture,
		DefaultThemeMaterial: am.defaultThemeMaterial,
	}
	if out.Empty() {
		return nil
	}
	return out
}

func checkIndex(out bool, pool string, idx int) error {
	if out {
		return fmt.Errorf("%w: %s index %d out of range", cityjson.ErrSchemaViolation, pool, idx)
	}
	return nil
}

func sortedThemes[T any](refs map[string]T) []string {
	if len(refs) == 0 {
		return nil
	}
	themes := make([]string, 0, len(refs))
	for theme := range refs {
		themes = append(themes, theme)
	}
	sort.Strings(themes)
	return themes
}
