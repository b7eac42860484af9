// Package cityjson models CityJSON 1.1/2.0 documents and CityJSONSeq
// features: typed city objects, recursive boundary index trees, appearance
// and metadata, plus the quantization arithmetic shared by the split and
// merge pipelines.
package cityjson

import (
	"fmt"

	gojson "github.com/goccy/go-json"
)

// JSON "type" members of the two top-level objects.
const (
	TypeDocument = "CityJSON"
	TypeFeature  = "CityJSONFeature"
)

var supportedVersions = map[string]bool{
	"1.1": true,
	"2.0": true,
}

// Extension references an external extension schema.
type Extension struct {
	URL     string `json:"url"`
	Version string `json:"version"`
}

// GeometryTemplates holds reusable geometries. Template boundaries and
// GeometryInstance anchors index VerticesTemplates, which stays in real-world
// float coordinates and is never quantized or retransformed.
type GeometryTemplates struct {
	Templates         []*Geometry  `json:"templates"`
	VerticesTemplates [][3]float64 `json:"vertices-templates"`
}

// Document is a complete CityJSON object: either a whole dataset or the
// header line of a CityJSONSeq stream (empty CityObjects and vertices).
// Unknown top-level members survive round trips through Extra.
type Document struct {
	Type              string                       `json:"type"`
	Version           string                       `json:"version"`
	Extensions        map[string]Extension         `json:"extensions,omitempty"`
	Metadata          *Metadata                    `json:"metadata,omitempty"`
	Transform         Transform                    `json:"transform"`
	CityObjects       map[string]*CityObject       `json:"CityObjects"`
	Vertices          []Vertex                     `json:"vertices"`
	Appearance        *Appearance                  `json:"appearance,omitempty"`
	GeometryTemplates *GeometryTemplates           `json:"geometry-templates,omitempty"`
	Extra             map[string]gojson.RawMessage `json:"-"`
}

var documentKeys = []string{
	"type", "version", "extensions", "metadata", "transform",
	"CityObjects", "vertices", "appearance", "geometry-templates",
}

// Validate checks the envelope invariants shared by documents and stream
// headers: the type member, the version gate and a usable transform.
func (d *Document) Validate() error {
	if d.Type != TypeDocument {
		return fmt.Errorf("%w: type is %q, want %q", ErrSchemaViolation, d.Type, TypeDocument)
	}
	if !supportedVersions[d.Version] {
		return fmt.Errorf("%w: version %q (supported: 1.1, 2.0)", ErrVersionUnsupported, d.Version)
	}
	return d.Transform.Valid()
}

func (d Document) MarshalJSON() ([]byte, error) {
	if d.CityObjects == nil {
		d.CityObjects = map[string]*CityObject{}
	}
	if d.Vertices == nil {
		d.Vertices = []Vertex{}
	}
	type document Document
	b, err := gojson.Marshal(document(d))
	if err != nil {
		return nil, err
	}
	return appendExtras(b, d.Extra)
}

func (d *Document) UnmarshalJSON(data []byte) error {
	type document Document
	var raw document
	if err := gojson.Unmarshal(data, &raw); err != nil {
		return err
	}
	extra, err := extraFields(data, documentKeys)
	if err != nil {
		return err
	}
	raw.Extra = extra
	*d = Document(raw)
	return nil
}
