package cityjson

import "fmt"

// Feature is one CityJSONFeature line of a CityJSONSeq stream: a root object,
// its descendants and a self-contained vertex pool. Indices in its geometries
// point into Vertices except for GeometryInstance anchors, which keep
// indexing the header's vertices-templates pool.
type Feature struct {
	Type        string                 `json:"type"`
	ID          string                 `json:"id"`
	CityObjects map[string]*CityObject `json:"CityObjects"`
	Vertices    []Vertex               `json:"vertices"`
	Appearance  *Appearance            `json:"appearance,omitempty"`
	Extensions  map[string]Extension   `json:"extensions,omitempty"`
}

// Validate checks the feature envelope: the type member, a non-empty id and
// the presence of the root object.
func (f *Feature) Validate() error {
	if f.Type != TypeFeature {
		return fmt.Errorf("%w: type is %q, want %q", ErrSchemaViolation, f.Type, TypeFeature)
	}
	if f.ID == "" {
		return fmt.Errorf("%w: feature id is empty", ErrSchemaViolation)
	}
	if _, ok := f.CityObjects[f.ID]; !ok {
		return fmt.Errorf("%w: feature %q has no city object matching its id", ErrSchemaViolation, f.ID)
	}
	return nil
}

// Root returns the city object whose key equals the feature id.
func (f *Feature) Root() (*CityObject, error) {
	co, ok := f.CityObjects[f.ID]
	if !ok {
		return nil, fmt.Errorf("%w: feature %q has no city object matching its id", ErrSchemaViolation, f.ID)
	}
	return co, nil
}
