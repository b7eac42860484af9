package cityjson

import gojson "github.com/goccy/go-json"

// CityObject is a single city entity. First-class members mirror the
// published schema; everything else (extension members and the like) is
// preserved verbatim in Extra.
type CityObject struct {
	Type               string                       `json:"type"`
	GeographicalExtent *[6]float64                  `json:"geographicalExtent,omitempty"`
	Attributes         gojson.RawMessage            `json:"attributes,omitempty"`
	Geometry           []*Geometry                  `json:"geometry,omitempty"`
	Children           []string                     `json:"children,omitempty"`
	ChildrenRoles      []string                     `json:"children_roles,omitempty"`
	Parents            []string                     `json:"parents,omitempty"`
	Extra              map[string]gojson.RawMessage `json:"-"`
}

var cityObjectKeys = []string{
	"type", "geographicalExtent", "attributes", "geometry",
	"children", "children_roles", "parents",
}

// IsRoot reports whether the object sits at the top of the containment
// hierarchy.
func (c *CityObject) IsRoot() bool { return len(c.Parents) == 0 }

// Clone returns a deep copy of c. Attributes and Extra payloads are shared
// byte slices; they are never mutated.
func (c *CityObject) Clone() *CityObject {
	out := *c
	if c.GeographicalExtent != nil {
		e := *c.GeographicalExtent
		out.GeographicalExtent = &e
	}
	if c.Geometry != nil {
		out.Geometry = make([]*Geometry, len(c.Geometry))
		for i, g := range c.Geometry {
			out.Geometry[i] = g.Clone()
		}
	}
	out.Children = append([]string(nil), c.Children...)
	out.ChildrenRoles = append([]string(nil), c.ChildrenRoles...)
	out.Parents = append([]string(nil), c.Parents...)
	return &out
}

func (c CityObject) MarshalJSON() ([]byte, error) {
	type object CityObject
	b, err := gojson.Marshal(object(c))
	if err != nil {
		return nil, err
	}
	return appendExtras(b, c.Extra)
}

func (c *CityObject) UnmarshalJSON(data []byte) error {
	type object CityObject
	var raw object
	if err := gojson.Unmarshal(data, &raw); err != nil {
		return err
	}
	extra, err := extraFields(data, cityObjectKeys)
	if err != nil {
		return err
	}
	raw.Extra = extra
	*c = CityObject(raw)
	return nil
}
