package cityjson

import (
	"strings"
	"testing"

	gojson "github.com/goccy/go-json"
)

const objectFixture = `{
	"type": "BuildingPart",
	"parents": ["main"],
	"children": ["unit-a", "unit-b"],
	"children_roles": ["apartment", "apartment"],
	"attributes": {"storeysAboveGround": 3},
	"geometry": [{"type": "MultiSurface", "lod": "2", "boundaries": [[[0, 1, 2]]]}],
	"+age": 87
}`

func TestCityObjectRoundTrip(t *testing.T) {
	var co CityObject
	if err := gojson.Unmarshal([]byte(objectFixture), &co); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if co.Type != "BuildingPart" {
		t.Errorf("Type = %q, want BuildingPart", co.Type)
	}
	if co.IsRoot() {
		t.Error("IsRoot() = true for an object with parents")
	}
	if len(co.Children) != 2 || len(co.ChildrenRoles) != 2 {
		t.Errorf("children = %v, roles = %v, want two each", co.Children, co.ChildrenRoles)
	}
	if !strings.Contains(string(co.Attributes), "storeysAboveGround") {
		t.Errorf("Attributes = %s, want storeysAboveGround kept verbatim", co.Attributes)
	}
	if _, ok := co.Extra["+age"]; !ok {
		t.Errorf("Extra = %v, want +age preserved", co.Extra)
	}

	out, err := gojson.Marshal(&co)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	for _, member := range []string{`"children_roles":["apartment","apartment"]`, `"+age":87`} {
		if !strings.Contains(string(out), member) {
			t.Errorf("output missing %s: %s", member, out)
		}
	}
}

func TestCityObjectCloneIsDeep(t *testing.T) {
	var co CityObject
	if err := gojson.Unmarshal([]byte(objectFixture), &co); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	cp := co.Clone()
	cp.Children[0] = "other"
	cp.Geometry[0].Boundaries = cp.Geometry[0].Boundaries.Offset(10)

	if co.Children[0] != "unit-a" {
		t.Errorf("original children mutated: %v", co.Children)
	}
	var got []int
	co.Geometry[0].Boundaries.Walk(func(idx int) error {
		got = append(got, idx)
		return nil
	})
	if len(got) == 0 || got[0] != 0 {
		t.Errorf("original boundaries mutated: %v", got)
	}
}

func TestSemanticsSurfaceKeepsExtraAttributes(t *testing.T) {
	var s SemanticsSurface
	fixture := `{"type": "RoofSurface", "slope": 33.4, "children": [2]}`
	if err := gojson.Unmarshal([]byte(fixture), &s); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if s.Type != "RoofSurface" || len(s.Children) != 1 {
		t.Errorf("parsed surface = %+v", s)
	}
	out, err := gojson.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(out), `"slope":33.4`) {
		t.Errorf("output missing slope attribute: %s", out)
	}
}
