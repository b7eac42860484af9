package cityjson

import (
	"testing"

	gojson "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
)

func TestBoundariesUnmarshalShapes(t *testing.T) {
	tests := []struct {
		name string
		json string
		want Boundaries
	}{
		{
			name: "multipoint",
			json: `[2,44,0,7]`,
			want: Boundaries{Indices: []int{2, 44, 0, 7}},
		},
		{
			name: "multisurface",
			json: `[[[0,3,2,1]],[[4,5,6,7]]]`,
			want: Boundaries{Nested: []Boundaries{
				{Nested: []Boundaries{{Indices: []int{0, 3, 2, 1}}}},
				{Nested: []Boundaries{{Indices: []int{4, 5, 6, 7}}}},
			}},
		},
		{
			name: "solid",
			json: `[[[[0,3,2,1]],[[1,2,6,5]]]]`,
			want: Boundaries{Nested: []Boundaries{
				{Nested: []Boundaries{
					{Nested: []Boundaries{{Indices: []int{0, 3, 2, 1}}}},
					{Nested: []Boundaries{{Indices: []int{1, 2, 6, 5}}}},
				}},
			}},
		},
		{
			name: "empty",
			json: `[]`,
			want: Boundaries{Indices: []int{}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Boundaries
			if err := gojson.Unmarshal([]byte(tt.json), &got); err != nil {
				t.Fatalf("Unmarshal(%s): %v", tt.json, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("boundaries mismatch (-want +got):\n%s", diff)
			}
			out, err := gojson.Marshal(got)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			if string(out) != tt.json {
				t.Errorf("Marshal = %s, want %s", out, tt.json)
			}
		})
	}
}

func TestBoundariesWalkOrder(t *testing.T) {
	var b Boundaries
	if err := gojson.Unmarshal([]byte(`[[[0,3,2,1],[8,9]],[[4,5,6,7]]]`), &b); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	var got []int
	if err := b.Walk(func(idx int) error {
		got = append(got, idx)
		return nil
	}); err != nil {
		t.Fatalf("Walk: %v", err)
	}
	want := []int{0, 3, 2, 1, 8, 9, 4, 5, 6, 7}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("walk order mismatch (-want +got):\n%s", diff)
	}
}

func TestBoundariesRemapLeavesOriginal(t *testing.T) {
	orig := Boundaries{Nested: []Boundaries{{Indices: []int{1, 2}}}}
	shifted := orig.Offset(10)
	if got := orig.Nested[0].Indices[0]; got != 1 {
		t.Errorf("original index changed to %d", got)
	}
	if got := shifted.Nested[0].Indices[0]; got != 11 {
		t.Errorf("shifted index = %d, want 11", got)
	}
}

func TestNullableIndicesRoundTrip(t *testing.T) {
	tests := []string{
		`[0,null,2]`,
		`[[0,1],null,[2,null]]`,
		`null`,
		`[]`,
	}
	for _, fixture := range tests {
		t.Run(fixture, func(t *testing.T) {
			var n NullableIndices
			if err := gojson.Unmarshal([]byte(fixture), &n); err != nil {
				t.Fatalf("Unmarshal(%s): %v", fixture, err)
			}
			out, err := gojson.Marshal(n)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			if string(out) != fixture {
				t.Errorf("Marshal = %s, want %s", out, fixture)
			}
		})
	}
}

func TestNullableIndicesWalkLeaves(t *testing.T) {
	var n NullableIndices
	if err := gojson.Unmarshal([]byte(`[[3,null,5],null,[7]]`), &n); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	type visit struct{ Pos, Value int }
	var got []visit
	if err := n.WalkLeaves(func(pos, value int) error {
		got = append(got, visit{pos, value})
		return nil
	}); err != nil {
		t.Fatalf("WalkLeaves: %v", err)
	}
	want := []visit{{0, 3}, {2, 5}, {0, 7}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("visits mismatch (-want +got):\n%s", diff)
	}
}

func TestNullableIndicesRemapPreservesNulls(t *testing.T) {
	var n NullableIndices
	if err := gojson.Unmarshal([]byte(`[2,null,7]`), &n); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	mapped := n.RemapLeaves(func(_, v int) int { return v + 1 })
	out, err := gojson.Marshal(mapped)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(out) != `[3,null,8]` {
		t.Errorf("Marshal = %s, want [3,null,8]", out)
	}
}
