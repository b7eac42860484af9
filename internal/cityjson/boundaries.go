package cityjson

import (
	"bytes"

	gojson "github.com/goccy/go-json"
)

// Boundaries is the recursive index structure of a geometry: either a flat
// array of vertex indices or an arbitrarily deep nesting of further arrays
// (rings, surfaces, shells, solids). Which pool the leaf indices point into
// depends on the owning geometry: regular geometries index the enclosing
// document or feature vertex pool, while template geometries and
// GeometryInstance anchors index the vertices-templates pool.
type Boundaries struct {
	Indices []int
	Nested  []Boundaries
}

// IsLeaf reports whether b is a flat index array.
func (b Boundaries) IsLeaf() bool { return b.Nested == nil }

// Walk visits every leaf index depth-first, left to right.
func (b Boundaries) Walk(fn func(index int) error) error {
	if b.IsLeaf() {
		for _, idx := range b.Indices {
			if err := fn(idx); err != nil {
				return err
			}
		}
		return nil
	}
	for _, child := range b.Nested {
		if err := child.Walk(fn); err != nil {
			return err
		}
	}
	return nil
}

// Remap returns a structurally identical tree with every leaf index replaced
// by fn(index). fn must be total over the indices present; validate with Walk
// first when the mapping may be partial.
func (b Boundaries) Remap(fn func(index int) int) Boundaries {
	if b.IsLeaf() {
		out := make([]int, len(b.Indices))
		for i, idx := range b.Indices {
			out[i] = fn(idx)
		}
		return Boundaries{Indices: out}
	}
	children := make([]Boundaries, len(b.Nested))
	for i, child := range b.Nested {
		children[i] = child.Remap(fn)
	}
	return Boundaries{Nested: children}
}

// Offset returns the tree with n added to every leaf index.
func (b Boundaries) Offset(n int) Boundaries {
	return b.Remap(func(idx int) int { return idx + n })
}

func (b Boundaries) MarshalJSON() ([]byte, error) {
	if b.IsLeaf() {
		if b.Indices == nil {
			return []byte("[]"), nil
		}
		return gojson.Marshal(b.Indices)
	}
	return gojson.Marshal(b.Nested)
}

func (b *Boundaries) UnmarshalJSON(data []byte) error {
	var elems []gojson.RawMessage
	if err := gojson.Unmarshal(data, &elems); err != nil {
		return err
	}
	if len(elems) == 0 {
		*b = Boundaries{Indices: []int{}}
		return nil
	}
	if startsWithArray(elems[0]) {
		nested := make([]Boundaries, len(elems))
		for i, raw := range elems {
			if err := nested[i].UnmarshalJSON(raw); err != nil {
				return err
			}
		}
		*b = Boundaries{Nested: nested}
		return nil
	}
	var indices []int
	if err := gojson.Unmarshal(data, &indices); err != nil {
		return err
	}
	*b = Boundaries{Indices: indices}
	return nil
}

func startsWithArray(raw []byte) bool {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '['
}

// NullableIndices mirrors Boundaries for index arrays that may contain JSON
// nulls at any level: semantics values and the per-theme material and texture
// values of a geometry.
type NullableIndices struct {
	Null   bool
	Values []*int
	Nested []NullableIndices
}

func (n NullableIndices) isLeaf() bool { return !n.Null && n.Nested == nil }

// WalkLeaves visits every non-null leaf value together with its position
// inside its leaf array.
func (n NullableIndices) WalkLeaves(fn func(pos, value int) error) error {
	if n.Null {
		return nil
	}
	if n.isLeaf() {
		for i, v := range n.Values {
			if v == nil {
				continue
			}
			if err := fn(i, *v); err != nil {
				return err
			}
		}
		return nil
	}
	for _, child := range n.Nested {
		if err := child.WalkLeaves(fn); err != nil {
			return err
		}
	}
	return nil
}

// RemapLeaves returns a structurally identical tree with every non-null leaf
// value replaced by fn(pos, value). Nulls are preserved in place.
func (n NullableIndices) RemapLeaves(fn func(pos, value int) int) NullableIndices {
	if n.Null {
		return NullableIndices{Null: true}
	}
	if n.isLeaf() {
		out := make([]*int, len(n.Values))
		for i, v := range n.Values {
			if v == nil {
				continue
			}
			mapped := fn(i, *v)
			out[i] = &mapped
		}
		return NullableIndices{Values: out}
	}
	children := make([]NullableIndices, len(n.Nested))
	for i, child := range n.Nested {
		children[i] = child.RemapLeaves(fn)
	}
	return NullableIndices{Nested: children}
}

func (n NullableIndices) MarshalJSON() ([]byte, error) {
	if n.Null {
		return []byte("null"), nil
	}
	if n.isLeaf() {
		if n.Values == nil {
			return []byte("[]"), nil
		}
		return gojson.Marshal(n.Values)
	}
	return gojson.Marshal(n.Nested)
}

func (n *NullableIndices) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*n = NullableIndices{Null: true}
		return nil
	}
	var elems []gojson.RawMessage
	if err := gojson.Unmarshal(data, &elems); err != nil {
		return err
	}
	if len(elems) == 0 {
		*n = NullableIndices{Values: []*int{}}
		return nil
	}
	nested := false
	for _, raw := range elems {
		if startsWithArray(raw) {
			nested = true
			break
		}
	}
	if nested {
		// Nulls at this level are null subtrees rather than null values.
		children := make([]NullableIndices, len(elems))
		for i, raw := range elems {
			if err := children[i].UnmarshalJSON(raw); err != nil {
				return err
			}
		}
		*n = NullableIndices{Nested: children}
		return nil
	}
	var values []*int
	if err := gojson.Unmarshal(data, &values); err != nil {
		return err
	}
	*n = NullableIndices{Values: values}
	return nil
}
