package cityjson

import (
	"fmt"
	"math"
)

// Vertex is one quantized coordinate triple from a vertex pool.
type Vertex [3]int64

// Transform maps quantized vertices to real-world coordinates:
// real = vertex*scale + translate, component-wise.
type Transform struct {
	Scale     [3]float64 `json:"scale"`
	Translate [3]float64 `json:"translate"`
}

// IdentityTransform returns the transform that leaves coordinates unchanged.
func IdentityTransform() Transform {
	return Transform{Scale: [3]float64{1, 1, 1}}
}

// Valid reports whether every scale component is strictly positive.
func (t Transform) Valid() error {
	for i, s := range t.Scale {
		if !(s > 0) {
			return fmt.Errorf("%w: transform scale[%d] is %v, must be strictly positive", ErrSchemaViolation, i, s)
		}
	}
	return nil
}

// Real returns the real-world coordinates of v.
func (t Transform) Real(v Vertex) [3]float64 {
	return [3]float64{
		float64(v[0])*t.Scale[0] + t.Translate[0],
		float64(v[1])*t.Scale[1] + t.Translate[1],
		float64(v[2])*t.Scale[2] + t.Translate[2],
	}
}

// Quantize maps a real-world coordinate onto the transform's grid, rounding
// to the nearest grid point.
func (t Transform) Quantize(p [3]float64) Vertex {
	return Vertex{
		int64(math.Round((p[0] - t.Translate[0]) / t.Scale[0])),
		int64(math.Round((p[1] - t.Translate[1]) / t.Scale[1])),
		int64(math.Round((p[2] - t.Translate[2]) / t.Scale[2])),
	}
}
