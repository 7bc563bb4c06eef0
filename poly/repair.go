package poly

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Repair removes self-crossings from the closed polygon p.
//
// Edges are swept once in order. Each edge is tested against the edges
// not adjacent to it and the first crossing found is resolved by
// dropping the arc with fewer edges and joining the two crossing edges
// at the crossing point. Only one crossing per edge is looked for and
// no second sweep is made, so inputs with many overlapping crossings may
// still self-intersect after Repair. Offsets of the near circular
// boundaries produced by sectioning do not run into this.
//
// A simple polygon is returned unchanged. p is not modified.
func Repair(p []r2.Vec) []r2.Vec {
	out := make([]r2.Vec, len(p))
	copy(out, p)
	for i := 0; i < len(out) && len(out) > 3; i++ {
		n := len(out)
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue // adjacent through the seam
			}
			x, ok := SegmentIntersection(out[i], out[i+1], out[j], out[(j+1)%n])
			if !ok {
				continue
			}
			inner := j - i // edges from i to j
			if inner <= n-inner {
				// drop vertices i+1..j
				spliced := make([]r2.Vec, 0, n-inner+1)
				spliced = append(spliced, out[:i+1]...)
				spliced = append(spliced, x)
				spliced = append(spliced, out[j+1:]...)
				out = spliced
			} else {
				// keep only the loop between the crossing edges
				spliced := make([]r2.Vec, 0, inner+1)
				spliced = append(spliced, x)
				spliced = append(spliced, out[i+1:j+1]...)
				out = spliced
				i = 0
			}
			break
		}
	}
	return out
}

// SegmentIntersection returns the point where segments a0-a1 and b0-b1
// cross. Parallel segments never intersect.
func SegmentIntersection(a0, a1, b0, b1 r2.Vec) (r2.Vec, bool) {
	r := r2.Sub(a1, a0)
	s := r2.Sub(b1, b0)
	denom := r2.Cross(r, s)
	if math.Abs(denom) < 1e-300 {
		return r2.Vec{}, false
	}
	qp := r2.Sub(b0, a0)
	t := r2.Cross(qp, s) / denom
	u := r2.Cross(qp, r) / denom
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return r2.Vec{}, false
	}
	return r2.Add(a0, r2.Scale(t, r)), true
}
