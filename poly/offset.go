package poly

import (
	"math"

	"github.com/soypat/digistone"
	"github.com/soypat/digistone/internal/d2"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r2"
)

// collinearTol is twice the float64 machine epsilon.
const collinearTol = 2 * 0x1p-52

// OffsetFunc moves cur, the middle of three consecutive polygon
// vertices, by width.
type OffsetFunc func(prev, cur, next r2.Vec, width float64) r2.Vec

// CircumcircleOffset moves cur by width along the line joining it
// with the center of the circle through prev, cur and next.
// The direction is chosen so a positive width brings cur closer to the
// origin and a negative width moves it away. This relies on the origin
// lying inside the polygon. Collinear triples fall back to the
// perpendicular of the edge cur to next.
func CircumcircleOffset(prev, cur, next r2.Vec, width float64) r2.Vec {
	var dir r2.Vec
	center, ok := circumcenter(prev, cur, next)
	if ok {
		dir = r2.Sub(cur, center)
	} else {
		dir = r2.Vec{X: next.Y - cur.Y, Y: cur.X - next.X}
	}
	norm := r2.Norm(dir)
	if norm == 0 || width == 0 {
		return cur
	}
	d := r2.Scale(math.Abs(width)/norm, dir)
	if r2.Dot(d, cur) > 0 {
		d = r2.Scale(-1, d)
	}
	// d now points toward the origin.
	if width < 0 {
		d = r2.Scale(-1, d)
	}
	return r2.Add(cur, d)
}

// circumcenter returns the center of the circle through a, b and c.
// ok is false when the points are collinear.
func circumcenter(a, b, c r2.Vec) (center r2.Vec, ok bool) {
	sq := func(v r2.Vec) float64 { return v.X*v.X + v.Y*v.Y }
	m11 := mat.NewDense(3, 3, []float64{
		a.X, a.Y, 1,
		b.X, b.Y, 1,
		c.X, c.Y, 1,
	})
	det2 := 2 * mat.Det(m11)
	if math.Abs(det2) < collinearTol {
		return r2.Vec{}, false
	}
	m12 := mat.NewDense(3, 3, []float64{
		sq(a), a.Y, 1,
		sq(b), b.Y, 1,
		sq(c), c.Y, 1,
	})
	m13 := mat.NewDense(3, 3, []float64{
		sq(a), a.X, 1,
		sq(b), b.X, 1,
		sq(c), c.X, 1,
	})
	return r2.Vec{
		X: mat.Det(m12) / det2,
		Y: -mat.Det(m13) / det2,
	}, true
}

// EdgeNormalOffset moves cur by width along the normal of the edge
// from cur to next. For a counter-clockwise polygon a positive width
// moves cur inward.
func EdgeNormalOffset(cur, next r2.Vec, width float64) r2.Vec {
	n := d2.Perp(r2.Sub(next, cur))
	norm := r2.Norm(n)
	if norm == 0 {
		return cur
	}
	return r2.Add(cur, r2.Scale(width/norm, n))
}

func edgeNormal(_, cur, next r2.Vec, width float64) r2.Vec {
	return EdgeNormalOffset(cur, next, width)
}

// Offsetter returns the OffsetFunc implementing method.
func Offsetter(method digistone.OffsetMethod) OffsetFunc {
	if method == digistone.OffsetNormal {
		return edgeNormal
	}
	return CircumcircleOffset
}

// Inset offsets every vertex of the closed polygon p by width using
// method. The result has the same number of vertices as p. It may
// self-intersect; see Repair.
func Inset(p []r2.Vec, width float64, method digistone.OffsetMethod) []r2.Vec {
	n := len(p)
	out := make([]r2.Vec, n)
	if n < 3 {
		copy(out, p)
		return out
	}
	offset := Offsetter(method)
	for i := range p {
		out[i] = offset(p[(i+n-1)%n], p[i], p[(i+1)%n], width)
	}
	return out
}
