// Package poly implements the planar polygon operations used to turn
// section boundaries into layer outlines: vertex offsetting,
// self-intersection repair and point containment.
//
// Polygons are closed implicitly: the last vertex joins the first.
package poly

import (
	"math"

	"github.com/soypat/digistone/internal/d2"
	"gonum.org/v1/gonum/spatial/r2"
)

// Area returns the signed area of p. It is positive when p
// winds counter-clockwise.
func Area(p []r2.Vec) float64 {
	n := len(p)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := range p {
		sum += r2.Cross(p[i], p[(i+1)%n])
	}
	return sum / 2
}

// Bounds returns the axis aligned bounding box of p.
func Bounds(p []r2.Vec) d2.Box {
	if len(p) == 0 {
		return d2.Box{}
	}
	return d2.Set(p).Bounds()
}

// Contains reports whether pt lies inside p by the non-zero winding rule.
func Contains(p []r2.Vec, pt r2.Vec) bool {
	return winding(p, pt) != 0
}

// ContainsWithin reports whether pt lies inside p or within tol of its boundary.
func ContainsWithin(p []r2.Vec, pt r2.Vec, tol float64) bool {
	if Contains(p, pt) {
		return true
	}
	_, d := NearestOnBoundary(p, pt)
	return d <= tol
}

func winding(p []r2.Vec, pt r2.Vec) int {
	n := len(p)
	wn := 0
	for i := range p {
		a, b := p[i], p[(i+1)%n]
		isLeft := r2.Cross(r2.Sub(b, a), r2.Sub(pt, a))
		if a.Y <= pt.Y {
			if b.Y > pt.Y && isLeft > 0 {
				wn++
			}
		} else if b.Y <= pt.Y && isLeft < 0 {
			wn--
		}
	}
	return wn
}

// NearestOnBoundary returns the point on the boundary of p
// closest to pt and its distance to pt.
func NearestOnBoundary(p []r2.Vec, pt r2.Vec) (nearest r2.Vec, dist float64) {
	n := len(p)
	best := math.Inf(1)
	for i := range p {
		q := nearestOnSegment(p[i], p[(i+1)%n], pt)
		if dd := r2.Norm2(r2.Sub(q, pt)); dd < best {
			best = dd
			nearest = q
		}
	}
	return nearest, math.Sqrt(best)
}

func nearestOnSegment(a, b, pt r2.Vec) r2.Vec {
	ab := r2.Sub(b, a)
	l2 := r2.Norm2(ab)
	if l2 == 0 {
		return a
	}
	t := r2.Dot(r2.Sub(pt, a), ab) / l2
	t = math.Max(0, math.Min(1, t))
	return r2.Add(a, r2.Scale(t, ab))
}

// IsSimple reports whether no two non-adjacent edges of p cross.
func IsSimple(p []r2.Vec) bool {
	n := len(p)
	for i := 0; i < n; i++ {
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue
			}
			if _, ok := SegmentIntersection(p[i], p[i+1], p[j], p[(j+1)%n]); ok {
				return false
			}
		}
	}
	return true
}
