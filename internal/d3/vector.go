package d3

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// R3 vector manipulation routines not provided by gonum.

func Elem(sides float64) r3.Vec {
	return r3.Vec{
		X: sides,
		Y: sides,
		Z: sides,
	}
}

func EqualWithin(a, b r3.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol &&
		math.Abs(a.Y-b.Y) <= tol &&
		math.Abs(a.Z-b.Z) <= tol
}

// MinElem return a vector with the minimum components of two vectors.
func MinElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)}
}

// MaxElem return a vector with the maximum components of two vectors.
func MaxElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)}
}

// EmptyBox returns an inverted box suitable for accumulating
// points with MinElem and MaxElem.
func EmptyBox() r3.Box {
	return r3.Box{
		Min: Elem(math.MaxFloat64),
		Max: Elem(-math.MaxFloat64),
	}
}

// TriangleNormal returns the unit normal of a counter-clockwise triangle,
// or the zero vector for a degenerate one.
func TriangleNormal(t r3.Triangle) r3.Vec {
	n := r3.Cross(r3.Sub(t[1], t[0]), r3.Sub(t[2], t[0]))
	norm := r3.Norm(n)
	if norm == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/norm, n)
}
