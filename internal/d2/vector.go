package d2

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// MinElem return a vector with the minimum components of two vectors.
func MinElem(a, b r2.Vec) r2.Vec {
	return r2.Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y)}
}

// MaxElem return a vector with the maximum components of two vectors.
func MaxElem(a, b r2.Vec) r2.Vec {
	return r2.Vec{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y)}
}

// Perp returns a rotated 90 degrees counter-clockwise.
func Perp(a r2.Vec) r2.Vec {
	return r2.Vec{X: -a.Y, Y: a.X}
}

// Set is an ordered list of 2d points.
type Set []r2.Vec

// Min return the minimum components of a set of vectors.
func (a Set) Min() r2.Vec {
	vmin := a[0]
	for _, v := range a[1:] {
		vmin = MinElem(vmin, v)
	}
	return vmin
}

// Max return the maximum components of a set of vectors.
func (a Set) Max() r2.Vec {
	vmax := a[0]
	for _, v := range a[1:] {
		vmax = MaxElem(vmax, v)
	}
	return vmax
}

// Bounds returns the bounding box of the set. Panics on empty set.
func (a Set) Bounds() Box {
	return Box{Min: a.Min(), Max: a.Max()}
}

// Translate returns a copy of the set with every point moved by v.
func (a Set) Translate(v r2.Vec) Set {
	out := make(Set, len(a))
	for i := range a {
		out[i] = r2.Add(a[i], v)
	}
	return out
}
