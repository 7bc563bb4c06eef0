package d2

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// Box is a 2d bounding box.
type Box r2.Box

// Size returns the size of a 2d box.
func (a Box) Size() r2.Vec {
	return r2.Sub(a.Max, a.Min)
}

// Area returns the area enclosed by a 2d box.
func (a Box) Area() float64 {
	sz := a.Size()
	return sz.X * sz.Y
}
