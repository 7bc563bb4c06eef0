package nest

import (
	"math"

	"github.com/soypat/digistone"
	"github.com/soypat/digistone/poly"
	"gonum.org/v1/gonum/spatial/r2"
)

// fitTol is the distance within which a vertex on the hole
// boundary counts as inside it.
const fitTol = 1e-6

// Clearance returns hole shrunk by clearance so that pieces placed
// inside it keep that distance from its edge.
func Clearance(hole []r2.Vec, clearance float64) []r2.Vec {
	if clearance <= 0 {
		return hole
	}
	if poly.Area(hole) < 0 {
		clearance = -clearance
	}
	return poly.Repair(poly.Inset(hole, clearance, digistone.OffsetNormal))
}

// ShiftFit looks for a translation placing candidate inside hole with
// clearance to spare. The candidate vertex lying outside the shrunk hole
// farthest from its boundary is moved onto the nearest boundary point
// and the rest of the candidate follows. The fit is accepted if every
// moved vertex then lies inside. A candidate already inside fits with
// zero shift and one larger than the hole in either dimension never fits.
func ShiftFit(candidate, hole []r2.Vec, clearance float64) (shift r2.Vec, ok bool) {
	if len(candidate) == 0 || len(hole) < 3 {
		return r2.Vec{}, false
	}
	target := Clearance(hole, clearance)
	if len(target) < 3 {
		return r2.Vec{}, false
	}
	csz := poly.Bounds(candidate).Size()
	tsz := poly.Bounds(target).Size()
	if csz.X > tsz.X+fitTol || csz.Y > tsz.Y+fitTol {
		return r2.Vec{}, false
	}

	farthest := -1.
	for _, v := range candidate {
		if poly.Contains(target, v) {
			continue
		}
		nearest, d := poly.NearestOnBoundary(target, v)
		if d > fitTol && d > farthest {
			farthest = d
			shift = r2.Sub(nearest, v)
		}
	}
	if farthest < 0 {
		return r2.Vec{}, true
	}
	for _, v := range candidate {
		if !poly.ContainsWithin(target, r2.Add(v, shift), fitTol) {
			return r2.Vec{}, false
		}
	}
	return shift, true
}

func bboxArea(p []r2.Vec) float64 {
	a := poly.Bounds(p).Area()
	if math.IsNaN(a) {
		return 0
	}
	return a
}
