package section

import (
	"math"

	"github.com/soypat/digistone"
	"github.com/soypat/digistone/internal/d2"
	"github.com/soypat/digistone/poly"
	"gonum.org/v1/gonum/spatial/r2"
)

// Kind tells cap layers, which have no hole, from joint layers.
type Kind int

const (
	// Cap is the bottom or top layer of a stone. It has no hole.
	Cap Kind = iota
	// Joint is an interior layer with a hole inset from its outline.
	Joint
)

func (k Kind) String() string {
	if k == Joint {
		return "joint"
	}
	return "cap"
}

// Ref locates a layer within the stones of a run.
type Ref struct {
	Stone int // index of the stone
	Layer int // index of the layer within the stone
}

// Layer is one slab of stock between two elevations.
// It is not modified after construction.
type Layer struct {
	Outer     Boundary
	Thickness float64
	// Elevation is the z of the layer bottom in mesh coordinates.
	Elevation float64
	// Overlap is the joint width the hole was inset by. NaN for caps.
	Overlap float64
	Ref     Ref

	kind Kind
	hole []r2.Vec
}

// NewCap returns a layer without a hole.
func NewCap(outline Boundary, thickness, elevation float64) Layer {
	return Layer{
		Outer:     outline,
		Thickness: thickness,
		Elevation: elevation,
		Overlap:   math.NaN(),
		kind:      Cap,
	}
}

// NewJoint returns a layer with outline outer and a hole made by insetting
// inner by overlap. The hole is repaired of self-intersections. outer and
// inner are used as given: callers pass the union and intersection of the
// bracketing sections.
func NewJoint(outer, inner Boundary, thickness, elevation, overlap float64, method digistone.OffsetMethod) Layer {
	hole := poly.Repair(poly.Inset(inner, overlap, method))
	return Layer{
		Outer:     outer,
		Thickness: thickness,
		Elevation: elevation,
		Overlap:   overlap,
		kind:      Joint,
		hole:      hole,
	}
}

// Kind returns whether l is a cap or a joint.
func (l *Layer) Kind() Kind { return l.kind }

// Hole returns the hole polygon. ok is false for caps.
func (l *Layer) Hole() (hole []r2.Vec, ok bool) {
	return l.hole, l.kind == Joint
}

// Top returns the z of the layer top.
func (l *Layer) Top() float64 { return l.Elevation + l.Thickness }

// Bounds returns the bounding box of the outline.
func (l *Layer) Bounds() d2.Box { return poly.Bounds(l.Outer) }

// Area returns the area of material in the layer, the outline
// area minus the hole area.
func (l *Layer) Area() float64 {
	a := math.Abs(poly.Area(l.Outer))
	if hole, ok := l.Hole(); ok {
		a -= math.Abs(poly.Area(hole))
	}
	return a
}

// Positioned is a placement of a layer: an elevation and a
// planar shift. It does not modify the layer.
type Positioned struct {
	*Layer
	Elevation float64
	Shift     r2.Vec
}

// Outline returns the outline moved by the shift.
func (p Positioned) Outline() []r2.Vec {
	return d2.Set(p.Outer).Translate(p.Shift)
}

// ShiftedHole returns the hole moved by the shift. ok is false for caps.
func (p Positioned) ShiftedHole() (hole []r2.Vec, ok bool) {
	h, ok := p.Layer.Hole()
	if !ok {
		return nil, false
	}
	return d2.Set(h).Translate(p.Shift), true
}

// Top returns the z of the placed layer top.
func (p Positioned) Top() float64 { return p.Elevation + p.Thickness }
