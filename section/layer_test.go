package section_test

import (
	"math"
	"testing"

	"github.com/soypat/digistone"
	"github.com/soypat/digistone/section"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r2"
)

func circleBoundary(radius float64, n int) section.Boundary {
	b := make(section.Boundary, n)
	for i := range b {
		theta := 2 * math.Pi * float64(i) / float64(n)
		b[i] = r2.Vec{X: radius * math.Cos(theta), Y: radius * math.Sin(theta)}
	}
	return b
}

func TestNewCap(t *testing.T) {
	l := section.NewCap(circleBoundary(10, 360), 5, 2)
	if l.Kind() != section.Cap {
		t.Errorf("got kind %v", l.Kind())
	}
	if _, ok := l.Hole(); ok {
		t.Error("cap layer should have no hole")
	}
	if !math.IsNaN(l.Overlap) {
		t.Errorf("cap overlap should be NaN, got %g", l.Overlap)
	}
	if l.Top() != 7 {
		t.Errorf("top %g", l.Top())
	}
	if !scalar.EqualWithinRel(l.Area(), math.Pi*100, 1e-3) {
		t.Errorf("area %g", l.Area())
	}
}

func TestNewJoint(t *testing.T) {
	outer := circleBoundary(20, 360)
	inner := circleBoundary(18, 360)
	for _, method := range []digistone.OffsetMethod{digistone.OffsetCircumcircle, digistone.OffsetNormal} {
		l := section.NewJoint(outer, inner, 10, 30, 1, method)
		if l.Kind() != section.Joint {
			t.Fatalf("got kind %v", l.Kind())
		}
		hole, ok := l.Hole()
		if !ok {
			t.Fatal("joint layer should have a hole")
		}
		if len(hole) != len(inner) {
			t.Errorf("%v: hole has %d vertices, want %d", method, len(hole), len(inner))
		}
		for i, v := range hole {
			if !scalar.EqualWithinAbs(r2.Norm(v), 17, 1e-2) {
				t.Fatalf("%v: hole vertex %d at radius %g", method, i, r2.Norm(v))
			}
		}
		wantArea := math.Pi * (20*20 - 17*17)
		if !scalar.EqualWithinRel(l.Area(), wantArea, 1e-2) {
			t.Errorf("%v: area %g, want %g", method, l.Area(), wantArea)
		}
		bb := l.Bounds()
		if !scalar.EqualWithinAbs(bb.Size().X, 40, 1e-6) {
			t.Errorf("bounds %v", bb)
		}
	}
}

func TestPositioned(t *testing.T) {
	l := section.NewJoint(circleBoundary(10, 36), circleBoundary(10, 36), 3, 0, 1, digistone.OffsetCircumcircle)
	p := section.Positioned{Layer: &l, Elevation: 12, Shift: r2.Vec{X: 5, Y: -1}}
	if p.Top() != 15 {
		t.Errorf("top %g", p.Top())
	}
	out := p.Outline()
	for i := range out {
		if out[i] != r2.Add(l.Outer[i], p.Shift) {
			t.Fatalf("outline vertex %d not shifted", i)
		}
	}
	hole, ok := p.ShiftedHole()
	if !ok {
		t.Fatal("expected hole")
	}
	orig, _ := l.Hole()
	if hole[0] != r2.Add(orig[0], p.Shift) {
		t.Error("hole not shifted")
	}
	if l.Outer[0] != (r2.Vec{X: 10}) {
		t.Error("positioning modified the layer")
	}
}
