package section_test

import (
	"math"
	"testing"

	"github.com/soypat/digistone"
	"github.com/soypat/digistone/mesh"
	"github.com/soypat/digistone/section"
	"github.com/soypat/digistone/stonegen"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r2"
)

type missAll struct{}

func (missAll) NearestHit(mesh.Ray) (mesh.Hit, bool) { return mesh.Hit{}, false }

func TestSectionAngles(t *testing.T) {
	// A frustum grows narrower with height so each elevation
	// yields a different radius but identical angles.
	b, err := mesh.NewBIH(stonegen.Frustum(50, 30, 10, 720), 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, step := range []float64{1, 2, 5, 45} {
		s, err := section.NewSectioner(b, step)
		if err != nil {
			t.Fatal(err)
		}
		wantSectors := int(360 / step)
		if s.Sectors() != wantSectors {
			t.Fatalf("step %g: got %d sectors", step, s.Sectors())
		}
		for _, z := range []float64{1, 25, 49} {
			bd := s.Section(z)
			if len(bd) != wantSectors {
				t.Fatalf("step %g z %g: got %d points", step, z, len(bd))
			}
			if bd.Misses() != 0 {
				t.Fatalf("step %g z %g: %d rays missed", step, z, bd.Misses())
			}
			for i, p := range bd {
				want := math.Mod(float64(i)*step, 360)
				got := math.Mod(digistone.RtoD(math.Atan2(p.Y, p.X))+360, 360)
				if math.Abs(got-want) > 1e-6 && math.Abs(got-want-360) > 1e-6 && math.Abs(got-want+360) > 1e-6 {
					t.Fatalf("step %g z %g: point %d at %g degrees, want %g", step, z, i, got, want)
				}
			}
		}
	}
}

func TestSectionCylinderRadius(t *testing.T) {
	const radius = 20
	b, err := mesh.NewBIH(stonegen.Cylinder(100, radius, 360), 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	s, err := section.NewSectioner(b, 1)
	if err != nil {
		t.Fatal(err)
	}
	for i, p := range s.Section(50) {
		if !scalar.EqualWithinAbs(r2.Norm(p), radius, 1e-2) {
			t.Fatalf("point %d at radius %g", i, r2.Norm(p))
		}
	}
}

func TestSectionMisses(t *testing.T) {
	s, err := section.NewSectioner(missAll{}, 10)
	if err != nil {
		t.Fatal(err)
	}
	bd := s.Section(3)
	if len(bd) != 36 || bd.Misses() != 36 {
		t.Errorf("expected 36 zero points, got %d of %d", bd.Misses(), len(bd))
	}
}

func TestNewSectionerErrors(t *testing.T) {
	for _, step := range []float64{0, -1, 180, math.Inf(1), math.NaN()} {
		if _, err := section.NewSectioner(missAll{}, step); err == nil {
			t.Errorf("step %g: expected error", step)
		}
	}
	if _, err := section.NewSectioner(nil, 1); err == nil {
		t.Error("expected error for nil raycaster")
	}
}

func TestUnionIntersection(t *testing.T) {
	a := section.Boundary{{X: 1, Y: 0}, {X: 0, Y: 3}, {X: -2, Y: 0}, {X: 0, Y: -1}}
	b := section.Boundary{{X: 2, Y: 0}, {X: 0, Y: 1}, {X: -2, Y: 0}, {X: 0, Y: -4}}
	union := section.Union(a, b)
	inter := section.Intersection(a, b)
	wantUnion := section.Boundary{{X: 2, Y: 0}, {X: 0, Y: 3}, {X: -2, Y: 0}, {X: 0, Y: -4}}
	wantInter := section.Boundary{{X: 1, Y: 0}, {X: 0, Y: 1}, {X: -2, Y: 0}, {X: 0, Y: -1}}
	for i := range a {
		if union[i] != wantUnion[i] {
			t.Errorf("union[%d] = %v, want %v", i, union[i], wantUnion[i])
		}
		if inter[i] != wantInter[i] {
			t.Errorf("intersection[%d] = %v, want %v", i, inter[i], wantInter[i])
		}
	}
	for _, got := range []section.Boundary{section.Union(a, a), section.Intersection(a, a)} {
		for i := range a {
			if got[i] != a[i] {
				t.Fatalf("self combination changed vertex %d", i)
			}
		}
	}
}

func TestUnionMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on length mismatch")
		}
	}()
	section.Union(make(section.Boundary, 3), make(section.Boundary, 4))
}
