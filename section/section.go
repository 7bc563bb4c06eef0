// Package section cuts radial boundaries out of a mesh and builds
// the ring shaped layers a stone is approximated with.
package section

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/digistone"
	"github.com/soypat/digistone/mesh"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Raycaster answers nearest hit queries against a mesh.
// *mesh.BIH implements it.
type Raycaster interface {
	NearestHit(ray mesh.Ray) (mesh.Hit, bool)
}

// Boundary is a closed polygon with one vertex per ray angle. Vertex i
// lies on the ray at angle i*step from the x axis for every elevation,
// so boundaries of one Sectioner can be compared index by index.
// A vertex is the zero vector where its ray hit nothing.
type Boundary []r2.Vec

// Misses returns the number of vertices at the origin.
func (b Boundary) Misses() int {
	n := 0
	for _, v := range b {
		if v == (r2.Vec{}) {
			n++
		}
	}
	return n
}

// Union returns the boundary that keeps, for every angle, the vertex
// of a or b farthest from the origin.
func Union(a, b Boundary) Boundary {
	mustMatch(a, b)
	out := make(Boundary, len(a))
	for i := range a {
		if r2.Norm2(b[i]) > r2.Norm2(a[i]) {
			out[i] = b[i]
		} else {
			out[i] = a[i]
		}
	}
	return out
}

// Intersection returns the boundary that keeps, for every angle, the
// vertex of a or b nearest to the origin.
func Intersection(a, b Boundary) Boundary {
	mustMatch(a, b)
	out := make(Boundary, len(a))
	for i := range a {
		if r2.Norm2(b[i]) < r2.Norm2(a[i]) {
			out[i] = b[i]
		} else {
			out[i] = a[i]
		}
	}
	return out
}

func mustMatch(a, b Boundary) {
	if len(a) != len(b) {
		panic(fmt.Sprintf("boundaries from different sectioners: %d and %d vertices", len(a), len(b)))
	}
}

// Sectioner casts a fan of horizontal rays from the z axis.
type Sectioner struct {
	rc   Raycaster
	step float64
	dirs []r3.Vec
}

// NewSectioner returns a Sectioner casting floor(360/angleStep) rays
// spaced angleStep degrees apart, the first along the x axis.
func NewSectioner(rc Raycaster, angleStep float64) (*Sectioner, error) {
	if rc == nil {
		return nil, errors.New("nil raycaster")
	}
	if !(angleStep > 0) || math.IsInf(angleStep, 0) {
		return nil, fmt.Errorf("angle step must be positive, got %g", angleStep)
	}
	sectors := int(math.Floor(360 / angleStep))
	if sectors < 3 {
		return nil, fmt.Errorf("angle step %g yields %d sectors, need at least 3", angleStep, sectors)
	}
	rot := r3.NewRotation(digistone.DtoR(angleStep), r3.Vec{Z: 1})
	dirs := make([]r3.Vec, sectors)
	dir := r3.Vec{X: 1}
	for i := range dirs {
		dirs[i] = dir
		dir = rot.Rotate(dir)
	}
	return &Sectioner{rc: rc, step: angleStep, dirs: dirs}, nil
}

// Sectors returns the number of vertices of every Boundary.
func (s *Sectioner) Sectors() int { return len(s.dirs) }

// AngleStep returns the angle in degrees between consecutive rays.
func (s *Sectioner) AngleStep() float64 { return s.step }

// Section returns the boundary of the mesh at elevation z.
func (s *Sectioner) Section(z float64) Boundary {
	b := make(Boundary, len(s.dirs))
	origin := r3.Vec{Z: z}
	for i, dir := range s.dirs {
		ray := mesh.Ray{Origin: origin, Dir: dir}
		hit, ok := s.rc.NearestHit(ray)
		if !ok {
			continue
		}
		p := ray.At(hit.T)
		b[i] = r2.Vec{X: p.X, Y: p.Y}
	}
	return b
}
