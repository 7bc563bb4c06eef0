package stone

import (
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Triangles returns the closed surface of the stacked layers at their
// positioned elevations. Every layer contributes a ring of outline
// points at its bottom and one at its top. The lowest and highest
// rings are closed by fans around the z axis and consecutive rings are
// joined by quads between equal sector indices. Holes are not part of
// the surface. Triangles wind counter-clockwise seen from outside.
func (s *Stone) Triangles() []r3.Triangle {
	if len(s.layers) == 0 {
		return nil
	}
	rings := make([][]r3.Vec, 0, 2*len(s.layers))
	for i := range s.layers {
		p := s.Positioned(i)
		rings = append(rings, ring(p.Outer, p.Elevation), ring(p.Outer, p.Top()))
	}
	n := s.sectors
	model := make([]r3.Triangle, 0, n*(2+2*(len(rings)-1)))

	bottom := rings[0]
	c := r3.Vec{Z: bottom[0].Z}
	for i := range bottom {
		model = append(model, r3.Triangle{c, bottom[(i+1)%n], bottom[i]})
	}
	top := rings[len(rings)-1]
	c = r3.Vec{Z: top[0].Z}
	for i := range top {
		model = append(model, r3.Triangle{c, top[i], top[(i+1)%n]})
	}
	for k := 1; k < len(rings); k++ {
		a, b := rings[k-1], rings[k]
		for i := 0; i < n; i++ {
			j := (i + 1) % n
			model = append(model,
				r3.Triangle{a[i], a[j], b[j]},
				r3.Triangle{a[i], b[j], b[i]},
			)
		}
	}
	return model
}

func ring(outline []r2.Vec, z float64) []r3.Vec {
	out := make([]r3.Vec, len(outline))
	for i, v := range outline {
		out[i] = r3.Vec{X: v.X, Y: v.Y, Z: z}
	}
	return out
}
