// Package stonegen builds synthetic closed stone meshes centered on the z axis.
// They stand in for scanned stones when trying out or testing the pipeline.
package stonegen

import (
	"errors"
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Cylinder returns a closed faceted cylinder standing on z=0
// with its axis on the z axis.
func Cylinder(height, radius float64, sectors int) []r3.Triangle {
	return Frustum(height, radius, radius, sectors)
}

// Frustum returns a closed faceted cone frustum standing on z=0 with bottom
// radius r0 and top radius r1. Facet vertices are offset half a sector from
// the x axis so rays cast at whole sector angles hit facet interiors.
func Frustum(height, r0, r1 float64, sectors int) []r3.Triangle {
	if sectors < 3 {
		sectors = 3
	}
	dtheta := 2 * math.Pi / float64(sectors)
	ring := func(r, z float64, i int) r3.Vec {
		theta := (float64(i%sectors) + 0.5) * dtheta
		return r3.Vec{X: r * math.Cos(theta), Y: r * math.Sin(theta), Z: z}
	}
	bottomCenter := r3.Vec{}
	topCenter := r3.Vec{Z: height}
	model := make([]r3.Triangle, 0, 4*sectors)
	for i := 0; i < sectors; i++ {
		b0, b1 := ring(r0, 0, i), ring(r0, 0, i+1)
		t0, t1 := ring(r1, height, i), ring(r1, height, i+1)
		model = append(model,
			r3.Triangle{bottomCenter, b1, b0},
			r3.Triangle{topCenter, t0, t1},
			r3.Triangle{b0, b1, t1},
			r3.Triangle{b0, t1, t0},
		)
	}
	return model
}

// Pebble returns an irregular closed stone of approximately the given
// bounding size, centered on the origin, tessellated with marching
// cubes over the given number of cells along its longest side.
func Pebble(size r3.Vec, cells int) ([]r3.Triangle, error) {
	if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
		return nil, errors.New("pebble size must be positive")
	}
	if cells < 8 {
		return nil, errors.New("pebble needs at least 8 cells")
	}
	body, err := sdf.Sphere3D(0.5)
	if err != nil {
		return nil, err
	}
	body = sdf.Transform3D(body, sdf.Scale3d(v3.Vec{X: size.X, Y: size.Y, Z: size.Z}))

	bumpR := 0.3 * math.Min(size.X, size.Y)
	bump, err := sdf.Sphere3D(bumpR)
	if err != nil {
		return nil, err
	}
	bump = sdf.Transform3D(bump, sdf.Translate3d(v3.Vec{X: 0.3 * size.X, Y: 0.05 * size.Y, Z: 0.1 * size.Z}))

	stone := sdf.Union3D(body, bump)
	tris := render.ToTriangles(stone, render.NewMarchingCubesUniform(cells))
	if len(tris) == 0 {
		return nil, errors.New("pebble tessellation produced no triangles")
	}
	model := make([]r3.Triangle, 0, len(tris))
	for _, t := range tris {
		model = append(model, r3.Triangle{
			{X: t[0].X, Y: t[0].Y, Z: t[0].Z},
			{X: t[1].X, Y: t[1].Y, Z: t[1].Z},
			{X: t[2].X, Y: t[2].Y, Z: t[2].Z},
		})
	}
	return model, nil
}
