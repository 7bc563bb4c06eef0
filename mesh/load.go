package mesh

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/chewxy/math32"
	"github.com/hschendel/stl"
	"github.com/soypat/digistone/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Options configures mesh loading.
type Options struct {
	// VertexTol is the distance within which vertices are welded.
	// Zero infers it from the model.
	VertexTol float64
	// Logger receives loader warnings. Nil uses slog.Default.
	Logger *slog.Logger
}

// Load reads an ASCII or binary STL file and builds its spatial index.
// A mesh is either returned fully built or not at all.
func Load(path string, opts Options) (*BIH, error) {
	solid, err := stl.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mesh %q: %w", path, err)
	}
	model, skipped := fromSolid(solid)
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if skipped > 0 {
		logger.Warn("skipped invalid triangles", "path", path, "skipped", skipped, "kept", len(model))
	}
	b, err := NewBIH(model, opts.VertexTol, logger)
	if err != nil {
		return nil, fmt.Errorf("index mesh %q: %w", path, err)
	}
	return b, nil
}

// fromSolid converts STL triangles dropping those with
// non-finite coordinates or coincident vertices.
func fromSolid(solid *stl.Solid) (model []r3.Triangle, skipped int) {
	model = make([]r3.Triangle, 0, len(solid.Triangles))
	for _, t := range solid.Triangles {
		if err := validate(t.Vertices); err != nil {
			skipped++
			continue
		}
		model = append(model, r3.Triangle{
			r3From3F32(t.Vertices[0]),
			r3From3F32(t.Vertices[1]),
			r3From3F32(t.Vertices[2]),
		})
	}
	return model, skipped
}

// ToSolid converts triangles to an STL solid for writing with the stl package.
func ToSolid(name string, model []r3.Triangle) *stl.Solid {
	solid := &stl.Solid{Name: name, Triangles: make([]stl.Triangle, len(model))}
	for i, t := range model {
		n := d3.TriangleNormal(t)
		solid.Triangles[i] = stl.Triangle{
			Normal:   to3F32(n),
			Vertices: [3]stl.Vec3{to3F32(t[0]), to3F32(t[1]), to3F32(t[2])},
		}
	}
	return solid
}

func validate(v [3]stl.Vec3) error {
	const epsilon = 1e-12
	if bad3F32(v[0]) || bad3F32(v[1]) || bad3F32(v[2]) {
		return errors.New("inf/NaN STL triangle vertex")
	}
	if equalWithin3F32(v[0], v[1], epsilon) ||
		equalWithin3F32(v[1], v[2], epsilon) ||
		equalWithin3F32(v[2], v[0], epsilon) {
		return errors.New("triangle is degenerate")
	}
	return nil
}

func bad3F32(f stl.Vec3) bool {
	return math32.IsNaN(f[0]) || math32.IsInf(f[0], 0) ||
		math32.IsNaN(f[1]) || math32.IsInf(f[1], 0) ||
		math32.IsNaN(f[2]) || math32.IsInf(f[2], 0)
}

func equalWithin3F32(a, b stl.Vec3, tol float32) bool {
	return math32.Abs(a[0]-b[0]) <= tol &&
		math32.Abs(a[1]-b[1]) <= tol &&
		math32.Abs(a[2]-b[2]) <= tol
}

func r3From3F32(f stl.Vec3) r3.Vec {
	return r3.Vec{X: float64(f[0]), Y: float64(f[1]), Z: float64(f[2])}
}

func to3F32(v r3.Vec) stl.Vec3 {
	return stl.Vec3{float32(v.X), float32(v.Y), float32(v.Z)}
}
