// Package stone approximates a scanned stone by a stack of ring
// shaped layers cut from sheets of equal thickness.
package stone

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/soypat/digistone"
	"github.com/soypat/digistone/section"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrTooThin is returned when a mesh spans less than two sheet thicknesses,
// which usually means the mesh and the thickness use different units.
var ErrTooThin = errors.New("input too thin relative to sheet thickness")

// Mesh is a ray queryable closed mesh whose vertical axis
// passes through the inside of every horizontal section.
type Mesh interface {
	section.Raycaster
	Bounds() r3.Box
}

// Options names a stone within a run.
type Options struct {
	Name string
	// ID is stored in the Ref of every layer.
	ID     int
	Logger *slog.Logger
}

// Stone is a mesh approximated by stacked layers. It is not
// modified after construction and is safe to share.
type Stone struct {
	Name string
	ID   int

	layers    []section.Layer
	sectors   int
	elevation float64
}

// New slices m into ceil(height/cfg.SheetThickness) layers centered on
// the mesh's vertical extent. Raw sections are cast at the interfaces
// between layers. Interior layers are outlined by the union of the two
// sections bracketing them and holed by their intersection inset by
// cfg.Overlap. The bottom and top layers are caps outlined by the single
// section they touch.
func New(m Mesh, cfg digistone.Config, opts Options) (*Stone, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	bb := m.Bounds()
	step := cfg.SheetThickness
	extent := bb.Max.Z - bb.Min.Z
	if extent/step < 2 {
		return nil, fmt.Errorf("%w: height %g, sheet thickness %g", ErrTooThin, extent, step)
	}
	sectioner, err := section.NewSectioner(m, cfg.AngleStep)
	if err != nil {
		return nil, err
	}
	n := int(math.Ceil(extent/step - 1e-9))
	start := bb.Min.Z + (extent-float64(n)*step)/2

	// raw[i] is the section at the bottom of layer i, valid for i in [1, n).
	raw := make([]section.Boundary, n)
	misses := 0
	for i := 1; i < n; i++ {
		raw[i] = sectioner.Section(start + float64(i)*step)
		misses += raw[i].Misses()
	}
	if misses > 0 {
		logger.Warn("rays missed the mesh", "stone", opts.Name, "misses", misses, "rays", (n-1)*sectioner.Sectors())
	}

	layers := make([]section.Layer, n)
	for i := range layers {
		z := start + float64(i)*step
		switch i {
		case 0:
			layers[i] = section.NewCap(raw[1], step, z)
		case n - 1:
			layers[i] = section.NewCap(raw[n-1], step, z)
		default:
			outer := section.Union(raw[i], raw[i+1])
			inner := section.Intersection(raw[i], raw[i+1])
			layers[i] = section.NewJoint(outer, inner, step, z, cfg.Overlap, cfg.Offset)
		}
		layers[i].Ref = section.Ref{Stone: opts.ID, Layer: i}
	}
	logger.Debug("stone sectioned", "stone", opts.Name, "layers", n, "sectors", sectioner.Sectors(), "start", start)
	return &Stone{
		Name:    opts.Name,
		ID:      opts.ID,
		layers:  layers,
		sectors: sectioner.Sectors(),
	}, nil
}

// Len returns the number of layers.
func (s *Stone) Len() int { return len(s.layers) }

// Layer returns layer i counting from the bottom.
func (s *Stone) Layer(i int) *section.Layer { return &s.layers[i] }

// Layers returns the layers from bottom to top. The slice must not be modified.
func (s *Stone) Layers() []section.Layer { return s.layers }

// Sectors returns the number of vertices of every layer outline.
func (s *Stone) Sectors() int { return s.sectors }

// TotalHeight returns the sum of the layer thicknesses.
func (s *Stone) TotalHeight() float64 {
	var h float64
	for i := range s.layers {
		h += s.layers[i].Thickness
	}
	return h
}

// Elevation returns the vertical offset applied to positioned layers.
func (s *Stone) Elevation() float64 { return s.elevation }

// WithElevation returns a stone sharing the layers of s whose
// positioned layers are raised by z.
func (s *Stone) WithElevation(z float64) *Stone {
	c := *s
	c.elevation = z
	return &c
}

// Positioned returns layer i raised by the stone elevation.
func (s *Stone) Positioned(i int) section.Positioned {
	l := &s.layers[i]
	return section.Positioned{Layer: l, Elevation: l.Elevation + s.elevation}
}

// FromLayers returns a stone made of already built layers ordered
// bottom to top. Every outline must have the same number of vertices.
// The layer refs are rewritten to point into the new stone.
func FromLayers(opts Options, layers ...section.Layer) (*Stone, error) {
	if len(layers) == 0 {
		return nil, errors.New("stone needs at least one layer")
	}
	sectors := len(layers[0].Outer)
	owned := make([]section.Layer, len(layers))
	for i, l := range layers {
		if len(l.Outer) != sectors {
			return nil, fmt.Errorf("layer %d has %d outline vertices, want %d", i, len(l.Outer), sectors)
		}
		l.Ref = section.Ref{Stone: opts.ID, Layer: i}
		owned[i] = l
	}
	return &Stone{
		Name:    opts.Name,
		ID:      opts.ID,
		layers:  owned,
		sectors: sectors,
	}, nil
}
