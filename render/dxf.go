package render

import (
	"fmt"

	"github.com/soypat/digistone/nest"
	"github.com/soypat/digistone/section"
	"github.com/soypat/digistone/stone"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"
	"gonum.org/v1/gonum/spatial/r2"
)

// Pitch factors between consecutive layouts along x, relative to the
// width of the layout's largest layer.
const (
	binPitch   = 1.2
	noFitPitch = 1.1
)

// Drawing is a DXF document of layer outlines. Every drawn layer gets
// a DXF layer for its outline and one for its hole.
type Drawing struct {
	doc     *drawing.Drawing
	flatten bool
	groups  map[string]bool
}

// NewDrawing returns an empty drawing. A flat drawing puts every
// outline on the z=0 plane.
func NewDrawing(flatten bool) *Drawing {
	return &Drawing{
		doc:     dxf.NewDrawing(),
		flatten: flatten,
		groups:  make(map[string]bool),
	}
}

// DrawStone draws the layers of s stacked at their positioned elevations.
func (d *Drawing) DrawStone(s *stone.Stone) error {
	for i := 0; i < s.Len(); i++ {
		p := s.Positioned(i)
		name := fmt.Sprintf("S%02d_L%03d", p.Ref.Stone, p.Ref.Layer)
		if err := d.DrawLayer(name, p, r2.Vec{}, 0, color.White); err != nil {
			return err
		}
	}
	return nil
}

// DrawLayout draws a nesting result. Bins are laid side by side along x,
// each at its own elevation. Layers that did not fit follow, stacked
// one thickness above the other.
func (d *Drawing) DrawLayout(res *nest.Result) error {
	var xOffset float64
	for b, bin := range res.Bins {
		for _, p := range bin.Items {
			name := fmt.Sprintf("B%03d_S%02d_L%03d", b, p.Ref.Stone, p.Ref.Layer)
			if err := d.DrawLayer(name, p, r2.Vec{X: xOffset}, 0, color.White); err != nil {
				return err
			}
		}
		xOffset += bin.Items[0].Bounds().Size().X * binPitch
	}
	var extraElev float64
	for i, p := range res.UnableToFit {
		p.Elevation = 0
		name := fmt.Sprintf("NOFIT%03d_S%02d_L%03d", i, p.Ref.Stone, p.Ref.Layer)
		if err := d.DrawLayer(name, p, r2.Vec{X: xOffset}, extraElev, color.Yellow); err != nil {
			return err
		}
		xOffset += p.Bounds().Size().X * noFitPitch
		extraElev += p.Thickness
	}
	return nil
}

// DrawLayer draws the outline and hole of p moved by offset and raised by
// extraElev, on DXF layers name_OUTER and name_INNER. The hole is drawn in red.
func (d *Drawing) DrawLayer(name string, p section.Positioned, offset r2.Vec, extraElev float64, outline color.ColorNumber) error {
	z := p.Elevation + extraElev
	if d.flatten {
		z = 0
	}
	p.Shift = r2.Add(p.Shift, offset)
	if err := d.group(name+"_OUTER", outline); err != nil {
		return err
	}
	if err := d.polygon(p.Outline(), z); err != nil {
		return err
	}
	hole, ok := p.ShiftedHole()
	if !ok {
		return nil
	}
	if err := d.group(name+"_INNER", color.Red); err != nil {
		return err
	}
	return d.polygon(hole, z)
}

// SaveAs writes the drawing to a DXF file.
func (d *Drawing) SaveAs(path string) error {
	if err := d.doc.SaveAs(path); err != nil {
		return fmt.Errorf("write DXF %q: %w", path, err)
	}
	return nil
}

func (d *Drawing) group(name string, cl color.ColorNumber) error {
	if d.groups[name] {
		return d.doc.ChangeLayer(name)
	}
	if _, err := d.doc.AddLayer(name, cl, dxf.DefaultLineType, true); err != nil {
		return err
	}
	d.groups[name] = true
	return nil
}

func (d *Drawing) polygon(p []r2.Vec, z float64) error {
	if len(p) < 2 {
		return nil
	}
	if d.flatten {
		verts := make([][]float64, len(p))
		for i, v := range p {
			verts[i] = []float64{v.X, v.Y}
		}
		_, err := d.doc.LwPolyline(true, verts...)
		return err
	}
	for i, a := range p {
		b := p[(i+1)%len(p)]
		if _, err := d.doc.Line(a.X, a.Y, z, b.X, b.Y, z); err != nil {
			return err
		}
	}
	return nil
}
