package render

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"

	"github.com/soypat/digistone/internal/d2"
	"github.com/soypat/digistone/poly"
	"github.com/soypat/digistone/section"
	"golang.org/x/image/vector"
	"gonum.org/v1/gonum/spatial/r2"
)

// pixelMap maps a 2d region to image pixel coordinates with y pointing down.
type pixelMap struct {
	bb     d2.Box
	scale  float64
	margin float64
}

func (m pixelMap) size() (w, h int) {
	sz := m.bb.Size()
	w = int(math.Ceil(sz.X*m.scale + 2*m.margin))
	h = int(math.Ceil(sz.Y*m.scale + 2*m.margin))
	return w, h
}

func (m pixelMap) toPixel(v r2.Vec) (x, y float32) {
	x = float32((v.X-m.bb.Min.X)*m.scale + m.margin)
	y = float32((m.bb.Max.Y-v.Y)*m.scale + m.margin)
	return x, y
}

// LayerImage draws the outline and hole of l in black on white with
// lines penWidth pixels wide. pixelsPerUnit scales model units to pixels.
func LayerImage(l *section.Layer, penWidth, pixelsPerUnit float64) (*image.Gray, error) {
	if !(penWidth > 0) || !(pixelsPerUnit > 0) {
		return nil, errors.New("pen width and pixel scale must be positive")
	}
	if len(l.Outer) < 2 {
		return nil, errors.New("layer outline has fewer than 2 vertices")
	}
	m := pixelMap{bb: poly.Bounds(l.Outer), scale: pixelsPerUnit, margin: penWidth}
	w, h := m.size()
	img := image.NewGray(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	r := vector.NewRasterizer(w, h)
	strokeClosed(r, m, l.Outer, penWidth)
	if hole, ok := l.Hole(); ok {
		strokeClosed(r, m, hole, penWidth)
	}
	r.Draw(img, img.Bounds(), image.NewUniform(color.Black), image.Point{})
	return img, nil
}

// SaveLayerImage writes LayerImage output to a PNG file.
func SaveLayerImage(path string, l *section.Layer, penWidth, pixelsPerUnit float64) error {
	img, err := LayerImage(l, penWidth, pixelsPerUnit)
	if err != nil {
		return err
	}
	fp, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fp.Close()
	if err := png.Encode(fp, img); err != nil {
		return err
	}
	return fp.Close()
}

// strokeClosed adds a width wide stroke along the closed polygon p as one
// quad per edge plus a square per vertex, all wound the same way so
// overlaps do not cancel.
func strokeClosed(r *vector.Rasterizer, m pixelMap, p []r2.Vec, width float64) {
	hw := width / 2
	n := len(p)
	for i := range p {
		ax, ay := m.toPixel(p[i])
		bx, by := m.toPixel(p[(i+1)%n])
		a := r2.Vec{X: float64(ax), Y: float64(ay)}
		b := r2.Vec{X: float64(bx), Y: float64(by)}
		square(r, a, hw)
		dir := r2.Sub(b, a)
		l := r2.Norm(dir)
		if l == 0 {
			continue
		}
		nrm := r2.Scale(hw/l, d2.Perp(dir))
		quad(r, r2.Sub(a, nrm), r2.Sub(b, nrm), r2.Add(b, nrm), r2.Add(a, nrm))
	}
}

func square(r *vector.Rasterizer, c r2.Vec, hw float64) {
	quad(r,
		r2.Vec{X: c.X - hw, Y: c.Y - hw},
		r2.Vec{X: c.X + hw, Y: c.Y - hw},
		r2.Vec{X: c.X + hw, Y: c.Y + hw},
		r2.Vec{X: c.X - hw, Y: c.Y + hw},
	)
}

func quad(r *vector.Rasterizer, a, b, c, d r2.Vec) {
	r.MoveTo(float32(a.X), float32(a.Y))
	r.LineTo(float32(b.X), float32(b.Y))
	r.LineTo(float32(c.X), float32(c.Y))
	r.LineTo(float32(d.X), float32(d.Y))
	r.ClosePath()
}
