package render

import (
	"fmt"
	"image/color"

	"github.com/soypat/digistone/nest"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var (
	outlineColor = color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff}
	holeColor    = color.RGBA{R: 0xcc, G: 0x22, B: 0x22, A: 0xff}
	noFitColor   = color.RGBA{R: 0xdd, G: 0xaa, B: 0x00, A: 0xff}
)

// LayoutPlot plots the sheets of a nesting result seen from above, laid
// out along x as DrawLayout does.
func LayoutPlot(res *nest.Result) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%d sheets, %d layers, efficiency %.1f%%",
		res.TotalSheets(), res.Requested, 100*res.VolumeEfficiency())
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"

	var xOffset float64
	for _, bin := range res.Bins {
		for _, item := range bin.Items {
			if err := addRing(p, item.Outline(), xOffset, outlineColor); err != nil {
				return nil, err
			}
			if hole, ok := item.ShiftedHole(); ok {
				if err := addRing(p, hole, xOffset, holeColor); err != nil {
					return nil, err
				}
			}
		}
		xOffset += bin.Items[0].Bounds().Size().X * binPitch
	}
	for _, item := range res.UnableToFit {
		if err := addRing(p, item.Outline(), xOffset, noFitColor); err != nil {
			return nil, err
		}
		if hole, ok := item.ShiftedHole(); ok {
			if err := addRing(p, hole, xOffset, noFitColor); err != nil {
				return nil, err
			}
		}
		xOffset += item.Bounds().Size().X * noFitPitch
	}
	return p, nil
}

// SaveLayoutPlot writes LayoutPlot output to path. The file
// format follows the extension, e.g. png or svg.
func SaveLayoutPlot(path string, res *nest.Result, width, height vg.Length) error {
	p, err := LayoutPlot(res)
	if err != nil {
		return err
	}
	if err := p.Save(width, height, path); err != nil {
		return fmt.Errorf("write plot %q: %w", path, err)
	}
	return nil
}

// addRing plots the closed polygon ring moved dx along x.
func addRing(p *plot.Plot, ring []r2.Vec, dx float64, c color.Color) error {
	if len(ring) == 0 {
		return nil
	}
	xys := make(plotter.XYs, len(ring)+1)
	for i, v := range ring {
		xys[i].X = v.X + dx
		xys[i].Y = v.Y
	}
	xys[len(ring)] = xys[0]
	l, err := plotter.NewLine(xys)
	if err != nil {
		return err
	}
	l.LineStyle.Color = c
	l.LineStyle.Width = vg.Points(0.5)
	p.Add(l)
	return nil
}
