package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/soypat/digistone"
	"github.com/soypat/digistone/mesh"
	"github.com/soypat/digistone/nest"
	"github.com/soypat/digistone/render"
	"github.com/soypat/digistone/stone"
	"gonum.org/v1/plot/vg"
)

// Output file names inside the output directory.
const (
	meshFile    = "output.stl"
	drawingFile = "output.dxf"
	previewFile = "output.png"
	layoutPlot  = "layout.png"
)

const (
	previewSize = 800
	plotSize    = 8 * vg.Inch
)

type runner struct {
	cfg      digistone.Config
	logger   *slog.Logger
	out      io.Writer
	layerPNG bool
}

func (r *runner) run(files []string) error {
	stones, err := r.load(files)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(r.cfg.OutputDir, 0o755); err != nil {
		return err
	}
	switch r.cfg.Mode {
	case digistone.ModePreview:
		return r.preview(stones)
	case digistone.ModeMill, digistone.ModeAssess:
		return r.nest(stones)
	}
	return fmt.Errorf("unknown mode %v", r.cfg.Mode)
}

// load builds a stone per file. A file that cannot be loaded or sliced
// is logged and skipped; load fails only when no stone survives.
// Stones are stacked along z in the order given.
func (r *runner) load(files []string) ([]*stone.Stone, error) {
	var (
		stones []*stone.Stone
		errs   []error
		top    float64
	)
	for _, path := range files {
		s, err := r.loadStone(path, len(stones))
		if err != nil {
			r.logger.Error("skipping stone", "path", path, "err", err)
			errs = append(errs, err)
			continue
		}
		bottom := s.Layer(0).Elevation
		s = s.WithElevation(top - bottom)
		top += s.TotalHeight()
		stones = append(stones, s)
		r.logger.Info("stone ready", "name", s.Name, "layers", s.Len(), "height", s.TotalHeight())
	}
	if len(stones) == 0 {
		return nil, fmt.Errorf("no stone could be built: %w", errors.Join(errs...))
	}
	return stones, nil
}

func (r *runner) loadStone(path string, id int) (*stone.Stone, error) {
	m, err := mesh.Load(path, mesh.Options{Logger: r.logger})
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	s, err := stone.New(m, r.cfg, stone.Options{Name: name, ID: id, Logger: r.logger})
	if err != nil {
		return nil, fmt.Errorf("slice %q: %w", path, err)
	}
	return s, nil
}

func (r *runner) path(name string) string { return filepath.Join(r.cfg.OutputDir, name) }

func (r *runner) preview(stones []*stone.Stone) error {
	model := stones[0].Triangles()
	for _, s := range stones[1:] {
		model = append(model, s.Triangles()...)
	}
	if err := render.SaveSTL(r.path(meshFile), "digistone", model, r.cfg.ASCIISTL); err != nil {
		return err
	}
	d := render.NewDrawing(false)
	for _, s := range stones {
		if err := d.DrawStone(s); err != nil {
			return err
		}
	}
	if err := d.SaveAs(r.path(drawingFile)); err != nil {
		return err
	}
	if err := render.SavePreview(r.path(previewFile), model, previewSize, previewSize, render.DefaultView()); err != nil {
		return err
	}
	if r.layerPNG {
		for _, s := range stones {
			for i := 0; i < s.Len(); i++ {
				name := fmt.Sprintf("%s_L%03d.png", s.Name, i)
				if err := render.SaveLayerImage(r.path(name), s.Layer(i), r.cfg.PenWidth, r.cfg.PixelsPerUnit); err != nil {
					return err
				}
			}
		}
	}
	for _, s := range stones {
		fmt.Fprintf(r.out, "stone %q: %d layers, %d sectors, stacked height %.4g, elevation %.4g\n",
			s.Name, s.Len(), s.Sectors(), s.TotalHeight(), s.Elevation())
	}
	fmt.Fprintf(r.out, "wrote %d triangles to %s\n", len(model), r.path(meshFile))
	return nil
}

func (r *runner) nest(stones []*stone.Stone) error {
	settings := nest.SettingsFromConfig(r.cfg)
	settings.Logger = r.logger
	res, err := nest.New(settings).Nest(stones)
	if err != nil {
		return err
	}
	if r.cfg.Mode == digistone.ModeMill {
		d := render.NewDrawing(r.cfg.Flatten)
		if err := d.DrawLayout(res); err != nil {
			return err
		}
		if err := d.SaveAs(r.path(drawingFile)); err != nil {
			return err
		}
		if err := render.SaveLayoutPlot(r.path(layoutPlot), res, plotSize, plotSize); err != nil {
			return err
		}
	}
	printStats(r.out, stones, res)
	return nil
}

func printStats(w io.Writer, stones []*stone.Stone, res *nest.Result) {
	names := make(map[int]string, len(stones))
	for _, s := range stones {
		names[s.ID] = s.Name
	}
	for i, bin := range res.Bins {
		fmt.Fprintf(w, "bin %d: thickness %.4g, elevation %.4g\n", i, bin.Thickness, bin.Elevation)
		for _, it := range bin.Items {
			fmt.Fprintf(w, "\t%s layer %d shift (%.4g, %.4g)\n", names[it.Ref.Stone], it.Ref.Layer, it.Shift.X, it.Shift.Y)
		}
	}
	for _, it := range res.UnableToFit {
		fmt.Fprintf(w, "unable to fit: %s layer %d, elevation %.4g\n", names[it.Ref.Stone], it.Ref.Layer, it.Elevation)
	}
	for _, st := range res.Stock {
		fmt.Fprintf(w, "thickness %.4g: %d sheets of area %.4g\n", st.Thickness, st.Sheets, st.MaxArea)
	}
	fmt.Fprintf(w, "layers requested:      %d\n", res.Requested)
	fmt.Fprintf(w, "sheets:                %d\n", res.TotalSheets())
	fmt.Fprintf(w, "unable to fit:         %d\n", len(res.UnableToFit))
	fmt.Fprintf(w, "stock volume:          %.6g\n", res.StockVolume())
	fmt.Fprintf(w, "useful volume:         %.6g\n", res.UsefulVolume)
	fmt.Fprintf(w, "volume efficiency:     %.2f%%\n", 100*res.VolumeEfficiency())
	fmt.Fprintf(w, "compactization factor: %.3f\n", res.CompactizationFactor())
}
