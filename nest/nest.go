// Package nest packs the layers of one or more stones onto stock sheets
// by placing smaller layers inside the holes of larger ones.
package nest

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/soypat/digistone"
	"github.com/soypat/digistone/section"
	"github.com/soypat/digistone/stone"
	"gonum.org/v1/gonum/spatial/r2"
)

// Settings configures an Optimizer.
type Settings struct {
	// ToolDiameter is the clearance kept around every nested layer.
	ToolDiameter float64
	// Production is the number of copies of every stone to manufacture.
	Production int
	Logger     *slog.Logger
}

// SettingsFromConfig returns the nesting settings of cfg.
func SettingsFromConfig(cfg digistone.Config) Settings {
	return Settings{ToolDiameter: cfg.ToolDiameter, Production: cfg.Production}
}

// Optimizer runs the greedy hole nesting pass.
type Optimizer struct {
	Settings Settings
}

// New returns an Optimizer with the given settings.
func New(settings Settings) *Optimizer {
	return &Optimizer{Settings: settings}
}

// Bin is one sheet holding a chain of nested layers. Items[0] is the
// base; every following item sits in the hole of the one before it.
type Bin struct {
	Thickness float64
	Elevation float64
	Items     []section.Positioned
}

// Stock summarises the sheets of one thickness.
type Stock struct {
	Thickness float64
	// Sheets counts bins and layers that could not be nested.
	Sheets int
	// MaxArea is the largest bounding box area of the layers, the
	// footprint assumed for every sheet.
	MaxArea float64
}

// Result is the outcome of a nesting pass.
type Result struct {
	Bins []Bin
	// UnableToFit holds layers that neither fit into another layer's
	// hole nor received one. Each takes a sheet of its own.
	UnableToFit []section.Positioned
	Stock       []Stock
	// Requested is the number of layers to manufacture.
	Requested int
	// UsefulVolume is the material of the layers nested into holes.
	UsefulVolume float64
}

// TotalSheets returns the number of sheets over every thickness.
func (r *Result) TotalSheets() int {
	n := 0
	for _, s := range r.Stock {
		n += s.Sheets
	}
	return n
}

// StockVolume returns the volume of the sheets consumed.
func (r *Result) StockVolume() float64 {
	var v float64
	for _, s := range r.Stock {
		v += s.MaxArea * s.Thickness * float64(s.Sheets)
	}
	return v
}

// VolumeEfficiency returns UsefulVolume over StockVolume.
func (r *Result) VolumeEfficiency() float64 {
	stock := r.StockVolume()
	if stock == 0 {
		return 0
	}
	return r.UsefulVolume / stock
}

// CompactizationFactor returns the number of requested layers per sheet.
// It is 1 when nothing nests and grows as more layers share sheets.
func (r *Result) CompactizationFactor() float64 {
	sheets := r.TotalSheets()
	if sheets == 0 {
		return 0
	}
	return float64(r.Requested) / float64(sheets)
}

type item struct {
	layer *section.Layer
	area  float64 // bounding box area
}

// Nest assigns the layers of stones, each repeated Production times, to sheets.
// Layers of different thickness never share a sheet.
func (o *Optimizer) Nest(stones []*stone.Stone) (*Result, error) {
	st := o.Settings
	if st.Production < 1 {
		return nil, fmt.Errorf("production count must be at least 1, got %d", st.Production)
	}
	if !(st.ToolDiameter >= 0) {
		return nil, fmt.Errorf("tool diameter must be non-negative, got %g", st.ToolDiameter)
	}
	if len(stones) == 0 {
		return nil, errors.New("no stones to nest")
	}
	logger := st.Logger
	if logger == nil {
		logger = slog.Default()
	}

	groups := make(map[float64][]item)
	res := &Result{}
	for n := 0; n < st.Production; n++ {
		for _, s := range stones {
			for i := 0; i < s.Len(); i++ {
				l := s.Layer(i)
				groups[l.Thickness] = append(groups[l.Thickness], item{layer: l, area: bboxArea(l.Outer)})
				res.Requested++
			}
		}
	}
	thicknesses := make([]float64, 0, len(groups))
	for t := range groups {
		thicknesses = append(thicknesses, t)
	}
	sort.Float64s(thicknesses)

	for _, t := range thicknesses {
		pool := groups[t]
		sort.SliceStable(pool, func(i, j int) bool { return pool[i].area > pool[j].area })
		stock := Stock{Thickness: t, MaxArea: pool[0].area}
		slot, single := 0, 0
		for len(pool) > 0 {
			chain := []section.Positioned{{Layer: pool[0].layer}}
			rest := pool[1:1]
			for _, cand := range pool[1:] {
				if shift, ok := o.fitsAfter(chain[len(chain)-1], cand.layer); ok {
					chain = append(chain, section.Positioned{Layer: cand.layer, Shift: shift})
					continue
				}
				rest = append(rest, cand)
			}
			pool = rest
			stock.Sheets++
			if len(chain) == 1 {
				chain[0].Elevation = float64(single) * t
				single++
				res.UnableToFit = append(res.UnableToFit, chain[0])
				continue
			}
			bin := Bin{Thickness: t, Elevation: float64(slot) * t, Items: chain}
			for i := range bin.Items {
				bin.Items[i].Elevation = bin.Elevation
				if i > 0 {
					res.UsefulVolume += bin.Items[i].Area() * t
				}
			}
			slot++
			res.Bins = append(res.Bins, bin)
			logger.Debug("bin filled", "thickness", t, "layers", len(chain), "base", chain[0].Ref)
		}
		res.Stock = append(res.Stock, stock)
	}
	logger.Debug("nesting done", "requested", res.Requested, "sheets", res.TotalSheets(), "unableToFit", len(res.UnableToFit))
	return res, nil
}

// fitsAfter tests whether l fits into the hole of the placed layer last.
func (o *Optimizer) fitsAfter(last section.Positioned, l *section.Layer) (r2.Vec, bool) {
	hole, ok := last.ShiftedHole()
	if !ok {
		return r2.Vec{}, false
	}
	return ShiftFit(l.Outer, hole, o.Settings.ToolDiameter)
}
