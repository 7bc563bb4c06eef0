package digistone

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ErrInvalidConfig is wrapped by every error returned from Config.Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Mode selects the artifacts produced by a run.
type Mode int

const (
	// ModePreview writes the reconstructed stone mesh, its stacked
	// layer drawing and preview images.
	ModePreview Mode = iota
	// ModeMill nests the layers onto sheets and writes the milling layout.
	ModeMill
	// ModeAssess nests the layers and only reports production statistics.
	ModeAssess
)

var modeNames = [...]string{ModePreview: "preview", ModeMill: "mill", ModeAssess: "assess"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler. The original
// tool's mode names are accepted as aliases.
func (m *Mode) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "preview", "previewgeometry":
		*m = ModePreview
	case "mill", "generatemillingdata":
		*m = ModeMill
	case "assess", "assessproductionvolume":
		*m = ModeAssess
	default:
		return fmt.Errorf("unknown mode %q", b)
	}
	return nil
}

// OffsetMethod selects how hole boundaries are inset from their outline.
type OffsetMethod int

const (
	// OffsetCircumcircle moves each vertex toward the center of the
	// circle through it and its neighbours.
	OffsetCircumcircle OffsetMethod = iota
	// OffsetNormal moves each vertex along the normal of its outgoing edge.
	OffsetNormal
)

func (o OffsetMethod) String() string {
	switch o {
	case OffsetCircumcircle:
		return "circumcircle"
	case OffsetNormal:
		return "normal"
	}
	return fmt.Sprintf("OffsetMethod(%d)", int(o))
}

// MarshalText implements encoding.TextMarshaler.
func (o OffsetMethod) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *OffsetMethod) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "circumcircle":
		*o = OffsetCircumcircle
	case "normal":
		*o = OffsetNormal
	default:
		return fmt.Errorf("unknown offset method %q", b)
	}
	return nil
}

// Config holds every tunable of a run. It is passed explicitly
// to each stage; there are no package level settings.
type Config struct {
	// AngleStep is the angle in degrees between consecutive section rays.
	AngleStep float64 `toml:"angle_step"`
	// SheetThickness is the stock thickness, which is also the layer height.
	SheetThickness float64 `toml:"sheet_thickness"`
	// Overlap is the width of the joint between stacked layers.
	Overlap float64 `toml:"overlap"`
	// ToolDiameter is the clearance kept between nested layers.
	ToolDiameter float64 `toml:"tool_diameter"`
	// Production is the number of copies of every stone to manufacture.
	Production int          `toml:"production"`
	Offset     OffsetMethod `toml:"offset"`
	// PenWidth is the outline width in pixels of raster layer images.
	PenWidth float64 `toml:"pen_width"`
	// PixelsPerUnit scales model units to raster pixels.
	PixelsPerUnit float64 `toml:"pixels_per_unit"`
	// Flatten writes the milling drawing on the z=0 plane.
	Flatten   bool   `toml:"flatten"`
	ASCIISTL  bool   `toml:"ascii_stl"`
	OutputDir string `toml:"output_dir"`
	Mode      Mode   `toml:"mode"`
}

// DefaultConfig returns a configuration with every optional field set.
// SheetThickness and Overlap have no sensible default and are left zero.
func DefaultConfig() Config {
	return Config{
		AngleStep:     1,
		Production:    1,
		Offset:        OffsetCircumcircle,
		PenWidth:      5,
		PixelsPerUnit: 4,
		OutputDir:     ".",
		Mode:          ModePreview,
	}
}

// LoadConfig decodes a TOML file over the defaults.
// Unknown keys are an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	fp, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer fp.Close()
	dec := toml.NewDecoder(fp)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config %q: %w", path, err)
	}
	return cfg, nil
}

// Sectors returns the number of rays cast per section.
func (c Config) Sectors() int {
	return int(math.Floor(360 / c.AngleStep))
}

// Validate checks the configuration for values the pipeline cannot run with.
func (c Config) Validate() error {
	var errs []error
	switch {
	case !(c.AngleStep > 0) || math.IsInf(c.AngleStep, 0):
		errs = append(errs, fmt.Errorf("angle step must be positive, got %g", c.AngleStep))
	case c.Sectors() < 3:
		errs = append(errs, fmt.Errorf("angle step %g yields fewer than 3 sectors", c.AngleStep))
	case !EqualFloat64(float64(c.Sectors())*c.AngleStep, 360, 1e-9):
		errs = append(errs, fmt.Errorf("angle step %g does not divide 360", c.AngleStep))
	}
	if !(c.SheetThickness > 0) || math.IsInf(c.SheetThickness, 0) {
		errs = append(errs, fmt.Errorf("sheet thickness must be positive, got %g", c.SheetThickness))
	}
	if !(c.Overlap >= 0) || math.IsInf(c.Overlap, 0) {
		errs = append(errs, fmt.Errorf("overlap must be non-negative, got %g", c.Overlap))
	}
	if !(c.ToolDiameter >= 0) || math.IsInf(c.ToolDiameter, 0) {
		errs = append(errs, fmt.Errorf("tool diameter must be non-negative, got %g", c.ToolDiameter))
	}
	if c.Production < 1 {
		errs = append(errs, fmt.Errorf("production count must be at least 1, got %d", c.Production))
	}
	if c.Offset != OffsetCircumcircle && c.Offset != OffsetNormal {
		errs = append(errs, fmt.Errorf("unknown offset method %v", c.Offset))
	}
	if c.Mode < ModePreview || c.Mode > ModeAssess {
		errs = append(errs, fmt.Errorf("unknown mode %v", c.Mode))
	}
	if !(c.PenWidth > 0) {
		errs = append(errs, fmt.Errorf("pen width must be positive, got %g", c.PenWidth))
	}
	if !(c.PixelsPerUnit > 0) {
		errs = append(errs, fmt.Errorf("pixels per unit must be positive, got %g", c.PixelsPerUnit))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}
