// Command digistone slices scanned stone meshes into stacked ring layers
// and nests the rings onto stock sheets for milling.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/soypat/digistone"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootFlags struct {
	files      []string
	configPath string
	mode       string
	offset     string
	verbose    int
	quiet      bool
	layerPNG   bool
	cfg        digistone.Config
}

func newRootCmd() *cobra.Command {
	var f rootFlags
	f.cfg = digistone.DefaultConfig()
	cmd := &cobra.Command{
		Use:   "digistone -f stone.stl -t thickness -o overlap",
		Short: "Approximate stone meshes by stacked rings and nest them for milling",
		Long: `digistone slices closed STL meshes of stones into layers of equal sheet
thickness. Each layer is a ring whose hole overlaps the layer below so the
stacked rings rebuild the stone. Modes:
  preview  write the stacked stone mesh, its layer drawing and a preview image
  mill     nest the rings onto sheets and write the milling drawing and plot
  assess   nest the rings and report production statistics only`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.config(cmd)
			if err != nil {
				return err
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: levelFromFlags(f.verbose, f.quiet),
			}))
			r := &runner{cfg: cfg, logger: logger, out: cmd.OutOrStdout(), layerPNG: f.layerPNG}
			return r.run(f.files)
		},
	}
	fl := cmd.Flags()
	fl.StringArrayVarP(&f.files, "file", "f", nil, "STL `mesh` of a stone, repeat for several stones")
	fl.StringVarP(&f.configPath, "config", "c", "", "TOML configuration `file`, flags take precedence")
	fl.StringVarP(&f.mode, "mode", "m", f.cfg.Mode.String(), "run mode: preview, mill or assess")
	fl.Float64VarP(&f.cfg.SheetThickness, "thickness", "t", 0, "sheet thickness, also the layer height")
	fl.Float64VarP(&f.cfg.Overlap, "overlap", "o", 0, "width of the joint between stacked layers")
	fl.IntVarP(&f.cfg.Production, "production", "n", f.cfg.Production, "copies of every stone to manufacture")
	fl.Float64VarP(&f.cfg.ToolDiameter, "tool-diameter", "d", 0, "clearance kept between nested rings")
	fl.BoolVar(&f.cfg.Flatten, "flatten", false, "write the milling drawing on the z=0 plane")
	fl.Float64Var(&f.cfg.AngleStep, "angle-step", f.cfg.AngleStep, "degrees between section rays, must divide 360")
	fl.StringVar(&f.offset, "offset", f.cfg.Offset.String(), "hole offset method: circumcircle or normal")
	fl.BoolVar(&f.cfg.ASCIISTL, "ascii", false, "write the preview mesh as ASCII STL")
	fl.StringVar(&f.cfg.OutputDir, "out", f.cfg.OutputDir, "output `directory`")
	fl.BoolVar(&f.layerPNG, "layer-images", false, "in preview mode also write a PNG outline per layer")
	fl.CountVarP(&f.verbose, "verbose", "v", "log more, -vv for debug output")
	fl.BoolVarP(&f.quiet, "quiet", "q", false, "only log errors")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(newGenCmd())
	return cmd
}

// config merges the configuration file, if any, with the flags
// explicitly set on the command line.
func (f *rootFlags) config(cmd *cobra.Command) (digistone.Config, error) {
	cfg := f.cfg
	if f.configPath != "" {
		fileCfg, err := digistone.LoadConfig(f.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = overrideChanged(cmd, fileCfg, f.cfg)
	}
	if f.configPath == "" || cmd.Flags().Changed("mode") {
		if err := cfg.Mode.UnmarshalText([]byte(f.mode)); err != nil {
			return cfg, err
		}
	}
	if f.configPath == "" || cmd.Flags().Changed("offset") {
		if err := cfg.Offset.UnmarshalText([]byte(f.offset)); err != nil {
			return cfg, err
		}
	}
	if len(f.files) == 0 {
		return cfg, fmt.Errorf("no mesh given, use -f")
	}
	return cfg, cfg.Validate()
}

// overrideChanged returns base with the fields of flags whose
// flag was set on the command line.
func overrideChanged(cmd *cobra.Command, base, flags digistone.Config) digistone.Config {
	changed := cmd.Flags().Changed
	if changed("thickness") {
		base.SheetThickness = flags.SheetThickness
	}
	if changed("overlap") {
		base.Overlap = flags.Overlap
	}
	if changed("production") {
		base.Production = flags.Production
	}
	if changed("tool-diameter") {
		base.ToolDiameter = flags.ToolDiameter
	}
	if changed("flatten") {
		base.Flatten = flags.Flatten
	}
	if changed("angle-step") {
		base.AngleStep = flags.AngleStep
	}
	if changed("ascii") {
		base.ASCIISTL = flags.ASCIISTL
	}
	if changed("out") {
		base.OutputDir = flags.OutputDir
	}
	return base
}

// levelFromFlags maps the verbosity flags to a log level. Warnings
// are shown by default.
func levelFromFlags(verbose int, quiet bool) slog.Level {
	switch {
	case verbose >= 2:
		return slog.LevelDebug
	case verbose == 1:
		return slog.LevelInfo
	case quiet:
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
