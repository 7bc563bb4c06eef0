package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/soypat/digistone/render"
	"github.com/soypat/digistone/stonegen"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r3"
)

func newGenCmd() *cobra.Command {
	var (
		size    r3.Vec
		cells   int
		sectors int
		ascii   bool
	)
	cmd := &cobra.Command{
		Use:   "gen [directory]",
		Short: "Write sample stone meshes, a cylinder and a pebble",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
			cyl := stonegen.Cylinder(size.Z, size.X/2, sectors)
			pebble, err := stonegen.Pebble(size, cells)
			if err != nil {
				return err
			}
			for _, m := range []struct {
				name  string
				model []r3.Triangle
			}{{"cylinder", cyl}, {"pebble", pebble}} {
				path := filepath.Join(dir, m.name+".stl")
				if err := render.SaveSTL(path, m.name, m.model, ascii); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d triangles)\n", path, len(m.model))
			}
			return nil
		},
	}
	fl := cmd.Flags()
	fl.Float64Var(&size.X, "x", 60, "pebble size along x, also the cylinder diameter")
	fl.Float64Var(&size.Y, "y", 45, "pebble size along y")
	fl.Float64Var(&size.Z, "z", 40, "pebble and cylinder height")
	fl.IntVar(&cells, "cells", 64, "marching cubes cells along the longest side")
	fl.IntVar(&sectors, "sectors", 180, "cylinder facets around its axis")
	fl.BoolVar(&ascii, "ascii", false, "write ASCII STL")
	return cmd
}
