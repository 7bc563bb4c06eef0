package render_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/soypat/digistone/mesh"
	"github.com/soypat/digistone/render"
	"github.com/soypat/digistone/stonegen"
)

func TestSTLCreateWriteRead(t *testing.T) {
	model := stonegen.Cylinder(20, 8, 48)
	path := filepath.Join(t.TempDir(), "cyl.stl")
	err := render.CreateSTL(path, render.NewTriangleReader(model))
	if err != nil {
		t.Fatal(err)
	}
	bfile, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	streamed, err := render.RenderAll(render.NewTriangleReader(model))
	if err != nil {
		t.Fatal(err)
	}
	if len(streamed) != len(model) {
		t.Fatalf("RenderAll read %d triangles, want %d", len(streamed), len(model))
	}
	var b bytes.Buffer
	err = render.WriteSTL(&b, streamed)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(b.Bytes(), bfile) {
		t.Fatal("WriteSTL and CreateSTL output mismatch")
	}
}

func TestSaveSTLLoads(t *testing.T) {
	model := stonegen.Cylinder(20, 8, 48)
	dir := t.TempDir()
	for _, ascii := range []bool{false, true} {
		path := filepath.Join(dir, "out.stl")
		if err := render.SaveSTL(path, "stone", model, ascii); err != nil {
			t.Fatal(err)
		}
		b, err := mesh.Load(path, mesh.Options{})
		if err != nil {
			t.Fatalf("ascii=%v: %v", ascii, err)
		}
		if len(b.Indices) != len(model) {
			t.Errorf("ascii=%v: loaded %d triangles, want %d", ascii, len(b.Indices), len(model))
		}
	}
	if err := render.SaveSTL(filepath.Join(dir, "empty.stl"), "", nil, false); err == nil {
		t.Error("expected error for empty model")
	}
}
