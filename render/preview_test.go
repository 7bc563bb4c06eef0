package render_test

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/soypat/digistone/render"
	"github.com/soypat/digistone/stonegen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreview(t *testing.T) {
	model := stonegen.Cylinder(10, 5, 60)
	img, err := render.Preview(model, 64, 48, 2, render.DefaultView())
	require.NoError(t, err)
	assert.Equal(t, image.Pt(64, 48), img.Bounds().Size())

	// The model must cover part of the background.
	bg := img.At(0, 0)
	var differ bool
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y && !differ; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.At(x, y) != bg {
				differ = true
				break
			}
		}
	}
	assert.True(t, differ, "preview is a blank image")
}

func TestPreviewErrors(t *testing.T) {
	_, err := render.Preview(nil, 10, 10, 1, render.DefaultView())
	assert.Error(t, err)
	_, err = render.Preview(stonegen.Cylinder(1, 1, 8), 0, 10, 1, render.DefaultView())
	assert.Error(t, err)
}

func TestSavePreview(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preview.png")
	require.NoError(t, render.SavePreview(path, stonegen.Cylinder(10, 5, 30), 32, 32, render.DefaultView()))
	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, fi.Size(), int64(0))
}
