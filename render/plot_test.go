package render_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/soypat/digistone/nest"
	"github.com/soypat/digistone/render"
	"github.com/soypat/digistone/stone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"
)

func TestLayoutPlot(t *testing.T) {
	res, err := nest.New(nest.Settings{Production: 2}).Nest([]*stone.Stone{pairStone(t)})
	require.NoError(t, err)
	p, err := render.LayoutPlot(res)
	require.NoError(t, err)
	assert.Contains(t, p.Title.Text, "2 sheets")
}

func TestSaveLayoutPlot(t *testing.T) {
	res, err := nest.New(nest.Settings{Production: 1}).Nest([]*stone.Stone{pairStone(t)})
	require.NoError(t, err)
	for _, ext := range []string{"png", "svg"} {
		path := filepath.Join(t.TempDir(), "layout."+ext)
		require.NoError(t, render.SaveLayoutPlot(path, res, 4*vg.Inch, 4*vg.Inch))
		fi, err := os.Stat(path)
		require.NoError(t, err)
		assert.Greater(t, fi.Size(), int64(0), ext)
	}
}
