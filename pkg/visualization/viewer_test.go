package visualization

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func gradient(rows, cols int) *mat.Dense {
	m := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			m.Set(i, j, float64(i*cols+j))
		}
	}
	return m
}

func TestNewViewer(t *testing.T) {
	v := NewViewer(gradient(4, 5))
	assert.Equal(t, 5, v.width)
	assert.Equal(t, 4, v.height)
	lo, hi := v.Range()
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 19.0, hi)
}

func TestImageStretch(t *testing.T) {
	img := NewViewer(gradient(4, 5)).Image()
	assert.Equal(t, 5, img.Bounds().Dx())
	assert.Equal(t, 4, img.Bounds().Dy())
	assert.Equal(t, uint16(0), img.Gray16At(0, 0).Y)
	assert.Equal(t, uint16(65535), img.Gray16At(4, 3).Y)
}

func TestImageConstant(t *testing.T) {
	m := mat.NewDense(3, 3, []float64{2, 2, 2, 2, 2, 2, 2, 2, 2})
	img := NewViewer(m).Image()
	assert.Equal(t, uint16(0), img.Gray16At(1, 1).Y)
}

func TestSavePNG(t *testing.T) {
	dir := t.TempDir()
	v := NewViewer(gradient(6, 8))
	require.NoError(t, v.SavePNG(filepath.Join(dir, "map")))

	file, err := os.Open(filepath.Join(dir, "map.png"))
	require.NoError(t, err)
	defer file.Close()
	img, err := png.Decode(file)
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())
	assert.Equal(t, 6, img.Bounds().Dy())
}

func TestSaveJPEG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.jpg")
	require.NoError(t, NewViewer(gradient(6, 8)).Save(path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestSaveUnsupported(t *testing.T) {
	err := NewViewer(gradient(2, 2)).Save(filepath.Join(t.TempDir(), "map.bmp"))
	assert.Error(t, err)
}

func TestSaveHeatMap(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pc_heat.png")
	require.NoError(t, NewViewer(gradient(16, 24)).SaveHeatMap(path, "pc"))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	// A constant map still renders
	flat := mat.NewDense(4, 4, nil)
	require.NoError(t, NewViewer(flat).SaveHeatMap(filepath.Join(dir, "flat.png"), "flat"))
}

func TestHeatGridFlip(t *testing.T) {
	g := heatGrid{NewViewer(gradient(3, 2))}
	c, r := g.Dims()
	assert.Equal(t, 2, c)
	assert.Equal(t, 3, r)
	// Bottom plot row is the last map row
	assert.Equal(t, 4.0, g.Z(0, 0))
	assert.Equal(t, 1.0, g.Z(1, 2))
}

func TestSaveMaps(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	maps := map[string]mat.Matrix{
		"M":           gradient(8, 8),
		"orientation": gradient(8, 8),
	}
	require.NoError(t, SaveMaps(dir, maps, true))
	for _, name := range []string{"M.png", "M_heat.png", "orientation.png", "orientation_heat.png"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	plain := filepath.Join(t.TempDir(), "plain")
	require.NoError(t, SaveMaps(plain, maps, false))
	_, err := os.Stat(filepath.Join(plain, "M_heat.png"))
	assert.True(t, os.IsNotExist(err))
}
