// Package visualization renders phase congruency and phase symmetry maps as
// grayscale images and colour heat map plots.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Viewer holds a copy of one result map together with its value range.
type Viewer struct {
	data []float64

	// dimensions of the map
	width  int
	height int

	// min and max are used to stretch the map to the full gray range
	min float64
	max float64
}

// NewViewer creates a viewer over m. The map is copied.
func NewViewer(m mat.Matrix) *Viewer {
	rows, cols := m.Dims()
	data := make([]float64, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			data[i*cols+j] = m.At(i, j)
		}
	}

	v := &Viewer{data: data, width: cols, height: rows}
	if len(data) > 0 {
		v.min = floats.Min(data)
		v.max = floats.Max(data)
	}
	return v
}

// Range returns the smallest and largest value of the map.
func (v *Viewer) Range() (lo, hi float64) { return v.min, v.max }

// normalize maps a value onto [0, 1]. A constant map renders black.
func (v *Viewer) normalize(x float64) float64 {
	if v.max <= v.min {
		return 0
	}
	return (x - v.min) / (v.max - v.min)
}

// Image renders the map as a 16-bit grayscale image, stretched so the
// smallest value is black and the largest white.
func (v *Viewer) Image() *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, v.width, v.height))
	for y := 0; y < v.height; y++ {
		for x := 0; x < v.width; x++ {
			value := uint16(math.Max(0, math.Min(65535, v.normalize(v.data[y*v.width+x])*65535)))
			img.SetGray16(x, y, color.Gray16{Y: value})
		}
	}
	return img
}

// Save writes the grayscale rendering to filename. The format follows the
// extension: .png, or .jpg/.jpeg.
func (v *Viewer) Save(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".png" && ext != ".jpg" && ext != ".jpeg" {
		return fmt.Errorf("unsupported image format: %s", filename)
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	if ext == ".png" {
		return png.Encode(file, v.Image())
	}
	return jpeg.Encode(file, v.Image(), &jpeg.Options{Quality: 90})
}

// SavePNG writes the grayscale rendering as a PNG file.
func (v *Viewer) SavePNG(filename string) error {
	if ext := strings.ToLower(filepath.Ext(filename)); ext != ".png" {
		filename += ".png"
	}
	return v.Save(filename)
}

// heatGrid adapts the map to plotter.GridXYZ. Row 0 of the map is drawn at
// the top, as in the grayscale rendering.
type heatGrid struct {
	v *Viewer
}

func (g heatGrid) Dims() (c, r int)   { return g.v.width, g.v.height }
func (g heatGrid) X(c int) float64    { return float64(c) }
func (g heatGrid) Y(r int) float64    { return float64(r) }
func (g heatGrid) Z(c, r int) float64 { return g.v.data[(g.v.height-1-r)*g.v.width+c] }

// SaveHeatMap renders the map through a colour palette with axes and a
// title. The output format follows the file extension.
func (v *Viewer) SaveHeatMap(filename, title string) error {
	if v.width == 0 || v.height == 0 {
		return fmt.Errorf("cannot plot an empty map")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "column"
	p.Y.Label.Text = "row"

	hm := plotter.NewHeatMap(heatGrid{v}, palette.Heat(64, 1))
	hm.Min, hm.Max = v.min, v.max
	if hm.Max <= hm.Min {
		hm.Max = hm.Min + 1
	}
	p.Add(hm)

	// Keep the map's aspect ratio
	width := 6 * vg.Inch
	height := width * vg.Length(v.height) / vg.Length(v.width)
	if err := p.Save(width, height, filename); err != nil {
		return fmt.Errorf("save heat map: %w", err)
	}
	return nil
}

// SaveMaps writes every map to outputDir as <name>.png and, when heatmap is
// set, <name>_heat.png.
func SaveMaps(outputDir string, maps map[string]mat.Matrix, heatmap bool) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	names := make([]string, 0, len(maps))
	for name := range maps {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		v := NewViewer(maps[name])
		if err := v.Save(filepath.Join(outputDir, name+".png")); err != nil {
			return fmt.Errorf("error saving %s: %w", name, err)
		}
		if !heatmap {
			continue
		}
		if err := v.SaveHeatMap(filepath.Join(outputDir, name+"_heat.png"), name); err != nil {
			return fmt.Errorf("error saving %s: %w", name, err)
		}
	}
	return nil
}
