package render

import (
	"context"
	"fmt"
	"image/color"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/terrain.report/internal/fsutil"
	"github.com/banshee-data/terrain.report/internal/monitoring"
)

const (
	paletteSize = 256
	maxContours = 200
)

var contourColor = color.RGBA{R: 255, G: 215, A: 255}

// PNGRenderer writes one heatmap image per layer using gonum/plot.
type PNGRenderer struct {
	FS  fsutil.FileSystem
	Dir string

	// ContourInterval spaces the elevation contour lines. Zero disables them.
	ContourInterval float64

	// Width is the image width; height follows the grid aspect ratio.
	Width vg.Length
}

// NewPNGRenderer returns a renderer writing into dir on fsys.
func NewPNGRenderer(fsys fsutil.FileSystem, dir string, contourInterval float64) *PNGRenderer {
	return &PNGRenderer{FS: fsys, Dir: dir, ContourInterval: contourInterval, Width: 8 * vg.Inch}
}

func (r *PNGRenderer) Render(ctx context.Context, scene Scene) ([]string, error) {
	if err := scene.Validate(); err != nil {
		return nil, err
	}
	if err := r.FS.MkdirAll(r.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir %s: %w", r.Dir, err)
	}

	dx, dy := scene.Elevation.CellSize()
	var written []string
	for _, l := range scene.layers() {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		p, err := r.plotLayer(scene, l, dx, dy)
		if err != nil {
			return written, fmt.Errorf("failed to plot %s: %w", l.name, err)
		}
		path := filepath.Join(r.Dir, l.name+".png")
		if err := r.save(p, path, l); err != nil {
			return written, err
		}
		monitoring.Debugf("wrote %s", path)
		written = append(written, path)
	}
	return written, nil
}

func (r *PNGRenderer) plotLayer(scene Scene, l layer, dx, dy float64) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = l.title
	if scene.Title != "" {
		p.Title.Text = scene.Title + ": " + l.title
	}
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"

	g := newGridXYZ(l, dx, dy)
	hm := plotter.NewHeatMap(g, layerPalette(l.name))
	hm.Min, hm.Max = l.min, l.max
	hm.NaN = color.Transparent
	p.Add(hm)

	if l.name == "elevation" {
		levels := contourLevels(l.min, l.max, r.ContourInterval, maxContours)
		if len(levels) > 0 {
			c := plotter.NewContour(g, levels, solid{contourColor})
			p.Add(c)
		}
	}
	return p, nil
}

func (r *PNGRenderer) save(p *plot.Plot, path string, l layer) error {
	w := r.Width
	if w <= 0 {
		w = 8 * vg.Inch
	}
	rows, cols := l.grid.Dims()
	h := w * vg.Length(rows) / vg.Length(cols)

	wt, err := p.WriterTo(w, h, "png")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	f, err := r.FS.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := wt.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

func layerPalette(name string) palette.Palette {
	switch name {
	case "hillshade", "elevation":
		return greys(paletteSize)
	case "aspect":
		return palette.Rainbow(paletteSize, palette.Red, palette.Magenta, 1, 1, 1)
	default:
		return palette.Heat(paletteSize, 1)
	}
}
