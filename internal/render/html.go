package render

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/terrain.report/internal/fsutil"
	"github.com/banshee-data/terrain.report/internal/monitoring"
)

// HTMLFileName is the page written by HTMLRenderer.
const HTMLFileName = "terrain.html"

// DefaultMaxCells bounds the points per chart so pages stay responsive.
const DefaultMaxCells = 20000

var viridis = []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}

var greyRange = []string{"#000000", "#ffffff"}

// HTMLRenderer writes a single interactive page: a 3D elevation surface
// followed by hillshade, slope and aspect heatmaps.
type HTMLRenderer struct {
	FS  fsutil.FileSystem
	Dir string

	// MaxCells caps the cells drawn per chart. Larger grids are strided.
	MaxCells int

	// AssetsHost overrides where the echarts javascript is loaded from.
	AssetsHost string
}

// NewHTMLRenderer returns a renderer writing into dir on fsys.
func NewHTMLRenderer(fsys fsutil.FileSystem, dir string) *HTMLRenderer {
	return &HTMLRenderer{FS: fsys, Dir: dir, MaxCells: DefaultMaxCells}
}

func (r *HTMLRenderer) Render(ctx context.Context, scene Scene) ([]string, error) {
	if err := scene.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := r.FS.MkdirAll(r.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir %s: %w", r.Dir, err)
	}

	layers := scene.layers()
	stride := r.stride(layers[0])
	dx, dy := scene.Elevation.CellSize()

	page := components.NewPage()
	if r.AssetsHost != "" {
		page.SetAssetsHost(r.AssetsHost)
	}
	page.AddCharts(r.surface(scene, layers[0], stride, dx, dy))
	for _, l := range layers[1:] {
		page.AddCharts(r.heatmap(scene, l, stride))
	}

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return nil, fmt.Errorf("failed to render page: %w", err)
	}
	path := filepath.Join(r.Dir, HTMLFileName)
	if err := r.FS.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", path, err)
	}
	monitoring.Debugf("wrote %s (stride=%d)", path, stride)
	return []string{path}, nil
}

// stride returns the smallest step that keeps a layer under MaxCells.
func (r *HTMLRenderer) stride(l layer) int {
	limit := r.MaxCells
	if limit <= 0 {
		limit = DefaultMaxCells
	}
	rows, cols := l.grid.Dims()
	s := 1
	for (rows+s-1)/s*((cols+s-1)/s) > limit {
		s++
	}
	return s
}

func (r *HTMLRenderer) initOpts(scene Scene) opts.Initialization {
	return opts.Initialization{PageTitle: pageTitle(scene), Width: "900px", Height: "720px", AssetsHost: r.AssetsHost}
}

func (r *HTMLRenderer) surface(scene Scene, l layer, stride int, dx, dy float64) *charts.Surface3D {
	rows, cols := l.grid.Dims()
	data := make([]opts.Chart3DData, 0, (rows/stride+1)*(cols/stride+1))
	for i := 0; i < rows; i += stride {
		for j := 0; j < cols; j += stride {
			z := l.grid.At(i, j)
			if math.IsNaN(z) {
				continue
			}
			x := float64(j) * dx
			y := float64(rows-1-i) * dy
			data = append(data, opts.Chart3DData{Value: []interface{}{x, y, z}})
		}
	}

	s := charts.NewSurface3D()
	s.SetGlobalOptions(
		charts.WithInitializationOpts(r.initOpts(scene)),
		charts.WithTitleOpts(opts.Title{Title: l.title, Subtitle: fmt.Sprintf("%dx%d cells stride=%d", rows, cols, stride)}),
		charts.WithXAxis3DOpts(opts.XAxis3D{Name: "x"}),
		charts.WithYAxis3DOpts(opts.YAxis3D{Name: "y"}),
		charts.WithZAxis3DOpts(opts.ZAxis3D{Name: "z"}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(l.min),
			Max:        float32(l.max),
			InRange:    &opts.VisualMapInRange{Color: viridis},
		}),
	)
	s.AddSeries(l.name, data)
	return s
}

func (r *HTMLRenderer) heatmap(scene Scene, l layer, stride int) *charts.HeatMap {
	rows, cols := l.grid.Dims()
	xs := make([]int, 0, cols/stride+1)
	for j := 0; j < cols; j += stride {
		xs = append(xs, j)
	}
	ys := make([]int, 0, rows/stride+1)
	for i := rows - 1; i >= 0; i -= stride {
		ys = append(ys, i)
	}

	data := make([]opts.HeatMapData, 0, len(xs)*len(ys))
	for yi, i := range ys {
		for xi, j := range xs {
			v := l.masked(i, j)
			if math.IsNaN(v) {
				continue
			}
			data = append(data, opts.HeatMapData{Value: [3]interface{}{xi, yi, v}})
		}
	}

	colors := viridis
	if l.name == "hillshade" {
		colors = greyRange
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(r.initOpts(scene)),
		charts.WithTitleOpts(opts.Title{Title: l.title, Subtitle: lightingSubtitle(scene)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Name: "col"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Name: "row", Data: ys}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(l.min),
			Max:        float32(l.max),
			InRange:    &opts.VisualMapInRange{Color: colors},
		}),
	)
	hm.SetXAxis(xs).AddSeries(l.name, data)
	return hm
}

func pageTitle(scene Scene) string {
	if scene.Title != "" {
		return scene.Title
	}
	return "Terrain derivatives"
}

func lightingSubtitle(scene Scene) string {
	return fmt.Sprintf("altitude=%g° azimuth=%g°", scene.Lighting.AltitudeDeg, scene.Lighting.AzimuthDeg)
}
