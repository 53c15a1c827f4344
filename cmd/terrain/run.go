package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/gosuri/uiprogress"

	"github.com/banshee-data/terrain.report/internal/config"
	"github.com/banshee-data/terrain.report/internal/fsutil"
	"github.com/banshee-data/terrain.report/internal/monitoring"
	"github.com/banshee-data/terrain.report/internal/render"
	"github.com/banshee-data/terrain.report/internal/report"
	"github.com/banshee-data/terrain.report/internal/store"
	"github.com/banshee-data/terrain.report/internal/terrain"
	"github.com/banshee-data/terrain.report/internal/timeutil"
	"github.com/banshee-data/terrain.report/internal/version"
)

// runEnv carries the side-effecting dependencies of a run.
type runEnv struct {
	FS       fsutil.FileSystem
	Clock    timeutil.Clock
	Progress bool
}

// run executes one configured terrain run and returns its report.
func run(ctx context.Context, cfg *config.RunConfig, env runEnv) (report.Report, error) {
	sampler, err := cfg.ToSampler()
	if err != nil {
		return report.Report{}, err
	}
	elev, err := sampler.Sample()
	if err != nil {
		return report.Report{}, fmt.Errorf("failed to sample %s: %w", cfg.GetSurface(), err)
	}
	rows, cols := elev.Dims()
	monitoring.Debugf("sampled %s: %dx%d", cfg.GetSurface(), rows, cols)

	light := cfg.ToLighting()
	opts := terrain.Options{Workers: cfg.GetWorkers()}
	if env.Progress && rows > 2 {
		uiprogress.Start()
		bar := uiprogress.AddBar(rows - 2).AppendCompleted().PrependElapsed()
		opts.OnRow = func(int) { bar.Incr() }
		defer uiprogress.Stop()
	}

	start := env.Clock.Now()
	grids, err := terrain.ComputeContext(ctx, elev, light, opts)
	if err != nil {
		return report.Report{}, fmt.Errorf("failed to compute derivatives: %w", err)
	}
	elapsed := env.Clock.Since(start)

	rep := report.Build(elev, grids)
	rep.RunID = uuid.NewString()
	rep.Version = version.Version
	rep.CreatedAt = env.Clock.Now().UTC()
	rep.Surface = cfg.GetSurface()
	rep.Lighting = light
	rep.Duration = elapsed

	scene := render.Scene{
		Title:     cfg.GetSurface(),
		Elevation: elev,
		Grids:     grids,
		Lighting:  light,
	}
	for _, r := range renderers(cfg, env.FS) {
		paths, err := r.Render(ctx, scene)
		rep.Outputs = append(rep.Outputs, paths...)
		if err != nil {
			return rep, fmt.Errorf("failed to render: %w", err)
		}
	}

	if cfg.HasFormat(config.FormatJSON) {
		path, err := report.Write(env.FS, cfg.GetOutputDir(), rep)
		if err != nil {
			return rep, err
		}
		rep.Outputs = append(rep.Outputs, path)
	}

	if db := cfg.GetDatabase(); db != "" {
		if err := record(ctx, db, env.Clock, rep, elev, grids); err != nil {
			return rep, err
		}
		monitoring.Logf("recorded run %s in %s", rep.RunID, db)
	}
	return rep, nil
}

func renderers(cfg *config.RunConfig, fsys fsutil.FileSystem) []render.Renderer {
	var out []render.Renderer
	if cfg.HasFormat(config.FormatPNG) {
		out = append(out, render.NewPNGRenderer(fsys, cfg.GetOutputDir(), cfg.GetContourInterval()))
	}
	if cfg.HasFormat(config.FormatHTML) {
		out = append(out, render.NewHTMLRenderer(fsys, cfg.GetOutputDir()))
	}
	return out
}

func record(ctx context.Context, path string, clock timeutil.Clock, rep report.Report, elev *terrain.ElevationGrid, grids *terrain.DerivativeGrids) error {
	st, err := store.OpenWithClock(path, clock)
	if err != nil {
		return err
	}
	defer st.Close()

	body, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	_, err = st.RecordRun(ctx, store.Run{
		ID:         rep.RunID,
		CreatedAt:  rep.CreatedAt,
		Version:    rep.Version,
		Surface:    rep.Surface,
		Lighting:   rep.Lighting,
		Duration:   rep.Duration,
		ReportJSON: string(body),
		Elevation:  elev,
		Grids:      grids,
	})
	return err
}

func printHistory(ctx context.Context, w io.Writer, path string, limit int) error {
	if path == "" {
		return fmt.Errorf("-history needs -db")
	}
	st, err := store.Open(path)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns(ctx, limit)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tCREATED\tSURFACE\tGRID\tALT\tAZ\tDURATION")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%dx%d\t%g\t%g\t%v\n",
			r.ID, r.CreatedAt.Format(time.RFC3339), r.Surface, r.Rows, r.Cols,
			r.Lighting.AltitudeDeg, r.Lighting.AzimuthDeg, r.Duration.Round(time.Microsecond))
	}
	return tw.Flush()
}
