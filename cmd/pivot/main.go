// Command pivot standardizes the orientation of a batch of mesh objects
// read from a JSON file.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-echarts/go-echarts/v2/components"

	"github.com/banshee-data/meshpivot/internal/config"
	"github.com/banshee-data/meshpivot/internal/mesh"
	"github.com/banshee-data/meshpivot/internal/mesh/meshviz"
	"github.com/banshee-data/meshpivot/internal/mesh/pivot"
	"github.com/banshee-data/meshpivot/internal/mesh/wire"
	"github.com/banshee-data/meshpivot/internal/resultcache"
	"github.com/banshee-data/meshpivot/internal/version"
)

type options struct {
	input   string
	output  string
	config  string
	cache   string
	plotDir string
	geojson string
	cog     bool
	workers int
}

type resultJSON struct {
	Name            string      `json:"name"`
	Rotation        [3]float64  `json:"rotation"`
	Quaternion      [4]float64  `json:"quaternion"` // w, x, y, z
	Translation     [3]float64  `json:"translation"`
	RectArea        *float64    `json:"rect_area,omitempty"`
	WireCount       int         `json:"wire_count"`
	FullToBaseRatio float64     `json:"full_to_base_ratio"`
	Cached          bool        `json:"cached,omitempty"`
	COG             *[3]float64 `json:"cog,omitempty"`
}

func main() {
	var o options
	flag.StringVar(&o.input, "input", "", "batch JSON file (required)")
	flag.StringVar(&o.output, "output", "-", "results JSON file, - for stdout")
	flag.StringVar(&o.config, "config", "", "tuning JSON file (defaults when empty)")
	flag.StringVar(&o.cache, "cache", "", "sqlite result cache path (disabled when empty)")
	flag.StringVar(&o.plotDir, "plot-dir", "", "write a footprint PNG and HTML report per object")
	flag.StringVar(&o.geojson, "geojson", "", "write footprints as a GeoJSON FeatureCollection")
	flag.BoolVar(&o.cog, "cog", false, "also compute the slice-based center of gravity")
	flag.IntVar(&o.workers, "workers", 0, "worker count (overrides config when > 0)")
	verbose := flag.Bool("verbose", false, "enable diagnostic logging")
	trace := flag.Bool("trace", false, "enable per-vertex trace logging")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("pivot"))
		return
	}
	if o.input == "" {
		log.Fatalf("-input is required")
	}

	w := mesh.LogWriters{Ops: os.Stderr}
	if *verbose {
		w.Diag = os.Stderr
	}
	if *trace {
		w.Trace = os.Stderr
	}
	mesh.SetLogWriters(w)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, o); err != nil {
		log.Fatalf("pivot: %v", err)
	}
}

func loadConfig(path string) (*config.TuningConfig, error) {
	if path == "" {
		return config.DefaultTuningConfig(), nil
	}
	return config.LoadTuningConfig(path)
}

func run(ctx context.Context, o options) error {
	cfg, err := loadConfig(o.config)
	if err != nil {
		return err
	}
	params := pivot.ParamsFromTuning(cfg)
	if o.workers > 0 {
		params.Workers = o.workers
	}
	if timeout := cfg.GetBatchTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	batch, err := readBatch(o.input)
	if err != nil {
		return err
	}
	names := batch.names()

	var opts pivot.Options
	if o.cache != "" {
		c, err := resultcache.OpenSQLite(o.cache)
		if err != nil {
			return err
		}
		defer c.Close()
		opts.Cache = c
	}

	results, batchErr := pivot.ProcessBatch(ctx, batch.pack(), params, opts)
	if results == nil {
		return batchErr
	}
	if batchErr != nil {
		log.Printf("some objects failed: %v", batchErr)
	}

	out := make([]resultJSON, len(results))
	for i, r := range results {
		out[i] = toJSON(names[i], r)
	}

	if o.cog || o.plotDir != "" {
		if o.plotDir != "" {
			if err := os.MkdirAll(o.plotDir, 0o755); err != nil {
				return fmt.Errorf("failed to create plot dir: %w", err)
			}
		}
		for i, obj := range batch.Objects {
			v, err := obj.view()
			if err != nil {
				continue
			}
			if err := describe(o, params, i, names[i], v, results[i], &out[i]); err != nil {
				log.Printf("%s: %v", names[i], err)
			}
		}
	}

	if o.geojson != "" {
		fc := meshviz.FootprintCollection(names, results)
		data, err := json.MarshalIndent(fc, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode geojson: %w", err)
		}
		if err := os.WriteFile(o.geojson, data, 0o644); err != nil {
			return fmt.Errorf("failed to write geojson: %w", err)
		}
	}

	if err := writeResults(o.output, out); err != nil {
		return err
	}
	if batchErr != nil {
		return fmt.Errorf("%d of %d objects failed", countFailures(batchErr), len(results))
	}
	return nil
}

// describe adds the optional COG and debug renderings for one object.
func describe(o options, params pivot.Params, i int, name string, v mesh.View, r pivot.Result, out *resultJSON) error {
	var charts []components.Charter
	if o.cog {
		vol, err := pivot.Volume(v, params)
		if err != nil {
			return err
		}
		out.COG = &[3]float64{vol.COG.X, vol.COG.Y, vol.COG.Z}
		charts = append(charts, meshviz.SliceProfileChart(name, vol))
	}
	if o.plotDir == "" {
		return nil
	}

	png, err := meshviz.ArtefactPath(o.plotDir, i, name, ".png")
	if err != nil {
		return err
	}
	if err := meshviz.SaveFootprint(png, name, v, r); err != nil {
		return err
	}
	if v.Len() > 0 && v.Finite() {
		scores := wire.Linearity(v, mesh.BuildTopology(v), params.Wire)
		lin, err := meshviz.LinearityChart(name, v, scores)
		if err != nil {
			return err
		}
		charts = append([]components.Charter{lin}, charts...)
	}

	html, err := meshviz.ArtefactPath(o.plotDir, i, name, ".html")
	if err != nil {
		return err
	}
	f, err := os.Create(html)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	defer f.Close()
	return meshviz.WriteReport(f, charts...)
}

func toJSON(name string, r pivot.Result) resultJSON {
	q := r.Quaternion()
	out := resultJSON{
		Name:            name,
		Rotation:        [3]float64{r.Rotation.X, r.Rotation.Y, r.Rotation.Z},
		Quaternion:      [4]float64{q.Real, q.Imag, q.Jmag, q.Kmag},
		Translation:     [3]float64{r.Translation.X, r.Translation.Y, r.Translation.Z},
		WireCount:       r.WireCount,
		FullToBaseRatio: r.FullToBaseRatio,
		Cached:          r.Cached,
	}
	if r.Rect.Valid() {
		area := r.Rect.Area
		out.RectArea = &area
	}
	return out
}

func writeResults(path string, out []resultJSON) error {
	var w io.Writer = os.Stdout
	if path != "" && path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(map[string]interface{}{"results": out}); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	return nil
}

func countFailures(err error) int {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return len(joined.Unwrap())
	}
	return 1
}
