// Command geoverlay renders GeoJSON layers over a Web Mercator viewport,
// writing the overlay and its id-buffer as PNG, and optionally as PDF.
//
// Usage:
//
//	geoverlay [flags] top.geojson [below.geojson ...]
//
// The first file is the topmost layer. Settings default to the
// GEOVERLAY_* environment variables (and a .env file), which flags override.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/benoitkugler/geoverlay/fault"
	"github.com/benoitkugler/geoverlay/ingest"
	"github.com/benoitkugler/geoverlay/internal/config"
	"github.com/benoitkugler/geoverlay/internal/logging"
	"github.com/benoitkugler/geoverlay/layer"
	"github.com/benoitkugler/geoverlay/overlay"
	"github.com/benoitkugler/geoverlay/overlaypdf"
	"github.com/benoitkugler/geoverlay/viewport"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/rs/zerolog"
)

// pixelList is a repeatable x,y flag.
type pixelList []image.Point

func (l *pixelList) String() string {
	parts := make([]string, len(*l))
	for i, p := range *l {
		parts[i] = fmt.Sprintf("%d,%d", p.X, p.Y)
	}
	return strings.Join(parts, " ")
}

func (l *pixelList) Set(s string) error {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return fmt.Errorf("expected x,y, got %q", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return err
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return err
	}
	*l = append(*l, image.Pt(x, y))
	return nil
}

type options struct {
	cfg config.Config

	out    string
	ids    string
	pdf    string
	csv    string
	lonCol string
	latCol string
	hits   pixelList
	strict bool
	files  []string
}

var errUsage = errors.New("at least one input file is required")

func parseFlags(args []string, stderr io.Writer) (options, error) {
	opts := options{cfg: config.FromEnv()}
	cfg := &opts.cfg

	fs := flag.NewFlagSet("geoverlay", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.out, "out", "overlay.png", "output PNG for the overlay")
	fs.StringVar(&opts.ids, "ids", "", "optional PNG output for the id-buffer")
	fs.StringVar(&opts.pdf, "pdf", "", "optional PDF output")
	fs.StringVar(&opts.csv, "csv", "", "optional CSV of points, drawn on top")
	fs.StringVar(&opts.lonCol, "lon", "lon", "longitude column of the CSV")
	fs.StringVar(&opts.latCol, "lat", "lat", "latitude column of the CSV")
	fs.Var(&opts.hits, "hit", "pixel `x,y` to hit test (repeatable)")
	fs.BoolVar(&opts.strict, "strict", false, "exit with an error status if any fault is reported")
	fs.IntVar(&cfg.Width, "width", cfg.Width, "viewport width, in pixels")
	fs.IntVar(&cfg.Height, "height", cfg.Height, "viewport height, in pixels")
	fs.Float64Var(&cfg.Zoom, "zoom", cfg.Zoom, "zoom level")
	fs.Float64Var(&cfg.CenterLon, "center-lon", cfg.CenterLon, "longitude of the viewport center")
	fs.Float64Var(&cfg.CenterLat, "center-lat", cfg.CenterLat, "latitude of the viewport center")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	fs.BoolVar(&cfg.LogConsole, "log-console", cfg.LogConsole, "human readable logs")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	opts.files = fs.Args()
	if len(opts.files) == 0 && opts.csv == "" {
		return opts, errUsage
	}
	return opts, nil
}

func loadGeoJSON(path string) ([]*geojson.Feature, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fc, err := geojson.UnmarshalFeatureCollection(b)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return fc.Features, nil
}

func loadPoints(opts options) ([]*geojson.Feature, error) {
	cols := []ingest.Column{
		{Name: opts.lonCol, Type: ingest.Numeric},
		{Name: opts.latCol, Type: ingest.Numeric},
		{Name: "name", Optional: true},
		{Name: "fill", Optional: true},
		{Name: "stroke", Optional: true},
		{Name: "radius", Type: ingest.Numeric, Optional: true},
	}
	records, err := ingest.Load(opts.csv, cols, ingest.Options{Charset: opts.cfg.CSVCharset})
	if err != nil {
		return nil, err
	}
	for _, rec := range records { // empty cells keep the layer defaults
		for _, k := range [...]string{"fill", "stroke"} {
			if rec[k] == "" {
				delete(rec, k)
			}
		}
	}
	return ingest.Points(records, opts.lonCol, opts.latCol)
}

// loadLayers returns the layers, topmost first: the CSV points, then
// the GeoJSON files in order.
func loadLayers(opts options) ([]layer.Layer, error) {
	var all [][]*geojson.Feature
	if opts.csv != "" {
		pts, err := loadPoints(opts)
		if err != nil {
			return nil, err
		}
		all = append(all, pts)
	}
	for _, path := range opts.files {
		fs, err := loadGeoJSON(path)
		if err != nil {
			return nil, err
		}
		all = append(all, fs)
	}
	layers := make([]layer.Layer, len(all))
	for i, fs := range all {
		layers[i] = layer.Layer{Features: fs, Style: propertyStyle(i)}
	}
	return layers, nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func describe(h overlay.Hit) string {
	name := fmt.Sprintf("feature %d", h.FeatureIndex)
	if h.Feature != nil {
		if v, ok := h.Feature.Properties["name"].(string); ok && v != "" {
			name = strconv.Quote(v)
		}
		if h.Feature.ID != nil {
			name += fmt.Sprintf(" (id %v)", h.Feature.ID)
		}
	}
	return fmt.Sprintf("layer %d, %s", h.Layer, name)
}

// logMetrics logs the counters of reg, summed over their labels.
func logMetrics(log zerolog.Logger, reg prometheus.Gatherer) {
	families, err := reg.Gather()
	if err != nil {
		log.Warn().Err(err).Msg("gathering metrics")
		return
	}
	ev := log.Info()
	for _, mf := range families {
		if mf.GetType() != dto.MetricType_COUNTER {
			continue
		}
		var total float64
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
		ev = ev.Float64(strings.TrimPrefix(mf.GetName(), "geoverlay_"), total)
	}
	ev.Msg("metrics")
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, "geoverlay:", err)
		return 2
	}

	log := logging.Build(logging.Config{
		Level:     opts.cfg.LogLevel,
		Console:   opts.cfg.LogConsole,
		Component: "geoverlay",
	}, stderr)

	layers, err := loadLayers(opts)
	if err != nil {
		log.Error().Err(err).Msg("loading layers")
		return 1
	}

	var faults fault.Collector
	reg := prometheus.NewRegistry()
	ctrl := overlay.New(fault.Multi(fault.LogSink(log), faults.Sink()),
		overlay.WithLogger(log),
		overlay.WithRegisterer(reg),
		overlay.WithStyleCacheSize(opts.cfg.StyleCacheSize),
		overlay.WithCullMargin(opts.cfg.CullMargin),
	)
	host := viewport.NewStaticHost(viewport.Camera{
		Center: orb.Point{opts.cfg.CenterLon, opts.cfg.CenterLat},
		Zoom:   opts.cfg.Zoom,
		Width:  opts.cfg.Width,
		Height: opts.cfg.Height,
	})
	ctrl.UpdateData(layers)
	ctrl.SetMap(host)
	defer ctrl.Dispose()

	if _, ok := ctrl.Transform(); !ok {
		log.Error().Msg("nothing drawn")
		return 1
	}
	stats := ctrl.LastStats()
	log.Info().
		Int("layers", len(layers)).
		Int("visited", stats.Visited).
		Int("painted", stats.Painted).
		Int("faults", stats.Faults).
		Msg("overlay drawn")

	if err := writePNG(opts.out, ctrl.Frame()); err != nil {
		log.Error().Err(err).Msg("writing overlay")
		return 1
	}
	if opts.ids != "" {
		if err := writePNG(opts.ids, ctrl.HitImage()); err != nil {
			log.Error().Err(err).Msg("writing id-buffer")
			return 1
		}
	}
	if opts.pdf != "" {
		rd := overlaypdf.New()
		ctrl.Render(rd)
		if err := rd.WriteFile(opts.pdf); err != nil {
			log.Error().Err(err).Msg("writing PDF")
			return 1
		}
	}

	for _, p := range opts.hits {
		if h, ok := ctrl.HitTest(p); ok {
			fmt.Fprintf(stdout, "%d,%d: %s\n", p.X, p.Y, describe(h))
		} else {
			fmt.Fprintf(stdout, "%d,%d: -\n", p.X, p.Y)
		}
	}

	logMetrics(log, reg)

	if opts.strict && len(faults.Faults) != 0 {
		summary := zerolog.Dict()
		for _, k := range [...]fault.Kind{fault.SpecFault, fault.GeometryFault, fault.UsageFault, fault.HostFault} {
			summary.Int(k.String(), faults.Count(k))
		}
		log.Error().Dict("faults", summary).Msg("faults reported in strict mode")
		return 1
	}
	return 0
}

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, "geoverlay: loading .env:", err)
	}
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
