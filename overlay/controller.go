// Package overlay binds styled feature layers to an external map host,
// keeping a canvas and its id-buffer in sync with the host viewport.
//
// A Controller goes through three states: Unbound, until SetMap is called,
// Bound, and Disposed. It is driven synchronously by the host events
// and is not safe for concurrent use.
package overlay

import (
	"errors"
	"image"
	"math"
	"time"

	"github.com/benoitkugler/geoverlay/fault"
	"github.com/benoitkugler/geoverlay/layer"
	"github.com/benoitkugler/geoverlay/raster"
	"github.com/benoitkugler/geoverlay/render"
	"github.com/benoitkugler/geoverlay/viewport"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog"
)

// State is the lifecycle state of a Controller.
type State uint8

const (
	Unbound State = iota
	Bound
	Disposed
)

func (s State) String() string {
	switch s {
	case Unbound:
		return "unbound"
	case Bound:
		return "bound"
	case Disposed:
		return "disposed"
	default:
		return "<unknown State>"
	}
}

var errNilHost = errors.New("host is nil")

// Hit is the result of a successful hit test.
type Hit struct {
	Layer        int // caller index of the layer
	Feature      *geojson.Feature
	FeatureIndex int // index of the feature in its layer
}

// frame is what the last draw was made from. Transform and snapshot
// are always replaced together, so that the id-buffer is queried
// with the transform it was built with.
type frame struct {
	tr   viewport.Transform
	snap *layer.Snapshot
}

// Controller owns the overlay pipeline.
type Controller struct {
	onFault fault.Sink
	log     zerolog.Logger
	metrics *metricSet

	state   State
	host    viewport.Host
	cancels []func()

	adapter    viewport.Adapter
	store      *layer.Store
	rasterizer *render.Rasterizer
	renderer   *raster.Renderer

	// layers received while unbound, or during a draw
	pending    []layer.Layer
	hasPending bool

	drawing        bool
	dirty          bool // a draw was requested during the current one
	dirtyRecompute bool

	committed frame
	hasFrame  bool
	lastStats render.Stats
}

// New returns an unbound controller. Every fault is reported to onFault,
// which may be nil.
func New(onFault fault.Sink, opts ...Option) *Controller {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	c := &Controller{
		log:      o.logger,
		metrics:  newMetricSet(o.registerer),
		renderer: raster.NewRenderer(0, 0),
	}
	c.onFault = func(f *fault.Fault) {
		c.metrics.faults.WithLabelValues(f.Kind.String()).Inc()
		c.log.Debug().Str("kind", f.Kind.String()).Err(f).Msg("fault reported")
		onFault.Report(f)
	}
	c.store = layer.NewStore(c.onFault)
	c.rasterizer = render.NewRasterizer(c.onFault, o.styleCacheSize, o.cullMargin)
	return c
}

// State returns the lifecycle state.
func (c *Controller) State() State { return c.state }

func (c *Controller) usage(op string, err error) {
	c.onFault.Report(fault.New(fault.UsageFault, op, err))
}

// checkBound reports a usage fault and returns false
// if the controller is not bound.
func (c *Controller) checkBound(op string) bool {
	switch c.state {
	case Disposed:
		c.usage(op, fault.ErrDisposed)
		return false
	case Unbound:
		c.usage(op, fault.ErrNotBound)
		return false
	}
	return true
}

// SetMap binds the controller to `h`. It is only valid once, from the
// Unbound state. Layers given before are drawn straight away.
func (c *Controller) SetMap(h viewport.Host) {
	switch c.state {
	case Disposed:
		c.usage("set-map", fault.ErrDisposed)
		return
	case Bound:
		c.usage("set-map", fault.ErrAlreadyBound)
		return
	}
	if h == nil {
		c.usage("set-map", errNilHost)
		return
	}

	c.host = h
	c.state = Bound
	for _, e := range [...]viewport.Event{viewport.ViewportChanged, viewport.Resized, viewport.Idle} {
		e := e
		c.cancels = append(c.cancels, h.Subscribe(e, func() { c.onHostEvent(e) }))
	}
	c.log.Info().Msg("overlay bound")

	if !c.hasPending {
		if _, err := c.adapter.Recompute(h); err != nil {
			c.onFault.Report(fault.New(fault.HostFault, "recompute", err))
		}
		return
	}
	c.pipeline(true)
}

func (c *Controller) onHostEvent(e viewport.Event) {
	if c.state != Bound { // late callback
		return
	}
	c.log.Debug().Stringer("event", e).Msg("host event")
	c.pipeline(true)
}

// UpdateData replaces the layers. While unbound, or during a draw, the
// layers are kept and applied later; only the last call counts.
func (c *Controller) UpdateData(layers []layer.Layer) {
	switch {
	case c.state == Disposed:
		c.usage("update-data", fault.ErrDisposed)
		return
	case c.state == Unbound || c.drawing:
		c.pending, c.hasPending = layers, true
		if c.drawing {
			c.dirty = true
		}
		return
	}
	c.pending, c.hasPending = layers, true
	c.pipeline(false)
}

// Draw forces a redraw with the current transform.
// It is a no-op while unbound, since binding draws.
func (c *Controller) Draw() {
	switch c.state {
	case Unbound:
		return
	case Disposed:
		c.usage("draw", fault.ErrDisposed)
		return
	}
	c.pipeline(false)
}

// pipeline runs the draw, and the draws requested meanwhile.
func (c *Controller) pipeline(recompute bool) {
	if c.drawing {
		c.dirty = true
		c.dirtyRecompute = c.dirtyRecompute || recompute
		return
	}
	c.drawing = true
	defer func() { c.drawing = false }()

	for {
		c.applyPending()
		c.step(recompute)
		if !c.dirty || c.state != Bound {
			return
		}
		recompute = c.dirtyRecompute
		c.dirty, c.dirtyRecompute = false, false
	}
}

func (c *Controller) applyPending() {
	if !c.hasPending {
		return
	}
	layers := c.pending
	c.pending, c.hasPending = nil, false
	c.store.Update(layers)
	c.rasterizer.Purge()
}

// step recomputes the transform if needed, draws and commits the frame.
// When the host fails, the previous frame is kept.
func (c *Controller) step(recompute bool) {
	tr, ok := c.adapter.Current()
	if recompute || !ok {
		var err error
		tr, err = c.adapter.Recompute(c.host)
		if err != nil {
			c.onFault.Report(fault.New(fault.HostFault, "recompute", err))
			return
		}
	}

	snap := c.store.Current()
	start := time.Now()
	stats := c.rasterizer.Draw(snap, tr, c.renderer)
	elapsed := time.Since(start)

	c.committed, c.hasFrame = frame{tr: tr, snap: snap}, true
	c.lastStats = stats

	c.metrics.draws.Inc()
	c.metrics.duration.Observe(elapsed.Seconds())
	c.metrics.painted.Add(float64(stats.Painted))
	c.log.Debug().
		Uint64("generation", snap.Generation).
		Float64("zoom", tr.Zoom).
		Int("visited", stats.Visited).
		Int("painted", stats.Painted).
		Int("faults", stats.Faults).
		Dur("elapsed", elapsed).
		Msg("frame drawn")
}

// HitTest returns the topmost feature painted at the viewport pixel p.
// It is always false while unbound.
func (c *Controller) HitTest(p image.Point) (Hit, bool) {
	if !c.canHit() {
		return Hit{}, false
	}
	return c.hitPixel(p)
}

// HitTestGeo is like HitTest, for a geographic point, projected
// with the transform of the last frame.
func (c *Controller) HitTestGeo(p orb.Point) (Hit, bool) {
	if !c.canHit() {
		return Hit{}, false
	}
	px := c.committed.tr.Project(p)
	return c.hitPixel(image.Pt(int(math.Floor(px[0])), int(math.Floor(px[1]))))
}

func (c *Controller) canHit() bool {
	switch c.state {
	case Unbound:
		return false
	case Disposed:
		c.usage("hit-test", fault.ErrDisposed)
		return false
	}
	return c.hasFrame
}

func (c *Controller) hitPixel(p image.Point) (Hit, bool) {
	entry, ok := c.renderer.Hits().Query(p)
	if !ok {
		c.metrics.hits.WithLabelValues("miss").Inc()
		return Hit{}, false
	}
	c.metrics.hits.WithLabelValues("hit").Inc()
	f, _ := c.committed.snap.Feature(entry.Layer, entry.Feature)
	return Hit{Layer: entry.Layer, Feature: f, FeatureIndex: entry.Feature}, true
}

// Dispose cancels the host subscriptions. The controller can't be
// used afterwards.
func (c *Controller) Dispose() {
	if c.state == Disposed {
		c.usage("dispose", fault.ErrDisposed)
		return
	}
	for _, cancel := range c.cancels {
		cancel()
	}
	c.cancels = nil
	c.host = nil
	c.pending, c.hasPending = nil, false
	c.state = Disposed
	c.log.Info().Msg("overlay disposed")
}

// Frame returns the last drawn canvas. It must not be modified.
func (c *Controller) Frame() image.Image { return c.renderer.Image() }

// HitImage returns a debug view of the id-buffer of the last frame.
func (c *Controller) HitImage() *image.RGBA { return c.renderer.Hits().Image() }

// LastStats returns the statistics of the last draw.
func (c *Controller) LastStats() render.Stats { return c.lastStats }

// Transform returns the transform of the last frame.
func (c *Controller) Transform() (viewport.Transform, bool) {
	return c.committed.tr, c.hasFrame
}

// Render paints the last frame, with the same snapshot and transform,
// through another driver, such as a vector exporter.
func (c *Controller) Render(d render.Driver) {
	if !c.checkBound("render") || !c.hasFrame {
		return
	}
	c.rasterizer.Draw(c.committed.snap, c.committed.tr, d)
}
