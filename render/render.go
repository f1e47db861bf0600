// Package render walks the layers of a snapshot and paints their
// features through a Driver.
//
// Given a set of styled layers and a transform, it implements how to
// draw them: the order of painting, the culling, the style resolution
// and the fault isolation. The actual pixel (or vector) output is
// delegated to the driver, such as a rasterizer producing images or a
// pdf writer.
package render

import (
	"fmt"
	"math"

	"github.com/benoitkugler/geoverlay/fault"
	"github.com/benoitkugler/geoverlay/geopath"
	"github.com/benoitkugler/geoverlay/hitindex"
	"github.com/benoitkugler/geoverlay/layer"
	"github.com/benoitkugler/geoverlay/viewport"
	"github.com/paulmach/orb/geojson"
)

// Driver knows how to do the actual draw operations
// but doesn't need any geographic knowledge:
// the shapes it receives are already projected to pixels.
type Driver interface {
	// Clear must reset the output, before a new frame of the given size.
	Clear(width, height int)

	// Paint fills then strokes `shape` with `p`.
	// `ref` identifies the feature, for drivers recording hit regions.
	// An empty shape, or one covering no pixel, is not an error.
	Paint(ref hitindex.Entry, shape geopath.Shape, p layer.Paint) error
}

// DefaultCullMargin is the margin, in pixels, added around the viewport
// when selecting the features to paint. It is added to the reach of the
// paints of each layer (see Reach).
const DefaultCullMargin = 32

// Stats summarizes one draw.
type Stats struct {
	Visited     int // features selected by the culling
	Painted     int // features sent to the driver
	Skipped     int // hidden features, or paints drawing nothing
	Faults      int
	StyleHits   int
	StyleMisses int
}

// Rasterizer paints snapshots. It keeps a cache of resolved paints
// between draws.
type Rasterizer struct {
	onFault    fault.Sink
	cache      *styleCache
	reach      *reachCache
	cullMargin float64
}

// NewRasterizer returns a rasterizer reporting per-feature faults to onFault.
// A `cacheSize` of zero disables the style cache.
func NewRasterizer(onFault fault.Sink, cacheSize int, cullMargin float64) *Rasterizer {
	if cullMargin < 0 {
		cullMargin = 0
	}
	return &Rasterizer{
		onFault:    onFault,
		cache:      newStyleCache(cacheSize),
		reach:      newReachCache(),
		cullMargin: cullMargin,
	}
}

// Purge empties the style cache. It should be called when the
// layers are replaced.
func (r *Rasterizer) Purge() {
	r.cache.purge()
	r.reach.purge()
}

// CachedStyles returns the number of paints currently cached.
func (r *Rasterizer) CachedStyles() int { return r.cache.len() }

// Reach returns how far, in pixels, painting a feature with p may extend
// beyond its projected geometry: the point marker radius, plus half the
// stroke width scaled by the miter limit, plus one pixel of antialiasing.
func Reach(p layer.Paint) float64 {
	reach := p.Radius
	if reach <= 0 {
		reach = geopath.DefaultPointRadius
	}
	if p.Stroke != nil {
		reach += p.StrokeWidth() * layer.MiterLimit / 2
	}
	return reach + 1
}

// resolved is the outcome of a style evaluation made while
// computing the reach of a layer, reused when painting.
type resolved struct {
	paint layer.Paint
	err   error
	ok    bool
}

// Draw clears the driver and paints every visible feature of `snap`:
// layers from the last one to the first, so that layer 0 ends on top,
// and features of one layer in ascending index order.
// A feature is visible when its bounds, padded by the cull margin and the
// largest reach of the paints of its layer, intersect the viewport.
// A failing feature is reported and skipped, the rest of the frame
// is still painted.
func (r *Rasterizer) Draw(snap *layer.Snapshot, tr viewport.Transform, drv Driver) Stats {
	var st Stats
	drv.Clear(tr.Width, tr.Height)

	positions := snap.Positions()
	for i := len(positions) - 1; i >= 0; i-- {
		pos := positions[i]
		l, _ := snap.Layer(pos)
		reach, paints := r.layerReach(snap.Generation, pos, l, tr.Zoom, &st)
		for _, index := range snap.Visible(pos, tr.Pad(r.cullMargin+reach)) {
			st.Visited++
			var pre resolved
			if paints != nil {
				pre = paints[index]
			}
			if flt := r.paintFeature(snap.Generation, pos, index, l, pre, tr, drv, &st); flt != nil {
				st.Faults++
				r.onFault.Report(flt)
			}
		}
	}
	return st
}

// layerReach returns the largest reach of the paints of the layer at `zoom`.
// When it is not cached, every style of the layer is evaluated, and the
// results are returned, indexed by feature.
func (r *Rasterizer) layerReach(generation uint64, pos int, l layer.Layer, zoom float64, st *Stats) (float64, []resolved) {
	key := reachKey{generation: generation, layer: pos, zoom: zoom}
	if v, ok := r.reach.get(key); ok {
		return v, nil
	}
	paints := make([]resolved, len(l.Features))
	var reach float64
	for i, f := range l.Features {
		if f == nil {
			continue
		}
		p, err := r.resolve(styleKey{generation: generation, layer: pos, feature: i, zoom: zoom}, l, f, st)
		paints[i] = resolved{paint: p, err: err, ok: true}
		if err == nil && p.Draws() {
			reach = math.Max(reach, Reach(p))
		}
	}
	r.reach.add(key, reach)
	return reach, paints
}

// resolve evaluates the style of `f`, going through the cache.
// A panicking style is returned as an error.
func (r *Rasterizer) resolve(key styleKey, l layer.Layer, f *geojson.Feature, st *Stats) (p layer.Paint, err error) {
	if cached, ok := r.cache.get(key); ok {
		st.StyleHits++
		return cached, nil
	}
	st.StyleMisses++
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("panic: %v", v)
		}
	}()
	p, err = l.Style(f, key.zoom)
	if err != nil {
		return p, err
	}
	r.cache.add(key, p)
	return p, nil
}

func (r *Rasterizer) paintFeature(generation uint64, pos, index int, l layer.Layer, pre resolved,
	tr viewport.Transform, drv Driver, st *Stats,
) (flt *fault.Fault) {
	f := l.Features[index]
	if f == nil {
		return fault.InFeature(fault.GeometryFault, "paint", pos, index, nil, geopath.ErrEmptyGeometry)
	}
	id := f.ID

	paint, err := pre.paint, pre.err
	if !pre.ok {
		paint, err = r.resolve(styleKey{generation: generation, layer: pos, feature: index, zoom: tr.Zoom}, l, f, st)
	}
	if err != nil {
		return fault.InFeature(fault.SpecFault, "style", pos, index, id, err)
	}
	if !paint.Draws() {
		st.Skipped++
		return nil
	}

	defer func() {
		if v := recover(); v != nil {
			flt = fault.InFeature(fault.GeometryFault, "paint", pos, index, id, fmt.Errorf("panic: %v", v))
		}
	}()
	shape, err := geopath.Build(f.Geometry, tr, paint.Radius)
	if err != nil {
		return fault.InFeature(fault.GeometryFault, "project", pos, index, id, err)
	}
	if err := drv.Paint(hitindex.Entry{Layer: pos, Feature: index}, shape, paint); err != nil {
		return fault.InFeature(fault.GeometryFault, "paint", pos, index, id, err)
	}
	st.Painted++
	return nil
}
