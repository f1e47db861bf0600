// Package viewport translates the camera of an external map host
// into an immutable pixel transform, used to project features
// and to resolve screen points.
package viewport

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

const (
	// TileSize is the size in pixels of the world at zoom 0.
	TileSize = 256
	// MaxLatitude is the limit of the Web Mercator projection.
	MaxLatitude = 85.05112878
	// MaxZoom is the highest zoom level accepted from a host.
	MaxZoom = 30
)

// half of the world extent, in Mercator meters
const halfWorld = orb.EarthRadius * math.Pi

// Camera is the view state reported by a host.
type Camera struct {
	Center orb.Point // lon, lat
	Zoom   float64   // fractional zooms are allowed
	Width  int       // viewport size, in pixels
	Height int
}

// ErrInvalidCamera is returned when the host reports an unusable camera.
type ErrInvalidCamera struct {
	Reason string
}

func (e *ErrInvalidCamera) Error() string {
	return fmt.Sprintf("invalid camera: %s", e.Reason)
}

// Validate checks that a transform may be built from the camera.
func (c Camera) Validate() error {
	switch {
	case math.IsNaN(c.Zoom) || math.IsInf(c.Zoom, 0):
		return &ErrInvalidCamera{Reason: "zoom is not finite"}
	case c.Zoom < 0 || c.Zoom > MaxZoom:
		return &ErrInvalidCamera{Reason: fmt.Sprintf("zoom %g out of [0, %d]", c.Zoom, MaxZoom)}
	case c.Width <= 0 || c.Height <= 0:
		return &ErrInvalidCamera{Reason: fmt.Sprintf("empty viewport %dx%d", c.Width, c.Height)}
	case !finite(c.Center[0]) || !finite(c.Center[1]):
		return &ErrInvalidCamera{Reason: "center is not finite"}
	}
	return nil
}

// Transform maps geographic coordinates to viewport pixels, for
// one camera state. It is a value and is never modified: a new camera
// yields a new Transform.
type Transform struct {
	Scale  float64   // world size in pixels
	Origin orb.Point // world pixel at the top left corner of the viewport
	Zoom   float64
	Width  int
	Height int
}

// NewTransform validates the camera and returns its transform.
func NewTransform(c Camera) (Transform, error) {
	if err := c.Validate(); err != nil {
		return Transform{}, err
	}
	scale := TileSize * math.Exp2(c.Zoom)
	center := worldPixel(c.Center, scale)
	return Transform{
		Scale:  scale,
		Origin: orb.Point{center[0] - float64(c.Width)/2, center[1] - float64(c.Height)/2},
		Zoom:   c.Zoom,
		Width:  c.Width,
		Height: c.Height,
	}, nil
}

// clampLonLat clamps longitude to [-180, 180] (it is not wrapped)
// and latitude to the Mercator limits.
func clampLonLat(g orb.Point) orb.Point {
	return orb.Point{
		math.Max(-180, math.Min(180, g[0])),
		math.Max(-MaxLatitude, math.Min(MaxLatitude, g[1])),
	}
}

func worldPixel(g orb.Point, scale float64) orb.Point {
	m := project.WGS84.ToMercator(clampLonLat(g))
	return orb.Point{
		(m[0] + halfWorld) / (2 * halfWorld) * scale,
		(halfWorld - m[1]) / (2 * halfWorld) * scale,
	}
}

// Project returns the viewport pixel of the geographic point g.
func (t Transform) Project(g orb.Point) orb.Point {
	w := worldPixel(g, t.Scale)
	return orb.Point{w[0] - t.Origin[0], w[1] - t.Origin[1]}
}

// Unproject is the inverse of Project.
func (t Transform) Unproject(p orb.Point) orb.Point {
	wx, wy := p[0]+t.Origin[0], p[1]+t.Origin[1]
	m := orb.Point{
		wx/t.Scale*2*halfWorld - halfWorld,
		halfWorld - wy/t.Scale*2*halfWorld,
	}
	return project.Mercator.ToWGS84(m)
}

// Size returns the viewport size in pixels.
func (t Transform) Size() (width, height int) { return t.Width, t.Height }

// Bound returns the geographic extent of the viewport.
func (t Transform) Bound() orb.Bound { return t.Pad(0) }

// Pad returns the geographic extent of the viewport grown
// by `px` pixels on every side.
// When the extent reaches the Mercator limits, it is extended to the poles
// so that features beyond them, which are drawn clamped, are still found.
func (t Transform) Pad(px float64) orb.Bound {
	tl := t.Unproject(orb.Point{-px, -px})
	br := t.Unproject(orb.Point{float64(t.Width) + px, float64(t.Height) + px})
	b := orb.Bound{
		Min: orb.Point{tl[0], br[1]},
		Max: orb.Point{br[0], tl[1]},
	}
	if b.Max[1] >= MaxLatitude-1e-9 {
		b.Max[1] = 90
	}
	if b.Min[1] <= -MaxLatitude+1e-9 {
		b.Min[1] = -90
	}
	return b
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
