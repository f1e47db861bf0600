package geopath

import (
	"math"

	"golang.org/x/image/math/fixed"
)

// This file implements the transformation from
// high level shapes to their path equivalent

// maxCoord bounds pixel coordinates so that they fit in a fixed.Int26_6.
// Vertices further away are clamped, which only distorts geometry lying
// far outside of the viewport.
const maxCoord = 1 << 24

// kappa is the control point distance, relative to the radius,
// used to approximate a quarter circle with one cubic bezier.
const kappa = 0.5522847498307936

func fixedTof(a fixed.Point26_6) (float64, float64) {
	return float64(a.X) / 64, float64(a.Y) / 64
}

// fToFixed converts two floats to a fixed point.
func fToFixed(x, y float64) (p fixed.Point26_6) {
	x = math.Max(-maxCoord, math.Min(maxCoord, x))
	y = math.Max(-maxCoord, math.Min(maxCoord, y))
	p.X = fixed.Int26_6(math.Round(x * 64))
	p.Y = fixed.Int26_6(math.Round(y * 64))
	return
}

// addCircle adds a closed circle of radius r centered on (cx, cy),
// made of four cubic beziers.
func (p *Path) addCircle(cx, cy, r float64) {
	k := kappa * r
	p.Start(fToFixed(cx+r, cy))
	p.CubeBezier(fToFixed(cx+r, cy+k), fToFixed(cx+k, cy+r), fToFixed(cx, cy+r))
	p.CubeBezier(fToFixed(cx-k, cy+r), fToFixed(cx-r, cy+k), fToFixed(cx-r, cy))
	p.CubeBezier(fToFixed(cx-r, cy-k), fToFixed(cx-k, cy-r), fToFixed(cx, cy-r))
	p.CubeBezier(fToFixed(cx+k, cy-r), fToFixed(cx+r, cy-k), fToFixed(cx+r, cy))
	p.Stop(true)
}

// addPolyline adds the open or closed polyline through pts.
func (p *Path) addPolyline(pts []fixed.Point26_6, closeLoop bool) {
	p.Start(pts[0])
	for _, pt := range pts[1:] {
		p.Line(pt)
	}
	p.Stop(closeLoop)
}
