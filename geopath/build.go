package geopath

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"golang.org/x/image/math/fixed"
)

// DefaultPointRadius is the marker radius, in pixels, used for points
// when the paint does not specify one.
const DefaultPointRadius = 4

// minArea is the projected area, in square pixels, under which
// a ring is considered degenerate and is not filled.
const minArea = 1e-6

// ErrEmptyGeometry is returned for a feature without geometry.
var ErrEmptyGeometry = errors.New("feature has no geometry")

// ErrInvalidCoordinate indicates a coordinate that can't be projected
type ErrInvalidCoordinate struct {
	Lon, Lat float64
}

func (e *ErrInvalidCoordinate) Error() string {
	return fmt.Sprintf("invalid coordinate: lon=%f lat=%f", e.Lon, e.Lat)
}

// ErrUnsupportedGeometry indicates a geometry type with no path equivalent
type ErrUnsupportedGeometry struct {
	Type string
}

func (e *ErrUnsupportedGeometry) Error() string {
	return fmt.Sprintf("unsupported geometry type: %s", e.Type)
}

// Projector maps geographic coordinates to viewport pixels.
type Projector interface {
	Project(g orb.Point) orb.Point
}

type builder struct {
	pr     Projector
	radius float64
	shape  Shape
}

// Build projects the geometry `g` and returns its outline in pixels.
// Points are drawn as circles of the given radius.
// Degenerate parts (single point lines, zero area rings) are not
// errors: they simply contribute nothing, or only a stroke.
func Build(g orb.Geometry, pr Projector, radius float64) (Shape, error) {
	if g == nil {
		return Shape{}, ErrEmptyGeometry
	}
	if radius <= 0 {
		radius = DefaultPointRadius
	}
	b := builder{pr: pr, radius: radius}
	if err := b.add(g); err != nil {
		return Shape{}, err
	}
	return b.shape, nil
}

func (b *builder) add(g orb.Geometry) error {
	switch g := g.(type) {
	case orb.Point:
		return b.addPoint(g)
	case orb.MultiPoint:
		for _, p := range g {
			if err := b.addPoint(p); err != nil {
				return err
			}
		}
	case orb.LineString:
		return b.addLine(g)
	case orb.MultiLineString:
		for _, ls := range g {
			if err := b.addLine(ls); err != nil {
				return err
			}
		}
	case orb.Ring:
		return b.addPolygon(orb.Polygon{g})
	case orb.Polygon:
		return b.addPolygon(g)
	case orb.MultiPolygon:
		for _, poly := range g {
			if err := b.addPolygon(poly); err != nil {
				return err
			}
		}
	case orb.Bound:
		return b.addPolygon(g.ToPolygon())
	case orb.Collection:
		for _, sub := range g {
			if sub == nil {
				return ErrEmptyGeometry
			}
			if err := b.add(sub); err != nil {
				return err
			}
		}
	default:
		return &ErrUnsupportedGeometry{Type: g.GeoJSONType()}
	}
	return nil
}

func (b *builder) project(g orb.Point) (orb.Point, error) {
	if !finite(g[0]) || !finite(g[1]) {
		return orb.Point{}, &ErrInvalidCoordinate{Lon: g[0], Lat: g[1]}
	}
	return b.pr.Project(g), nil
}

// projectAll projects pts, returning both the pixel points (for area tests)
// and their fixed point version.
func (b *builder) projectAll(pts []orb.Point) (orb.Ring, []fixed.Point26_6, error) {
	px := make(orb.Ring, len(pts))
	fx := make([]fixed.Point26_6, len(pts))
	for i, g := range pts {
		p, err := b.project(g)
		if err != nil {
			return nil, nil, err
		}
		px[i] = p
		fx[i] = fToFixed(p[0], p[1])
	}
	return px, fx, nil
}

func (b *builder) addPoint(g orb.Point) error {
	p, err := b.project(g)
	if err != nil {
		return err
	}
	b.shape.Fill.addCircle(p[0], p[1], b.radius)
	b.shape.Stroke.addCircle(p[0], p[1], b.radius)
	return nil
}

func (b *builder) addLine(ls orb.LineString) error {
	_, pts, err := b.projectAll(ls)
	if err != nil {
		return err
	}
	if len(pts) < 2 {
		return nil
	}
	b.shape.Stroke.addPolyline(pts, false)
	return nil
}

func (b *builder) addPolygon(poly orb.Polygon) error {
	for _, ring := range poly {
		px, pts, err := b.projectAll(ring)
		if err != nil {
			return err
		}
		if len(pts) < 2 {
			continue
		}
		b.shape.Stroke.addPolyline(pts, true)
		if len(pts) >= 3 && math.Abs(planar.Area(px)) > minArea {
			b.shape.Fill.addPolyline(pts, true)
		}
	}
	return nil
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
