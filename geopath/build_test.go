package geopath

import (
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"
	"golang.org/x/image/math/fixed"
)

// identity projects lon/lat directly to pixels
type identity struct{}

func (identity) Project(g orb.Point) orb.Point { return g }

func TestBuildPoint(t *testing.T) {
	shape, err := Build(orb.Point{50, 40}, identity{}, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(shape.Fill) != 6 || len(shape.Stroke) != 6 {
		t.Fatalf("expected move, 4 cubics and close, got %s", shape.Fill)
	}
	ext := shape.Extent()
	minX, minY := fixedTof(ext.Min)
	maxX, maxY := fixedTof(ext.Max)
	for _, c := range [...][2]float64{{minX, 45}, {minY, 35}, {maxX, 55}, {maxY, 45}} {
		if math.Abs(c[0]-c[1]) > 0.05 {
			t.Errorf("unexpected circle extent %v", ext)
		}
	}
}

func TestBuildPolygon(t *testing.T) {
	tri := orb.Polygon{{{0, 0}, {10, 0}, {0, 10}, {0, 0}}}
	shape, err := Build(tri, identity{}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := shape.Fill.String(), "M0.000,0.000 L10.000,0.000 L0.000,10.000 L0.000,0.000 Z"; got != want {
		t.Errorf("expected fill %s, got %s", want, got)
	}
	if len(shape.Stroke) != len(shape.Fill) {
		t.Errorf("expected polygon ring to be stroked too")
	}
}

func TestBuildDegenerate(t *testing.T) {
	flat := orb.Polygon{{{0, 0}, {10, 0}, {20, 0}, {0, 0}}}
	shape, err := Build(flat, identity{}, 0)
	if err != nil {
		t.Fatalf("zero area polygon must not be an error: %s", err)
	}
	if len(shape.Fill) != 0 {
		t.Errorf("zero area polygon must not be filled, got %s", shape.Fill)
	}
	if len(shape.Stroke) == 0 {
		t.Errorf("zero area polygon outline should still be stroked")
	}

	shape, err = Build(orb.LineString{{1, 1}}, identity{}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !shape.IsEmpty() {
		t.Errorf("single point line should be empty, got %v", shape)
	}
}

func TestBuildErrors(t *testing.T) {
	if _, err := Build(nil, identity{}, 0); !errors.Is(err, ErrEmptyGeometry) {
		t.Errorf("expected ErrEmptyGeometry, got %v", err)
	}

	_, err := Build(orb.LineString{{0, 0}, {math.NaN(), 3}}, identity{}, 0)
	var coordErr *ErrInvalidCoordinate
	if !errors.As(err, &coordErr) {
		t.Fatalf("expected ErrInvalidCoordinate, got %v", err)
	}
	if coordErr.Lat != 3 {
		t.Errorf("unexpected error content %v", coordErr)
	}

	_, err = Build(orb.Collection{orb.Point{1, 1}, nil}, identity{}, 0)
	if !errors.Is(err, ErrEmptyGeometry) {
		t.Errorf("expected ErrEmptyGeometry for nil collection member, got %v", err)
	}
}

func TestBuildCollection(t *testing.T) {
	g := orb.Collection{
		orb.LineString{{0, 0}, {5, 5}},
		orb.MultiPoint{{1, 1}, {2, 2}},
		orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{4, 4}},
	}
	shape, err := Build(g, identity{}, 1)
	if err != nil {
		t.Fatal(err)
	}
	// two circles and the bound ring are fillable, the line is not
	moves := 0
	for _, op := range shape.Fill {
		if _, ok := op.(MoveTo); ok {
			moves++
		}
	}
	if moves != 3 {
		t.Errorf("expected 3 fill subpaths, got %d", moves)
	}
}

func TestExtentHorizontalLine(t *testing.T) {
	shape, err := Build(orb.LineString{{0, 7}, {30, 7}, {60, 7}}, identity{}, 0)
	if err != nil {
		t.Fatal(err)
	}
	ext := shape.Extent()
	if ext.Min.X != 0 || ext.Max.X != 60*64 || ext.Min.Y != 7*64 || ext.Max.Y != 7*64 {
		t.Errorf("unexpected extent %v", ext)
	}
}

func TestExtentCubic(t *testing.T) {
	var p Path
	p.Start(fToFixed(0, 0))
	p.CubeBezier(fToFixed(0, 10), fToFixed(10, 10), fToFixed(10, 0))
	ext := p.Extent()
	_, maxY := fixedTof(ext.Max)
	// the curve peaks at 3/4 of the control points height
	if math.Abs(maxY-7.5) > 0.05 {
		t.Errorf("expected curve top at 7.5, got %f", maxY)
	}
}

type recorder struct {
	ops []string
	pts []fixed.Point26_6
}

func (r *recorder) Start(a fixed.Point26_6)            { r.ops = append(r.ops, "start"); r.pts = append(r.pts, a) }
func (r *recorder) Line(b fixed.Point26_6)             { r.ops = append(r.ops, "line"); r.pts = append(r.pts, b) }
func (r *recorder) CubeBezier(b, c, d fixed.Point26_6) { r.ops = append(r.ops, "cubic"); r.pts = append(r.pts, d) }
func (r *recorder) Stop(closeLoop bool) {
	if closeLoop {
		r.ops = append(r.ops, "close")
	}
}

func TestAddToOffset(t *testing.T) {
	var p Path
	p.addPolyline([]fixed.Point26_6{fToFixed(10, 10), fToFixed(20, 10), fToFixed(20, 20)}, true)

	var rec recorder
	p.AddTo(&rec, fToFixed(10, 10))
	if len(rec.ops) != 4 || rec.ops[3] != "close" {
		t.Fatalf("unexpected operations %v", rec.ops)
	}
	if rec.pts[0] != (fixed.Point26_6{}) || rec.pts[2] != fToFixed(10, 10) {
		t.Errorf("offset not applied: %v", rec.pts)
	}
}
