package layer

import (
	"errors"
	"image/color"
	"math"
	"reflect"
	"testing"

	"github.com/benoitkugler/geoverlay/fault"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

var red = color.NRGBA{R: 0xff, A: 0xff}

func points(pts ...orb.Point) []*geojson.Feature {
	out := make([]*geojson.Feature, len(pts))
	for i, p := range pts {
		out[i] = geojson.NewFeature(p)
	}
	return out
}

func TestPartialFailure(t *testing.T) {
	var col fault.Collector
	st := NewStore(col.Sink())
	snap := st.Update([]Layer{
		{Features: points(orb.Point{0, 0}), Style: Static(Paint{Fill: red})},
		{Features: points(orb.Point{1, 1})}, // missing style
		{Features: points(orb.Point{2, 2}), Style: Static(Paint{Fill: red})},
	})
	if len(col.Faults) != 1 {
		t.Fatalf("expected exactly one fault, got %v", col.Faults)
	}
	f := col.Faults[0]
	if f.Kind != fault.SpecFault || f.Layer != 1 || !errors.Is(f, fault.ErrMissingStyle) {
		t.Errorf("unexpected fault %s", f)
	}
	if got := snap.Positions(); !reflect.DeepEqual(got, []int{0, 2}) {
		t.Errorf("expected layers 0 and 2 to survive, got %v", got)
	}
	if snap.Total() != 3 {
		t.Errorf("expected 3 layers in total, got %d", snap.Total())
	}
	if _, ok := snap.Layer(1); ok {
		t.Error("layer 1 should be dropped")
	}
	if f, ok := snap.Feature(2, 0); !ok || f.Point() != (orb.Point{2, 2}) {
		t.Errorf("layer 2 should keep its index, got %v", f)
	}
}

func TestMissingFeatures(t *testing.T) {
	var col fault.Collector
	st := NewStore(col.Sink())
	st.Update([]Layer{
		{Features: nil, Style: Static(Paint{})},
		{Features: []*geojson.Feature{}, Style: Static(Paint{})}, // empty is fine
	})
	if len(col.Faults) != 1 || !errors.Is(col.Faults[0], fault.ErrMissingFeatures) || col.Faults[0].Layer != 0 {
		t.Errorf("unexpected faults %v", col.Faults)
	}
}

func TestGeneration(t *testing.T) {
	st := NewStore(nil)
	if st.Current().Generation != 0 || len(st.Current().Positions()) != 0 {
		t.Fatal("expected an empty initial snapshot")
	}
	layers := []Layer{{Features: points(orb.Point{0, 0}), Style: Static(Paint{})}}
	a := st.Update(layers)
	b := st.Update(layers) // no change detection
	if a.Generation != 1 || b.Generation != 2 || st.Current() != b {
		t.Errorf("unexpected generations %d %d", a.Generation, b.Generation)
	}
}

func TestVisible(t *testing.T) {
	features := points(
		orb.Point{10, 10},
		orb.Point{50, 50},
		orb.Point{11, 9},
		orb.Point{math.NaN(), 0},
	)
	features = append(features,
		nil,
		geojson.NewFeature(orb.LineString{{9, 9}, {80, 80}}),
		&geojson.Feature{}, // no geometry
	)
	st := NewStore(nil)
	snap := st.Update([]Layer{{Features: features, Style: Static(Paint{})}})

	got := snap.Visible(0, orb.Bound{Min: orb.Point{5, 5}, Max: orb.Point{15, 15}})
	// 1 is culled, 3, 4 and 6 are unindexed
	if want := []int{0, 2, 3, 4, 5, 6}; !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	got = snap.Visible(0, orb.Bound{Min: orb.Point{-100, -80}, Max: orb.Point{-90, -70}})
	if want := []int{3, 4, 6}; !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	if snap.Visible(3, orb.Bound{}) != nil {
		t.Error("unknown layer should have no visible feature")
	}
}

func TestVisibleManyFeatures(t *testing.T) {
	var pts []orb.Point
	for i := 0; i < 1000; i++ {
		pts = append(pts, orb.Point{float64(i%100) - 50, float64(i/100) - 5})
	}
	snap := NewStore(nil).Update([]Layer{{Features: points(pts...), Style: Static(Paint{})}})
	got := snap.Visible(0, orb.Bound{Min: orb.Point{-0.5, -0.5}, Max: orb.Point{0.5, 0.5}})
	// only {0, 0}, at index 5*100 + 50
	if want := []int{550}; !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestByProperty(t *testing.T) {
	blue := Paint{Fill: color.NRGBA{B: 0xff, A: 0xff}}
	def := Paint{Fill: red}
	style := ByProperty("kind", map[interface{}]Paint{"lake": blue, 2.: {Hidden: true}}, def)

	f := geojson.NewFeature(orb.Point{})
	for _, c := range []struct {
		value interface{}
		want  Paint
	}{
		{"lake", blue},
		{"road", def},
		{2., Paint{Hidden: true}},
		{[]interface{}{"lake"}, def}, // not hashable
	} {
		f.Properties["kind"] = c.value
		got, err := style(f, 3)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("value %v: expected %v, got %v", c.value, c.want, got)
		}
	}
	if got, _ := style(nil, 0); !reflect.DeepEqual(got, def) {
		t.Errorf("expected default paint for a nil feature")
	}
}

func TestPaint(t *testing.T) {
	if (Paint{}).Draws() || (Paint{Fill: red, Hidden: true}).Draws() || !(Paint{Stroke: red}).Draws() {
		t.Error("unexpected Draws result")
	}
	if (Paint{}).StrokeWidth() != DefaultWidth || (Paint{Width: 3}).StrokeWidth() != 3 {
		t.Error("unexpected stroke width")
	}
	if Miter.String() != "Miter" || RoundCap.String() != "RoundCap" || JoinMode(40).String() != "<unknown JoinMode>" {
		t.Error("unexpected enum names")
	}
}
