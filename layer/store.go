// Package layer holds the ordered list of feature layers given
// by the caller, and indexes them for viewport queries.
package layer

import (
	"math"
	"sort"

	"github.com/benoitkugler/geoverlay/fault"
	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Layer is one group of features sharing a style function.
// Its position in the slice given to Store.Update is its index,
// index 0 being drawn on top.
// Features are referenced, never copied nor modified.
type Layer struct {
	Features []*geojson.Feature
	Style    StyleFunc
}

// minimum extent of an indexed rectangle, in degrees (~11 m at the equator)
const epsilon = 0.0001

// indexedFeature wraps a feature position for R-tree storage.
type indexedFeature struct {
	index int
	rect  rtreego.Rect
}

// Bounds implements rtreego.Spatial interface.
func (f *indexedFeature) Bounds() rtreego.Rect { return f.rect }

// toRect returns the R-tree rectangle of b, with a minimal size
// since R-tree requires non-zero dimensions.
func toRect(b orb.Bound) (rtreego.Rect, error) {
	point := rtreego.Point{b.Min[0], b.Min[1]}
	lonLength := math.Max(b.Max[0]-b.Min[0], epsilon)
	latLength := math.Max(b.Max[1]-b.Min[1], epsilon)
	return rtreego.NewRect(point, []float64{lonLength, latLength})
}

// featureBound returns false if the feature can't be indexed.
func featureBound(f *geojson.Feature) (orb.Bound, bool) {
	if f == nil || f.Geometry == nil {
		return orb.Bound{}, false
	}
	b := f.Geometry.Bound()
	if b.IsEmpty() {
		return b, false
	}
	for _, v := range [...]float64{b.Min[0], b.Min[1], b.Max[0], b.Max[1]} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return b, false
		}
	}
	return b, true
}

// indexed is a valid layer with its spatial index.
type indexed struct {
	pos   int
	layer Layer
	tree  *rtreego.Rtree // nil when no feature could be indexed
	// features with no usable bounds, always returned by queries,
	// so that painting reports them
	unindexed []int
}

func newIndexed(pos int, l Layer) *indexed {
	out := &indexed{pos: pos, layer: l}
	var items []*indexedFeature
	for i, f := range l.Features {
		b, ok := featureBound(f)
		if !ok {
			out.unindexed = append(out.unindexed, i)
			continue
		}
		rect, err := toRect(b)
		if err != nil {
			out.unindexed = append(out.unindexed, i)
			continue
		}
		items = append(items, &indexedFeature{index: i, rect: rect})
	}
	if len(items) != 0 {
		// 2D, min=25 children, max=50 children
		out.tree = rtreego.NewTree(2, 25, 50)
		for _, it := range items {
			out.tree.Insert(it)
		}
	}
	return out
}

func (l *indexed) visible(b orb.Bound) []int {
	out := append([]int(nil), l.unindexed...)
	if l.tree != nil {
		query, err := toRect(b)
		if err != nil { // invalid query, degrade to every feature
			return l.all()
		}
		for _, sp := range l.tree.SearchIntersect(query) {
			out = append(out, sp.(*indexedFeature).index)
		}
	}
	sort.Ints(out)
	return out
}

func (l *indexed) all() []int {
	out := make([]int, len(l.layer.Features))
	for i := range out {
		out[i] = i
	}
	return out
}

// Snapshot is an immutable view of the layers after one update.
type Snapshot struct {
	Generation uint64
	total      int        // number of layers given by the caller, valid or not
	layers     []*indexed // valid layers, sorted by position
}

// Positions returns the caller indices of the valid layers, in ascending order.
func (s *Snapshot) Positions() []int {
	out := make([]int, len(s.layers))
	for i, l := range s.layers {
		out[i] = l.pos
	}
	return out
}

// Total returns the number of layers of the update, including
// the malformed ones.
func (s *Snapshot) Total() int { return s.total }

func (s *Snapshot) find(pos int) *indexed {
	i := sort.Search(len(s.layers), func(i int) bool { return s.layers[i].pos >= pos })
	if i < len(s.layers) && s.layers[i].pos == pos {
		return s.layers[i]
	}
	return nil
}

// Layer returns the valid layer at index `pos`.
func (s *Snapshot) Layer(pos int) (Layer, bool) {
	l := s.find(pos)
	if l == nil {
		return Layer{}, false
	}
	return l.layer, true
}

// Visible returns the indices, in ascending order, of the features of
// layer `pos` which may intersect `b`. Features without usable bounds
// are always included.
func (s *Snapshot) Visible(pos int, b orb.Bound) []int {
	l := s.find(pos)
	if l == nil {
		return nil
	}
	return l.visible(b)
}

// Feature returns the feature at index `feature` of the layer `pos`.
func (s *Snapshot) Feature(pos, feature int) (*geojson.Feature, bool) {
	l := s.find(pos)
	if l == nil || feature < 0 || feature >= len(l.layer.Features) {
		return nil, false
	}
	return l.layer.Features[feature], true
}

// Store replaces and indexes the layer list.
type Store struct {
	onFault    fault.Sink
	generation uint64
	current    *Snapshot
}

// NewStore returns an empty store, reporting malformed layers to onFault.
func NewStore(onFault fault.Sink) *Store {
	return &Store{onFault: onFault, current: &Snapshot{}}
}

// Update replaces the whole layer list and returns the new snapshot.
// Malformed layers are reported once each and dropped; the other
// layers keep their caller index.
func (st *Store) Update(layers []Layer) *Snapshot {
	st.generation++
	snap := &Snapshot{Generation: st.generation, total: len(layers)}
	for pos, l := range layers {
		var err error
		switch {
		case l.Style == nil:
			err = fault.ErrMissingStyle
		case l.Features == nil:
			err = fault.ErrMissingFeatures
		}
		if err != nil {
			st.onFault.Report(fault.InLayer(fault.SpecFault, "update", pos, err))
			continue
		}
		snap.layers = append(snap.layers, newIndexed(pos, l))
	}
	st.current = snap
	return snap
}

// Current returns the last snapshot. Before the first update,
// it is empty.
func (st *Store) Current() *Snapshot { return st.current }
