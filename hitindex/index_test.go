package hitindex

import (
	"image"
	"testing"
)

func TestTopmostWins(t *testing.T) {
	idx := New(10, 10)
	bottom := idx.Assign(Entry{Layer: 1, Feature: 4})
	top := idx.Assign(Entry{Layer: 0, Feature: 0})
	for x := 0; x < 6; x++ {
		idx.Mark(bottom, x, 5)
	}
	for x := 4; x < 10; x++ {
		idx.Mark(top, x, 5)
	}

	for _, c := range []struct {
		p    image.Point
		want Entry
		ok   bool
	}{
		{image.Pt(0, 5), Entry{1, 4}, true},
		{image.Pt(5, 5), Entry{0, 0}, true},
		{image.Pt(9, 5), Entry{0, 0}, true},
		{image.Pt(5, 6), Entry{}, false},
		{image.Pt(-1, 5), Entry{}, false},
		{image.Pt(5, 10), Entry{}, false},
	} {
		got, ok := idx.Query(c.p)
		if ok != c.ok || got != c.want {
			t.Errorf("query %v: expected %v %v, got %v %v", c.p, c.want, c.ok, got, ok)
		}
	}
}

func TestReset(t *testing.T) {
	idx := New(4, 4)
	id := idx.Assign(Entry{Layer: 2})
	idx.Mark(id, 1, 1)
	idx.Mark(id, 7, 7) // ignored
	idx.MarkDegenerate(Entry{Layer: 3})

	idx.Reset(3, 2)
	if w, h := idx.Size(); w != 3 || h != 2 {
		t.Errorf("unexpected size %dx%d", w, h)
	}
	if idx.Len() != 0 || len(idx.Degenerate()) != 0 {
		t.Error("ids should be forgotten")
	}
	if _, ok := idx.Query(image.Pt(1, 1)); ok {
		t.Error("buffer should be cleared")
	}

	if got := idx.Assign(Entry{}); got != 1 {
		t.Errorf("ids should restart at 1, got %d", got)
	}
}

func TestImage(t *testing.T) {
	idx := New(3, 1)
	a, b := idx.Assign(Entry{}), idx.Assign(Entry{Feature: 1})
	idx.Mark(a, 0, 0)
	idx.Mark(b, 1, 0)
	img := idx.Image()
	if img.RGBAAt(2, 0).A != 0 {
		t.Error("background should be transparent")
	}
	if img.RGBAAt(0, 0) == img.RGBAAt(1, 0) {
		t.Error("ids should have distinct colors")
	}
}
