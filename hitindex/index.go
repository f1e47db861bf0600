// Package hitindex implements the id-buffer used to resolve
// a screen pixel to the feature drawn there.
//
// Each painted feature receives a numeric id, written in every pixel
// it covers. Later writes overwrite earlier ones, so the feature drawn
// last, that is the topmost, wins. Querying a pixel is a lookup.
package hitindex

import (
	"image"
	"image/color"
)

// Background is the id of pixels covered by no feature.
const Background uint32 = 0

// Entry locates a feature: caller layer index and
// feature index in that layer.
type Entry struct {
	Layer, Feature int
}

// Index is an id-buffer with its id table.
// It is fully rebuilt at each draw.
type Index struct {
	width, height int
	ids           []uint32 // row major, Background where nothing is painted
	entries       []Entry  // entries[id-1]

	degenerate []Entry // painted features covering no pixel
}

// New returns an empty index of the given size.
func New(width, height int) *Index {
	var idx Index
	idx.Reset(width, height)
	return &idx
}

// Reset clears the buffer, resizing it if needed, and forgets every id.
func (idx *Index) Reset(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	n := width * height
	if cap(idx.ids) >= n {
		idx.ids = idx.ids[:n]
		for i := range idx.ids {
			idx.ids[i] = Background
		}
	} else {
		idx.ids = make([]uint32, n)
	}
	idx.width, idx.height = width, height
	idx.entries = idx.entries[:0]
	idx.degenerate = idx.degenerate[:0]
}

// Size returns the buffer dimensions.
func (idx *Index) Size() (width, height int) { return idx.width, idx.height }

// Assign returns a new id for `e`. Ids start at 1.
func (idx *Index) Assign(e Entry) uint32 {
	idx.entries = append(idx.entries, e)
	return uint32(len(idx.entries))
}

// Mark writes `id` at pixel (x, y). Out of bounds pixels are ignored.
func (idx *Index) Mark(id uint32, x, y int) {
	if x < 0 || y < 0 || x >= idx.width || y >= idx.height {
		return
	}
	idx.ids[y*idx.width+x] = id
}

// MarkDegenerate records a feature which was painted but has no
// hit region, such as a zero area polygon without stroke.
func (idx *Index) MarkDegenerate(e Entry) {
	idx.degenerate = append(idx.degenerate, e)
}

// Degenerate returns the features recorded by MarkDegenerate,
// in painting order.
func (idx *Index) Degenerate() []Entry { return idx.degenerate }

// Len returns the number of assigned ids.
func (idx *Index) Len() int { return len(idx.entries) }

// ID returns the raw id at pixel p, or Background if p is out of bounds.
func (idx *Index) ID(p image.Point) uint32 {
	if p.X < 0 || p.Y < 0 || p.X >= idx.width || p.Y >= idx.height {
		return Background
	}
	return idx.ids[p.Y*idx.width+p.X]
}

// Query returns the feature drawn on top at pixel p.
func (idx *Index) Query(p image.Point) (Entry, bool) {
	id := idx.ID(p)
	if id == Background || int(id) > len(idx.entries) {
		return Entry{}, false
	}
	return idx.entries[id-1], true
}

// Image returns a debug view of the buffer: each id is spread on
// the RGB channels, and the background is transparent.
func (idx *Index) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, idx.width, idx.height))
	for i, id := range idx.ids {
		if id == Background {
			continue
		}
		img.SetRGBA(i%idx.width, i/idx.width, idColor(id))
	}
	return img
}

// idColor scrambles the id so that neighbouring ids
// get distinct colors.
func idColor(id uint32) color.RGBA {
	h := id * 2654435761 // Knuth multiplicative hash
	return color.RGBA{R: uint8(h >> 24), G: uint8(h >> 16), B: uint8(h >> 8), A: 0xff}
}
