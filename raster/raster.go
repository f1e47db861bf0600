// Implements a raster backend to render overlay frames,
// by wrapping rasterx.
//
// Each feature is rasterized once into coverage masks, which are then
// used both to composite the visible canvas and to write the feature id
// into the hit index, so that what is hit is exactly what is seen.
package raster

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/benoitkugler/geoverlay/geopath"
	"github.com/benoitkugler/geoverlay/hitindex"
	"github.com/benoitkugler/geoverlay/layer"
	"github.com/benoitkugler/geoverlay/render"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"
)

var _ render.Driver = (*Renderer)(nil) // assert interface conformance

// HitThreshold is the minimal coverage of a pixel for it to
// resolve to the feature (50%).
const HitThreshold = 0x80

// miter cutoff value for miter, arc, miterclip and arcClip joinModes
const miterLimit = layer.MiterLimit

var (
	joinToJoin = [...]rasterx.JoinMode{
		layer.Round:     rasterx.Round,
		layer.Bevel:     rasterx.Bevel,
		layer.Miter:     rasterx.Miter,
		layer.MiterClip: rasterx.MiterClip,
		layer.Arc:       rasterx.Arc,
		layer.ArcClip:   rasterx.ArcClip,
	}

	capToFunc = [...]rasterx.CapFunc{
		layer.ButtCap:   rasterx.ButtCap,
		layer.SquareCap: rasterx.SquareCap,
		layer.RoundCap:  rasterx.RoundCap,
	}
)

// Renderer owns the visible canvas and the hit index of a frame.
type Renderer struct {
	canvas *image.RGBA
	hits   *hitindex.Index
}

// NewRenderer returns a renderer with an empty canvas of the given size.
func NewRenderer(width, height int) *Renderer {
	rd := &Renderer{hits: hitindex.New(0, 0)}
	rd.Clear(width, height)
	return rd
}

// Image returns the visible canvas. It must not be modified.
func (rd *Renderer) Image() *image.RGBA { return rd.canvas }

// Hits returns the id-buffer built along the canvas.
func (rd *Renderer) Hits() *hitindex.Index { return rd.hits }

// Clear implements render.Driver. The canvas is reallocated
// only when the size changes.
func (rd *Renderer) Clear(width, height int) {
	r := image.Rect(0, 0, width, height)
	if rd.canvas == nil || rd.canvas.Bounds() != r {
		rd.canvas = image.NewRGBA(r)
	} else {
		draw.Draw(rd.canvas, r, image.Transparent, image.Point{}, draw.Src)
	}
	rd.hits.Reset(width, height)
}

// pixelBox returns the pixel rectangle covered by the shape, including
// the stroke and its joins, clipped to the canvas.
func (rd *Renderer) pixelBox(shape geopath.Shape, p layer.Paint) image.Rectangle {
	ext := shape.Extent()
	pad := 1
	if p.Stroke != nil {
		// miter joins may extend up to miterLimit half widths
		pad += int(math.Ceil(p.StrokeWidth() * miterLimit / 2))
	}
	box := image.Rect(ext.Min.X.Floor()-pad, ext.Min.Y.Floor()-pad, ext.Max.X.Ceil()+pad, ext.Max.Y.Ceil()+pad)
	return box.Intersect(rd.canvas.Bounds())
}

// newMask returns a mask sized to box and a scanner drawing into it.
func newMask(box image.Rectangle) (*image.Alpha, *rasterx.ScannerGV) {
	w, h := box.Dx(), box.Dy()
	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, mask, mask.Bounds())
	scanner.SetColor(color.Opaque)
	return mask, scanner
}

func fillMask(path geopath.Path, box image.Rectangle, offset fixed.Point26_6) *image.Alpha {
	mask, scanner := newMask(box)
	filler := rasterx.NewFiller(box.Dx(), box.Dy(), scanner)
	filler.SetWinding(false) // even-odd: holes stay open whatever their orientation
	path.AddTo(filler, offset)
	filler.Draw()
	return mask
}

func strokeMask(path geopath.Path, box image.Rectangle, offset fixed.Point26_6, p layer.Paint) *image.Alpha {
	mask, scanner := newMask(box)
	dasher := rasterx.NewDasher(box.Dx(), box.Dy(), scanner)
	join, capFunc := rasterx.Round, rasterx.ButtCap
	if int(p.Join) < len(joinToJoin) {
		join = joinToJoin[p.Join]
	}
	if int(p.Cap) < len(capToFunc) {
		capFunc = capToFunc[p.Cap]
	}
	dasher.SetStroke(fixed.Int26_6(p.StrokeWidth()*64), fixed.I(miterLimit), capFunc, capFunc,
		rasterx.FlatGap, join, p.Dash, 0)
	path.AddTo(dasher, offset)
	dasher.Draw()
	return mask
}

// Paint implements render.Driver.
// Shapes outside of the canvas are ignored. Shapes on the canvas which
// end up covering no pixel (at the hit threshold) are recorded as
// degenerate.
func (rd *Renderer) Paint(ref hitindex.Entry, shape geopath.Shape, p layer.Paint) error {
	doFill := p.Fill != nil && len(shape.Fill) != 0
	doStroke := p.Stroke != nil && len(shape.Stroke) != 0
	if !doFill && !doStroke {
		rd.hits.MarkDegenerate(ref)
		return nil
	}

	box := rd.pixelBox(shape, p)
	if box.Empty() {
		return nil
	}
	offset := fixed.Point26_6{X: fixed.I(box.Min.X), Y: fixed.I(box.Min.Y)}

	var fm, sm *image.Alpha
	if doFill {
		fm = fillMask(shape.Fill, box, offset)
		draw.DrawMask(rd.canvas, box, image.NewUniform(p.Fill), image.Point{}, fm, image.Point{}, draw.Over)
	}
	if doStroke {
		sm = strokeMask(shape.Stroke, box, offset, p)
		draw.DrawMask(rd.canvas, box, image.NewUniform(p.Stroke), image.Point{}, sm, image.Point{}, draw.Over)
	}

	if !rd.markHits(ref, box, fm, sm) {
		rd.hits.MarkDegenerate(ref)
	}
	return nil
}

// markHits writes the feature id where the union of the fill and stroke
// coverages reaches HitThreshold. It returns false if no pixel qualifies.
func (rd *Renderer) markHits(ref hitindex.Entry, box image.Rectangle, fm, sm *image.Alpha) bool {
	var id uint32
	w, h := box.Dx(), box.Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var f, s int
			if fm != nil {
				f = int(fm.Pix[y*fm.Stride+x])
			}
			if sm != nil {
				s = int(sm.Pix[y*sm.Stride+x])
			}
			if f+s-f*s/0xff < HitThreshold {
				continue
			}
			if id == hitindex.Background {
				id = rd.hits.Assign(ref)
			}
			rd.hits.Mark(id, box.Min.X+x, box.Min.Y+y)
		}
	}
	return id != hitindex.Background
}
