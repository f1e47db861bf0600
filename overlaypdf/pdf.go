// Implements a PDF backend to export overlay frames as vector paths,
// by wrapping github.com/jung-kurt/gofpdf.
//
// The PDF output has no id-buffer: it is meant for printing or archiving
// the frame drawn on screen.
package overlaypdf

import (
	"image/color"
	"io"

	"github.com/benoitkugler/geoverlay/geopath"
	"github.com/benoitkugler/geoverlay/hitindex"
	"github.com/benoitkugler/geoverlay/layer"
	"github.com/benoitkugler/geoverlay/render"
	"github.com/jung-kurt/gofpdf"
	"golang.org/x/image/math/fixed"
)

var _ render.Driver = (*Renderer)(nil) // assert interface conformance

// Renderer writes each frame on a new page, sized to the viewport,
// one pixel being one point.
type Renderer struct {
	pdf     *gofpdf.Fpdf
	painted int
}

// NewRenderer returns a renderer which will
// write to the given `pdf`.
func NewRenderer(pdf *gofpdf.Fpdf) *Renderer {
	return &Renderer{pdf: pdf}
}

// New returns a renderer writing to a new document.
func New() *Renderer {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	return NewRenderer(pdf)
}

// implements the path commands
type pather struct {
	pdf *gofpdf.Fpdf
}

func fixedTof(a fixed.Point26_6) (float64, float64) {
	return float64(a.X) / 64, float64(a.Y) / 64
}

func (p pather) Start(a fixed.Point26_6) {
	p.pdf.MoveTo(fixedTof(a))
}

func (p pather) Line(b fixed.Point26_6) {
	p.pdf.LineTo(fixedTof(b))
}

func (p pather) CubeBezier(b fixed.Point26_6, c fixed.Point26_6, d fixed.Point26_6) {
	cx0, cy0 := fixedTof(b)
	cx1, cy1 := fixedTof(c)
	x, y := fixedTof(d)
	p.pdf.CurveBezierCubicTo(cx0, cy0, cx1, cy1, x, y)
}

func (p pather) Stop(closeLoop bool) {
	if closeLoop {
		p.pdf.ClosePath()
	}
}

// Clear implements render.Driver, by starting a new page.
func (rd *Renderer) Clear(width, height int) {
	rd.pdf.AddPageFormat("P", gofpdf.SizeType{Wd: float64(width), Ht: float64(height)})
}

func toNRGBA(c color.Color) color.NRGBA {
	return color.NRGBAModel.Convert(c).(color.NRGBA)
}

var (
	joinStyles = [...]string{
		layer.Round:     "round",
		layer.Bevel:     "bevel",
		layer.Miter:     "miter",
		layer.MiterClip: "miter",
		layer.Arc:       "miter",
		layer.ArcClip:   "miter",
	}
	capStyles = [...]string{
		layer.ButtCap:   "butt",
		layer.SquareCap: "square",
		layer.RoundCap:  "round",
	}
)

// Paint implements render.Driver. The fill uses the even-odd rule,
// as the raster backend does.
func (rd *Renderer) Paint(_ hitindex.Entry, shape geopath.Shape, p layer.Paint) error {
	path := pather{pdf: rd.pdf}
	if p.Fill != nil && len(shape.Fill) != 0 {
		if c := toNRGBA(p.Fill); c.A != 0 {
			rd.pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
			rd.pdf.SetAlpha(float64(c.A)/255, "")
			shape.Fill.AddTo(path, fixed.Point26_6{})
			rd.pdf.DrawPath("f*")
		}
	}
	if p.Stroke != nil && len(shape.Stroke) != 0 {
		if c := toNRGBA(p.Stroke); c.A != 0 {
			rd.pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
			rd.pdf.SetAlpha(float64(c.A)/255, "")
			rd.pdf.SetLineWidth(p.StrokeWidth())
			join, capStyle := "round", "butt"
			if int(p.Join) < len(joinStyles) {
				join = joinStyles[p.Join]
			}
			if int(p.Cap) < len(capStyles) {
				capStyle = capStyles[p.Cap]
			}
			rd.pdf.SetLineJoinStyle(join)
			rd.pdf.SetLineCapStyle(capStyle)
			rd.pdf.SetDashPattern(p.Dash, 0)
			shape.Stroke.AddTo(path, fixed.Point26_6{})
			rd.pdf.DrawPath("D")
		}
	}
	rd.painted++
	return rd.pdf.Error()
}

// Painted returns the number of features written so far.
func (rd *Renderer) Painted() int { return rd.painted }

// Output writes the document to w and closes it.
func (rd *Renderer) Output(w io.Writer) error { return rd.pdf.Output(w) }

// WriteFile writes the document to the given file and closes it.
func (rd *Renderer) WriteFile(filename string) error { return rd.pdf.OutputFileAndClose(filename) }
