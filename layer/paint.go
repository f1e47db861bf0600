package layer

import (
	"image/color"

	"github.com/paulmach/orb/geojson"
)

// DefaultWidth is the stroke width used when a paint does not give one.
const DefaultWidth = 1.

// MiterLimit bounds the length of miter joins, in half stroke widths.
const MiterLimit = 4

// JoinMode type to specify how segments join.
type JoinMode uint8

// JoinMode constants determine how stroke segments bridge the gap at a join.
const (
	Round JoinMode = iota // default value
	Bevel
	Miter
	MiterClip
	Arc
	ArcClip
)

func (s JoinMode) String() string {
	switch s {
	case Round:
		return "Round"
	case Bevel:
		return "Bevel"
	case Miter:
		return "Miter"
	case MiterClip:
		return "MiterClip"
	case Arc:
		return "Arc"
	case ArcClip:
		return "ArcClip"
	default:
		return "<unknown JoinMode>"
	}
}

// CapMode defines how to draw caps on the ends of lines
type CapMode uint8

const (
	ButtCap CapMode = iota // default value
	SquareCap
	RoundCap
)

func (c CapMode) String() string {
	switch c {
	case ButtCap:
		return "ButtCap"
	case SquareCap:
		return "SquareCap"
	case RoundCap:
		return "RoundCap"
	default:
		return "<unknown CapMode>"
	}
}

// Paint is the resolved style of one feature.
// The zero value draws nothing.
type Paint struct {
	Fill   color.Color // nil disables filling
	Stroke color.Color // nil disables stroking
	Width  float64     // stroke width, in pixels
	Radius float64     // radius of point markers, in pixels
	Join   JoinMode
	Cap    CapMode
	Dash   []float64 // dash pattern in pixels (nil for a solid line)
	Hidden bool
}

// Draws returns true if painting with p has a visible effect.
func (p Paint) Draws() bool {
	return !p.Hidden && (p.Fill != nil || p.Stroke != nil)
}

// StrokeWidth returns the stroke width, with a default of DefaultWidth.
func (p Paint) StrokeWidth() float64 {
	if p.Width <= 0 {
		return DefaultWidth
	}
	return p.Width
}

// StyleFunc resolves the paint of a feature at a zoom level.
// It must be pure: the result is cached and only depends on its arguments.
type StyleFunc func(f *geojson.Feature, zoom float64) (Paint, error)

// Static returns a style painting every feature with p.
func Static(p Paint) StyleFunc {
	return func(*geojson.Feature, float64) (Paint, error) { return p, nil }
}

// ByProperty returns a style choosing the paint from the value
// of the property `key`, falling back to `def`.
// GeoJSON numbers are decoded as float64, so numeric keys of `m`
// should be float64 too.
func ByProperty(key string, m map[interface{}]Paint, def Paint) StyleFunc {
	return func(f *geojson.Feature, _ float64) (Paint, error) {
		if f == nil {
			return def, nil
		}
		switch v := f.Properties[key].(type) {
		case string, float64, bool, int:
			if p, ok := m[v]; ok {
				return p, nil
			}
		}
		return def, nil
	}
}
