package main

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/benoitkugler/geoverlay/layer"
	"github.com/paulmach/orb/geojson"
	"golang.org/x/image/colornames"
)

// palette gives each layer a default fill, by position.
var palette = [...]color.NRGBA{
	{R: 0xe4, G: 0x1a, B: 0x1c, A: 0xb0},
	{R: 0x37, G: 0x7e, B: 0xb8, A: 0xb0},
	{R: 0x4d, G: 0xaf, B: 0x4a, A: 0xb0},
	{R: 0x98, G: 0x4e, B: 0xa3, A: 0xb0},
	{R: 0xff, G: 0x7f, B: 0x00, A: 0xb0},
}

func defaultPaint(pos int) layer.Paint {
	return layer.Paint{
		Fill:   palette[pos%len(palette)],
		Stroke: color.NRGBA{A: 0xff},
		Width:  1.5,
		Radius: 4,
	}
}

// parseColor accepts #rgb, #rrggbb, #rrggbbaa, "none" and the SVG color names.
// "none" returns a nil color.
func parseColor(s string) (color.Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "none" {
		return nil, nil
	}
	if !strings.HasPrefix(s, "#") {
		c, ok := colornames.Map[s]
		if !ok {
			return nil, fmt.Errorf("unknown color %q", s)
		}
		return c, nil
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return nil, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

func withOpacity(c color.Color, opacity float64) color.Color {
	if c == nil {
		return nil
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	if opacity < 0 {
		opacity = 0
	} else if opacity > 1 {
		opacity = 1
	}
	n.A = uint8(float64(n.A)*opacity + 0.5)
	return n
}

func number(v interface{}) (float64, error) {
	switch v := v.(type) {
	case float64:
		return v, nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}

// propertyStyle reads the paint of each feature from its properties
// ("fill", "fill-opacity", "stroke", "stroke-opacity", "stroke-width",
// "radius" and "hidden"), starting from the default paint of the layer.
// An invalid property is a style error.
func propertyStyle(pos int) layer.StyleFunc {
	def := defaultPaint(pos)
	return func(f *geojson.Feature, _ float64) (layer.Paint, error) {
		p := def
		props := f.Properties
		if v, ok := props["fill"].(string); ok {
			c, err := parseColor(v)
			if err != nil {
				return p, fmt.Errorf("fill: %w", err)
			}
			p.Fill = c
		}
		if v, ok := props["stroke"].(string); ok {
			c, err := parseColor(v)
			if err != nil {
				return p, fmt.Errorf("stroke: %w", err)
			}
			p.Stroke = c
		}
		for _, key := range [...]string{"fill-opacity", "stroke-opacity", "stroke-width", "radius"} {
			v, has := props[key]
			if !has {
				continue
			}
			x, err := number(v)
			if err != nil {
				return p, fmt.Errorf("%s: %w", key, err)
			}
			switch key {
			case "fill-opacity":
				p.Fill = withOpacity(p.Fill, x)
			case "stroke-opacity":
				p.Stroke = withOpacity(p.Stroke, x)
			case "stroke-width":
				p.Width = x
			case "radius":
				p.Radius = x
			}
		}
		if v, ok := props["hidden"].(bool); ok {
			p.Hidden = v
		}
		return p, nil
	}
}
