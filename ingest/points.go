package ingest

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Points turns each record into a point feature, located by the numeric
// fields `lonField` and `latField`. The other fields are copied into the
// feature properties.
func Points(records []Record, lonField, latField string) ([]*geojson.Feature, error) {
	out := make([]*geojson.Feature, 0, len(records))
	for i, rec := range records {
		lon, err := coordinate(rec, lonField)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		lat, err := coordinate(rec, latField)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		f := geojson.NewFeature(orb.Point{lon, lat})
		for k, v := range rec {
			if k == lonField || k == latField {
				continue
			}
			f.Properties[k] = v
		}
		out = append(out, f)
	}
	return out, nil
}

func coordinate(rec Record, field string) (float64, error) {
	v, ok := rec[field]
	if !ok {
		return 0, fmt.Errorf("missing field %q", field)
	}
	x, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("field %q is not numeric (%T)", field, v)
	}
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, fmt.Errorf("field %q is not finite", field)
	}
	return x, nil
}
