// Package fault defines the faults reported by the overlay.
//
// Faults are never returned to, or raised at, the caller of the overlay:
// they are delivered through a single injected Sink, so that one bad
// feature or one late host callback never interrupts the host's own
// event processing.
package fault

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a fault.
type Kind uint8

const (
	// SpecFault is a malformed layer or style (missing style function,
	// features not a sequence, style returning an error).
	SpecFault Kind = iota + 1
	// GeometryFault is an unprojectable or unsupported feature geometry.
	GeometryFault
	// UsageFault is an API call made outside its valid state.
	UsageFault
	// HostFault is a host failing to report its camera.
	HostFault
)

func (k Kind) String() string {
	switch k {
	case SpecFault:
		return "spec"
	case GeometryFault:
		return "geometry"
	case UsageFault:
		return "usage"
	case HostFault:
		return "host"
	default:
		return "<unknown Kind>"
	}
}

var (
	ErrMissingStyle    = errors.New("layer has no style function")
	ErrMissingFeatures = errors.New("layer features are not a sequence")
	ErrNotBound        = errors.New("overlay is not bound to a map")
	ErrAlreadyBound    = errors.New("overlay is already bound to a map")
	ErrDisposed        = errors.New("overlay is disposed")
)

// Fault describes one failure, located as precisely as possible.
// Layer and Feature are -1 when they do not apply.
type Fault struct {
	Kind      Kind
	Op        string      // operation during which the fault happened
	Layer     int         // caller supplied layer index
	Feature   int         // index of the feature in its layer
	FeatureID interface{} // ID of the GeoJSON feature, if any
	Err       error
}

// New returns a fault not attached to any layer or feature.
func New(kind Kind, op string, err error) *Fault {
	return &Fault{Kind: kind, Op: op, Layer: -1, Feature: -1, Err: err}
}

// InLayer returns a fault attached to the layer at index `layer`.
func InLayer(kind Kind, op string, layer int, err error) *Fault {
	f := New(kind, op, err)
	f.Layer = layer
	return f
}

// InFeature returns a fault attached to one feature of a layer.
func InFeature(kind Kind, op string, layer, feature int, id interface{}, err error) *Fault {
	f := InLayer(kind, op, layer, err)
	f.Feature = feature
	f.FeatureID = id
	return f
}

func (f *Fault) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s fault", f.Kind)
	if f.Op != "" {
		fmt.Fprintf(&b, " in %s", f.Op)
	}
	if f.Layer >= 0 {
		fmt.Fprintf(&b, " (layer %d", f.Layer)
		if f.Feature >= 0 {
			fmt.Fprintf(&b, ", feature %d", f.Feature)
			if f.FeatureID != nil {
				fmt.Fprintf(&b, " id=%v", f.FeatureID)
			}
		}
		b.WriteString(")")
	}
	if f.Err != nil {
		fmt.Fprintf(&b, ": %v", f.Err)
	}
	return b.String()
}

func (f *Fault) Unwrap() error { return f.Err }
