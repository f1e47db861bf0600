package fault

import "github.com/rs/zerolog"

// Sink receives faults. It must not panic; callers wanting a
// hard-stop policy should record the fault and act on it
// once control returns to them.
type Sink func(f *Fault)

// Report forwards f to the sink, ignoring nil sinks.
func (s Sink) Report(f *Fault) {
	if s != nil {
		s(f)
	}
}

// Multi returns a sink forwarding to every non nil sink, in order.
func Multi(sinks ...Sink) Sink {
	return func(f *Fault) {
		for _, s := range sinks {
			s.Report(f)
		}
	}
}

// LogSink returns a sink writing each fault as a structured warning.
func LogSink(log zerolog.Logger) Sink {
	return func(f *Fault) {
		ev := log.Warn().Str("kind", f.Kind.String()).Str("op", f.Op)
		if f.Layer >= 0 {
			ev = ev.Int("layer", f.Layer)
		}
		if f.Feature >= 0 {
			ev = ev.Int("feature", f.Feature)
		}
		if f.FeatureID != nil {
			ev = ev.Interface("feature_id", f.FeatureID)
		}
		ev.Err(f.Err).Msg("overlay fault")
	}
}

// Collector accumulates faults, for tests and summaries.
type Collector struct {
	Faults []*Fault
}

// Sink returns a sink appending to c.
func (c *Collector) Sink() Sink {
	return func(f *Fault) { c.Faults = append(c.Faults, f) }
}

// Count returns the number of collected faults of the given kind.
func (c *Collector) Count(kind Kind) int {
	n := 0
	for _, f := range c.Faults {
		if f.Kind == kind {
			n++
		}
	}
	return n
}

// Reset drops the collected faults.
func (c *Collector) Reset() { c.Faults = c.Faults[:0] }
