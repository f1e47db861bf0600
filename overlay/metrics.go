package overlay

import (
	"github.com/prometheus/client_golang/prometheus"
)

type metricSet struct {
	draws    prometheus.Counter
	duration prometheus.Histogram
	painted  prometheus.Counter
	faults   *prometheus.CounterVec
	hits     *prometheus.CounterVec
}

func newMetricSet(r prometheus.Registerer) *metricSet {
	m := &metricSet{
		draws: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "geoverlay_draws_total",
				Help: "Number of committed frames.",
			},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "geoverlay_draw_duration_seconds",
				Help:    "Time spent painting one frame, id-buffer included.",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 15),
			},
		),
		painted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "geoverlay_features_painted_total",
				Help: "Features sent to the rasterizer, over all frames.",
			},
		),
		faults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "geoverlay_faults_total",
				Help: "Faults reported to the sink, by kind.",
			},
			[]string{"kind"},
		),
		hits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "geoverlay_hit_queries_total",
				Help: "Hit test queries by result.",
			},
			[]string{"result"},
		),
	}
	if r != nil {
		r.MustRegister(m.draws, m.duration, m.painted, m.faults, m.hits)
	}
	return m
}
