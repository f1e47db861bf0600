package overlay

import (
	"github.com/benoitkugler/geoverlay/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

type options struct {
	logger         zerolog.Logger
	registerer     prometheus.Registerer
	styleCacheSize int
	cullMargin     float64
}

func defaultOptions() options {
	return options{
		logger:         zerolog.Nop(),
		styleCacheSize: render.DefaultStyleCacheSize,
		cullMargin:     render.DefaultCullMargin,
	}
}

// Option configures a Controller.
type Option func(*options)

// WithLogger sets the logger used for lifecycle and draw events.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithRegisterer registers the overlay metrics on r.
// Without it, metrics are still counted but not exposed.
func WithRegisterer(r prometheus.Registerer) Option {
	return func(o *options) { o.registerer = r }
}

// WithStyleCacheSize sets the number of resolved paints kept between
// draws. Zero disables the cache.
func WithStyleCacheSize(n int) Option {
	return func(o *options) { o.styleCacheSize = n }
}

// WithCullMargin sets the margin, in pixels, around the viewport
// inside which features are still painted.
func WithCullMargin(px float64) Option {
	return func(o *options) { o.cullMargin = px }
}
