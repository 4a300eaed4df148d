package observability

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/tinct/pkg/template"
)

// inlineLabel replaces the empty template name of inline renders in labels.
const inlineLabel = "<inline>"

// Metrics holds the Prometheus collectors fed by Hooks.
type Metrics struct {
	Renders        *prometheus.CounterVec
	RenderDuration *prometheus.HistogramVec
	ParseErrors    *prometheus.CounterVec
	CacheHits      prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Renders: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tinct_renders_total",
				Help: "Total number of template renders",
			},
			[]string{"template", "outcome"},
		),
		RenderDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tinct_render_duration_seconds",
				Help:    "Duration of template renders",
				Buckets: prometheus.ExponentialBuckets(0.00005, 4, 8),
			},
			[]string{"template"},
		),
		ParseErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tinct_parse_errors_total",
				Help: "Total number of template parse failures by error kind",
			},
			[]string{"template", "kind"},
		),
		CacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "tinct_parse_cache_hits_total",
				Help: "Total number of parses served from the template cache",
			},
		),
	}

	for _, c := range []prometheus.Collector{m.Renders, m.RenderDuration, m.ParseErrors, m.CacheHits} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() Hooks {
	return Hooks{
		OnParse: func(_ context.Context, e *ParseEvent) {
			if e.Cached {
				m.CacheHits.Inc()
			}
			if e.Err == nil {
				return
			}
			kind := "other"
			var perr *template.ParseError
			if errors.As(e.Err, &perr) {
				kind = perr.Kind.String()
			}
			m.ParseErrors.WithLabelValues(label(e.Template), kind).Inc()
		},
		OnRender: func(_ context.Context, e *RenderEvent) {
			name := label(e.Template)
			m.Renders.WithLabelValues(name, e.Outcome()).Inc()
			m.RenderDuration.WithLabelValues(name).Observe(e.Duration.Seconds())
		},
	}
}

func label(name string) string {
	if name == "" {
		return inlineLabel
	}
	return name
}
