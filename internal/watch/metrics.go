package watch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultSkipped = "skipped"
	resultError   = "error"
)

// Metrics holds the Prometheus collectors updated by a Registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	ticks         *prometheus.CounterVec
	delivered     prometheus.Counter
	handlerErrors prometheus.Counter
	active        prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ticks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sitwatch",
			Name:      "ticks_total",
			Help:      "Watch ticks by result.",
		}, []string{"result"}),
		delivered: f.NewCounter(prometheus.CounterOpts{
			Namespace: "sitwatch",
			Name:      "items_delivered_total",
			Help:      "Items handed to watch handlers without error.",
		}),
		handlerErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: "sitwatch",
			Name:      "handler_errors_total",
			Help:      "Handler invocations that returned an error or panicked.",
		}),
		active: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "sitwatch",
			Name:      "active_watches",
			Help:      "Watches currently registered.",
		}),
	}
}

func (m *Metrics) tick(result string) {
	if m != nil {
		m.ticks.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) itemDelivered() {
	if m != nil {
		m.delivered.Inc()
	}
}

func (m *Metrics) handlerFailed() {
	if m != nil {
		m.handlerErrors.Inc()
	}
}

func (m *Metrics) watchAdded() {
	if m != nil {
		m.active.Inc()
	}
}

func (m *Metrics) watchRemoved() {
	if m != nil {
		m.active.Dec()
	}
}
