package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics holds the Prometheus collectors, registered on a private registry
// so multiple server instances never collide
type metrics struct {
	registry     *prometheus.Registry
	refreshTotal *prometheus.CounterVec
	ingestTotal  *prometheus.CounterVec
	eventsLoaded prometheus.Gauge
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	return &metrics{
		registry: reg,
		refreshTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "eventscope_refresh_total",
			Help: "Feed refreshes by result",
		}, []string{"result"}),
		ingestTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "eventscope_ingest_total",
			Help: "Backend ingestion triggers by result",
		}, []string{"result"}),
		eventsLoaded: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "eventscope_events_loaded",
			Help: "Events in the last successful fetch",
		}),
	}
}
