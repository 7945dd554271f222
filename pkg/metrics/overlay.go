package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	RefreshResultOK         = "ok"
	RefreshResultSkipped    = "skipped"
	RefreshResultDisabled   = "disabled"
	RefreshResultFetchError = "fetch_error"
)

var RefreshTotalMetrics = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "zeus_refresh_total",
		Help: "overlay refreshes by result",
	}, []string{"result"})

var FetchDurationMetrics = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "zeus_fetch_duration_seconds",
		Help:    "latency of the analytics elements request",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	})

var ShapesCreatedMetrics = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "zeus_shapes_created_total",
		Help: "overlay shapes created by category",
	}, []string{"category"})

var ShapesSkippedMetrics = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "zeus_shapes_skipped_total",
		Help: "overlay shapes refused by the host by category",
	}, []string{"category"})

var InteractionsTotalMetrics = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "zeus_interactions_total",
		Help: "drawing events that changed the overlay",
	}, []string{"event"})

var BridgeSessionsMetrics = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "zeus_bridge_sessions",
		Help: "connected chart bridge sessions",
	})

func init() {
	prometheus.MustRegister(
		RefreshTotalMetrics,
		FetchDurationMetrics,
		ShapesCreatedMetrics,
		ShapesSkippedMetrics,
		InteractionsTotalMetrics,
		BridgeSessionsMetrics,
	)
}
