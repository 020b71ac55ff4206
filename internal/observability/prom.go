package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type Prom struct {
	RequestsTotal    *prometheus.CounterVec
	RequestsDuration *prometheus.HistogramVec
	InFlight         *prometheus.GaugeVec

	// Store (key-value backend)
	StoreOpDuration *prometheus.HistogramVec
	StoreErrsTotal  *prometheus.CounterVec

	// Analysis pipeline
	AnalysisDuration *prometheus.HistogramVec
	AnalysisResults  *prometheus.CounterVec
	UploadsInFlight  prometheus.Gauge
}

func NewProm(reg prometheus.Registerer) *Prom {
	p := &Prom{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tumorvision",
				Name:      "http_requests_total",
				Help:      "Total HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),
		RequestsDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "tumorvision",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency distributions.",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"method", "route", "status"},
		),
		InFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "tumorvision",
				Name:      "http_in_flight_requests",
				Help:      "Current number of in-flight HTTP requests.",
			},
			[]string{"method", "route"},
		),
		StoreOpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "tumorvision",
				Subsystem: "store",
				Name:      "op_duration_seconds",
				Help:      "Key-value store operation latency (logical op).",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5, 1},
			},
			[]string{"op", "status"},
		),
		StoreErrsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tumorvision",
				Subsystem: "store",
				Name:      "errors_total",
				Help:      "Store errors by logical op and class.",
			},
			[]string{"op", "class"},
		),
		AnalysisDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "tumorvision",
				Subsystem: "analysis",
				Name:      "duration_seconds",
				Help:      "End-to-end pipeline duration by outcome scenario.",
				Buckets:   []float64{0.5, 1, 2, 3, 4, 5, 7.5, 10, 15, 30},
			},
			[]string{"scenario"},
		),
		AnalysisResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tumorvision",
				Subsystem: "analysis",
				Name:      "results_total",
				Help:      "Completed analyses by outcome scenario.",
			},
			[]string{"scenario"},
		),
		UploadsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "tumorvision",
				Subsystem: "analysis",
				Name:      "uploads_in_flight",
				Help:      "Current number of running upload/analysis pipelines.",
			},
		),
	}
	reg.MustRegister(
		p.RequestsTotal, p.RequestsDuration, p.InFlight,
		p.StoreOpDuration, p.StoreErrsTotal,
		p.AnalysisDuration, p.AnalysisResults, p.UploadsInFlight,
	)

	return p
}

func (p *Prom) GinHandleMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		// route template is only available after routing; best effort:
		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}

		method := ctx.Request.Method
		p.InFlight.WithLabelValues(method, route).Inc()
		defer p.InFlight.WithLabelValues(method, route).Dec()
		ctx.Next()

		status := strconv.Itoa(ctx.Writer.Status())
		secs := time.Since(start).Seconds()

		p.RequestsTotal.WithLabelValues(method, route, status).Inc()
		p.RequestsDuration.WithLabelValues(method, route, status).Observe(secs)
	}
}
