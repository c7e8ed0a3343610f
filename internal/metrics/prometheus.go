package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	JobsSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "veriscan_jobs_submitted_total",
			Help: "Total jobs admitted at intake",
		},
		[]string{"status"},
	)

	JobsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "veriscan_jobs_processed_total",
			Help: "Total jobs drained by the worker",
		},
		[]string{"result"},
	)

	QueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "veriscan_queue_depth",
			Help: "Jobs currently waiting in the intake queue",
		},
	)

	VerdictTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "veriscan_verdicts_total",
			Help: "Final verdicts emitted, by outcome",
		},
		[]string{"verdict"},
	)

	EvidenceLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "veriscan_evidence_latency_seconds",
			Help:    "Outbound evidence call duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"source"},
	)

	EvidenceFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "veriscan_evidence_failures_total",
			Help: "Evidence calls that produced no signal",
		},
		[]string{"source", "reason"},
	)

	ResolverRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "veriscan_resolver_requests_total",
			Help: "Content resolver strategy attempts",
		},
		[]string{"strategy", "outcome"},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "veriscan_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "veriscan_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"cache_type"},
	)
)

func Init() {
	prometheus.MustRegister(JobsSubmitted)
	prometheus.MustRegister(JobsProcessed)
	prometheus.MustRegister(QueueDepth)
	prometheus.MustRegister(VerdictTotal)
	prometheus.MustRegister(EvidenceLatency)
	prometheus.MustRegister(EvidenceFailures)
	prometheus.MustRegister(ResolverRequests)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
