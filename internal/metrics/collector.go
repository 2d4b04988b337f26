package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Collector aggregates the Prometheus metrics of the inventory service:
// HTTP traffic plus the registry's own mutation and audit counters.
type Collector struct {
	// HTTP
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Registry
	extensionsRegistered prometheus.Gauge
	operationsBound      prometheus.Gauge
	mutationsTotal       *prometheus.CounterVec
	rebindRejections     prometheus.Counter

	// Dispatch
	resolvesTotal *prometheus.CounterVec

	// Consistency audit
	verifyRuns       prometheus.Counter
	verifyMismatches prometheus.Gauge

	logger *zap.Logger
}

// NewCollector creates and registers all collectors under the given
// namespace.
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	c.httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	c.extensionsRegistered = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "registry_extensions",
			Help:      "Number of currently registered extensions",
		},
	)

	c.operationsBound = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "registry_operations_bound",
			Help:      "Number of operation identifiers currently bound in the dispatch table",
		},
	)

	c.mutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registry_mutations_total",
			Help:      "Registry mutations by kind and outcome",
		},
		[]string{"mutation", "status"},
	)

	c.rebindRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guard_rebind_rejections_total",
			Help:      "Mutations rejected by the upgrade guard's direct-rebind rule",
		},
	)

	c.resolvesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_resolves_total",
			Help:      "Dispatch table resolutions by outcome",
		},
		[]string{"outcome"},
	)

	c.verifyRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verify_runs_total",
			Help:      "Consistency audits executed",
		},
	)

	c.verifyMismatches = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "verify_mismatches",
			Help:      "Mismatched (operation, extension) pairs in the last consistency audit",
		},
	)

	c.logger.Info("metrics collector initialized", zap.String("namespace", namespace))
	return c
}

// RecordHTTPRequest records a completed HTTP request.
func (c *Collector) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	c.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordMutation records a registry mutation attempt.
func (c *Collector) RecordMutation(mutation string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.mutationsTotal.WithLabelValues(mutation, status).Inc()
}

// RecordRebindRejection counts a DIRECT_REBIND_REJECTED outcome.
func (c *Collector) RecordRebindRejection() {
	c.rebindRejections.Inc()
}

// RecordResolve records a dispatch resolution.
func (c *Collector) RecordResolve(bound bool) {
	outcome := "bound"
	if !bound {
		outcome = "unbound"
	}
	c.resolvesTotal.WithLabelValues(outcome).Inc()
}

// RecordVerify records a consistency audit run and its mismatch count.
func (c *Collector) RecordVerify(mismatches int) {
	c.verifyRuns.Inc()
	c.verifyMismatches.Set(float64(mismatches))
}

// SetInventorySize updates the extension and bound-operation gauges.
func (c *Collector) SetInventorySize(extensions, operations int) {
	c.extensionsRegistered.Set(float64(extensions))
	c.operationsBound.Set(float64(operations))
}
