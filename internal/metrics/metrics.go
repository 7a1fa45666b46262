package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// GatewayOperation identifies the gateway method being instrumented.
type GatewayOperation string

const (
	// GatewayOperationRead records gateway reads.
	GatewayOperationRead GatewayOperation = "read"
	// GatewayOperationWrite records gateway writes.
	GatewayOperationWrite GatewayOperation = "write"
)

// ReadOutcome captures how a gateway read was satisfied.
type ReadOutcome string

const (
	// ReadHit indicates the read was served from the cache.
	ReadHit ReadOutcome = "hit"
	// ReadMiss indicates the read reached the record store and succeeded.
	ReadMiss ReadOutcome = "miss"
	// ReadError indicates the read failed after exhausting its attempts.
	ReadError ReadOutcome = "error"
)

// WriteOutcome captures the result of a gateway write.
type WriteOutcome string

const (
	// WriteOK indicates the write succeeded and the cache was cleared.
	WriteOK WriteOutcome = "ok"
	// WriteError indicates the write failed after exhausting its attempts.
	WriteError WriteOutcome = "error"
)

// Recorder publishes Prometheus metrics for gateway and HTTP activity.
type Recorder struct {
	gatherer prometheus.Gatherer
	handler  http.Handler

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec

	gatewayReads         *prometheus.CounterVec
	gatewayWrites        *prometheus.CounterVec
	gatewayRetries       *prometheus.CounterVec
	gatewayInvalidations prometheus.Counter
	gatewayLatency       *prometheus.HistogramVec
	cacheErrors          *prometheus.CounterVec
}

// NewRecorder constructs a Prometheus-backed Recorder. When reg is nil a dedicated
// registry is created so multiple recorders can coexist without conflicting with
// the global default registerer.
func NewRecorder(reg *prometheus.Registry) *Recorder {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	reg.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "innkeeper",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total API requests served.",
	}, []string{"route", "method", "status_code"})

	httpLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "innkeeper",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Latency distribution for API requests.",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"route", "method"})

	gatewayReads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "innkeeper",
		Subsystem: "gateway",
		Name:      "reads_total",
		Help:      "Gateway reads by key space and result.",
	}, []string{"key_space", "result"})

	gatewayWrites := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "innkeeper",
		Subsystem: "gateway",
		Name:      "writes_total",
		Help:      "Gateway writes by result.",
	}, []string{"result"})

	gatewayRetries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "innkeeper",
		Subsystem: "gateway",
		Name:      "retries_total",
		Help:      "Attempts repeated after a failed record store call.",
	}, []string{"operation"})

	gatewayInvalidations := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "innkeeper",
		Subsystem: "gateway",
		Name:      "invalidations_total",
		Help:      "Full cache clears triggered by successful writes.",
	})

	gatewayLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "innkeeper",
		Subsystem: "gateway",
		Name:      "operation_duration_seconds",
		Help:      "Latency distribution for gateway operations including retries.",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"operation", "result"})

	cacheErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "innkeeper",
		Subsystem: "cache",
		Name:      "backend_errors_total",
		Help:      "Cache backend failures absorbed by the gateway.",
	}, []string{"operation"})

	reg.MustRegister(httpRequests, httpLatency, gatewayReads, gatewayWrites, gatewayRetries, gatewayInvalidations, gatewayLatency, cacheErrors)

	handler := promhttp.HandlerFor(reg, promhttp.HandlerOpts{})

	return &Recorder{
		gatherer:             reg,
		handler:              handler,
		httpRequests:         httpRequests,
		httpLatency:          httpLatency,
		gatewayReads:         gatewayReads,
		gatewayWrites:        gatewayWrites,
		gatewayRetries:       gatewayRetries,
		gatewayInvalidations: gatewayInvalidations,
		gatewayLatency:       gatewayLatency,
		cacheErrors:          cacheErrors,
	}
}

// Handler exposes the Prometheus HTTP handler for the recorder's registry.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "metrics unavailable", http.StatusServiceUnavailable)
		})
	}
	return r.handler
}

// Gatherer returns the underlying Prometheus gatherer for tests and advanced
// integrations.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.gatherer
}

// ObserveHTTP records the outcome and latency of one API request.
func (r *Recorder) ObserveHTTP(route, method string, statusCode int, duration time.Duration) {
	if r == nil {
		return
	}
	routeLabel := normalizeLabel(route)
	methodLabel := normalizeLabel(strings.ToUpper(method))
	statusLabel := strconv.Itoa(statusCode)
	if statusCode <= 0 {
		statusLabel = "unknown"
	}
	r.httpRequests.WithLabelValues(routeLabel, methodLabel, statusLabel).Inc()
	r.httpLatency.WithLabelValues(routeLabel, methodLabel).Observe(duration.Seconds())
}

// ObserveGatewayRead records one gateway read. The key is reduced to its key
// space (the text before the first colon) to bound label cardinality.
func (r *Recorder) ObserveGatewayRead(key string, result ReadOutcome, duration time.Duration) {
	if r == nil {
		return
	}
	resultLabel := string(result)
	if resultLabel == "" {
		resultLabel = string(ReadMiss)
	}
	r.gatewayReads.WithLabelValues(KeySpace(key), resultLabel).Inc()
	r.gatewayLatency.WithLabelValues(string(GatewayOperationRead), resultLabel).Observe(duration.Seconds())
}

// ObserveGatewayWrite records one gateway write.
func (r *Recorder) ObserveGatewayWrite(result WriteOutcome, duration time.Duration) {
	if r == nil {
		return
	}
	resultLabel := string(result)
	if resultLabel == "" {
		resultLabel = string(WriteError)
	}
	r.gatewayWrites.WithLabelValues(resultLabel).Inc()
	r.gatewayLatency.WithLabelValues(string(GatewayOperationWrite), resultLabel).Observe(duration.Seconds())
}

// ObserveGatewayRetry records an attempt repeated after a failure.
func (r *Recorder) ObserveGatewayRetry(operation GatewayOperation) {
	if r == nil {
		return
	}
	opLabel := string(operation)
	if opLabel == "" {
		opLabel = string(GatewayOperationRead)
	}
	r.gatewayRetries.WithLabelValues(opLabel).Inc()
}

// ObserveGatewayInvalidation records a full cache clear.
func (r *Recorder) ObserveGatewayInvalidation() {
	if r == nil {
		return
	}
	r.gatewayInvalidations.Inc()
}

// ObserveCacheError records a cache backend failure for the named operation
// ("lookup", "store", "delete", "clear").
func (r *Recorder) ObserveCacheError(operation string) {
	if r == nil {
		return
	}
	r.cacheErrors.WithLabelValues(normalizeLabel(operation)).Inc()
}

// KeySpace returns the collection portion of a cache key ("rooms:42" -> "rooms").
func KeySpace(key string) string {
	space, _, _ := strings.Cut(key, ":")
	return normalizeLabel(space)
}

func normalizeLabel(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "unknown"
	}
	return trimmed
}
