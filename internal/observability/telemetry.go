// Package observability provides logging and metrics for LedgerTrace.
package observability

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Adahandles/ledgertrace/internal/config"
)

// Telemetry bundles the service logger and Prometheus metrics.
type Telemetry struct {
	logger  *zap.Logger
	metrics *Metrics
	config  config.TelemetryConfig
}

// Metrics holds Prometheus metrics for LedgerTrace.
type Metrics struct {
	// Analysis metrics
	AnalysesTotal    *prometheus.CounterVec
	AnalysisDuration prometheus.Histogram
	AnomaliesPerRun  prometheus.Histogram

	// Collector metrics
	CollectorDuration *prometheus.HistogramVec
	CollectorFailures *prometheus.CounterVec

	// Signal cache metrics
	CacheLookups *prometheus.CounterVec

	// Export metrics
	ExportsTotal *prometheus.CounterVec

	// Rate limit metrics
	RateLimitRejections *prometheus.CounterVec

	// System metrics
	GoroutineCount prometheus.Gauge
	MemoryUsage    prometheus.Gauge

	// API metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New creates a Telemetry instance from config.
func New(cfg config.TelemetryConfig) (*Telemetry, error) {
	t := &Telemetry{config: cfg}

	logger, err := t.initLogger()
	if err != nil {
		return nil, err
	}
	t.logger = logger

	if cfg.MetricsEnabled {
		t.metrics = initMetrics()
	}

	return t, nil
}

// initLogger initializes structured logging.
func (t *Telemetry) initLogger() (*zap.Logger, error) {
	var cfg zap.Config

	if t.config.LogFormat == "console" {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	switch t.config.LogLevel {
	case "debug":
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "warn":
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	cfg.InitialFields = map[string]interface{}{
		"service":     t.config.ServiceName,
		"environment": t.config.Environment,
	}

	return cfg.Build()
}

// initMetrics registers the Prometheus metrics.
func initMetrics() *Metrics {
	namespace := "ledgertrace"

	return &Metrics{
		AnalysesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "analyses_total",
				Help:      "Total entity analyses by risk tier",
			},
			[]string{"tier"},
		),
		AnalysisDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "analysis_duration_seconds",
				Help:      "End-to-end analysis duration",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
			},
		),
		AnomaliesPerRun: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "anomalies_per_analysis",
				Help:      "Triggered rule count per analysis",
				Buckets:   prometheus.LinearBuckets(0, 2, 9),
			},
		),
		CollectorDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "collector_duration_seconds",
				Help:      "Signal collector duration by source",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
			},
			[]string{"source"},
		),
		CollectorFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "collector_failures_total",
				Help:      "Collector lookups that failed or timed out",
			},
			[]string{"source"},
		),
		CacheLookups: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "signal_cache_lookups_total",
				Help:      "Signal cache lookups by outcome",
			},
			[]string{"outcome"},
		),
		ExportsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "exports_total",
				Help:      "Report exports by format and status",
			},
			[]string{"format", "status"},
		),
		RateLimitRejections: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limit_rejections_total",
				Help:      "Requests rejected by the rate limiter",
			},
			[]string{"endpoint"},
		),
		GoroutineCount: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "goroutine_count",
				Help:      "Current goroutine count",
			},
		),
		MemoryUsage: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "memory_usage_bytes",
				Help:      "Current memory usage in bytes",
			},
		),
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15),
			},
			[]string{"method", "path"},
		),
	}
}

// Logger returns the service logger.
func (t *Telemetry) Logger() *zap.Logger {
	return t.logger
}

// Metrics returns the registered metrics; nil when metrics are
// disabled.
func (t *Telemetry) Metrics() *Metrics {
	return t.metrics
}

// MetricsHandler returns the Prometheus scrape handler.
func (t *Telemetry) MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// ObserveAnalysis implements report.Observer.
func (t *Telemetry) ObserveAnalysis(tier string, duration time.Duration, anomalies int) {
	if t.metrics == nil {
		return
	}
	t.metrics.AnalysesTotal.WithLabelValues(tier).Inc()
	t.metrics.AnalysisDuration.Observe(duration.Seconds())
	t.metrics.AnomaliesPerRun.Observe(float64(anomalies))
}

// ObserveCacheLookup implements report.Observer.
func (t *Telemetry) ObserveCacheLookup(hit bool) {
	if t.metrics == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	t.metrics.CacheLookups.WithLabelValues(outcome).Inc()
}

// ObserveCollector implements signals.Observer.
func (t *Telemetry) ObserveCollector(source string, duration time.Duration, err error) {
	if t.metrics == nil {
		return
	}
	t.metrics.CollectorDuration.WithLabelValues(source).Observe(duration.Seconds())
	if err != nil {
		t.metrics.CollectorFailures.WithLabelValues(source).Inc()
	}
}

// ObserveExport records one export attempt.
func (t *Telemetry) ObserveExport(format string, ok bool) {
	if t.metrics == nil {
		return
	}
	status := "error"
	if ok {
		status = "ok"
	}
	t.metrics.ExportsTotal.WithLabelValues(format, status).Inc()
}

// ObserveRateLimitRejection records one rejected request.
func (t *Telemetry) ObserveRateLimitRejection(endpoint string) {
	if t.metrics == nil {
		return
	}
	t.metrics.RateLimitRejections.WithLabelValues(endpoint).Inc()
}

// HTTPMiddleware records request counts and latency per route.
func (t *Telemetry) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if t.metrics == nil {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		t.metrics.RequestsTotal.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(ww.Status())).Inc()
		t.metrics.RequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}

// StartSystemMetricsCollector samples goroutine and memory gauges until
// the stop channel closes.
func (t *Telemetry) StartSystemMetricsCollector(stop <-chan struct{}) {
	if t.metrics == nil {
		return
	}

	ticker := time.NewTicker(15 * time.Second)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				t.metrics.GoroutineCount.Set(float64(runtime.NumGoroutine()))
				var m runtime.MemStats
				runtime.ReadMemStats(&m)
				t.metrics.MemoryUsage.Set(float64(m.Alloc))
			}
		}
	}()
}

// Sync flushes buffered log entries. Call on shutdown.
func (t *Telemetry) Sync() {
	if t.logger != nil {
		t.logger.Sync()
	}
}
