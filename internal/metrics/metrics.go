package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the service
	Registry = prometheus.NewRegistry()
	// HTTPRequests counts requests by method, path, and status
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// Syncs counts order syncs by resolved status and outcome
	// (ok, order_not_found, error).
	Syncs = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "iute_syncs_total", Help: "Order syncs by canonical status and outcome."},
		[]string{"status", "outcome"},
	)
	// VerifyFailures counts webhook verification failures by reason
	// (missing_header, key_fetch, bad_signature).
	VerifyFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "iute_webhook_verify_failures_total", Help: "Webhook verification failures by reason."},
		[]string{"reason"},
	)
	// KeyFetches counts remote public-key downloads (cache misses/expiries)
	KeyFetches = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "iute_key_fetches_total", Help: "Remote public key fetches."},
	)
	// KeyCacheHits counts verifications served from the cached key
	KeyCacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "iute_key_cache_hits_total", Help: "Public key cache hits."},
	)
	// PollCycles counts poll cycles run by the poll driver
	PollCycles = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "iute_poll_cycles_total", Help: "Poll cycles executed."},
	)
)

// RegisterDefault registers collectors to the service registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(Syncs)
		Registry.MustRegister(VerifyFailures)
		Registry.MustRegister(KeyFetches)
		Registry.MustRegister(KeyCacheHits)
		Registry.MustRegister(PollCycles)
		// Go/process collectors on our registry
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once
