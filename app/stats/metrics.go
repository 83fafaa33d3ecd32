package stats

import (
	"bytes"
	"fmt"
	"strconv"

	log "github.com/go-pkgz/lgr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/common/expfmt"
)

// metrics keeps prometheus collectors updated by the processor
type metrics struct {
	registry     *prometheus.Registry
	requests     prometheus.Counter
	success      prometheus.Counter
	errors       prometheus.Counter
	clientErrors prometheus.Counter
	serverErrors prometheus.Counter
	inProcessing prometheus.Gauge
	apiRequests  *prometheus.CounterVec
	apiDuration  *prometheus.HistogramVec
}

func newMetrics(buckets []float64) *metrics {
	res := &metrics{registry: prometheus.NewRegistry()}

	res.requests = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "api_all_request_total",
		Help: "The total number of all API requests received.",
	})
	res.success = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "api_all_success_total",
		Help: "The total number of all API requests with success response.",
	})
	res.errors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "api_all_errors_total",
		Help: "The total number of all API requests with error response.",
	})
	res.clientErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "api_all_client_error_total",
		Help: "The total number of all API requests with client error response.",
	})
	res.serverErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "api_all_server_error_total",
		Help: "The total number of all API requests with server error response.",
	})
	res.inProcessing = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "api_all_request_in_processing_total",
		Help: "The total number of all API requests currently in processing (no response yet).",
	})
	res.apiRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "api_request_total",
		Help: "The total number of all API requests.",
	}, []string{"method", "path", "code"})
	res.apiDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "api_request_duration_milliseconds",
		Help:    "API requests duration.",
		Buckets: buckets,
	}, []string{"method", "path"})

	for _, c := range []prometheus.Collector{res.requests, res.success, res.errors, res.clientErrors,
		res.serverErrors, res.inProcessing, res.apiRequests, res.apiDuration,
		collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})} {
		if err := res.registry.Register(c); err != nil {
			log.Printf("[WARN] can't register prometheus collector, %v", err)
		}
	}
	return res
}

func (m *metrics) request() {
	m.requests.Inc()
	m.inProcessing.Inc()
}

func (m *metrics) response(method, path string, code int, durationMs float64) {
	m.inProcessing.Dec()
	switch {
	case code >= 500:
		m.errors.Inc()
		m.serverErrors.Inc()
	case code >= 400:
		m.errors.Inc()
		m.clientErrors.Inc()
	case code >= 200 && code < 300:
		m.success.Inc()
	}
	m.apiRequests.WithLabelValues(method, path, strconv.Itoa(code)).Inc()
	m.apiDuration.WithLabelValues(method, path).Observe(durationMs)
}

// exposition gathers all collectors and encodes them in text format
func (m *metrics) exposition() ([]byte, error) {
	mfs, err := m.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("can't gather metrics: %w", err)
	}
	buf := bytes.Buffer{}
	enc := expfmt.NewEncoder(&buf, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range mfs {
		if err := enc.Encode(mf); err != nil {
			return nil, fmt.Errorf("can't encode metric %s: %w", mf.GetName(), err)
		}
	}
	return buf.Bytes(), nil
}
