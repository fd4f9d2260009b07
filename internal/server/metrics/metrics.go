// Package metrics records file custody and HTTP metrics.
//
// The Prometheus implementation registers its collectors on a registry owned
// by the caller, so several servers (and tests) can coexist in one process.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Operation results.
const (
	ResultOK        = "ok"
	ResultNotFound  = "not_found"
	ResultForbidden = "forbidden"
	ResultError     = "error"
)

// Orphan causes.
const (
	OrphanUpload = "upload"
	OrphanDelete = "delete"
)

// Recorder receives measurements from the file service and HTTP layer.
type Recorder interface {
	FileOperation(operation, result string)
	BytesIn(n int64)
	OrphanBlob(cause string)
	HTTPRequest(method, route string, status int, elapsed time.Duration)
}

type noop struct{}

// Noop returns a Recorder that discards everything.
func Noop() Recorder { return noop{} }

func (noop) FileOperation(string, string)                   {}
func (noop) BytesIn(int64)                                  {}
func (noop) OrphanBlob(string)                              {}
func (noop) HTTPRequest(string, string, int, time.Duration) {}

// Prometheus is the Prometheus-backed Recorder.
type Prometheus struct {
	registry        *prometheus.Registry
	fileOperations  *prometheus.CounterVec
	fileBytes       *prometheus.CounterVec
	orphanBlobs     *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewPrometheus creates the collectors on a fresh registry together with
// the standard Go and process collectors.
func NewPrometheus() *Prometheus {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Prometheus{
		registry: reg,
		fileOperations: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "filevault_file_operations_total",
				Help: "File custody operations by operation and result",
			},
			[]string{"operation", "result"},
		),
		fileBytes: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "filevault_file_bytes_total",
				Help: "Bytes moved through the file service",
			},
			[]string{"direction"},
		),
		orphanBlobs: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "filevault_orphan_blobs_total",
				Help: "Blobs left without a metadata record",
			},
			[]string{"cause"},
		),
		httpRequests: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "filevault_http_requests_total",
				Help: "HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "filevault_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"method", "route"},
		),
	}
}

func (p *Prometheus) FileOperation(operation, result string) {
	p.fileOperations.WithLabelValues(operation, result).Inc()
}

func (p *Prometheus) BytesIn(n int64) {
	if n > 0 {
		p.fileBytes.WithLabelValues("in").Add(float64(n))
	}
}

func (p *Prometheus) OrphanBlob(cause string) {
	p.orphanBlobs.WithLabelValues(cause).Inc()
}

func (p *Prometheus) HTTPRequest(method, route string, status int, elapsed time.Duration) {
	p.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}
