// Package metrics holds the kiosk's Prometheus collectors.
package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ScansTotal counts interpreted scans by outcome
	ScansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kiosk_scans_total",
			Help: "Badge scans interpreted by the kiosk, by outcome",
		},
		[]string{"outcome"},
	)

	// ReaderConnections counts reader link transitions (opened, closed)
	ReaderConnections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kiosk_reader_connections_total",
			Help: "Reader WebSocket link transitions",
		},
		[]string{"event"},
	)

	// ReaderConnected is 1 while the reader link is open
	ReaderConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "kiosk_reader_connected",
		Help: "Whether the reader WebSocket link is open",
	})

	// DirectoryFetches counts directory loads by result (ok, empty, fetch_error, parse_error)
	DirectoryFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kiosk_directory_fetches_total",
			Help: "Directory loads from the reader, by result",
		},
		[]string{"result"},
	)

	// DirectorySize is the number of records in the cached directory
	DirectorySize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "kiosk_directory_users",
		Help: "Users in the cached directory",
	})

	// Registrations counts registration submissions by result
	Registrations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kiosk_registrations_total",
			Help: "Registration submissions, by result",
		},
		[]string{"result"},
	)

	// AdminLogins counts admin page login attempts and logouts by result
	AdminLogins = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kiosk_admin_logins_total",
			Help: "Admin login attempts and logouts, by result",
		},
		[]string{"result"},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kiosk_http_requests_total",
			Help: "HTTP requests served by the kiosk",
		},
		[]string{"method", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kiosk_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

// Handler exposes the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request counts and latency
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		httpRequestsTotal.WithLabelValues(r.Method, strconv.Itoa(rw.status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController and the WebSocket upgrader reach the original writer
func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Hijack passes through to the original writer so WebSocket upgrades keep working
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	w.status = http.StatusSwitchingProtocols
	return h.Hijack()
}
