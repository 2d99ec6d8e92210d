package remote

import (
	"bufio"
	"errors"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the remote server.
type Metrics struct {
	registry         *prometheus.Registry
	requestsTotal    prometheus.Counter
	errorsTotal      prometheus.Counter
	commandsTotal    *prometheus.CounterVec
	broadcastsTotal  *prometheus.CounterVec
	duplicatesTotal  *prometheus.CounterVec
	websocketClients *prometheus.GaugeVec
}

// NewMetrics creates and registers the server's metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		requestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "showcase_requests_total",
			Help: "Total number of HTTP requests received",
		}),
		errorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "showcase_errors_total",
			Help: "Total number of HTTP responses with error status (4xx or 5xx)",
		}),
		commandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "showcase_player_commands_total",
			Help: "Player commands issued through the remote API",
		}, []string{"kind", "command"}),
		broadcastsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "showcase_snapshot_broadcasts_total",
			Help: "Snapshots sent to websocket clients",
		}, []string{"kind"}),
		duplicatesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "showcase_snapshot_duplicates_total",
			Help: "Snapshots skipped because nothing visible changed",
		}, []string{"kind"}),
		websocketClients: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "showcase_websocket_clients",
			Help: "Connected websocket clients",
		}, []string{"kind"}),
	}

	registry.MustRegister(
		m.requestsTotal,
		m.errorsTotal,
		m.commandsTotal,
		m.broadcastsTotal,
		m.duplicatesTotal,
		m.websocketClients,
	)
	return m
}

// IncCommand counts a player command.
func (m *Metrics) IncCommand(kind, command string) {
	if m != nil {
		m.commandsTotal.WithLabelValues(kind, command).Inc()
	}
}

// IncBroadcast counts a snapshot broadcast.
func (m *Metrics) IncBroadcast(kind string) {
	if m != nil {
		m.broadcastsTotal.WithLabelValues(kind).Inc()
	}
}

// IncDuplicate counts a skipped duplicate snapshot.
func (m *Metrics) IncDuplicate(kind string) {
	if m != nil {
		m.duplicatesTotal.WithLabelValues(kind).Inc()
	}
}

// SetClients sets the websocket client gauge for kind.
func (m *Metrics) SetClients(kind string, n int) {
	if m != nil {
		m.websocketClients.WithLabelValues(kind).Set(float64(n))
	}
}

// Handler returns an http.Handler that serves Prometheus metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// responseWriter captures the status code and size of a response.
type responseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (w *responseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}

// Hijack lets the websocket upgrade take over the connection.
func (w *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return h.Hijack()
}

func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// RequestMiddleware returns chi-compatible middleware that records request
// count and error count (status >= 400).
func RequestMiddleware(m *Metrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrap := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(wrap, r)
			m.requestsTotal.Inc()
			if wrap.status >= 400 {
				m.errorsTotal.Inc()
			}
		})
	}
}
