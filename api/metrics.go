package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wricardo/mcp-training/game2048/game/engine"
)

// Metrics holds the server's Prometheus collectors on a private registry
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	sessionsCreated prometheus.Counter
	moves           *prometheus.CounterVec
	gamesFinished   *prometheus.CounterVec
	resets          prometheus.Counter
}

// NewMetrics creates and registers the game server collectors
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "game2048_http_requests_total",
				Help: "Total number of HTTP requests by route and status code",
			},
			[]string{"route", "method", "code"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "game2048_http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		sessionsCreated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "game2048_sessions_created_total",
				Help: "Total number of game sessions created",
			},
		),
		moves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "game2048_moves_total",
				Help: "Total number of moves by direction and whether the board changed",
			},
			[]string{"direction", "changed"},
		),
		gamesFinished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "game2048_games_finished_total",
				Help: "Total number of games that reached a terminal status",
			},
			[]string{"status"},
		),
		resets: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "game2048_resets_total",
				Help: "Total number of game resets",
			},
		),
	}

	m.registry.MustRegister(
		m.requests,
		m.requestDuration,
		m.sessionsCreated,
		m.moves,
		m.gamesFinished,
		m.resets,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// observeMove counts a move; an accepted move that ends the game also counts a finish
func (m *Metrics) observeMove(dir engine.Direction, changed bool, status engine.Status) {
	m.moves.WithLabelValues(string(dir), strconv.FormatBool(changed)).Inc()
	if changed && status != engine.StatusOngoing {
		m.gamesFinished.WithLabelValues(string(status)).Inc()
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// middleware records request counts and latency per mux route template
func (m *Metrics) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := "unmatched"
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		m.requests.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
	})
}
