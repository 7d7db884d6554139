// Package http serves health checks and Prometheus metrics.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"musicwizard/internal/core"
)

type Server struct {
	config  *core.ServerConfig
	logger  *zap.Logger
	server  *http.Server
	metrics *Metrics
}

type Metrics struct {
	EventsTotal    *prometheus.CounterVec
	DownloadsTotal *prometheus.CounterVec
	LyricsTotal    *prometheus.CounterVec
	PlaylistsTotal *prometheus.CounterVec
	AICallsTotal   *prometheus.CounterVec
	ErrorsTotal    *prometheus.CounterVec
	TurnDuration   *prometheus.HistogramVec
	ActiveSessions prometheus.Gauge
}

func NewServer(config *core.ServerConfig, logger *zap.Logger) *Server {
	metrics := &Metrics{
		EventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "musicwizard_events_total",
				Help: "Total number of chat events processed",
			},
			[]string{"kind", "status"},
		),
		DownloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "musicwizard_downloads_total",
				Help: "Total number of audio downloads",
			},
			[]string{"status"},
		),
		LyricsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "musicwizard_lyrics_lookups_total",
				Help: "Total number of lyric lookups",
			},
			[]string{"status"},
		),
		PlaylistsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "musicwizard_playlists_total",
				Help: "Total number of playlists delivered",
			},
			[]string{"branch", "status"},
		),
		AICallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "musicwizard_ai_calls_total",
				Help: "Total number of text-intelligence API calls",
			},
			[]string{"operation", "status"},
		),
		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "musicwizard_errors_total",
				Help: "Total number of errors",
			},
			[]string{"component", "type"},
		),
		TurnDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "musicwizard_turn_duration_seconds",
				Help:    "Time spent processing a single conversation turn",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"state"},
		),
		ActiveSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "musicwizard_active_sessions",
				Help: "Number of active conversation sessions",
			},
		),
	}

	prometheus.MustRegister(
		metrics.EventsTotal,
		metrics.DownloadsTotal,
		metrics.LyricsTotal,
		metrics.PlaylistsTotal,
		metrics.AICallsTotal,
		metrics.ErrorsTotal,
		metrics.TurnDuration,
		metrics.ActiveSessions,
	)

	mux := setupRoutes()
	server := createHTTPServer(config, mux)

	return &Server{
		config:  config,
		logger:  logger,
		server:  server,
		metrics: metrics,
	}
}

func setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok","service":"musicwizard"}`))
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ready","service":"musicwizard"}`))
	})

	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

func createHTTPServer(config *core.ServerConfig, mux *http.ServeMux) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      mux,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}
}

func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server",
		zap.String("addr", s.server.Addr))

	go func() {
		<-ctx.Done()
		s.logger.Info("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Failed to shutdown HTTP server gracefully", zap.Error(err))
		}
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

func (s *Server) RecordEvent(kind, status string) {
	s.metrics.EventsTotal.WithLabelValues(kind, status).Inc()
}

func (s *Server) RecordDownload(status string) {
	s.metrics.DownloadsTotal.WithLabelValues(status).Inc()
}

func (s *Server) RecordLyricsLookup(status string) {
	s.metrics.LyricsTotal.WithLabelValues(status).Inc()
}

func (s *Server) RecordPlaylist(branch, status string) {
	s.metrics.PlaylistsTotal.WithLabelValues(branch, status).Inc()
}

func (s *Server) RecordAICall(operation, status string) {
	s.metrics.AICallsTotal.WithLabelValues(operation, status).Inc()
}

func (s *Server) RecordError(component, errorType string) {
	s.metrics.ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

func (s *Server) RecordTurnDuration(state string, duration time.Duration) {
	s.metrics.TurnDuration.WithLabelValues(state).Observe(duration.Seconds())
}

func (s *Server) SetActiveSessions(count int) {
	s.metrics.ActiveSessions.Set(float64(count))
}
