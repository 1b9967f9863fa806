// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package api serves the read-only status API of playoutd.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ManuGH/playout/internal/api/middleware"
	"github.com/ManuGH/playout/internal/format"
	"github.com/ManuGH/playout/internal/health"
	"github.com/ManuGH/playout/internal/log"
	"github.com/ManuGH/playout/internal/playback"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StatsFunc returns the current session stats, or false while no session
// exists.
type StatsFunc func() (playback.Stats, bool)

// Config wires the server to the rest of the daemon.
type Config struct {
	Version        string
	Stats          StatsFunc
	Health         *health.Manager
	RateLimit      int // requests per second per client IP, 0 disables
	TracingService string
}

// Server owns the HTTP handler tree.
type Server struct {
	cfg    Config
	router chi.Router
}

// New builds the router.
func New(cfg Config) *Server {
	if cfg.Health == nil {
		cfg.Health = health.NewManager(cfg.Version)
	}
	s := &Server{cfg: cfg}

	r := middleware.NewRouter(middleware.StackConfig{
		EnableMetrics:  true,
		EnableLogging:  true,
		TracingService: cfg.TracingService,
	})
	r.Get("/healthz", cfg.Health.ServeHealth)
	r.Get("/readyz", cfg.Health.ServeReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if cfg.RateLimit > 0 {
			r.Use(middleware.RateLimit(middleware.RateLimitConfig{
				RequestLimit: cfg.RateLimit,
				WindowSize:   time.Second,
			}))
		}
		r.Get("/api/status", s.handleStatus)
		r.Get("/api/formats", s.handleFormats)
		r.Get("/api/modes", s.handleModes)
		r.Get("/api/modes/{mode}", s.handleMode)
	})

	s.router = r
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

type statusResponse struct {
	Version string         `json:"version,omitempty"`
	Session playback.Stats `json:"session"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Stats == nil {
		writeError(w, r, http.StatusServiceUnavailable, "no_session")
		return
	}
	st, ok := s.cfg.Stats()
	if !ok {
		writeError(w, r, http.StatusServiceUnavailable, "no_session")
		return
	}
	writeJSON(w, r, http.StatusOK, statusResponse{Version: s.cfg.Version, Session: st})
}

// ModeInfo is the catalog view of a display mode.
type ModeInfo struct {
	Tag            string `json:"tag"`
	Name           string `json:"name"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	FrameDuration  string `json:"frameDuration"`
	Interlaced     bool   `json:"interlaced"`
	FieldDominance string `json:"fieldDominance"`
}

// FormatInfo is the catalog view of a pixel format.
type FormatInfo struct {
	FourCC      string   `json:"fourcc"`
	Name        string   `json:"name"`
	Depth       int      `json:"depth"`
	Sampling    string   `json:"sampling"`
	Colorimetry string   `json:"colorimetry"`
	Aliases     []string `json:"aliases,omitempty"`
}

// DescribeMode renders m for the API and the CLI.
func DescribeMode(m format.DisplayMode) ModeInfo {
	return ModeInfo{
		Tag:            m.Tag(),
		Name:           m.Name(),
		Width:          m.Width(),
		Height:         m.Height(),
		FrameDuration:  m.GrainDuration().String(),
		Interlaced:     m.Interlaced(),
		FieldDominance: m.FieldDominance().String(),
	}
}

// DescribeFormat renders f for the API and the CLI.
func DescribeFormat(f format.PixelFormat) FormatInfo {
	return FormatInfo{
		FourCC:      f.FourCC(),
		Name:        f.Name(),
		Depth:       f.Depth(),
		Sampling:    string(f.Sampling()),
		Colorimetry: string(f.Colorimetry()),
		Aliases:     f.Aliases(),
	}
}

func (s *Server) handleFormats(w http.ResponseWriter, r *http.Request) {
	all := format.PixelFormats()
	out := make([]FormatInfo, 0, len(all))
	for _, f := range all {
		out = append(out, DescribeFormat(f))
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) handleModes(w http.ResponseWriter, r *http.Request) {
	all := format.Modes()
	out := make([]ModeInfo, 0, len(all))
	for _, m := range all {
		out = append(out, DescribeMode(m))
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) handleMode(w http.ResponseWriter, r *http.Request) {
	m, ok := format.ParseMode(chi.URLParam(r, "mode"))
	if !ok {
		writeError(w, r, http.StatusNotFound, "unknown_mode")
		return
	}
	writeJSON(w, r, http.StatusOK, DescribeMode(m))
}

func writeError(w http.ResponseWriter, r *http.Request, code int, reason string) {
	writeJSON(w, r, code, map[string]string{
		"error":     reason,
		"requestId": log.RequestIDFromContext(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, r *http.Request, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger := log.WithComponentFromContext(r.Context(), "api")
		logger.Error().
			Err(err).
			Str(log.FieldEvent, "api.encode_error").
			Msg("failed to encode response")
	}
}
