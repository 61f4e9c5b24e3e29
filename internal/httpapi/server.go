// Package httpapi exposes lookups, the lobby roster and metrics over HTTP.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/lu-zhengda/aliases/internal/chat"
	"github.com/lu-zhengda/aliases/internal/domain"
)

// Resolver runs a lookup to completion. app.LookupService satisfies it.
type Resolver interface {
	Resolve(ctx context.Context, username string) domain.LookupResult
}

// PlayerLister reports who is online. lobby.Server satisfies it.
type PlayerLister interface {
	Players() []string
}

// Options configures the handler.
type Options struct {
	Report   chat.ReportOptions
	Logger   log.FieldLogger
	Gatherer prometheus.Gatherer
}

// Handler serves the HTTP API.
type Handler struct {
	resolver Resolver
	players  PlayerLister
	opts     Options
	log      log.FieldLogger
}

// New creates a Handler. players may be nil when no lobby is running.
func New(resolver Resolver, players PlayerLister, opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Handler{
		resolver: resolver,
		players:  players,
		opts:     opts,
		log:      logger.WithField("component", "http"),
	}
}

// Router builds the chi router with all routes mounted.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.requestLogger)

	r.Get("/healthz", h.handleHealth)
	r.Get("/players", h.handlePlayers)
	r.Get("/aliases/{username}", h.handleLookup)
	if h.opts.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(h.opts.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.log.WithFields(log.Fields{
			"request_id": middleware.GetReqID(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"duration":   time.Since(start),
		}).Debug("request served")
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok\n"))
}

func (h *Handler) handlePlayers(w http.ResponseWriter, _ *http.Request) {
	players := []string{}
	if h.players != nil {
		if online := h.players.Players(); online != nil {
			players = online
		}
	}
	if err := writeJSON(w, http.StatusOK, players); err != nil {
		h.log.WithError(err).Warn("failed to write players response")
	}
}

func (h *Handler) handleLookup(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	res := h.resolver.Resolve(r.Context(), username)

	resp, err := NewLookupResponse(res, h.opts.Report)
	if err != nil {
		h.log.WithError(err).WithField("username", username).Error("failed to build lookup response")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if err := writeJSON(w, HTTPStatus(res.Outcome), resp); err != nil {
		h.log.WithError(err).Warn("failed to write lookup response")
	}
}
