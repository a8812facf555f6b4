// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/artmap/internal/adapters/geo"
	service "github.com/okian/artmap/internal/app"
	"github.com/okian/artmap/internal/domain/model"
	"github.com/okian/artmap/internal/domain/panel"
	"github.com/okian/artmap/internal/domain/types"
)

// Dependencies required by HTTP handlers. Sessions are addressed by the id
// returned from CreateSession.
type Dependencies interface {
	Movements() []model.Movement
	DefaultMovement() model.MovementID

	CreateSession(ctx context.Context) (string, error)
	CloseSession(ctx context.Context, id string) error

	Refresh(ctx context.Context, id, movement string) (service.RefreshResult, error)
	Markers(ctx context.Context, id string) (types.MarkersResponse, error)
	Click(ctx context.Context, id, marker string) (panel.View, error)
	Panel(ctx context.Context, id string) (panel.View, error)
	ClearPanel(ctx context.Context, id string) (panel.View, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	configHandler   *ConfigHandler
	sessionsHandler *SessionsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, mapCfg types.MapConfig) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		configHandler:   NewConfigHandler(deps, mapCfg),
		sessionsHandler: NewSessionsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("GET /api/config", MetricsMiddleware(s.configHandler.HandleConfig, "config"))
	mux.HandleFunc("GET /api/movements", MetricsMiddleware(s.configHandler.HandleMovements, "movements"))

	sh := s.sessionsHandler
	mux.HandleFunc("POST /api/sessions", MetricsMiddleware(sh.HandleCreate, "session_create"))
	mux.HandleFunc("DELETE /api/sessions/{id}", MetricsMiddleware(sh.HandleDelete, "session_delete"))
	mux.HandleFunc("POST /api/sessions/{id}/refresh", MetricsMiddleware(sh.HandleRefresh, "refresh"))
	mux.HandleFunc("GET /api/sessions/{id}/markers", MetricsMiddleware(sh.HandleMarkers, "markers"))
	mux.HandleFunc("POST /api/sessions/{id}/markers/{marker}/click", MetricsMiddleware(sh.HandleClick, "click"))
	mux.HandleFunc("GET /api/sessions/{id}/panel", MetricsMiddleware(sh.HandlePanel, "panel"))
	mux.HandleFunc("DELETE /api/sessions/{id}/panel", MetricsMiddleware(sh.HandleClearPanel, "panel_clear"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, types.ErrorResponse{Code: code, Message: msg})
}

// writeFailure maps err onto a status code. Errors with Spanish user
// wording are reported with that wording instead of the internal text.
func writeFailure(w http.ResponseWriter, op string, err error) {
	status, code, kind := classify(err)
	if text := service.UserMessage(err); text != "" {
		writeJSON(w, status, types.ErrorResponse{Code: code, Message: text})
		return
	}
	writeError(w, status, code, WrapKind(op, kind, err))
}

func classify(err error) (int, string, error) {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, service.ErrNoMovementSelected):
		return http.StatusBadRequest, "bad_request", ErrBadRequest
	case errors.Is(err, ErrNotFound),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, geo.ErrUnknownMarker):
		return http.StatusNotFound, "not_found", ErrNotFound
	case errors.Is(err, ErrUpstream), errors.Is(err, service.ErrMovementUnavailable):
		return http.StatusBadGateway, "upstream_unavailable", ErrUpstream
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "not_started", ErrInternal
	default:
		return http.StatusInternalServerError, "internal", ErrInternal
	}
}
