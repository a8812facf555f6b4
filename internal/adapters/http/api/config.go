package api

import (
	"net/http"

	"github.com/okian/artmap/internal/domain/types"
)

// ConfigHandler serves the base map settings and the movement catalog.
type ConfigHandler struct {
	deps   Dependencies
	mapCfg types.MapConfig
}

// NewConfigHandler creates a new config handler.
func NewConfigHandler(deps Dependencies, mapCfg types.MapConfig) *ConfigHandler {
	return &ConfigHandler{deps: deps, mapCfg: mapCfg}
}

// HandleConfig handles GET /api/config requests.
func (h *ConfigHandler) HandleConfig(w http.ResponseWriter, _ *http.Request) {
	cfg := h.mapCfg
	if cfg.DefaultMovement == "" {
		cfg.DefaultMovement = h.deps.DefaultMovement()
	}
	writeJSON(w, http.StatusOK, cfg)
}

// HandleMovements handles GET /api/movements requests.
func (h *ConfigHandler) HandleMovements(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, types.MovementsResponse{
		Default:   h.deps.DefaultMovement(),
		Movements: h.deps.Movements(),
	})
}
