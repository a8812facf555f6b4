package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/okian/artmap/internal/domain/types"
)

// maxBodyBytes bounds request bodies; the only body is a movement id.
const maxBodyBytes = 4 << 10

// SessionsHandler handles the per-page session routes.
type SessionsHandler struct {
	deps Dependencies
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(deps Dependencies) *SessionsHandler {
	return &SessionsHandler{deps: deps}
}

// HandleCreate handles POST /api/sessions requests.
func (h *SessionsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_session"
	id, err := h.deps.CreateSession(r.Context())
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, types.SessionResponse{ID: id})
}

// HandleDelete handles DELETE /api/sessions/{id} requests.
func (h *SessionsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_session"
	if err := h.deps.CloseSession(r.Context(), r.PathValue("id")); err != nil {
		writeFailure(w, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRefresh handles POST /api/sessions/{id}/refresh requests.
func (h *SessionsHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	const op = "api.refresh"
	var req types.RefreshRequest
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	res, err := h.deps.Refresh(r.Context(), r.PathValue("id"), req.Movement)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, types.RefreshResponse{
		Movement: res.Movement,
		Markers:  res.Markers,
		Cached:   res.Cached,
	})
}

// HandleMarkers handles GET /api/sessions/{id}/markers requests.
func (h *SessionsHandler) HandleMarkers(w http.ResponseWriter, r *http.Request) {
	const op = "api.markers"
	out, err := h.deps.Markers(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(out)
}

// HandleClick handles POST /api/sessions/{id}/markers/{marker}/click requests.
func (h *SessionsHandler) HandleClick(w http.ResponseWriter, r *http.Request) {
	const op = "api.click"
	view, err := h.deps.Click(r.Context(), r.PathValue("id"), r.PathValue("marker"))
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandlePanel handles GET /api/sessions/{id}/panel requests.
func (h *SessionsHandler) HandlePanel(w http.ResponseWriter, r *http.Request) {
	const op = "api.panel"
	view, err := h.deps.Panel(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleClearPanel handles DELETE /api/sessions/{id}/panel requests.
func (h *SessionsHandler) HandleClearPanel(w http.ResponseWriter, r *http.Request) {
	const op = "api.clear_panel"
	view, err := h.deps.ClearPanel(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
