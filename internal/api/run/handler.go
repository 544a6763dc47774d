package run

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/FACorreiaa/go-family-activity-search/internal/api"
	"github.com/FACorreiaa/go-family-activity-search/internal/types"
)

// Handler exposes the run controller to the UI layer.
type Handler struct {
	logger     *slog.Logger
	controller *Controller
}

func NewHandler(controller *Controller, logger *slog.Logger) *Handler {
	return &Handler{
		logger:     logger,
		controller: controller,
	}
}

// StartSearch handles POST /search. A second start while a run is active is
// rejected with 409 and leaves the active run untouched.
func (h *Handler) StartSearch(w http.ResponseWriter, r *http.Request) {
	var req types.SearchRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	runID, err := h.controller.Start(req)
	if err != nil {
		if errors.Is(err, ErrRunActive) {
			api.ErrorResponse(w, r, http.StatusConflict, err.Error())
			return
		}
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	api.WriteJSONResponse(w, r, http.StatusAccepted, map[string]any{
		"run_id": runID,
		"state":  types.RunStateResolving,
	})
}

// CancelSearch handles DELETE /search/{runID}. Cancellation is idempotent:
// cancelling a finished or unknown run still returns 204.
func (h *Handler) CancelSearch(w http.ResponseWriter, r *http.Request) {
	runID, err := uuid.Parse(chi.URLParam(r, "runID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid run id")
		return
	}
	h.controller.Cancel(runID)
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

// GetSearch handles GET /search/{runID} and returns the poll snapshot.
func (h *Handler) GetSearch(w http.ResponseWriter, r *http.Request) {
	runID, err := uuid.Parse(chi.URLParam(r, "runID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid run id")
		return
	}
	snapshot, ok := h.controller.SnapshotFor(runID)
	if !ok {
		api.ErrorResponse(w, r, http.StatusNotFound, "run not found")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, snapshot)
}

// GetStatus handles GET /search and returns the controller view regardless
// of run identity, for a UI that only wants the current state.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	api.WriteJSONResponse(w, r, http.StatusOK, h.controller.Snapshot())
}
