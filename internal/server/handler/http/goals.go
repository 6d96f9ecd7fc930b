package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/atinyakov/NoteNest/internal/goals"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// GoalTracker defines the goal operations required by the GoalHandler.
type GoalTracker interface {
	// Today returns today's progress towards every goal.
	Today(ctx context.Context) goals.Daily
	// SetGoal parses and stores a goal, returning the stored value.
	SetGoal(ctx context.Context, k goals.Kind, input string) (int64, error)
}

// GoalHandler handles HTTP requests for fitness goals.
type GoalHandler struct {
	Tracker GoalTracker
	Log     *zap.Logger
}

// GoalRequest carries the raw goal as typed by the user.
type GoalRequest struct {
	Value string `json:"value"`
}

// GoalResponse is the stored goal.
type GoalResponse struct {
	Kind goals.Kind `json:"kind"`
	Goal int64      `json:"goal"`
}

// Today handles GET /api/goals.
func (h *GoalHandler) Today(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Tracker.Today(r.Context()))
}

// Set handles PUT /api/goals/{kind}.
func (h *GoalHandler) Set(w http.ResponseWriter, r *http.Request) {
	kind, err := goals.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		http.Error(w, "unknown goal", http.StatusNotFound)
		return
	}

	var req GoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	v, err := h.Tracker.SetGoal(r.Context(), kind, req.Value)
	if errors.Is(err, goals.ErrInvalidGoal) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		h.Log.Error("failed to save goal", zap.String("kind", string(kind)), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, GoalResponse{Kind: kind, Goal: v})
}
