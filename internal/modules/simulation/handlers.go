package simulation

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

// Handler handles simulation HTTP requests
type Handler struct {
	log zerolog.Logger
}

// NewHandler creates a new simulation handler
func NewHandler(log zerolog.Logger) *Handler {
	return &Handler{log: log.With().Str("handler", "simulation").Logger()}
}

// HandleProjection handles POST /api/simulation/projection
func (h *Handler) HandleProjection(w http.ResponseWriter, r *http.Request) {
	var in ProjectionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if in.Years <= 0 || in.Years > 60 {
		h.writeError(w, http.StatusBadRequest, "Years must be between 1 and 60")
		return
	}
	if in.StartCapital < 0 || in.MonthlyAdd < 0 {
		h.writeError(w, http.StatusBadRequest, "Amounts must not be negative")
		return
	}

	h.writeJSON(w, http.StatusOK, Project(in))
}

// HandleGoal handles POST /api/simulation/goal
func (h *Handler) HandleGoal(w http.ResponseWriter, r *http.Request) {
	var in GoalInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if in.TargetMonthly <= 0 {
		h.writeError(w, http.StatusBadRequest, "Target monthly income must be positive")
		return
	}
	if in.StartBalance < 0 {
		h.writeError(w, http.StatusBadRequest, "Start balance must not be negative")
		return
	}

	h.writeJSON(w, http.StatusOK, SolveGoal(in))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
