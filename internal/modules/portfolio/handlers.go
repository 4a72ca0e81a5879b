package portfolio

import (
	"encoding/json"
	"net/http"

	"github.com/broadcast777/my-dividend-app/internal/modules/universe"
	"github.com/rs/zerolog"
)

// Handler handles portfolio HTTP requests
type Handler struct {
	secRepo *universe.SecurityRepository
	log     zerolog.Logger
}

// NewHandler creates a new portfolio handler
func NewHandler(secRepo *universe.SecurityRepository, log zerolog.Logger) *Handler {
	return &Handler{
		secRepo: secRepo,
		log:     log.With().Str("handler", "portfolio").Logger(),
	}
}

// HandleRoadmap handles POST /api/portfolio/roadmap
func (h *Handler) HandleRoadmap(w http.ResponseWriter, r *http.Request) {
	var in RoadmapInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if in.MonthlyExpense < 0 {
		h.writeError(w, http.StatusBadRequest, "Monthly expense must not be negative")
		return
	}

	rows, err := h.secRepo.GetAll(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to load securities: "+err.Error())
		return
	}

	// Domain failures (unmatched names, zero weights) ride inside the
	// payload rather than as HTTP errors.
	h.writeJSON(w, http.StatusOK, BuildRoadmap(universe.ResolveAll(rows), in))
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
