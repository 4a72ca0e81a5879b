package recommendation

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/broadcast777/my-dividend-app/internal/modules/universe"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles recommendation HTTP requests
type Handler struct {
	engine   *Engine
	repo     *Repository
	secRepo  *universe.SecurityRepository
	enricher *universe.Enricher
	log      zerolog.Logger
}

// NewHandler creates a new recommendation handler
func NewHandler(engine *Engine, repo *Repository, secRepo *universe.SecurityRepository, enricher *universe.Enricher, log zerolog.Logger) *Handler {
	return &Handler{
		engine:   engine,
		repo:     repo,
		secRepo:  secRepo,
		enricher: enricher,
		log:      log.With().Str("handler", "recommendation").Logger(),
	}
}

// HandleRecommend handles POST /api/recommendations
func (h *Handler) HandleRecommend(w http.ResponseWriter, r *http.Request) {
	var choices Choices
	if err := json.NewDecoder(r.Body).Decode(&choices); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if choices.Count < 2 || choices.Count > 4 {
		h.writeError(w, http.StatusBadRequest, "Count must be between 2 and 4")
		return
	}
	if choices.PinnedWeight < 0 || choices.PinnedWeight > 100 {
		h.writeError(w, http.StatusBadRequest, "Pinned weight must be between 0 and 100")
		return
	}

	rows, err := h.secRepo.GetAll(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to load securities: "+err.Error())
		return
	}
	resolved := h.enricher.EnrichBatch(r.Context(), rows)

	result := h.engine.Recommend(resolved, choices)

	if _, err := h.repo.Save(r.Context(), &result); err != nil {
		// The recommendation itself is still valid without persistence.
		h.log.Warn().Err(err).Msg("Failed to store recommendation")
	}

	h.writeJSON(w, http.StatusOK, result)
}

// HandleGet handles GET /api/recommendations/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := h.repo.Get(r.Context(), id)
	if err != nil {
		if err == sql.ErrNoRows {
			h.writeError(w, http.StatusNotFound, "Recommendation not found")
			return
		}
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, result)
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
