package exposure

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

// Handler handles exposure HTTP requests
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new exposure handler
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "exposure").Logger(),
	}
}

// computeRequest is the body of POST /api/exposure.
type computeRequest struct {
	Portfolio map[string]float64 `json:"portfolio"`
}

// HandleCompute handles POST /api/exposure
// Match failures come back inside the 200 payload; only malformed JSON is 4xx.
func (h *Handler) HandleCompute(w http.ResponseWriter, r *http.Request) {
	var req computeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(req.Portfolio) == 0 {
		h.writeError(w, http.StatusBadRequest, "Portfolio is required")
		return
	}

	result, err := h.service.Compute(r.Context(), req.Portfolio)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Exposure computation failed: "+err.Error())
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
