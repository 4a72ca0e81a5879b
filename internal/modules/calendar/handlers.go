package calendar

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/broadcast777/my-dividend-app/internal/modules/universe"
	"github.com/rs/zerolog"
)

// Handler handles calendar HTTP requests
type Handler struct {
	secRepo *universe.SecurityRepository
	log     zerolog.Logger
	now     func() time.Time
}

// NewHandler creates a new calendar handler
func NewHandler(secRepo *universe.SecurityRepository, log zerolog.Logger) *Handler {
	return &Handler{
		secRepo: secRepo,
		log:     log.With().Str("handler", "calendar").Logger(),
		now:     time.Now,
	}
}

// HandleICS handles GET /api/calendar/ics?names=a,b,c
func (h *Handler) HandleICS(w http.ResponseWriter, r *http.Request) {
	names := splitNames(r.URL.Query().Get("names"))
	if len(names) == 0 {
		h.writeError(w, http.StatusBadRequest, "names query parameter is required")
		return
	}

	rows, err := h.secRepo.GetAll(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to load securities: "+err.Error())
		return
	}

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}
	var entries []Entry
	for _, row := range rows {
		if wanted[row.Name] {
			entries = append(entries, Entry{Name: row.Name, Descriptor: row.ExDividendDay})
		}
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="dividend_calendar.ics"`)
	if _, err := w.Write([]byte(BuildICS(entries, h.now()))); err != nil {
		h.log.Error().Err(err).Msg("Failed to write calendar")
	}
}

// HandleGoogleLink handles GET /api/calendar/google?name=x
func (h *Handler) HandleGoogleLink(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		h.writeError(w, http.StatusBadRequest, "name query parameter is required")
		return
	}

	rows, err := h.secRepo.SearchByName(r.Context(), name)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to load security: "+err.Error())
		return
	}
	if len(rows) == 0 {
		h.writeError(w, http.StatusNotFound, "Security not found")
		return
	}

	link, ok := GoogleCalendarURL(rows[0].Name, rows[0].ExDividendDay, h.now())
	if !ok {
		h.writeError(w, http.StatusUnprocessableEntity, "Security has no parseable dividend schedule")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"url": link})
}

func splitNames(raw string) []string {
	var names []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			names = append(names, p)
		}
	}
	return names
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
