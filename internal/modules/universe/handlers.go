package universe

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/broadcast777/my-dividend-app/internal/modules/snapshots"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const snapshotKey = "resolved_universe"

// Handler handles security universe HTTP requests
type Handler struct {
	repo      *SecurityRepository
	enricher  *Enricher
	refresher *Refresher
	cache     *snapshots.Store
	hub       *ProgressHub
	log       zerolog.Logger

	// refreshCancel is shared between the refresh and stop request
	// goroutines.
	mu            sync.Mutex
	refreshCancel context.CancelFunc
}

// NewHandler creates a new universe handler
func NewHandler(repo *SecurityRepository, enricher *Enricher, refresher *Refresher, cache *snapshots.Store, hub *ProgressHub, log zerolog.Logger) *Handler {
	return &Handler{
		repo:      repo,
		enricher:  enricher,
		refresher: refresher,
		cache:     cache,
		hub:       hub,
		log:       log.With().Str("handler", "universe").Logger(),
	}
}

// Hub exposes the progress hub for the websocket stream handler.
func (h *Handler) Hub() *ProgressHub {
	return h.hub
}

// HandleList handles GET /api/securities
// ?admin=1 adds the suspect-yield prefix; ?fresh=1 bypasses the snapshot.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	admin := r.URL.Query().Get("admin") == "1"
	fresh := r.URL.Query().Get("fresh") == "1"

	var resolved []ResolvedSecurity
	hit := false
	if !fresh {
		var err error
		hit, err = h.cache.Get(ctx, snapshotKey, &resolved)
		if err != nil {
			h.log.Warn().Err(err).Msg("Snapshot read failed, recomputing")
			hit = false
		}
	}

	if !hit {
		rows, err := h.repo.GetAll(ctx)
		if err != nil {
			h.writeError(w, http.StatusInternalServerError, "Failed to load securities: "+err.Error())
			return
		}
		resolved = h.enricher.EnrichBatch(ctx, rows)
		if err := h.cache.Put(ctx, snapshotKey, resolved); err != nil {
			h.log.Warn().Err(err).Msg("Snapshot write failed")
		}
	}

	if admin {
		for i := range resolved {
			if resolved[i].Suspect {
				resolved[i].DisplayName = "❗ " + resolved[i].DisplayName
			}
		}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"securities": resolved,
		"cached":     hit,
	})
}

// refreshRequest is the body of POST /api/securities/refresh.
type refreshRequest struct {
	NameFilter string `json:"name_filter"`
}

// HandleRefresh handles POST /api/securities/refresh
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
			return
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	h.mu.Lock()
	h.refreshCancel = cancel
	h.mu.Unlock()
	defer cancel()

	start := time.Now()
	summary, err := h.refresher.RefreshAll(ctx, req.NameFilter, func(done, total int, row RefreshRowResult) {
		h.hub.Publish(ProgressEvent{Done: done, Total: total, Row: row})
	})
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Refresh failed: "+err.Error())
		return
	}

	if err := h.cache.Invalidate(r.Context(), snapshotKey); err != nil {
		h.log.Warn().Err(err).Msg("Snapshot invalidation failed")
	}

	h.log.Info().Dur("elapsed", time.Since(start)).Int("total", summary.Total).Msg("Refresh completed")
	h.writeJSON(w, http.StatusOK, summary)
}

// HandleStopRefresh handles POST /api/securities/refresh/stop
func (h *Handler) HandleStopRefresh(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	cancel := h.refreshCancel
	h.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "stopping"})
}

// HandleLock handles POST /api/securities/{code}/lock
func (h *Handler) HandleLock(w http.ResponseWriter, r *http.Request) {
	h.setAuto(w, r, AutoLocked)
}

// HandleUnlock handles POST /api/securities/{code}/unlock
func (h *Handler) HandleUnlock(w http.ResponseWriter, r *http.Request) {
	h.setAuto(w, r, 0)
}

func (h *Handler) setAuto(w http.ResponseWriter, r *http.Request, value float64) {
	code := chi.URLParam(r, "code")
	if err := h.repo.SetAuto(r.Context(), code, value); err != nil {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err := h.cache.Invalidate(r.Context(), snapshotKey); err != nil {
		h.log.Warn().Err(err).Msg("Snapshot invalidation failed")
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"code": code, "dividend_auto": value})
}

// dividendEntryRequest is the body of POST /api/securities/{code}/dividends.
type dividendEntryRequest struct {
	Amount float64 `json:"amount"`
}

// HandleAppendDividend handles POST /api/securities/{code}/dividends
// It pushes one monthly amount onto the rolling window and stores the
// trailing sum as the manual annual figure.
func (h *Handler) HandleAppendDividend(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	var req dividendEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Amount <= 0 {
		h.writeError(w, http.StatusBadRequest, "Amount must be positive")
		return
	}

	row, err := h.repo.GetByCode(r.Context(), code)
	if err != nil {
		if err == sql.ErrNoRows {
			h.writeError(w, http.StatusNotFound, "Security not found")
			return
		}
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	sum, history := AppendMonthlyDividend(row.DividendHistory, req.Amount)
	if err := h.repo.UpdateDividendHistory(r.Context(), code, history, sum); err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := h.cache.Invalidate(r.Context(), snapshotKey); err != nil {
		h.log.Warn().Err(err).Msg("Snapshot invalidation failed")
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"code":             code,
		"annual_sum":       sum,
		"dividend_history": history,
	})
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
