package server

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/broadcast777/my-dividend-app/internal/database"
)

// SystemHandlers serves process and storage health endpoints.
type SystemHandlers struct {
	log        zerolog.Logger
	dataDir    string
	universeDB *database.DB
	cacheDB    *database.DB
	startedAt  time.Time
}

// NewSystemHandlers creates system monitoring handlers
func NewSystemHandlers(log zerolog.Logger, dataDir string, universeDB, cacheDB *database.DB) *SystemHandlers {
	return &SystemHandlers{
		log:        log.With().Str("handler", "system").Logger(),
		dataDir:    dataDir,
		universeDB: universeDB,
		cacheDB:    cacheDB,
		startedAt:  time.Now(),
	}
}

// HandleStats handles GET /api/system/stats
func (h *SystemHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	cpuPercent, memPercent := h.getSystemStats()

	databases := map[string]string{}
	for _, db := range []*database.DB{h.universeDB, h.cacheDB} {
		status := "ok"
		if err := db.QuickCheck(r.Context()); err != nil {
			status = err.Error()
		}
		databases[db.Name()] = status
	}

	h.writeJSON(w, map[string]interface{}{
		"cpu_percent":    cpuPercent,
		"memory_percent": memPercent,
		"data_dir_mb":    h.getDirSize(h.dataDir),
		"databases":      databases,
		"uptime_seconds": int(time.Since(h.startedAt).Seconds()),
	})
}

// getSystemStats calculates CPU and RAM usage percentages. A 100ms sampling
// window keeps the endpoint responsive for dashboard polling.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

// getDirSize calculates total size of a directory in MB
func (h *SystemHandlers) getDirSize(dirPath string) float64 {
	var totalSize int64

	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if !info.IsDir() {
			totalSize += info.Size()
		}
		return nil
	})

	if err != nil {
		h.log.Warn().Err(err).Str("dir", dirPath).Msg("Failed to calculate directory size")
		return 0
	}

	return float64(totalSize) / 1024 / 1024
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
