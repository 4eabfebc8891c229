package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/neertrack/internal/modules/analysis"
)

// SnapshotReloader rebuilds the published snapshot on demand.
type SnapshotReloader interface {
	Reload(ctx context.Context) (*analysis.Context, error)
}

// SystemHandlers handles system-wide monitoring and operations endpoints
type SystemHandlers struct {
	log         zerolog.Logger
	startupTime time.Time
	holder      *analysis.Holder
	reloader    SnapshotReloader
}

// NewSystemHandlers creates a new system handlers instance. reloader may be
// nil, in which case manual reloads are rejected.
func NewSystemHandlers(log zerolog.Logger, holder *analysis.Holder, reloader SnapshotReloader) *SystemHandlers {
	return &SystemHandlers{
		log:         log.With().Str("component", "system_handlers").Logger(),
		startupTime: time.Now(),
		holder:      holder,
		reloader:    reloader,
	}
}

// SnapshotStatus describes the published snapshot.
type SnapshotStatus struct {
	ID           string    `json:"id"`
	BuiltAt      time.Time `json:"built_at"`
	WeeklyRows   int       `json:"weekly_rows"`
	LevelRows    int       `json:"level_rows"`
	DroppedRows  int       `json:"dropped_rows"`
	WeeklySource string    `json:"weekly_source"`
	LevelsSource string    `json:"levels_source"`
	FirstWeek    string    `json:"first_week,omitempty"`
	LastWeek     string    `json:"last_week,omitempty"`
}

// SystemStatusResponse is the body of GET /api/system/status
type SystemStatusResponse struct {
	Status        string          `json:"status"`
	Snapshot      *SnapshotStatus `json:"snapshot,omitempty"`
	UptimeSeconds float64         `json:"uptime_seconds"`
	CPUPercent    float64         `json:"cpu_percent"`
	RAMPercent    float64         `json:"ram_percent"`
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPercent, ramPercent := h.getSystemStats()

	resp := SystemStatusResponse{
		Status:        "healthy",
		Snapshot:      snapshotStatus(h.holder.Current()),
		UptimeSeconds: time.Since(h.startupTime).Seconds(),
		CPUPercent:    cpuPercent,
		RAMPercent:    ramPercent,
	}
	if resp.Snapshot == nil {
		resp.Status = "degraded"
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// HandleReload handles POST /api/system/reload
func (h *SystemHandlers) HandleReload(w http.ResponseWriter, r *http.Request) {
	if h.reloader == nil {
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":  "error",
			"message": "Reload is not configured",
		})
		return
	}

	next, err := h.reloader.Reload(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Manual reload failed")
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{
			"status":  "error",
			"message": err.Error(),
		})
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "success",
		"snapshot": snapshotStatus(next),
	})
}

func snapshotStatus(c *analysis.Context) *SnapshotStatus {
	if c == nil || c.Dataset == nil {
		return nil
	}
	ds := c.Dataset
	st := &SnapshotStatus{
		ID:           c.ID,
		BuiltAt:      c.BuiltAt,
		WeeklyRows:   len(ds.Weekly),
		LevelRows:    len(ds.Levels),
		DroppedRows:  ds.DroppedRows,
		WeeklySource: ds.WeeklySource,
		LevelsSource: ds.LevelsSource,
	}
	if n := len(ds.Weekly); n > 0 {
		st.FirstWeek = ds.Weekly[0].WeekEnding.Format("2006-01-02")
		st.LastWeek = ds.Weekly[n-1].WeekEnding.Format("2006-01-02")
	}
	return st
}

// getSystemStats calculates CPU and RAM usage percentages
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	// 100ms sample keeps the status call responsive
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

// writeJSON writes a JSON response
func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
