package healthprobe

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
)

// HealthChecker provides health and readiness checks plus the outcome of the
// most recent detection run.
type HealthChecker struct {
	startTime time.Time
	ready     atomic.Bool

	mu      sync.RWMutex
	lastRun *RunStatus
}

// RunStatus summarises the latest detection run.
type RunStatus struct {
	RunID         string    `json:"run_id,omitempty"`
	FinishedAt    time.Time `json:"finished_at"`
	Opportunities int       `json:"opportunities"`
	Error         string    `json:"error,omitempty"`
}

// New creates a new HealthChecker.
func New() *HealthChecker {
	return &HealthChecker{
		startTime: time.Now(),
	}
}

// SetReady marks the application as ready to serve traffic.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// RecordRun stores the outcome of a detection run. err is the run-level
// failure (invalid input, storage), not a recovered algorithm failure.
func (h *HealthChecker) RecordRun(runID string, opportunities int, err error) {
	status := &RunStatus{
		RunID:         runID,
		FinishedAt:    time.Now().UTC(),
		Opportunities: opportunities,
	}
	if err != nil {
		status.Error = err.Error()
	}

	h.mu.Lock()
	h.lastRun = status
	h.mu.Unlock()
}

// LastRun returns a copy of the latest run status, if any run was recorded.
func (h *HealthChecker) LastRun() (RunStatus, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.lastRun == nil {
		return RunStatus{}, false
	}
	return *h.lastRun, true
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  string     `json:"status"`
	Uptime  string     `json:"uptime"`
	Message string     `json:"message,omitempty"`
	LastRun *RunStatus `json:"last_run,omitempty"`
}

// Health returns an HTTP handler for liveness checks.
// Always returns 200 OK if the application is running; a failed last run is
// reported in the body, not the status code.
func (h *HealthChecker) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{
			Status: "healthy",
			Uptime: time.Since(h.startTime).String(),
		}
		if last, ok := h.LastRun(); ok {
			resp.LastRun = &last
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// Ready returns an HTTP handler for readiness checks.
// Returns 200 OK if ready, 503 Service Unavailable if not.
func (h *HealthChecker) Ready() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.ready.Load() {
			writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status:  "not_ready",
				Message: "application is starting",
			})
			return
		}

		writeJSON(w, http.StatusOK, HealthResponse{
			Status: "ready",
			Uptime: time.Since(h.startTime).String(),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
