package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

const probeTimeout = 3 * time.Second

// Check is one named dependency probed by the health endpoints. A failing
// critical check takes the instance out of rotation; a failing optional one
// (the batch queue, object storage) only degrades it, since reviews still
// commit without them.
type Check struct {
	Name     string
	Ping     func(ctx context.Context) error
	Critical bool
}

// HealthHandler serves health check endpoints.
type HealthHandler struct {
	checks  []Check
	version string
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(version string, checks ...Check) *HealthHandler {
	return &HealthHandler{checks: checks, version: version}
}

// HealthResponse is the JSON response for /live, /ready and /health.
type HealthResponse struct {
	Status     string                `json:"status"`
	Version    string                `json:"version,omitempty"`
	Components map[string]CompStatus `json:"components,omitempty"`
	Timestamp  time.Time             `json:"timestamp"`
}

// CompStatus is the status of an individual component.
type CompStatus struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

type probeResult struct {
	check   Check
	err     error
	latency time.Duration
}

// Live is the liveness probe. Always returns 200.
func (h *HealthHandler) Live(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Timestamp: time.Now()})
}

// Ready returns 503 only when a critical dependency is down.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	for _, res := range h.probe(r.Context()) {
		if res.err != nil && res.check.Critical {
			status, code = "down", http.StatusServiceUnavailable
			break
		}
	}
	writeJSON(w, code, HealthResponse{Status: status, Timestamp: time.Now()})
}

// Health reports every dependency with its latency. Overall status is
// "down" (503) if a critical check fails, "degraded" (200) if only optional
// checks fail.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	results := h.probe(r.Context())
	components := make(map[string]CompStatus, len(results))
	overall := "ok"

	for _, res := range results {
		if res.err != nil {
			components[res.check.Name] = CompStatus{Status: "down", Error: res.err.Error()}
			switch {
			case res.check.Critical:
				overall = "down"
			case overall == "ok":
				overall = "degraded"
			}
			continue
		}
		components[res.check.Name] = CompStatus{Status: "ok", Latency: res.latency.String()}
	}

	code := http.StatusOK
	if overall == "down" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, HealthResponse{
		Status:     overall,
		Version:    h.version,
		Components: components,
		Timestamp:  time.Now(),
	})
}

// probe pings all checks concurrently under one timeout.
func (h *HealthHandler) probe(ctx context.Context) []probeResult {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	results := make([]probeResult, len(h.checks))
	var wg sync.WaitGroup
	for i, c := range h.checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			err := c.Ping(ctx)
			results[i] = probeResult{check: c, err: err, latency: time.Since(start)}
		}()
	}
	wg.Wait()
	return results
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}
