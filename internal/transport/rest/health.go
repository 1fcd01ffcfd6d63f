package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// storePinger checks both stores; datasync.Coordinator implements it.
type storePinger interface {
	Ping(ctx context.Context) (primaryErr, fallbackErr error)
}

// HealthHandler serves health check endpoints.
type HealthHandler struct {
	stores  storePinger
	version string
	now     func() time.Time
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(stores storePinger, version string) *HealthHandler {
	return &HealthHandler{stores: stores, version: version, now: time.Now}
}

// HealthResponse is the JSON response for /health and /ready.
type HealthResponse struct {
	Status     string                `json:"status"`
	Version    string                `json:"version,omitempty"`
	Components map[string]CompStatus `json:"components,omitempty"`
	Timestamp  time.Time             `json:"timestamp"`
}

// CompStatus is the status of an individual component.
type CompStatus struct {
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	Latency string `json:"latency,omitempty"`
}

const (
	statusOK       = "ok"
	statusDegraded = "degraded"
	statusDown     = "down"
)

// Live is the liveness probe. Always returns 200.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: statusOK, Timestamp: h.now()})
}

// Ready is the readiness probe. The bot can serve while either store is
// reachable, so only both stores down gives 503.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	status, _ := h.check(r.Context())
	writeJSON(w, httpStatus(status), HealthResponse{Status: status, Timestamp: h.now()})
}

// Health reports each store with the ping latency and the build version.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status, components := h.check(r.Context())
	writeJSON(w, httpStatus(status), HealthResponse{
		Status:     status,
		Version:    h.version,
		Components: components,
		Timestamp:  h.now(),
	})
}

func (h *HealthHandler) check(ctx context.Context) (string, map[string]CompStatus) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	start := time.Now()
	primaryErr, fallbackErr := h.stores.Ping(ctx)
	latency := time.Since(start).String()

	component := func(err error) CompStatus {
		if err != nil {
			return CompStatus{Status: statusDown, Error: err.Error()}
		}
		return CompStatus{Status: statusOK, Latency: latency}
	}
	components := map[string]CompStatus{
		"authoritative": component(primaryErr),
		"fallback":      component(fallbackErr),
	}

	switch {
	case primaryErr == nil && fallbackErr == nil:
		return statusOK, components
	case primaryErr != nil && fallbackErr != nil:
		return statusDown, components
	default:
		return statusDegraded, components
	}
}

func httpStatus(status string) int {
	if status == statusDown {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}
