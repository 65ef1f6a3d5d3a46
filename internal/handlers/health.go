package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"
)

// healthCheckTimeout bounds each dependency probe
const healthCheckTimeout = 5 * time.Second

// Pinger is satisfied by *database.DB
type Pinger interface {
	PingContext(ctx context.Context) error
}

// CheckFunc probes one dependency
type CheckFunc func(ctx context.Context) error

// HealthChecker handles health check requests
type HealthChecker struct {
	db     Pinger
	checks map[string]CheckFunc
}

// NewHealthChecker creates a new health checker. Extra dependencies (Redis,
// RabbitMQ) are added with WithCheck.
func NewHealthChecker(db Pinger) *HealthChecker {
	return &HealthChecker{db: db, checks: map[string]CheckFunc{}}
}

// WithCheck registers an extra dependency probe for extended mode
func (h *HealthChecker) WithCheck(name string, fn CheckFunc) *HealthChecker {
	h.checks[name] = fn
	return h
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HealthCheck handles the /healthz endpoint. ?mode=extended probes every
// dependency and answers 503 when one is down.
func (h *HealthChecker) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if r.URL.Query().Get("mode") != "extended" {
		respondJSON(w, http.StatusOK, response)
		return
	}

	probes := map[string]CheckFunc{}
	if h.db != nil {
		probes["database"] = h.db.PingContext
	}
	for name, fn := range h.checks {
		probes[name] = fn
	}

	names := make([]string, 0, len(probes))
	for name := range probes {
		names = append(names, name)
	}
	sort.Strings(names)

	response.Checks = make(map[string]string, len(names))
	for _, name := range names {
		if err := probe(r.Context(), probes[name]); err != nil {
			response.Status = "unhealthy"
			response.Checks[name] = "unhealthy: " + sanitizeErrorMessage(err.Error())
			continue
		}
		response.Checks[name] = "healthy"
	}

	status := http.StatusOK
	if response.Status == "unhealthy" {
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, response)
}

func probe(ctx context.Context, fn CheckFunc) error {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	return fn(ctx)
}
