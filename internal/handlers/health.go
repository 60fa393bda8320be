package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"versecache/internal/contextutil"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// BundleStatus reports whether the offline dataset is in memory.
type BundleStatus interface {
	Loaded() bool
}

// BreakerStatus reports the upstream circuit breaker state.
type BreakerStatus interface {
	State() string
}

// HealthHandler handles HTTP requests for health checks.
type HealthHandler struct {
	db                 Pinger
	bundle             BundleStatus
	breaker            BreakerStatus
	healthCheckTimeout time.Duration
}

// NewHealthHandler creates a new HealthHandler. breaker may be nil.
func NewHealthHandler(db Pinger, bundle BundleStatus, breaker BreakerStatus) *HealthHandler {
	return &HealthHandler{
		db:                 db,
		bundle:             bundle,
		breaker:            breaker,
		healthCheckTimeout: 5 * time.Second,
	}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	// Overall health status: "healthy", "degraded", or "unhealthy"
	Status string `json:"status"`

	// Timestamp of the health check
	Timestamp string `json:"timestamp"`

	// Individual check results
	Checks map[string]string `json:"checks"`

	// List of issues (only present if status is degraded or unhealthy)
	Issues []string `json:"issues,omitempty"`
}

// ServeHTTP handles GET /api/health.
//
// The cache database is critical: if it cannot be reached the service is
// unhealthy (503). A missing offline dataset or an open upstream breaker
// only degrades the service, since the remaining tiers still answer (200).
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	checkCtx, cancel := context.WithTimeout(ctx, h.healthCheckTimeout)
	defer cancel()

	checks := make(map[string]string)
	var issues []string
	critical := false

	if h.checkDatabase(checkCtx, logger) {
		checks["database"] = "ok"
	} else {
		checks["database"] = "error"
		issues = append(issues, "database_unavailable")
		critical = true
	}

	if h.bundle.Loaded() {
		checks["bundle"] = "ok"
	} else {
		checks["bundle"] = "unavailable"
		issues = append(issues, "bundle_not_loaded")
	}

	if h.breaker != nil {
		state := h.breaker.State()
		checks["upstream"] = state
		if state == "open" {
			issues = append(issues, "upstream_circuit_open")
		}
	}

	status := "healthy"
	httpStatus := http.StatusOK
	switch {
	case critical:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	case len(issues) > 0:
		status = "degraded"
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Issues:    issues,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.ErrorContext(ctx, "failed to encode health response", "error", err)
	}
}

// checkDatabase checks if the cache database is reachable.
func (h *HealthHandler) checkDatabase(ctx context.Context, logger *slog.Logger) bool {
	if err := h.db.PingContext(ctx); err != nil {
		logger.WarnContext(ctx, "database health check failed", "error", err)
		return false
	}
	return true
}
