package api

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/nexusai/dispatch-api/internal/api/shared"
)

// serviceName and serviceVersion identify this deployment in health responses.
const (
	serviceName    = "dispatch-api"
	serviceVersion = "1.0.0"
)

// HealthResponse reports overall liveness plus store reachability.
type HealthResponse struct {
	Status    string         `json:"status"`
	Message   string         `json:"message"`
	Timestamp time.Time      `json:"timestamp"`
	Service   string         `json:"service"`
	Version   string         `json:"version"`
	Database  DatabaseHealth `json:"database"`
}

// DatabaseHealth is the store connectivity block of a health response.
type DatabaseHealth struct {
	Connected bool   `json:"connected"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db *sql.DB, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

// Check handles GET /health requests. Returns 200 when the store is
// reachable and 503 (degraded) when it is not; the process itself being
// able to answer is the liveness half of the signal.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "ok",
		Message:   "System is operational",
		Timestamp: time.Now().UTC(),
		Service:   serviceName,
		Version:   serviceVersion,
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Warn("health check: database unreachable", "error", err)
		response.Status = "degraded"
		response.Database = DatabaseHealth{
			Connected: false,
			Error:     err.Error(),
		}
		shared.RespondWithJSON(w, r, http.StatusServiceUnavailable, response)
		return
	}

	response.Database = DatabaseHealth{
		Connected: true,
		Message:   "Database connection successful",
	}
	shared.RespondWithJSON(w, r, http.StatusOK, response)
}
