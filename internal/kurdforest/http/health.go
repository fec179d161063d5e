package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/kurdforest/internal/kurdforest/store"
	"github.com/aussiebroadwan/kurdforest/pkg/httpx"
)

// HealthResponse is the body of the health probes.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database"`
}

// LivezHandler godoc
//
//	@Summary		Health Check Endpoint
//	@Description	Liveness probe endpoint returning basic service health status, uptime, and version information
//	@Description	This endpoint always returns 200 OK if the service is running
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe endpoint returning service health status and the database check
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &HealthChecks{Database: "ok"}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, statusCode, HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
