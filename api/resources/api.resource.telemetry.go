// FilePath: api/resources/api.resource.telemetry.go
package resources

import (
	"io"
	"net/http"

	"github.com/helmsense/hub/internal/errors"
	"github.com/helmsense/hub/internal/hubservice"
	nuts "github.com/vaudience/go-nuts"
)

// TelemetryHandlers encapsulates the telemetry HTTP handlers
type TelemetryHandlers struct {
	hubservice      *hubservice.HubService
	defaultDeviceID string
}

// @Summary Ingest a telemetry sample
// @Description Helmet firmware pushes live sensor data here
// @Tags telemetry
// @Accept json
// @Produce json
// @Param device_id query string false "Device ID"
// @Success 200 {object} map[string]any
// @Failure 400 {object} errors.APIError
// @Router /api/telemetry [post]
// @Security BearerAuth
func (h *TelemetryHandlers) ReceiveTelemetry(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	deviceID := deviceIDFromRequest(r, h.defaultDeviceID)

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		respondWithError(w, errors.NewValidationError("failed to read request body", err).WithRequestID(requestID))
		return
	}

	alertsGenerated, err := h.hubservice.IngestTelemetry(r.Context(), deviceID, payload)
	if err != nil {
		respondServiceError(w, err, errors.NewInternalError("failed to ingest telemetry", err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"status":           "OK",
		"alerts_generated": alertsGenerated,
	})
}

// @Summary Get live telemetry
// @Description Dashboard fetches the current snapshot for a device
// @Tags telemetry
// @Produce json
// @Param device_id query string false "Device ID"
// @Success 200 {object} map[string]any
// @Router /api/live [get]
func (h *TelemetryHandlers) GetLiveData(w http.ResponseWriter, r *http.Request) {
	deviceID := deviceIDFromRequest(r, h.defaultDeviceID)

	live, err := h.hubservice.GetLiveState(r.Context(), deviceID)
	if err != nil && !errors.IsNotFound(err) {
		// Dashboards degrade to an empty snapshot instead of erroring.
		nuts.L.Warnf("[API] Failed to read live state for %s: %v", deviceID, err)
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"device_id": deviceID,
		"live":      live,
	})
}

// @Summary Check device inactivity
// @Description Reports whether the helmet has stopped sending telemetry
// @Tags telemetry
// @Produce json
// @Param device_id query string false "Device ID"
// @Success 200 {object} map[string]any
// @Router /api/inactive [get]
func (h *TelemetryHandlers) CheckInactivity(w http.ResponseWriter, r *http.Request) {
	deviceID := deviceIDFromRequest(r, h.defaultDeviceID)

	inactive, err := h.hubservice.CheckInactivity(r.Context(), deviceID)
	if err != nil {
		nuts.L.Warnf("[API] Inactivity check degraded for %s: %v", deviceID, err)
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"device_id": deviceID,
		"inactive":  inactive,
	})
}
