// FilePath: api/resources/api.resource.alerts.go
package resources

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/helmsense/hub/internal/errors"
	"github.com/helmsense/hub/internal/hubservice"
	"github.com/helmsense/hub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// AlertHandlers encapsulates the alert and drowsy-event HTTP handlers
type AlertHandlers struct {
	hubservice      *hubservice.HubService
	defaultDeviceID string
}

// @Summary List recent alerts
// @Description Recent safety alerts for a device, newest first
// @Tags alerts
// @Produce json
// @Param device_id query string false "Device ID"
// @Param limit query int false "Maximum number of alerts"
// @Param unacknowledged query bool false "Only unacknowledged alerts"
// @Success 200 {array} models.Alert
// @Router /api/alerts [get]
func (h *AlertHandlers) ListAlerts(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	deviceID := deviceIDFromRequest(r, h.defaultDeviceID)

	var filters models.AlertFilters
	if err := queryDecoder.Decode(&filters, r.URL.Query()); err != nil {
		respondWithError(w, errors.NewValidationError("invalid query parameters", err).WithRequestID(requestID))
		return
	}

	alerts, err := h.hubservice.ListAlerts(r.Context(), deviceID, filters)
	if err != nil {
		nuts.L.Warnf("[API] Alert listing degraded for %s: %v", deviceID, err)
		alerts = []*models.Alert{}
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"device_id": deviceID,
		"alerts":    alerts,
	})
}

// @Summary Acknowledge an alert
// @Description Mark an alert as seen by an operator
// @Tags alerts
// @Produce json
// @Param id path string true "Alert ID"
// @Success 200 {object} map[string]any
// @Failure 404 {object} errors.APIError
// @Router /api/alerts/{id}/ack [post]
// @Security BearerAuth
func (h *AlertHandlers) AcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]
	requestID := nuts.NID("req", 12)

	if err := h.hubservice.AcknowledgeAlert(r.Context(), id); err != nil {
		respondServiceError(w, err, errors.NewInternalError("failed to acknowledge alert", err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"status": "OK",
		"id":     id,
	})
}

// @Summary List drowsy events
// @Description Recent drowsiness detections for a device, newest first
// @Tags alerts
// @Produce json
// @Param device_id query string false "Device ID"
// @Param limit query int false "Maximum number of events"
// @Success 200 {array} models.DrowsyEvent
// @Router /api/drowsy-events [get]
func (h *AlertHandlers) ListDrowsyEvents(w http.ResponseWriter, r *http.Request) {
	deviceID := deviceIDFromRequest(r, h.defaultDeviceID)
	_, limit := getPaginationParams(r)

	events, err := h.hubservice.ListDrowsyEvents(r.Context(), deviceID, limit)
	if err != nil {
		nuts.L.Warnf("[API] Drowsy event listing degraded for %s: %v", deviceID, err)
		events = []*models.DrowsyEvent{}
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"device_id": deviceID,
		"events":    events,
	})
}
