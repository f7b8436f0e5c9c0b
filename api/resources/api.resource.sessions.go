// FilePath: api/resources/api.resource.sessions.go
package resources

import (
	"net/http"

	"github.com/helmsense/hub/internal/errors"
	"github.com/helmsense/hub/internal/hubservice"
	"github.com/helmsense/hub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// SessionHandlers encapsulates the session and work-hours HTTP handlers
type SessionHandlers struct {
	hubservice      *hubservice.HubService
	defaultDeviceID string
}

// @Summary List sessions
// @Description Recent work sessions for a device, newest first
// @Tags sessions
// @Produce json
// @Param device_id query string false "Device ID"
// @Param limit query int false "Maximum number of sessions"
// @Success 200 {array} models.SessionView
// @Router /api/sessions [get]
func (h *SessionHandlers) ListSessions(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	deviceID := deviceIDFromRequest(r, h.defaultDeviceID)

	var filters models.SessionFilters
	if err := queryDecoder.Decode(&filters, r.URL.Query()); err != nil {
		respondWithError(w, errors.NewValidationError("invalid query parameters", err).WithRequestID(requestID))
		return
	}

	sessions, err := h.hubservice.ListSessions(r.Context(), deviceID, filters)
	if err != nil {
		// Dashboards degrade to an empty listing instead of erroring.
		nuts.L.Warnf("[API] Session listing degraded for %s: %v", deviceID, err)
		sessions = []models.SessionView{}
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"device_id": deviceID,
		"sessions":  sessions,
	})
}

// @Summary Get the current session
// @Description Active session for a device, null when none is open
// @Tags sessions
// @Produce json
// @Param device_id query string false "Device ID"
// @Success 200 {object} map[string]any
// @Router /api/sessions/current [get]
func (h *SessionHandlers) GetCurrentSession(w http.ResponseWriter, r *http.Request) {
	deviceID := deviceIDFromRequest(r, h.defaultDeviceID)

	session, err := h.hubservice.CurrentSession(r.Context(), deviceID)
	if err != nil {
		nuts.L.Warnf("[API] Current session lookup degraded for %s: %v", deviceID, err)
		session = nil
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"device_id": deviceID,
		"session":   session,
	})
}

// @Summary Get worked hours
// @Description Total worked hours for a device, or for a single UTC day when date is given
// @Tags sessions
// @Produce json
// @Param device_id query string false "Device ID"
// @Param date query string false "UTC day (YYYY-MM-DD)"
// @Success 200 {object} map[string]any
// @Failure 400 {object} errors.APIError
// @Router /api/workhours [get]
func (h *SessionHandlers) GetWorkedHours(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	deviceID := deviceIDFromRequest(r, h.defaultDeviceID)

	var query models.WorkHoursQuery
	if err := queryDecoder.Decode(&query, r.URL.Query()); err != nil {
		respondWithError(w, errors.NewValidationError("invalid query parameters", err).WithRequestID(requestID))
		return
	}

	var hours float64
	var err error
	if query.Date != "" {
		hours, err = h.hubservice.DailyWorkedHours(r.Context(), deviceID, query.Date)
	} else {
		hours, err = h.hubservice.TotalWorkedHours(r.Context(), deviceID)
	}
	if err != nil {
		if apiErr, ok := err.(*errors.APIError); ok && apiErr.Type == errors.ErrorTypeValidation {
			respondWithError(w, apiErr.WithRequestID(requestID))
			return
		}
		// Storage failures read as zero hours on the dashboard.
		nuts.L.Warnf("[API] Worked hours degraded for %s: %v", deviceID, err)
		hours = 0.0
	}

	payload := map[string]any{
		"device_id":    deviceID,
		"worked_hours": hours,
	}
	if query.Date != "" {
		payload["date"] = query.Date
	}
	respondWithJSON(w, http.StatusOK, payload)
}

// @Summary Get worker stats
// @Description Today's summary for the worker dashboard
// @Tags sessions
// @Produce json
// @Param device_id query string false "Device ID"
// @Success 200 {object} hubservice.WorkerStats
// @Router /api/worker/stats [get]
func (h *SessionHandlers) GetWorkerStats(w http.ResponseWriter, r *http.Request) {
	deviceID := deviceIDFromRequest(r, h.defaultDeviceID)

	stats, err := h.hubservice.DailyWorkerStats(r.Context(), deviceID)
	if err != nil {
		nuts.L.Warnf("[API] Worker stats degraded for %s: %v", deviceID, err)
		stats = &hubservice.WorkerStats{}
	}

	respondWithJSON(w, http.StatusOK, stats)
}
