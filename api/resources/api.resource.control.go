// FilePath: api/resources/api.resource.control.go
package resources

import (
	"encoding/json"
	"net/http"

	"github.com/helmsense/hub/internal/errors"
	"github.com/helmsense/hub/internal/hubservice"
	nuts "github.com/vaudience/go-nuts"
)

// ControlHandlers encapsulates the motor control HTTP handlers
type ControlHandlers struct {
	hubservice      *hubservice.HubService
	defaultDeviceID string
}

type motorRequest struct {
	State string `json:"state"`
}

// @Summary Get motor state
// @Description Current motor control state for a device
// @Tags control
// @Produce json
// @Param device_id query string false "Device ID"
// @Success 200 {object} map[string]any
// @Router /api/motor [get]
func (h *ControlHandlers) GetMotorState(w http.ResponseWriter, r *http.Request) {
	deviceID := deviceIDFromRequest(r, h.defaultDeviceID)

	state, err := h.hubservice.GetMotorState(r.Context(), deviceID)
	if err != nil {
		nuts.L.Warnf("[API] Motor state read degraded for %s: %v", deviceID, err)
		state = "UNKNOWN"
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"device_id": deviceID,
		"motor":     state,
	})
}

// @Summary Set motor state
// @Description Dashboard override of the motor control state
// @Tags control
// @Accept json
// @Produce json
// @Param device_id query string false "Device ID"
// @Param command body motorRequest true "Desired motor state (ON or OFF)"
// @Success 200 {object} map[string]any
// @Failure 400 {object} errors.APIError
// @Router /motor [post]
// @Security BearerAuth
func (h *ControlHandlers) SetMotorState(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	deviceID := deviceIDFromRequest(r, h.defaultDeviceID)

	var req motorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	if err := h.hubservice.SetMotorState(r.Context(), deviceID, req.State, "dashboard"); err != nil {
		respondServiceError(w, err, errors.NewInternalError("failed to set motor state", err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"status":    "OK",
		"device_id": deviceID,
	})
}

// @Summary Emergency stop
// @Description Immediately shut the motor down
// @Tags control
// @Produce json
// @Param device_id query string false "Device ID"
// @Success 200 {object} map[string]any
// @Router /emergency-stop [post]
// @Security BearerAuth
func (h *ControlHandlers) EmergencyStop(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	deviceID := deviceIDFromRequest(r, h.defaultDeviceID)

	if err := h.hubservice.EmergencyStop(r.Context(), deviceID); err != nil {
		respondServiceError(w, err, errors.NewInternalError("failed to trigger emergency stop", err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"status":    "STOPPED",
		"device_id": deviceID,
	})
}
