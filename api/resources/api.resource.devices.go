// FilePath: api/resources/api.resource.devices.go
package resources

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/helmsense/hub/internal/errors"
	"github.com/helmsense/hub/internal/hubservice"
	"github.com/helmsense/hub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// DeviceHandlers encapsulates the device-registry HTTP handlers
type DeviceHandlers struct {
	hubservice *hubservice.HubService
}

// @Summary Register a new device
// @Description Register a new helmet with the provided details
// @Tags devices
// @Accept json
// @Produce json
// @Param device body models.Device true "Device details"
// @Success 201 {object} models.Device
// @Failure 400 {object} errors.APIError
// @Failure 401 {object} errors.APIError
// @Router /api/devices [post]
// @Security BearerAuth
func (h *DeviceHandlers) CreateDevice(w http.ResponseWriter, r *http.Request) {
	var device models.Device
	requestID := nuts.NID("req", 12)

	if err := json.NewDecoder(r.Body).Decode(&device); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	err := h.hubservice.CreateDevice(r.Context(), &device)
	if err != nil {
		respondServiceError(w, err, errors.NewInternalError("failed to create device", err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusCreated, device)
}

// @Summary Get a device by ID
// @Tags devices
// @Produce json
// @Param id path string true "Device ID"
// @Success 200 {object} models.Device
// @Failure 404 {object} errors.APIError
// @Router /api/devices/{id} [get]
func (h *DeviceHandlers) GetDevice(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]
	requestID := nuts.NID("req", 12)

	device, err := h.hubservice.GetDevice(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, errors.NewNotFoundError("device not found", err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, device)
}

// @Summary List devices
// @Tags devices
// @Produce json
// @Param offset query int false "Offset for pagination"
// @Param limit query int false "Limit for pagination"
// @Success 200 {array} models.Device
// @Router /api/devices [get]
func (h *DeviceHandlers) ListDevices(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	offset, limit := getPaginationParams(r)

	devices, err := h.hubservice.ListDevices(r.Context(), offset, limit)
	if err != nil {
		respondServiceError(w, err, errors.NewInternalError("failed to list devices", err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, devices)
}

// @Summary Update a device
// @Tags devices
// @Accept json
// @Produce json
// @Param id path string true "Device ID"
// @Param device body models.Device true "Updated device details"
// @Success 200 {object} models.Device
// @Failure 400 {object} errors.APIError
// @Failure 404 {object} errors.APIError
// @Router /api/devices/{id} [put]
// @Security BearerAuth
func (h *DeviceHandlers) UpdateDevice(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]
	requestID := nuts.NID("req", 12)

	var device models.Device
	if err := json.NewDecoder(r.Body).Decode(&device); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	device.ID = id
	err := h.hubservice.UpdateDevice(r.Context(), &device)
	if err != nil {
		respondServiceError(w, err, errors.NewInternalError("failed to update device", err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, device)
}

// @Summary Delete a device
// @Description Delete a device and all its associated data
// @Tags devices
// @Produce json
// @Param id path string true "Device ID"
// @Success 204 "No Content"
// @Failure 404 {object} errors.APIError
// @Router /api/devices/{id} [delete]
// @Security BearerAuth
func (h *DeviceHandlers) DeleteDevice(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]
	requestID := nuts.NID("req", 12)

	err := h.hubservice.DeleteDevice(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, errors.NewInternalError("failed to delete device", err).WithRequestID(requestID))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// @Summary Get device status
// @Description Current status of a device including live telemetry and recent alerts
// @Tags devices
// @Produce json
// @Param id path string true "Device ID"
// @Success 200 {object} hubservice.DeviceStatus
// @Failure 404 {object} errors.APIError
// @Router /api/devices/{id}/status [get]
func (h *DeviceHandlers) GetDeviceStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]
	requestID := nuts.NID("req", 12)

	status, err := h.hubservice.GetDeviceStatus(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, errors.NewNotFoundError("device not found", err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, status)
}
