// FilePath: internal/hubservice/hubservice.telemetry.go
package hubservice

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/helmsense/hub/internal/errors"
	"github.com/helmsense/hub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// Valid motor control states accepted from the dashboard.
var ValidMotorStates = []string{"ON", "OFF"}

// IngestTelemetry normalizes and persists one inbound sample. The server
// timestamp always wins over anything the device sent. Returns the
// number of alerts generated.
func (s *HubService) IngestTelemetry(ctx context.Context, deviceID string, payload []byte) (int, error) {
	now := s.now()

	if len(bytes.TrimSpace(payload)) == 0 {
		return 0, errors.NewValidationError("no data", nil)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return 0, errors.NewValidationError("invalid telemetry payload", err)
	}
	if len(raw) == 0 {
		return 0, errors.NewValidationError("no data", nil)
	}

	sample := &models.TelemetrySample{}
	if err := json.Unmarshal(payload, sample); err != nil {
		return 0, errors.NewValidationError("invalid telemetry payload", err)
	}

	// Server stamp, epoch seconds. Device clocks are not trusted.
	sample.ServerTime = now.Unix()

	// Full overwrite of the live snapshot; no history kept here.
	if err := s.Live.SetLive(ctx, deviceID, sample); err != nil {
		return 0, err
	}

	// Registry bookkeeping is best-effort: telemetry from an
	// unregistered helmet is still accepted.
	if err := s.Devices.UpdateLastSeen(ctx, deviceID, now); err != nil && !errors.IsNotFound(err) {
		nuts.L.Warnf("[Telemetry] Failed to update last seen for %s: %v", deviceID, err)
	}
	if err := s.Devices.UpdateLastTelemetryReceived(ctx, deviceID, now); err != nil && !errors.IsNotFound(err) {
		nuts.L.Warnf("[Telemetry] Failed to update last telemetry received for %s: %v", deviceID, err)
	}

	if sample.IsDrowsy {
		event := &models.DrowsyEvent{
			ID:          nuts.NID("drwe", 12),
			DeviceID:    deviceID,
			Timestamp:   now,
			Pitch:       sample.Pitch,
			Temperature: sample.BodyTemp,
		}
		if err := s.DrowsyEvents.Create(ctx, event); err != nil {
			nuts.L.Warnf("[Telemetry] Failed to log drowsy event for %s: %v", deviceID, err)
		}
	}

	// Threshold alerts fire independently of the drowsy flag, and every
	// produced alert is persisted. No debouncing across samples.
	generated := s.evaluator.Evaluate(deviceID, *sample, now)
	for _, alert := range generated {
		if err := s.Alerts.Create(ctx, alert); err != nil {
			return 0, err
		}
		s.events.Emit("alert.created", alert.ID)
	}

	return len(generated), nil
}

// GetLiveState returns the device's current snapshot.
func (s *HubService) GetLiveState(ctx context.Context, deviceID string) (*models.TelemetrySample, error) {
	return s.Live.GetLive(ctx, deviceID)
}

// CheckInactivity reports whether the device has gone quiet. A device
// with no live state at all counts as inactive.
func (s *HubService) CheckInactivity(ctx context.Context, deviceID string) (bool, error) {
	sample, err := s.Live.GetLive(ctx, deviceID)
	if err != nil {
		if errors.IsNotFound(err) {
			return true, nil
		}
		return true, err
	}
	return IsInactive(sample.Heartbeat(), s.inactivityThreshold, s.now()), nil
}

// GetMotorState reads the device's motor control record. An absent
// record reads as UNKNOWN.
func (s *HubService) GetMotorState(ctx context.Context, deviceID string) (string, error) {
	state, err := s.Live.GetControl(ctx, deviceID)
	if err != nil {
		if errors.IsNotFound(err) {
			return "UNKNOWN", nil
		}
		return "", err
	}
	if state.Motor == "" {
		return "UNKNOWN", nil
	}
	return state.Motor, nil
}

// SetMotorState writes the motor control record for the device.
func (s *HubService) SetMotorState(ctx context.Context, deviceID, state, source string) error {
	state = strings.ToUpper(state)
	if !isValidMotorState(state) {
		return errors.NewValidationError("invalid motor state", nil).
			WithDetails(map[string]any{"allowed": ValidMotorStates})
	}

	control := &models.ControlState{
		Motor:     state,
		UpdatedAt: s.now().Unix(),
		Source:    source,
	}
	nuts.L.Infof("[Control] Motor for %s set to %s (source=%s)", deviceID, state, source)
	return s.Live.SetControl(ctx, deviceID, control)
}

// EmergencyStop shuts the motor down with highest priority.
func (s *HubService) EmergencyStop(ctx context.Context, deviceID string) error {
	control := &models.ControlState{
		Motor:     "OFF",
		UpdatedAt: s.now().Unix(),
		Source:    "emergency",
	}
	nuts.L.Infof("[Control] EMERGENCY STOP for %s", deviceID)
	return s.Live.SetControl(ctx, deviceID, control)
}

func isValidMotorState(state string) bool {
	for _, valid := range ValidMotorStates {
		if state == valid {
			return true
		}
	}
	return false
}
