// FilePath: internal/hubservice/hubservice.device.go
package hubservice

import (
	"context"
	"time"

	"github.com/itsatony/struccy"

	"github.com/helmsense/hub/internal/errors"
	"github.com/helmsense/hub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// DeviceStatus is the combined dashboard view of one helmet.
type DeviceStatus struct {
	Device         *models.Device          `json:"device"`
	Live           *models.TelemetrySample `json:"live"`
	CurrentSession *models.SessionView     `json:"current_session"`
	RecentAlerts   []*models.Alert         `json:"recent_alerts"`
	OnlineStatus   string                  `json:"online_status"`
	Inactive       bool                    `json:"inactive"`
}

// CreateDevice registers a new helmet with proper validation and defaults
func (s *HubService) CreateDevice(ctx context.Context, device *models.Device) error {
	if device.Name == "" {
		return errors.NewValidationError("device name is required", nil)
	}

	// Device ids are usually assigned by provisioning (helmet_01 style);
	// generate one only when the caller left it blank.
	if device.ID == "" {
		device.ID = nuts.NID("helm", 12)
	}

	now := s.now()
	device.CreatedAt = now
	device.UpdatedAt = now
	device.LastSeen = now
	device.LastTelemetryReceived = now

	if device.FirmwareVersion == "" {
		device.FirmwareVersion = "1.0.0"
	}

	nuts.L.Infof("[DeviceService] Creating new device: %s (%s)", device.Name, device.ID)
	return s.Devices.Create(ctx, device)
}

// UpdateDevice updates an existing device with role-based field access
func (s *HubService) UpdateDevice(ctx context.Context, device *models.Device) error {
	existing, err := s.Devices.Get(ctx, device.ID)
	if err != nil {
		return err
	}

	roles := GetUserRoles(ctx)

	updatedFields, _, err := struccy.UpdateStructFields(existing, device, roles, true, true)
	if err != nil {
		return errors.NewAuthorizationError("unauthorized field update", err)
	}

	device.UpdatedAt = s.now()

	nuts.L.Infof("[DeviceService] Updating device %s, fields changed: %v", device.ID, updatedFields)
	return s.Devices.Update(ctx, device)
}

// GetDevice retrieves a device with role-based field filtering
func (s *HubService) GetDevice(ctx context.Context, id string) (*models.Device, error) {
	device, err := s.Devices.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.filterDevice(ctx, device)
}

// DeleteDevice removes a device and all its dependent data
func (s *HubService) DeleteDevice(ctx context.Context, id string) error {
	if _, err := s.Devices.Get(ctx, id); err != nil {
		return err
	}

	nuts.L.Infof("[DeviceService] Deleting device: %s", id)
	return s.Cleanup.DeleteDevice(ctx, id)
}

// ListDevices retrieves a paginated device list with role-based filtering
func (s *HubService) ListDevices(ctx context.Context, offset, limit int) ([]*models.Device, error) {
	if limit <= 0 || limit > 100 {
		limit = 50 // Default limit
	}
	if offset < 0 {
		offset = 0
	}

	devices, err := s.Devices.List(ctx, offset, limit)
	if err != nil {
		return nil, err
	}

	filtered := make([]*models.Device, 0, len(devices))
	for _, device := range devices {
		fd, err := s.filterDevice(ctx, device)
		if err != nil {
			nuts.L.Warnf("[DeviceService] Failed to filter device %s: %v", device.ID, err)
			continue
		}
		filtered = append(filtered, fd)
	}
	return filtered, nil
}

// GetDeviceStatus assembles the combined status view. Storage failures
// on the secondary reads degrade to empty values rather than errors.
func (s *HubService) GetDeviceStatus(ctx context.Context, id string) (*DeviceStatus, error) {
	device, err := s.GetDevice(ctx, id)
	if err != nil {
		return nil, err
	}

	live, err := s.Live.GetLive(ctx, id)
	if err != nil {
		if !errors.IsNotFound(err) {
			nuts.L.Warnf("[DeviceService] Failed to read live state for %s: %v", id, err)
		}
		live = nil
	}

	current, err := s.CurrentSession(ctx, id)
	if err != nil {
		nuts.L.Warnf("[DeviceService] Failed to read current session for %s: %v", id, err)
		current = nil
	}

	recentAlerts, err := s.Alerts.ListRecent(ctx, id, models.AlertFilters{Limit: 10})
	if err != nil {
		nuts.L.Warnf("[DeviceService] Failed to read recent alerts for %s: %v", id, err)
		recentAlerts = []*models.Alert{}
	}

	lastSeen := device.LastSeen
	if live != nil {
		if hb := live.Heartbeat(); hb.After(lastSeen) {
			lastSeen = hb
		}
	}

	now := s.now()
	return &DeviceStatus{
		Device:         device,
		Live:           live,
		CurrentSession: current,
		RecentAlerts:   recentAlerts,
		OnlineStatus:   determineOnlineStatus(lastSeen, now),
		Inactive:       IsInactive(lastSeen, s.inactivityThreshold, now),
	}, nil
}

// Helper functions

func (s *HubService) filterDevice(ctx context.Context, device *models.Device) (*models.Device, error) {
	roles := GetUserRoles(ctx)

	filteredMap, err := struccy.StructToMapFieldsWithReadXS(device, roles)
	if err != nil {
		return nil, errors.NewInternalError("failed to filter device fields", err)
	}
	filtered := &models.Device{}
	_, err = struccy.MergeMapStringFieldsToStruct(filtered, filteredMap, roles)
	if err != nil {
		return nil, errors.NewInternalError("failed to map filtered fields to device struct", err)
	}
	return filtered, nil
}

// determineOnlineStatus mirrors the tracker's 60 second heartbeat rule
// for "online" and the 10 minute inactivity window for "away".
func determineOnlineStatus(lastSeen, now time.Time) string {
	if lastSeen.IsZero() {
		return "offline"
	}
	sinceLastSeen := now.Sub(lastSeen)

	switch {
	case sinceLastSeen <= time.Minute:
		return "online"
	case sinceLastSeen <= 10*time.Minute:
		return "away"
	default:
		return "offline"
	}
}
