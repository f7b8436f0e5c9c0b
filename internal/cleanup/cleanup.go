package cleanup

import (
	"context"
	"fmt"

	"github.com/helmsense/hub/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

// CleanupService coordinates deletion of a device and its dependent data
type CleanupService struct {
	devices      repository.DeviceRepository
	sessions     repository.SessionRepository
	alerts       repository.AlertRepository
	drowsyEvents repository.DrowsyEventRepository
	live         repository.LiveStateStore
	events       *nuts.EventEmitter
}

// New creates a new CleanupService
func New(
	devices repository.DeviceRepository,
	sessions repository.SessionRepository,
	alerts repository.AlertRepository,
	drowsyEvents repository.DrowsyEventRepository,
	live repository.LiveStateStore,
) *CleanupService {
	return &CleanupService{
		devices:      devices,
		sessions:     sessions,
		alerts:       alerts,
		drowsyEvents: drowsyEvents,
		live:         live,
		events:       nuts.NewEventEmitter(),
	}
}

// DeleteDevice deletes a device and all its sessions, alerts, drowsy
// events and realtime state.
func (s *CleanupService) DeleteDevice(ctx context.Context, deviceID string) error {
	// Start transaction
	tx, err := s.devices.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Will be ignored if transaction is committed

	if err := s.sessions.DeleteByDevice(ctx, deviceID, tx); err != nil {
		return fmt.Errorf("failed to delete sessions: %w", err)
	}
	s.events.Emit("sessions.deleted", deviceID)

	if err := s.alerts.DeleteByDevice(ctx, deviceID, tx); err != nil {
		return fmt.Errorf("failed to delete alerts: %w", err)
	}
	s.events.Emit("alerts.deleted", deviceID)

	if err := s.drowsyEvents.DeleteByDevice(ctx, deviceID, tx); err != nil {
		return fmt.Errorf("failed to delete drowsy events: %w", err)
	}
	s.events.Emit("drowsy_events.deleted", deviceID)

	// Commit transaction
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	// Finally, delete the device record and its realtime state
	if err := s.devices.Delete(ctx, deviceID); err != nil {
		return fmt.Errorf("failed to delete device: %w", err)
	}
	if err := s.live.DeleteDevice(ctx, deviceID); err != nil {
		nuts.L.Warnf("[Cleanup] Failed to delete realtime state for %s: %v", deviceID, err)
	}

	// Emit event after successful deletion
	s.events.Emit("device.deleted", deviceID)
	return nil
}

// OnCleanup registers a callback for cleanup events
func (s *CleanupService) OnCleanup(event string, handler func(id string)) {
	s.events.On(event, "cleanup_handler", func(args ...interface{}) {
		if len(args) > 0 {
			if id, ok := args[0].(string); ok {
				handler(id)
			}
		}
	})
}
