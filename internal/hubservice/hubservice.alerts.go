// FilePath: internal/hubservice/hubservice.alerts.go
package hubservice

import (
	"context"

	"github.com/helmsense/hub/internal/models"
)

// ListAlerts returns recent alerts for a device, newest first.
func (s *HubService) ListAlerts(ctx context.Context, deviceID string, filters models.AlertFilters) ([]*models.Alert, error) {
	return s.Alerts.ListRecent(ctx, deviceID, filters)
}

// AcknowledgeAlert marks an alert as seen by an operator.
func (s *HubService) AcknowledgeAlert(ctx context.Context, id string) error {
	return s.Alerts.Acknowledge(ctx, id)
}

// ListDrowsyEvents returns recent drowsiness detections for a device,
// newest first.
func (s *HubService) ListDrowsyEvents(ctx context.Context, deviceID string, limit int) ([]*models.DrowsyEvent, error) {
	return s.DrowsyEvents.ListRecent(ctx, deviceID, limit)
}
