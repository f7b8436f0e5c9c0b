// FilePath: internal/repository/repository.go
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/helmsense/hub/internal/database"
	"github.com/helmsense/hub/internal/models"
)

var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("resource not found")
	// ErrDuplicate indicates that a resource already exists
	ErrDuplicate = errors.New("resource already exists")
	// ErrInvalidInput indicates that the input data is invalid
	ErrInvalidInput = errors.New("invalid input")
)

// DeviceRepository defines the interface for device registry operations
type DeviceRepository interface {
	database.Repository
	Create(ctx context.Context, device *models.Device) error
	Get(ctx context.Context, id string) (*models.Device, error)
	Update(ctx context.Context, device *models.Device) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, offset, limit int) ([]*models.Device, error)
	UpdateLastSeen(ctx context.Context, id string, lastSeen time.Time) error
	UpdateLastTelemetryReceived(ctx context.Context, id string, lastReceived time.Time) error
}

// SessionRepository defines the interface for work-session records.
// Open and Close are conditional writes: the storage backend, not the
// caller, arbitrates the at-most-one-active-session invariant.
type SessionRepository interface {
	database.Repository
	// Open creates a new active session unless the device already has
	// one, in which case it returns a conflict error and writes nothing.
	Open(ctx context.Context, session *models.Session) error
	// Close stamps end_time and the final duration on the device's
	// active session in place. Returns the closed session, or a
	// not-found error when no session is active.
	Close(ctx context.Context, deviceID string, endTime time.Time) (*models.Session, error)
	// GetActive returns the device's open session, or a not-found error.
	GetActive(ctx context.Context, deviceID string) (*models.Session, error)
	// IncrementDrowsyCount atomically bumps the drowsy counter on a session.
	IncrementDrowsyCount(ctx context.Context, sessionID string) error
	// ListByDevice returns sessions newest-first. limit <= 0 means all.
	ListByDevice(ctx context.Context, deviceID string, limit int) ([]*models.Session, error)
	DeleteByDevice(ctx context.Context, deviceID string, tx database.Transaction) error
}

// AlertRepository defines the interface for safety alert records
type AlertRepository interface {
	database.Repository
	Create(ctx context.Context, alert *models.Alert) error
	ListRecent(ctx context.Context, deviceID string, filters models.AlertFilters) ([]*models.Alert, error)
	Acknowledge(ctx context.Context, id string) error
	DeleteByDevice(ctx context.Context, deviceID string, tx database.Transaction) error
}

// DrowsyEventRepository defines the interface for drowsiness detections
type DrowsyEventRepository interface {
	database.Repository
	Create(ctx context.Context, event *models.DrowsyEvent) error
	ListRecent(ctx context.Context, deviceID string, limit int) ([]*models.DrowsyEvent, error)
	CountSince(ctx context.Context, deviceID string, since time.Time) (int, error)
	DeleteByDevice(ctx context.Context, deviceID string, tx database.Transaction) error
}

// LiveStateStore holds the single mutable per-device records in the
// realtime store: the current telemetry snapshot and the motor control
// state. Reads of absent paths return ErrNotFound.
type LiveStateStore interface {
	SetLive(ctx context.Context, deviceID string, sample *models.TelemetrySample) error
	GetLive(ctx context.Context, deviceID string) (*models.TelemetrySample, error)
	SetControl(ctx context.Context, deviceID string, state *models.ControlState) error
	GetControl(ctx context.Context, deviceID string) (*models.ControlState, error)
	DeleteDevice(ctx context.Context, deviceID string) error
}
