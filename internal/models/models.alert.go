// FilePath: internal/models/models.alert.go
package models

import "time"

// AlertType identifies the safety rule that fired.
type AlertType string

const (
	AlertDrowsinessDetected  AlertType = "DROWSINESS_DETECTED"
	AlertHeadDown            AlertType = "HEAD_DOWN"
	AlertSuddenNod           AlertType = "SUDDEN_NOD"
	AlertHighBodyTemperature AlertType = "HIGH_BODY_TEMPERATURE"
)

// Alert is an immutable safety event. Only the acknowledged flag is
// mutable after creation.
type Alert struct {
	ID           string    `json:"id" db:"id"`
	DeviceID     string    `json:"device_id" db:"device_id"`
	Type         AlertType `json:"type" db:"type"`
	Message      string    `json:"message" db:"message"`
	Timestamp    time.Time `json:"timestamp" db:"timestamp"`
	Acknowledged bool      `json:"acknowledged" db:"acknowledged"`
}

// DrowsyEvent records a single drowsiness detection with its sensor
// context. Distinct from the Alert stream; used for history queries.
type DrowsyEvent struct {
	ID          string    `json:"id" db:"id"`
	DeviceID    string    `json:"device_id" db:"device_id"`
	Timestamp   time.Time `json:"timestamp" db:"timestamp"`
	Pitch       float64   `json:"pitch" db:"pitch"`
	Temperature float64   `json:"temperature" db:"temperature"`
}
