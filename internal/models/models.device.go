// FilePath: internal/models/models.device.go
package models

import "time"

// Device represents a registered helmet unit.
type Device struct {
	ID                    string    `json:"id" db:"id"`
	Name                  string    `json:"name" db:"name"`
	Operator              string    `json:"operator" db:"operator" readxs:"admin,system" writexs:"admin,system"`
	OperatorContact       string    `json:"operator_contact,omitempty" db:"operator_contact" readxs:"admin,system" writexs:"admin,system"`
	Location              string    `json:"location" db:"location"`
	FirmwareVersion       string    `json:"firmware_version" db:"firmware_version"`
	Notes                 string    `json:"notes,omitempty" db:"notes" readxs:"admin,system" writexs:"admin,system"`
	LastSeen              time.Time `json:"last_seen" db:"last_seen"`
	LastTelemetryReceived time.Time `json:"last_telemetry_received" db:"last_telemetry_received"`
	CreatedAt             time.Time `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time `json:"updated_at" db:"updated_at"`
}
