// FilePath: internal/models/models.telemetry.go
package models

import "time"

// TelemetrySample is the live snapshot a helmet pushes on every report.
// ServerTime is stamped by the ingest path in epoch seconds; any
// device-supplied value is overwritten.
type TelemetrySample struct {
	Pitch      float64 `json:"pitch"`
	GyroY      float64 `json:"gyroY"`
	BodyTemp   float64 `json:"bodyTemp"`
	IsDrowsy   bool    `json:"isDrowsy"`
	ServerTime int64   `json:"serverTime"`
}

// Heartbeat converts the server-stamped time into a UTC timestamp.
// Field firmware predating the epoch-seconds contract reported
// milliseconds, so large values are interpreted as such.
func (s TelemetrySample) Heartbeat() time.Time {
	return EpochToTime(float64(s.ServerTime))
}

// EpochToTime converts an epoch value in seconds or milliseconds to UTC.
// A zero or negative value yields the zero time.
func EpochToTime(epoch float64) time.Time {
	if epoch <= 0 {
		return time.Time{}
	}
	if epoch > 1e11 {
		epoch /= 1000.0
	}
	sec := int64(epoch)
	nsec := int64((epoch - float64(sec)) * 1e9)
	return time.Unix(sec, nsec).UTC()
}

// ControlState is the motor control record kept per device.
type ControlState struct {
	Motor     string `json:"motor"`
	UpdatedAt int64  `json:"updated_at"`
	Source    string `json:"source"`
}
