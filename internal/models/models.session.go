// FilePath: internal/models/models.session.go
package models

import (
	"database/sql"
	"math"
	"time"
)

// Session is a contiguous interval during which a device is considered
// actively worn. EndTime is NULL while the session is open; at most one
// open session may exist per device (enforced by a partial unique index).
type Session struct {
	ID                string       `json:"id" db:"id"`
	DeviceID          string       `json:"device_id" db:"device_id"`
	StartTime         time.Time    `json:"start_time" db:"start_time"`
	EndTime           sql.NullTime `json:"-" db:"end_time"`
	DurationSeconds   float64      `json:"duration_seconds" db:"duration_seconds"`
	TotalDrowsyEvents int          `json:"total_drowsy_events" db:"total_drowsy_events"`
	CreatedAt         time.Time    `json:"created_at" db:"created_at"`
}

// Active reports whether the session is still open.
func (s *Session) Active() bool {
	return !s.EndTime.Valid
}

// Duration returns the session length, using now for still-open sessions.
// Negative durations from clock skew clamp to zero.
func (s *Session) Duration(now time.Time) time.Duration {
	if s.StartTime.IsZero() {
		return 0
	}
	end := now
	if s.EndTime.Valid {
		end = s.EndTime.Time
	}
	d := end.Sub(s.StartTime)
	if d < 0 {
		return 0
	}
	return d
}

// SessionView is the JSON shape served to dashboards, with the nullable
// end_time flattened and the duration resolved.
type SessionView struct {
	ID                string     `json:"id"`
	DeviceID          string     `json:"device_id"`
	StartTime         time.Time  `json:"start_time"`
	EndTime           *time.Time `json:"end_time"`
	Active            bool       `json:"active"`
	DurationSeconds   float64    `json:"duration_seconds"`
	DurationHours     float64    `json:"duration_hours"`
	TotalDrowsyEvents int        `json:"total_drowsy_events"`
}

// View resolves a session into its dashboard representation at the given time.
func (s *Session) View(now time.Time) SessionView {
	v := SessionView{
		ID:                s.ID,
		DeviceID:          s.DeviceID,
		StartTime:         s.StartTime,
		Active:            s.Active(),
		TotalDrowsyEvents: s.TotalDrowsyEvents,
	}
	if s.EndTime.Valid {
		t := s.EndTime.Time
		v.EndTime = &t
	}
	v.DurationSeconds = s.Duration(now).Seconds()
	v.DurationHours = RoundHours(v.DurationSeconds/3600.0, 2)
	return v
}

// RoundHours rounds an hour value to the given number of decimal places.
func RoundHours(hours float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(hours*factor) / factor
}
