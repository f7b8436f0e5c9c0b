// FilePath: internal/hubservice/hubservice.workhours.go
package hubservice

import (
	"context"
	"time"

	"github.com/helmsense/hub/internal/errors"
	"github.com/helmsense/hub/internal/models"
)

// WorkerStats summarizes the current UTC day for a device.
type WorkerStats struct {
	DailyWorkedHours        float64 `json:"daily_worked_hours"`
	TodayDrowsyEvents       int     `json:"today_drowsy_events"`
	TodayTotalSessions      int     `json:"today_total_sessions"`
	TodayAvgSessionDuration float64 `json:"today_avg_session_duration"`
}

// TotalWorkedHours sums the duration of every session of a device, in
// hours rounded to two decimals. Open sessions count up to now; sessions
// with a missing start time contribute nothing.
func (s *HubService) TotalWorkedHours(ctx context.Context, deviceID string) (float64, error) {
	sessions, err := s.Sessions.ListByDevice(ctx, deviceID, 0)
	if err != nil {
		return 0.0, err
	}

	now := s.now()
	var totalSeconds float64
	for _, session := range sessions {
		totalSeconds += session.Duration(now).Seconds()
	}
	return models.RoundHours(totalSeconds/3600.0, 2), nil
}

// DailyWorkedHours sums session durations for the given UTC calendar day
// (YYYY-MM-DD). A session belongs to the day its start time falls on,
// even when it runs past midnight.
func (s *HubService) DailyWorkedHours(ctx context.Context, deviceID, date string) (float64, error) {
	target, err := time.Parse("2006-01-02", date)
	if err != nil {
		return 0.0, errors.NewValidationError("invalid date, expected YYYY-MM-DD", err)
	}

	sessions, err := s.Sessions.ListByDevice(ctx, deviceID, 0)
	if err != nil {
		return 0.0, err
	}

	now := s.now()
	var totalSeconds float64
	for _, session := range sessions {
		if session.StartTime.IsZero() || !sameDay(session.StartTime, target) {
			continue
		}
		totalSeconds += session.Duration(now).Seconds()
	}
	return models.RoundHours(totalSeconds/3600.0, 2), nil
}

// DailyWorkerStats computes the worker dashboard summary for today (UTC).
func (s *HubService) DailyWorkerStats(ctx context.Context, deviceID string) (*WorkerStats, error) {
	sessions, err := s.Sessions.ListByDevice(ctx, deviceID, 0)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var totalSeconds float64
	sessionCount := 0
	for _, session := range sessions {
		if session.StartTime.IsZero() || !sameDay(session.StartTime, now) {
			continue
		}
		sessionCount++
		totalSeconds += session.Duration(now).Seconds()
	}

	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	drowsyCount, err := s.DrowsyEvents.CountSince(ctx, deviceID, startOfDay)
	if err != nil {
		return nil, err
	}

	stats := &WorkerStats{
		DailyWorkedHours:   models.RoundHours(totalSeconds/3600.0, 1),
		TodayDrowsyEvents:  drowsyCount,
		TodayTotalSessions: sessionCount,
	}
	if sessionCount > 0 {
		stats.TodayAvgSessionDuration = models.RoundHours(stats.DailyWorkedHours/float64(sessionCount), 1)
	}
	return stats, nil
}

// CurrentSession returns the device's active session resolved for
// dashboards, or nil when none is open.
func (s *HubService) CurrentSession(ctx context.Context, deviceID string) (*models.SessionView, error) {
	session, err := s.Sessions.GetActive(ctx, deviceID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	view := session.View(s.now())
	return &view, nil
}

// ListSessions returns recent sessions for a device, newest first.
func (s *HubService) ListSessions(ctx context.Context, deviceID string, filters models.SessionFilters) ([]models.SessionView, error) {
	limit := filters.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	sessions, err := s.Sessions.ListByDevice(ctx, deviceID, limit)
	if err != nil {
		return nil, err
	}

	now := s.now()
	views := make([]models.SessionView, 0, len(sessions))
	for _, session := range sessions {
		views = append(views, session.View(now))
	}
	return views, nil
}

// IsInactive reports whether a last-seen timestamp is stale. A zero
// timestamp is always inactive; the boundary itself is still active.
func IsInactive(last time.Time, threshold time.Duration, now time.Time) bool {
	if last.IsZero() {
		return true
	}
	return now.Sub(last) > threshold
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
