// FilePath: internal/hubservice/hubservice.workhours_test.go
package hubservice_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/helmsense/hub/internal/errors"
	"github.com/helmsense/hub/internal/hubservice"
	"github.com/helmsense/hub/internal/models"
	"github.com/stretchr/testify/require"
)

func addClosedSession(env *testEnv, id string, start time.Time, duration time.Duration) {
	env.sessions.sessions = append(env.sessions.sessions, &models.Session{
		ID:        id,
		DeviceID:  "helmet_01",
		StartTime: start,
		EndTime:   sql.NullTime{Time: start.Add(duration), Valid: true},
	})
}

func TestTotalWorkedHours(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	// Two closed sessions plus one still open.
	addClosedSession(env, "sess_1", env.now.Add(-48*time.Hour), 2*time.Hour)
	addClosedSession(env, "sess_2", env.now.Add(-24*time.Hour), 90*time.Minute)
	env.sessions.sessions = append(env.sessions.sessions, &models.Session{
		ID: "sess_3", DeviceID: "helmet_01", StartTime: env.now.Add(-30 * time.Minute),
	})

	hours, err := env.svc.TotalWorkedHours(ctx, "helmet_01")
	require.NoError(t, err)
	require.Equal(t, 4.0, hours)
}

func TestTotalWorkedHoursEmpty(t *testing.T) {
	env := newTestEnv()

	hours, err := env.svc.TotalWorkedHours(context.Background(), "helmet_01")
	require.NoError(t, err)
	require.Equal(t, 0.0, hours)
}

func TestTotalWorkedHoursRounding(t *testing.T) {
	env := newTestEnv()

	// 1000 seconds is 0.2777... hours, rounded to 0.28.
	addClosedSession(env, "sess_1", env.now.Add(-2*time.Hour), 1000*time.Second)

	hours, err := env.svc.TotalWorkedHours(context.Background(), "helmet_01")
	require.NoError(t, err)
	require.Equal(t, 0.28, hours)
}

func TestDailyWorkedHoursAttribution(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	// Started May 31st at 23:00 and ran 2h past midnight. The whole
	// session belongs to May 31st.
	spanStart := time.Date(2025, 5, 31, 23, 0, 0, 0, time.UTC)
	addClosedSession(env, "sess_span", spanStart, 2*time.Hour)

	// A plain June 1st session.
	addClosedSession(env, "sess_today", time.Date(2025, 6, 1, 6, 0, 0, 0, time.UTC), time.Hour)

	hours, err := env.svc.DailyWorkedHours(ctx, "helmet_01", "2025-05-31")
	require.NoError(t, err)
	require.Equal(t, 2.0, hours)

	hours, err = env.svc.DailyWorkedHours(ctx, "helmet_01", "2025-06-01")
	require.NoError(t, err)
	require.Equal(t, 1.0, hours)

	hours, err = env.svc.DailyWorkedHours(ctx, "helmet_01", "2025-06-02")
	require.NoError(t, err)
	require.Equal(t, 0.0, hours)
}

func TestDailyWorkedHoursInvalidDate(t *testing.T) {
	env := newTestEnv()

	_, err := env.svc.DailyWorkedHours(context.Background(), "helmet_01", "31-05-2025")
	require.True(t, errors.IsValidation(err))
}

func TestDailyWorkerStats(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	// Two sessions today totalling 3h, one from yesterday that must not count.
	addClosedSession(env, "sess_1", time.Date(2025, 6, 1, 5, 0, 0, 0, time.UTC), 2*time.Hour)
	addClosedSession(env, "sess_2", time.Date(2025, 6, 1, 7, 0, 0, 0, time.UTC), time.Hour)
	addClosedSession(env, "sess_old", time.Date(2025, 5, 31, 7, 0, 0, 0, time.UTC), 4*time.Hour)

	env.drowsy.events = append(env.drowsy.events,
		&models.DrowsyEvent{ID: "drwe_1", DeviceID: "helmet_01", Timestamp: time.Date(2025, 6, 1, 5, 30, 0, 0, time.UTC)},
		&models.DrowsyEvent{ID: "drwe_2", DeviceID: "helmet_01", Timestamp: time.Date(2025, 6, 1, 7, 15, 0, 0, time.UTC)},
		&models.DrowsyEvent{ID: "drwe_old", DeviceID: "helmet_01", Timestamp: time.Date(2025, 5, 31, 9, 0, 0, 0, time.UTC)},
	)

	stats, err := env.svc.DailyWorkerStats(ctx, "helmet_01")
	require.NoError(t, err)
	require.Equal(t, 3.0, stats.DailyWorkedHours)
	require.Equal(t, 2, stats.TodayTotalSessions)
	require.Equal(t, 2, stats.TodayDrowsyEvents)
	require.Equal(t, 1.5, stats.TodayAvgSessionDuration)
}

func TestCurrentSession(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	// None open yet.
	view, err := env.svc.CurrentSession(ctx, "helmet_01")
	require.NoError(t, err)
	require.Nil(t, view)

	env.sessions.sessions = append(env.sessions.sessions, &models.Session{
		ID: "sess_open", DeviceID: "helmet_01", StartTime: env.now.Add(-30 * time.Minute),
	})

	view, err = env.svc.CurrentSession(ctx, "helmet_01")
	require.NoError(t, err)
	require.NotNil(t, view)
	require.True(t, view.Active)
	require.Equal(t, "sess_open", view.ID)
	require.Equal(t, 1800.0, view.DurationSeconds)
	require.Equal(t, 0.5, view.DurationHours)
}

func TestListSessions(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		addClosedSession(env, string(rune('a'+i)), env.now.Add(time.Duration(-5+i)*time.Hour), 30*time.Minute)
	}

	views, err := env.svc.ListSessions(ctx, "helmet_01", models.SessionFilters{Limit: 3})
	require.NoError(t, err)
	require.Len(t, views, 3)

	// Newest first.
	require.Equal(t, "e", views[0].ID)
}

func TestIsInactive(t *testing.T) {
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	threshold := 10 * time.Minute

	require.True(t, hubservice.IsInactive(time.Time{}, threshold, now))
	require.False(t, hubservice.IsInactive(now.Add(-threshold), threshold, now))
	require.True(t, hubservice.IsInactive(now.Add(-threshold-time.Second), threshold, now))
	require.False(t, hubservice.IsInactive(now, threshold, now))
}
