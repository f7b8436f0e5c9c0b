// FilePath: internal/hubservice/hubservice.telemetry_test.go
package hubservice_test

import (
	"context"
	"testing"
	"time"

	"github.com/helmsense/hub/internal/errors"
	"github.com/helmsense/hub/internal/models"
	"github.com/stretchr/testify/require"
)

func TestIngestTelemetryStampsServerTime(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	payload := []byte(`{"pitch":-5.0,"gyroY":10.0,"bodyTemp":36.8,"isDrowsy":false,"serverTime":12345}`)
	generated, err := env.svc.IngestTelemetry(ctx, "helmet_01", payload)
	require.NoError(t, err)
	require.Equal(t, 0, generated)

	live, err := env.svc.GetLiveState(ctx, "helmet_01")
	require.NoError(t, err)
	require.Equal(t, env.now.Unix(), live.ServerTime)
	require.Equal(t, -5.0, live.Pitch)
	require.Equal(t, 36.8, live.BodyTemp)
}

func TestIngestTelemetryRejectsEmptyPayloads(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	for _, payload := range [][]byte{nil, []byte(""), []byte("   "), []byte("{}")} {
		_, err := env.svc.IngestTelemetry(ctx, "helmet_01", payload)
		require.Error(t, err)
		require.True(t, errors.IsValidation(err))
	}

	_, err := env.svc.IngestTelemetry(ctx, "helmet_01", []byte("not json"))
	require.True(t, errors.IsValidation(err))
}

func TestIngestTelemetryLogsDrowsyEvent(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	payload := []byte(`{"pitch":-10.0,"gyroY":0,"bodyTemp":37.1,"isDrowsy":true}`)
	generated, err := env.svc.IngestTelemetry(ctx, "helmet_01", payload)
	require.NoError(t, err)

	// The drowsy flag produces both an event record and an alert.
	require.Equal(t, 1, generated)
	require.Len(t, env.drowsy.events, 1)
	require.Equal(t, "helmet_01", env.drowsy.events[0].DeviceID)
	require.Equal(t, -10.0, env.drowsy.events[0].Pitch)
	require.Equal(t, 37.1, env.drowsy.events[0].Temperature)

	alerts, err := env.svc.ListAlerts(ctx, "helmet_01", models.AlertFilters{})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	require.Equal(t, models.AlertDrowsinessDetected, alerts[0].Type)
}

func TestIngestTelemetryGeneratesThresholdAlerts(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	payload := []byte(`{"pitch":-25.0,"gyroY":-130.0,"bodyTemp":39.0,"isDrowsy":true}`)
	generated, err := env.svc.IngestTelemetry(ctx, "helmet_01", payload)
	require.NoError(t, err)
	require.Equal(t, 4, generated)

	alerts, err := env.svc.ListAlerts(ctx, "helmet_01", models.AlertFilters{})
	require.NoError(t, err)
	require.Len(t, alerts, 4)
}

func TestIngestTelemetryUpdatesRegistry(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	require.NoError(t, env.svc.CreateDevice(ctx, &models.Device{ID: "helmet_01", Name: "Line A helmet"}))

	env.now = env.now.Add(time.Hour)
	_, err := env.svc.IngestTelemetry(ctx, "helmet_01", []byte(`{"pitch":0,"bodyTemp":36.5}`))
	require.NoError(t, err)

	device, err := env.devices.Get(ctx, "helmet_01")
	require.NoError(t, err)
	require.Equal(t, env.now, device.LastSeen)
	require.Equal(t, env.now, device.LastTelemetryReceived)
}

func TestIngestTelemetryAcceptsUnregisteredDevice(t *testing.T) {
	env := newTestEnv()

	_, err := env.svc.IngestTelemetry(context.Background(), "helmet_99", []byte(`{"pitch":0,"bodyTemp":36.5}`))
	require.NoError(t, err)
}

func TestCheckInactivity(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	// No live state at all counts as inactive.
	inactive, err := env.svc.CheckInactivity(ctx, "helmet_01")
	require.NoError(t, err)
	require.True(t, inactive)

	// Fresh heartbeat is active.
	env.live.samples["helmet_01"] = &models.TelemetrySample{ServerTime: env.now.Unix()}
	inactive, err = env.svc.CheckInactivity(ctx, "helmet_01")
	require.NoError(t, err)
	require.False(t, inactive)

	// Past the 10 minute threshold is inactive.
	env.live.samples["helmet_01"] = &models.TelemetrySample{ServerTime: env.now.Add(-10*time.Minute - time.Second).Unix()}
	inactive, err = env.svc.CheckInactivity(ctx, "helmet_01")
	require.NoError(t, err)
	require.True(t, inactive)
}

func TestMotorStateLifecycle(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	// No record yet reads as UNKNOWN.
	state, err := env.svc.GetMotorState(ctx, "helmet_01")
	require.NoError(t, err)
	require.Equal(t, "UNKNOWN", state)

	// Lower-case input is normalized.
	require.NoError(t, env.svc.SetMotorState(ctx, "helmet_01", "on", "dashboard"))
	state, err = env.svc.GetMotorState(ctx, "helmet_01")
	require.NoError(t, err)
	require.Equal(t, "ON", state)

	control, err := env.live.GetControl(ctx, "helmet_01")
	require.NoError(t, err)
	require.Equal(t, "dashboard", control.Source)
	require.Equal(t, env.now.Unix(), control.UpdatedAt)

	// Invalid values are rejected without touching the record.
	err = env.svc.SetMotorState(ctx, "helmet_01", "HALF", "dashboard")
	require.True(t, errors.IsValidation(err))
	state, _ = env.svc.GetMotorState(ctx, "helmet_01")
	require.Equal(t, "ON", state)
}

func TestEmergencyStop(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	require.NoError(t, env.svc.SetMotorState(ctx, "helmet_01", "ON", "dashboard"))
	require.NoError(t, env.svc.EmergencyStop(ctx, "helmet_01"))

	control, err := env.live.GetControl(ctx, "helmet_01")
	require.NoError(t, err)
	require.Equal(t, "OFF", control.Motor)
	require.Equal(t, "emergency", control.Source)
}
