// FilePath: internal/hubservice/hubservice.device_test.go
package hubservice_test

import (
	"context"
	"testing"
	"time"

	"github.com/helmsense/hub/internal/errors"
	"github.com/helmsense/hub/internal/hubservice"
	"github.com/helmsense/hub/internal/models"
	"github.com/stretchr/testify/require"
)

func adminCtx() context.Context {
	return hubservice.WithRoles(context.Background(), []string{"admin"})
}

func TestCreateDeviceDefaults(t *testing.T) {
	env := newTestEnv()

	device := &models.Device{Name: "Line A helmet"}
	require.NoError(t, env.svc.CreateDevice(adminCtx(), device))

	require.NotEmpty(t, device.ID)
	require.Equal(t, "1.0.0", device.FirmwareVersion)
	require.Equal(t, env.now, device.CreatedAt)
	require.Equal(t, env.now, device.UpdatedAt)
}

func TestCreateDeviceRequiresName(t *testing.T) {
	env := newTestEnv()

	err := env.svc.CreateDevice(adminCtx(), &models.Device{ID: "helmet_01"})
	require.True(t, errors.IsValidation(err))
}

func TestCreateDeviceKeepsProvisionedID(t *testing.T) {
	env := newTestEnv()

	device := &models.Device{ID: "helmet_01", Name: "Line A helmet"}
	require.NoError(t, env.svc.CreateDevice(adminCtx(), device))
	require.Equal(t, "helmet_01", device.ID)
}

func TestGetDeviceFiltersRestrictedFieldsForGuests(t *testing.T) {
	env := newTestEnv()

	require.NoError(t, env.svc.CreateDevice(adminCtx(), &models.Device{
		ID:       "helmet_01",
		Name:     "Line A helmet",
		Operator: "J. Smith",
		Notes:    "assigned to night shift",
	}))

	// Guests do not see operator details.
	guest, err := env.svc.GetDevice(context.Background(), "helmet_01")
	require.NoError(t, err)
	require.Equal(t, "Line A helmet", guest.Name)
	require.Empty(t, guest.Operator)
	require.Empty(t, guest.Notes)

	// Admins do.
	admin, err := env.svc.GetDevice(adminCtx(), "helmet_01")
	require.NoError(t, err)
	require.Equal(t, "J. Smith", admin.Operator)
}

func TestDeleteDeviceCascades(t *testing.T) {
	env := newTestEnv()
	ctx := adminCtx()

	require.NoError(t, env.svc.CreateDevice(ctx, &models.Device{ID: "helmet_01", Name: "Line A helmet"}))

	_, err := env.svc.IngestTelemetry(ctx, "helmet_01", []byte(`{"pitch":0,"bodyTemp":36.5,"isDrowsy":true}`))
	require.NoError(t, err)
	require.NotEmpty(t, env.alerts.alerts)
	require.NotEmpty(t, env.drowsy.events)

	require.NoError(t, env.svc.DeleteDevice(ctx, "helmet_01"))

	_, err = env.svc.GetDevice(ctx, "helmet_01")
	require.True(t, errors.IsNotFound(err))
	require.Empty(t, env.alerts.alerts)
	require.Empty(t, env.drowsy.events)

	_, err = env.svc.GetLiveState(ctx, "helmet_01")
	require.True(t, errors.IsNotFound(err))
}

func TestDeleteDeviceUnknown(t *testing.T) {
	env := newTestEnv()

	err := env.svc.DeleteDevice(adminCtx(), "helmet_99")
	require.True(t, errors.IsNotFound(err))
}

func TestGetDeviceStatus(t *testing.T) {
	env := newTestEnv()
	ctx := adminCtx()

	require.NoError(t, env.svc.CreateDevice(ctx, &models.Device{ID: "helmet_01", Name: "Line A helmet"}))

	_, err := env.svc.IngestTelemetry(ctx, "helmet_01", []byte(`{"pitch":-5.0,"bodyTemp":36.8}`))
	require.NoError(t, err)

	env.sessions.sessions = append(env.sessions.sessions, &models.Session{
		ID: "sess_open", DeviceID: "helmet_01", StartTime: env.now.Add(-time.Hour),
	})

	status, err := env.svc.GetDeviceStatus(ctx, "helmet_01")
	require.NoError(t, err)
	require.Equal(t, "helmet_01", status.Device.ID)
	require.NotNil(t, status.Live)
	require.NotNil(t, status.CurrentSession)
	require.Equal(t, "sess_open", status.CurrentSession.ID)
	require.Equal(t, "online", status.OnlineStatus)
	require.False(t, status.Inactive)
}

func TestGetDeviceStatusOfflineDevice(t *testing.T) {
	env := newTestEnv()
	ctx := adminCtx()

	require.NoError(t, env.svc.CreateDevice(ctx, &models.Device{ID: "helmet_01", Name: "Line A helmet"}))

	// Last contact was an hour ago.
	env.now = env.now.Add(time.Hour)

	status, err := env.svc.GetDeviceStatus(ctx, "helmet_01")
	require.NoError(t, err)
	require.Nil(t, status.Live)
	require.Nil(t, status.CurrentSession)
	require.Equal(t, "offline", status.OnlineStatus)
	require.True(t, status.Inactive)
}
