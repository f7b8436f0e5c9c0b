// FilePath: internal/hubservice/hubservice_test.go
package hubservice_test

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/helmsense/hub/internal/alerts"
	"github.com/helmsense/hub/internal/config"
	"github.com/helmsense/hub/internal/database"
	"github.com/helmsense/hub/internal/errors"
	"github.com/helmsense/hub/internal/hubservice"
	"github.com/helmsense/hub/internal/models"
)

// In-memory repositories backing the service tests.

type fakeTx struct{}

func (fakeTx) Commit() error   { return nil }
func (fakeTx) Rollback() error { return nil }
func (fakeTx) ExecContext(_ context.Context, _ string, _ ...interface{}) (sql.Result, error) {
	return nil, nil
}

type fakeDeviceRepo struct {
	mu      sync.Mutex
	devices map[string]*models.Device
}

func newFakeDeviceRepo() *fakeDeviceRepo {
	return &fakeDeviceRepo{devices: make(map[string]*models.Device)}
}

func (f *fakeDeviceRepo) BeginTx(_ context.Context) (database.Transaction, error) {
	return fakeTx{}, nil
}

func (f *fakeDeviceRepo) Create(_ context.Context, device *models.Device) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.devices[device.ID]; ok {
		return errors.NewConflictError("device already exists", nil)
	}
	copied := *device
	f.devices[device.ID] = &copied
	return nil
}

func (f *fakeDeviceRepo) Get(_ context.Context, id string) (*models.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	device, ok := f.devices[id]
	if !ok {
		return nil, errors.NewNotFoundError("device not found", nil)
	}
	copied := *device
	return &copied, nil
}

func (f *fakeDeviceRepo) Update(_ context.Context, device *models.Device) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.devices[device.ID]; !ok {
		return errors.NewNotFoundError("device not found", nil)
	}
	copied := *device
	f.devices[device.ID] = &copied
	return nil
}

func (f *fakeDeviceRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.devices, id)
	return nil
}

func (f *fakeDeviceRepo) List(_ context.Context, _, _ int) ([]*models.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Device
	for _, d := range f.devices {
		copied := *d
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeDeviceRepo) UpdateLastSeen(_ context.Context, id string, lastSeen time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	device, ok := f.devices[id]
	if !ok {
		return errors.NewNotFoundError("device not found", nil)
	}
	device.LastSeen = lastSeen
	return nil
}

func (f *fakeDeviceRepo) UpdateLastTelemetryReceived(_ context.Context, id string, lastReceived time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	device, ok := f.devices[id]
	if !ok {
		return errors.NewNotFoundError("device not found", nil)
	}
	device.LastTelemetryReceived = lastReceived
	return nil
}

type fakeAlertRepo struct {
	mu     sync.Mutex
	alerts []*models.Alert
}

func (f *fakeAlertRepo) BeginTx(_ context.Context) (database.Transaction, error) {
	return nil, errors.NewInternalError("not supported", nil)
}

func (f *fakeAlertRepo) Create(_ context.Context, alert *models.Alert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alerts = append(f.alerts, alert)
	return nil
}

func (f *fakeAlertRepo) ListRecent(_ context.Context, deviceID string, filters models.AlertFilters) ([]*models.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Alert
	for i := len(f.alerts) - 1; i >= 0; i-- {
		a := f.alerts[i]
		if a.DeviceID != deviceID {
			continue
		}
		if filters.Unacknowledged && a.Acknowledged {
			continue
		}
		out = append(out, a)
		if filters.Limit > 0 && len(out) == filters.Limit {
			break
		}
	}
	return out, nil
}

func (f *fakeAlertRepo) Acknowledge(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.alerts {
		if a.ID == id {
			a.Acknowledged = true
			return nil
		}
	}
	return errors.NewNotFoundError("alert not found", nil)
}

func (f *fakeAlertRepo) DeleteByDevice(_ context.Context, deviceID string, _ database.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.alerts[:0]
	for _, a := range f.alerts {
		if a.DeviceID != deviceID {
			kept = append(kept, a)
		}
	}
	f.alerts = kept
	return nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions []*models.Session
}

func (f *fakeSessionRepo) BeginTx(_ context.Context) (database.Transaction, error) {
	return nil, errors.NewInternalError("not supported", nil)
}

func (f *fakeSessionRepo) Open(_ context.Context, session *models.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.DeviceID == session.DeviceID && s.Active() {
			return errors.NewConflictError("device already has an active session", nil)
		}
	}
	copied := *session
	f.sessions = append(f.sessions, &copied)
	return nil
}

func (f *fakeSessionRepo) Close(_ context.Context, deviceID string, endTime time.Time) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.DeviceID == deviceID && s.Active() {
			s.EndTime.Time = endTime
			s.EndTime.Valid = true
			s.DurationSeconds = endTime.Sub(s.StartTime).Seconds()
			copied := *s
			return &copied, nil
		}
	}
	return nil, errors.NewNotFoundError("no active session", nil)
}

func (f *fakeSessionRepo) GetActive(_ context.Context, deviceID string) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.DeviceID == deviceID && s.Active() {
			copied := *s
			return &copied, nil
		}
	}
	return nil, errors.NewNotFoundError("no active session", nil)
}

func (f *fakeSessionRepo) IncrementDrowsyCount(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.ID == sessionID {
			s.TotalDrowsyEvents++
			return nil
		}
	}
	return errors.NewNotFoundError("session not found", nil)
}

func (f *fakeSessionRepo) ListByDevice(_ context.Context, deviceID string, limit int) ([]*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Session
	for i := len(f.sessions) - 1; i >= 0; i-- {
		if f.sessions[i].DeviceID != deviceID {
			continue
		}
		copied := *f.sessions[i]
		out = append(out, &copied)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeSessionRepo) DeleteByDevice(_ context.Context, deviceID string, _ database.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.sessions[:0]
	for _, s := range f.sessions {
		if s.DeviceID != deviceID {
			kept = append(kept, s)
		}
	}
	f.sessions = kept
	return nil
}

type fakeDrowsyRepo struct {
	mu     sync.Mutex
	events []*models.DrowsyEvent
}

func (f *fakeDrowsyRepo) BeginTx(_ context.Context) (database.Transaction, error) {
	return nil, errors.NewInternalError("not supported", nil)
}

func (f *fakeDrowsyRepo) Create(_ context.Context, event *models.DrowsyEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeDrowsyRepo) ListRecent(_ context.Context, deviceID string, limit int) ([]*models.DrowsyEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.DrowsyEvent
	for i := len(f.events) - 1; i >= 0; i-- {
		if f.events[i].DeviceID != deviceID {
			continue
		}
		out = append(out, f.events[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeDrowsyRepo) CountSince(_ context.Context, deviceID string, since time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, e := range f.events {
		if e.DeviceID == deviceID && !e.Timestamp.Before(since) {
			count++
		}
	}
	return count, nil
}

func (f *fakeDrowsyRepo) DeleteByDevice(_ context.Context, deviceID string, _ database.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.events[:0]
	for _, e := range f.events {
		if e.DeviceID != deviceID {
			kept = append(kept, e)
		}
	}
	f.events = kept
	return nil
}

type fakeLiveStore struct {
	mu       sync.Mutex
	samples  map[string]*models.TelemetrySample
	controls map[string]*models.ControlState
	readErr  error
}

func newFakeLiveStore() *fakeLiveStore {
	return &fakeLiveStore{
		samples:  make(map[string]*models.TelemetrySample),
		controls: make(map[string]*models.ControlState),
	}
}

func (f *fakeLiveStore) SetLive(_ context.Context, deviceID string, sample *models.TelemetrySample) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *sample
	f.samples[deviceID] = &copied
	return nil
}

func (f *fakeLiveStore) GetLive(_ context.Context, deviceID string) (*models.TelemetrySample, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	sample, ok := f.samples[deviceID]
	if !ok {
		return nil, errors.NewNotFoundError("no live state", nil)
	}
	copied := *sample
	return &copied, nil
}

func (f *fakeLiveStore) SetControl(_ context.Context, deviceID string, state *models.ControlState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *state
	f.controls[deviceID] = &copied
	return nil
}

func (f *fakeLiveStore) GetControl(_ context.Context, deviceID string) (*models.ControlState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	state, ok := f.controls[deviceID]
	if !ok {
		return nil, errors.NewNotFoundError("no control state", nil)
	}
	copied := *state
	return &copied, nil
}

func (f *fakeLiveStore) DeleteDevice(_ context.Context, deviceID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.samples, deviceID)
	delete(f.controls, deviceID)
	return nil
}

// testEnv bundles the service and its fakes for one test.
type testEnv struct {
	svc      *hubservice.HubService
	devices  *fakeDeviceRepo
	sessions *fakeSessionRepo
	alerts   *fakeAlertRepo
	drowsy   *fakeDrowsyRepo
	live     *fakeLiveStore
	now      time.Time
}

func newTestEnv() *testEnv {
	env := &testEnv{
		devices:  newFakeDeviceRepo(),
		sessions: &fakeSessionRepo{},
		alerts:   &fakeAlertRepo{},
		drowsy:   &fakeDrowsyRepo{},
		live:     newFakeLiveStore(),
		now:      time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC),
	}
	env.svc = hubservice.New(
		env.devices,
		env.sessions,
		env.alerts,
		env.drowsy,
		env.live,
		alerts.NewEvaluator(config.AlertConfig{}),
		10*time.Minute,
	)
	env.svc.SetNowFunc(func() time.Time { return env.now })
	return env
}
