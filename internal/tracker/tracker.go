// FilePath: internal/tracker/tracker.go

// Package tracker runs the background session lifecycle state machine.
// Each tracked device is either in an active session or not; the tracker
// polls the live heartbeat on a fixed interval and opens or closes
// sessions on the online/offline transitions.
package tracker

import (
	"context"
	"time"

	"github.com/helmsense/hub/internal/config"
	"github.com/helmsense/hub/internal/errors"
	"github.com/helmsense/hub/internal/models"
	"github.com/helmsense/hub/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

// Tracker owns one state machine per configured device. Devices are
// polled sequentially within a cycle, so per-device transitions are
// serialized inside a single instance; the conditional session writes
// keep a second instance from violating the one-active-session rule.
type Tracker struct {
	live     repository.LiveStateStore
	sessions repository.SessionRepository
	drowsy   repository.DrowsyEventRepository
	events   *nuts.EventEmitter

	deviceIDs        []string
	pollInterval     time.Duration
	offlineThreshold time.Duration

	now func() time.Time
}

// New creates a tracker over the given stores.
func New(
	cfg config.TrackerConfig,
	live repository.LiveStateStore,
	sessions repository.SessionRepository,
	drowsy repository.DrowsyEventRepository,
) *Tracker {
	return &Tracker{
		live:             live,
		sessions:         sessions,
		drowsy:           drowsy,
		events:           nuts.NewEventEmitter(),
		deviceIDs:        cfg.DeviceIDs,
		pollInterval:     cfg.PollInterval,
		offlineThreshold: cfg.OfflineThreshold,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// Run polls until the context is cancelled. Failures in one cycle are
// logged and do not affect later cycles.
func (t *Tracker) Run(ctx context.Context) {
	nuts.L.Infof("[Tracker] Polling %d device(s) every %s (offline threshold %s)",
		len(t.deviceIDs), t.pollInterval, t.offlineThreshold)

	ticker := time.NewTicker(t.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			nuts.L.Infof("[Tracker] Stopping")
			return
		case <-ticker.C:
			for _, deviceID := range t.deviceIDs {
				t.Poll(ctx, deviceID)
			}
		}
	}
}

// Poll runs one state-machine step for a device.
func (t *Tracker) Poll(ctx context.Context, deviceID string) {
	now := t.now()
	sample, online := t.observe(ctx, deviceID, now)

	active, err := t.sessions.GetActive(ctx, deviceID)
	if err != nil && !errors.IsNotFound(err) {
		nuts.L.Errorf("[Tracker] Failed to look up active session for %s: %v", deviceID, err)
		return
	}
	hasActive := err == nil

	switch {
	case online && !hasActive:
		t.openSession(ctx, deviceID, now)

	case online && hasActive && sample != nil && sample.IsDrowsy:
		t.recordDrowsiness(ctx, deviceID, active, sample, now)

	case !online && hasActive:
		t.closeSession(ctx, deviceID, now)
	}
}

// observe reads the live snapshot and decides online-ness from heartbeat
// recency. Any read or parse failure counts as offline for this cycle.
func (t *Tracker) observe(ctx context.Context, deviceID string, now time.Time) (*models.TelemetrySample, bool) {
	sample, err := t.live.GetLive(ctx, deviceID)
	if err != nil {
		if !errors.IsNotFound(err) {
			nuts.L.Warnf("[Tracker] Failed to read live state for %s: %v", deviceID, err)
		}
		return nil, false
	}

	heartbeat := sample.Heartbeat()
	if heartbeat.IsZero() {
		nuts.L.Warnf("[Tracker] Device %s has no usable heartbeat, treating as offline", deviceID)
		return sample, false
	}

	return sample, now.Sub(heartbeat) <= t.offlineThreshold
}

func (t *Tracker) openSession(ctx context.Context, deviceID string, now time.Time) {
	session := &models.Session{
		ID:        nuts.NID("sess", 12),
		DeviceID:  deviceID,
		StartTime: now,
		CreatedAt: now,
	}

	if err := t.sessions.Open(ctx, session); err != nil {
		if errors.IsConflict(err) {
			// Another instance opened one between our read and write.
			nuts.L.Infof("[Tracker] Device %s already has an active session", deviceID)
			return
		}
		nuts.L.Errorf("[Tracker] Failed to open session for %s: %v", deviceID, err)
		return
	}

	nuts.L.Infof("[Tracker] Device %s is ONLINE, started session %s", deviceID, session.ID)
	t.events.Emit("session.opened", session.ID)
}

// closeSession ends the active session in place. It must never create a
// new record for the close.
func (t *Tracker) closeSession(ctx context.Context, deviceID string, now time.Time) {
	closed, err := t.sessions.Close(ctx, deviceID, now)
	if err != nil {
		if errors.IsNotFound(err) {
			// Closed by another instance since our read.
			return
		}
		nuts.L.Errorf("[Tracker] Failed to close session for %s: %v", deviceID, err)
		return
	}

	nuts.L.Infof("[Tracker] Device %s is OFFLINE (stale or invalid heartbeat), ended session %s after %.0fs",
		deviceID, closed.ID, closed.DurationSeconds)
	t.events.Emit("session.closed", closed.ID)
}

func (t *Tracker) recordDrowsiness(ctx context.Context, deviceID string, active *models.Session, sample *models.TelemetrySample, now time.Time) {
	if err := t.sessions.IncrementDrowsyCount(ctx, active.ID); err != nil {
		nuts.L.Warnf("[Tracker] Failed to increment drowsy count on session %s: %v", active.ID, err)
	}

	event := &models.DrowsyEvent{
		ID:          nuts.NID("drwe", 12),
		DeviceID:    deviceID,
		Timestamp:   now,
		Pitch:       sample.Pitch,
		Temperature: sample.BodyTemp,
	}
	if err := t.drowsy.Create(ctx, event); err != nil {
		nuts.L.Warnf("[Tracker] Failed to record drowsy event for %s: %v", deviceID, err)
	}
}

// OnSessionEvent registers a callback for "session.opened" and
// "session.closed" events carrying the session id.
func (t *Tracker) OnSessionEvent(event string, handler func(id string)) {
	t.events.On(event, "tracker_handler", func(id string) {
		handler(id)
	})
}

// SetNowFunc overrides the tracker clock. Used by tests.
func (t *Tracker) SetNowFunc(now func() time.Time) {
	t.now = now
}
