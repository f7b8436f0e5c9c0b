// FilePath: internal/repository/redisstore/redisstore.livestate.go

// Package redisstore implements the realtime per-device state tree on
// Redis. Layout mirrors the device firmware's expectations:
//
//	devices:{id}:live     JSON of the current telemetry snapshot
//	devices:{id}:control  hash {motor, updated_at, source}
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/helmsense/hub/internal/errors"
	"github.com/helmsense/hub/internal/models"
	"github.com/redis/go-redis/v9"
)

type LiveStateStore struct {
	client *redis.Client
}

func NewLiveStateStore(client *redis.Client) *LiveStateStore {
	return &LiveStateStore{client: client}
}

func liveKey(deviceID string) string {
	return fmt.Sprintf("devices:%s:live", deviceID)
}

func controlKey(deviceID string) string {
	return fmt.Sprintf("devices:%s:control", deviceID)
}

// SetLive overwrites the device's snapshot wholesale. Live state carries
// no history; the previous sample is discarded.
func (s *LiveStateStore) SetLive(ctx context.Context, deviceID string, sample *models.TelemetrySample) error {
	payload, err := json.Marshal(sample)
	if err != nil {
		return errors.NewInternalError("failed to encode live sample", err)
	}
	if err := s.client.Set(ctx, liveKey(deviceID), payload, 0).Err(); err != nil {
		return errors.NewUnavailableError("failed to write live state", err)
	}
	return nil
}

func (s *LiveStateStore) GetLive(ctx context.Context, deviceID string) (*models.TelemetrySample, error) {
	payload, err := s.client.Get(ctx, liveKey(deviceID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NewNotFoundError("no live state for device", err)
		}
		return nil, errors.NewUnavailableError("failed to read live state", err)
	}

	sample := &models.TelemetrySample{}
	if err := json.Unmarshal(payload, sample); err != nil {
		return nil, errors.NewInternalError("malformed live state", err)
	}
	return sample, nil
}

func (s *LiveStateStore) SetControl(ctx context.Context, deviceID string, state *models.ControlState) error {
	fields := map[string]interface{}{
		"motor":      state.Motor,
		"updated_at": state.UpdatedAt,
		"source":     state.Source,
	}
	if err := s.client.HSet(ctx, controlKey(deviceID), fields).Err(); err != nil {
		return errors.NewUnavailableError("failed to write control state", err)
	}
	return nil
}

func (s *LiveStateStore) GetControl(ctx context.Context, deviceID string) (*models.ControlState, error) {
	fields, err := s.client.HGetAll(ctx, controlKey(deviceID)).Result()
	if err != nil {
		return nil, errors.NewUnavailableError("failed to read control state", err)
	}
	if len(fields) == 0 {
		return nil, errors.NewNotFoundError("no control state for device", nil)
	}

	state := &models.ControlState{
		Motor:  fields["motor"],
		Source: fields["source"],
	}
	if raw, ok := fields["updated_at"]; ok {
		if ts, err := strconv.ParseInt(raw, 10, 64); err == nil {
			state.UpdatedAt = ts
		}
	}
	return state, nil
}

func (s *LiveStateStore) DeleteDevice(ctx context.Context, deviceID string) error {
	if err := s.client.Del(ctx, liveKey(deviceID), controlKey(deviceID)).Err(); err != nil {
		return errors.NewUnavailableError("failed to delete device state", err)
	}
	return nil
}
