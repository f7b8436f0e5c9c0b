// FilePath: internal/alerts/evaluator.go

// Package alerts evaluates threshold safety rules over a single
// telemetry sample.
package alerts

import (
	"fmt"
	"time"

	"github.com/helmsense/hub/internal/config"
	"github.com/helmsense/hub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// Default rule thresholds. Strict inequalities throughout.
const (
	DefaultTempThreshold  = 38.5
	DefaultPitchThreshold = -20.0
	DefaultGyroYThreshold = -120.0
)

// Evaluator produces alerts from one sample. It is stateless: repeated
// qualifying samples produce repeated alerts with no debouncing. That is
// the recorded product behavior, not an oversight to fix here.
type Evaluator struct {
	tempThreshold  float64
	pitchThreshold float64
	gyroYThreshold float64
}

// NewEvaluator builds an evaluator from config, falling back to the
// default thresholds where a value is unset.
func NewEvaluator(cfg config.AlertConfig) *Evaluator {
	e := &Evaluator{
		tempThreshold:  cfg.TempThreshold,
		pitchThreshold: cfg.PitchThreshold,
		gyroYThreshold: cfg.GyroYThreshold,
	}
	if e.tempThreshold == 0 {
		e.tempThreshold = DefaultTempThreshold
	}
	if e.pitchThreshold == 0 {
		e.pitchThreshold = DefaultPitchThreshold
	}
	if e.gyroYThreshold == 0 {
		e.gyroYThreshold = DefaultGyroYThreshold
	}
	return e
}

// Evaluate applies every rule to the sample. Rules are independent; a
// single sample can fire up to four alerts.
func (e *Evaluator) Evaluate(deviceID string, sample models.TelemetrySample, ts time.Time) []*models.Alert {
	var alerts []*models.Alert

	if sample.IsDrowsy {
		alerts = append(alerts, newAlert(deviceID, models.AlertDrowsinessDetected,
			"Driver drowsiness detected. Motor stopped.", ts))
	}

	if sample.Pitch < e.pitchThreshold {
		alerts = append(alerts, newAlert(deviceID, models.AlertHeadDown,
			fmt.Sprintf("Abnormal head tilt detected (pitch=%.1f)", sample.Pitch), ts))
	}

	if sample.GyroY < e.gyroYThreshold {
		alerts = append(alerts, newAlert(deviceID, models.AlertSuddenNod,
			fmt.Sprintf("Sudden head nod detected (gyroY=%.1f)", sample.GyroY), ts))
	}

	if sample.BodyTemp > e.tempThreshold {
		alerts = append(alerts, newAlert(deviceID, models.AlertHighBodyTemperature,
			fmt.Sprintf("High body temperature detected (%.1f °C)", sample.BodyTemp), ts))
	}

	return alerts
}

func newAlert(deviceID string, alertType models.AlertType, message string, ts time.Time) *models.Alert {
	return &models.Alert{
		ID:           nuts.NID("alrt", 12),
		DeviceID:     deviceID,
		Type:         alertType,
		Message:      message,
		Timestamp:    ts,
		Acknowledged: false,
	}
}
