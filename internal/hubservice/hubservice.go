package hubservice

import (
	"context"
	"time"

	"github.com/helmsense/hub/internal/alerts"
	"github.com/helmsense/hub/internal/cleanup"
	"github.com/helmsense/hub/internal/errors"
	"github.com/helmsense/hub/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

// HubService contains all repositories and service-wide dependencies
type HubService struct {
	Devices      repository.DeviceRepository
	Sessions     repository.SessionRepository
	Alerts       repository.AlertRepository
	DrowsyEvents repository.DrowsyEventRepository
	Live         repository.LiveStateStore
	Cleanup      *cleanup.CleanupService

	evaluator           *alerts.Evaluator
	events              *nuts.EventEmitter
	inactivityThreshold time.Duration
	now                 func() time.Time
}

// New creates a new HubService instance
func New(
	devices repository.DeviceRepository,
	sessions repository.SessionRepository,
	alertRepo repository.AlertRepository,
	drowsyEvents repository.DrowsyEventRepository,
	live repository.LiveStateStore,
	evaluator *alerts.Evaluator,
	inactivityThreshold time.Duration,
) *HubService {
	if inactivityThreshold <= 0 {
		inactivityThreshold = 10 * time.Minute
	}
	svc := &HubService{
		Devices:             devices,
		Sessions:            sessions,
		Alerts:              alertRepo,
		DrowsyEvents:        drowsyEvents,
		Live:                live,
		evaluator:           evaluator,
		events:              nuts.NewEventEmitter(),
		inactivityThreshold: inactivityThreshold,
		now:                 func() time.Time { return time.Now().UTC() },
	}
	svc.Cleanup = cleanup.New(devices, sessions, alertRepo, drowsyEvents, live)
	return svc
}

// Validate checks if all required dependencies are initialized
func (s *HubService) Validate() error {
	if s.Devices == nil {
		return ErrMissingRepository("devices")
	}
	if s.Sessions == nil {
		return ErrMissingRepository("sessions")
	}
	if s.Alerts == nil {
		return ErrMissingRepository("alerts")
	}
	if s.DrowsyEvents == nil {
		return ErrMissingRepository("drowsyEvents")
	}
	if s.Live == nil {
		return ErrMissingRepository("live")
	}
	if s.evaluator == nil {
		return ErrMissingRepository("evaluator")
	}
	return nil
}

func ErrMissingRepository(name string) error {
	return errors.NewInternalError("missing repository: "+name, nil)
}

// OnAlert registers a callback invoked with the alert id each time the
// ingest path persists a new alert.
func (s *HubService) OnAlert(handler func(id string)) {
	s.events.On("alert.created", "hubservice_handler", func(args ...interface{}) {
		if len(args) > 0 {
			if id, ok := args[0].(string); ok {
				handler(id)
			}
		}
	})
}

// SetNowFunc overrides the service clock. Used by tests.
func (s *HubService) SetNowFunc(now func() time.Time) {
	s.now = now
}

type ctxKey string

const rolesContextKey = ctxKey("user_roles")

// WithRoles attaches the caller's roles to the request context.
func WithRoles(ctx context.Context, roles []string) context.Context {
	return context.WithValue(ctx, rolesContextKey, roles)
}

// GetUserRoles retrieves the caller's roles from the context, defaulting
// to guest for unauthenticated dashboard reads.
func GetUserRoles(ctx context.Context) []string {
	if roles, ok := ctx.Value(rolesContextKey).([]string); ok && len(roles) > 0 {
		return roles
	}
	return []string{"guest"}
}
