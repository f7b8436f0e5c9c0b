// FilePath: api/resources/resources.go
package resources

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/schema"
	"github.com/helmsense/hub/internal/errors"
	"github.com/helmsense/hub/internal/hubservice"
	nuts "github.com/vaudience/go-nuts"
)

// queryDecoder decodes URL query strings into filter structs.
var queryDecoder = newQueryDecoder()

func newQueryDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}

// Resources holds all HTTP resource handlers
type Resources struct {
	Telemetry   *TelemetryHandlers
	Devices     *DeviceHandlers
	Sessions    *SessionHandlers
	Alerts      *AlertHandlers
	Control     *ControlHandlers
	HealthCheck func(w http.ResponseWriter, r *http.Request)
	Metrics     func(w http.ResponseWriter, r *http.Request)
}

// NewResources creates a new Resources instance. defaultDeviceID is used
// for endpoints called without an explicit device_id, matching the
// single-helmet reference deployment.
func NewResources(svc *hubservice.HubService, defaultDeviceID string) *Resources {
	return &Resources{
		Telemetry: &TelemetryHandlers{hubservice: svc, defaultDeviceID: defaultDeviceID},
		Devices:   &DeviceHandlers{hubservice: svc},
		Sessions:  &SessionHandlers{hubservice: svc, defaultDeviceID: defaultDeviceID},
		Alerts:    &AlertHandlers{hubservice: svc, defaultDeviceID: defaultDeviceID},
		Control:   &ControlHandlers{hubservice: svc, defaultDeviceID: defaultDeviceID},
	}
}

// SetHealthCheck sets the health check handler
func (r *Resources) SetHealthCheck(h func(w http.ResponseWriter, r *http.Request)) {
	r.HealthCheck = h
}

// SetMetrics sets the metrics handler
func (r *Resources) SetMetrics(h func(w http.ResponseWriter, r *http.Request)) {
	r.Metrics = h
}

// Helper functions

func deviceIDFromRequest(r *http.Request, defaultDeviceID string) string {
	if id := r.URL.Query().Get("device_id"); id != "" {
		return id
	}
	return defaultDeviceID
}

func getPaginationParams(r *http.Request) (offset, limit int) {
	query := r.URL.Query()
	offset, _ = strconv.Atoi(query.Get("offset"))
	limit, _ = strconv.Atoi(query.Get("limit"))

	if limit <= 0 || limit > 100 {
		limit = 50 // Default limit
	}
	if offset < 0 {
		offset = 0
	}

	return offset, limit
}

func respondWithError(w http.ResponseWriter, err *errors.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Code)
	json.NewEncoder(w).Encode(err)
	nuts.L.Errorf("[API] %s", err.Error())
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

// respondServiceError maps a service error onto the response, keeping
// the APIError code when one is available.
func respondServiceError(w http.ResponseWriter, err error, fallback *errors.APIError) {
	if apiErr, ok := err.(*errors.APIError); ok {
		respondWithError(w, apiErr)
		return
	}
	respondWithError(w, fallback)
}
