// FilePath: api/api.router.go
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/helmsense/hub/api/middleware"
	"github.com/helmsense/hub/api/resources"
	"github.com/helmsense/hub/internal/hubservice"
)

type Router struct {
	router    *mux.Router
	auth      *middleware.TokenMiddleware
	resources *resources.Resources
}

func NewRouter(svc *hubservice.HubService, tokenConfig middleware.TokenConfig, defaultDeviceID string) *Router {
	r := &Router{
		router:    mux.NewRouter(),
		auth:      middleware.NewTokenMiddleware(tokenConfig),
		resources: resources.NewResources(svc, defaultDeviceID),
	}

	r.setupRoutes()
	return r
}

// Resources exposes the handler set so the server can attach the health
// and metrics handlers.
func (r *Router) Resources() *resources.Resources {
	return r.resources
}

func (r *Router) setupRoutes() {
	// Public routes
	r.router.HandleFunc("/health", r.delegate(func() http.HandlerFunc { return r.resources.HealthCheck })).Methods(http.MethodGet)
	r.router.HandleFunc("/metrics", r.delegate(func() http.HandlerFunc { return r.resources.Metrics })).Methods(http.MethodGet)

	// Dashboard reads stay open; the reference deployment fronts them
	// with a reverse proxy.
	r.router.HandleFunc("/api/live", r.resources.Telemetry.GetLiveData).Methods(http.MethodGet)
	r.router.HandleFunc("/api/inactive", r.resources.Telemetry.CheckInactivity).Methods(http.MethodGet)
	r.router.HandleFunc("/api/sessions", r.resources.Sessions.ListSessions).Methods(http.MethodGet)
	r.router.HandleFunc("/api/sessions/current", r.resources.Sessions.GetCurrentSession).Methods(http.MethodGet)
	r.router.HandleFunc("/api/workhours", r.resources.Sessions.GetWorkedHours).Methods(http.MethodGet)
	r.router.HandleFunc("/api/worker/stats", r.resources.Sessions.GetWorkerStats).Methods(http.MethodGet)
	r.router.HandleFunc("/api/alerts", r.resources.Alerts.ListAlerts).Methods(http.MethodGet)
	r.router.HandleFunc("/api/drowsy-events", r.resources.Alerts.ListDrowsyEvents).Methods(http.MethodGet)
	r.router.HandleFunc("/api/motor", r.resources.Control.GetMotorState).Methods(http.MethodGet)
	r.router.HandleFunc("/api/devices", r.resources.Devices.ListDevices).Methods(http.MethodGet)
	r.router.HandleFunc("/api/devices/{id}", r.resources.Devices.GetDevice).Methods(http.MethodGet)
	r.router.HandleFunc("/api/devices/{id}/status", r.resources.Devices.GetDeviceStatus).Methods(http.MethodGet)

	// Device routes, helmet firmware tokens
	device := r.router.PathPrefix("").Subrouter()
	device.Use(r.auth.Authenticate, r.auth.RequireRoles([]string{"device"}))
	device.HandleFunc("/api/telemetry", r.resources.Telemetry.ReceiveTelemetry).Methods(http.MethodPost)

	// Admin routes, dashboard operator tokens
	admin := r.router.PathPrefix("").Subrouter()
	admin.Use(r.auth.Authenticate, r.auth.RequireRoles([]string{"admin"}))
	admin.HandleFunc("/motor", r.resources.Control.SetMotorState).Methods(http.MethodPost)
	admin.HandleFunc("/emergency-stop", r.resources.Control.EmergencyStop).Methods(http.MethodPost)
	admin.HandleFunc("/api/alerts/{id}/ack", r.resources.Alerts.AcknowledgeAlert).Methods(http.MethodPost)
	admin.HandleFunc("/api/devices", r.resources.Devices.CreateDevice).Methods(http.MethodPost)
	admin.HandleFunc("/api/devices/{id}", r.resources.Devices.UpdateDevice).Methods(http.MethodPut)
	admin.HandleFunc("/api/devices/{id}", r.resources.Devices.DeleteDevice).Methods(http.MethodDelete)
}

// delegate resolves a handler at request time, so health and metrics can
// be attached after the router is constructed.
func (r *Router) delegate(resolve func() http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if h := resolve(); h != nil {
			h(w, req)
			return
		}
		http.NotFound(w, req)
	}
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}
