// FilePath: internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/helmsense/hub/api"
	"github.com/helmsense/hub/api/middleware"
	"github.com/helmsense/hub/internal/alerts"
	"github.com/helmsense/hub/internal/config"
	"github.com/helmsense/hub/internal/database"
	"github.com/helmsense/hub/internal/hubservice"
	"github.com/helmsense/hub/internal/monitoring"
	"github.com/helmsense/hub/internal/repository/postgres"
	"github.com/helmsense/hub/internal/repository/redisstore"
	"github.com/helmsense/hub/internal/tracker"
	"github.com/redis/go-redis/v9"
	nuts "github.com/vaudience/go-nuts"
)

// Server represents our HTTP server
type Server struct {
	config     *config.Config
	srv        *http.Server
	hubservice *hubservice.HubService
	monitoring *monitoring.Service
	tracker    *tracker.Tracker
	appDB      database.DB

	stopTracker context.CancelFunc
}

// New creates a new server instance
func New(cfg *config.Config) *Server {
	return &Server{
		config: cfg,
	}
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Initialize services
	s.hubservice = s.initializeHubService()
	s.monitoring = monitoring.NewService(monitoring.Config{
		ServiceName: "helmsense-hub",
	})

	// Set up event handlers
	s.setupEventHandlers()

	// Setup routes
	router := api.NewRouter(s.hubservice, middleware.TokenConfig{
		DeviceTokens: s.config.Auth.DeviceTokens,
		AdminTokens:  s.config.Auth.AdminTokens,
	}, s.defaultDeviceID())
	router.Resources().SetHealthCheck(s.handleHealth())
	router.Resources().SetMetrics(s.handleMetrics())

	handler := handlers.CombinedLoggingHandler(os.Stdout, handlers.CORS(
		handlers.AllowedOrigins(s.config.Server.AllowedOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)(router))

	s.srv = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port),
		Handler:      handler,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
	}

	// Start the session lifecycle tracker
	trackerCtx, cancel := context.WithCancel(context.Background())
	s.stopTracker = cancel
	go s.tracker.Run(trackerCtx)

	// Start server
	go func() {
		nuts.L.Infof("[Server] Starting server on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			nuts.L.Errorf("[Server] Error starting server: %v", err)
			os.Exit(1)
		}
	}()

	return s.waitForShutdown()
}

// waitForShutdown waits for interrupt signal and gracefully shuts down the server
func (s *Server) waitForShutdown() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	nuts.L.Infof("[Server] Shutting down server...")
	s.stopTracker()

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}

	if s.appDB != nil {
		if err := s.appDB.Close(); err != nil {
			nuts.L.Warnf("[Server] Error closing database: %v", err)
		}
	}

	nuts.L.Infof("[Server] Server shut down successfully")
	return nil
}

// handleHealth returns a simple health check handler
func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"RUNNING","service":"helmsense-hub","version":"` + nuts.GetVersion() + `"}`))
	}
}

// handleMetrics serves the per-event counters collected since startup.
func (s *Server) handleMetrics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(s.monitoring.EventCounts())
	}
}

func (s *Server) setupEventHandlers() {
	// Session lifecycle events from the tracker
	s.tracker.OnSessionEvent("session.opened", func(id string) {
		nuts.L.Infof("[Server] Session %s opened", id)
		s.monitoring.RecordEvent("session_opened", map[string]string{
			"session_id": id,
		})
	})
	s.tracker.OnSessionEvent("session.closed", func(id string) {
		nuts.L.Infof("[Server] Session %s closed", id)
		s.monitoring.RecordEvent("session_closed", map[string]string{
			"session_id": id,
		})
	})

	// Alerts persisted on the ingest path
	s.hubservice.OnAlert(func(id string) {
		s.monitoring.RecordEvent("alert_created", map[string]string{
			"alert_id": id,
		})
	})

	// Device deletion events
	s.hubservice.Cleanup.OnCleanup("device.deleted", func(id string) {
		nuts.L.Infof("[Cleanup] Device %s and all associated data deleted", id)
		s.monitoring.RecordEvent("device_deletion", map[string]string{
			"device_id": id,
		})
	})
}

// initializeHubService creates and configures the hub service
func (s *Server) initializeHubService() *hubservice.HubService {
	// Initialize stores
	s.appDB = initAppDB(s.config.Database.AppDB)
	redisClient := initRedis(s.config.Redis)

	// Initialize repositories
	devices, err := postgres.NewDeviceRepository(s.appDB)
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to initialize device repository: %v", err)
	}
	sessions, err := postgres.NewSessionRepository(s.appDB)
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to initialize session repository: %v", err)
	}
	alertRepo, err := postgres.NewAlertRepository(s.appDB)
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to initialize alert repository: %v", err)
	}
	drowsyEvents, err := postgres.NewDrowsyEventRepository(s.appDB)
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to initialize drowsy event repository: %v", err)
	}
	live := redisstore.NewLiveStateStore(redisClient)

	evaluator := alerts.NewEvaluator(s.config.Alerts)

	s.tracker = tracker.New(s.config.Tracker, live, sessions, drowsyEvents)

	svc := hubservice.New(devices, sessions, alertRepo, drowsyEvents, live, evaluator, s.config.Alerts.InactivityThreshold)
	if err := svc.Validate(); err != nil {
		nuts.L.Fatalf("[Server] Invalid service wiring: %v", err)
	}
	return svc
}

// defaultDeviceID is used by endpoints called without an explicit
// device_id, matching the single-helmet reference deployment.
func (s *Server) defaultDeviceID() string {
	if len(s.config.Tracker.DeviceIDs) > 0 {
		return s.config.Tracker.DeviceIDs[0]
	}
	return "helmet_01"
}

func initAppDB(cfg config.PostgresConfig) database.DB {
	wrappedDB, err := database.NewPostgresDB(cfg)
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to connect to AppDB: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := wrappedDB.Ping(ctx); err != nil {
		nuts.L.Fatalf("[Server] Failed to ping AppDB: %v", err)
	}
	return wrappedDB
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := database.NewRedisClient(ctx, cfg)
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to connect to Redis: %v", err)
	}
	return client
}
