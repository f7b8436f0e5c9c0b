package monitoring

import (
	"sync"
	"time"

	nuts "github.com/vaudience/go-nuts"
)

// Config holds monitoring configuration
type Config struct {
	ServiceName string
}

// Service provides monitoring functionality
type Service struct {
	config Config

	mu       sync.Mutex
	counters map[string]int64
}

// NewService creates a new monitoring service
func NewService(config Config) *Service {
	nuts.L.Infof("[Monitoring] Initialized for %s", config.ServiceName)
	return &Service{
		config:   config,
		counters: make(map[string]int64),
	}
}

// RecordEvent records a monitored event with labels
func (s *Service) RecordEvent(eventName string, labels map[string]string) {
	ts := time.Now()

	s.mu.Lock()
	s.counters[eventName]++
	s.mu.Unlock()

	nuts.L.Infof("[Monitoring] Event %s recorded at %v with labels: %v", eventName, ts, labels)
}

// EventCounts returns a snapshot of per-event counters since startup.
// Served by the metrics endpoint.
func (s *Service) EventCounts() map[string]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make(map[string]int64, len(s.counters))
	for name, count := range s.counters {
		snapshot[name] = count
	}
	return snapshot
}
