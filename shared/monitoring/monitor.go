package monitoring

import (
	"fmt"
	"sync"
	"time"

	"truthtube/internal/models"
	"truthtube/shared/logger"
)

// Monitor tracks the outcome of scheduled runs and of analyze requests
// served over HTTP. It is safe for concurrent use.
type Monitor struct {
	mu             sync.RWMutex
	lastRunSuccess bool
	lastRunTime    time.Time
	lastSummary    string
	requests       int
	requestErrors  map[models.ErrorKind]int
}

func NewMonitor() *Monitor {
	return &Monitor{requestErrors: make(map[models.ErrorKind]int)}
}

func (m *Monitor) RecordSuccess(summary string, duration time.Duration) {
	m.mu.Lock()
	m.lastRunSuccess = true
	m.lastRunTime = time.Now()
	m.lastSummary = summary
	m.mu.Unlock()

	logger.Log.Infof("Run completed successfully - %s (took %v)", summary, duration)
}

// RecordPartialFailure logs without touching health.
func (m *Monitor) RecordPartialFailure(err error, duration time.Duration) {
	logger.Log.Warnf("PARTIAL FAILURE: %v (duration: %v)", err, duration)
}

func (m *Monitor) RecordCriticalFailure(err error, duration time.Duration) {
	m.mu.Lock()
	m.lastRunSuccess = false
	m.lastRunTime = time.Now()
	m.lastSummary = err.Error()
	m.mu.Unlock()

	logger.Log.Errorf("CRITICAL FAILURE: %v (duration: %v)", err, duration)
}

// RecordRequest counts one analyze request; err is nil on success.
func (m *Monitor) RecordRequest(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests++
	if err != nil {
		m.requestErrors[models.KindOf(err)]++
	}
}

// IsHealthy is true until a scheduled run fails critically.
func (m *Monitor) IsHealthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.lastRunTime.IsZero() {
		return true
	}
	return m.lastRunSuccess
}

func (m *Monitor) GetStatusSummary() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	run := "No runs yet"
	if !m.lastRunTime.IsZero() {
		if m.lastRunSuccess {
			run = fmt.Sprintf("Last run: %s (%s)", m.lastRunTime.Format("Jan 2 15:04"), m.lastSummary)
		} else {
			run = fmt.Sprintf("Last run failed: %s (%s)", m.lastRunTime.Format("Jan 2 15:04"), m.lastSummary)
		}
	}

	failed := 0
	for _, n := range m.requestErrors {
		failed += n
	}
	return fmt.Sprintf("%s; %d analyze requests, %d failed", run, m.requests, failed)
}
