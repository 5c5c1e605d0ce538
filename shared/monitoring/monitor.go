package monitoring

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// Monitor tracks the outcome of the most recent agent run. It is shared by the
// scheduler goroutine and the HTTP handlers.
type Monitor struct {
	mu             sync.RWMutex
	lastRunSuccess bool
	lastRunTime    time.Time
	lastSummary    string
	lastError      string
	runCount       int
	failureCount   int
}

func NewMonitor() *Monitor {
	return &Monitor{}
}

func (m *Monitor) RecordSuccess(summary string, duration time.Duration) {
	m.mu.Lock()
	m.lastRunSuccess = true
	m.lastRunTime = time.Now()
	m.lastSummary = summary
	m.lastError = ""
	m.runCount++
	m.mu.Unlock()

	log.Printf("✅ Run completed successfully - %s (took %v)", summary, duration)
}

func (m *Monitor) RecordPartialFailure(err error, duration time.Duration) {
	// Health status is left unchanged
	m.mu.Lock()
	m.lastError = err.Error()
	m.mu.Unlock()

	log.Printf("⚠️  PARTIAL FAILURE: %s (Duration: %v)", err.Error(), duration)
}

func (m *Monitor) RecordCriticalFailure(err error, duration time.Duration) {
	now := time.Now()

	m.mu.Lock()
	m.lastRunSuccess = false
	m.lastRunTime = now
	m.lastError = err.Error()
	m.runCount++
	m.failureCount++
	m.mu.Unlock()

	log.Printf("🚨 CRITICAL FAILURE: %s (Duration: %v)", err.Error(), duration)
	log.Printf("Failure occurred at: %s", now.Format("2006-01-02 15:04:05"))
}

func (m *Monitor) IsHealthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.lastRunTime.IsZero() {
		return true // No runs yet
	}
	return m.lastRunSuccess
}

func (m *Monitor) GetStatusSummary() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.lastRunTime.IsZero() {
		return "No runs yet"
	}

	if m.lastRunSuccess {
		return fmt.Sprintf("✅ Last run: %s (%s)", m.lastRunTime.Format("Jan 2 15:04"), m.lastSummary)
	}
	return fmt.Sprintf("❌ Last run failed: %s (%s)", m.lastRunTime.Format("Jan 2 15:04"), m.lastError)
}

// Status is the JSON form of the monitor state
type Status struct {
	Healthy      bool      `json:"healthy"`
	Summary      string    `json:"summary"`
	LastRun      time.Time `json:"last_run,omitempty"`
	LastError    string    `json:"last_error,omitempty"`
	RunCount     int       `json:"run_count"`
	FailureCount int       `json:"failure_count"`
}

func (m *Monitor) Snapshot() Status {
	summary := m.GetStatusSummary()
	healthy := m.IsHealthy()

	m.mu.RLock()
	defer m.mu.RUnlock()
	return Status{
		Healthy:      healthy,
		Summary:      summary,
		LastRun:      m.lastRunTime,
		LastError:    m.lastError,
		RunCount:     m.runCount,
		FailureCount: m.failureCount,
	}
}
