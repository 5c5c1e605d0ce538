package monitoring

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
)

func TestMonitorHealth(t *testing.T) {
	m := NewMonitor()
	if !m.IsHealthy() {
		t.Error("A monitor with no runs should be healthy")
	}
	if m.GetStatusSummary() != "No runs yet" {
		t.Errorf("Unexpected summary %q", m.GetStatusSummary())
	}

	m.RecordPartialFailure(errors.New("narrative failed"), time.Second)
	if !m.IsHealthy() {
		t.Error("Partial failures must not change health")
	}

	m.RecordCriticalFailure(errors.New("forecast down"), time.Second)
	if m.IsHealthy() {
		t.Error("Expected unhealthy after a critical failure")
	}
	if !strings.Contains(m.GetStatusSummary(), "forecast down") {
		t.Errorf("Summary should mention the failure, got %q", m.GetStatusSummary())
	}

	m.RecordSuccess("sent 1 digest", time.Second)
	if !m.IsHealthy() {
		t.Error("Expected healthy after a success")
	}

	s := m.Snapshot()
	if s.RunCount != 2 || s.FailureCount != 1 {
		t.Errorf("Expected 2 runs / 1 failure, got %d / %d", s.RunCount, s.FailureCount)
	}
}

func TestMonitorConcurrentAccess(t *testing.T) {
	m := NewMonitor()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			m.RecordSuccess("ok", time.Millisecond)
		}()
		go func() {
			defer wg.Done()
			m.IsHealthy()
			m.GetStatusSummary()
		}()
	}
	wg.Wait()

	if m.Snapshot().RunCount != 50 {
		t.Errorf("Expected 50 runs, got %d", m.Snapshot().RunCount)
	}
}

func TestHealthRoutes(t *testing.T) {
	m := NewMonitor()
	app := fiber.New()
	NewHealthServer(m, "").RegisterRoutes(app)

	tests := []struct {
		name         string
		setup        func()
		path         string
		expectStatus int
		expectBody   string
	}{
		{"Healthy with no runs", func() {}, "/health", 200, "OK - No runs yet"},
		{"Unhealthy after failure", func() { m.RecordCriticalFailure(errors.New("boom"), 0) }, "/health", 503, "Service unhealthy"},
		{"Status text", func() {}, "/status", 200, "Last run failed"},
		{"Status JSON", func() {}, "/status?format=json", 200, `"healthy":false`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			resp, err := app.Test(httptest.NewRequest("GET", tt.path, nil))
			if err != nil {
				t.Fatalf("Request failed: %v", err)
			}
			body, _ := io.ReadAll(resp.Body)
			if resp.StatusCode != tt.expectStatus {
				t.Errorf("Expected status %d, got %d", tt.expectStatus, resp.StatusCode)
			}
			if !strings.Contains(string(body), tt.expectBody) {
				t.Errorf("Expected body to contain %q, got %q", tt.expectBody, body)
			}
		})
	}
}
