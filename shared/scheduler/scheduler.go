package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"weather-app/shared/config"
	"weather-app/shared/monitoring"

	"github.com/robfig/cron/v3"
)

// Metrics is what an agent reports about a finished run
type Metrics interface {
	// GetSummary is the one-line outcome logged and shown on /status
	GetSummary() string
}

// AgentEvents lets an agent report success, degraded runs (e.g. a digest sent
// without its narrative) and failures while it runs
type AgentEvents struct {
	OnSuccess         func(metrics Metrics, duration time.Duration)
	OnPartialFailure  func(err error, duration time.Duration)
	OnCriticalFailure func(err error, duration time.Duration)
}

// Agent is a job run on the digest schedule
type Agent interface {
	Name() string
	RunOnce(ctx context.Context, events *AgentEvents) error
	Initialize() error
}

// Scheduler runs an agent on the digest schedule
type Scheduler struct {
	config      *config.Config
	monitor     *monitoring.Monitor
	agent       Agent
	cron        *cron.Cron
	serveHealth bool
}

// New creates a scheduler. A nil monitor gets a fresh one.
func New(cfg *config.Config, agent Agent, monitor *monitoring.Monitor) *Scheduler {
	if monitor == nil {
		monitor = monitoring.NewMonitor()
	}

	return &Scheduler{
		config:      cfg,
		monitor:     monitor,
		agent:       agent,
		serveHealth: true,
		// A slow digest run makes the next tick skip instead of overlapping
		cron: cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
	}
}

// Monitor returns the monitor that records run outcomes
func (s *Scheduler) Monitor() *monitoring.Monitor {
	return s.monitor
}

// DisableHealthServer stops Start from opening the standalone health port,
// for processes that already serve the health routes
func (s *Scheduler) DisableHealthServer() {
	s.serveHealth = false
}

func (s *Scheduler) Start(ctx context.Context) error {
	if err := s.agent.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize agent: %w", err)
	}

	if s.serveHealth {
		healthServer := monitoring.NewHealthServer(s.monitor, fmt.Sprintf("%d", s.config.Monitoring.HealthPort))
		healthServer.Start()
		defer healthServer.Shutdown()
	}

	schedule := s.config.Digest.Schedule
	_, err := s.cron.AddFunc(schedule, func() {
		if err := s.RunOnce(ctx); err != nil {
			log.Printf("Error running scheduled job for %s: %v", s.agent.Name(), err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	log.Printf("Scheduler started for %s with schedule: %s", s.agent.Name(), schedule)
	s.cron.Start()

	<-ctx.Done()
	log.Printf("Scheduler stopped for %s", s.agent.Name())
	<-s.cron.Stop().Done()
	return ctx.Err()
}

func (s *Scheduler) RunOnce(ctx context.Context) error {
	startTime := time.Now()
	agentName := s.agent.Name()

	log.Printf("Starting %s run...", agentName)

	// Agent callbacks feed the monitor behind /health and /status
	events := &AgentEvents{
		OnSuccess: func(metrics Metrics, duration time.Duration) {
			s.monitor.RecordSuccess(metrics.GetSummary(), duration)
		},
		OnPartialFailure: func(err error, duration time.Duration) {
			s.monitor.RecordPartialFailure(fmt.Errorf("%s partial failure: %w", agentName, err), duration)
		},
		OnCriticalFailure: func(err error, duration time.Duration) {
			s.monitor.RecordCriticalFailure(fmt.Errorf("%s critical failure: %w", agentName, err), duration)
		},
	}

	if err := s.agent.RunOnce(ctx, events); err != nil {
		duration := time.Since(startTime)
		s.monitor.RecordCriticalFailure(fmt.Errorf("%s failed: %w", agentName, err), duration)
		return fmt.Errorf("%s run failed: %w", agentName, err)
	}

	return nil
}
