package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Scheduler fires audit cycles on a fixed cadence. A single cycle runs
// at a time; starting an already-running scheduler is a no-op.
type Scheduler struct {
	engine  *AuditEngine
	cadence time.Duration
	logger  *zap.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
	lastRun *time.Time

	now func() time.Time
}

// NewScheduler creates a scheduler with the given cadence in minutes
func NewScheduler(engine *AuditEngine, cadenceMinutes int, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		engine:  engine,
		cadence: time.Duration(cadenceMinutes) * time.Minute,
		logger:  logger,
		now:     time.Now,
	}
}

// IsRunning reports whether the scheduler loop is active
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// ShouldRunAudit reports whether a cycle is due: true if none has run
// yet, or the cadence has elapsed since the last one. Guards ad-hoc
// triggers against double-firing within the same window.
func (s *Scheduler) ShouldRunAudit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastRun == nil {
		return true
	}
	return s.now().Sub(*s.lastRun) >= s.cadence
}

// RunAuditCycle runs one cycle immediately and records the run time
func (s *Scheduler) RunAuditCycle(ctx context.Context) AuditResult {
	result := s.engine.RunFullAudit(ctx)

	s.mu.Lock()
	now := s.now()
	s.lastRun = &now
	s.mu.Unlock()

	return result
}

// Start launches the scheduler loop. A no-op if already running.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Warn("Scheduler already running")
		return
	}
	loopCtx, cancel := context.WithCancel(ctx)
	s.running = true
	s.cancel = cancel
	s.done = make(chan struct{})
	s.mu.Unlock()

	go s.run(loopCtx)

	s.logger.Info("Audit scheduler started",
		zap.Duration("cadence", s.cadence),
	)
}

// Stop cancels the wait for the next cycle and blocks until the loop
// exits. An in-progress cycle finishes its current chat first.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	cancel()
	<-done

	s.logger.Info("Audit scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.cadence)
	defer ticker.Stop()

	// First cycle fires immediately, then on the ticker
	s.cycle(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cycle(ctx)
		}
	}
}

func (s *Scheduler) cycle(ctx context.Context) {
	start := s.now()
	result := s.RunAuditCycle(ctx)
	s.logger.Info("Audit cycle completed",
		zap.Duration("duration", s.now().Sub(start)),
		zap.Int("processed_chats", result.ProcessedChats),
		zap.Int("total_lurkers", result.TotalLurkers),
		zap.Int("total_provoked", result.TotalProvoked),
		zap.Int("total_backlogged", result.TotalBacklogged),
	)
}
