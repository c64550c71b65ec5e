package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// PullFunc runs one order pull
type PullFunc func(ctx context.Context) error

// PullTrigger runs a pull on a fixed interval. A tick that arrives while a
// pull is still running is skipped rather than queued.
type PullTrigger struct {
	interval time.Duration
	timeout  time.Duration
	pull     PullFunc
	logger   *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	busy      sync.Mutex
	lastRunAt time.Time
}

// NewPullTrigger creates a trigger. timeout bounds each pull; zero means the interval.
func NewPullTrigger(interval, timeout time.Duration, pull PullFunc, logger *zap.Logger) *PullTrigger {
	if timeout <= 0 {
		timeout = interval
	}
	return &PullTrigger{
		interval: interval,
		timeout:  timeout,
		pull:     pull,
		logger:   logger.Named("pull_trigger"),
	}
}

// Start begins ticking
func (p *PullTrigger) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.isRunning {
		return nil
	}
	if p.interval <= 0 {
		return ErrInvalidConfig
	}
	p.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.wg.Add(1)
	go p.runLoop(ctx)

	p.logger.Info("Pull trigger started", zap.Duration("interval", p.interval))
	return nil
}

// Stop cancels the loop and any pull in progress, then waits for it
func (p *PullTrigger) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.isRunning {
		p.mu.Unlock()
		return nil
	}
	p.isRunning = false
	p.cancel()
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		p.logger.Info("Pull trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *PullTrigger) runLoop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.RunOnce(ctx)
		}
	}
}

// RunOnce runs a pull now unless one is already in progress.
// It reports whether a pull was run.
func (p *PullTrigger) RunOnce(ctx context.Context) bool {
	if !p.busy.TryLock() {
		p.logger.Debug("Previous pull still running, skipping tick")
		return false
	}
	defer p.busy.Unlock()

	pullCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	if err := p.pull(pullCtx); err != nil {
		p.logger.Error("Scheduled pull failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
	}
	p.mu.Lock()
	p.lastRunAt = start
	p.mu.Unlock()
	return true
}

// LastRunAt returns when the last pull started, zero if none ran
func (p *PullTrigger) LastRunAt() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastRunAt
}
