package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DispatcherConfig sizes the worker pool
type DispatcherConfig struct {
	Workers     int
	QueueSize   int
	TaskTimeout time.Duration
}

// Validate rejects a config the pool cannot run with
func (c DispatcherConfig) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1", ErrInvalidConfig)
	}
	if c.QueueSize < 1 {
		return fmt.Errorf("%w: queue size must be at least 1", ErrInvalidConfig)
	}
	if c.TaskTimeout <= 0 {
		return fmt.Errorf("%w: task timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// TaskHandler processes one task. Its error is logged and otherwise dropped.
type TaskHandler[T any] func(ctx context.Context, task T) error

// Dispatcher runs submitted tasks on a bounded pool of workers, detached
// from the submitter. Submit never blocks: a full queue rejects the task.
// Each task runs under its own timeout; a panicking task is logged and the
// worker keeps going.
type Dispatcher[T any] struct {
	config  DispatcherConfig
	handler TaskHandler[T]
	logger  *zap.Logger
	name    string

	// tasks and wg belong to the current run; Start replaces both.
	tasks     chan T
	cancel    context.CancelFunc
	wg        *sync.WaitGroup
	mu        sync.RWMutex
	isRunning bool
}

// NewDispatcher creates a dispatcher; call Start before submitting.
func NewDispatcher[T any](name string, config DispatcherConfig, handler TaskHandler[T], logger *zap.Logger) (*Dispatcher[T], error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Dispatcher[T]{
		config:  config,
		handler: handler,
		logger:  logger.Named(name),
		name:    name,
	}, nil
}

// Start launches the workers. A stopped dispatcher can be started again
// with a fresh queue.
func (d *Dispatcher[T]) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.isRunning {
		return nil
	}
	d.isRunning = true

	ctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	d.cancel = cancel
	d.tasks = make(chan T, d.config.QueueSize)
	d.wg = &sync.WaitGroup{}
	for i := 0; i < d.config.Workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx, d.tasks, d.wg, i)
	}

	d.logger.Info("Dispatcher started",
		zap.Int("workers", d.config.Workers),
		zap.Int("queue_size", d.config.QueueSize),
		zap.Duration("task_timeout", d.config.TaskTimeout),
	)
	return nil
}

// Stop stops accepting tasks, lets workers drain the queue, and waits for
// them until ctx is done. Tasks still queued at the deadline are abandoned.
func (d *Dispatcher[T]) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.isRunning {
		d.mu.Unlock()
		return nil
	}
	d.isRunning = false
	tasks, wg, cancel := d.tasks, d.wg, d.cancel
	close(tasks)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		cancel()
		d.logger.Info("Dispatcher stopped gracefully")
		return nil
	case <-ctx.Done():
		cancel()
		d.logger.Warn("Dispatcher stop timed out", zap.Int("abandoned", len(tasks)))
		return ctx.Err()
	}
}

// Submit queues a task without blocking
func (d *Dispatcher[T]) Submit(task T) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.isRunning {
		return ErrSchedulerNotRunning
	}

	select {
	case d.tasks <- task:
		return nil
	default:
		return ErrJobQueueFull
	}
}

// Pending returns the number of queued tasks
func (d *Dispatcher[T]) Pending() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.tasks)
}

func (d *Dispatcher[T]) worker(ctx context.Context, tasks <-chan T, wg *sync.WaitGroup, workerID int) {
	defer wg.Done()
	for task := range tasks {
		d.process(ctx, task, workerID)
	}
}

func (d *Dispatcher[T]) process(ctx context.Context, task T, workerID int) {
	taskCtx, cancel := context.WithTimeout(ctx, d.config.TaskTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("Task panicked",
				zap.Int("worker_id", workerID),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
		}
	}()

	start := time.Now()
	if err := d.handler(taskCtx, task); err != nil {
		d.logger.Error("Task failed",
			zap.Int("worker_id", workerID),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return
	}
	d.logger.Debug("Task completed",
		zap.Int("worker_id", workerID),
		zap.Duration("elapsed", time.Since(start)),
	)
}
