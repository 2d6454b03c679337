package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/V4T54L/docsearch/internal/adapter/metrics"
)

const errorBufferSize = 256

// Task is a unit of background work. Its error is reported, never returned to a caller.
type Task func(ctx context.Context) error

type taskError struct {
	name string
	err  error
}

// Dispatcher runs background tasks on a bounded worker pool. Task errors are sent
// to a buffered channel that a single goroutine drains into the operational log.
// No ordering is guaranteed between a task and the response of the request that
// submitted it.
type Dispatcher struct {
	pool    *ants.Pool
	errs    chan taskError
	quit    chan struct{}
	drained sync.WaitGroup
	once    sync.Once
	logger  *slog.Logger
	metrics *metrics.SearchMetrics
}

// NewDispatcher creates a dispatcher with the given number of workers.
// Submissions beyond the pool's capacity are rejected rather than queued.
func NewDispatcher(workers int, logger *slog.Logger, m *metrics.SearchMetrics) (*Dispatcher, error) {
	if workers < 1 {
		workers = 1
	}
	d := &Dispatcher{
		errs:    make(chan taskError, errorBufferSize),
		quit:    make(chan struct{}),
		logger:  logger.With("component", "dispatcher"),
		metrics: m,
	}

	pool, err := ants.NewPool(workers,
		ants.WithNonblocking(true),
		ants.WithPanicHandler(func(p interface{}) {
			d.report("panic", fmt.Errorf("background task panicked: %v", p))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	d.pool = pool

	d.drained.Add(1)
	go d.drain()
	return d, nil
}

// Submit schedules task in the background. The task context keeps the values of
// ctx but is not cancelled when the request that submitted it completes.
// It returns false if the task was dropped.
func (d *Dispatcher) Submit(ctx context.Context, name string, task Task) bool {
	taskCtx := context.WithoutCancel(ctx)
	err := d.pool.Submit(func() {
		if err := task(taskCtx); err != nil {
			d.report(name, err)
		}
	})
	if err != nil {
		d.metrics.BackgroundDropped.Inc()
		if errors.Is(err, ants.ErrPoolOverload) {
			d.logger.Warn("worker pool saturated, background task dropped", "task", name)
		} else {
			d.logger.Warn("worker pool unavailable, background task dropped", "task", name, "error", err)
		}
		return false
	}
	return true
}

// Running returns the number of tasks currently executing.
func (d *Dispatcher) Running() int {
	return d.pool.Running()
}

// Close waits up to timeout for running tasks, then stops the error drain.
func (d *Dispatcher) Close(timeout time.Duration) error {
	var err error
	d.once.Do(func() {
		err = d.pool.ReleaseTimeout(timeout)
		close(d.quit)
		d.drained.Wait()
	})
	return err
}

func (d *Dispatcher) report(name string, err error) {
	select {
	case d.errs <- taskError{name: name, err: err}:
	default:
		// Buffer full: log inline rather than block a worker.
		d.log(taskError{name: name, err: err})
	}
}

func (d *Dispatcher) drain() {
	defer d.drained.Done()
	for {
		select {
		case te := <-d.errs:
			d.log(te)
		case <-d.quit:
			for {
				select {
				case te := <-d.errs:
					d.log(te)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) log(te taskError) {
	d.logger.Error("background task failed", "task", te.name, "error", te.err)
}
