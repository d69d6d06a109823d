// Package fetchtask runs node and content fetches on a background worker
// pool and hands results back to the UI thread through one-shot result
// channels, so the core's render/load loop never blocks on I/O.
package fetchtask

import (
	"context"
	"log/slog"
	"sync"
)

// Config configures a Runner.
type Config struct {
	// Workers is the number of concurrent background workers (default: 4).
	Workers int
	// QueueSize bounds the number of pending tasks (default: 64).
	QueueSize int
	// Logger receives diagnostic messages; defaults to slog.Default() when nil.
	Logger *slog.Logger
}

func (c Config) log() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// Runner is the abstract "execute(future)" task runner: a pool of
// background workers draining a queue of closures. Each closure is
// responsible for delivering its own result through whatever one-shot
// channel it closes over (see FetchNode/FetchContent).
type Runner struct {
	cfg       Config
	tasks     chan func(ctx context.Context)
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	startOnce sync.Once
}

// NewRunner builds a Runner with the given configuration, applying
// defaults for zero-valued fields.
func NewRunner(cfg Config) *Runner {
	if cfg.Workers < 1 {
		cfg.Workers = 4
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 64
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		cfg:    cfg,
		tasks:  make(chan func(ctx context.Context), cfg.QueueSize),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start launches the configured number of background workers. Calling
// Start more than once has no additional effect.
func (r *Runner) Start() {
	r.startOnce.Do(func() {
		r.cfg.log().Debug("starting fetch task workers", "workers", r.cfg.Workers)
		for i := 0; i < r.cfg.Workers; i++ {
			r.wg.Add(1)
			go r.worker(i)
		}
	})
}

// Stop cancels outstanding work and waits for all workers to exit. Tasks
// already queued but not yet picked up are dropped; this is acceptable
// because the core never retries a dropped fetch — it simply leaves the
// corresponding tile in its current state.
func (r *Runner) Stop() {
	r.cancel()
	r.wg.Wait()
}

// Execute enqueues a task to run on a background worker. It never blocks
// the caller on I/O; if the queue is full the task is dropped and logged,
// matching the "no retry, no backpressure on the render loop" contract.
func (r *Runner) Execute(task func(ctx context.Context)) {
	select {
	case r.tasks <- task:
	case <-r.ctx.Done():
		r.cfg.log().Debug("fetch runner stopped, dropping task")
	default:
		r.cfg.log().Warn("fetch task queue full, dropping task")
	}
}

func (r *Runner) worker(id int) {
	defer r.wg.Done()
	log := r.cfg.log().With("worker_id", id)
	log.Debug("fetch worker started")

	for {
		select {
		case <-r.ctx.Done():
			log.Debug("fetch worker stopping")
			return
		case task := <-r.tasks:
			task(r.ctx)
		}
	}
}
