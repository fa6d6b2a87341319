// Package jobs serializes bookmark file I/O.
//
// A Queue runs at most one job at a time. Requests made while a job is in
// flight are appended to a FIFO and started, in order, as soon as the previous
// one completes.
package jobs

import (
	"context"
	"log/slog"
	"sync"
)

// Kind is the type of I/O a job performs.
type Kind int

const (
	KindLoad Kind = iota
	KindSave
)

// String returns a string representation of the job kind.
func (k Kind) String() string {
	switch k {
	case KindLoad:
		return "load"
	case KindSave:
		return "save"
	default:
		return "unknown"
	}
}

// RunFunc performs one job. It is never called concurrently with itself.
type RunFunc func(ctx context.Context, kind Kind) error

// Observer receives queue transitions. Callbacks run on the goroutine that
// caused them and must not block or call Request. For any one job Requested
// is delivered before Started.
type Observer interface {
	Requested(kind Kind, queued int)
	Started(kind Kind)
	Finished(kind Kind, err error)
}

// Queue is the Idle / Busy(kind) state machine with a FIFO of pending kinds.
type Queue struct {
	run       RunFunc
	logger    *slog.Logger
	observers []Observer

	// held while Requested is delivered so the runner cannot report
	// Started for that job first
	notifyMu sync.Mutex

	mu      sync.Mutex
	pending []Kind // head is the job in flight while busy
	busy    bool
	closed  bool
	idle    chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
}

// Option configures a Queue.
type Option func(*Queue)

// WithLogger installs a logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(q *Queue) { q.logger = l }
}

// WithObserver adds an observer for queue transitions.
func WithObserver(o Observer) Option {
	return func(q *Queue) { q.observers = append(q.observers, o) }
}

// New creates an idle Queue running jobs with run.
func New(run RunFunc, opts ...Option) *Queue {
	q := &Queue{run: run, logger: slog.Default()}
	for _, opt := range opts {
		opt(q)
	}
	q.ctx, q.cancel = context.WithCancel(context.Background())
	q.idle = make(chan struct{})
	close(q.idle)
	return q
}

// Request enqueues a job. If the queue is idle the job starts immediately on
// a background goroutine. Returns false once the queue is closed.
func (q *Queue) Request(kind Kind) bool {
	q.notifyMu.Lock()
	defer q.notifyMu.Unlock()

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.logger.Debug("jobs: request after close", "kind", kind)
		return false
	}
	q.pending = append(q.pending, kind)
	queued := len(q.pending) - 1
	start := !q.busy
	if start {
		q.busy = true
		q.idle = make(chan struct{})
	}
	q.mu.Unlock()

	q.logger.Debug("jobs: request", "kind", kind, "queued", queued, "start", start)
	for _, o := range q.observers {
		o.Requested(kind, queued)
	}

	if start {
		go q.process()
	}
	return true
}

func (q *Queue) process() {
	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.busy = false
			close(q.idle)
			q.mu.Unlock()
			q.logger.Debug("jobs: idle")
			return
		}
		kind := q.pending[0]
		q.mu.Unlock()

		q.logger.Debug("jobs: start", "kind", kind)
		q.notifyMu.Lock()
		for _, o := range q.observers {
			o.Started(kind)
		}
		q.notifyMu.Unlock()

		err := q.run(q.ctx, kind)

		for _, o := range q.observers {
			o.Finished(kind, err)
		}
		if err != nil {
			q.logger.Debug("jobs: finished with error", "kind", kind, "err", err)
		} else {
			q.logger.Debug("jobs: finished", "kind", kind)
		}

		// pop the head, which is the job that just completed
		q.mu.Lock()
		q.pending = q.pending[1:]
		q.mu.Unlock()
	}
}

// State reports whether a job is in flight, its kind, and how many jobs wait behind it.
func (q *Queue) State() (busy bool, current Kind, queued int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.busy || len(q.pending) == 0 {
		return false, 0, 0
	}
	return true, q.pending[0], len(q.pending) - 1
}

// Flush blocks until the queue is idle or ctx is done.
func (q *Queue) Flush(ctx context.Context) error {
	q.mu.Lock()
	idle := q.idle
	q.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting requests, waits for queued jobs to finish and then
// cancels the context passed to RunFunc.
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	err := q.Flush(ctx)
	q.cancel()
	return err
}
