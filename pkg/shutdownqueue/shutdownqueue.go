// Package shutdownqueue collects cleanup tasks and runs them in reverse
// registration order when the process stops.
//
// A Queue can be owned by a component (the API server owns one per run), and
// a process-wide default queue is reachable through Add and Shutdown:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
//	defer cancel()
//	defer shutdownqueue.Shutdown(ctx)
//
// Tasks run once. Panics are recovered and reported as errors.
// Shutdown is idempotent and returns an aggregated error via errors.Join.
package shutdownqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Task is a shutdown function. It should honor ctx and return an error
// if it can't finish (or ctx is canceled).
type Task func(ctx context.Context) error

type entry struct {
	name string
	task Task
}

// Queue is a LIFO list of shutdown tasks. The zero value is ready to use.
type Queue struct {
	mu      sync.Mutex
	entries []entry
	closed  bool
}

// New returns an empty queue.
func New() *Queue {
	return &Queue{entries: make([]entry, 0, 8)}
}

// Add registers an anonymous task.
func (q *Queue) Add(t Task) {
	q.AddNamed("", t)
}

// AddNamed registers a task whose name shows up in logs and errors.
// Nil tasks and tasks added once shutdown has started are ignored.
func (q *Queue) AddNamed(name string, t Task) {
	if t == nil {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.entries = append(q.entries, entry{name: name, task: t})
}

// Len reports how many tasks are waiting.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.entries)
}

// Shutdown drains the queue in LIFO order. Later calls are no-ops.
//
// If ctx is done mid-drain the remaining tasks are skipped and the context
// error is joined with the task errors collected so far.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()

	if q.closed && len(q.entries) == 0 {
		q.mu.Unlock()

		return nil
	}

	q.closed = true
	entries := q.entries
	q.entries = nil

	q.mu.Unlock()

	var errs []error

	for i := len(entries) - 1; i >= 0; i-- {
		select {
		case <-ctx.Done():
			errs = append(errs, fmt.Errorf("shutdown canceled: %w", ctx.Err()))

			return errors.Join(errs...)
		default:
		}

		err := run(ctx, entries[i])
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func run(ctx context.Context, e entry) (err error) {
	start := time.Now()

	defer func() {
		r := recover()
		if r != nil {
			err = fmt.Errorf("panic in shutdown task %s: %v", e.label(), r)
		}

		if e.name != "" {
			slog.Debug("shutdown task finished", "task", e.name, "took", time.Since(start), "error", err)
		}
	}()

	err = e.task(ctx)
	if err != nil && e.name != "" {
		return fmt.Errorf("%s: %w", e.name, err)
	}

	return err
}

func (e entry) label() string {
	if e.name == "" {
		return "(unnamed)"
	}

	return e.name
}

var std = New()

// Add registers t on the process-wide queue.
func Add(t Task) { std.Add(t) }

// AddNamed registers a named task on the process-wide queue.
func AddNamed(name string, t Task) { std.AddNamed(name, t) }

// Shutdown drains the process-wide queue.
func Shutdown(ctx context.Context) error { return std.Shutdown(ctx) }
