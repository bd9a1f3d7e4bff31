package persistence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/skobkin/utcstamp/internal/codec"
	"github.com/skobkin/utcstamp/internal/domain"
	"github.com/skobkin/utcstamp/internal/utctime"
)

const (
	defaultWriterCapacity = 256
	defaultWriterBackoff  = 300 * time.Millisecond
	maxWriteAttempts      = 3
)

var (
	// ErrWriterStopped is returned for writes that were pending or submitted after the queue stopped.
	ErrWriterStopped = errors.New("writer queue stopped")
	// ErrWriterQueueFull is returned when the queue has no free slot.
	ErrWriterQueueFull = errors.New("writer queue is full")
)

type writeCmd struct {
	name string
	fn   func(context.Context) error
	done chan error
}

// WriterQueue runs database writes on a single background goroutine and retries failed ones.
// Timestamp conversion errors and missing rows are deterministic and are reported without retrying.
// Every enqueued write gets exactly one result, including writes still pending when the queue stops.
type WriterQueue struct {
	logger  *slog.Logger
	queue   chan writeCmd
	backoff time.Duration

	mu      sync.Mutex
	stopErr error
}

func NewWriterQueue(logger *slog.Logger, capacity int) *WriterQueue {
	if capacity <= 0 {
		capacity = defaultWriterCapacity
	}
	return &WriterQueue{
		logger:  logger,
		queue:   make(chan writeCmd, capacity),
		backoff: defaultWriterBackoff,
	}
}

// Enqueue schedules fn. The returned channel receives the final result once.
func (w *WriterQueue) Enqueue(name string, fn func(context.Context) error) <-chan error {
	cmd := writeCmd{name: name, fn: fn, done: make(chan error, 1)}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopErr != nil {
		cmd.done <- w.stopErr
		return cmd.done
	}
	select {
	case w.queue <- cmd:
	default:
		w.logger.Warn("db write dropped", "cmd", name, "error", ErrWriterQueueFull)
		cmd.done <- ErrWriterQueueFull
	}

	return cmd.done
}

// Start runs the worker until ctx is done. Pending writes then fail with ErrWriterStopped.
func (w *WriterQueue) Start(ctx context.Context) {
	go func() {
		defer w.shutdown(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case cmd := <-w.queue:
				if ctx.Err() != nil {
					cmd.done <- stoppedError(ctx)
					return
				}
				cmd.done <- w.runWithRetry(ctx, cmd)
			}
		}
	}()
}

func (w *WriterQueue) shutdown(ctx context.Context) {
	err := stoppedError(ctx)

	// Enqueue sends under mu, so nothing reaches the queue after stopErr is set.
	w.mu.Lock()
	w.stopErr = err
	w.mu.Unlock()

	for {
		select {
		case cmd := <-w.queue:
			cmd.done <- err
		default:
			return
		}
	}
}

func stoppedError(ctx context.Context) error {
	return fmt.Errorf("%w: %w", ErrWriterStopped, context.Cause(ctx))
}

func (w *WriterQueue) runWithRetry(ctx context.Context, cmd writeCmd) error {
	var err error
	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		if err = cmd.fn(ctx); err == nil {
			return nil
		}
		w.logger.Error("db write failed", "cmd", cmd.name, "attempt", attempt, "error", err)
		if isPermanent(err) || attempt == maxWriteAttempts {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * w.backoff):
		}
	}

	return err
}

func isPermanent(err error) bool {
	var (
		rangeErr     *codec.RangeError
		parseErr     *codec.ParseError
		constructErr *utctime.ConstructionError
	)

	return errors.As(err, &rangeErr) ||
		errors.As(err, &parseErr) ||
		errors.As(err, &constructErr) ||
		errors.Is(err, codec.ErrUnsupportedType) ||
		errors.Is(err, domain.ErrSessionNotFound)
}
