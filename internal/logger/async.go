package logger

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Closer flushes buffered log records on shutdown.
type Closer interface {
	Close()
}

// nopCloser is the Closer for synchronous mode.
type nopCloser struct{}

func (nopCloser) Close() {}

// BufferedHandler decouples record emission from the inner handler so a
// burst of render warnings cannot stall request handling. Records flow
// through a fixed-depth queue drained by worker goroutines; when the queue
// is full the record is counted and discarded rather than blocking the
// caller.
type BufferedHandler struct {
	inner slog.Handler
	q     *recordQueue
}

// recordQueue is shared across WithAttrs/WithGroup clones. Each queued item
// carries the handler it was enqueued through, so attribute scoping survives
// the detour through the queue.
type recordQueue struct {
	ch      chan queuedRecord
	wg      sync.WaitGroup
	dropped atomic.Int64
}

type queuedRecord struct {
	h   slog.Handler
	rec slog.Record
}

// NewBufferedHandler wraps inner with a queue of the given depth drained by
// the given number of workers.
func NewBufferedHandler(inner slog.Handler, depth, workers int) *BufferedHandler {
	q := &recordQueue{ch: make(chan queuedRecord, depth)}
	for range workers {
		q.wg.Add(1)
		go q.drain()
	}
	return &BufferedHandler{inner: inner, q: q}
}

func (q *recordQueue) drain() {
	defer q.wg.Done()
	for item := range q.ch {
		_ = item.h.Handle(context.Background(), item.rec)
	}
}

// Enabled delegates to the inner handler.
func (h *BufferedHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle enqueues the record, discarding it when the queue is full.
func (h *BufferedHandler) Handle(_ context.Context, rec slog.Record) error { //nolint:gocritic // slog.Handler interface requires value receiver
	select {
	case h.q.ch <- queuedRecord{h: h.inner, rec: rec}:
	default:
		h.q.dropped.Add(1)
	}
	return nil
}

// WithAttrs returns a clone whose records carry the extra attributes but
// share the same queue and workers.
func (h *BufferedHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &BufferedHandler{inner: h.inner.WithAttrs(attrs), q: h.q}
}

// WithGroup returns a clone scoped to the group, sharing the same queue.
func (h *BufferedHandler) WithGroup(name string) slog.Handler {
	return &BufferedHandler{inner: h.inner.WithGroup(name), q: h.q}
}

// Dropped reports how many records were discarded under backpressure.
func (h *BufferedHandler) Dropped() int64 {
	return h.q.dropped.Load()
}

// Close stops accepting records and waits for the queue to drain. When any
// records were discarded it writes one final record saying how many, so a
// gap in the log is visible in the log itself.
func (h *BufferedHandler) Close() {
	close(h.q.ch)
	h.q.wg.Wait()
	if n := h.q.dropped.Load(); n > 0 {
		rec := slog.NewRecord(time.Now(), slog.LevelWarn, "log records discarded under backpressure", 0)
		rec.AddAttrs(slog.Int64("discarded", n))
		_ = h.inner.Handle(context.Background(), rec)
	}
}
