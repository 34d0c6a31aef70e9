package logger

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

// captureHandler collects delivered records for assertions.
type captureHandler struct {
	mu      sync.Mutex
	records []slog.Record
	delay   time.Duration // optional per-record processing delay
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, rec slog.Record) error { //nolint:gocritic // slog.Handler interface requires value receiver
	if h.delay > 0 {
		time.Sleep(h.delay)
	}
	h.mu.Lock()
	h.records = append(h.records, rec)
	h.mu.Unlock()
	return nil
}

func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *captureHandler) WithGroup(string) slog.Handler      { return h }

func (h *captureHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.records)
}

func (h *captureHandler) messages() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.records))
	for i, r := range h.records {
		out[i] = r.Message
	}
	return out
}

func record(msg string) slog.Record {
	return slog.NewRecord(time.Now(), slog.LevelInfo, msg, 0)
}

func TestBufferedHandlerDelivers(t *testing.T) {
	inner := &captureHandler{}
	bh := NewBufferedHandler(inner, 100, 1)

	if err := bh.Handle(context.Background(), record("section created")); err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	bh.Close()

	if got := inner.count(); got != 1 {
		t.Fatalf("expected 1 record, got %d", got)
	}
}

func TestBufferedHandlerConcurrentWrites(t *testing.T) {
	const goroutines = 100
	const perGoroutine = 100
	total := goroutines * perGoroutine

	inner := &captureHandler{}
	bh := NewBufferedHandler(inner, total, 4)

	var wg sync.WaitGroup
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perGoroutine {
				_ = bh.Handle(context.Background(), record("concurrent"))
			}
		}()
	}
	wg.Wait()
	bh.Close()

	if got := inner.count(); got != total {
		t.Fatalf("expected %d records, got %d", total, got)
	}
}

func TestBufferedHandlerDiscardsWhenFull(t *testing.T) {
	// Slow inner handler with a one-slot queue to force backpressure.
	inner := &captureHandler{delay: 10 * time.Millisecond}
	bh := NewBufferedHandler(inner, 1, 1)

	for range 50 {
		_ = bh.Handle(context.Background(), record("flood"))
	}
	bh.Close()

	if bh.Dropped() == 0 {
		t.Fatal("expected records to be discarded, got 0")
	}
}

func TestBufferedHandlerCloseReportsDiscards(t *testing.T) {
	inner := &captureHandler{delay: 10 * time.Millisecond}
	bh := NewBufferedHandler(inner, 1, 1)

	for range 50 {
		_ = bh.Handle(context.Background(), record("flood"))
	}
	bh.Close()

	msgs := inner.messages()
	if len(msgs) == 0 {
		t.Fatal("no records delivered")
	}
	last := msgs[len(msgs)-1]
	if !strings.Contains(last, "discarded") {
		t.Errorf("final record should report the discard count, got %q", last)
	}
}

func TestBufferedHandlerCloseFlushesQueue(t *testing.T) {
	inner := &captureHandler{}
	bh := NewBufferedHandler(inner, 1000, 2)

	const total = 200
	for range total {
		_ = bh.Handle(context.Background(), record("flush"))
	}

	// Close must block until every enqueued record reaches the inner handler.
	bh.Close()

	if got := inner.count(); got != total {
		t.Fatalf("expected %d records after close, got %d", total, got)
	}
}

func TestBufferedHandlerClonesShareQueue(t *testing.T) {
	inner := &captureHandler{}
	bh := NewBufferedHandler(inner, 100, 1)
	scoped := bh.WithAttrs([]slog.Attr{slog.String("agency_id", "a1")})

	_ = bh.Handle(context.Background(), record("base"))
	_ = scoped.Handle(context.Background(), record("scoped"))
	bh.Close()

	if got := inner.count(); got != 2 {
		t.Fatalf("expected both clones to drain through one queue, got %d records", got)
	}
}
