package smpp

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestPool(capacity int) *processorPool {
	return &processorPool{
		queue:   make(chan task, capacity),
		metrics: newNoopMetrics(),
	}
}

// TestPoolRequestThrottlesImmediately covers S4's contract: once the queue
// is saturated, a request PDU is rejected without blocking at all.
func TestPoolRequestThrottlesImmediately(t *testing.T) {
	p := newTestPool(1)
	if err := p.submit(context.Background(), task{}); err != nil {
		t.Fatalf("unexpected error filling queue: %v", err)
	}

	start := time.Now()
	err := p.submit(context.Background(), task{isResponse: false})
	elapsed := time.Since(start)

	if !errors.Is(err, errQueueFull) {
		t.Fatalf("expected errQueueFull, got %v", err)
	}
	if elapsed > 50*time.Millisecond {
		t.Fatalf("request submit blocked for %v, want immediate rejection", elapsed)
	}
}

// TestPoolResponseBlocksThenSucceeds covers the asymmetric half of S4: a
// response PDU waits for room instead of being dropped, and is accepted as
// soon as the queue drains.
func TestPoolResponseBlocksThenSucceeds(t *testing.T) {
	p := newTestPool(1)
	if err := p.submit(context.Background(), task{isResponse: true}); err != nil {
		t.Fatalf("unexpected error filling queue: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- p.submit(context.Background(), task{isResponse: true})
	}()

	select {
	case err := <-done:
		t.Fatalf("submit returned early with queue still full: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	<-p.queue // drain the first task, freeing a slot

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error after queue drained: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("response submit never unblocked after queue drained")
	}
}

// TestPoolResponseHonorsContextCancellation ensures a response submit gives
// up once its context is done, rather than waiting the full
// maxResponseEnqueueWait.
func TestPoolResponseHonorsContextCancellation(t *testing.T) {
	p := newTestPool(1)
	if err := p.submit(context.Background(), task{isResponse: true}); err != nil {
		t.Fatalf("unexpected error filling queue: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := p.submit(ctx, task{isResponse: true})
	elapsed := time.Since(start)

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded, got %v", err)
	}
	if elapsed > 200*time.Millisecond {
		t.Fatalf("submit took %v, want it to return near the context deadline", elapsed)
	}
}

// TestPoolResizeGrowsOnly covers pool.go's documented grow-only contract.
func TestPoolResizeGrowsOnly(t *testing.T) {
	p := newProcessorPool(4, newNoopMetrics())
	defer p.Shutdown()

	if p.degree != 1 {
		t.Fatalf("expected pre-bind degree 1, got %d", p.degree)
	}
	p.Resize(4)
	if p.degree != 4 {
		t.Fatalf("expected degree 4 after growing, got %d", p.degree)
	}
	p.Resize(2)
	if p.degree != 4 {
		t.Fatalf("Resize must never shrink the pool, degree became %d", p.degree)
	}
}
