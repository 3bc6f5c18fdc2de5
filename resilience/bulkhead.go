package resilience

import (
	"context"
	"sync"
)

// BulkheadConfig configures the bulkhead.
type BulkheadConfig struct {
	// MaxConcurrent is the maximum number of in-flight calls.
	// Default: 10
	MaxConcurrent int
}

// Bulkhead caps the number of concurrent calls to an upstream. Unlike the
// rate limiter it bounds concurrency, not rate: a slow upstream cannot pile
// up unbounded in-flight requests behind it.
type Bulkhead struct {
	config BulkheadConfig
	sem    chan struct{}

	mu        sync.Mutex
	closed    bool
	maxActive int
}

// NewBulkhead creates a new bulkhead.
func NewBulkhead(config BulkheadConfig) *Bulkhead {
	// Apply defaults
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 10
	}

	return &Bulkhead{
		config: config,
		sem:    make(chan struct{}, config.MaxConcurrent),
	}
}

// Acquire blocks until a slot is free or ctx is cancelled.
func (b *Bulkhead) Acquire(ctx context.Context) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrBulkheadClosed
	}
	b.mu.Unlock()

	select {
	case b.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	b.mu.Lock()
	if active := len(b.sem); active > b.maxActive {
		b.maxActive = active
	}
	b.mu.Unlock()
	return nil
}

// Release frees a slot acquired with Acquire.
func (b *Bulkhead) Release() {
	select {
	case <-b.sem:
	default:
		// Release without a matching Acquire; nothing to free.
	}
}

// Execute runs op while holding a bulkhead slot.
func (b *Bulkhead) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := b.Acquire(ctx); err != nil {
		return err
	}
	defer b.Release()

	return op(ctx)
}

// Close rejects all future acquisitions. In-flight calls finish normally.
func (b *Bulkhead) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
}

// Metrics returns current bulkhead occupancy.
func (b *Bulkhead) Metrics() BulkheadMetrics {
	b.mu.Lock()
	defer b.mu.Unlock()

	active := len(b.sem)
	return BulkheadMetrics{
		Active:        active,
		MaxActive:     b.maxActive,
		Available:     b.config.MaxConcurrent - active,
		MaxConcurrent: b.config.MaxConcurrent,
	}
}

// BulkheadMetrics contains bulkhead statistics.
type BulkheadMetrics struct {
	Active        int
	MaxActive     int
	Available     int
	MaxConcurrent int
}
