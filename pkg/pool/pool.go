// Package pool provides type-safe object pooling for colconv.
//
// The pipeline reads rows in batches and hands every batch to the
// destination before reading the next, so rows and encode buffers are
// recycled through pools instead of being allocated per row.
//
//	rows := pool.NewRowPool(header)
//	row := rows.Get()
//	defer rows.Put(row)
package pool

import (
	"sync"
	"sync/atomic"
)

// Stats is a snapshot of pool usage.
type Stats struct {
	// Allocated counts objects created because the pool was empty.
	Allocated int64
	// InUse counts objects taken and not yet returned.
	InUse int64
	// Hits counts Get calls served by a recycled object.
	Hits int64
}

// Pool is a typed sync.Pool with an optional reset hook and usage
// counters. It is safe for concurrent use.
type Pool[T any] struct {
	pool      sync.Pool
	reset     func(T)
	allocated atomic.Int64
	inUse     atomic.Int64
	gets      atomic.Int64
}

// New creates a pool. newFn allocates when the pool is empty; reset, when
// not nil, clears an object before it is pooled again.
//
//	buffers := pool.New(
//	    func() *bytes.Buffer { return new(bytes.Buffer) },
//	    func(b *bytes.Buffer) { b.Reset() },
//	)
func New[T any](newFn func() T, reset func(T)) *Pool[T] {
	p := &Pool[T]{reset: reset}
	p.pool.New = func() any {
		p.allocated.Add(1)
		return newFn()
	}
	return p
}

// Get takes an object from the pool.
func (p *Pool[T]) Get() T {
	p.gets.Add(1)
	p.inUse.Add(1)
	return p.pool.Get().(T)
}

// Put resets obj and returns it to the pool.
func (p *Pool[T]) Put(obj T) {
	if p.reset != nil {
		p.reset(obj)
	}
	p.inUse.Add(-1)
	p.pool.Put(obj)
}

// Stats returns the current counters.
func (p *Pool[T]) Stats() Stats {
	allocated := p.allocated.Load()
	return Stats{
		Allocated: allocated,
		InUse:     p.inUse.Load(),
		Hits:      max(p.gets.Load()-allocated, 0),
	}
}
