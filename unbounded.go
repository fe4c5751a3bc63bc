package objpool

import (
	"fmt"

	"github.com/giantswarm/objpool/internal/slot"
)

// Compile-time check that Unbounded provides the handle release path.
var _ releaser[struct{}] = (*Unbounded[struct{}])(nil)

// Unbounded is a pool that caches up to N idle values but never blocks:
// acquisitions beyond N construct untracked values that are destroyed on
// release instead of entering the cache. The cache keeps a slot's first
// constructed value and hands it back without re-running the factory.
//
// It is safe for concurrent use by multiple goroutines.
type Unbounded[T any] struct {
	// arr is the cache storage; a cell not on the free stack is handed out.
	arr *slot.Array[T]

	// destroy is the optional destroyer hook, run on untracked releases
	// and on values removed by Clear.
	destroy func(*T)
}

// NewUnbounded creates an Unbounded pool with cache capacity size.
// Panics if size is negative. A size of 0 is permitted: every acquisition
// is then untracked.
func NewUnbounded[T any](size int, opts ...Option[T]) *Unbounded[T] {
	if size < 0 {
		panic(fmt.Sprintf("objpool: NewUnbounded size must not be negative, got %d", size))
	}
	cfg := applyOptions(opts)
	return &Unbounded[T]{
		arr:     slot.New[T](size),
		destroy: cfg.destroy,
	}
}

// Size returns the cache capacity.
func (p *Unbounded[T]) Size() int {
	return p.arr.Len()
}

// Cached returns the number of idle values currently in the cache.
func (p *Unbounded[T]) Cached() int {
	return p.arr.CachedCount()
}

// Acquire returns a handle without blocking. If a cache slot is free, the
// handle is tracked: its release returns the value to that slot, and a
// previously cached value is reused without running the factory. With no
// free slot, the factory constructs an untracked value that is destroyed on
// release and never enters the cache.
//
// A factory error is propagated with the pool unchanged.
func (p *Unbounded[T]) Acquire(factory Factory[T]) (*Handle[T], error) {
	if factory == nil {
		panic("objpool: Acquire factory must not be nil")
	}

	if cell, ok := p.arr.PopFree(); ok {
		if val, occupied := p.arr.Value(cell); occupied {
			return &Handle[T]{val: val, cell: cell, rel: p}, nil
		}
		v, err := factory()
		if err != nil {
			p.arr.PushFree(cell)
			return nil, fmt.Errorf("creating instance: %w", err)
		}
		return &Handle[T]{val: p.arr.Install(cell, v), cell: cell, rel: p}, nil
	}

	// Cache full — construct an untracked value. It lives in its own box,
	// so its address can never collide with a cached value's.
	v, err := factory()
	if err != nil {
		return nil, fmt.Errorf("creating instance: %w", err)
	}
	val := new(T)
	*val = v
	return &Handle[T]{val: val, rel: p}, nil
}

// Clear destroys every idle cached value, leaving the slots empty.
// Outstanding handles are unaffected; tracked borrows re-enter the cache on
// release per the normal rules.
func (p *Unbounded[T]) Clear() {
	if n := p.arr.ClearIdle(p.destroy); n > 0 {
		Logger().Debug("cleared cached instances", "count", n)
	}
}

// releaseBorrow returns a tracked borrow to its slot; untracked values are
// destroyed and never flow back into the cache, even if a slot is free.
func (p *Unbounded[T]) releaseBorrow(cell *slot.Cell[T], val *T) {
	if cell == nil {
		if p.destroy != nil {
			p.destroy(val)
		}
		Logger().Debug("destroyed untracked instance on release")
		return
	}
	p.arr.PushFree(cell)
}
