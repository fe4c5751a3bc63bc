package objpool

import (
	"context"
	"fmt"
	"sync"

	"github.com/giantswarm/objpool/internal/slot"
	"golang.org/x/sync/semaphore"
)

// Compile-time check that Bounded provides the handle release path.
var _ releaser[struct{}] = (*Bounded[struct{}])(nil)

// Bounded is a pool that admits at most N concurrent borrowers. Acquire
// blocks when all N slots are handed out and unblocks when one is released,
// the context is canceled, or the pool is closed.
//
// A slot keeps the first value constructed into it and hands it back on
// every later acquisition without re-running the factory, so across any
// workload at most N values are ever constructed (until Close destroys
// them). Callers that need argument-sensitive construction should use a
// fresh pool.
//
// It is safe for concurrent use by multiple goroutines.
type Bounded[T any] struct {
	// arr is the slot storage; a cell not on the free stack is handed out.
	arr *slot.Array[T]

	// sem is the admission semaphore over size permits. Acquire holds one
	// permit per borrow; exclusive Visit holds all of them, which is
	// exactly "every slot is idle".
	sem *semaphore.Weighted

	// size is the capacity N. Read-only after construction.
	size int

	// destroy is the optional destroyer hook, run on values discarded by
	// Close and by releases that land after Close.
	destroy func(*T)

	// closeCtx is canceled by Close, unblocking waiters on the semaphore.
	closeCtx context.Context
	closeFn  context.CancelFunc

	// closeOnce ensures Close side effects run exactly once.
	closeOnce sync.Once
}

// NewBounded creates a Bounded pool with capacity size.
// Panics if size is negative. A size of 0 is permitted but every Acquire
// then waits until the context is canceled or the pool is closed.
func NewBounded[T any](size int, opts ...Option[T]) *Bounded[T] {
	if size < 0 {
		panic(fmt.Sprintf("objpool: NewBounded size must not be negative, got %d", size))
	}
	cfg := applyOptions(opts)
	closeCtx, closeFn := context.WithCancel(context.Background())
	return &Bounded[T]{
		arr:      slot.New[T](size),
		sem:      semaphore.NewWeighted(int64(size)),
		size:     size,
		destroy:  cfg.destroy,
		closeCtx: closeCtx,
		closeFn:  closeFn,
	}
}

// Size returns the pool's capacity.
func (p *Bounded[T]) Size() int {
	return p.size
}

// Acquire returns a handle for a free slot, blocking while all slots are in
// use. If the slot already holds a value from a prior acquisition, that
// value is returned and the factory is not run; otherwise the factory
// constructs the slot's value.
//
// Returns ErrPoolClosed if the pool has been closed. A factory error is
// propagated with the pool unchanged: the slot stays empty and the
// admission permit is returned.
func (p *Bounded[T]) Acquire(ctx context.Context, factory Factory[T]) (*Handle[T], error) {
	if factory == nil {
		panic("objpool: Acquire factory must not be nil")
	}
	if err := p.awaitPermits(ctx, 1); err != nil {
		return nil, err
	}

	cell, ok := p.arr.PopFree()
	if !ok {
		// A permit guarantees a free cell; reaching here means the
		// permit/free-stack bookkeeping diverged.
		p.sem.Release(1)
		panic("objpool: no free slot despite admission permit")
	}

	if val, occupied := p.arr.Value(cell); occupied {
		return &Handle[T]{val: val, cell: cell, rel: p}, nil
	}

	// Empty slot — construct outside the storage lock. The cell is
	// exclusively ours until pushed back, so no other goroutine can
	// observe the construction in progress.
	v, err := factory()
	if err != nil {
		p.arr.PushFree(cell)
		p.sem.Release(1)
		return nil, fmt.Errorf("creating instance: %w", err)
	}
	return &Handle[T]{val: p.arr.Install(cell, v), cell: cell, rel: p}, nil
}

// Visit calls visitor with every value currently in the pool, stopping early
// if visitor returns false. The visitor must not re-enter pool operations on
// the same pool.
//
// With shared true, Visit snapshots the current values and returns promptly
// even while handles are outstanding; borrowed values are included and may
// be mutated concurrently by their holders.
//
// With shared false, Visit first waits until every slot is idle (holding all
// admission permits for the duration, so no Acquire can proceed), then
// visits the cached values. It blocks indefinitely while any handle is
// outstanding, until the context is canceled or the pool is closed.
func (p *Bounded[T]) Visit(ctx context.Context, visitor func(*T) bool, shared bool) error {
	if visitor == nil {
		panic("objpool: Visit visitor must not be nil")
	}
	if shared {
		p.arr.Range(visitor)
		return nil
	}

	if err := p.awaitPermits(ctx, int64(p.size)); err != nil {
		return err
	}
	defer p.sem.Release(int64(p.size))
	p.arr.Range(visitor)
	return nil
}

// Close marks the pool as closed and destroys every cached value. Blocked
// Acquire calls unblock with ErrPoolClosed, subsequent Acquire calls fail
// immediately, and outstanding handles are released into destruction instead
// of the cache. Safe to call multiple times (idempotent).
func (p *Bounded[T]) Close() {
	p.closeOnce.Do(func() {
		p.closeFn()
		if n := p.arr.ClearIdle(p.destroy); n > 0 {
			Logger().Debug("destroyed cached instances on close", "count", n)
		}
	})
}

// awaitPermits blocks until n admission permits are held, the caller's
// context is done, or the pool is closed. On success the caller owns the
// permits; on error none are held.
func (p *Bounded[T]) awaitPermits(ctx context.Context, n int64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context done while waiting for slot: %w", err)
	}
	if p.closeCtx.Err() != nil {
		return ErrPoolClosed
	}

	// The semaphore waits on a single context, so fold "pool closed" into
	// the wait context: Close cancels closeCtx, which cancels waitCtx.
	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(p.closeCtx, cancel)
	defer stop()

	if err := p.sem.Acquire(waitCtx, n); err != nil {
		if p.closeCtx.Err() != nil {
			return ErrPoolClosed
		}
		return fmt.Errorf("context done while waiting for slot: %w", err)
	}

	// Close may have raced the wait and won't drain permits afterwards;
	// re-check so a late winner doesn't borrow from a closed pool.
	if p.closeCtx.Err() != nil {
		p.sem.Release(n)
		return ErrPoolClosed
	}
	return nil
}

// releaseBorrow marks the slot idle and wakes one waiter. After Close the
// value is destroyed instead of being returned to the cache.
func (p *Bounded[T]) releaseBorrow(cell *slot.Cell[T], _ *T) {
	if p.closeCtx.Err() != nil {
		p.arr.Discard(cell, p.destroy)
		p.sem.Release(1)
		Logger().Debug("discarded instance released after close")
		return
	}
	p.arr.PushFree(cell)
	p.sem.Release(1)
}
