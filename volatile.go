package objpool

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/giantswarm/objpool/internal/slot"
)

// Compile-time check that the generation block provides the handle release path.
var _ releaser[struct{}] = (*generation[struct{}])(nil)

// Volatile is an unbounded pool whose cached set can be invalidated as a
// whole. The pool and every handle it hands out share a generation block;
// Clear(true) swaps in a fresh block, orphaning outstanding borrows so they
// are destroyed on release instead of re-entering the cache.
//
// Because handles reference the generation block rather than the pool, a
// handle stays fully usable after the pool itself is gone.
//
// Volatile is a small value type: assigning it copies a view of the same
// shared state, so after pool2 := pool1 both variables report the same
// GenerationSize and observe each other's Clear calls. Use NewVolatile to
// create one; the zero value is not usable.
//
// It is safe for concurrent use by multiple goroutines.
type Volatile[T any] struct {
	state *volatileState[T]
}

// volatileState is the shared state behind every copy of a Volatile value.
type volatileState[T any] struct {
	// gen is the current generation block, swapped atomically by
	// Clear(true).
	gen atomic.Pointer[generation[T]]

	// size is the cache capacity N. Read-only after construction.
	size int

	// destroy is the optional destroyer hook, threaded into every
	// generation so orphan releases keep working after a swap.
	destroy func(*T)
}

// generation is one cohort of values: the cache array plus a strong
// reference count. The count holds one reference for the pool itself, one
// per outstanding borrow, and one per cached-idle value; releasing a tracked
// borrow into the cache transfers its reference rather than dropping it.
type generation[T any] struct {
	arr     *slot.Array[T]
	destroy func(*T)

	// refs is the strong reference count described above. It reaches 0
	// only after the generation is detached and the last orphan releases.
	refs atomic.Int64

	// mu orders releases against detachment: a release that observes
	// detached == false under mu is guaranteed its push lands before the
	// detaching Clear sweeps the cache, so the value is still destroyed.
	mu       sync.Mutex
	detached bool
}

func newGeneration[T any](size int, destroy func(*T)) *generation[T] {
	g := &generation[T]{arr: slot.New[T](size), destroy: destroy}
	g.refs.Store(1) // the pool's own reference
	return g
}

// NewVolatile creates a Volatile pool with cache capacity size.
// Panics if size is negative.
func NewVolatile[T any](size int, opts ...Option[T]) Volatile[T] {
	if size < 0 {
		panic(fmt.Sprintf("objpool: NewVolatile size must not be negative, got %d", size))
	}
	cfg := applyOptions(opts)
	st := &volatileState[T]{size: size, destroy: cfg.destroy}
	st.gen.Store(newGeneration[T](size, cfg.destroy))
	return Volatile[T]{state: st}
}

// Size returns the cache capacity.
func (p Volatile[T]) Size() int {
	return p.state.size
}

// Cached returns the number of idle values in the current generation's cache.
func (p Volatile[T]) Cached() int {
	return p.state.gen.Load().arr.CachedCount()
}

// GenerationSize returns the number of values associated with the current
// generation: every outstanding borrow counts once and every cached-idle
// value counts once. An empty pool reports 0; after Clear(true) the count
// restarts at 0 regardless of outstanding (now orphaned) handles.
func (p Volatile[T]) GenerationSize() int {
	return int(p.state.gen.Load().refs.Load() - 1)
}

// Acquire returns a handle without blocking, following the unbounded
// admission policy: free slot → tracked borrow (cached value reused without
// the factory), cache full → untracked borrow destroyed on release. The
// handle holds a strong reference to the current generation, so the value
// outlives the pool.
//
// A factory error is propagated with the pool unchanged.
func (p Volatile[T]) Acquire(factory Factory[T]) (*Handle[T], error) {
	if factory == nil {
		panic("objpool: Acquire factory must not be nil")
	}
	g := p.state.gen.Load()

	if cell, ok := g.arr.PopFree(); ok {
		if val, occupied := g.arr.Value(cell); occupied {
			// The cached value's reference transfers to the handle.
			return &Handle[T]{val: val, cell: cell, rel: g}, nil
		}
		v, err := factory()
		if err != nil {
			g.arr.PushFree(cell)
			return nil, fmt.Errorf("creating instance: %w", err)
		}
		g.refs.Add(1)
		return &Handle[T]{val: g.arr.Install(cell, v), cell: cell, rel: g}, nil
	}

	v, err := factory()
	if err != nil {
		return nil, fmt.Errorf("creating instance: %w", err)
	}
	g.refs.Add(1)
	val := new(T)
	*val = v
	return &Handle[T]{val: val, rel: g}, nil
}

// Clear invalidates cached values. With detach false, every idle cached
// value is destroyed and its slot emptied; outstanding borrows still belong
// to the current generation and re-enter the cache on release.
//
// With detach true, the pool additionally swaps in a fresh generation:
// outstanding borrows are orphaned and destroy their value on release
// instead of returning it, and GenerationSize restarts at 0. New
// acquisitions construct against the fresh generation.
func (p Volatile[T]) Clear(detach bool) {
	if !detach {
		g := p.state.gen.Load()
		g.mu.Lock()
		n := g.arr.ClearIdle(g.destroy)
		g.mu.Unlock()
		g.refs.Add(-int64(n))
		if n > 0 {
			Logger().Debug("cleared cached instances", "count", n)
		}
		return
	}

	old := p.state.gen.Swap(newGeneration[T](p.state.size, p.state.destroy))
	old.mu.Lock()
	old.detached = true
	n := old.arr.ClearIdle(old.destroy)
	old.mu.Unlock()
	// Drop the cached references plus the pool's own reference; remaining
	// references belong to orphaned borrows and die as they release.
	old.refs.Add(-int64(n + 1))
	Logger().Debug("detached generation", "destroyed", n)
}

// releaseBorrow returns a tracked borrow to its generation's cache, unless
// the generation has been detached — then the borrow is an orphan and its
// value is destroyed. Untracked borrows are always destroyed.
func (g *generation[T]) releaseBorrow(cell *slot.Cell[T], val *T) {
	if cell != nil {
		g.mu.Lock()
		if !g.detached {
			// The handle's reference becomes the cached-idle reference.
			g.arr.PushFree(cell)
			g.mu.Unlock()
			return
		}
		g.mu.Unlock()
		Logger().Debug("destroyed orphaned instance on release")
	} else {
		Logger().Debug("destroyed untracked instance on release")
	}
	if g.destroy != nil {
		g.destroy(val)
	}
	g.refs.Add(-1)
}
