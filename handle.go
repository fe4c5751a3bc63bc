package objpool

import (
	"sync/atomic"

	"github.com/giantswarm/objpool/internal/slot"
)

// Factory constructs a new pooled value. It is passed per Acquire call so
// construction arguments can vary between acquisitions. When an acquisition
// reuses a cached value the factory is not run: the value already in the
// slot is canonical until the slot is cleared.
//
// A factory error propagates out of Acquire with pool state unchanged — no
// slot is consumed and, for the bounded pool, the admission permit is
// returned.
type Factory[T any] func() (T, error)

// releaser is the release path of a borrow. It breaks the dependency from
// handles back to the concrete pool type: bounded and unbounded handles
// reference their pool, volatile handles reference the generation block, so
// a volatile handle stays valid after its pool is gone.
type releaser[T any] interface {
	// releaseBorrow returns a borrowed value to its owner. Called exactly
	// once per acquisition, by Handle.Release or the final Shared release.
	// cell is nil for untracked borrows.
	releaseBorrow(cell *slot.Cell[T], val *T)
}

// Handle is the exclusive owner of one borrowed value. The zero value is an
// empty handle: Get returns nil, Valid reports false, and Release is a no-op.
//
// A Handle must not be copied; pass a *Handle to transfer ownership, or use
// Share to promote the borrow to reference-counted shared ownership.
// Handles are not safe for concurrent use.
type Handle[T any] struct {
	val  *T
	cell *slot.Cell[T]
	rel  releaser[T]
}

// Get returns the address of the borrowed value, or nil if the handle is
// empty. The address is stable: re-acquiring a cached value yields the same
// address as long as the value was not destroyed in between.
func (h *Handle[T]) Get() *T {
	if h == nil {
		return nil
	}
	return h.val
}

// Valid reports whether the handle currently owns a borrow.
func (h *Handle[T]) Valid() bool {
	return h != nil && h.rel != nil
}

// Release returns the borrow to its pool and empties the handle.
// Releasing an empty handle is a no-op, so calling Release more than once
// (e.g. via defer after an explicit release) is harmless.
func (h *Handle[T]) Release() {
	if h == nil || h.rel == nil {
		return
	}
	rel, cell, val := h.rel, h.cell, h.val
	*h = Handle[T]{}
	rel.releaseBorrow(cell, val)
}

// Share surrenders the handle's exclusive claim and returns a
// reference-counted shared alias for the same borrow. The handle is left
// empty; the borrow is released when the last shared reference is released.
// Sharing an empty handle returns an empty Shared.
func (h *Handle[T]) Share() Shared[T] {
	if h == nil || h.rel == nil {
		return Shared[T]{}
	}
	st := &sharedState[T]{val: h.val, cell: h.cell, rel: h.rel}
	st.refs.Store(1)
	*h = Handle[T]{}
	return Shared[T]{st: st}
}

// Shared is a reference-counted alias for a borrowed value, produced by
// Handle.Share. Copies must be made with Clone so the count stays exact;
// each Clone requires one matching Release. The zero value is an empty
// shared handle. All methods are safe for concurrent use.
type Shared[T any] struct {
	st *sharedState[T]
}

// sharedState carries the surrendered borrow and its reference count.
type sharedState[T any] struct {
	refs atomic.Int64
	val  *T
	cell *slot.Cell[T]
	rel  releaser[T]
}

// Get returns the address of the shared value, or nil if empty.
func (s Shared[T]) Get() *T {
	if s.st == nil {
		return nil
	}
	return s.st.val
}

// Valid reports whether the shared handle references a borrow.
func (s Shared[T]) Valid() bool {
	return s.st != nil
}

// Clone returns a new reference to the same borrow, incrementing the count.
// Clone must not be called after the final Release.
func (s Shared[T]) Clone() Shared[T] {
	if s.st != nil {
		s.st.refs.Add(1)
	}
	return s
}

// Release drops one reference. The final Release runs the borrow's release
// path, returning the value to its pool (or destroying it, for untracked and
// orphaned borrows). Releasing an empty Shared is a no-op.
//
// Panics if called more times than references exist: a miscounted release
// would run the release path twice and corrupt pool state, so it is treated
// as a programmer error. (An exclusive Handle differs: it empties itself on
// Release, so releasing it again is a no-op.)
func (s Shared[T]) Release() {
	if s.st == nil {
		return
	}
	switch n := s.st.refs.Add(-1); {
	case n == 0:
		s.st.rel.releaseBorrow(s.st.cell, s.st.val)
	case n < 0:
		panic("objpool: release of shared handle past zero")
	}
}
