package objpool

import (
	"sync/atomic"
	"testing"
)

// TestHandleZeroValueIsEmpty verifies the empty-handle contract: nil Get,
// false Valid, no-op Release.
func TestHandleZeroValueIsEmpty(t *testing.T) {
	t.Parallel()

	var h Handle[widget]
	if h.Get() != nil {
		t.Error("Get() on empty handle should return nil")
	}
	if h.Valid() {
		t.Error("Valid() on empty handle should be false")
	}
	h.Release() // must not panic
	h.Release()
}

// TestHandleReleaseEmptiesHandle verifies that Release leaves the handle
// empty and that a second Release is a no-op (the slot is not double-freed).
func TestHandleReleaseEmptiesHandle(t *testing.T) {
	t.Parallel()

	pool := NewUnbounded[widget](1)
	h, err := pool.Acquire(makeWidget(1, nil))
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	h.Release()
	if h.Valid() {
		t.Error("handle still valid after Release")
	}
	if h.Get() != nil {
		t.Error("Get() after Release should return nil")
	}
	if got := pool.Cached(); got != 1 {
		t.Fatalf("Cached() = %d, want 1", got)
	}

	// A second Release must not push the slot onto the free stack again.
	h.Release()
	if got := pool.Cached(); got != 1 {
		t.Errorf("Cached() after double Release = %d, want 1", got)
	}
}

// TestHandleShareLeavesSourceEmpty verifies that Share transfers the borrow
// out of the exclusive handle while preserving pointer identity.
func TestHandleShareLeavesSourceEmpty(t *testing.T) {
	t.Parallel()

	pool := NewUnbounded[widget](1)
	h, err := pool.Acquire(makeWidget(5, nil))
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	want := h.Get()

	sh := h.Share()
	defer sh.Release()

	if h.Valid() {
		t.Error("exclusive handle still valid after Share")
	}
	if h.Get() != nil {
		t.Error("Get() on shared-out handle should return nil")
	}
	if got := sh.Get(); got != want {
		t.Errorf("shared handle value address = %p, want %p", got, want)
	}
	if sh.Get().id != 5 {
		t.Errorf("shared value id = %d, want 5", sh.Get().id)
	}
}

// TestHandleShareEmptyHandle verifies that sharing an empty handle yields an
// empty shared handle.
func TestHandleShareEmptyHandle(t *testing.T) {
	t.Parallel()

	var h Handle[widget]
	sh := h.Share()
	if sh.Valid() {
		t.Error("Share() of empty handle should produce an empty Shared")
	}
	if sh.Get() != nil {
		t.Error("Get() on empty Shared should return nil")
	}
	sh.Release() // no-op
}

// TestSharedReleaseDeferredUntilLastReference verifies that the borrow's
// release path runs only when the final shared reference is dropped.
func TestSharedReleaseDeferredUntilLastReference(t *testing.T) {
	t.Parallel()

	pool := NewUnbounded[widget](1)
	h, err := pool.Acquire(makeWidget(1, nil))
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	sh := h.Share()
	cp := sh.Clone()

	sh.Release()
	if got := pool.Cached(); got != 0 {
		t.Fatalf("Cached() = %d after first Release, want 0 (a clone is still live)", got)
	}

	cp.Release()
	if got := pool.Cached(); got != 1 {
		t.Errorf("Cached() = %d after final Release, want 1", got)
	}
}

// TestSharedOverReleasePanics verifies the over-release panic contract.
func TestSharedOverReleasePanics(t *testing.T) {
	t.Parallel()

	pool := NewUnbounded[widget](1)
	h, err := pool.Acquire(makeWidget(1, nil))
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	sh := h.Share()
	sh.Release()

	requirePanicContains(t, func() {
		sh.Release()
	}, "past zero")
}

// TestSharedReleaseRunsUntrackedDestruction verifies that the final shared
// release of an untracked borrow destroys the value instead of caching it.
func TestSharedReleaseRunsUntrackedDestruction(t *testing.T) {
	t.Parallel()

	var destroyed atomic.Int32
	pool := NewUnbounded(0, WithDestroyer(func(*widget) { destroyed.Add(1) }))

	h, err := pool.Acquire(makeWidget(1, nil))
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	sh := h.Share()
	cp := sh.Clone()
	sh.Release()
	if destroyed.Load() != 0 {
		t.Fatal("value destroyed while a clone was still live")
	}
	cp.Release()
	if destroyed.Load() != 1 {
		t.Errorf("destroyed = %d after final release, want 1", destroyed.Load())
	}
}
