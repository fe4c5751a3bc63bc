package slot

import (
	"fmt"
	"sync"
)

// Cell is a single storage location inside an Array. A cell is empty until a
// value is installed into it; the value is heap-boxed once and the box is
// reused for as long as the cell stays occupied, so cached values keep a
// stable address across release and re-acquisition.
//
// Cell fields are guarded by the owning Array's mutex; callers interact with
// cells only through Array methods.
type Cell[T any] struct {
	val *T
}

// Array is a fixed-size collection of N cells with a LIFO free stack.
// The cell count never grows or shrinks after construction, and cells are
// individually heap-allocated, so cell and value addresses are stable for
// the lifetime of the Array.
//
// PopFree and PushFree are linearizable: all mutation goes through a single
// mutex. A cell popped from the free stack is exclusively owned by the caller
// until pushed back.
//
// It is safe for concurrent use by multiple goroutines.
type Array[T any] struct {
	// mu protects free and every cell's val field.
	mu sync.Mutex

	// cells holds every cell, in construction order. Read-only after New.
	cells []*Cell[T]

	// free is a LIFO stack of cells available for acquisition.
	// PopFree pops from the end; PushFree pushes to the end.
	free []*Cell[T]
}

// New creates an Array of n empty cells, all of them free.
// Panics if n is negative.
func New[T any](n int) *Array[T] {
	if n < 0 {
		panic(fmt.Sprintf("objpool: slot array size must not be negative, got %d", n))
	}
	a := &Array[T]{
		cells: make([]*Cell[T], n),
		free:  make([]*Cell[T], 0, n),
	}
	for i := range a.cells {
		c := &Cell[T]{}
		a.cells[i] = c
		a.free = append(a.free, c)
	}
	return a
}

// Len returns the number of cells in the Array.
func (a *Array[T]) Len() int {
	return len(a.cells)
}

// PopFree removes and returns the most recently freed cell.
// Returns false when no cell is free.
func (a *Array[T]) PopFree() (*Cell[T], bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := len(a.free)
	if n == 0 {
		return nil, false
	}
	c := a.free[n-1]
	a.free = a.free[:n-1]
	return c, true
}

// PushFree returns a cell to the free stack. The caller must own the cell
// (obtained from PopFree and not yet pushed back).
func (a *Array[T]) PushFree(c *Cell[T]) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.free = append(a.free, c)
}

// FreeCount returns the number of free cells, occupied or not.
func (a *Array[T]) FreeCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.free)
}

// CachedCount returns the number of free cells currently holding a value.
func (a *Array[T]) CachedCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, c := range a.free {
		if c.val != nil {
			n++
		}
	}
	return n
}

// Value returns the cell's value address and whether the cell is occupied.
func (a *Array[T]) Value(c *Cell[T]) (*T, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return c.val, c.val != nil
}

// Install boxes v into an empty cell and returns the value's address.
// The box is allocated once per occupancy: the address stays stable until
// the cell is emptied by ClearIdle or Discard.
// Panics if the cell is already occupied; occupied cells are reused as-is,
// never overwritten.
func (a *Array[T]) Install(c *Cell[T], v T) *T {
	a.mu.Lock()
	defer a.mu.Unlock()
	if c.val != nil {
		panic("objpool: install into occupied slot")
	}
	box := new(T)
	*box = v
	c.val = box
	return box
}

// Discard empties the cell and returns it to the free stack. If the cell held
// a value and destroy is non-nil, destroy is called with the value after the
// lock is dropped. The destroy callback must not re-enter the Array.
func (a *Array[T]) Discard(c *Cell[T], destroy func(*T)) {
	a.mu.Lock()
	val := c.val
	c.val = nil
	a.free = append(a.free, c)
	a.mu.Unlock()

	if val != nil && destroy != nil {
		destroy(val)
	}
}

// ClearIdle empties every free cell and returns the number of values removed.
// Cells currently popped (in use by a borrower) are untouched. If destroy is
// non-nil it is called with each removed value after the lock is dropped.
// The destroy callback must not re-enter the Array.
func (a *Array[T]) ClearIdle(destroy func(*T)) int {
	a.mu.Lock()
	var removed []*T
	for _, c := range a.free {
		if c.val != nil {
			removed = append(removed, c.val)
			c.val = nil
		}
	}
	a.mu.Unlock()

	if destroy != nil {
		for _, val := range removed {
			destroy(val)
		}
	}
	return len(removed)
}

// Range calls visit with the address of every occupied cell's value, in cell
// order, until visit returns false. The value set is snapshotted under the
// lock and visit runs outside it, so visit may be slow without blocking the
// Array — but it must not assume exclusive access to the values.
func (a *Array[T]) Range(visit func(*T) bool) {
	a.mu.Lock()
	vals := make([]*T, 0, len(a.cells))
	for _, c := range a.cells {
		if c.val != nil {
			vals = append(vals, c.val)
		}
	}
	a.mu.Unlock()

	for _, val := range vals {
		if !visit(val) {
			return
		}
	}
}
