// Package objpool provides concurrent object pools for reusing
// expensive-to-construct values: parser instances, buffers, compiled state.
// Construction cost is amortized across many short-lived uses while the set
// of live values stays bounded or generation-tracked.
//
// Three pool variants share one model — acquire, use, release:
//
//   - [Bounded]: admits at most N concurrent borrowers; Acquire blocks until
//     a slot frees up. Supports visiting the pooled values in shared or
//     exclusive mode, and Close to tear the pool down.
//   - [Unbounded]: caches up to N idle values; acquisitions beyond N create
//     untracked values that are destroyed — not cached — on release.
//   - [Volatile]: an unbounded pool whose cached set can be invalidated
//     wholesale with Clear(true). Pool and handles share a generation block,
//     so handles stay valid even after the pool is gone, and GenerationSize
//     reports how many values belong to the live set.
//
// Acquire returns a [Handle] that owns the borrow; releasing the handle
// returns the value to the pool (or destroys it, for untracked borrows).
// A handle can be promoted to reference-counted shared ownership with
// [Handle.Share].
//
// Values are stored at stable addresses: releasing a cached value and
// re-acquiring it yields the same pointer, and the factory is not re-run —
// the first value constructed into a slot is canonical until the slot is
// cleared.
//
// # Basic Usage
//
//	pool := objpool.NewBounded[parser](4)
//	defer pool.Close()
//
//	h, err := pool.Acquire(ctx, func() (parser, error) {
//	    return newParser(grammar)
//	})
//	if err != nil {
//	    return err
//	}
//	defer h.Release()
//
//	h.Get().Parse(input)
package objpool
