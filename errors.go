package objpool

import "github.com/giantswarm/objpool/internal/sentinel"

// ErrPoolClosed is returned by Bounded.Acquire and by exclusive Bounded.Visit
// (shared false) after Close has been called, including by calls that were
// blocked when Close ran. A shared Visit does not check for Close.
//
// It uses the sentinel.Error const pattern instead of an errors.New var:
// sentinel.Error is a string type implementing error, so the sentinel can be
// declared as const — immutable at compile time and still compatible with
// errors.Is through Go's default == comparison on comparable types.
const ErrPoolClosed = sentinel.Error("pool is closed")
