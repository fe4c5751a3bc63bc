// Package sentinel defines the error type behind objpool's public sentinel
// errors, such as objpool.ErrPoolClosed.
//
// Pool operations have a single fallible path of their own (acquiring from a
// closed pool); everything else propagates factory errors. The few sentinels
// the package exposes should therefore be impossible to tamper with: Error is
// a string type, so a sentinel can be declared as const and never reassigned,
// while errors.Is keeps matching it through wrapped chains because comparable
// types fall back to == comparison.
package sentinel

// Error is a constant-declarable error.
//
// Declare sentinels as const:
//
//	const ErrPoolClosed = sentinel.Error("pool is closed")
type Error string

// Error returns the message. It makes Error satisfy the error interface,
// checked at compile time below.
func (e Error) Error() string {
	return string(e)
}

var _ error = Error("")
