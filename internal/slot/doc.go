// Package slot provides the fixed-size storage core shared by the pool types.
//
// An Array owns N heap-allocated cells and a LIFO free stack. Values are
// boxed into cells once and the box is reused across acquisitions, giving
// cached values a stable address — the property the pools' reuse guarantees
// are built on.
package slot
