// Package paged provides fixed-size arrays of atomically updatable cells,
// indexed by dense node id and split into pages of PageSize cells.
//
// Paging keeps very large node counts from requiring one contiguous
// allocation and lets memory be dropped page by page when a result is no
// longer referenced:
//
//	page   = id >> PageShift
//	offset = id & PageMask
//
// All cells are initialized to the array's default value before the
// constructor returns, so concurrent readers never observe an
// uninitialized cell. Updates are atomic; Add is the commutative combine
// that makes parallel accumulation independent of scheduling order.
package paged
