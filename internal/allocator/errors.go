package allocator

import "errors"

// Sentinel errors for the allocator's failure kinds, for use with
// errors.Is. Of these, only ErrRegionExhausted is returned today
// (wrapped, by New); the others are declared but no function in this
// package returns them. The hot allocation path (Alloc/Free/Realloc)
// never returns an error; failure there is communicated by a nil
// unsafe.Pointer, per the documented contract.
var (
	// ErrInvalidSize names a region or chunk size that is zero, not a
	// multiple of the allocator's word size, or would overflow the
	// 32-bit offset space. No function in this package returns it:
	// New raises a small region size to DefaultMinRegionSize instead.
	ErrInvalidSize = errors.New("segheap: invalid size")

	// ErrRegionTooLarge names a region size that would not fit in the
	// 32-bit offset space the block codec uses to link free lists and
	// compute neighbors. No function in this package returns it.
	ErrRegionTooLarge = errors.New("segheap: region exceeds 32-bit offset space")

	// ErrRegionExhausted is wrapped into the error New returns when the
	// RegionProvider cannot grow the region for the sentinel layout or
	// the initial chunk. RegionProvider.Extend itself reports failure
	// as ok == false, not as an error.
	ErrRegionExhausted = errors.New("segheap: region provider exhausted")

	// ErrCorruptHeap names a heap that violates I1-I9. Check reports
	// violations in a CheckReport and does not return this error.
	ErrCorruptHeap = errors.New("segheap: heap invariant violated")
)
