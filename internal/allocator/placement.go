package allocator

import "unsafe"

// findFit implements the first-fit-within-segregated-lists search of
// section 4.6.1: starting at the smallest size class that could hold
// asize, scan each class's list in order and return the first block
// big enough.
func (a *Allocator) findFit(buf []byte, asize uint32) (uint32, bool) {
	start := classForList(asize, a.listCount)
	for class := start; class < a.listCount; class++ {
		for b := a.listHead(buf, class); b != 0; b = succOffset(buf, b) {
			if blockSize(buf, b) >= asize {
				return b, true
			}
		}
	}
	return 0, false
}

// place takes a free block of size c >= asize, removes it from its
// free list, and either returns it whole (if the leftover is too
// small to split) or splits it, placing the allocation on the left or
// right side per the BigSize heuristic of section 4.6.3. It returns
// the payload offset of the allocated piece.
func (a *Allocator) place(buf []byte, freeBlock uint32, asize uint32) uint32 {
	c := blockSize(buf, freeBlock)
	r := c - asize

	if r < MinBlockSize {
		a.freelistRemove(buf, freeBlock)
		setHeader(buf, freeBlock, c, true)
		setFooter(buf, freeBlock, c, true)
		return freeBlock
	}

	a.freelistRemove(buf, freeBlock)

	if asize > a.cfg.BigSize {
		// Large allocations are long-lived; push them to the right
		// (higher address) so the small free remainder stays near
		// other small-class traffic at the bottom of the heap.
		setHeader(buf, freeBlock, r, false)
		setFooter(buf, freeBlock, r, false)
		right := freeBlock + r
		setHeader(buf, right, asize, true)
		setFooter(buf, right, asize, true)
		a.freelistInsert(buf, freeBlock)
		return right
	}

	setHeader(buf, freeBlock, asize, true)
	setFooter(buf, freeBlock, asize, true)
	right := freeBlock + asize
	setHeader(buf, right, r, false)
	setFooter(buf, right, r, false)
	a.freelistInsert(buf, right)
	return freeBlock
}

// shrinkInPlace implements Realloc case 4 (section 4.6.4): if the
// freed tail is big enough to be its own block, split it off and
// coalesce it; otherwise keep the block at its old size.
func (a *Allocator) shrinkInPlace(buf []byte, payload, old, newSize uint32) uint32 {
	if old-newSize < MinBlockSize {
		return payload
	}

	setHeader(buf, payload, newSize, true)
	setFooter(buf, payload, newSize, true)

	tail := payload + newSize
	tailSize := old - newSize
	setHeader(buf, tail, tailSize, false)
	setFooter(buf, tail, tailSize, false)
	a.coalesce(buf, tail)

	return payload
}

// growInPlace implements Realloc case 5 (section 4.6.4): try to
// absorb a free trailing neighbor, extending the heap first if the
// block sits at the heap's top and needs more room than the
// neighbor offers. Returns ok=false if the block cannot be grown
// without moving it.
func (a *Allocator) growInPlace(payload, old, newSize uint32) (uint32, bool) {
	buf := a.bytes()
	next := nextPhys(buf, payload)
	nextFree := !blockAlloc(buf, next)
	var nextSize uint32
	if nextFree {
		nextSize = blockSize(buf, next)
	}
	slack := int64(old) + int64(nextSize) - int64(newSize)

	if slack < 0 {
		if !a.isAtTop(buf, next, nextFree) {
			return 0, false
		}

		growBy := uint32(-slack)
		if growBy < a.cfg.ReallocChunk {
			growBy = a.cfg.ReallocChunk
		}
		if _, ok := a.extendRegion(growBy); !ok {
			return 0, false
		}

		// The extend may have coalesced into a block other than the
		// one we inspected above (section 9's warning): recompute
		// everything from the grown block's own neighbor rather than
		// trusting the pre-extend `next`/`nextFree`.
		buf = a.bytes()
		next = nextPhys(buf, payload)
		nextFree = !blockAlloc(buf, next)
		nextSize = 0
		if nextFree {
			nextSize = blockSize(buf, next)
		}
		slack = int64(old) + int64(nextSize) - int64(newSize)
		if slack < 0 {
			return 0, false
		}
	}

	buf = a.bytes()
	if nextFree {
		a.freelistRemove(buf, next)
	}

	total := old + nextSize
	remainder := total - newSize
	if remainder < MinBlockSize {
		setHeader(buf, payload, total, true)
		setFooter(buf, payload, total, true)
		return payload, true
	}

	setHeader(buf, payload, newSize, true)
	setFooter(buf, payload, newSize, true)
	tail := payload + newSize
	setHeader(buf, tail, remainder, false)
	setFooter(buf, tail, remainder, false)
	a.freelistInsert(buf, tail)
	return payload, true
}

// isAtTop reports whether next is the epilogue, or a free block whose
// own physical successor is the epilogue — the two cases in which
// growInPlace may extend the heap rather than declare defeat.
func (a *Allocator) isAtTop(buf []byte, next uint32, nextFree bool) bool {
	if blockSize(buf, next) == 0 {
		return true
	}
	if !nextFree {
		return false
	}
	afterNext := nextPhys(buf, next)
	return blockSize(buf, afterNext) == 0
}

// moveAndCopy implements Realloc's fallback (section 4.6.4 case 5,
// else branch): allocate fresh space, copy the old payload, free the
// original. The original block is left untouched if the fresh
// allocation fails, per the no-OOM-data-loss contract (section 7).
func (a *Allocator) moveAndCopy(payload uint32, old uint32, n uintptr) unsafe.Pointer {
	newPtr := a.Alloc(n)
	if newPtr == nil {
		return nil
	}

	// RegionProvider implementations never relocate previously
	// handed-out bytes (see the contract on RegionProvider), so the
	// offset captured before Alloc still addresses the same bytes.
	buf := a.bytes()
	src := a.payloadPtr(buf, payload)

	copySize := old - 2*WSIZE
	dstSlice := (*[1 << 30]byte)(newPtr)[:copySize:copySize]
	srcSlice := (*[1 << 30]byte)(src)[:copySize:copySize]
	copy(dstSlice, srcSlice)

	a.Free(a.payloadPtr(buf, payload))
	return newPtr
}
