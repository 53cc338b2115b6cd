package allocator

// coalesce merges a newly-free block B (not yet in any free list)
// with its physical predecessor and/or successor if they are free,
// per the four-case table in spec section 4.5, and inserts the
// resulting block into the appropriate free list. It returns the
// payload offset of the (possibly merged) block.
//
// Called only on a block that is not yet list-linked: the freshly
// extended tail from extend, or a block just handed back by
// Free/Realloc.
func (a *Allocator) coalesce(buf []byte, payload uint32) uint32 {
	prev := prevPhys(buf, payload)
	next := nextPhys(buf, payload)
	prevFree := !blockAlloc(buf, prev)
	nextFree := !blockAlloc(buf, next)
	size := blockSize(buf, payload)

	switch {
	case !prevFree && !nextFree:
		a.freelistInsert(buf, payload)
		return payload

	case !prevFree && nextFree:
		a.freelistRemove(buf, next)
		size += blockSize(buf, next)
		setHeader(buf, payload, size, false)
		setFooter(buf, payload, size, false)
		a.freelistInsert(buf, payload)
		return payload

	case prevFree && !nextFree:
		a.freelistRemove(buf, prev)
		size += blockSize(buf, prev)
		setHeader(buf, prev, size, false)
		setFooter(buf, prev, size, false)
		a.freelistInsert(buf, prev)
		return prev

	default: // prevFree && nextFree
		a.freelistRemove(buf, prev)
		a.freelistRemove(buf, next)
		size += blockSize(buf, prev) + blockSize(buf, next)
		setHeader(buf, prev, size, false)
		setFooter(buf, prev, size, false)
		a.freelistInsert(buf, prev)
		return prev
	}
}
