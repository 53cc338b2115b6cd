package allocator

// The free-list manager keeps ListCount doubly-linked lists of free
// blocks, one per size class, in LIFO insertion order. Head pointers
// live in a table of offsets at the very start of the region (offset
// 0 is therefore never a valid payload offset and doubles as "null" —
// section 3.1). Links are stored in-band, at the free block's own
// payload bytes, never as Go pointers, per the design note on
// offsets-not-references.
//
// Grounded on the teacher's Pool (internal/allocator/pool.go): one
// bucket per size class with explicit insert/remove, generalized from
// out-of-band Go slices to in-band offset links so list membership
// survives purely as heap bytes (I6-I8).

func (a *Allocator) headSlotOffset(class int) uint32 {
	return uint32(class) * WSIZE
}

func (a *Allocator) listHead(buf []byte, class int) uint32 {
	return readWord(buf, a.headSlotOffset(class))
}

func (a *Allocator) setListHead(buf []byte, class int, payload uint32) {
	writeWord(buf, a.headSlotOffset(class), payload)
}

// freelistInsert makes payload the new head of its size class's list.
// payload must not already be a member of any list.
func (a *Allocator) freelistInsert(buf []byte, payload uint32) {
	class := classForList(blockSize(buf, payload), a.listCount)
	head := a.listHead(buf, class)

	setSuccOffset(buf, payload, head)
	setPredOffset(buf, payload, 0)
	if head != 0 {
		setPredOffset(buf, head, payload)
	}
	a.setListHead(buf, class, payload)
}

// freelistRemove splices payload out of its size class's list.
func (a *Allocator) freelistRemove(buf []byte, payload uint32) {
	class := classForList(blockSize(buf, payload), a.listCount)
	pred := predOffset(buf, payload)
	succ := succOffset(buf, payload)

	if pred != 0 {
		setSuccOffset(buf, pred, succ)
	} else {
		a.setListHead(buf, class, succ)
	}
	if succ != 0 {
		setPredOffset(buf, succ, pred)
	}
}
