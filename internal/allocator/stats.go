package allocator

// Stats is a point-in-time snapshot of an Allocator's bookkeeping
// counters and free-list occupancy, returned as plain data rather
// than logged or exported as metrics, matching the teacher's
// AllocatorStats (block_manager.go: counters returned from a walk,
// not accumulated behind an exporter).
type Stats struct {
	AllocCount  uint64
	FreeCount   uint64
	ExtendCount uint64
	BytesInUse  uint64
	RegionBytes uint32

	// ListOccupancy[i] is the number of free blocks currently linked
	// into size class i.
	ListOccupancy []uint32
	// FreeBytes is the sum of the total size of every free block
	// found by walking the free lists (not the physical heap), i.e.
	// RegionBytes-worth of bytes minus sentinels minus BytesInUse,
	// recomputed independently as a cross-check.
	FreeBytes uint64
}

// Stats walks every free list once and returns an occupancy and
// byte-count snapshot alongside the allocator's running counters.
// Safe to call at any time; unlike Check, it does not validate
// invariants, only tallies what the lists already claim.
func (a *Allocator) Stats() Stats {
	buf := a.bytes()
	s := Stats{
		AllocCount:    a.allocCount,
		FreeCount:     a.freeCount,
		ExtendCount:   a.extendCount,
		BytesInUse:    a.bytesInUse,
		RegionBytes:   a.provider.CurrentEnd(),
		ListOccupancy: make([]uint32, a.listCount),
	}

	for class := 0; class < a.listCount; class++ {
		for b := a.listHead(buf, class); b != 0; b = succOffset(buf, b) {
			s.ListOccupancy[class]++
			s.FreeBytes += uint64(blockSize(buf, b))
		}
	}

	return s
}
