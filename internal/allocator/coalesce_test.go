package allocator

import "testing"

// These drive coalesce indirectly through Alloc/Free, the only way a
// block ever becomes a coalesce candidate in the real allocator (the
// function assumes an already-linked heap, so building a detached
// buffer by hand would just re-implement Alloc).

func TestCoalesceNextFreeOnly(t *testing.T) {
	a := newTestAllocator(t)
	p1 := a.Alloc(24)
	if p1 == nil {
		t.Fatal("setup allocation failed")
	}

	buf := a.bytes()
	p1Off := offsetOfPtr(a, p1)
	next := nextPhys(buf, p1Off)
	if blockAlloc(buf, next) {
		t.Fatal("setup precondition failed: p1's split remainder must already be free")
	}
	beforeSize := blockSize(buf, next)

	a.Free(p1)

	buf = a.bytes()
	if blockAlloc(buf, p1Off) {
		t.Fatal("p1 should be free")
	}
	merged := blockSize(buf, p1Off)
	if merged < beforeSize+MinBlockSize {
		t.Errorf("expected p1 to absorb its free successor: merged size %d, successor was %d", merged, beforeSize)
	}
	assertOK(t, a)
}

func TestCoalescePrevFreeOnly(t *testing.T) {
	a := newTestAllocator(t)
	p1 := a.Alloc(24)
	p2 := a.Alloc(24)
	if p1 == nil || p2 == nil {
		t.Fatal("setup allocations failed")
	}
	buf := a.bytes()
	p1Off := offsetOfPtr(a, p1)
	p2Off := offsetOfPtr(a, p2)
	if nextPhys(buf, p1Off) != p2Off {
		t.Fatal("setup precondition failed: p1 and p2 must be physically adjacent")
	}

	a.Free(p1) // p1 alone free; p2 still allocated, so this only reaches the none-free case
	a.Free(p2) // now p2's predecessor (p1) is free: the prevFree-only case

	buf = a.bytes()
	if blockAlloc(buf, p1Off) {
		t.Fatal("expected p1's offset to be the head of the merged free block")
	}
	merged := blockSize(buf, p1Off)
	if p1Off+merged < p2Off+MinBlockSize {
		t.Errorf("expected the merged block to absorb p2's span: merged size %d at %d", merged, p1Off)
	}
	assertOK(t, a)
}

func TestCoalesceBothFree(t *testing.T) {
	a := newTestAllocator(t)
	p1 := a.Alloc(24)
	p2 := a.Alloc(24)
	p3 := a.Alloc(24)
	if p1 == nil || p2 == nil || p3 == nil {
		t.Fatal("setup allocations failed")
	}
	a.Free(p1)
	a.Free(p3)
	a.Free(p2)

	buf := a.bytes()
	p1Off := offsetOfPtr(a, p1)

	live := 0
	for b := a.heapStart; blockSize(buf, b) != 0; b = nextPhys(buf, b) {
		if !blockAlloc(buf, b) {
			live++
		}
	}
	if live == 0 {
		t.Fatal("expected at least one free block after coalescing")
	}
	// p1, p2, and p3's offsets must all have been absorbed into a
	// single physically-free span; none of the three boundaries may
	// still start an independent block header once merged, except
	// possibly the lowest address, which becomes the merged block.
	if blockAlloc(buf, p1Off) {
		t.Error("p1's span should be part of the merged free block")
	}
	assertOK(t, a)
}
