package allocator

import (
	"fmt"
	"unsafe"
)

// Allocator is a segregated-fit, boundary-tag heap allocator over a
// single RegionProvider. It owns the free-list head table and the
// prologue/epilogue sentinels, and is the sole top-level entry point
// for Alloc/Free/Realloc (section 6).
//
// Grounded on the teacher's Runtime (runtime.go) for the "one owning
// struct wrapping bookkeeping" shape, and on the teacher's Allocator
// interface (allocator.go) for the Alloc/Free/Realloc/Stats surface —
// generalized from a thread-safe, pluggable-strategy dispatcher to
// the single segregated-fit strategy the spec requires. There is
// deliberately no mutex: section 5 specifies a strictly
// single-threaded contract, and a *Allocator's methods take no lock,
// matching the design note's "methods take &mut self" model.
type Allocator struct {
	cfg       *Config
	provider  RegionProvider
	listCount int
	heapStart uint32

	allocCount  uint64
	freeCount   uint64
	extendCount uint64
	bytesInUse  uint64
}

// New creates an Allocator. Without a WithRegionProvider option it
// creates the platform-default region with room for at most
// initialSize bytes, raising a non-zero initialSize below
// DefaultMinRegionSize to that floor; a zero initialSize uses the
// provider's own default. With a supplied provider, initialSize is
// ignored.
func New(initialSize uint32, opts ...Option) (*Allocator, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.ListCount <= 0 {
		cfg.ListCount = ListCount
	}
	if cfg.Provider == nil {
		if initialSize != 0 && initialSize < DefaultMinRegionSize {
			initialSize = DefaultMinRegionSize
		}
		cfg.Provider = defaultRegionProvider(initialSize)
	}

	a := &Allocator{cfg: cfg, provider: cfg.Provider, listCount: cfg.ListCount}
	if err := a.init(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Allocator) bytes() []byte {
	return a.provider.Bytes()
}

// init lays out the free-list head table, padding, prologue and
// epilogue sentinels (section 3.2), then grows the heap once more to
// create the first free block.
func (a *Allocator) init() error {
	headTableBytes := uint32(a.listCount) * WSIZE
	padding := (WSIZE - headTableBytes%DSIZE + DSIZE) % DSIZE

	prologueHeaderOff := headTableBytes + padding
	prologueFooterOff := prologueHeaderOff + WSIZE
	epilogueHeaderOff := prologueFooterOff + WSIZE
	staticSize := epilogueHeaderOff + WSIZE

	if _, ok := a.provider.Extend(staticSize); !ok {
		return fmt.Errorf("segheap: reserving %d bytes of sentinel layout: %w", staticSize, ErrRegionExhausted)
	}

	buf := a.bytes()
	// The prologue is header+footer only (no real payload bytes),
	// encoding (size=DSIZE, alloc=1) per section 3.2 item 3; its
	// "payload" pointer, used only by prevPhys on the first real
	// block, is therefore the same offset as its footer.
	prologuePayload := prologueFooterOff
	setHeader(buf, prologuePayload, DSIZE, true)
	setFooter(buf, prologuePayload, DSIZE, true)
	writeWord(buf, epilogueHeaderOff, pack(0, true))

	// The first real block always starts here: epilogueHeaderOff is
	// this block's header slot (extendRegion reuses the old epilogue
	// header as the new block's header), so its payload follows at
	// +WSIZE. This offset never changes as the heap grows.
	a.heapStart = epilogueHeaderOff + WSIZE

	if _, ok := a.extendRegion(a.cfg.InitChunk); !ok {
		return fmt.Errorf("segheap: allocating initial heap chunk: %w", ErrRegionExhausted)
	}
	return nil
}

// extendRegion grows the backing region by at least n bytes (rounded
// up to DSIZE and to MinBlockSize), turns the new space into a free
// block, coalesces it with the physical predecessor if that was free
// (it cannot have a free successor: the epilogue always follows), and
// writes a fresh epilogue header at the new top (section 4.6.2).
func (a *Allocator) extendRegion(n uint32) (uint32, bool) {
	n = alignUp(n, DSIZE)
	if n < MinBlockSize {
		n = MinBlockSize
	}

	prevEnd, ok := a.provider.Extend(n)
	if !ok {
		return 0, false
	}
	a.extendCount++

	buf := a.bytes()
	setHeader(buf, prevEnd, n, false)
	setFooter(buf, prevEnd, n, false)
	writeWord(buf, prevEnd+n-WSIZE, pack(0, true))

	return a.coalesce(buf, prevEnd), true
}

// sizeForPayload computes the aligned total block size (header,
// payload, footer) needed to satisfy a client request of n bytes,
// per section 4.6 / the MallocLab ASIZE computation.
func sizeForPayload(n uint32) uint32 {
	total := alignUp(n+2*WSIZE, DSIZE)
	if total < MinBlockSize {
		total = MinBlockSize
	}
	return total
}

func (a *Allocator) payloadPtr(buf []byte, payload uint32) unsafe.Pointer {
	return unsafe.Pointer(&buf[payload])
}

// offsetOf translates a pointer previously returned by Alloc/Realloc
// back into a payload offset into the current region bytes.
func (a *Allocator) offsetOf(buf []byte, ptr unsafe.Pointer) uint32 {
	base := unsafe.Pointer(&buf[0])
	return uint32(uintptr(ptr) - uintptr(base))
}

// maxAllocSize is the largest size Alloc accepts: any larger and
// sizeForPayload's uint32 arithmetic (n+2*WSIZE, then alignUp) could
// truncate or overflow, which would silently satisfy a multi-gigabyte
// request with a tiny block (B5: an oversized request must fail
// cleanly, never corrupt heap state).
const maxAllocSize = uint64(MaxRegionSize) - 2*WSIZE - DSIZE

// Alloc allocates size bytes and returns a payload pointer, or nil on
// out-of-memory or size == 0 (B1).
func (a *Allocator) Alloc(size uintptr) unsafe.Pointer {
	if size == 0 {
		return nil
	}
	if uint64(size) > maxAllocSize {
		return nil
	}

	if a.cfg.EnableInvariantChecking {
		if rep := a.Check(); !rep.OK {
			return nil
		}
	}

	asize := sizeForPayload(uint32(size))
	buf := a.bytes()

	block, found := a.findFit(buf, asize)
	if !found {
		grown, ok := a.extendRegion(max32(asize, a.cfg.ChunkSize))
		if !ok {
			return nil
		}
		block = grown
		buf = a.bytes()
	}

	result := a.place(buf, block, asize)
	buf = a.bytes()

	a.allocCount++
	a.bytesInUse += uint64(blockSize(buf, result))

	return a.payloadPtr(buf, result)
}

// Free releases a block previously returned by Alloc or Realloc.
// free(nil) is a documented no-op (B2 notes free(null) is undefined
// by contract for an invalid pointer, but nil specifically is safe
// and cheap to special-case, matching the teacher's Free methods).
func (a *Allocator) Free(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}

	if a.cfg.EnableInvariantChecking {
		if rep := a.Check(); !rep.OK {
			return
		}
	}

	buf := a.bytes()
	payload := a.offsetOf(buf, ptr)

	a.bytesInUse -= uint64(blockSize(buf, payload))
	setHeader(buf, payload, blockSize(buf, payload), false)
	setFooter(buf, payload, blockSize(buf, payload), false)
	a.coalesce(buf, payload)

	a.freeCount++
}

// Realloc implements the reallocate policy of section 4.6.4.
func (a *Allocator) Realloc(ptr unsafe.Pointer, n uintptr) unsafe.Pointer {
	if n == 0 {
		a.Free(ptr)
		return nil
	}
	if ptr == nil {
		return a.Alloc(n)
	}
	if uint64(n) > maxAllocSize {
		return nil
	}

	if a.cfg.EnableInvariantChecking {
		if rep := a.Check(); !rep.OK {
			return nil
		}
	}

	buf := a.bytes()
	payload := a.offsetOf(buf, ptr)
	old := blockSize(buf, payload)
	newSize := sizeForPayload(uint32(n))

	switch {
	case newSize == old:
		return ptr

	case newSize < old:
		shrunk := a.shrinkInPlace(buf, payload, old, newSize)
		buf = a.bytes()
		a.bytesInUse -= uint64(old - blockSize(buf, shrunk))
		return a.payloadPtr(buf, shrunk)

	default:
		if grown, ok := a.growInPlace(payload, old, newSize); ok {
			buf = a.bytes()
			a.bytesInUse += uint64(blockSize(buf, grown) - old)
			return a.payloadPtr(buf, grown)
		}
		return a.moveAndCopy(payload, old, n)
	}
}

// Close releases resources held by the backing region, if the
// provider supports it (MmapRegion does; MemoryRegion does not need
// to). Safe to call on an Allocator whose provider has no Close.
func (a *Allocator) Close() error {
	if closer, ok := a.provider.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

func max32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}
