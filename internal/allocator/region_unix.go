//go:build unix

package allocator

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// MmapRegion is a RegionProvider backed by a single anonymous mmap
// reservation. The allocator's Extend never shrinks and never moves
// the mapping; it only advances a logical end within the reservation,
// which is cheap on a virtual-memory system since unused pages are
// never committed until touched.
//
// Grounded on the corpus's per-OS build-tag split for syscalls (see
// internal/runtime/asyncio/zerocopy_unix_file.go in the reference
// tree), generalized from a zero-copy transfer helper to a region
// provider.
type MmapRegion struct {
	mu   sync.Mutex
	data []byte
	end  uint32
}

// NewMmapRegion reserves `reserve` bytes of anonymous, zero-filled
// virtual memory. A reserve of 0 reserves MaxRegionSize-1 bytes, the
// largest size a uint32 can hold.
func NewMmapRegion(reserve uint32) (*MmapRegion, error) {
	if reserve == 0 {
		reserve = MaxRegionSize - 1
	}
	data, err := unix.Mmap(-1, 0, int(reserve), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("segheap: mmap reservation of %d bytes: %w", reserve, err)
	}
	return &MmapRegion{data: data}, nil
}

// CurrentEnd implements RegionProvider.
func (m *MmapRegion) CurrentEnd() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.end
}

// Extend implements RegionProvider.
func (m *MmapRegion) Extend(n uint32) (uint32, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev := m.end
	if n == 0 {
		return prev, true
	}
	if uint64(prev)+uint64(n) > uint64(len(m.data)) {
		return 0, false
	}
	m.end += n
	return prev, true
}

// Bytes implements RegionProvider.
func (m *MmapRegion) Bytes() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[:m.end]
}

// Close releases the reservation. The Allocator using this region
// must not be used again afterward.
func (m *MmapRegion) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil
	}
	err := unix.Munmap(m.data)
	m.data = nil
	return err
}

// defaultRegionProvider is used by New when no Provider option is
// supplied. It prefers the real mmap-backed region and only falls
// back to the in-process MemoryRegion if the reservation fails (for
// instance under a sandboxed environment that forbids anonymous
// mappings of the requested size).
func defaultRegionProvider(max uint32) RegionProvider {
	if r, err := NewMmapRegion(max); err == nil {
		return r
	}
	return NewMemoryRegion(max)
}
