//go:build !unix

package allocator

// defaultRegionProvider falls back to the pure-Go MemoryRegion on
// platforms without the unix mmap backend.
func defaultRegionProvider(max uint32) RegionProvider {
	return NewMemoryRegion(max)
}
