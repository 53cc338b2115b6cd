package allocator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryRegionExtendNeverMovesExistingBytes(t *testing.T) {
	r := NewMemoryRegion(256)
	require.Equal(t, uint32(0), r.CurrentEnd())

	prev, ok := r.Extend(64)
	require.True(t, ok)
	require.Equal(t, uint32(0), prev)

	buf := r.Bytes()
	buf[0] = 0xAB
	base := &buf[0]

	_, ok = r.Extend(64)
	require.True(t, ok)

	grown := r.Bytes()
	require.Same(t, base, &grown[0], "Extend must not relocate the backing array")
	require.Equal(t, byte(0xAB), grown[0], "bytes written before Extend must survive it")
}

func TestMemoryRegionExtendRejectsOverCapacity(t *testing.T) {
	r := NewMemoryRegion(32)
	_, ok := r.Extend(16)
	require.True(t, ok)

	_, ok = r.Extend(32)
	require.False(t, ok, "Extend beyond the reserved capacity must fail, not grow past it")
	require.Equal(t, uint32(16), r.CurrentEnd(), "a failed Extend must leave the region unchanged")
}

func TestMemoryRegionExtendZeroIsNoop(t *testing.T) {
	r := NewMemoryRegion(32)
	r.Extend(8)
	prev, ok := r.Extend(0)
	require.True(t, ok)
	require.Equal(t, uint32(8), prev)
	require.Equal(t, uint32(8), r.CurrentEnd())
}

func TestNewMemoryRegionDefaultsCapacity(t *testing.T) {
	r := NewMemoryRegion(0)
	require.Equal(t, uint32(DefaultMemoryRegionCap), r.cap)
}
