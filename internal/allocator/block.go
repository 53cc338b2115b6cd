package allocator

import "encoding/binary"

// This file is the codec's "unsafe boundary" (design note, section 9):
// every other file in the package reaches the heap's bytes only
// through these functions. They are pure, total functions over a
// byte slice and a payload offset, never an absolute pointer — the
// heap's only addresses are offsets from the region's start, per I3
// and the offset-vs-pointer design note.
//
// A block's header/footer word packs size (upper 29 bits, always a
// multiple of DSIZE) and the alloc bit (bit 0); bits 1-2 are reserved
// zero. size is the block's *total* footprint: header + payload +
// footer (when present). This matches the classic macro layout in
// MallocLab/mm.c (PACK/GET_SIZE over the whole block, not just the
// payload) rather than a payload-only size field.

func readWord(buf []byte, off uint32) uint32 {
	return binary.LittleEndian.Uint32(buf[off : off+WSIZE])
}

func writeWord(buf []byte, off uint32, v uint32) {
	binary.LittleEndian.PutUint32(buf[off:off+WSIZE], v)
}

func pack(size uint32, alloc bool) uint32 {
	w := size &^ 0x7
	if alloc {
		w |= 1
	}
	return w
}

func unpack(w uint32) (size uint32, alloc bool) {
	return w &^ 0x7, w&0x1 != 0
}

// blockSize returns the total size of the block whose payload starts
// at payload, read from its header.
func blockSize(buf []byte, payload uint32) uint32 {
	size, _ := unpack(readWord(buf, payload-WSIZE))
	return size
}

// blockAlloc reports whether the block whose payload starts at
// payload is allocated, read from its header.
func blockAlloc(buf []byte, payload uint32) bool {
	_, alloc := unpack(readWord(buf, payload-WSIZE))
	return alloc
}

// setHeader writes the header word for a block of the given total
// size and alloc state.
func setHeader(buf []byte, payload uint32, size uint32, alloc bool) {
	writeWord(buf, payload-WSIZE, pack(size, alloc))
}

// setFooter writes the footer word. Every block except the epilogue
// carries one, allocated blocks included: prevPhys on the following
// block reads it to find this block's start, and Check compares it
// with the header.
func setFooter(buf []byte, payload uint32, size uint32, alloc bool) {
	writeWord(buf, payload+size-DSIZE, pack(size, alloc))
}

// nextPhys returns the payload offset of the block physically
// following B, which may be the epilogue sentinel.
func nextPhys(buf []byte, payload uint32) uint32 {
	return payload + blockSize(buf, payload)
}

// prevPhys returns the payload offset of the block physically
// preceding B, found via the boundary tag: the footer word
// immediately before B's header.
func prevPhys(buf []byte, payload uint32) uint32 {
	prevSize, _ := unpack(readWord(buf, payload-DSIZE))
	return payload - prevSize
}

// predOffset and succOffset read the free-list links stored at the
// start of a free block's payload. Valid only when the block is free.
func predOffset(buf []byte, payload uint32) uint32 {
	return readWord(buf, payload)
}

func succOffset(buf []byte, payload uint32) uint32 {
	return readWord(buf, payload+WSIZE)
}

func setPredOffset(buf []byte, payload uint32, v uint32) {
	writeWord(buf, payload, v)
}

func setSuccOffset(buf []byte, payload uint32, v uint32) {
	writeWord(buf, payload+WSIZE, v)
}

// alignUp rounds size up to the nearest multiple of align, which must
// be a power of two. Mirrors the teacher's alignUp in allocator.go.
func alignUp(size, align uint32) uint32 {
	return (size + align - 1) &^ (align - 1)
}
