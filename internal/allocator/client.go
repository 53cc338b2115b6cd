package allocator

import "unsafe"

// AllocBytes copies src into a freshly allocated block and returns an
// unsafe.Pointer to it, or nil if the allocation fails. Grounded on
// the teacher's Runtime.AllocSlice (runtime.go), trimmed of its
// GC-root bookkeeping and string-interning: section 5's Non-goals
// exclude a garbage collector and thread-safe sharing, so the client
// layer here is a thin copy-in helper, nothing more.
func (a *Allocator) AllocBytes(src []byte) unsafe.Pointer {
	if len(src) == 0 {
		return a.Alloc(0)
	}
	ptr := a.Alloc(uintptr(len(src)))
	if ptr == nil {
		return nil
	}
	dst := (*[1 << 30]byte)(ptr)[:len(src):len(src)]
	copy(dst, src)
	return ptr
}

// AllocString copies s into a freshly allocated block, the string
// variant of AllocBytes.
func (a *Allocator) AllocString(s string) unsafe.Pointer {
	return a.AllocBytes([]byte(s))
}

// CopyInto reads n bytes out of a block previously returned by Alloc,
// AllocBytes, or Realloc. The caller is responsible for n not
// exceeding the block's live payload size; the allocator does not
// track per-block logical lengths, only physical block sizes.
func CopyInto(dst []byte, ptr unsafe.Pointer, n int) {
	if n == 0 {
		return
	}
	src := (*[1 << 30]byte)(ptr)[:n:n]
	copy(dst, src)
}
