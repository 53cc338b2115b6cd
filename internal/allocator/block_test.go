package allocator

import "testing"

func TestPackUnpackRoundTrip(t *testing.T) {
	cases := []struct {
		size  uint32
		alloc bool
	}{
		{16, true},
		{16, false},
		{4096, true},
		{0, true},
	}
	for _, c := range cases {
		w := pack(c.size, c.alloc)
		gotSize, gotAlloc := unpack(w)
		if gotSize != c.size || gotAlloc != c.alloc {
			t.Errorf("pack/unpack(%d,%v) round-tripped to (%d,%v)", c.size, c.alloc, gotSize, gotAlloc)
		}
	}
}

func TestSetHeaderFooterAndNeighborNavigation(t *testing.T) {
	buf := make([]byte, 256)
	// Three adjacent blocks of size 32 starting at payload offset 8.
	payloads := []uint32{8, 40, 72}
	for _, p := range payloads {
		setHeader(buf, p, 32, true)
		setFooter(buf, p, 32, true)
	}

	if got := blockSize(buf, payloads[0]); got != 32 {
		t.Errorf("blockSize = %d, want 32", got)
	}
	if got := nextPhys(buf, payloads[0]); got != payloads[1] {
		t.Errorf("nextPhys(%d) = %d, want %d", payloads[0], got, payloads[1])
	}
	if got := prevPhys(buf, payloads[1]); got != payloads[0] {
		t.Errorf("prevPhys(%d) = %d, want %d", payloads[1], got, payloads[0])
	}
	if got := prevPhys(buf, payloads[2]); got != payloads[1] {
		t.Errorf("prevPhys(%d) = %d, want %d", payloads[2], got, payloads[1])
	}
}

func TestFreeListLinkRoundTrip(t *testing.T) {
	buf := make([]byte, 64)
	setPredOffset(buf, 16, 0)
	setSuccOffset(buf, 16, 48)
	if predOffset(buf, 16) != 0 {
		t.Error("predOffset mismatch")
	}
	if succOffset(buf, 16) != 48 {
		t.Error("succOffset mismatch")
	}
}

func TestAlignUp(t *testing.T) {
	cases := []struct{ size, align, want uint32 }{
		{0, 8, 0},
		{1, 8, 8},
		{8, 8, 8},
		{9, 8, 16},
		{17, 4, 20},
	}
	for _, c := range cases {
		if got := alignUp(c.size, c.align); got != c.want {
			t.Errorf("alignUp(%d,%d) = %d, want %d", c.size, c.align, got, c.want)
		}
	}
}
