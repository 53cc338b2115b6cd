package allocator

import "testing"

func TestClassForLinearPrefix(t *testing.T) {
	cases := []struct {
		size uint32
		want int
	}{
		{16, 0},
		{24, 1},
	}
	for _, c := range cases {
		if got := classFor(c.size); got != c.want {
			t.Errorf("classFor(%d) = %d, want %d", c.size, got, c.want)
		}
	}
}

func TestClassForMonotonic(t *testing.T) {
	prev := classFor(16)
	for size := uint32(16); size < 1<<20; size += DSIZE {
		got := classFor(size)
		if got < prev {
			t.Fatalf("classFor(%d) = %d, regressed below previous class %d", size, got, prev)
		}
		if got < 0 || got >= ListCount {
			t.Fatalf("classFor(%d) = %d, out of range [0,%d)", size, got, ListCount)
		}
		prev = got
	}
}

func TestClassForListClamps(t *testing.T) {
	if got := classForList(1<<20, 4); got != 3 {
		t.Errorf("classForList with listCount=4 = %d, want 3", got)
	}
}

func TestClassForSaturatesAtTopClass(t *testing.T) {
	if got := classFor(1 << 28); got != ListCount-1 {
		t.Errorf("classFor(huge) = %d, want top class %d", got, ListCount-1)
	}
}
