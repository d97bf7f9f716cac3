package core

import "testing"

type scratchItem struct {
	A, B float64
}

func TestScratchBufferAllocAndReset(t *testing.T) {
	buf := NewScratchBuffer()

	ptrs := make([]*scratchItem, 0, 200)
	for i := 0; i < 200; i++ {
		p := Alloc[scratchItem](buf)
		if p.A != 0 || p.B != 0 {
			t.Fatalf("Allocation %d not zeroed: %+v", i, *p)
		}
		p.A = float64(i)
		ptrs = append(ptrs, p)
	}

	// Earlier pointers stay valid while later chunks are added
	for i, p := range ptrs {
		if p.A != float64(i) {
			t.Fatalf("Allocation %d was clobbered: %+v", i, *p)
		}
	}
	if buf.Allocated() != 200 {
		t.Errorf("Expected 200 live allocations, got %d", buf.Allocated())
	}

	buf.Reset()
	if buf.Allocated() != 0 {
		t.Errorf("Expected no live allocations after reset, got %d", buf.Allocated())
	}

	p := Alloc[scratchItem](buf)
	if p != ptrs[0] {
		t.Error("Reset should recycle memory from the first chunk")
	}
	if p.A != 0 {
		t.Error("Recycled allocation should be zeroed")
	}
}

func TestScratchBufferSeparatesTypes(t *testing.T) {
	buf := NewScratchBuffer()
	a := Alloc[scratchItem](buf)
	b := Alloc[float64](buf)
	*b = 3
	a.A = 1
	if *b != 3 || a.A != 1 {
		t.Error("Allocations of different types must not alias")
	}
	if buf.Allocated() != 2 {
		t.Errorf("Expected 2 allocations, got %d", buf.Allocated())
	}
}
