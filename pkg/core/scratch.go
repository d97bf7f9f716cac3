package core

import "reflect"

const scratchChunkSize = 64

// ScratchBuffer is a per-worker arena for objects that live for a single
// shading evaluation. Allocations are never freed individually; Reset makes
// all previously handed out memory available again. A ScratchBuffer must not
// be shared between goroutines.
type ScratchBuffer struct {
	slabs map[reflect.Type]slabResetter
}

type slabResetter interface {
	reset()
	used() int
}

type slab[T any] struct {
	chunks [][]T
	chunk  int
	next   int
	count  int
}

// NewScratchBuffer creates an empty arena
func NewScratchBuffer() *ScratchBuffer {
	return &ScratchBuffer{slabs: make(map[reflect.Type]slabResetter)}
}

// Alloc returns a zeroed *T owned by buf. The pointer stays valid until buf.Reset.
func Alloc[T any](buf *ScratchBuffer) *T {
	key := reflect.TypeFor[T]()
	s, ok := buf.slabs[key].(*slab[T])
	if !ok {
		s = &slab[T]{}
		buf.slabs[key] = s
	}
	return s.alloc()
}

// Reset reclaims every allocation made since the previous Reset.
func (buf *ScratchBuffer) Reset() {
	for _, s := range buf.slabs {
		s.reset()
	}
}

// Allocated returns the number of live allocations.
func (buf *ScratchBuffer) Allocated() int {
	n := 0
	for _, s := range buf.slabs {
		n += s.used()
	}
	return n
}

func (s *slab[T]) alloc() *T {
	for {
		if s.chunk == len(s.chunks) {
			s.chunks = append(s.chunks, make([]T, scratchChunkSize))
		}
		c := s.chunks[s.chunk]
		if s.next < len(c) {
			p := &c[s.next]
			s.next++
			s.count++
			var zero T
			*p = zero
			return p
		}
		s.chunk++
		s.next = 0
	}
}

func (s *slab[T]) reset() {
	s.chunk, s.next, s.count = 0, 0, 0
}

func (s *slab[T]) used() int {
	return s.count
}
