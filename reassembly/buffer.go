package reassembly

import "container/heap"

// orderedBuffer holds a stream's out-of-order payloads keyed by
// message id, giving O(log n) insert and O(log n) pop-minimum with
// deterministic ascending iteration order. It is a streamRecord's
// reorder buffer, implemented as a binary min-heap keyed by message
// id; a companion set gives
// O(1) duplicate-id detection without scanning the heap.
type orderedBuffer[T any] struct {
	h       bufHeap[T]
	present map[uint64]struct{}
}

type bufEntry[T any] struct {
	id      uint64
	payload T
}

type bufHeap[T any] []bufEntry[T]

func (h bufHeap[T]) Len() int            { return len(h) }
func (h bufHeap[T]) Less(i, j int) bool  { return h[i].id < h[j].id }
func (h bufHeap[T]) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *bufHeap[T]) Push(x interface{}) { *h = append(*h, x.(bufEntry[T])) }
func (h *bufHeap[T]) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

func newOrderedBuffer[T any]() *orderedBuffer[T] {
	return &orderedBuffer[T]{present: make(map[uint64]struct{})}
}

// Len returns the number of buffered entries.
func (b *orderedBuffer[T]) Len() int { return len(b.h) }

// Has reports whether id is already buffered.
func (b *orderedBuffer[T]) Has(id uint64) bool {
	_, ok := b.present[id]
	return ok
}

// Insert adds a new buffered entry. The caller must check Has first;
// Insert does not itself reject duplicates.
func (b *orderedBuffer[T]) Insert(id uint64, payload T) {
	heap.Push(&b.h, bufEntry[T]{id: id, payload: payload})
	b.present[id] = struct{}{}
}

// PopIfMatches removes and returns the buffered entry for id, but
// only when id is the smallest key currently buffered. This is the
// only lookup the drain loop needs: it only ever asks for the current
// next_expected value, which by invariant 5 is always <= every
// buffered key, so "smallest key equals id" is equivalent to "id is
// present".
func (b *orderedBuffer[T]) PopIfMatches(id uint64) (T, bool) {
	var zero T
	if len(b.h) == 0 || b.h[0].id != id {
		return zero, false
	}
	entry := heap.Pop(&b.h).(bufEntry[T])
	delete(b.present, entry.id)
	return entry.payload, true
}
