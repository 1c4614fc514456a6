package reassembly

// streamRecord is the per-stream state owned exclusively by the
// Reassembler's single run loop. It is never shared across
// goroutines, so none of its fields need a lock.
type streamRecord[T any] struct {
	nextExpected uint64
	finID        uint64
	finSet       bool
	maxSeen      uint64

	outbound chan T
	buf      *orderedBuffer[T]
}

func newStreamRecord[T any](channelBufferLength int) *streamRecord[T] {
	return &streamRecord[T]{
		outbound: make(chan T, channelBufferLength),
		buf:      newOrderedBuffer[T](),
	}
}

// isRetired reports whether the stream has delivered its final
// payload: next_expected has advanced past fin_id.
func (r *streamRecord[T]) isRetired() bool {
	return r.finSet && r.nextExpected == r.finID+1
}
