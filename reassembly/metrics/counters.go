package metrics

import (
	"fmt"
	"sync/atomic"

	"github.com/omahs/streamreassembly/reassembly"
)

// reasons lists every drop reason in a fixed order, so Header and
// ToSlice stay aligned across calls.
var reasons = []reassembly.Reason{
	reassembly.ReasonDecodeFailure,
	reassembly.ReasonLateReplay,
	reassembly.ReasonBeyondFin,
	reassembly.ReasonDuplicateBuffered,
	reassembly.ReasonDuplicateFin,
	reassembly.ReasonFinBelowMax,
	reassembly.ReasonBufferCapExceeded,
}

// Counters is a reassembly.MetricsSink backed by atomic counters, safe
// for concurrent use even though a single Reassembler only ever calls
// it from its own goroutine — a process may run several Reassemblers
// sharing one Counters to get an aggregate view.
type Counters struct {
	framesProcessed uint64
	streamsOpened   uint64
	streamsRetired  uint64
	dropped         [len(reasons)]uint64
}

// New returns a Counters with every counter at zero.
func New() *Counters {
	return &Counters{}
}

func (c *Counters) FrameProcessed() {
	atomic.AddUint64(&c.framesProcessed, 1)
}

func (c *Counters) StreamOpened() {
	atomic.AddUint64(&c.streamsOpened, 1)
}

func (c *Counters) StreamRetired() {
	atomic.AddUint64(&c.streamsRetired, 1)
}

func (c *Counters) FrameDropped(reason reassembly.Reason) {
	for i, r := range reasons {
		if r == reason {
			atomic.AddUint64(&c.dropped[i], 1)
			return
		}
	}
}

// Snapshot is a point-in-time, non-atomic copy of Counters, suitable
// for logging or CSV serialization.
type Snapshot struct {
	FramesProcessed uint64
	StreamsOpened   uint64
	StreamsRetired  uint64
	Dropped         map[reassembly.Reason]uint64
}

// Snapshot copies the current counter values.
func (c *Counters) Snapshot() Snapshot {
	s := Snapshot{
		FramesProcessed: atomic.LoadUint64(&c.framesProcessed),
		StreamsOpened:   atomic.LoadUint64(&c.streamsOpened),
		StreamsRetired:  atomic.LoadUint64(&c.streamsRetired),
		Dropped:         make(map[reassembly.Reason]uint64, len(reasons)),
	}
	for i, r := range reasons {
		s.Dropped[r] = atomic.LoadUint64(&c.dropped[i])
	}
	return s
}

// Header returns the CSV column names for ToSlice, in matching order.
func (Snapshot) Header() []string {
	h := []string{"FramesProcessed", "StreamsOpened", "StreamsRetired"}
	for _, r := range reasons {
		h = append(h, "Dropped_"+string(r))
	}
	return h
}

// ToSlice renders the snapshot as a row of strings matching Header.
func (s Snapshot) ToSlice() []string {
	row := []string{
		fmt.Sprint(s.FramesProcessed),
		fmt.Sprint(s.StreamsOpened),
		fmt.Sprint(s.StreamsRetired),
	}
	for _, r := range reasons {
		row = append(row, fmt.Sprint(s.Dropped[r]))
	}
	return row
}
