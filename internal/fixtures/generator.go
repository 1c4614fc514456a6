package fixtures

import (
	"fmt"
	"math/rand"

	kcp "github.com/xtaci/kcp-go/v5"

	"github.com/omahs/streamreassembly/reassembly"
)

// StreamPlan describes one fixture stream: Messages payload frames at
// message ids 0..Messages-1, optionally followed by a fin at
// FinAt (defaulting to Messages-1, the last payload's id, if zero and
// Messages > 0).
type StreamPlan struct {
	StreamID uint64
	Messages int
	// SkipFin omits the fin frame entirely, leaving the stream open.
	SkipFin bool
	// FinAt overrides the fin's message id; zero means "last payload's id".
	FinAt uint64
}

// Payload formats a human-readable, deterministic payload for a given
// stream/message pair.
func Payload(streamID, messageID uint64) string {
	return fmt.Sprintf("stream-%d-msg-%d", streamID, messageID)
}

// GenerateFrames builds every plan's frames in order, then
// interleaves and shuffles the whole set deterministically using seed
// — the same seed always reproduces the same sequence, so tests stay
// reproducible while still exercising out-of-order delivery across
// and within streams.
func GenerateFrames(plans []StreamPlan, seed int64) []reassembly.Frame[string] {
	var frames []reassembly.Frame[string]
	for _, p := range plans {
		for m := 0; m < p.Messages; m++ {
			frames = append(frames, reassembly.Frame[string]{
				StreamID:  p.StreamID,
				MessageID: uint64(m),
				Kind:      reassembly.KindPayload,
				Payload:   Payload(p.StreamID, uint64(m)),
			})
		}
		if !p.SkipFin {
			finAt := p.FinAt
			if finAt == 0 && p.Messages > 0 {
				finAt = uint64(p.Messages - 1)
			}
			frames = append(frames, reassembly.Frame[string]{
				StreamID:  p.StreamID,
				MessageID: finAt,
				Kind:      reassembly.KindFin,
			})
		}
	}

	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(frames), func(i, j int) {
		frames[i], frames[j] = frames[j], frames[i]
	})
	return frames
}

// BufferedSource stages frames through a bounded ring buffer before
// emitting them on the returned channel, modeling a transport with its
// own internal bounded buffering upstream of delivery to the
// reassembler. The ring is kcp-go's generic RingBuffer, the same
// bounded FIFO primitive this codebase already relies on for its own
// internal queues. The channel is closed once every frame has been
// sent.
func BufferedSource(frames []reassembly.Frame[string], ringCapacity int) <-chan reassembly.Frame[string] {
	out := make(chan reassembly.Frame[string])
	go func() {
		defer close(out)
		ring := kcp.NewRingBuffer[reassembly.Frame[string]](ringCapacity)
		i := 0
		for i < len(frames) || ring.Len() > 0 {
			for i < len(frames) && ring.Len() < ringCapacity {
				ring.Push(frames[i])
				i++
			}
			f, ok := ring.Pop()
			if !ok {
				continue
			}
			out <- f
		}
	}()
	return out
}
