package reassembly

import "fmt"

// Reason identifies why a frame was dropped or a stream was retired
// early.
type Reason string

const (
	// ReasonDecodeFailure: the frame codec adapter could not decode
	// the wire bytes into a payload.
	ReasonDecodeFailure Reason = "decode_failure"
	// ReasonLateReplay: message_id < next_expected.
	ReasonLateReplay Reason = "late_replay"
	// ReasonBeyondFin: message_id > fin_id once fin is set.
	ReasonBeyondFin Reason = "beyond_fin"
	// ReasonDuplicateBuffered: the same message_id is already held in
	// the reorder buffer.
	ReasonDuplicateBuffered Reason = "duplicate_buffered"
	// ReasonDuplicateFin: a second fin frame arrived for a stream
	// that already has fin_id set.
	ReasonDuplicateFin Reason = "duplicate_fin"
	// ReasonFinBelowMax: a fin frame's message_id is smaller than the
	// stream's previously observed maximum.
	ReasonFinBelowMax Reason = "fin_below_max"
	// ReasonBufferCapExceeded: the stream's reorder buffer would grow
	// past Config.MaxBufferedPerStream. Stream-level: the stream is
	// retired.
	ReasonBufferCapExceeded Reason = "buffer_cap_exceeded"
)

// FrameError describes one dropped frame or stream-level violation.
// It is never returned by Run; the Reassembler only ever hands it to a
// warning sink (see WithWarnFunc). wire.DecodeFrame returns a
// *FrameError for a frame whose body fails to decode.
type FrameError struct {
	StreamID  uint64
	MessageID uint64
	Reason    Reason
	// Retired is true when this anomaly caused the stream's record to
	// be torn down, as opposed to only the triggering frame being
	// dropped.
	Retired bool
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("reassembly: stream %d message %d: %s", e.StreamID, e.MessageID, e.Reason)
}

// DecodeError wraps a codec adapter failure that could not even be
// attributed to a stream id, because the header itself was
// undecodable.
type DecodeError struct {
	Cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("reassembly: frame header undecodable: %v", e.Cause)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}
