package reassembly

import "fmt"

// Kind distinguishes a payload-carrying Frame from one marking the end
// of a stream.
type Kind uint8

const (
	// KindPayload carries application data at MessageID.
	KindPayload Kind = iota
	// KindFin declares MessageID as the last valid message id of the
	// stream; it carries no payload of its own.
	KindFin
)

func (k Kind) String() string {
	switch k {
	case KindPayload:
		return "payload"
	case KindFin:
		return "fin"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Frame is one wire unit: a payload or a terminal marker for a given
// (StreamID, MessageID) pair. Frame is generic over the decoded
// payload type; the zero value of T is carried on a KindFin frame and
// ignored.
type Frame[T any] struct {
	StreamID  uint64
	MessageID uint64
	Kind      Kind
	Payload   T
}

func newPayloadFrame[T any](streamID, messageID uint64, payload T) Frame[T] {
	return Frame[T]{StreamID: streamID, MessageID: messageID, Kind: KindPayload, Payload: payload}
}

func newFinFrame[T any](streamID, messageID uint64) Frame[T] {
	return Frame[T]{StreamID: streamID, MessageID: messageID, Kind: KindFin}
}
