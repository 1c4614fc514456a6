package wire

import (
	"encoding/binary"

	"github.com/golang/snappy"
	"github.com/pkg/errors"

	"github.com/omahs/streamreassembly/reassembly"
)

// Version is the only wire protocol version this adapter understands.
const Version = 1

const (
	kindPayload byte = 0
	kindFin     byte = 1
)

const (
	flagCompressed byte = 1 << 0
)

const (
	offVersion   = 0
	offKind      = 1
	offStreamID  = 2
	offMessageID = 10
	offFlags     = 18
	offLength    = 19
	// HeaderSize is the fixed size, in bytes, of a frame's header:
	// version(1) | kind(1) | stream_id(8) | message_id(8) | flags(1) |
	// length(4). The kind byte marks a fin; the flags byte carries the
	// compression flag.
	HeaderSize = offLength + 4
)

// ErrShortHeader is returned when fewer than HeaderSize bytes are
// available to decode.
var ErrShortHeader = errors.New("wire: frame shorter than header")

// ErrUnsupportedVersion is returned when the header's version byte
// does not match Version.
var ErrUnsupportedVersion = errors.New("wire: unsupported frame version")

// ErrTruncatedBody is returned when the header's declared length
// does not match the number of body bytes available.
var ErrTruncatedBody = errors.New("wire: truncated frame body")

// ErrUnknownKind is returned when the header's kind byte is neither
// payload nor fin.
var ErrUnknownKind = errors.New("wire: unknown frame kind")

// Decode is a Decoder for payload type T: given body bytes (with any
// wire framing such as length prefixes already stripped), it returns
// the decoded payload.
type Decode[T any] func(body []byte) (T, error)

// Encode is the inverse of Decode: given a payload, it returns the
// bytes to carry as the frame body.
type Encode[T any] func(payload T) ([]byte, error)

// DecodeFrame parses one wire frame. Header-level failures (short
// header, bad version, unknown kind, truncated body) are returned as
// plain errors, since there is no stream_id/message_id yet to attach
// to a FrameError — the caller should treat these as
// reassembly.DecodeError-worthy and skip the frame without ever
// handing it to a Reassembler. A failure from decode itself (the body
// was there, but did not parse as T) is returned as a
// *reassembly.FrameError carrying the header's stream_id/message_id,
// since that anomaly is attributable to a specific stream.
func DecodeFrame[T any](raw []byte, decode Decode[T]) (reassembly.Frame[T], error) {
	var zero reassembly.Frame[T]

	if len(raw) < HeaderSize {
		return zero, ErrShortHeader
	}
	if raw[offVersion] != Version {
		return zero, ErrUnsupportedVersion
	}

	streamID := binary.BigEndian.Uint64(raw[offStreamID:offMessageID])
	messageID := binary.BigEndian.Uint64(raw[offMessageID:offFlags])
	flags := raw[offFlags]
	length := binary.BigEndian.Uint32(raw[offLength:HeaderSize])
	body := raw[HeaderSize:]
	if uint32(len(body)) != length {
		return zero, ErrTruncatedBody
	}

	switch raw[offKind] {
	case kindFin:
		return reassembly.Frame[T]{StreamID: streamID, MessageID: messageID, Kind: reassembly.KindFin}, nil
	case kindPayload:
		if flags&flagCompressed != 0 {
			decompressed, err := snappy.Decode(nil, body)
			if err != nil {
				return zero, &reassembly.FrameError{StreamID: streamID, MessageID: messageID, Reason: reassembly.ReasonDecodeFailure}
			}
			body = decompressed
		}
		payload, err := decode(body)
		if err != nil {
			return zero, &reassembly.FrameError{StreamID: streamID, MessageID: messageID, Reason: reassembly.ReasonDecodeFailure}
		}
		return reassembly.Frame[T]{StreamID: streamID, MessageID: messageID, Kind: reassembly.KindPayload, Payload: payload}, nil
	default:
		return zero, ErrUnknownKind
	}
}

// EncodeFrame serializes f to the wire format DecodeFrame understands.
// compress requests snappy compression of the encoded body; it is
// ignored for fin frames, which carry no body.
func EncodeFrame[T any](f reassembly.Frame[T], encode Encode[T], compress bool) ([]byte, error) {
	var body []byte
	var flags byte
	kind := kindPayload

	if f.Kind == reassembly.KindFin {
		kind = kindFin
	} else {
		encoded, err := encode(f.Payload)
		if err != nil {
			return nil, errors.Wrap(err, "wire: encode payload")
		}
		body = encoded
		if compress {
			body = snappy.Encode(nil, body)
			flags |= flagCompressed
		}
	}

	out := make([]byte, HeaderSize+len(body))
	out[offVersion] = Version
	out[offKind] = kind
	binary.BigEndian.PutUint64(out[offStreamID:offMessageID], f.StreamID)
	binary.BigEndian.PutUint64(out[offMessageID:offFlags], f.MessageID)
	out[offFlags] = flags
	binary.BigEndian.PutUint32(out[offLength:HeaderSize], uint32(len(body)))
	copy(out[HeaderSize:], body)
	return out, nil
}
