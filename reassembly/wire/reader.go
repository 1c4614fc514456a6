package wire

import (
	"context"
	"encoding/binary"
	"io"

	"github.com/omahs/streamreassembly/reassembly"
)

// DecodeStream reads a sequence of length-framed wire frames from r
// and decodes them, returning a channel a Reassembler can use
// directly as its input. It reads a fixed header, then its declared
// body length, decodes, and repeats; it produces Frame values and
// leaves dispatch to per-stream state to the Reassembler.
//
// The returned channel is closed when r returns an error (including
// io.EOF) or ctx is cancelled. A body-decode failure does not stop
// the stream, since the header was read correctly and framing stays
// intact; it is reported to warn and the frame is skipped. A
// malformed header corrupts framing itself (we no longer know where
// the next frame starts), so DecodeStream reports it to warn and
// stops.
func DecodeStream[T any](ctx context.Context, r io.Reader, decode Decode[T], warn func(error)) <-chan reassembly.Frame[T] {
	out := make(chan reassembly.Frame[T])
	go func() {
		defer close(out)
		hdr := make([]byte, HeaderSize)
		for {
			if _, err := io.ReadFull(r, hdr); err != nil {
				if err != io.EOF && warn != nil {
					warn(err)
				}
				return
			}

			length := binary.BigEndian.Uint32(hdr[offLength:HeaderSize])
			raw := make([]byte, HeaderSize+int(length))
			copy(raw, hdr)
			if length > 0 {
				if _, err := io.ReadFull(r, raw[HeaderSize:]); err != nil {
					if warn != nil {
						warn(err)
					}
					return
				}
			}

			frame, err := DecodeFrame(raw, decode)
			if err != nil {
				if warn != nil {
					warn(err)
				}
				if isFramingError(err) {
					return
				}
				continue
			}

			select {
			case out <- frame:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func isFramingError(err error) bool {
	switch err {
	case ErrShortHeader, ErrUnsupportedVersion, ErrTruncatedBody, ErrUnknownKind:
		return true
	default:
		return false
	}
}
