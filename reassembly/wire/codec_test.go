package wire

import (
	"bytes"
	"context"
	"testing"

	"github.com/omahs/streamreassembly/reassembly"
)

func stringDecode(body []byte) (string, error) {
	return string(body), nil
}

func stringEncode(s string) ([]byte, error) {
	return []byte(s), nil
}

func failDecode(body []byte) (string, error) {
	return "", errFailDecode
}

var errFailDecode = &decodeErr{}

type decodeErr struct{}

func (*decodeErr) Error() string { return "stringDecode: boom" }

func TestRoundTripPayloadFrame(t *testing.T) {
	f := reassembly.Frame[string]{StreamID: 7, MessageID: 3, Kind: reassembly.KindPayload, Payload: "hello"}
	raw, err := EncodeFrame(f, stringEncode, false)
	if err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}
	got, err := DecodeFrame(raw, stringDecode)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if got != f {
		t.Fatalf("round trip = %+v, want %+v", got, f)
	}
}

func TestRoundTripFinFrame(t *testing.T) {
	f := reassembly.Frame[string]{StreamID: 7, MessageID: 9, Kind: reassembly.KindFin}
	raw, err := EncodeFrame(f, stringEncode, false)
	if err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}
	got, err := DecodeFrame(raw, stringDecode)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if got != f {
		t.Fatalf("round trip = %+v, want %+v", got, f)
	}
}

func TestRoundTripCompressedPayload(t *testing.T) {
	payload := bytes.Repeat([]byte("abcdefgh"), 64)
	f := reassembly.Frame[string]{StreamID: 1, MessageID: 1, Kind: reassembly.KindPayload, Payload: string(payload)}
	raw, err := EncodeFrame(f, stringEncode, true)
	if err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}
	if raw[offFlags]&flagCompressed == 0 {
		t.Fatalf("expected compressed flag set")
	}
	got, err := DecodeFrame(raw, stringDecode)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if got.Payload != f.Payload {
		t.Fatalf("round trip payload mismatch: got %d bytes, want %d", len(got.Payload), len(f.Payload))
	}
}

func TestDecodeFrameShortHeader(t *testing.T) {
	_, err := DecodeFrame[string](make([]byte, HeaderSize-1), stringDecode)
	if err != ErrShortHeader {
		t.Fatalf("err = %v, want ErrShortHeader", err)
	}
}

func TestDecodeFrameUnsupportedVersion(t *testing.T) {
	f := reassembly.Frame[string]{StreamID: 1, MessageID: 1, Kind: reassembly.KindFin}
	raw, _ := EncodeFrame(f, stringEncode, false)
	raw[offVersion] = Version + 1
	_, err := DecodeFrame(raw, stringDecode)
	if err != ErrUnsupportedVersion {
		t.Fatalf("err = %v, want ErrUnsupportedVersion", err)
	}
}

func TestDecodeFrameTruncatedBody(t *testing.T) {
	f := reassembly.Frame[string]{StreamID: 1, MessageID: 1, Kind: reassembly.KindPayload, Payload: "hello"}
	raw, _ := EncodeFrame(f, stringEncode, false)
	truncated := raw[:len(raw)-2]
	_, err := DecodeFrame(truncated, stringDecode)
	if err != ErrTruncatedBody {
		t.Fatalf("err = %v, want ErrTruncatedBody", err)
	}
}

func TestDecodeFrameUnknownKind(t *testing.T) {
	f := reassembly.Frame[string]{StreamID: 1, MessageID: 1, Kind: reassembly.KindFin}
	raw, _ := EncodeFrame(f, stringEncode, false)
	raw[offKind] = 0x7f
	_, err := DecodeFrame(raw, stringDecode)
	if err != ErrUnknownKind {
		t.Fatalf("err = %v, want ErrUnknownKind", err)
	}
}

func TestDecodeFrameBodyFailureIsFrameError(t *testing.T) {
	f := reassembly.Frame[string]{StreamID: 42, MessageID: 5, Kind: reassembly.KindPayload, Payload: "hello"}
	raw, _ := EncodeFrame(f, stringEncode, false)
	_, err := DecodeFrame(raw, failDecode)
	fe, ok := err.(*reassembly.FrameError)
	if !ok {
		t.Fatalf("err = %T, want *reassembly.FrameError", err)
	}
	if fe.StreamID != 42 || fe.MessageID != 5 || fe.Reason != reassembly.ReasonDecodeFailure {
		t.Fatalf("FrameError = %+v, unexpected", fe)
	}
}

func TestDecodeStreamSkipsBodyFailureAndStopsOnFramingError(t *testing.T) {
	good := reassembly.Frame[string]{StreamID: 1, MessageID: 1, Kind: reassembly.KindPayload, Payload: "ok"}
	bad := reassembly.Frame[string]{StreamID: 1, MessageID: 2, Kind: reassembly.KindPayload, Payload: "boom"}
	after := reassembly.Frame[string]{StreamID: 1, MessageID: 3, Kind: reassembly.KindFin}

	goodRaw, _ := EncodeFrame(good, stringEncode, false)
	badRaw, _ := EncodeFrame(bad, stringEncode, false)
	afterRaw, _ := EncodeFrame(after, stringEncode, false)

	var buf bytes.Buffer
	buf.Write(goodRaw)
	buf.Write(badRaw)
	buf.Write(afterRaw)
	// A header with a bad version corrupts framing for everything after
	// it, so DecodeStream must stop instead of trying to resync.
	corrupt := make([]byte, HeaderSize)
	copy(corrupt, afterRaw[:HeaderSize])
	corrupt[offVersion] = Version + 1
	buf.Write(corrupt)

	var warnings []error
	warn := func(err error) { warnings = append(warnings, err) }

	decodeFirstBad := func(body []byte) (string, error) {
		if string(body) == "boom" {
			return "", errFailDecode
		}
		return stringDecode(body)
	}

	ch := DecodeStream[string](context.Background(), &buf, decodeFirstBad, warn)

	var got []reassembly.Frame[string]
	for f := range ch {
		got = append(got, f)
	}

	if len(got) != 2 || got[0] != good || got[1] != after {
		t.Fatalf("got = %+v, want [good, after]", got)
	}
	if len(warnings) != 2 {
		t.Fatalf("warnings = %d, want 2 (body failure + framing stop)", len(warnings))
	}
}
