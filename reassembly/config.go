package reassembly

import "github.com/pkg/errors"

// Config tunes a Reassembler. The zero value is not valid; use
// DefaultConfig and override fields as needed, then VerifyConfig
// before constructing a Reassembler, mirroring this codebase's
// existing Config/DefaultConfig/VerifyConfig convention.
type Config struct {
	// ChannelBufferLength is the capacity of the announce channel and
	// of every per-stream outbound channel. It bounds reorder-induced
	// memory only indirectly, through back-pressure; MaxBufferedPerStream
	// is the direct cap.
	ChannelBufferLength int

	// MaxBufferedPerStream caps the number of out-of-order entries a
	// single stream's reorder buffer may hold. Zero means unbounded.
	// Exceeding it is a stream-level violation: the stream is retired
	// immediately (see Config.RetireOnInvalidFin for the analogous
	// frame-level policy).
	MaxBufferedPerStream int

	// RetireOnInvalidFin controls what happens when a fin frame
	// arrives with a message id below the stream's observed maximum.
	// When false (the default) the violation is reported and the
	// stream stays open, waiting for a valid fin. When true the stream
	// is retired on the spot.
	RetireOnInvalidFin bool
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() *Config {
	return &Config{
		ChannelBufferLength: 100,
	}
}

// VerifyConfig checks the sanity of a Config: it must not be nil,
// ChannelBufferLength must be positive and MaxBufferedPerStream must
// not be negative.
func VerifyConfig(c *Config) error {
	if c == nil {
		return errors.New("reassembly: config must not be nil")
	}
	if c.ChannelBufferLength <= 0 {
		return errors.New("reassembly: channel buffer length must be positive")
	}
	if c.MaxBufferedPerStream < 0 {
		return errors.New("reassembly: max buffered per stream must not be negative")
	}
	return nil
}
