package reassembly

import "log"

// WarnFunc receives one FrameError per dropped frame or stream-level
// violation. It must not block; the run loop calls it synchronously.
type WarnFunc func(FrameError)

// MetricsSink receives counter updates as the Reassembler processes
// frames. Implementations must not block. See package
// reassembly/metrics for a ready-made sink, Counters.
type MetricsSink interface {
	FrameProcessed()
	FrameDropped(Reason)
	StreamOpened()
	StreamRetired()
}

// Option configures a Reassembler at construction time.
type Option func(*options)

type options struct {
	warn    WarnFunc
	metrics MetricsSink
}

// WithWarnFunc overrides the default warning sink, which logs via the
// standard library logger.
func WithWarnFunc(f WarnFunc) Option {
	return func(o *options) { o.warn = f }
}

// WithMetricsSink attaches a MetricsSink that observes every frame
// processed, dropped, and every stream opened or retired.
func WithMetricsSink(m MetricsSink) Option {
	return func(o *options) { o.metrics = m }
}

func defaultWarnFunc(e FrameError) {
	log.Printf("reassembly: %v", e)
}
