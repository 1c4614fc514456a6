package reassembly

import "context"

// Reassembler consumes a single multiplexed, arrival-ordered sequence
// of Frames and fans them out into many gap-free, in-order
// sub-streams. It is driven by one call to Run; all of its state is
// owned exclusively by the goroutine running Run, so no
// synchronization is needed anywhere in this package.
type Reassembler[T any] struct {
	cfg      *Config
	input    <-chan Frame[T]
	announce chan<- (<-chan T)
	opts     options

	streams map[uint64]*streamRecord[T]
}

// New constructs a Reassembler. cfg may be nil, in which case
// DefaultConfig is used. input is the multiplexed frame source;
// announce is where the Reassembler publishes one receiver per
// newly observed stream, strictly before any payload for that stream
// is delivered. The Reassembler is the sole writer to announce and to
// every announced channel; it closes all of them when Run returns.
func New[T any](input <-chan Frame[T], announce chan<- (<-chan T), cfg *Config, opts ...Option) (*Reassembler[T], error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := VerifyConfig(cfg); err != nil {
		return nil, err
	}

	o := options{warn: defaultWarnFunc}
	for _, opt := range opts {
		opt(&o)
	}

	return &Reassembler[T]{
		cfg:      cfg,
		input:    input,
		announce: announce,
		opts:     o,
		streams:  make(map[uint64]*streamRecord[T]),
	}, nil
}

// Run drives the Reassembler until input is exhausted or ctx is
// cancelled. It never returns a per-frame error: frame-level
// anomalies are reported to the configured WarnFunc and the offending
// frame is dropped. Run's only return values are nil (input
// closed) and ctx.Err() (cancellation).
//
// Run is cancel-safe at every suspension point: awaiting the next
// input frame, awaiting capacity on a stream's outbound channel, and
// awaiting capacity on announce. On any return, every per-stream
// outbound channel and announce itself are closed, which is how
// cancellation signals end-of-stream to consumers.
func (r *Reassembler[T]) Run(ctx context.Context) error {
	defer r.teardown()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case f, ok := <-r.input:
			if !ok {
				return nil
			}
			if err := r.processFrame(ctx, f); err != nil {
				return err
			}
		}
	}
}

// NumStreams reports how many streams currently have live state. It
// is meant for tests and diagnostics; Run is the sole mutator of this
// count and must not be called concurrently with it.
func (r *Reassembler[T]) NumStreams() int {
	return len(r.streams)
}

func (r *Reassembler[T]) teardown() {
	for id, rec := range r.streams {
		close(rec.outbound)
		delete(r.streams, id)
	}
	close(r.announce)
}

func (r *Reassembler[T]) processFrame(ctx context.Context, f Frame[T]) error {
	rec, isNew := r.getOrCreate(f.StreamID)
	if isNew {
		if err := r.publish(ctx, rec); err != nil {
			return err
		}
	}

	if f.MessageID > rec.maxSeen {
		rec.maxSeen = f.MessageID
	}

	var err error
	switch f.Kind {
	case KindFin:
		r.handleFin(f, rec)
	case KindPayload:
		err = r.handlePayload(ctx, f, rec)
	}
	if err != nil {
		return err
	}

	r.checkRetire(f.StreamID, rec)
	return nil
}

func (r *Reassembler[T]) getOrCreate(streamID uint64) (*streamRecord[T], bool) {
	if rec, ok := r.streams[streamID]; ok {
		return rec, false
	}
	rec := newStreamRecord[T](r.cfg.ChannelBufferLength)
	r.streams[streamID] = rec
	if r.opts.metrics != nil {
		r.opts.metrics.StreamOpened()
	}
	return rec, true
}

func (r *Reassembler[T]) publish(ctx context.Context, rec *streamRecord[T]) error {
	select {
	case r.announce <- rec.outbound:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// handleFin applies step 3 of the per-frame algorithm; processFrame has
// already updated max_seen (step 2). A fin frame
// carries no payload of its own: it only ever sets fin_id bookkeeping,
// never advances next_expected directly.
func (r *Reassembler[T]) handleFin(f Frame[T], rec *streamRecord[T]) {
	if rec.finSet {
		r.warn(f.StreamID, f.MessageID, ReasonDuplicateFin, false)
		return
	}
	if f.MessageID < rec.maxSeen {
		retired := r.cfg.RetireOnInvalidFin
		r.warn(f.StreamID, f.MessageID, ReasonFinBelowMax, retired)
		if retired {
			r.retire(f.StreamID, rec)
		}
		return
	}
	rec.finID = f.MessageID
	rec.finSet = true
}

// handlePayload applies steps 4-7: fin-bound check, late/replay
// check, direct delivery plus drain, or buffering.
func (r *Reassembler[T]) handlePayload(ctx context.Context, f Frame[T], rec *streamRecord[T]) error {
	if rec.finSet && f.MessageID > rec.finID {
		r.warn(f.StreamID, f.MessageID, ReasonBeyondFin, false)
		return nil
	}
	if f.MessageID < rec.nextExpected {
		r.warn(f.StreamID, f.MessageID, ReasonLateReplay, false)
		return nil
	}
	if f.MessageID == rec.nextExpected {
		if err := r.deliver(ctx, rec, f.Payload); err != nil {
			return err
		}
		rec.nextExpected++
		return r.drain(ctx, rec)
	}

	// f.MessageID > rec.nextExpected: buffer it.
	if rec.buf.Has(f.MessageID) {
		r.warn(f.StreamID, f.MessageID, ReasonDuplicateBuffered, false)
		return nil
	}
	if r.cfg.MaxBufferedPerStream > 0 && rec.buf.Len() >= r.cfg.MaxBufferedPerStream {
		r.warn(f.StreamID, f.MessageID, ReasonBufferCapExceeded, true)
		r.retire(f.StreamID, rec)
		return nil
	}
	rec.buf.Insert(f.MessageID, f.Payload)
	return nil
}

func (r *Reassembler[T]) deliver(ctx context.Context, rec *streamRecord[T], payload T) error {
	select {
	case rec.outbound <- payload:
		if r.opts.metrics != nil {
			r.opts.metrics.FrameProcessed()
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// drain delivers every contiguous buffered entry starting at
// next_expected. It does not guarantee the buffer ends up empty: a
// gap above next_expected simply stops the loop.
func (r *Reassembler[T]) drain(ctx context.Context, rec *streamRecord[T]) error {
	for {
		payload, ok := rec.buf.PopIfMatches(rec.nextExpected)
		if !ok {
			return nil
		}
		if err := r.deliver(ctx, rec, payload); err != nil {
			return err
		}
		rec.nextExpected++
	}
}

func (r *Reassembler[T]) checkRetire(streamID uint64, rec *streamRecord[T]) {
	if rec.isRetired() {
		r.retire(streamID, rec)
	}
}

// retire closes the stream's outbound channel and drops its record.
// The stream_id remains free for a future first-observation: a frame
// for a retired stream_id starts a fresh stream rather than reviving
// the old one.
func (r *Reassembler[T]) retire(streamID uint64, rec *streamRecord[T]) {
	close(rec.outbound)
	delete(r.streams, streamID)
	if r.opts.metrics != nil {
		r.opts.metrics.StreamRetired()
	}
}

func (r *Reassembler[T]) warn(streamID, messageID uint64, reason Reason, retired bool) {
	if r.opts.metrics != nil {
		r.opts.metrics.FrameDropped(reason)
	}
	r.opts.warn(FrameError{StreamID: streamID, MessageID: messageID, Reason: reason, Retired: retired})
}
