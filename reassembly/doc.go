// Package reassembly turns a single multiplexed, out-of-order stream of
// Frames into many gap-free, in-order sub-streams.
//
// A Reassembler consumes Frames carrying a stream id and a dense
// message id, buffers the ones that arrive early, and delivers each
// stream's payloads through its own bounded channel in strict
// ascending message-id order. It never reorders frames across
// streams, never retransmits, and never verifies payload content; all
// of that is left to collaborators upstream and downstream of this
// package.
package reassembly
