// Package wire is the frame codec adapter: it turns opaque wire bytes
// into typed reassembly.Frame values and back. Decode failures are
// reported as dropped frames, never as errors that poison the stream
// they were destined for.
package wire
