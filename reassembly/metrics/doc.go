// Package metrics is an atomic-counter MetricsSink for reassembly.Reassembler,
// together with a periodic CSV dumper of its snapshots.
package metrics
