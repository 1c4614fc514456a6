package metrics

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	kcp "github.com/xtaci/kcp-go/v5"
)

// History keeps a bounded, oldest-first scrollback of snapshots
// in memory, for a signal handler or admin endpoint to dump without
// touching disk. It is backed by kcp-go's generic ring buffer, the
// same structure this codebase already relies on for bounded,
// amortized-O(1) FIFO storage elsewhere.
//
// kcp.RingBuffer grows instead of overwriting once full, so History
// enforces capacity itself by discarding the oldest entry before each
// push once at capacity, rather than relying on IsFull/grow.
type History struct {
	ring     *kcp.RingBuffer[Snapshot]
	capacity int
}

// NewHistory returns a History retaining at most capacity snapshots;
// once full, the oldest snapshot is discarded as a new one arrives.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{ring: kcp.NewRingBuffer[Snapshot](capacity), capacity: capacity}
}

// Record appends s, discarding the oldest retained snapshot if the
// history is already at capacity.
func (h *History) Record(s Snapshot) {
	if h.ring.Len() >= h.capacity {
		h.ring.Discard(h.ring.Len() - h.capacity + 1)
	}
	h.ring.Push(s)
}

// Recent returns every retained snapshot, oldest first.
func (h *History) Recent() []Snapshot {
	out := make([]Snapshot, 0, h.ring.Len())
	h.ring.ForEach(func(s *Snapshot) bool {
		out = append(out, *s)
		return true
	})
	return out
}

// CSVLogger periodically appends a Counters snapshot to a CSV file at
// path, one row per interval, writing a header row only when the file
// is empty. It reads an injected Counters and, when hist is not nil,
// also records each snapshot there for in-memory scrollback.
//
// CSVLogger returns at once when path is empty or interval is not
// positive; otherwise it blocks until ctx is cancelled, so run it in
// its own goroutine.
func CSVLogger(ctx context.Context, path string, interval time.Duration, counters *Counters, hist *History) {
	if path == "" || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := counters.Snapshot()
			if hist != nil {
				hist.Record(snap)
			}
			if err := appendRow(path, snap); err != nil {
				log.Println("metrics: csv dump:", err)
			}
		}
	}
}

func appendRow(path string, snap Snapshot) error {
	dir, file := filepath.Split(path)
	name := time.Now().Format(file)
	f, err := os.OpenFile(dir+name, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if stat, err := f.Stat(); err == nil && stat.Size() == 0 {
		if err := w.Write(append([]string{"Unix"}, snap.Header()...)); err != nil {
			return err
		}
	}
	if err := w.Write(append([]string{fmt.Sprint(time.Now().Unix())}, snap.ToSlice()...)); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
