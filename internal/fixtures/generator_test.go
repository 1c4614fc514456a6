package fixtures

import (
	"testing"

	"github.com/omahs/streamreassembly/reassembly"
)

func TestGenerateFramesDeterministic(t *testing.T) {
	plans := []StreamPlan{{StreamID: 1, Messages: 5}, {StreamID: 2, Messages: 3}}
	a := GenerateFrames(plans, 42)
	b := GenerateFrames(plans, 42)

	if len(a) != len(b) {
		t.Fatalf("len mismatch: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("frame %d differs between identically seeded runs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestGenerateFramesCoversEveryMessageAndFin(t *testing.T) {
	plans := []StreamPlan{{StreamID: 1, Messages: 4}}
	frames := GenerateFrames(plans, 1)

	// 4 payloads + 1 fin
	if len(frames) != 5 {
		t.Fatalf("len(frames) = %d, want 5", len(frames))
	}
	seen := map[uint64]bool{}
	var finSeen bool
	for _, f := range frames {
		if f.Kind == reassembly.KindFin {
			finSeen = true
			if f.MessageID != 3 {
				t.Fatalf("fin MessageID = %d, want 3", f.MessageID)
			}
			continue
		}
		seen[f.MessageID] = true
	}
	if !finSeen {
		t.Fatalf("no fin frame generated")
	}
	for m := uint64(0); m < 4; m++ {
		if !seen[m] {
			t.Fatalf("message id %d missing from generated frames", m)
		}
	}
}

func TestGenerateFramesSkipFin(t *testing.T) {
	plans := []StreamPlan{{StreamID: 9, Messages: 2, SkipFin: true}}
	frames := GenerateFrames(plans, 7)
	if len(frames) != 2 {
		t.Fatalf("len(frames) = %d, want 2", len(frames))
	}
	for _, f := range frames {
		if f.Kind == reassembly.KindFin {
			t.Fatalf("unexpected fin frame with SkipFin set")
		}
	}
}

func TestBufferedSourceDeliversEveryFrame(t *testing.T) {
	plans := []StreamPlan{{StreamID: 1, Messages: 10}}
	frames := GenerateFrames(plans, 3)

	ch := BufferedSource(frames, 4)
	var got []reassembly.Frame[string]
	for f := range ch {
		got = append(got, f)
	}
	if len(got) != len(frames) {
		t.Fatalf("delivered %d frames, want %d", len(got), len(frames))
	}
}
