package encoder

import (
	"strings"
	"testing"
)

func TestScanProgress(t *testing.T) {
	input := strings.Join([]string{
		"frame=100",
		"out_time_us=30000000",
		"progress=continue",
		"out_time_us=60000000",
		"progress=continue",
		"out_time_us=120000000",
		"progress=end",
	}, "\n")

	var events []ProgressEvent
	scanProgress(strings.NewReader(input), "720p", 120, func(ev ProgressEvent) {
		events = append(events, ev)
	})

	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].Percent != 25 {
		t.Errorf("first event: got %.1f%%, want 25%%", events[0].Percent)
	}
	if events[1].Percent != 50 {
		t.Errorf("second event: got %.1f%%, want 50%%", events[1].Percent)
	}
	if events[2].Percent != 100 {
		t.Errorf("final event: got %.1f%%, want 100%%", events[2].Percent)
	}
	if events[2].Rendition != "720p" {
		t.Errorf("rendition: got %q", events[2].Rendition)
	}
}

func TestScanProgress_unknown_duration(t *testing.T) {
	input := "out_time_us=30000000\nprogress=continue\n"

	var events []ProgressEvent
	scanProgress(strings.NewReader(input), "480p", 0, func(ev ProgressEvent) {
		events = append(events, ev)
	})

	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Percent != 0 {
		t.Errorf("unknown duration should pin percent at 0, got %.1f", events[0].Percent)
	}
	if events[0].OutTime != 30 {
		t.Errorf("out time: got %v, want 30s", events[0].OutTime)
	}
}

func TestScanProgress_nil_observer(t *testing.T) {
	// Must not panic with no observer installed.
	scanProgress(strings.NewReader("out_time_us=1\nprogress=end\n"), "x", 10, nil)
}
