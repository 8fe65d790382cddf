package converter

import (
	"testing"
)

func countOriginals(specs []RenditionSpec) int {
	n := 0
	for _, s := range specs {
		if s.IsOriginal {
			n++
		}
	}
	return n
}

func TestPlanRenditions_appends_source_rendition(t *testing.T) {
	// Scenario: 1920x1080 @ 5000k with one user spec below source quality.
	user := []RenditionSpec{{Name: "480p", Size: "854x480", Bitrate: "1400k"}}

	got := PlanRenditions(1920, 1080, "5000k", user)

	if len(got) != 2 {
		t.Fatalf("expected 2 specs, got %d: %v", len(got), got)
	}
	if got[0].Name != "480p" || got[1].Name != "1080p" {
		t.Errorf("expected [480p 1080p] order, got [%s %s]", got[0].Name, got[1].Name)
	}
	if got[0].Bitrate != "1400k" {
		t.Errorf("480p bitrate: got %s", got[0].Bitrate)
	}
	if got[1].Bitrate != "5000k" || got[1].Size != "1920x1080" {
		t.Errorf("source spec: got %+v", got[1])
	}
	if !got[1].IsOriginal || got[0].IsOriginal {
		t.Errorf("only the appended source spec should be original: %v", got)
	}
}

func TestPlanRenditions_exact_size_marked_not_duplicated(t *testing.T) {
	// A user spec targets the exact source pixel size under another label.
	user := []RenditionSpec{
		{Name: "480p", Size: "854x480", Bitrate: "1400k"},
		{Name: "fullhd", Size: "1920x1080", Bitrate: "4500k"},
	}

	got := PlanRenditions(1920, 1080, "5000k", user)

	if len(got) != 2 {
		t.Fatalf("expected no appended spec, got %d: %v", len(got), got)
	}
	if !got[1].IsOriginal {
		t.Errorf("existing exact-size spec should be marked original: %v", got)
	}
	if got[1].Bitrate != "4500k" {
		t.Errorf("existing spec must keep its own bitrate: %v", got[1])
	}
}

func TestPlanRenditions_existing_label_kept(t *testing.T) {
	user := []RenditionSpec{
		{Name: "720p", Size: "1280x720", Bitrate: "2800k"},
	}

	got := PlanRenditions(1280, 720, "3000k", user)

	if len(got) != 1 {
		t.Fatalf("expected 1 spec, got %d", len(got))
	}
	if !got[0].IsOriginal {
		t.Error("label-matching spec should carry the original flag")
	}
}

func TestPlanRenditions_exactly_one_original(t *testing.T) {
	cases := map[string][]RenditionSpec{
		"empty":              nil,
		"one_below":          {{Name: "360p", Size: "640x360", Bitrate: "800k"}},
		"caller_set_flags":   {{Name: "360p", Size: "640x360", Bitrate: "800k", IsOriginal: true}},
		"full_ladder":        {{Name: "360p", Size: "640x360", Bitrate: "800k"}, {Name: "480p", Size: "854x480", Bitrate: "1400k"}, {Name: "720p", Size: "1280x720", Bitrate: "2800k"}},
		"non_numeric_labels": {{Name: "low", Size: "640x360", Bitrate: "800k"}, {Name: "4k", Size: "3840x2160", Bitrate: "12000k"}},
	}

	for name, specs := range cases {
		t.Run(name, func(t *testing.T) {
			got := PlanRenditions(1920, 1080, "5000k", specs)
			if n := countOriginals(got); n != 1 {
				t.Errorf("expected exactly 1 original, got %d: %v", n, got)
			}
			seen := make(map[string]bool)
			for _, s := range got {
				if seen[s.Size] {
					t.Errorf("duplicate pixel size %s: %v", s.Size, got)
				}
				seen[s.Size] = true
			}
		})
	}
}

func TestPlanRenditions_non_numeric_label_sorts_first(t *testing.T) {
	user := []RenditionSpec{
		{Name: "4k", Size: "3840x2160", Bitrate: "12000k"},
		{Name: "mobile", Size: "640x360", Bitrate: "600k"},
	}

	// Appending the 1080p source rendition triggers the re-sort; "mobile"
	// parses as 0 and sorts first, "4k" parses as 4.
	got := PlanRenditions(1920, 1080, "5000k", user)

	if len(got) != 3 {
		t.Fatalf("expected 3 specs, got %d", len(got))
	}
	if got[0].Name != "mobile" || got[1].Name != "4k" || got[2].Name != "1080p" {
		t.Errorf("order: got [%s %s %s]", got[0].Name, got[1].Name, got[2].Name)
	}
}

func TestPlanRenditions_does_not_mutate_input(t *testing.T) {
	user := []RenditionSpec{{Name: "fullhd", Size: "1920x1080", Bitrate: "4500k"}}
	_ = PlanRenditions(1920, 1080, "5000k", user)
	if user[0].IsOriginal {
		t.Error("planner must not mutate the caller's slice")
	}
}

func TestNumericPrefix(t *testing.T) {
	for name, want := range map[string]int{
		"720p":    720,
		"1080p":   1080,
		"480":     480,
		"4k":      4,
		"mobile":  0,
		"":        0,
		"p720":    0,
	} {
		if got := numericPrefix(name); got != want {
			t.Errorf("numericPrefix(%q) = %d, want %d", name, got, want)
		}
	}
}
