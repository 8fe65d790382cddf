package converter

import (
	"bufio"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grafov/m3u8"
)

func writeTestMaster(t *testing.T, dir string) MasterRef {
	t.Helper()
	results := []RenditionResult{
		{Name: "720p", Size: "1280x720", Bitrate: "2800k", Bandwidth: 2800000, PlaylistPath: "720p/playlist.m3u8"},
		{Name: "360p", Size: "640x360", Bitrate: "800k", Bandwidth: 800000, PlaylistPath: "360p/playlist.m3u8"},
		{Name: "480p", Size: "854x480", Bitrate: "1400k", Bandwidth: 1400000, PlaylistPath: "480p/playlist.m3u8"},
	}
	ref, err := CreateMaster(dir, results, Options{}.Normalize(), "ep1", "")
	if err != nil {
		t.Fatalf("CreateMaster: %v", err)
	}
	return ref
}

func decodeMaster(t *testing.T, path string) *m3u8.MasterPlaylist {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open master: %v", err)
	}
	defer f.Close()
	pl, listType, err := m3u8.DecodeFrom(bufio.NewReader(f), true)
	if err != nil {
		t.Fatalf("decode master: %v", err)
	}
	if listType != m3u8.MASTER {
		t.Fatalf("expected master list type, got %v", listType)
	}
	return pl.(*m3u8.MasterPlaylist)
}

func TestCreateMaster_sorted_by_bandwidth(t *testing.T) {
	dir := t.TempDir()
	ref := writeTestMaster(t, dir)

	if ref.Path != filepath.Join(dir, "master.m3u8") {
		t.Errorf("path: got %q", ref.Path)
	}
	if !strings.HasSuffix(ref.URL, "master.m3u8") {
		t.Errorf("url should end in master.m3u8: %q", ref.URL)
	}

	master := decodeMaster(t, ref.Path)
	if len(master.Variants) != 3 {
		t.Fatalf("expected 3 variants, got %d", len(master.Variants))
	}
	var prev uint32
	for _, v := range master.Variants {
		if v.Bandwidth < prev {
			t.Errorf("variants not in ascending bandwidth order: %d after %d", v.Bandwidth, prev)
		}
		prev = v.Bandwidth
	}
	if master.Variants[0].Resolution != "640x360" {
		t.Errorf("lowest variant resolution: got %q", master.Variants[0].Resolution)
	}
	if !strings.HasPrefix(master.Variants[0].URI, "/media/ep1/") {
		t.Errorf("variant uri should use the proxy base: %q", master.Variants[0].URI)
	}
}

func TestAttachMedia_round_trip(t *testing.T) {
	dir := t.TempDir()
	ref := writeTestMaster(t, dir)

	audio := []AudioTrack{
		{Language: "en", Name: "English", URI: "audio_en/audio.m3u8", Default: true},
		{Language: "de", Name: "Deutsch", URI: "audio_de/audio.m3u8"},
	}
	subs := []SubtitleTrack{
		{Language: "en", URI: "subs_en/subs.m3u8", Default: true},
	}

	if err := AttachMedia(ref.Path, "ep1", audio, subs); err != nil {
		t.Fatalf("AttachMedia: %v", err)
	}

	master := decodeMaster(t, ref.Path)
	if len(master.Variants) != 3 {
		t.Fatalf("variant count changed: got %d", len(master.Variants))
	}
	for _, v := range master.Variants {
		if v.Audio != "aac-audio" {
			t.Errorf("variant %s audio group: got %q", v.Name, v.Audio)
		}
		if v.Subtitles != "subs" {
			t.Errorf("variant %s subtitle group: got %q", v.Name, v.Subtitles)
		}
		if !strings.Contains(v.Codecs, "mp4a") {
			t.Errorf("variant %s should advertise AAC after default audio attach: %q", v.Name, v.Codecs)
		}
	}

	raw, err := os.ReadFile(ref.Path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(raw)
	for _, want := range []string{`GROUP-ID="aac-audio"`, `GROUP-ID="subs"`, `LANGUAGE="de"`, `TYPE=SUBTITLES`} {
		if !strings.Contains(content, want) {
			t.Errorf("master missing %q:\n%s", want, content)
		}
	}
}

func TestAttachMedia_idempotent(t *testing.T) {
	dir := t.TempDir()
	ref := writeTestMaster(t, dir)

	audio := []AudioTrack{{Language: "en", URI: "audio_en/audio.m3u8", Default: true}}
	if err := AttachMedia(ref.Path, "ep1", audio, nil); err != nil {
		t.Fatalf("first attach: %v", err)
	}
	if err := AttachMedia(ref.Path, "ep1", audio, nil); err != nil {
		t.Fatalf("second attach: %v", err)
	}

	raw, err := os.ReadFile(ref.Path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(raw)
	if got := strings.Count(content, `GROUP-ID="aac-audio"`); got != 1 {
		t.Errorf("expected exactly 1 audio group entry after double attach, got %d:\n%s", got, content)
	}
	// The AAC codec tag must not stack up either.
	if strings.Contains(content, "mp4a.40.2,mp4a.40.2") {
		t.Errorf("codec tag duplicated:\n%s", content)
	}
}

func TestAttachMedia_rejects_media_playlist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "playlist.m3u8")
	media := "#EXTM3U\n#EXT-X-VERSION:3\n#EXT-X-TARGETDURATION:10\n#EXT-X-MEDIA-SEQUENCE:0\n#EXTINF:10.0,\nsegment000.ts\n#EXT-X-ENDLIST\n"
	if err := os.WriteFile(path, []byte(media), 0o644); err != nil {
		t.Fatal(err)
	}

	err := AttachMedia(path, "ep1", []AudioTrack{{Language: "en", URI: "a.m3u8"}}, nil)
	var pe *PlaylistError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PlaylistError, got %v", err)
	}
}

func TestAttachMedia_missing_file(t *testing.T) {
	err := AttachMedia(filepath.Join(t.TempDir(), "nope.m3u8"), "ep1", nil, nil)
	var pe *PlaylistError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PlaylistError, got %v", err)
	}
}

func TestGenerateProxyBaseURL(t *testing.T) {
	cases := []struct {
		name     string
		assetID  string
		basePath string
		template string
		want     string
	}{
		{"empty_base_no_double_slash", "ep1", "", "{basePath}{assetId}/", "ep1/"},
		{"default_template", "ep1", "", "/media/{basePath}/{assetId}/", "/media/ep1/"},
		{"nested_asset", "season1/ep2", "shows", "/media/{basePath}/{assetId}/", "/media/shows/season1/ep2/"},
		{"scheme_preserved", "ep1", "vod", "https://cdn.example.com/{basePath}/{assetId}/", "https://cdn.example.com/vod/ep1/"},
		{"scheme_with_empty_base", "ep1", "", "https://cdn.example.com/{basePath}/{assetId}/", "https://cdn.example.com/ep1/"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := generateProxyBaseURL(tc.assetID, tc.basePath, tc.template); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestParseBandwidth(t *testing.T) {
	cases := map[string]int{
		"2500k":   2500000,
		"800k":    800000,
		"2.5m":    2500000,
		"5000000": 5000000,
		"abc":     DefaultBandwidth,
		"":        DefaultBandwidth,
		"-100k":   DefaultBandwidth,
	}
	for in, want := range cases {
		if got := parseBandwidth(in); got != want {
			t.Errorf("parseBandwidth(%q) = %d, want %d", in, got, want)
		}
	}
}
