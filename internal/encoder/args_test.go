package encoder

import (
	"path/filepath"
	"strings"
	"testing"
)

func baseRequest() TranscodeRequest {
	return TranscodeRequest{
		InputPath:       "/in/movie.mp4",
		OutputDir:       "/out/ep1/720p",
		Rendition:       "720p",
		Scale:           "1280x720",
		Bitrate:         "2500k",
		Bandwidth:       2500000,
		VideoCodec:      "libx264",
		VideoProfile:    "main",
		CRF:             20,
		GOPSize:         48,
		AudioCodec:      "aac",
		AudioBitrate:    "128k",
		HLSTime:         10,
		PlaylistType:    "vod",
		SegmentTemplate: "segment%03d.ts",
		PlaylistName:    "playlist.m3u8",
	}
}

func argString(args []string) string { return strings.Join(args, " ") }

func TestBuildArgs_reencode(t *testing.T) {
	args := argString(BuildArgs(baseRequest()))

	for _, want := range []string{
		"-i /in/movie.mp4",
		"-vf scale=1280:720",
		"-c:v libx264",
		"-profile:v main",
		"-crf 20",
		"-g 48",
		"-b:v 2500k",
		"-maxrate 3000000",
		"-bufsize 3750000",
		"-c:a aac",
		"-b:a 128k",
		"-hls_time 10",
		"-hls_playlist_type vod",
	} {
		if !strings.Contains(args, want) {
			t.Errorf("args missing %q: %s", want, args)
		}
	}
	if !strings.HasSuffix(args, filepath.Join("/out/ep1/720p", "playlist.m3u8")) {
		t.Errorf("last arg should be the rendition playlist: %s", args)
	}
}

func TestBuildArgs_copy(t *testing.T) {
	req := baseRequest()
	req.Copy = true
	args := argString(BuildArgs(req))

	if !strings.Contains(args, "-c:v copy") || !strings.Contains(args, "-c:a copy") {
		t.Errorf("copy request should use copy codecs: %s", args)
	}
	for _, forbidden := range []string{"-vf", "-crf", "-maxrate"} {
		if strings.Contains(args, forbidden) {
			t.Errorf("copy request should not carry %q: %s", forbidden, args)
		}
	}
	// Segmentation applies to both paths.
	if !strings.Contains(args, "-hls_time 10") {
		t.Errorf("copy request still needs HLS flags: %s", args)
	}
}

func TestScaleFilter(t *testing.T) {
	t.Run("wxh", func(t *testing.T) {
		if got := scaleFilter("854x480"); got != "scale=854:480" {
			t.Errorf("got %q", got)
		}
	})
	t.Run("raw_expression", func(t *testing.T) {
		if got := scaleFilter("scale=-2:480"); got != "scale=-2:480" {
			t.Errorf("got %q", got)
		}
	})
	t.Run("bare_expression", func(t *testing.T) {
		if got := scaleFilter("-2:720"); got != "scale=-2:720" {
			t.Errorf("got %q", got)
		}
	})
}

func TestRateControlDerivation(t *testing.T) {
	if got := maxRate(1000000); got != 1200000 {
		t.Errorf("maxRate: got %d, want 1200000", got)
	}
	if got := bufSize(1000000); got != 1500000 {
		t.Errorf("bufSize: got %d, want 1500000", got)
	}
}
