package encoder

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var resolutionRe = regexp.MustCompile(`^(\d+)x(\d+)$`)

// BuildArgs constructs the complete ffmpeg argument slice for one rendition.
// The command follows a shared skeleton: preamble, input, codec section
// (copy vs re-encode), then HLS segmentation flags and the rendition
// playlist as output.
func BuildArgs(req TranscodeRequest) []string {
	args := make([]string, 0, 40)

	// --- Preamble ---
	args = append(args,
		"-hide_banner", "-nostdin", "-y",
		"-loglevel", "error",
		"-progress", "pipe:1", "-nostats",
	)

	// --- Input ---
	args = append(args, "-i", req.InputPath)

	// --- Codec section ---
	if req.Copy {
		args = append(args, "-c:v", "copy", "-c:a", "copy")
	} else {
		args = append(args, "-vf", scaleFilter(req.Scale))
		args = append(args,
			"-c:v", req.VideoCodec,
			"-profile:v", req.VideoProfile,
			"-crf", strconv.Itoa(req.CRF),
			"-g", strconv.Itoa(req.GOPSize),
			"-b:v", req.Bitrate,
			"-maxrate", strconv.Itoa(maxRate(req.Bandwidth)),
			"-bufsize", strconv.Itoa(bufSize(req.Bandwidth)),
			"-c:a", req.AudioCodec,
			"-b:a", req.AudioBitrate,
		)
	}

	// --- HLS segmentation ---
	args = append(args,
		"-hls_time", strconv.Itoa(req.HLSTime),
		"-hls_playlist_type", req.PlaylistType,
		"-hls_segment_filename", filepath.Join(req.OutputDir, req.SegmentTemplate),
	)

	// --- Output ---
	args = append(args, filepath.Join(req.OutputDir, req.PlaylistName))

	return args
}

// scaleFilter turns a "WxH" size into an ffmpeg scale filter. Anything else
// is assumed to already be a filter expression and passed through.
func scaleFilter(size string) string {
	if m := resolutionRe.FindStringSubmatch(size); m != nil {
		return "scale=" + m[1] + ":" + m[2]
	}
	if strings.HasPrefix(size, "scale=") {
		return size
	}
	return "scale=" + size
}

// maxRate and bufSize derive the rate-control window from the target
// bandwidth: maxrate = 1.2x, bufsize = 1.5x.

func maxRate(bandwidth int) int { return bandwidth * 12 / 10 }

func bufSize(bandwidth int) int { return bandwidth * 15 / 10 }
