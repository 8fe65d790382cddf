package encoder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// fallbackBitrate is used when neither the video stream nor the container
// reports a bitrate.
const fallbackBitrate = "1500k"

// Probe runs a single ffprobe JSON call against path and returns the source
// dimensions, bitrate and duration.
func (f *FFmpeg) Probe(ctx context.Context, path string) (SourceInfo, error) {
	cmd := exec.CommandContext(ctx, f.ffprobeBin,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format", "-show_streams",
		path,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return SourceInfo{}, &ProbeError{
			Path:   path,
			Reason: strings.TrimSpace(stderr.String()),
			Err:    err,
		}
	}

	info, err := ParseProbeJSON(out)
	if err != nil {
		return SourceInfo{}, &ProbeError{Path: path, Reason: "unusable probe output", Err: err}
	}
	return info, nil
}

// ParseProbeJSON converts raw ffprobe JSON output into a SourceInfo.
// Exported for testing without a real ffprobe binary.
func ParseProbeJSON(data []byte) (SourceInfo, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return SourceInfo{}, fmt.Errorf("parse ffprobe JSON: %w", err)
	}

	if len(raw.Streams) == 0 {
		return SourceInfo{}, fmt.Errorf("no streams in probe output")
	}

	var video *ffprobeStream
	for i := range raw.Streams {
		s := &raw.Streams[i]
		if s.CodecType == "video" && s.Width > 0 && s.Height > 0 {
			video = s
			break
		}
	}
	if video == nil {
		return SourceInfo{}, fmt.Errorf("no video stream with dimensions")
	}

	// Bitrate resolution order: stream, then container, then a fixed fallback.
	bitrate := strings.TrimSpace(video.BitRate)
	if bitrate == "" || bitrate == "0" {
		bitrate = strings.TrimSpace(raw.Format.BitRate)
	}
	if bitrate == "" || bitrate == "0" {
		bitrate = fallbackBitrate
	}

	return SourceInfo{
		Width:    video.Width,
		Height:   video.Height,
		Bitrate:  bitrate,
		Duration: parseFloat(raw.Format.Duration),
	}, nil
}

// ffprobe JSON wire types. ffprobe reports numbers as strings.

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
	BitRate  string `json:"bit_rate"`
}

type ffprobeStream struct {
	CodecType string `json:"codec_type"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	BitRate   string `json:"bit_rate"`
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}
