// Package encoder wraps the external media engine (ffmpeg/ffprobe) behind a
// narrow interface: probe a source file for its dimensions and bitrate, and
// transcode one rendition into a segmented HLS output directory.
package encoder

import "context"

// SourceInfo describes the probed properties of an input file.
type SourceInfo struct {
	Width    int
	Height   int
	Bitrate  string  // e.g. "5000k", stream-level with format-level fallback
	Duration float64 // seconds, used to turn encoder time offsets into percentages
}

// ProgressEvent reports how far a single transcode has advanced.
// Events are observability only; callers must not use them for control flow.
type ProgressEvent struct {
	Rendition string
	Percent   float64 // 0..100, best effort
	OutTime   float64 // seconds of output produced so far
}

// ProgressFunc receives progress events during a transcode. May be nil.
type ProgressFunc func(ProgressEvent)

// TranscodeRequest carries everything one rendition encode needs.
type TranscodeRequest struct {
	InputPath string
	OutputDir string // rendition subdirectory; created by the adapter

	Rendition string // label, e.g. "720p"
	Scale     string // "WxH" or a raw ffmpeg scale expression
	Bitrate   string // target video bitrate, e.g. "2500k"
	Bandwidth int    // Bitrate in bits/sec, drives maxrate/bufsize
	Copy      bool   // remux without re-encoding

	// Re-encode parameters, ignored when Copy is set.
	VideoCodec   string
	VideoProfile string
	CRF          int
	GOPSize      int
	AudioCodec   string
	AudioBitrate string

	// HLS segmentation parameters.
	HLSTime         int
	PlaylistType    string
	SegmentTemplate string
	PlaylistName    string

	SourceDuration float64 // seconds, from Probe
	OnProgress     ProgressFunc
}

// Engine is the contract the conversion pipeline consumes. The production
// implementation shells out to ffmpeg/ffprobe; tests substitute a fake.
type Engine interface {
	Probe(ctx context.Context, path string) (SourceInfo, error)
	Transcode(ctx context.Context, req TranscodeRequest) error
}
