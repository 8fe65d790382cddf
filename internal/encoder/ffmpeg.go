package encoder

import "log/slog"

// FFmpeg is the production Engine: it invokes the ffprobe and ffmpeg
// binaries as subprocesses.
type FFmpeg struct {
	ffmpegBin  string
	ffprobeBin string
	log        *slog.Logger
}

// NewFFmpeg returns an FFmpeg engine using the given binary paths.
// Empty paths fall back to "ffmpeg"/"ffprobe" on $PATH.
func NewFFmpeg(ffmpegBin, ffprobeBin string, log *slog.Logger) *FFmpeg {
	if ffmpegBin == "" {
		ffmpegBin = "ffmpeg"
	}
	if ffprobeBin == "" {
		ffprobeBin = "ffprobe"
	}
	if log == nil {
		log = slog.Default()
	}
	return &FFmpeg{ffmpegBin: ffmpegBin, ffprobeBin: ffprobeBin, log: log}
}
