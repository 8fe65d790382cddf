package encoder

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// stderrTailLimit caps how much encoder stderr is attached to a
// TranscodeError.
const stderrTailLimit = 4 * 1024

// Transcode runs one ffmpeg invocation producing a segmented HLS rendition
// in req.OutputDir. The output directory is created before the encoder
// starts. Progress events from ffmpeg's stdout are forwarded to
// req.OnProgress; stderr is captured for error reporting.
func (f *FFmpeg) Transcode(ctx context.Context, req TranscodeRequest) error {
	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return &TranscodeError{Resolution: req.Rendition, Err: err}
	}

	args := BuildArgs(req)
	cmd := exec.CommandContext(ctx, f.ffmpegBin, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return &TranscodeError{Resolution: req.Rendition, Err: err}
	}

	f.log.Debug("starting encode",
		slog.String("rendition", req.Rendition),
		slog.Bool("copy", req.Copy),
		slog.String("output_dir", req.OutputDir),
	)

	if err := cmd.Start(); err != nil {
		return &TranscodeError{Resolution: req.Rendition, Err: err}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		scanProgress(stdout, req.Rendition, req.SourceDuration, req.OnProgress)
	}()

	waitErr := cmd.Wait()
	<-done

	if waitErr != nil {
		return &TranscodeError{
			Resolution: req.Rendition,
			Stderr:     stderrTail(stderr.String()),
			Err:        waitErr,
		}
	}

	f.log.Debug("encode finished", slog.String("rendition", req.Rendition))
	return nil
}

func stderrTail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > stderrTailLimit {
		s = s[len(s)-stderrTailLimit:]
	}
	return s
}
