package converter

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"

	"hls-converter/internal/encoder"
)

// heightLabelRe matches labels whose whole name is a pixel height, with or
// without the "p" suffix ("720p", "1080"). Anything else ("4k", "mobile")
// has no trustworthy height and is never eligible for the copy policy.
var heightLabelRe = regexp.MustCompile(`^(\d+)p?$`)

// Worker drives the encoder for one rendition, choosing between a fast
// remux (copy) and a full re-encode.
type Worker struct {
	engine encoder.Engine
	opts   Options
	log    *slog.Logger
}

// NewWorker returns a Worker bound to the given engine and normalized
// options.
func NewWorker(engine encoder.Engine, opts Options, log *slog.Logger) *Worker {
	if log == nil {
		log = slog.Default()
	}
	return &Worker{engine: engine, opts: opts, log: log}
}

// Process encodes one rendition of the input into its own subdirectory of
// outputDir and returns the rendition's result. Encoder failures come back
// wrapped with the rendition name.
func (w *Worker) Process(ctx context.Context, inputPath, outputDir string, spec RenditionSpec, source encoder.SourceInfo, assetID string) (RenditionResult, error) {
	bandwidth := parseBandwidth(spec.Bitrate)
	copyCodecs := w.shouldCopy(spec)

	req := encoder.TranscodeRequest{
		InputPath:       inputPath,
		OutputDir:       filepath.Join(outputDir, spec.Name),
		Rendition:       spec.Name,
		Scale:           spec.Size,
		Bitrate:         spec.Bitrate,
		Bandwidth:       bandwidth,
		Copy:            copyCodecs,
		VideoCodec:      w.opts.VideoCodec,
		VideoProfile:    w.opts.VideoProfile,
		CRF:             w.opts.CRF,
		GOPSize:         w.opts.GOPSize,
		AudioCodec:      w.opts.AudioCodec,
		AudioBitrate:    w.opts.AudioBitrate,
		HLSTime:         w.opts.HLSTime,
		PlaylistType:    w.opts.HLSPlaylistType,
		SegmentTemplate: w.opts.SegmentNameTemplate,
		PlaylistName:    w.opts.ResolutionPlaylistName,
		SourceDuration:  source.Duration,
		OnProgress: func(ev encoder.ProgressEvent) {
			w.log.Debug("encode progress",
				slog.String("asset", assetID),
				slog.String("rendition", ev.Rendition),
				slog.Int("percent", int(ev.Percent)),
			)
		},
	}

	if err := w.engine.Transcode(ctx, req); err != nil {
		return RenditionResult{}, fmt.Errorf("rendition %s: %w", spec.Name, err)
	}

	return RenditionResult{
		Name:         spec.Name,
		Size:         spec.Size,
		Bitrate:      spec.Bitrate,
		Bandwidth:    bandwidth,
		PlaylistPath: spec.Name + "/" + w.opts.ResolutionPlaylistName,
	}, nil
}

// shouldCopy implements the copy policy: only the source-resolution
// rendition may be remuxed, and only when its height is at or under the
// configured threshold. Everything else is re-encoded so the ladder carries
// deterministic bitrates.
func (w *Worker) shouldCopy(spec RenditionSpec) bool {
	if !spec.IsOriginal {
		return false
	}
	h, ok := labelHeight(spec.Name)
	return ok && h <= w.opts.CopyCodecsThresholdPix
}

// labelHeight returns the height encoded in a rendition label, requiring the
// strict "<digits>p" form.
func labelHeight(name string) (int, bool) {
	m := heightLabelRe.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	h := numericPrefix(m[1])
	return h, h > 0
}
