package converter

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/semaphore"

	"hls-converter/internal/encoder"
	"hls-converter/internal/platform/metrics"
	"hls-converter/internal/task"
)

// videoExtensions is the input whitelist checked before any work starts.
var videoExtensions = map[string]bool{
	".mp4":  true,
	".mkv":  true,
	".mov":  true,
	".avi":  true,
	".webm": true,
	".m4v":  true,
	".ts":   true,
}

// assetIDRe allows path-like asset ids such as "season1/ep2". Traversal is
// rejected separately.
var assetIDRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_/-]*$`)

// Service is the conversion orchestrator: it validates input, probes the
// source, plans the rendition ladder, fans out workers, assembles the master
// playlist, and keeps the task tracker up to date throughout.
type Service struct {
	engine    encoder.Engine
	tasks     task.Store
	opts      Options
	mediaRoot string
	log       *slog.Logger
	metrics   *metrics.Metrics
	sem       *semaphore.Weighted // nil when encodes are unbounded
}

// NewService wires the orchestrator. Options are normalized once here;
// metrics may be nil to disable recording (e.g. in tests).
func NewService(engine encoder.Engine, tasks task.Store, opts Options, mediaRoot string, log *slog.Logger, m *metrics.Metrics) *Service {
	if log == nil {
		log = slog.Default()
	}
	opts = opts.Normalize()

	var sem *semaphore.Weighted
	if opts.MaxConcurrentEncodes > 0 {
		sem = semaphore.NewWeighted(int64(opts.MaxConcurrentEncodes))
	}

	return &Service{
		engine:    engine,
		tasks:     tasks,
		opts:      opts,
		mediaRoot: mediaRoot,
		log:       log,
		metrics:   m,
		sem:       sem,
	}
}

// Options exposes the normalized pipeline configuration.
func (s *Service) Options() Options { return s.opts }

// Convert runs the whole pipeline for one input file. All renditions are
// encoded concurrently and every outcome is collected before failures are
// aggregated, so completed sibling work is never wasted and the caller sees
// the full failure set. Exactly one of the two terminal task states is
// reached per invocation.
func (s *Service) Convert(ctx context.Context, inputPath string, req ConvertRequest) (ConversionResult, error) {
	if err := validateInput(inputPath, req.AssetID); err != nil {
		return ConversionResult{}, err
	}

	if s.metrics != nil {
		s.metrics.IncConversionsStarted()
		s.metrics.AddActiveConversions(1)
		defer s.metrics.AddActiveConversions(-1)
	}

	source, err := s.engine.Probe(ctx, inputPath)
	if err != nil {
		if s.metrics != nil {
			s.metrics.IncConversionsFailed()
		}
		return ConversionResult{}, err
	}

	taskID := s.createTask(map[string]any{
		"source":     inputPath,
		"assetId":    req.AssetID,
		"width":      source.Width,
		"height":     source.Height,
		"bitrate":    source.Bitrate,
		"renditions": s.opts.Renditions,
	})

	specs := PlanRenditions(source.Width, source.Height, source.Bitrate, s.opts.Renditions)
	s.setStatus(taskID, task.StatusProcessing)

	s.log.Info("conversion started",
		slog.String("task", taskID),
		slog.String("asset", req.AssetID),
		slog.Int("renditions", len(specs)),
	)

	outputDir := filepath.Join(s.mediaRoot, filepath.FromSlash(req.AssetID))
	results, err := s.encodeAll(ctx, inputPath, outputDir, specs, source, req.AssetID)
	if err != nil {
		s.failTask(taskID, err)
		return ConversionResult{}, err
	}
	if len(results) == 0 {
		s.failTask(taskID, ErrNoRenditions)
		return ConversionResult{}, ErrNoRenditions
	}

	master, err := CreateMaster(outputDir, results, s.opts, req.AssetID, req.BasePath)
	if err != nil {
		s.failTask(taskID, err)
		return ConversionResult{}, err
	}

	s.mergeData(taskID, map[string]any{"results": results, "masterPlaylist": master.Path})
	s.setStatus(taskID, task.StatusCompleted)
	if s.metrics != nil {
		s.metrics.IncConversionsCompleted()
	}

	s.log.Info("conversion completed",
		slog.String("task", taskID),
		slog.String("asset", req.AssetID),
		slog.String("master", master.Path),
	)

	return ConversionResult{
		Message:            "conversion completed",
		OutputDir:          outputDir,
		MasterPlaylistPath: master.Path,
		MasterPlaylistURL:  master.URL,
		Renditions:         sortedByBandwidth(results),
	}, nil
}

// encodeAll fans out one worker per rendition and waits for every one to
// settle. Failures are collected, never propagated early; a bounded
// semaphore caps how many encoders run at once.
func (s *Service) encodeAll(ctx context.Context, inputPath, outputDir string, specs []RenditionSpec, source encoder.SourceInfo, assetID string) ([]RenditionResult, error) {
	worker := NewWorker(s.engine, s.opts, s.log)

	results := make([]RenditionResult, len(specs))
	failures := make([]error, len(specs))

	var wg sync.WaitGroup
	for i, spec := range specs {
		wg.Add(1)
		go func(i int, spec RenditionSpec) {
			defer wg.Done()

			if s.sem != nil {
				if err := s.sem.Acquire(ctx, 1); err != nil {
					failures[i] = err
					return
				}
				defer s.sem.Release(1)
			}

			res, err := worker.Process(ctx, inputPath, outputDir, spec, source, assetID)
			if err != nil {
				failures[i] = err
				if s.metrics != nil {
					s.metrics.IncRenditionsFailed()
				}
				s.log.Error("rendition failed",
					slog.String("asset", assetID),
					slog.String("rendition", spec.Name),
					slog.String("error", err.Error()),
				)
				return
			}
			results[i] = res
			if s.metrics != nil {
				s.metrics.IncRenditionsTranscoded()
			}
		}(i, spec)
	}
	wg.Wait()

	var failed []error
	for _, err := range failures {
		if err != nil {
			failed = append(failed, err)
		}
	}
	if len(failed) > 0 {
		return nil, &RenditionFailures{Failures: failed}
	}

	out := results[:0]
	for _, r := range results {
		if r.Name != "" {
			out = append(out, r)
		}
	}
	return out, nil
}

// AttachTracks splices audio/subtitle rendition groups into an existing
// asset's master playlist.
func (s *Service) AttachTracks(assetID string, audio []AudioTrack, subs []SubtitleTrack) error {
	if err := validateAssetID(assetID); err != nil {
		return err
	}
	masterPath := filepath.Join(s.mediaRoot, filepath.FromSlash(assetID), s.opts.MasterPlaylistName)
	return AttachMedia(masterPath, assetID, audio, subs)
}

// Task returns a tracked conversion record by id.
func (s *Service) Task(id string) (task.Task, bool) { return s.tasks.Get(id) }

// TasksByStatus lists tracked conversions in the given state, oldest first.
func (s *Service) TasksByStatus(status task.Status) []task.Task {
	return s.tasks.ListByStatus(status)
}

// Task-tracking helpers. Persistence is best effort: store failures are
// logged and never mask the conversion outcome.

func (s *Service) createTask(data map[string]any) string {
	id, err := s.tasks.Create(data)
	if err != nil {
		s.log.Warn("task store create", slog.String("error", err.Error()))
	}
	return id
}

func (s *Service) setStatus(id string, status task.Status) {
	if err := s.tasks.SetStatus(id, status); err != nil {
		s.log.Warn("task store update",
			slog.String("task", id),
			slog.String("status", string(status)),
			slog.String("error", err.Error()),
		)
	}
}

func (s *Service) mergeData(id string, data map[string]any) {
	if err := s.tasks.MergeData(id, data); err != nil {
		s.log.Warn("task store merge", slog.String("task", id), slog.String("error", err.Error()))
	}
}

func (s *Service) failTask(id string, cause error) {
	s.setStatus(id, task.StatusFailed)
	if s.metrics != nil {
		s.metrics.IncConversionsFailed()
	}
	s.log.Error("conversion failed", slog.String("task", id), slog.String("error", cause.Error()))
}

// Input validation.

func validateInput(inputPath, assetID string) error {
	ext := strings.ToLower(filepath.Ext(inputPath))
	if !videoExtensions[ext] {
		return &ValidationError{Field: "inputPath", Reason: "unsupported file extension " + ext}
	}
	return validateAssetID(assetID)
}

func validateAssetID(assetID string) error {
	if assetID == "" {
		return &ValidationError{Field: "assetId", Reason: "must not be empty"}
	}
	if strings.Contains(assetID, "..") {
		return &ValidationError{Field: "assetId", Reason: "must not contain path traversal"}
	}
	if !assetIDRe.MatchString(assetID) || strings.HasSuffix(assetID, "/") {
		return &ValidationError{Field: "assetId", Reason: "must contain only letters, digits, '-', '_' and '/'"}
	}
	return nil
}

func sortedByBandwidth(results []RenditionResult) []RenditionResult {
	out := make([]RenditionResult, len(results))
	copy(out, results)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Bandwidth < out[j].Bandwidth })
	return out
}

// IsValidation reports whether err is a caller mistake rather than a
// pipeline failure; the HTTP layer maps these to 400s.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
