package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"gitlab.com/vodservice/video-pipeline/config"
	"gitlab.com/vodservice/video-pipeline/models"
	"gitlab.com/vodservice/video-pipeline/pkg/logger"
	"gitlab.com/vodservice/video-pipeline/tools/storage"
	"gitlab.com/vodservice/video-pipeline/tools/transcoder"
)

// Job identifies one pipeline run.
type Job struct {
	AssetID    string
	SourcePath string
}

// Orchestrator sequences probe, thumbnail and the rendition ladder for
// one asset. Stages run strictly sequentially; progress flows out over a
// channel the caller drains. A run ends in exactly one of: a result, or
// an *Error carrying the failing stage's kind. Processing never panics
// out of Process.
type Orchestrator struct {
	cfg     *config.Config
	log     logger.Logger
	backend transcoder.Backend
	files   storage.FileOperationsI
}

func NewOrchestrator(cfg *config.Config, log logger.Logger, backend transcoder.Backend, files storage.FileOperationsI) *Orchestrator {
	return &Orchestrator{
		cfg:     cfg,
		log:     log,
		backend: backend,
		files:   files,
	}
}

// Process runs the pipeline for one asset. It sends progress snapshots
// on progress but never closes it; the caller closes after Process
// returns. The uploaded source file is deleted only after every
// rendition succeeded.
func (o *Orchestrator) Process(ctx context.Context, job Job, progress chan<- models.ProcessingProgress) (result *models.ProcessResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			o.log.Error("pipeline panic", logger.String("asset_id", job.AssetID), logger.Any("panic", r))
			result = nil
			err = wrapError(KindInternal, fmt.Errorf("unexpected pipeline failure: %v", r))
		}
	}()

	o.log.Info("pipeline started",
		logger.String("asset_id", job.AssetID),
		logger.String("source", job.SourcePath),
	)

	probe, err := o.backend.Probe(ctx, job.SourcePath)
	if err != nil {
		return nil, wrapError(KindProbe, err)
	}

	video := probe.PrimaryVideo()
	if video == nil {
		return nil, wrapError(KindInvalidInput, fmt.Errorf("source has no video stream"))
	}
	if video.Height <= 0 {
		return nil, wrapError(KindInvalidInput, fmt.Errorf("invalid source height %d", video.Height))
	}

	videoDir, thumbDir, err := o.files.EnsureAssetDirs(job.AssetID)
	if err != nil {
		return nil, wrapError(KindFilesystem, err)
	}

	o.emit(ctx, progress, models.ProcessingProgress{Stage: models.StageThumbnails, Percent: 0})

	thumbs, err := o.backend.ExtractFrames(ctx, job.SourcePath, thumbDir, o.cfg.ThumbnailCount)
	if err != nil {
		return nil, wrapError(KindThumbnail, err)
	}

	relThumbs := make([]string, 0, len(thumbs))
	for _, t := range thumbs {
		rel, relErr := o.files.Relative(t)
		if relErr != nil {
			return nil, wrapError(KindFilesystem, relErr)
		}
		relThumbs = append(relThumbs, rel)
	}

	o.emit(ctx, progress, models.ProcessingProgress{Stage: models.StageThumbnails, Percent: 100})

	ladder := transcoder.Plan(video.Height)
	o.log.Info("ladder planned",
		logger.String("asset_id", job.AssetID),
		logger.Int("source_height", video.Height),
		logger.Any("renditions", ladderNames(ladder)),
	)

	resolutions := make(map[string]string, len(ladder))
	for i, profile := range ladder {
		// safe point: a canceled run stops before starting the next rendition
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, wrapError(KindInternal, ctxErr)
		}

		snapshot := models.ProcessingProgress{
			Stage:      models.StageConversion,
			Resolution: profile.Name,
			Current:    i + 1,
			Total:      len(ladder),
		}
		o.emit(ctx, progress, snapshot)

		outputPath := filepath.Join(videoDir, profile.Name+".mp4")
		req := transcoder.EncodeRequest{
			Input:    job.SourcePath,
			Output:   outputPath,
			Profile:  profile,
			Duration: probe.Duration,
		}

		err = o.encodeWithRetry(ctx, req, func(percent float64) {
			update := snapshot
			update.Percent = percent
			o.emit(ctx, progress, update)
		})
		if err != nil {
			return nil, wrapError(KindTranscode, err)
		}

		rel, relErr := o.files.Relative(outputPath)
		if relErr != nil {
			return nil, wrapError(KindFilesystem, relErr)
		}
		resolutions[profile.Name] = rel

		o.log.Info("rendition completed",
			logger.String("asset_id", job.AssetID),
			logger.String("resolution", profile.Name),
		)
	}

	// The ladder is done; a failed cleanup must not fail the asset.
	if err := o.files.RemoveFile(job.SourcePath); err != nil {
		o.log.Error("could not remove uploaded source",
			logger.String("asset_id", job.AssetID),
			logger.Error(err),
		)
	}

	result = &models.ProcessResult{
		AssetID:     job.AssetID,
		Thumbnails:  relThumbs,
		Resolutions: resolutions,
		Metadata: models.Metadata{
			Duration: probe.Duration,
			Size:     probe.Size,
			Format:   probe.Format,
		},
	}

	o.log.Info("pipeline completed", logger.String("asset_id", job.AssetID))
	return result, nil
}

// encodeWithRetry re-runs a failed encode up to the configured budget.
// The default budget of zero keeps whole-pipeline-fails-atomically
// semantics.
func (o *Orchestrator) encodeWithRetry(ctx context.Context, req transcoder.EncodeRequest, onProgress transcoder.ProgressFunc) error {
	var err error
	for attempt := 0; attempt <= o.cfg.TranscodeRetries; attempt++ {
		if attempt > 0 {
			o.log.Warn("retrying rendition",
				logger.String("resolution", req.Profile.Name),
				logger.Int("attempt", attempt),
				logger.Error(err),
			)
		}
		if err = o.backend.Encode(ctx, req, onProgress); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return err
		}
	}
	return err
}

// emit delivers a snapshot unless the run is already canceled. The
// consumer drains promptly, so a blocking send keeps ordering without
// re-entrancy concerns.
func (o *Orchestrator) emit(ctx context.Context, progress chan<- models.ProcessingProgress, p models.ProcessingProgress) {
	select {
	case progress <- p:
	case <-ctx.Done():
	}
}

func ladderNames(ladder []transcoder.Profile) []string {
	names := make([]string, len(ladder))
	for i, p := range ladder {
		names[i] = p.Name
	}
	return names
}
