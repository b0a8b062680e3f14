package pipeline

import (
	"context"
	"path/filepath"
	"sync"

	"gitlab.com/vodservice/video-pipeline/config"
	"gitlab.com/vodservice/video-pipeline/models"
	"gitlab.com/vodservice/video-pipeline/pkg/catalog"
	"gitlab.com/vodservice/video-pipeline/pkg/logger"
	"gitlab.com/vodservice/video-pipeline/tools/storage"
)

// Notifier publishes asset status transitions to interested consumers.
// Implemented by pkg/rabbitmq; nil when no broker is configured.
type Notifier interface {
	PublishStatusUpdate(update *models.AssetStatusUpdate) error
}

// Runner launches one orchestrator run per asset and owns everything
// around it: draining progress into the catalog, terminal state
// reporting, optional status events and the optional cloud archive of
// the finished bundle. Each asset id is processed by at most one run.
type Runner struct {
	cfg      *config.Config
	log      logger.Logger
	orch     *Orchestrator
	store    *catalog.Store
	notifier Notifier
	uploader storage.Uploader

	wg sync.WaitGroup
}

// Options ...
type Options struct {
	Config       *config.Config
	Log          logger.Logger
	Orchestrator *Orchestrator
	Store        *catalog.Store
	Notifier     Notifier
	Uploader     storage.Uploader
}

func NewRunner(args Options) *Runner {
	return &Runner{
		cfg:      args.Config,
		log:      args.Log,
		orch:     args.Orchestrator,
		store:    args.Store,
		notifier: args.Notifier,
		uploader: args.Uploader,
	}
}

// Launch starts processing an asset in the background and returns
// immediately. The catalog record must already exist in processing state.
func (r *Runner) Launch(ctx context.Context, job Job) {
	progress := make(chan models.ProcessingProgress, 16)
	drained := make(chan struct{})

	r.wg.Add(2)

	go func() {
		defer r.wg.Done()
		defer close(drained)
		for p := range progress {
			r.store.SetProgress(job.AssetID, p)
		}
	}()

	go func() {
		defer r.wg.Done()
		result, err := r.orch.Process(ctx, job, progress)
		close(progress)

		// All buffered snapshots must land before the terminal state
		// drops them, or a finished asset would keep a stale snapshot.
		<-drained

		if err != nil {
			r.reportFailure(job.AssetID, err)
			return
		}
		r.reportSuccess(job.AssetID, result)
	}()
}

// Wait blocks until all launched runs have finished. Used for shutdown
// and in tests.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) reportFailure(assetID string, err error) {
	kind := KindOf(err)
	r.log.Error("pipeline failed",
		logger.String("asset_id", assetID),
		logger.String("kind", string(kind)),
		logger.Error(err),
	)

	if serr := r.store.Fail(assetID, err.Error()); serr != nil {
		r.log.Error("could not record failure", logger.String("asset_id", assetID), logger.Error(serr))
	}

	r.publish(&models.AssetStatusUpdate{
		AssetID:         assetID,
		Status:          models.StatusFailed,
		FailDescription: err.Error(),
		ErrorCode:       string(kind),
	})
}

func (r *Runner) reportSuccess(assetID string, result *models.ProcessResult) {
	if serr := r.store.Complete(assetID, result); serr != nil {
		r.log.Error("could not record completion", logger.String("asset_id", assetID), logger.Error(serr))
	}

	metadata := result.Metadata
	r.publish(&models.AssetStatusUpdate{
		AssetID:     assetID,
		Status:      models.StatusCompleted,
		Thumbnails:  result.Thumbnails,
		Resolutions: result.Resolutions,
		Metadata:    &metadata,
	})

	r.archive(assetID)
}

// archive pushes the finished bundle to object storage. Best effort: the
// asset is already completed and an archive failure never downgrades it.
func (r *Runner) archive(assetID string) {
	if r.uploader == nil {
		return
	}

	for _, sub := range []string{"videos", "thumbnails"} {
		localDir := filepath.Join(r.cfg.UploadDir, sub, assetID)
		if err := r.uploader.UploadDir(localDir, filepath.Join(sub, assetID)); err != nil {
			r.log.Error("archive upload failed",
				logger.String("asset_id", assetID),
				logger.String("dir", localDir),
				logger.Error(err),
			)
		}
	}
}

func (r *Runner) publish(update *models.AssetStatusUpdate) {
	if r.notifier == nil {
		return
	}
	if err := r.notifier.PublishStatusUpdate(update); err != nil {
		r.log.Error("Error while publishing status update", logger.Error(err))
	}
}
