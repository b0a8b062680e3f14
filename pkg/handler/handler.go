package handler

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"gitlab.com/vodservice/video-pipeline/config"
	"gitlab.com/vodservice/video-pipeline/models"
	"gitlab.com/vodservice/video-pipeline/pkg/catalog"
	"gitlab.com/vodservice/video-pipeline/pkg/logger"
	"gitlab.com/vodservice/video-pipeline/pkg/pipeline"
	"gitlab.com/vodservice/video-pipeline/tools/storage"
)

// allowedExtensions is the upload filter for video containers.
var allowedExtensions = map[string]bool{
	".mp4":  true,
	".avi":  true,
	".mov":  true,
	".mkv":  true,
	".webm": true,
	".flv":  true,
	".wmv":  true,
}

// Options ...
type Options struct {
	Config       *config.Config
	Log          logger.Logger
	Store        *catalog.Store
	Runner       *pipeline.Runner
	LocalStorage storage.FileOperationsI
}

type handlerObj struct {
	cfg    *config.Config
	log    logger.Logger
	store  *catalog.Store
	runner *pipeline.Runner
	files  storage.FileOperationsI
}

// New registers all routes on a fiber app and returns it.
func New(args Options) *fiber.App {
	h := &handlerObj{
		cfg:    args.Config,
		log:    args.Log,
		store:  args.Store,
		runner: args.Runner,
		files:  args.LocalStorage,
	}

	app := fiber.New(fiber.Config{
		BodyLimit: int(args.Config.MaxUploadSize),
	})

	app.Static("/uploads", args.Config.UploadDir)

	api := app.Group("/api")
	api.Get("/health", h.Health)

	api.Post("/upload", h.Upload)
	api.Get("/upload/progress/:id", h.Progress)

	api.Get("/videos", h.ListVideos)
	api.Get("/videos/:id", h.GetVideo)
	api.Delete("/videos/:id", h.DeleteVideo)

	return app
}

func (h *handlerObj) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "message": "Server is running"})
}

// Upload accepts a multipart video with a title, stores the raw file
// under temp/ and launches the processing pipeline. The response returns
// immediately with the processing record; progress is polled separately.
func (h *handlerObj) Upload(c *fiber.Ctx) error {
	file, err := c.FormFile("video")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "No video file uploaded",
		})
	}

	title := strings.TrimSpace(c.FormValue("title"))
	if title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Title is required",
		})
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Only video files are allowed!",
		})
	}

	assetID := uuid.NewString()
	sourcePath := h.files.TempPath(assetID + ext)

	if err := c.SaveFile(file, sourcePath); err != nil {
		h.log.Error("Error while saving the upload", logger.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to upload video",
		})
	}

	video := &models.Video{
		ID:           assetID,
		Title:        title,
		Description:  c.FormValue("description"),
		OriginalName: file.Filename,
		UploadDate:   time.Now().UTC(),
		Status:       models.StatusProcessing,
		Thumbnails:   []string{},
		Resolutions:  map[string]string{},
	}
	h.store.Put(video)

	h.runner.Launch(context.Background(), pipeline.Job{
		AssetID:    assetID,
		SourcePath: sourcePath,
	})

	h.log.Info("upload accepted",
		logger.String("asset_id", assetID),
		logger.String("original_name", file.Filename),
	)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Video uploaded successfully, processing started",
		"videoId": assetID,
		"data":    video,
	})
}

// Progress returns the asset's status plus its latest progress snapshot,
// null once the asset is terminal.
func (h *handlerObj) Progress(c *fiber.Ctx) error {
	assetID := c.Params("id")

	video, err := h.store.Get(assetID)
	if err != nil {
		return h.notFound(c, err)
	}

	var progress interface{}
	if p, ok := h.store.Progress(assetID); ok {
		progress = p
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"status":   video.Status,
		"progress": progress,
	})
}

func (h *handlerObj) ListVideos(c *fiber.Ctx) error {
	videos := h.store.List()
	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(videos),
		"data":    videos,
	})
}

func (h *handlerObj) GetVideo(c *fiber.Ctx) error {
	video, err := h.store.Get(c.Params("id"))
	if err != nil {
		return h.notFound(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    video,
	})
}

// DeleteVideo removes the catalog record only; produced files stay on
// disk.
func (h *handlerObj) DeleteVideo(c *fiber.Ctx) error {
	if err := h.store.Delete(c.Params("id")); err != nil {
		return h.notFound(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Video deleted successfully",
	})
}

func (h *handlerObj) notFound(c *fiber.Ctx, err error) error {
	if errors.Is(err, catalog.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Video not found",
		})
	}

	h.log.Error("catalog error", logger.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"message": "Internal server error",
	})
}
