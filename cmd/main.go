package main

import (
	"gitlab.com/vodservice/video-pipeline/config"
	"gitlab.com/vodservice/video-pipeline/pkg/catalog"
	"gitlab.com/vodservice/video-pipeline/pkg/handler"
	"gitlab.com/vodservice/video-pipeline/pkg/logger"
	"gitlab.com/vodservice/video-pipeline/pkg/pipeline"
	"gitlab.com/vodservice/video-pipeline/pkg/rabbitmq"
	"gitlab.com/vodservice/video-pipeline/tools/ffmpeg"
	"gitlab.com/vodservice/video-pipeline/tools/storage"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, "video_pipeline_service")

	log.Info("configuration and logger is setup...")

	fileStorage := storage.NewFileStorage(&cfg, log)
	if err := fileStorage.EnsureBaseDirs(); err != nil {
		log.Fatal("Error while creating upload directories", logger.Error(err))
	}
	log.Info("upload directories created...")

	backend := ffmpeg.New(&cfg, log)
	log.Info("media backend is created...")

	store := catalog.NewStore()

	var notifier pipeline.Notifier
	if cfg.RabbitMqEnabled {
		rbMQ, err := rabbitmq.New(&cfg, log)
		if err != nil {
			log.Fatal("Error while creating rabbitMq object...", logger.Error(err))
		}
		defer rbMQ.Channel.Close()
		notifier = rbMQ
		log.Info("status notifier is created...")
	}

	var uploader storage.Uploader
	if cfg.CloudEnabled {
		cloud, err := storage.NewCloudStorage(&cfg, log)
		if err != nil {
			log.Fatal("Error while creating cloud storage", logger.Error(err))
		}
		uploader = cloud
		log.Info("cloud storage is created...")
	}

	orch := pipeline.NewOrchestrator(&cfg, log, backend, fileStorage)
	runner := pipeline.NewRunner(pipeline.Options{
		Config:       &cfg,
		Log:          log,
		Orchestrator: orch,
		Store:        store,
		Notifier:     notifier,
		Uploader:     uploader,
	})

	app := handler.New(handler.Options{
		Config:       &cfg,
		Log:          log,
		Store:        store,
		Runner:       runner,
		LocalStorage: fileStorage,
	})

	log.Info("listening", logger.String("port", cfg.HTTPPort))
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal("server stopped", logger.Error(err))
	}
}
