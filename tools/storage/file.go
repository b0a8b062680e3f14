package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"gitlab.com/vodservice/video-pipeline/config"
	"gitlab.com/vodservice/video-pipeline/pkg/logger"
)

type fileStorage struct {
	log logger.Logger
	cfg *config.Config
}

// FileOperationsI covers the local disk layout one asset occupies:
// a raw upload under temp/ and produced files under videos/{id} and
// thumbnails/{id}.
type FileOperationsI interface {
	EnsureBaseDirs() error
	EnsureAssetDirs(assetID string) (videoDir, thumbDir string, err error)
	TempPath(filename string) string
	Relative(path string) (string, error)
	RemoveFile(path string) error
}

func NewFileStorage(cfg *config.Config, log logger.Logger) FileOperationsI {
	return &fileStorage{
		cfg: cfg,
		log: log,
	}
}

// EnsureBaseDirs creates the upload layout at startup.
func (f *fileStorage) EnsureBaseDirs() error {
	for _, dir := range []string{
		filepath.Join(f.cfg.UploadDir, "temp"),
		filepath.Join(f.cfg.UploadDir, "videos"),
		filepath.Join(f.cfg.UploadDir, "thumbnails"),
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			f.log.Error("Error while creating the directory", logger.Error(err))
			return err
		}
	}
	return nil
}

// EnsureAssetDirs creates the per-asset output directories and returns them.
func (f *fileStorage) EnsureAssetDirs(assetID string) (string, string, error) {
	videoDir := filepath.Join(f.cfg.UploadDir, "videos", assetID)
	thumbDir := filepath.Join(f.cfg.UploadDir, "thumbnails", assetID)

	for _, dir := range []string{videoDir, thumbDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			f.log.Error("Error while creating the directory", logger.Error(err))
			return "", "", err
		}
	}

	return videoDir, thumbDir, nil
}

// TempPath is where a raw upload with the given stored name lands.
func (f *fileStorage) TempPath(filename string) string {
	return filepath.Join(f.cfg.UploadDir, "temp", filename)
}

// Relative rebases an output path onto the upload dir; callers receive
// paths relative to the base, never absolute ones.
func (f *fileStorage) Relative(path string) (string, error) {
	rel, err := filepath.Rel(f.cfg.UploadDir, path)
	if err != nil {
		return "", fmt.Errorf("relativize %q: %w", path, err)
	}
	return rel, nil
}

func (f *fileStorage) RemoveFile(path string) error {
	f.log.Info("Removing file", logger.String("path", path))
	return os.Remove(path)
}
