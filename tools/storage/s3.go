package storage

import (
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"gitlab.com/vodservice/video-pipeline/config"
	"gitlab.com/vodservice/video-pipeline/pkg/logger"
)

type fileWalk chan string

func (f fileWalk) Walk(path string, info os.FileInfo, err error) error {
	if err != nil {
		return err
	}
	if !info.IsDir() {
		f <- path
	}
	return nil
}

type S3Storage struct {
	cfg     *config.Config
	log     logger.Logger
	session *session.Session
}

// NewS3Storage ...
func NewS3Storage(cfg *config.Config, log logger.Logger, session *session.Session) *S3Storage {
	return &S3Storage{
		cfg:     cfg,
		log:     log,
		session: session,
	}
}

// UploadDir walks localDir and uploads every file under keyPrefix,
// preserving relative paths.
func (s *S3Storage) UploadDir(localDir, keyPrefix string) error {
	s.log.Info("[UPLOADING] to s3", logger.String("dir", localDir), logger.String("key", keyPrefix))

	walker := make(fileWalk)
	go func() {
		defer close(walker)

		if err := filepath.Walk(localDir, walker.Walk); err != nil {
			s.log.Error("Walk failed:", logger.Error(err))
			return
		}
	}()

	uploader := s3manager.NewUploader(s.session)
	for path := range walker {
		rel, err := filepath.Rel(localDir, path)
		if err != nil {
			s.log.Error("Unable to get relative path:", logger.Error(err))
			return err
		}

		file, err := os.Open(path)
		if err != nil {
			s.log.Error("Error while opening the path", logger.Error(err))
			return err
		}

		_, err = uploader.Upload(&s3manager.UploadInput{
			Bucket: aws.String(s.cfg.CloudBucket),
			Key:    aws.String(filepath.Join(keyPrefix, rel)),
			Body:   file,
		})
		file.Close()
		if err != nil {
			s.log.Error("Error while uploading the path to S3 bucket", logger.Error(err))
			return err
		}
	}

	return nil
}
