package storage

import (
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/minio/minio-go/v7"
	minioCredentials "github.com/minio/minio-go/v7/pkg/credentials"
	"gitlab.com/vodservice/video-pipeline/config"
	"gitlab.com/vodservice/video-pipeline/pkg/logger"
)

// Uploader archives a produced asset bundle (a local directory tree)
// under a key prefix in object storage.
type Uploader interface {
	UploadDir(localDir, keyPrefix string) error
}

// NewCloudStorage returns the uploader matching cfg.CloudType.
func NewCloudStorage(cfg *config.Config, log logger.Logger) (Uploader, error) {
	switch cfg.CloudType {
	case "minio":
		minioClient, err := minio.New(cfg.CloudEndpoint, &minio.Options{
			Creds:  minioCredentials.NewStaticV4(cfg.CloudAccessKey, cfg.CloudSecretKey, ""),
			Secure: true,
		})
		if err != nil {
			log.Error("Error while creating minio client: ", logger.Error(err))
			return nil, err
		}

		return NewMinioStorage(cfg, log, minioClient), nil
	case "s3":
		awsCfg := &aws.Config{
			Region:      aws.String(cfg.CloudRegion),
			Credentials: credentials.NewStaticCredentials(cfg.CloudAccessKey, cfg.CloudSecretKey, ""),
		}
		if cfg.CloudEndpoint != "" {
			awsCfg.Endpoint = aws.String(cfg.CloudEndpoint)
		}
		sess, err := session.NewSession(awsCfg)
		if err != nil {
			log.Error("Error while creating aws session: ", logger.Error(err))
			return nil, err
		}

		return NewS3Storage(cfg, log, sess), nil
	}

	return nil, fmt.Errorf("invalid cloud storage type: %q", cfg.CloudType)
}
