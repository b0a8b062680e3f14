package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

// Config holds all service settings, loaded from the environment.
type Config struct {
	LogLevel string
	HTTPPort string

	// UploadDir is the base directory for raw uploads and produced assets.
	// Layout: {UploadDir}/temp, {UploadDir}/videos/{id}, {UploadDir}/thumbnails/{id}
	UploadDir     string
	MaxUploadSize int64

	FFmpeg           string
	FFprobe          string
	ThumbnailCount   int
	TranscodeRetries int

	RabbitMqEnabled  bool
	RabbitMqHost     string
	RabbitMqPort     string
	RabbitMqUser     string
	RabbitMqPassword string
	StatusQueue      string

	CloudEnabled   bool
	CloudType      string
	CloudEndpoint  string
	CloudBucket    string
	CloudAccessKey string
	CloudSecretKey string
	CloudRegion    string
}

func Load() Config {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("Could not load the .env file")
	}

	c := Config{}
	c.LogLevel = cast.ToString(getOrReturnDefault("LOG_LEVEL", "debug"))
	c.HTTPPort = cast.ToString(getOrReturnDefault("HTTP_PORT", "5000"))

	c.UploadDir = cast.ToString(getOrReturnDefault("UPLOAD_DIR", "uploads"))
	c.MaxUploadSize = cast.ToInt64(getOrReturnDefault("MAX_UPLOAD_SIZE", int64(5*1024*1024*1024)))

	c.FFmpeg = cast.ToString(getOrReturnDefault("FFMPEG", "ffmpeg"))
	c.FFprobe = cast.ToString(getOrReturnDefault("FFPROBE", "ffprobe"))
	c.ThumbnailCount = cast.ToInt(getOrReturnDefault("THUMBNAIL_COUNT", 1))
	c.TranscodeRetries = cast.ToInt(getOrReturnDefault("TRANSCODE_RETRIES", 0))

	c.RabbitMqEnabled = cast.ToBool(getOrReturnDefault("RABBITMQ_ENABLED", false))
	c.RabbitMqHost = cast.ToString(getOrReturnDefault("RABBITMQ_HOST", "localhost"))
	c.RabbitMqPort = cast.ToString(getOrReturnDefault("RABBITMQ_PORT", "5672"))
	c.RabbitMqUser = cast.ToString(getOrReturnDefault("RABBITMQ_USER", "user"))
	c.RabbitMqPassword = cast.ToString(getOrReturnDefault("RABBITMQ_PASSWORD", "secret"))
	c.StatusQueue = cast.ToString(getOrReturnDefault("STATUS_QUEUE", "asset_status"))

	c.CloudEnabled = cast.ToBool(getOrReturnDefault("CLOUD_ENABLED", false))
	c.CloudType = cast.ToString(getOrReturnDefault("CLOUD_TYPE", "minio"))
	c.CloudEndpoint = cast.ToString(getOrReturnDefault("CLOUD_ENDPOINT", ""))
	c.CloudBucket = cast.ToString(getOrReturnDefault("CLOUD_BUCKET", ""))
	c.CloudAccessKey = cast.ToString(getOrReturnDefault("CLOUD_ACCESS_KEY", ""))
	c.CloudSecretKey = cast.ToString(getOrReturnDefault("CLOUD_SECRET_KEY", ""))
	c.CloudRegion = cast.ToString(getOrReturnDefault("CLOUD_REGION", ""))

	return c
}

func getOrReturnDefault(key string, defaultValue interface{}) interface{} {
	_, exists := os.LookupEnv(key)
	if exists {
		return os.Getenv(key)
	}

	return defaultValue
}
