package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Env      Env
	Server   ServerConfig
	Database DatabaseConfig
	Minio    MinioConfig
	NATS     NATSConfig
	Redis    RedisConfig
	Upload   UploadConfig
	Download DownloadConfig
	Outbox   OutboxConfig
	Webhook  WebhookConfig
	Recovery RecoveryConfig
}

type Env struct {
	Env string `envconfig:"ENV" default:"DEV"`
}

type ServerConfig struct {
	Host string `envconfig:"SERVER_HOST" default:"localhost"`
	Port string `envconfig:"SERVER_PORT" default:"8080"`
}

type DatabaseConfig struct {
	Host           string        `envconfig:"DB_HOST" required:"true"`
	Port           int           `envconfig:"DB_PORT" default:"5432"`
	User           string        `envconfig:"DB_USER" required:"true"`
	Password       string        `envconfig:"DB_PASSWORD" required:"true"`
	Name           string        `envconfig:"DB_NAME" required:"true"`
	SSLMode        string        `envconfig:"DB_SSLMODE" default:"disable"`
	MaxOpenCons    int           `envconfig:"DB_MAX_OPEN_CONS" default:"25"`
	MaxIdleCons    int           `envconfig:"DB_MAX_IDLE_CONS" default:"5"`
	ConMaxLifeTime time.Duration `envconfig:"DB_CONMAX_LIFE_TIME" default:"5m"`
}

type MinioConfig struct {
	Endpoint                  string        `envconfig:"MINIO_ENDPOINT" required:"true"`
	BucketName                string        `envconfig:"MINIO_BUCKET_NAME" required:"true"`
	AccessKey                 string        `envconfig:"MINIO_ACCESS_KEY" required:"true"`
	SecretKey                 string        `envconfig:"MINIO_SECRET_KEY" required:"true"`
	UseSSL                    bool          `envconfig:"MINIO_USE_SSL" default:"false"`
	DownloadSignedURLDuration time.Duration `envconfig:"MINIO_DOWNLOAD_SIGNED_URL_DURATION" default:"15m"`
}

type NATSConfig struct {
	URL           string `envconfig:"NATS_URL" required:"true"`
	StreamName    string `envconfig:"NATS_STREAM_NAME" required:"true"`
	ConsumerName  string `envconfig:"NATS_CONSUMER_NAME" default:"fileflow-worker"`
	EventSubject  string `envconfig:"NATS_EVENT_SUBJECT" default:"storage.events"`
	PublishPrefix string `envconfig:"NATS_PUBLISH_PREFIX" default:"fileflow.events"`
	DeliverGroup  string `envconfig:"NATS_DELIVER_GROUP" default:"fileflow"`
}

type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" required:"true"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

type UploadConfig struct {
	SingleUploadMaxSize int64         `envconfig:"UPLOAD_SINGLE_UPLOAD_FILE_SIZE" default:"10485760"`      // 10MB
	MultipartMaxSize    int64         `envconfig:"UPLOAD_MULTIPART_UPLOAD_FILE_SIZE" default:"5368709120"` // 5GB
	DefaultPartSize     int64         `envconfig:"UPLOAD_PART_SIZE" default:"10485760"`                    // 10MB
	SessionTTL          time.Duration `envconfig:"UPLOAD_SESSION_TTL" default:"30m"`
	PresignTTL          time.Duration `envconfig:"UPLOAD_PRESIGN_TTL" default:"15m"`
	FinalizeGrace       time.Duration `envconfig:"UPLOAD_FINALIZE_GRACE" default:"5m"`
}

type DownloadConfig struct {
	FetchTimeout time.Duration `envconfig:"DOWNLOAD_FETCH_TIMEOUT" default:"5m"`
}

type OutboxConfig struct {
	Enabled      bool          `envconfig:"OUTBOX_ENABLED" default:"true"`
	Interval     time.Duration `envconfig:"OUTBOX_INTERVAL" default:"30s"`
	BatchSize    int           `envconfig:"OUTBOX_BATCH_SIZE" default:"100"`
	MaxRetries   int           `envconfig:"OUTBOX_MAX_RETRIES" default:"5"`
	RetryBackoff time.Duration `envconfig:"OUTBOX_RETRY_BACKOFF" default:"1m"`
	StaleAfter   time.Duration `envconfig:"OUTBOX_STALE_AFTER" default:"10m"`
	LockLease    time.Duration `envconfig:"OUTBOX_LOCK_LEASE" default:"1m"`
}

type WebhookConfig struct {
	Enabled   bool          `envconfig:"WEBHOOK_ENABLED" default:"true"`
	Interval  time.Duration `envconfig:"WEBHOOK_INTERVAL" default:"30s"`
	BatchSize int           `envconfig:"WEBHOOK_BATCH_SIZE" default:"50"`
	Timeout   time.Duration `envconfig:"WEBHOOK_TIMEOUT" default:"10s"`
}

type RecoveryConfig struct {
	Enabled            bool          `envconfig:"RECOVERY_ENABLED" default:"true"`
	Interval           time.Duration `envconfig:"RECOVERY_INTERVAL" default:"5m"`
	BatchSize          int           `envconfig:"RECOVERY_BATCH_SIZE" default:"100"`
	DownloadStaleAfter time.Duration `envconfig:"RECOVERY_DOWNLOAD_STALE_AFTER" default:"15m"`
	DownloadMaxRetries int           `envconfig:"RECOVERY_DOWNLOAD_MAX_RETRIES" default:"3"`
}

func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
