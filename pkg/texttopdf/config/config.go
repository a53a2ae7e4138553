package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/tendant/texttopdf/pkg/texttopdf"
	"github.com/tendant/texttopdf/pkg/texttopdf/logging"
	fsstorage "github.com/tendant/texttopdf/pkg/texttopdf/storage/fs"
	memorystorage "github.com/tendant/texttopdf/pkg/texttopdf/storage/memory"
	s3storage "github.com/tendant/texttopdf/pkg/texttopdf/storage/s3"
)

// Option applies configuration to a Config instance.
type Option func(*Config) error

// Load constructs a Config by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*Config, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() Config {
	return Config{
		Port:           "8080",
		Environment:    "development",
		StorageBackend: "memory",
		S3: S3Config{
			Region: "us-east-1",
		},
		Log: LogConfig{
			Level:       "info",
			Format:      "json",
			ServiceName: "texttopdf",
		},
		PDF: PDFConfig{
			Compress: true,
		},
	}
}

// Config represents the converter configuration
type Config struct {
	Port         string `env:"PORT" env-default:"8080"`
	Environment  string `env:"ENVIRONMENT" env-default:"development"` // development, production, testing
	WebhookToken string `env:"WEBHOOK_TOKEN"`

	// StorageBackend is "memory", "fs" or "s3"
	StorageBackend string `env:"STORAGE_BACKEND" env-default:"memory"`

	FS  FSConfig
	S3  S3Config
	Log LogConfig
	PDF PDFConfig
}

// FSConfig configures the filesystem backend
type FSConfig struct {
	BaseDir       string `env:"FS_BASE_DIR" env-default:"./data/storage"`
	CreateBuckets bool   `env:"FS_CREATE_BUCKETS" env-default:"true"`
}

// S3Config configures the S3 backend
type S3Config struct {
	Region               string   `env:"AWS_REGION" env-default:"us-east-1"`
	Endpoint             string   `env:"AWS_S3_ENDPOINT"`
	AccessKeyID          string   `env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey      string   `env:"AWS_SECRET_ACCESS_KEY"`
	UsePathStyle         bool     `env:"AWS_S3_USE_PATH_STYLE" env-default:"false"`
	AllowedBuckets       []string `env:"AWS_S3_ALLOWED_BUCKETS" env-separator:","`
	EnableSSE            bool     `env:"AWS_S3_ENABLE_SSE" env-default:"false"`
	SSEAlgorithm         string   `env:"AWS_S3_SSE_ALGORITHM"`
	SSEKMSKeyID          string   `env:"AWS_S3_SSE_KMS_KEY_ID"`
	ChecksumWhenRequired bool     `env:"AWS_S3_CHECKSUM_WHEN_REQUIRED" env-default:"false"`
}

// LogConfig configures logging
type LogConfig struct {
	Level       string `env:"LOG_LEVEL" env-default:"info"`
	Format      string `env:"LOG_FORMAT" env-default:"json"`
	ServiceName string `env:"SERVICE_NAME" env-default:"texttopdf"`
}

// PDFConfig configures rendering
type PDFConfig struct {
	Compress bool `env:"PDF_COMPRESS" env-default:"true"`
}

// WithEnv reads every field from the process environment, falling back to
// the env-default tags. Apply it before options that override single fields.
func WithEnv() Option {
	return func(c *Config) error {
		if err := cleanenv.ReadEnv(c); err != nil {
			return fmt.Errorf("failed to read environment: %w", err)
		}
		return nil
	}
}

// WithStorageBackend selects the storage backend
func WithStorageBackend(backend string) Option {
	return func(c *Config) error {
		c.StorageBackend = backend
		return nil
	}
}

// WithFSBaseDir selects the filesystem backend rooted at dir
func WithFSBaseDir(dir string) Option {
	return func(c *Config) error {
		c.StorageBackend = "fs"
		c.FS.BaseDir = dir
		return nil
	}
}

// WithWebhookToken sets the bearer token required by the webhook
func WithWebhookToken(token string) Option {
	return func(c *Config) error {
		c.WebhookToken = token
		return nil
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case "memory":
	case "fs":
		if c.FS.BaseDir == "" {
			return errors.New("fs base directory is required when using the fs backend")
		}
	case "s3":
		if (c.S3.AccessKeyID == "") != (c.S3.SecretAccessKey == "") {
			return errors.New("access key id and secret access key must be set together")
		}
		if c.S3.EnableSSE && c.S3.SSEAlgorithm != "AES256" && c.S3.SSEAlgorithm != "aws:kms" {
			return fmt.Errorf("sse algorithm must be 'AES256' or 'aws:kms', got %q", c.S3.SSEAlgorithm)
		}
	default:
		return fmt.Errorf("storage_backend must be 'memory', 'fs' or 's3', got %q", c.StorageBackend)
	}

	return nil
}

// BuildBuckets creates the configured storage backend
func (c *Config) BuildBuckets() (texttopdf.Buckets, error) {
	switch c.StorageBackend {
	case "memory":
		return memorystorage.NewBuckets(true), nil
	case "fs":
		buckets, err := fsstorage.New(fsstorage.Config{
			BaseDir:       c.FS.BaseDir,
			CreateBuckets: c.FS.CreateBuckets,
		})
		if err != nil {
			return nil, err
		}
		return buckets, nil
	case "s3":
		buckets, err := s3storage.New(s3storage.Config{
			Region:               c.S3.Region,
			AccessKeyID:          c.S3.AccessKeyID,
			SecretAccessKey:      c.S3.SecretAccessKey,
			Endpoint:             c.S3.Endpoint,
			UsePathStyle:         c.S3.UsePathStyle,
			AllowedBuckets:       trimAll(c.S3.AllowedBuckets),
			EnableSSE:            c.S3.EnableSSE,
			SSEAlgorithm:         c.S3.SSEAlgorithm,
			SSEKMSKeyID:          c.S3.SSEKMSKeyID,
			ChecksumWhenRequired: c.S3.ChecksumWhenRequired,
		})
		if err != nil {
			return nil, err
		}
		return buckets, nil
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", c.StorageBackend)
	}
}

// BuildLogger creates the configured logger
func (c *Config) BuildLogger() *slog.Logger {
	return c.buildLogger(nil)
}

func (c *Config) buildLogger(out io.Writer) *slog.Logger {
	return logging.New(logging.Config{
		Level:       c.Log.Level,
		Format:      c.Log.Format,
		Output:      out,
		ServiceName: c.Log.ServiceName,
		Environment: c.Environment,
	})
}

// BuildConverter wires storage, renderer and logger into a Converter
func (c *Config) BuildConverter(logger *slog.Logger) (*texttopdf.Converter, error) {
	buckets, err := c.BuildBuckets()
	if err != nil {
		return nil, fmt.Errorf("failed to build storage backend %s: %w", c.StorageBackend, err)
	}

	return texttopdf.New(
		texttopdf.WithBuckets(buckets),
		texttopdf.WithRenderer(texttopdf.NewRenderer(texttopdf.WithCompression(c.PDF.Compress))),
		texttopdf.WithLogger(logger),
	)
}

func trimAll(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
