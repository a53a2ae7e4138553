package config

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	fsstorage "github.com/tendant/texttopdf/pkg/texttopdf/storage/fs"
	memorystorage "github.com/tendant/texttopdf/pkg/texttopdf/storage/memory"
	s3storage "github.com/tendant/texttopdf/pkg/texttopdf/storage/s3"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "memory", cfg.StorageBackend)
	assert.Equal(t, "us-east-1", cfg.S3.Region)
	assert.True(t, cfg.PDF.Compress)
	assert.Equal(t, "development", cfg.Environment)
}

func TestBuildLogger_Environment(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := Load(WithEnv())
	require.NoError(t, err)

	var buf bytes.Buffer
	cfg.buildLogger(&buf).Info("Bucket name", "bucket", "docs")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "production", record["env"])
	assert.Equal(t, "texttopdf", record["service"])
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "s3")
	t.Setenv("AWS_REGION", "eu-west-1")
	t.Setenv("AWS_S3_ENDPOINT", "http://localhost:9000")
	t.Setenv("AWS_S3_USE_PATH_STYLE", "true")
	t.Setenv("AWS_S3_ALLOWED_BUCKETS", "docs, uploads")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("PDF_COMPRESS", "false")
	t.Setenv("WEBHOOK_TOKEN", "secret")

	cfg, err := Load(WithEnv())
	require.NoError(t, err)
	assert.Equal(t, "s3", cfg.StorageBackend)
	assert.Equal(t, "eu-west-1", cfg.S3.Region)
	assert.Equal(t, "http://localhost:9000", cfg.S3.Endpoint)
	assert.True(t, cfg.S3.UsePathStyle)
	assert.Equal(t, []string{"docs", "uploads"}, trimAll(cfg.S3.AllowedBuckets))
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.False(t, cfg.PDF.Compress)
	assert.Equal(t, "secret", cfg.WebhookToken)
}

func TestLoad_OptionsOverrideEnv(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "memory")
	dir := t.TempDir()

	cfg, err := Load(WithEnv(), WithFSBaseDir(dir), WithWebhookToken("t"))
	require.NoError(t, err)
	assert.Equal(t, "fs", cfg.StorageBackend)
	assert.Equal(t, dir, cfg.FS.BaseDir)
	assert.Equal(t, "t", cfg.WebhookToken)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"UnknownBackend", func(c *Config) { c.StorageBackend = "gcs" }, "storage_backend must be"},
		{"FSWithoutDir", func(c *Config) { c.StorageBackend = "fs"; c.FS.BaseDir = "" }, "fs base directory is required"},
		{"HalfCredentials", func(c *Config) { c.StorageBackend = "s3"; c.S3.AccessKeyID = "id" }, "must be set together"},
		{"BadSSE", func(c *Config) { c.StorageBackend = "s3"; c.S3.EnableSSE = true; c.S3.SSEAlgorithm = "none" }, "sse algorithm"},
		{"Valid", func(c *Config) {}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBuildBuckets(t *testing.T) {
	t.Run("Memory", func(t *testing.T) {
		cfg := defaults()
		buckets, err := cfg.BuildBuckets()
		require.NoError(t, err)
		assert.IsType(t, &memorystorage.Buckets{}, buckets)

		// Memory buckets are created on demand.
		_, err = buckets.Bucket(context.Background(), "anything")
		assert.NoError(t, err)
	})

	t.Run("FS", func(t *testing.T) {
		cfg := defaults()
		cfg.StorageBackend = "fs"
		cfg.FS.BaseDir = t.TempDir()
		buckets, err := cfg.BuildBuckets()
		require.NoError(t, err)
		assert.IsType(t, &fsstorage.Buckets{}, buckets)
	})

	t.Run("S3", func(t *testing.T) {
		cfg := defaults()
		cfg.StorageBackend = "s3"
		buckets, err := cfg.BuildBuckets()
		require.NoError(t, err)
		assert.IsType(t, &s3storage.Buckets{}, buckets)
	})
}

func TestBuildConverter(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	converter, err := cfg.BuildConverter(cfg.BuildLogger())
	require.NoError(t, err)
	assert.NotNil(t, converter)
}
