package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "/data/totelink.db", cfg.DBPath)
	assert.Equal(t, "local", cfg.BlobBackend)
	assert.Equal(t, "totelink-images", cfg.MinioBucket)
	assert.False(t, cfg.MinioUseSSL)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9090")
	t.Setenv("BLOB_BACKEND", "minio")
	t.Setenv("MINIO_ENDPOINT", "minio.internal:9000")
	t.Setenv("MINIO_USE_SSL", "1")

	cfg := Load()
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "minio", cfg.BlobBackend)
	assert.Equal(t, "minio.internal:9000", cfg.MinioEndpoint)
	assert.True(t, cfg.MinioUseSSL)
}
