package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.HTTP.Host)
	assert.Equal(t, uint16(8080), cfg.HTTP.Port)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)
	assert.Equal(t, "logbook", cfg.Mongo.Database)
	assert.Equal(t, 4, cfg.Pipeline.Workers)
	assert.Equal(t, 256, cfg.Pipeline.QueueSize)
	assert.Equal(t, 5*time.Minute, cfg.Pipeline.TranscriptionTimeout)
	assert.Equal(t, 2*time.Minute, cfg.Pipeline.EnrichmentTimeout)
	assert.False(t, cfg.RabbitMQ.Enabled)
	assert.Equal(t, "claude-sonnet-4-5", cfg.AI.Model)
	assert.Equal(t, 16000, cfg.ASR.SampleRate)
	assert.Equal(t, "logbook-files", cfg.Storage.Bucket)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
http:
  port: 9090
mongo:
  database: logbook_test
pipeline:
  workers: 8
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, uint16(9090), cfg.HTTP.Port)
	assert.Equal(t, "logbook_test", cfg.Mongo.Database)
	assert.Equal(t, 8, cfg.Pipeline.Workers)
	// untouched keys fall back to defaults
	assert.Equal(t, "0.0.0.0", cfg.HTTP.Host)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "7070")
	t.Setenv("MONGODB_URI", "mongodb://db:27017")
	t.Setenv("RABBITMQ_URI", "amqp://rabbit:5672/")
	t.Setenv("JWT_SECRET", "supersecret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, uint16(7070), cfg.HTTP.Port)
	assert.Equal(t, "mongodb://db:27017", cfg.Mongo.URI)
	assert.True(t, cfg.RabbitMQ.Enabled, "setting the broker URI enables it")
	assert.Equal(t, "amqp://rabbit:5672/", cfg.RabbitMQ.URI)
	assert.Equal(t, "supersecret", cfg.Auth.JWTSecret)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load("/does/not/exist.yaml")
	assert.Error(t, err)
}
