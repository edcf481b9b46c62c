package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
filestore:
  client_id: "cid"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "cid", cfg.FileStore.ClientID)

	// normalize补全的默认值
	assert.Equal(t, "https://api.dropbox.com/oauth2/token", cfg.FileStore.TokenURL)
	assert.Equal(t, "https://www.googleapis.com/upload/youtube/v3", cfg.YouTube.UploadURL)
	assert.Equal(t, 3, cfg.YouTube.MaxAttempts)
	assert.Equal(t, 5*time.Second, cfg.YouTube.RetryBackoff)
	assert.Equal(t, 250, cfg.Transform.MaxSizeMB)
	assert.Greater(t, cfg.Worker.QueueCapacity, 0)
	assert.Greater(t, int64(cfg.Webhook.Timeout), int64(0))
}

func TestLoadExplicitValuesWin(t *testing.T) {
	path := writeConfig(t, `
youtube:
  max_attempts: 5
  retry_backoff: 1s
transform:
  max_size_mb: 100
redcircle:
  poll_deadline: 20m
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.YouTube.MaxAttempts)
	assert.Equal(t, time.Second, cfg.YouTube.RetryBackoff)
	assert.Equal(t, 100, cfg.Transform.MaxSizeMB)
	assert.Equal(t, 20*time.Minute, cfg.RedCircle.PollDeadline)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestGlobalConfig(t *testing.T) {
	cfg := &Config{}
	SetGlobalConfig(cfg)
	assert.Same(t, cfg, GetGlobalConfig())
}
