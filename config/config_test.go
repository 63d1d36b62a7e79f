package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Yulian302/lfusys-wetransfer/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("WETRANSFER_API_KEY", "")
	t.Setenv("WETRANSFER_BASE_URL", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, DefaultHTTPTimeout, cfg.HTTPTimeout)
	assert.Equal(t, "https://dev.wetransfer.com/v2/authorize", cfg.AuthorizeURL())
	assert.Equal(t, "https://dev.wetransfer.com/v2/transfers", cfg.TransfersURL())
	assert.Equal(t, "https://dev.wetransfer.com/v2/boards", cfg.BoardsURL())
	assert.ErrorIs(t, cfg.ValidateAllSecrets(), apperror.ErrMissingAPIKey)
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlBody := `
api_key: from-file
base_url: http://localhost:9000/
http_timeout: 5s
breaker:
  enabled: true
  max_failures: 2
dynamodb:
  resources_table: resources
`
	require.NoError(t, os.WriteFile(path, []byte(yamlBody), 0o600))

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("WETRANSFER_API_KEY", "from-env")
	t.Setenv("WETRANSFER_BASE_URL", "")
	t.Setenv("REDIS_HOST", "localhost:6379")
	t.Setenv("BREAKER_TIMEOUT", "3s")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.APIKey)
	assert.Equal(t, "http://localhost:9000", cfg.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.True(t, cfg.BreakerConfig.Enabled)
	assert.Equal(t, uint32(2), cfg.BreakerConfig.MaxFailures)
	assert.Equal(t, 3*time.Second, cfg.BreakerConfig.Timeout)
	assert.Equal(t, "resources", cfg.DynamoDBConfig.ResourcesTableName)
	assert.Equal(t, "localhost:6379", cfg.RedisConfig.HOST)
	assert.NoError(t, cfg.ValidateAllSecrets())
}

func TestLoadConfig_BadEnv(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("HTTP_TIMEOUT", "soon")

	_, err := LoadConfig()
	assert.Error(t, err)
}
