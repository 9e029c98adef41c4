package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadReadsYAMLAndEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server:\n  port: 9000\nredis:\n  address: cache:6379\n"), 0o600))
	t.Setenv("REDIS_ADDRESS", "override:6379")

	v, err := Load(dir, "config")
	require.NoError(t, err)
	assert.Equal(t, 9000, v.GetInt("server.port"))
	assert.Equal(t, "override:6379", v.GetString("redis.address"))
}

func TestLoadWithoutFile(t *testing.T) {
	v, err := Load(t.TempDir(), "missing")
	require.NoError(t, err)
	assert.NotNil(t, v)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("DOTENV_PROBE=from-file\n"), 0o600))
	t.Setenv("DOTENV_PROBE", "")
	require.NoError(t, os.Unsetenv("DOTENV_PROBE"))

	require.NoError(t, LoadDotEnv(envFile, filepath.Join(dir, "absent.env")))
	assert.Equal(t, "from-file", GetEnv("DOTENV_PROBE", "default"))
	assert.Equal(t, "default", GetEnv("DOTENV_PROBE_UNSET", "default"))
}
