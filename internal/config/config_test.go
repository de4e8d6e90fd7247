package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"NETWORK_NAME", "SERVER_PORT", "JWT_SECRET", "ACCESS_TOKEN_MAX_AGE",
		"REDIS_URL", "ACTIVITY_STREAM", "WS_ALLOWED_ORIGINS",
		"R2_ACCOUNT_ID", "R2_ACCESS_KEY_ID", "R2_SECRET_ACCESS_KEY", "R2_BUCKET_NAME", "R2_PUBLIC_URL",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "Twitter", cfg.NetworkName)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 900, cfg.AccessTokenMaxAge)
	assert.Equal(t, "stream:activity", cfg.ActivityStream)
	assert.Empty(t, cfg.RedisURL)
	assert.Empty(t, cfg.WSAllowedOrigins)
	assert.False(t, cfg.StorageEnabled())
}

func TestLoadConfig_EnvFile(t *testing.T) {
	clearEnv(t)
	// godotenv.Load never overrides variables that are already set, even to "".
	for _, k := range []string{"NETWORK_NAME", "ACCESS_TOKEN_MAX_AGE", "SERVER_PORT"} {
		require.NoError(t, os.Unsetenv(k))
	}
	t.Cleanup(func() {
		os.Unsetenv("NETWORK_NAME")
		os.Unsetenv("ACCESS_TOKEN_MAX_AGE")
	})

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("NETWORK_NAME=Mastodon\nACCESS_TOKEN_MAX_AGE=-3\n"), 0o600))
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("WS_ALLOWED_ORIGINS", " https://app.example.com, ,http://localhost:5173 ")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "Mastodon", cfg.NetworkName)
	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, []string{"https://app.example.com", "http://localhost:5173"}, cfg.WSAllowedOrigins)
	assert.Equal(t, 900, cfg.AccessTokenMaxAge, "non-positive max age falls back to default")
}

func TestStorageEnabled(t *testing.T) {
	cfg := &Config{
		R2AccountID:       "acc",
		R2AccessKeyID:     "key",
		R2SecretAccessKey: "secret",
		R2BucketName:      "bucket",
	}
	assert.False(t, cfg.StorageEnabled())
	cfg.R2PublicURL = "https://cdn.example.com"
	assert.True(t, cfg.StorageEnabled())
}
