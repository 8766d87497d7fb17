package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FromFile(t *testing.T) {
	// Given: a config file overriding a few keys
	path := filepath.Join(t.TempDir(), "config.yml")
	content := "log-level: debug\n" +
		"server:\n  url: http://game.local:9000\n  request-timeout: 2s\n" +
		"poll-interval: 750ms\n" +
		"identity:\n  store: redis\n  redis:\n    host: cache\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	// When: the config is loaded
	conf, err := Load(path)

	// Then: file values win and the rest falls back to defaults
	require.NoError(t, err)
	assert.Equal(t, "debug", conf.LogLevel)
	assert.Equal(t, "http://game.local:9000", conf.Server.URL)
	assert.Equal(t, 2*time.Second, conf.Server.RequestTimeout)
	assert.Equal(t, 750*time.Millisecond, conf.PollInterval)
	assert.Equal(t, 500*time.Millisecond, conf.TimerInterval)
	assert.Equal(t, IdentityStoreRedis, conf.Identity.Store)
	assert.Equal(t, "cache:6379", conf.Identity.Redis.GetRedisAddr())
}

func TestLoad_MissingFileUsesEnv(t *testing.T) {
	// Given: no config file and an env override
	t.Setenv("MOLE_SERVER_URL", "http://from-env:8000")

	// When: the config is loaded
	conf, err := Load(filepath.Join(t.TempDir(), "absent.yml"))

	// Then: env and defaults are used
	require.NoError(t, err)
	assert.Equal(t, "http://from-env:8000", conf.Server.URL)
	assert.Equal(t, time.Second, conf.PollInterval)
	assert.Equal(t, IdentityStoreMemory, conf.Identity.Store)
}

func TestLoad_RejectsUnknownStore(t *testing.T) {
	t.Setenv("MOLE_IDENTITY_STORE", "etcd")

	_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))

	require.Error(t, err)
	assert.Panics(t, func() { MustLoad(filepath.Join(t.TempDir(), "absent.yml")) })
}
