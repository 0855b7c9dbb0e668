package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"APP_ENV", "PORT", "MONGODB_URI", "DB_DRIVER", "DATABASE_URL",
	"BOLT_PATH", "CACHE_DRIVER", "REDIS_URL", "LOG_LEVEL",
}

// clearEnv unsets every variable Load reads and restores them after the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, ":3000", cfg.Address())
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, DriverMongo, cfg.Database.Driver)
	assert.Equal(t, "mongodb://localhost:27017/appointment-scheduler", cfg.Database.MongoURI)
	assert.Equal(t, CacheNone, cfg.Cache.Driver)
	assert.True(t, cfg.Monitoring.Enabled)
	assert.Equal(t, "/metrics", cfg.Monitoring.MetricsPath)
	assert.Equal(t, []string{"*"}, cfg.Security.AllowedOrigins)
}

func TestLoadPrecedence(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	writeFile(t, dir, "config.yaml", `
server:
  port: 8080
  read_timeout: 3s
database:
  driver: bolt
  bolt_path: /var/lib/scheduler/data.db
cache:
  driver: memory
log:
  level: warn
`)
	writeFile(t, dir, ".env", "PORT=9090\nLOG_LEVEL=debug\n")
	t.Setenv("APP_ENV", "Production")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 9090, cfg.Server.Port, ".env overrides the file")
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, DriverBolt, cfg.Database.Driver)
	assert.Equal(t, "/var/lib/scheduler/data.db", cfg.Database.BoltPath)
	assert.Equal(t, CacheMemory, cfg.Cache.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadProcessEnvBeatsDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, ".env", "MONGODB_URI=mongodb://from-dotenv:27017/db\n")
	t.Setenv("MONGODB_URI", "mongodb://from-env:27017/db")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "mongodb://from-env:27017/db", cfg.Database.MongoURI)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown environment", map[string]string{"APP_ENV": "staging"}},
		{"non numeric port", map[string]string{"PORT": "abc"}},
		{"unknown driver", map[string]string{"DB_DRIVER": "sqlite"}},
		{"postgres without url", map[string]string{"DB_DRIVER": "postgres"}},
		{"redis without url", map[string]string{"CACHE_DRIVER": "redis"}},
		{"unknown cache", map[string]string{"CACHE_DRIVER": "memcached"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load(t.TempDir())
			assert.Error(t, err)
		})
	}
}
