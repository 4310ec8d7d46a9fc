package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "file", cfg.Storage.Driver)
	assert.Equal(t, 5432, cfg.Storage.Postgres.Port)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, 100*time.Millisecond, cfg.Latency.Min)
	assert.Equal(t, 500*time.Millisecond, cfg.Latency.Max)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("STORAGE_DRIVER", "redis")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("LATENCY_MAX_MS", "0")
	t.Setenv("DB_PORT", "not-a-number")
	t.Setenv("REQUEST_TIMEOUT", "5s")

	cfg := Load()

	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, "redis", cfg.Storage.Driver)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Zero(t, cfg.Latency.Max)
	assert.Equal(t, 5432, cfg.Storage.Postgres.Port)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("MONGO_DB_NAME=fromfile\n"), 0o600))
	t.Setenv("MONGO_DB_NAME", "")
	os.Unsetenv("MONGO_DB_NAME")

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "fromfile", Load().Storage.MongoDB)
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")))
}
