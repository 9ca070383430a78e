package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "fern", cfg.AppName)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, "db/pg", cfg.DatabaseMigrationFolderPath)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 3004, cfg.Port)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("APP_NAME", "fern-test")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_CONN_MAX_LIFETIME", "30s")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092,broker-2:9092")
	t.Setenv("GRAPH_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "fern-test", cfg.AppName)
	assert.Equal(t, "db.internal", cfg.DatabaseHost)
	assert.Equal(t, 30*time.Second, cfg.DatabaseConnMaxLifetime)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.GraphEnabled)
}
