package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadWithEnvFile("")
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.HTTPAddress)
	require.Equal(t, "static", cfg.StaticDir)
	require.False(t, cfg.EnforceCapacity)
	require.Equal(t, "activity_roster_events", cfg.RosterTopic)
	require.Equal(t, 256, cfg.OutboxBufferSize)
	require.Equal(t, 15*time.Second, cfg.ShutdownTimeout)
	require.False(t, cfg.EventsEnabled())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("HTTP_ADDRESS", ":9999")
	t.Setenv("ENFORCE_CAPACITY", "true")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, ,kafka-2:9092")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")

	cfg, err := LoadWithEnvFile("")
	require.NoError(t, err)

	require.Equal(t, ":9999", cfg.HTTPAddress)
	require.True(t, cfg.EnforceCapacity)
	require.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	require.True(t, cfg.EventsEnabled())
	require.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
}

func TestLoadReadsDotEnvWithoutOverridingEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SEED_FILE=/etc/signup/catalog.yaml\nLOG_LEVEL=debug\n"), 0o600))
	t.Setenv("LOG_LEVEL", "warn")
	// godotenv sets SEED_FILE in the process; make sure it is cleared afterwards.
	t.Setenv("SEED_FILE", "")
	require.NoError(t, os.Unsetenv("SEED_FILE"))

	cfg, err := LoadWithEnvFile(path)
	require.NoError(t, err)

	require.Equal(t, "/etc/signup/catalog.yaml", cfg.SeedFile)
	require.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadMissingDotEnvIsFine(t *testing.T) {
	_, err := LoadWithEnvFile(filepath.Join(t.TempDir(), "nope.env"))
	require.NoError(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("OUTBOX_BUFFER_SIZE", "not-an-int")
	_, err := LoadWithEnvFile("")
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "parse env:"), err.Error())

	t.Setenv("OUTBOX_BUFFER_SIZE", "0")
	_, err = LoadWithEnvFile("")
	require.ErrorContains(t, err, "OUTBOX_BUFFER_SIZE")

	t.Setenv("OUTBOX_BUFFER_SIZE", "10")
	t.Setenv("LOG_FORMAT", "xml")
	_, err = LoadWithEnvFile("")
	require.ErrorContains(t, err, "LOG_FORMAT")
}
