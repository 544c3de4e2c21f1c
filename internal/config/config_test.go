package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("KAFKA_BROKERS", " kafka:9092, ,kafka2:9092 ")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8081", cfg.HTTPAddr)
	require.Equal(t, BackendPostgres, cfg.DataBackend)
	require.Equal(t, 24*time.Hour, cfg.JWTTTL)
	require.Equal(t, time.Minute, cfg.CatalogTTL)
	require.Equal(t, []string{"kafka:9092", "kafka2:9092"}, cfg.KafkaBrokers)
	require.Equal(t, 4, cfg.ReconcilerWorkers)
}

func TestLoad_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := Load()
	require.Error(t, err)
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	t.Setenv("JWT_SECRET", "x")
	t.Setenv("DATA_BACKEND", "mongo")
	_, err := Load()
	require.ErrorContains(t, err, "DATA_BACKEND")
}

func TestLoad_BadDuration(t *testing.T) {
	t.Setenv("JWT_SECRET", "x")
	t.Setenv("JWT_TTL", "soon")
	_, err := Load()
	require.ErrorContains(t, err, "JWT_TTL")
}
