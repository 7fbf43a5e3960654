package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 5432, cfg.DBPort)
	assert.Equal(t, 60*time.Second, cfg.SweepInterval)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiration)
}

func TestLoadMalformedIntFallsBack(t *testing.T) {
	t.Setenv("RESERVATION_SWEEP_SECONDS", "not-a-number")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "0")
	t.Setenv("DB_PORT", "-1")

	cfg := Load()

	assert.Equal(t, 60*time.Second, cfg.SweepInterval)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 5432, cfg.DBPort)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("RESERVATION_SWEEP_SECONDS", "30")
	t.Setenv("SERVER_PORT", "9090")

	cfg := Load()

	assert.Equal(t, 30*time.Second, cfg.SweepInterval)
	assert.Equal(t, "9090", cfg.ServerPort)
}
