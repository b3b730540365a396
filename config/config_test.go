package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoad_Defaults_DevMode(t *testing.T) {
	cfg, err := Load(nil, envOf(map[string]string{"VACATION_DEV_MODE": "true"}))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "vacations.db", cfg.DBPath)
	assert.False(t, cfg.Seed)
	assert.Equal(t, time.Hour, cfg.ProvisionInterval)
	assert.True(t, cfg.AllowAnyOrigin)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.NotEmpty(t, cfg.JWTSecret, "dev mode generates a secret")
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	env := envOf(map[string]string{
		"VACATION_PORT":  "9000",
		"VACATION_DB":    "/tmp/env.db",
		"JWT_SECRET_KEY": "k",
		"CORS_ORIGINS":   "https://a.example, https://b.example,https://a.example",
	})

	cfg, err := Load([]string{"-port", "7000", "-seed", "-provision-interval", "5m"}, env)
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, "/tmp/env.db", cfg.DBPath)
	assert.True(t, cfg.Seed)
	assert.Equal(t, 5*time.Minute, cfg.ProvisionInterval)
	assert.Equal(t, "k", cfg.JWTSecret)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.False(t, cfg.AllowAnyOrigin)
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	_, err := Load(nil, envOf(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET_KEY")
}

func TestLoad_ProductionRejectsWildcardCORS(t *testing.T) {
	_, err := Load([]string{"-cors-origins", "*"}, envOf(map[string]string{"JWT_SECRET_KEY": "k"}))
	require.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	_, err := Load(nil, envOf(map[string]string{"VACATION_DEV_MODE": "sure"}))
	assert.Error(t, err)

	_, err = Load(nil, envOf(map[string]string{"VACATION_DEV_MODE": "1", "VACATION_PORT": "http"}))
	assert.Error(t, err)

	_, err = Load([]string{"-unknown"}, envOf(map[string]string{"VACATION_DEV_MODE": "1"}))
	assert.Error(t, err)
}
