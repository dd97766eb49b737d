package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.env")

	configData := []byte(`
PORT=8080
ENVIRONMENT=development
VERSION=1.0.0
BASE_URL=https://postboard.example.com
CACHE_TTL=90s
POSTGRES_HOST=localhost
POSTGRES_USER=testuser
POSTGRES_PASSWORD=testpassword
POSTGRES_DB=testdb
MAIL_HOST=smtp.example.com
MAIL_PORT=587
MAIL_USER=testuser@example.com
MAIL_PASSWORD=testpassword
MAIL_SENDER=sender@example.com
RABBITMQ_HOST=rabbitmq.example.com
RABBITMQ_USER=testuser
RABBITMQ_PASSWORD=testpassword
LIMITER_ENABLED=false
`)
	require.NoError(t, os.WriteFile(path, configData, 0o600))

	t.Setenv("POSTGRES_DB", "fromenv")

	config, err := loadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "8080", config.Port)
	assert.Equal(t, "development", config.Environment)
	assert.Equal(t, "1.0.0", config.Version)
	assert.Equal(t, "https://postboard.example.com", config.BaseURL)
	assert.Equal(t, 90*time.Second, config.CacheTTL)
	assert.Equal(t, "localhost", config.DB.Host)
	assert.Equal(t, "5432", config.DB.Port)
	assert.Equal(t, "testuser", config.DB.User)
	assert.Equal(t, "testpassword", config.DB.Password)
	assert.Equal(t, "fromenv", config.DB.Name)
	assert.Equal(t, 15*time.Minute, config.DB.MaxIdleTime)
	assert.Equal(t, "smtp.example.com", config.Mail.Host)
	assert.Equal(t, 587, config.Mail.Port)
	assert.Equal(t, "testuser@example.com", config.Mail.User)
	assert.Equal(t, "testpassword", config.Mail.Password)
	assert.Equal(t, "sender@example.com", config.Mail.Sender)
	assert.Equal(t, "rabbitmq.example.com", config.RabbitMQ.Host)
	assert.Equal(t, "testuser", config.RabbitMQ.User)
	assert.Equal(t, "testpassword", config.RabbitMQ.Password)
	assert.False(t, config.Limiter.Enabled)
	assert.Equal(t, "/v1/users/login", config.SigninPath)
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	config, err := loadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "4000", config.Port)
	assert.Equal(t, 5*time.Minute, config.CacheTTL)
	assert.True(t, config.Limiter.Enabled)
	assert.Equal(t, 2.0, config.Limiter.RPS)
}
