package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettings(t *testing.T) {
	var s Settings
	c := New(&s, WithFile("config.yaml", "testdata"))
	require.NoError(t, c.Load())

	assert.Equal(t, "http://127.0.0.1:9000/api", s.Client.BaseURL)
	assert.Equal(t, 8*time.Second, s.Client.Cooldown)
	assert.Equal(t, "/auth/refresh", s.Client.RefreshPath)
	assert.Equal(t, []string{"access_token", "refresh_token"}, s.Client.Cookies.Names)
	assert.Equal(t, []string{"example.com", ".example.com"}, s.Client.Cookies.Domains)
	assert.Equal(t, 2, s.Backoff.MaxRetries)
	assert.Equal(t, time.Second, s.Backoff.BaseDelay)
	assert.Equal(t, "debug", s.Log.Level)
	assert.Equal(t, 15*time.Minute, s.Server.JWT.AccessTokenTTL)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("PORTFOLIOHUB_SERVER_ADDR", ":9999")
	t.Setenv("PORTFOLIOHUB_CLIENT_COOLDOWN", "6s")

	var s Settings
	require.NoError(t, New(&s, WithFile("config.yaml", "testdata")).Load())

	assert.Equal(t, ":9999", s.Server.Addr)
	assert.Equal(t, 6*time.Second, s.Client.Cooldown)
}

func TestMissingFile(t *testing.T) {
	var s Settings
	err := New(&s, WithFile("absent.yaml", t.TempDir())).Load()
	assert.Error(t, err)
}

func TestValidation(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server:\n  jwt:\n    secret: short\n"), 0o600))

	var s Settings
	err := New(&s, WithFile("config.yaml", dir)).Load()
	assert.Error(t, err)
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	body := "server:\n  jwt:\n    secret: development-secret-please-change\nclient:\n  cooldown: 5s\n"
	require.NoError(t, os.WriteFile(file, []byte(body), 0o600))

	var s Settings
	changed := make(chan struct{}, 1)
	c := New(&s, WithFile("config.yaml", dir), WithOnChange(func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	}))
	require.NoError(t, c.Load())
	require.NoError(t, c.Watch())

	body = "server:\n  jwt:\n    secret: development-secret-please-change\nclient:\n  cooldown: 7s\n"
	require.NoError(t, os.WriteFile(file, []byte(body), 0o600))

	select {
	case <-changed:
		c.Read(func(target any) {
			assert.Equal(t, 7*time.Second, target.(*Settings).Client.Cooldown)
		})
	case <-time.After(5 * time.Second):
		t.Skip("no fsnotify event observed on this filesystem")
	}
}
