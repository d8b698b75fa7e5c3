package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so the host environment can't leak in
func clearEnv(t *testing.T) {
	for _, key := range []string{
		"PORT", "LOG_LEVEL", "LOG_PRETTY", "LOG_FILE", "ARTIFACT_DIR", "BROWSER_BACKEND",
		"BROWSER_BIN", "HEADLESS", "NO_SANDBOX", "SLOW_MOTION_MS", "USER_AGENT",
		"VIEWPORT_WIDTH", "VIEWPORT_HEIGHT", "LOGIN_SUBMIT", "MIN_WAIT_MS", "MAX_WAIT_MS",
		"REPLY_CONFIRM_TIMEOUT_MS", "RETRY_ENABLED", "MAX_RETRIES", "MAX_CONCURRENT_SESSIONS",
		"RATE_LIMIT_PER_HOUR", "RATE_LIMIT_BURST", "DEBUG_PROXY",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("REDDIT_USERNAME", "alice")
	t.Setenv("REDDIT_PASSWORD", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "local", cfg.Backend)
	assert.False(t, cfg.Headless)
	assert.True(t, cfg.NoSandbox)
	assert.Equal(t, 100*time.Millisecond, cfg.SlowMotion)
	assert.Equal(t, 5*time.Second, cfg.MinWait)
	assert.Equal(t, 15*time.Second, cfg.MaxWait)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.False(t, cfg.RetryEnabled)
	assert.Equal(t, DefaultUserAgent, cfg.UserAgent)
	assert.Zero(t, cfg.ReplyConfirm)
	assert.Zero(t, cfg.MaxConcurrentSessions)
	assert.False(t, cfg.DebugProxy)
	assert.Equal(t, 10*time.Minute, cfg.RequestTimeout())
}

func TestRequestTimeoutCoversRetries(t *testing.T) {
	cfg := &Config{RetryEnabled: true, MaxRetries: 5}
	assert.Equal(t, 50*time.Minute, cfg.RequestTimeout())

	cfg.RetryEnabled = false
	assert.Equal(t, 10*time.Minute, cfg.RequestTimeout())
}

func TestLoadMissingCredentials(t *testing.T) {
	clearEnv(t)
	t.Setenv("REDDIT_USERNAME", "alice")
	t.Setenv("REDDIT_PASSWORD", "")

	_, err := Load()
	assert.ErrorContains(t, err, "REDDIT_USERNAME and REDDIT_PASSWORD must be set")
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("REDDIT_USERNAME", "alice")
	t.Setenv("REDDIT_PASSWORD", "secret")
	t.Setenv("PORT", "8080")
	t.Setenv("BROWSER_BACKEND", "docker")
	t.Setenv("HEADLESS", "true")
	t.Setenv("MIN_WAIT_MS", "10")
	t.Setenv("MAX_WAIT_MS", "20")
	t.Setenv("VIEWPORT_WIDTH", "1280")
	t.Setenv("VIEWPORT_HEIGHT", "800")
	t.Setenv("LOGIN_SUBMIT", "keys")
	t.Setenv("DEBUG_PROXY", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "docker", cfg.Backend)
	assert.True(t, cfg.Headless)
	assert.Equal(t, 10*time.Millisecond, cfg.MinWait)
	assert.Equal(t, 20*time.Millisecond, cfg.MaxWait)
	assert.Equal(t, 1280, cfg.ViewportWidth)
	assert.Equal(t, "keys", cfg.LoginSubmit)
	assert.True(t, cfg.DebugProxy)
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("REDDIT_USERNAME", "alice")
	t.Setenv("REDDIT_PASSWORD", "secret")
	t.Setenv("MAX_RETRIES", "many")
	t.Setenv("HEADLESS", "sometimes")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAX_RETRIES")
	assert.Contains(t, err.Error(), "HEADLESS")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Username:    "a",
			Password:    "b",
			Backend:     "local",
			LoginSubmit: "selector",
			MinWait:     time.Second,
			MaxWait:     2 * time.Second,
			MaxRetries:  1,
		}
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{name: "unknown backend", mutate: func(c *Config) { c.Backend = "k8s" }, want: "BROWSER_BACKEND"},
		{name: "unknown submit", mutate: func(c *Config) { c.LoginSubmit = "click" }, want: "LOGIN_SUBMIT"},
		{name: "inverted wait window", mutate: func(c *Config) { c.MaxWait = 0 }, want: "wait window"},
		{name: "no attempts", mutate: func(c *Config) { c.MaxRetries = 0 }, want: "MAX_RETRIES"},
		{name: "half viewport", mutate: func(c *Config) { c.ViewportWidth = 100 }, want: "VIEWPORT"},
	}

	require.NoError(t, valid().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.ErrorContains(t, c.Validate(), tt.want)
		})
	}
}

func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "reddit.env")
	require.NoError(t, os.WriteFile(envFile, []byte("REPLYBOT_TEST_VALUE=from-file\n"), 0644))

	old := EnvFiles
	EnvFiles = []string{envFile, filepath.Join(dir, "missing.env")}
	t.Cleanup(func() {
		EnvFiles = old
		os.Unsetenv("REPLYBOT_TEST_VALUE")
	})

	loaded := LoadEnvFiles()
	assert.Equal(t, []string{envFile}, loaded)
	assert.Equal(t, "from-file", os.Getenv("REPLYBOT_TEST_VALUE"))
}
