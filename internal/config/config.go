package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EnvFiles are loaded in order; values already in the environment win
var EnvFiles = []string{"reddit.env", ".env"}

// DefaultUserAgent is a desktop Chrome user agent
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// runBudget bounds one login and reply run: every bounded wait plus the
// slowest typing and jitter, rounded up
const runBudget = 10 * time.Minute

// Config is built once at startup and passed down explicitly
type Config struct {
	Username string
	Password string

	Port        string
	LogLevel    string
	LogPretty   bool
	LogFile     string
	ArtifactDir string
	DebugProxy  bool // relay /sessions/{id}/ws to the live browser

	Backend        string // local or docker
	BrowserBin     string
	Headless       bool
	NoSandbox      bool
	SlowMotion     time.Duration
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int
	LoginSubmit    string // selector or keys

	MinWait      time.Duration
	MaxWait      time.Duration
	ReplyConfirm time.Duration

	RetryEnabled bool
	MaxRetries   int

	MaxConcurrentSessions int64
	RateLimitPerHour      int
	RateLimitBurst        int
}

// LoadEnvFiles reads the env files that exist and reports which were found
func LoadEnvFiles() []string {
	var loaded []string
	for _, f := range EnvFiles {
		if err := godotenv.Load(f); err == nil {
			loaded = append(loaded, f)
		}
	}
	return loaded
}

// Load reads the configuration from the environment
func Load() (*Config, error) {
	p := parser{}
	cfg := &Config{
		Username: strings.TrimSpace(os.Getenv("REDDIT_USERNAME")),
		Password: os.Getenv("REDDIT_PASSWORD"),

		Port:        p.str("PORT", "3000"),
		LogLevel:    p.str("LOG_LEVEL", "info"),
		LogPretty:   p.boolean("LOG_PRETTY", true),
		LogFile:     p.str("LOG_FILE", ""),
		ArtifactDir: p.str("ARTIFACT_DIR", "."),
		DebugProxy:  p.boolean("DEBUG_PROXY", false),

		Backend:        p.str("BROWSER_BACKEND", "local"),
		BrowserBin:     p.str("BROWSER_BIN", ""),
		Headless:       p.boolean("HEADLESS", false),
		NoSandbox:      p.boolean("NO_SANDBOX", true),
		SlowMotion:     p.millis("SLOW_MOTION_MS", 100),
		UserAgent:      p.str("USER_AGENT", DefaultUserAgent),
		ViewportWidth:  p.integer("VIEWPORT_WIDTH", 0),
		ViewportHeight: p.integer("VIEWPORT_HEIGHT", 0),
		LoginSubmit:    p.str("LOGIN_SUBMIT", "selector"),

		MinWait:      p.millis("MIN_WAIT_MS", 5000),
		MaxWait:      p.millis("MAX_WAIT_MS", 15000),
		ReplyConfirm: p.millis("REPLY_CONFIRM_TIMEOUT_MS", 0),

		RetryEnabled: p.boolean("RETRY_ENABLED", false),
		MaxRetries:   p.integer("MAX_RETRIES", 5),

		MaxConcurrentSessions: int64(p.integer("MAX_CONCURRENT_SESSIONS", 0)),
		RateLimitPerHour:      p.integer("RATE_LIMIT_PER_HOUR", 0),
		RateLimitBurst:        p.integer("RATE_LIMIT_BURST", 10),
	}

	if len(p.errs) > 0 {
		return nil, errors.Join(p.errs...)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required values and ranges
func (c *Config) Validate() error {
	var errs []error

	if c.Username == "" || c.Password == "" {
		errs = append(errs, errors.New("REDDIT_USERNAME and REDDIT_PASSWORD must be set"))
	}
	if c.Backend != "local" && c.Backend != "docker" {
		errs = append(errs, fmt.Errorf("BROWSER_BACKEND must be local or docker, got %q", c.Backend))
	}
	if c.LoginSubmit != "selector" && c.LoginSubmit != "keys" {
		errs = append(errs, fmt.Errorf("LOGIN_SUBMIT must be selector or keys, got %q", c.LoginSubmit))
	}
	if c.MinWait < 0 || c.MaxWait < c.MinWait {
		errs = append(errs, fmt.Errorf("wait window [%v, %v] is invalid", c.MinWait, c.MaxWait))
	}
	if c.MaxRetries < 1 {
		errs = append(errs, fmt.Errorf("MAX_RETRIES must be at least 1, got %d", c.MaxRetries))
	}
	if (c.ViewportWidth == 0) != (c.ViewportHeight == 0) {
		errs = append(errs, errors.New("VIEWPORT_WIDTH and VIEWPORT_HEIGHT must be set together"))
	}

	return errors.Join(errs...)
}

// RequestTimeout is how long a reply request may hold its connection. It
// covers every attempt when retries are enabled.
func (c *Config) RequestTimeout() time.Duration {
	if !c.RetryEnabled {
		return runBudget
	}
	return time.Duration(c.MaxRetries) * runBudget
}

// parser collects every malformed variable instead of stopping at the first
type parser struct {
	errs []error
}

func (p *parser) str(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func (p *parser) integer(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid integer %q", key, v))
		return def
	}
	return n
}

func (p *parser) boolean(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid boolean %q", key, v))
		return def
	}
	return b
}

func (p *parser) millis(key string, def int) time.Duration {
	return time.Duration(p.integer(key, def)) * time.Millisecond
}
