package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/shehryarbajwa/replybot/internal/api"
	"github.com/shehryarbajwa/replybot/internal/bot"
	"github.com/shehryarbajwa/replybot/internal/browser"
	"github.com/shehryarbajwa/replybot/internal/config"
	"github.com/shehryarbajwa/replybot/internal/logger"
	"github.com/shehryarbajwa/replybot/internal/proxy"
	"github.com/shehryarbajwa/replybot/internal/ratelimit"
	"github.com/shehryarbajwa/replybot/internal/session"
)

func main() {
	loaded := config.LoadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	logs, err := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		File:   cfg.LogFile,
		Pretty: cfg.LogPretty,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create logger")
	}
	defer logs.Close()

	appLog := logs.Component("server")
	if len(loaded) == 0 {
		appLog.Info().Msg("No env file found, using system environment variables")
	} else {
		appLog.Info().Strs("files", loaded).Msg("loaded env files")
	}
	appLog.Info().Msg("Starting reply bot...")

	launcher, cleanup, err := newLauncher(cfg, appLog)
	if err != nil {
		appLog.Fatal().Err(err).Msg("failed to create browser launcher")
	}
	defer cleanup()
	appLog.Info().Str("backend", launcher.Name()).Msg("✓ Browser launcher initialized")

	sessionMgr := session.NewManager(launcher, cfg.MaxConcurrentSessions, logs.Component("session"))
	appLog.Info().Int64("max_concurrent", cfg.MaxConcurrentSessions).Msg("✓ Session manager initialized")

	runner := newRunner(cfg, sessionMgr, logs)

	var rateLimiter *ratelimit.Limiter
	if cfg.RateLimitPerHour > 0 {
		rateLimiter = ratelimit.NewLimiter(cfg.RateLimitPerHour, cfg.RateLimitBurst)
		appLog.Info().Int("per_hour", cfg.RateLimitPerHour).Msg("✓ Rate limiter initialized")
	}

	var proxyServer *proxy.Server
	if cfg.DebugProxy {
		proxyServer = proxy.NewServer(sessionMgr, logs.Component("proxy"))
		appLog.Warn().Msg("debug proxy enabled: /sessions/{id}/ws exposes the logged-in browser")
	}

	handler := api.NewHandler(runner, sessionMgr, logs.Component("api"))
	router := handler.SetupRoutes(proxyServer, rateLimiter)

	// A reply request holds its connection for the whole run
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RequestTimeout(),
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		appLog.Info().Msgf("Reddit bot server listening at http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLog.Info().Msg("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLog.Error().Err(err).Msg("server forced to shutdown")
	}
	if n := sessionMgr.Active(); n > 0 {
		appLog.Warn().Int("sessions", n).Msg("browser sessions still running at shutdown")
	}

	appLog.Info().Msg("Server stopped cleanly")
}

func newLauncher(cfg *config.Config, log zerolog.Logger) (browser.Launcher, func(), error) {
	opts := browser.LaunchOptions{
		Headless:   cfg.Headless,
		NoSandbox:  cfg.NoSandbox,
		SlowMotion: cfg.SlowMotion,
		UserAgent:  cfg.UserAgent,
		Viewport: browser.Viewport{
			Width:  cfg.ViewportWidth,
			Height: cfg.ViewportHeight,
		},
		Bin: cfg.BrowserBin,
	}

	switch cfg.Backend {
	case "docker":
		d, err := browser.NewDockerLauncher(opts)
		if err != nil {
			return nil, nil, err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		log.Info().Msg("⏳ Ensuring Chrome image is available...")
		if err := d.EnsureImage(ctx); err != nil {
			d.Close()
			return nil, nil, fmt.Errorf("failed to ensure image: %w", err)
		}
		return d, func() { d.Close() }, nil
	default:
		return browser.NewLocalLauncher(opts), func() {}, nil
	}
}

func newRunner(cfg *config.Config, sessions bot.SessionProvider, logs *logger.Logger) bot.Runner {
	timing := bot.DefaultTiming()
	timing.ReplyConfirm = cfg.ReplyConfirm

	jitter := bot.Jitter{Min: cfg.MinWait, Max: cfg.MaxWait}

	var loginSubmit bot.SubmitStrategy
	if cfg.LoginSubmit == "keys" {
		loginSubmit = bot.KeySubmit{Advance: 3}
	}

	orch := bot.NewOrchestrator(sessions, bot.Options{
		Credentials: bot.Credentials{Username: cfg.Username, Password: cfg.Password},
		Timing:      timing,
		Jitter:      jitter,
		LoginSubmit: loginSubmit,
		Artifacts:   bot.DirStore{Dir: cfg.ArtifactDir},
	}, logs.Component("bot"))

	if !cfg.RetryEnabled {
		return orch
	}
	return &bot.Retrying{
		Next:     orch,
		Attempts: cfg.MaxRetries,
		Jitter:   jitter,
		Log:      logs.Component("retry"),
	}
}
