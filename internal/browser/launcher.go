package browser

import (
	"context"
	"fmt"

	"github.com/go-rod/rod/lib/launcher"
)

// LocalLauncher starts a Chrome process on this host for every session
type LocalLauncher struct {
	opts LaunchOptions
}

// NewLocalLauncher creates a launcher for locally spawned Chrome processes
func NewLocalLauncher(opts LaunchOptions) *LocalLauncher {
	return &LocalLauncher{opts: opts}
}

func (l *LocalLauncher) Name() string {
	return "local"
}

// Launch spawns Chrome and connects to it over CDP
func (l *LocalLauncher) Launch(ctx context.Context, sessionID string) (Session, error) {
	ln := launcher.New().
		Context(ctx).
		Headless(l.opts.Headless).
		Leakless(true)

	if l.opts.NoSandbox {
		ln = ln.NoSandbox(true).Set("disable-setuid-sandbox")
	}
	if l.opts.Bin != "" {
		ln = ln.Bin(l.opts.Bin)
	}

	controlURL, err := ln.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch Chrome: %w", err)
	}

	b, page, err := openPage(ctx, controlURL, l.opts)
	if err != nil {
		ln.Kill()
		ln.Cleanup()
		return nil, err
	}

	return &rodSession{
		browser:    b,
		page:       newRodPage(page),
		connectURL: controlURL,
		release: func() error {
			ln.Kill()
			ln.Cleanup()
			return nil
		},
	}, nil
}
