package bot

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/shehryarbajwa/replybot/internal/browser"
)

// Login drives the credential form. It is safe to call on a page that is
// already signed in.
type Login struct {
	creds   Credentials
	timing  Timing
	submit  SubmitStrategy
	jitter  Jitter
	sleep   SleepFunc
	diag    *Diagnostics
	capture *Capturer
	log     zerolog.Logger
}

// Run signs the page in. Any failure is captured once and returned as a
// *LoginError.
func (l *Login) Run(ctx context.Context, page browser.Page) error {
	if IsAuthenticated(page) {
		l.log.Info().Msg("already logged in")
		return nil
	}

	if stage, err := l.run(ctx, page); err != nil {
		l.log.Error().Err(err).Str("stage", stage).Msg("login process failed")
		l.capture.Capture(page, "Login failed", ArtifactLoginFailed)
		return &LoginError{Stage: stage, Err: err}
	}

	l.log.Info().Msg("login successful")
	return nil
}

func (l *Login) run(ctx context.Context, page browser.Page) (string, error) {
	l.log.Info().Str("url", LoginURL).Msg("navigating to login page")
	if err := page.Navigate(LoginURL, l.timing.LoginNavigation); err != nil {
		return "navigate", err
	}
	l.diag.Snapshot(page, "Reddit login page loaded")

	l.log.Info().Msg("waiting for username field")
	if err := page.WaitDeep(usernameSelector, l.timing.LoginFields); err != nil {
		return "fields", err
	}

	l.log.Info().Msg("entering credentials")
	if err := page.FocusDeep(usernameSelector); err != nil {
		return "credentials", fmt.Errorf("focus username: %w", err)
	}
	if err := page.Type(l.creds.Username, l.timing.LoginKeystroke); err != nil {
		return "credentials", fmt.Errorf("type username: %w", err)
	}
	if err := page.Press(browser.KeyTab); err != nil {
		return "credentials", fmt.Errorf("move to password: %w", err)
	}
	if err := page.Type(l.creds.Password, l.timing.LoginKeystroke); err != nil {
		return "credentials", fmt.Errorf("type password: %w", err)
	}

	activate, err := l.submit.Prepare(page)
	if err != nil {
		return "submit", err
	}

	l.diag.FormState(page)

	if err := l.sleep(ctx, l.timing.LoginPreSubmit); err != nil {
		return "submit", err
	}

	l.log.Info().Msg("submitting login form")
	waitNav, cancelNav := page.ExpectNavigation(l.timing.LoginSubmitNav)
	defer cancelNav()
	if err := activate(); err != nil {
		return "submit", fmt.Errorf("activate submit control: %w", err)
	}
	if err := waitNav(); err != nil {
		return "navigation", err
	}
	l.log.Info().Msg("navigation after login complete")

	if err := l.jitter.Wait(ctx); err != nil {
		return "navigation", err
	}
	return "", nil
}
