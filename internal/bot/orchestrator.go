package bot

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/shehryarbajwa/replybot/internal/browser"
	"github.com/shehryarbajwa/replybot/pkg/models"
)

// SessionProvider hands out one browser session per run and takes it back.
// Close is called exactly once for every successful Open.
type SessionProvider interface {
	Open(ctx context.Context, targetURL string) (*models.Session, browser.Session, error)
	Close(id string, runErr error) error
}

// Options configure an Orchestrator
type Options struct {
	Credentials Credentials
	Timing      Timing
	Jitter      Jitter
	// LoginSubmit defaults to clicking the submit button, falling back to
	// three Tab presses.
	LoginSubmit SubmitStrategy
	// Artifacts defaults to the working directory.
	Artifacts   ArtifactStore
	Sleep       SleepFunc
}

// Orchestrator runs one login and one reply inside a fresh browser session
type Orchestrator struct {
	sessions SessionProvider
	login    *Login
	reply    *Reply
	capture  *Capturer
	timing   Timing
	sleep    SleepFunc
	log      zerolog.Logger
}

// NewOrchestrator wires the login and reply sequencers around sessions
func NewOrchestrator(sessions SessionProvider, opts Options, log zerolog.Logger) *Orchestrator {
	sleep := opts.Sleep
	if sleep == nil {
		sleep = Sleep
	}
	jitter := opts.Jitter
	if jitter.Sleep == nil {
		jitter.Sleep = sleep
	}
	loginSubmit := opts.LoginSubmit
	if loginSubmit == nil {
		loginSubmit = SelectorSubmit{Selector: submitSelector, Fallback: KeySubmit{Advance: 3}}
	}

	artifacts := opts.Artifacts
	if artifacts == nil {
		artifacts = DirStore{Dir: "."}
	}

	diag := NewDiagnostics(log.With().Str("component", "diagnostics").Logger())
	capture := NewCapturer(artifacts, diag, log.With().Str("component", "capture").Logger())

	return &Orchestrator{
		sessions: sessions,
		login: &Login{
			creds:   opts.Credentials,
			timing:  opts.Timing,
			submit:  loginSubmit,
			jitter:  jitter,
			sleep:   sleep,
			diag:    diag,
			capture: capture,
			log:     log.With().Str("component", "login").Logger(),
		},
		reply: &Reply{
			timing:  opts.Timing,
			submit:  KeySubmit{Advance: 1},
			sleep:   sleep,
			capture: capture,
			log:     log.With().Str("component", "reply").Logger(),
		},
		capture: capture,
		timing:  opts.Timing,
		sleep:   sleep,
		log:     log,
	}
}

// Run signs in and posts text as a reply to threadURL. The session is
// closed before Run returns, whatever the outcome.
func (o *Orchestrator) Run(ctx context.Context, threadURL, text string) (err error) {
	meta, sess, err := o.sessions.Open(ctx, threadURL)
	if err != nil {
		return fmt.Errorf("open browser session: %w", err)
	}

	log := o.log.With().Str("session_id", meta.ID).Logger()
	defer func() {
		log.Info().Msg("closing browser")
		if cerr := o.sessions.Close(meta.ID, err); cerr != nil {
			log.Warn().Err(cerr).Msg("failed to close browser")
			return
		}
		log.Info().Msg("browser closed")
	}()

	page := sess.Page()
	if err = o.run(ctx, page, threadURL, text); err != nil {
		log.Error().Err(err).Msg("reply bot failed")
		o.capture.Capture(page, "Error occurred", ArtifactError)
		return err
	}

	log.Info().Msg("reply posted")
	return nil
}

func (o *Orchestrator) run(ctx context.Context, page browser.Page, threadURL, text string) error {
	o.log.Info().Msg("attempting to log in")
	if err := o.login.Run(ctx, page); err != nil {
		return err
	}

	if err := o.sleep(ctx, o.timing.PostLoginSettle); err != nil {
		return err
	}

	o.log.Info().Str("url", threadURL).Msg("attempting to post reply")
	return o.reply.Run(ctx, page, threadURL, text)
}
