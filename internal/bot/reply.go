package bot

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/shehryarbajwa/replybot/internal/browser"
)

const confirmReplyJS = `(text) => Array.from(document.querySelectorAll('.usertext-body, [data-testid="comment"]'))
	.some((el) => el.textContent.includes(text))`

// Reply posts a comment on a thread through the legacy site's reply form
type Reply struct {
	timing  Timing
	submit  SubmitStrategy
	sleep   SleepFunc
	capture *Capturer
	log     zerolog.Logger
}

// Run opens threadURL on the legacy host and submits text as a reply.
// Failures are captured once and returned as a *ReplyError. Without
// Timing.ReplyConfirm a nil error only means the form was submitted.
func (r *Reply) Run(ctx context.Context, page browser.Page, threadURL, text string) error {
	target := LegacyHost(threadURL)

	r.log.Info().Str("url", target).Msg("navigating to thread")
	if err := page.Navigate(target, r.timing.ThreadNavigation); err != nil {
		return r.fail(page, "navigate", err)
	}
	if err := r.sleep(ctx, r.timing.ThreadSettle); err != nil {
		return r.fail(page, "navigate", err)
	}

	r.log.Info().Msg("looking for reply box")
	if err := page.WaitSelector(replyBoxSelector, r.timing.ReplyBox); err != nil {
		r.log.Error().Err(err).Msg("reply box not found")
		r.capture.Capture(page, "Reply box not found", ArtifactReplyBoxNotFound)
		return &ReplyError{Stage: "locate", Err: err}
	}

	if err := r.write(ctx, page, text); err != nil {
		return r.fail(page, "submit", err)
	}

	r.capture.Capture(page, "After reply attempt", ArtifactAfterReply)

	if r.timing.ReplyConfirm > 0 {
		r.log.Info().Dur("timeout", r.timing.ReplyConfirm).Msg("waiting for reply to appear")
		if err := page.WaitEval(confirmReplyJS, r.timing.ReplyConfirm, text); err != nil {
			// the after-reply capture already recorded this page
			r.log.Error().Err(err).Str("stage", "confirm").Msg("post reply failed")
			return &ReplyError{Stage: "confirm", Err: fmt.Errorf("reply not visible on thread: %w", err)}
		}
	}
	return nil
}

func (r *Reply) write(ctx context.Context, page browser.Page, text string) error {
	r.log.Info().Msg("reply box found, clicking to focus")
	if err := page.Click(replyBoxSelector); err != nil {
		return err
	}
	if err := r.sleep(ctx, r.timing.ReplyFocusSettle); err != nil {
		return err
	}

	r.log.Info().Int("chars", len([]rune(text))).Msg("typing reply")
	if err := page.Type(text, r.timing.ReplyKeystroke); err != nil {
		return err
	}
	if err := r.sleep(ctx, r.timing.ReplyPreSubmit); err != nil {
		return err
	}

	activate, err := r.submit.Prepare(page)
	if err != nil {
		return err
	}
	return activate()
}

func (r *Reply) fail(page browser.Page, stage string, err error) error {
	r.log.Error().Err(err).Str("stage", stage).Msg("post reply failed")
	r.capture.Capture(page, "Post reply failed", ArtifactPostReplyFailed)
	return &ReplyError{Stage: stage, Err: err}
}
