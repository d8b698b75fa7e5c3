package bot

import (
	"context"

	"github.com/rs/zerolog"
)

// Runner performs one complete login and reply
type Runner interface {
	Run(ctx context.Context, threadURL, text string) error
}

// Retrying repeats whole runs of Next, up to Attempts in total, waiting a
// jittered delay between them. Each attempt gets its own session.
type Retrying struct {
	Next     Runner
	Attempts int
	Jitter   Jitter
	Log      zerolog.Logger
}

func (r *Retrying) Run(ctx context.Context, threadURL, text string) error {
	attempts := r.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = r.Next.Run(ctx, threadURL, text); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		r.Log.Warn().Err(err).Int("attempt", attempt).Int("max", attempts).Msg("run failed, retrying")
		if werr := r.Jitter.Wait(ctx); werr != nil {
			return err
		}
	}
	return err
}
