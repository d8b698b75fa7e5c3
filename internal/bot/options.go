package bot

import "time"

const (
	LoginURL = "https://www.reddit.com/login/"

	usernameSelector = `input[name="username"]`
	passwordSelector = `input[name="password"]`
	submitSelector   = `button[type="submit"]`
	replyBoxSelector = `textarea[data-event-action="comment"]`
)

// Credentials are the account the bot signs in with
type Credentials struct {
	Username string
	Password string
}

// Timing holds every bounded wait and settle delay used by the flow
type Timing struct {
	LoginNavigation  time.Duration
	LoginFields      time.Duration
	LoginKeystroke   time.Duration
	LoginPreSubmit   time.Duration
	LoginSubmitNav   time.Duration
	PostLoginSettle  time.Duration
	ThreadNavigation time.Duration
	ThreadSettle     time.Duration
	ReplyBox         time.Duration
	ReplyFocusSettle time.Duration
	ReplyKeystroke   time.Duration
	ReplyPreSubmit   time.Duration
	// ReplyConfirm polls for the posted comment when positive.
	ReplyConfirm time.Duration
}

// DefaultTiming mirrors how long a person takes on the live site
func DefaultTiming() Timing {
	return Timing{
		LoginNavigation:  60 * time.Second,
		LoginFields:      30 * time.Second,
		LoginKeystroke:   100 * time.Millisecond,
		LoginPreSubmit:   500 * time.Millisecond,
		LoginSubmitNav:   60 * time.Second,
		PostLoginSettle:  1000 * time.Millisecond,
		ThreadNavigation: 90 * time.Second,
		ThreadSettle:     5 * time.Second,
		ReplyBox:         10 * time.Second,
		ReplyFocusSettle: 1000 * time.Millisecond,
		ReplyKeystroke:   50 * time.Millisecond,
		ReplyPreSubmit:   500 * time.Millisecond,
	}
}
