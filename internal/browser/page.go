package browser

import (
	"context"
	"time"
)

// Key is a named keyboard key understood by Page.Press
type Key string

const (
	KeyTab   Key = "Tab"
	KeyEnter Key = "Enter"
)

// Page is the browser-control capability the reply flow is written against.
// All navigation helpers wait for network idle; all Wait* helpers fail with a
// timeout error once their bound elapses.
type Page interface {
	URL() string
	Title() (string, error)
	HTML() (string, error)

	// Navigate loads url and waits until the network is idle.
	Navigate(url string, timeout time.Duration) error
	// ExpectNavigation must be called before the action that triggers a
	// navigation. wait blocks until the new document is network idle;
	// cancel releases the timeout when wait is never reached.
	ExpectNavigation(timeout time.Duration) (wait func() error, cancel func())

	WaitSelector(selector string, timeout time.Duration) error
	WaitEval(js string, timeout time.Duration, args ...interface{}) error

	// QueryDeep searches the document and every attached shadow root,
	// depth-first, and reports whether selector matched anything.
	QueryDeep(selector string) (bool, error)
	WaitDeep(selector string, timeout time.Duration) error
	FocusDeep(selector string) error
	ClickDeep(selector string) error

	Click(selector string) error
	Type(text string, perChar time.Duration) error
	Press(key Key) error

	Screenshot(fullPage bool) ([]byte, error)
	Eval(js string, out interface{}, args ...interface{}) error
}

// Session is one isolated browser with a single page
type Session interface {
	Page() Page
	ConnectURL() string
	ContainerID() string
	Close() error
}

// Viewport overrides the page's device metrics. A zero value keeps the
// window size.
type Viewport struct {
	Width  int
	Height int
}

// LaunchOptions configure a browser session
type LaunchOptions struct {
	Headless   bool
	NoSandbox  bool
	SlowMotion time.Duration
	UserAgent  string
	Viewport   Viewport
	Bin        string
}

// Launcher opens browser sessions
type Launcher interface {
	Name() string
	Launch(ctx context.Context, sessionID string) (Session, error)
}
