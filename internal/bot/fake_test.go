package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/shehryarbajwa/replybot/internal/browser"
	"github.com/shehryarbajwa/replybot/pkg/models"
)

// fakePage records every action and fails the ones listed in errs
type fakePage struct {
	mu            sync.Mutex
	url           string
	authenticated bool
	submitPresent bool
	errs          map[string]error
	actions       []string
	typed         []string
	screenshots   int
	navCancels    int
}

func newFakePage() *fakePage {
	return &fakePage{
		url:  "about:blank",
		errs: map[string]error{},
	}
}

func (p *fakePage) record(action string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.actions = append(p.actions, action)
	name, _, _ := strings.Cut(action, " ")
	return p.errs[name]
}

func (p *fakePage) URL() string {
	return p.url
}

func (p *fakePage) Title() (string, error) {
	return "reddit", nil
}

func (p *fakePage) HTML() (string, error) {
	return "<html><body>" + strings.Repeat("x", 2000) + "</body></html>", nil
}

func (p *fakePage) Navigate(url string, timeout time.Duration) error {
	if err := p.record("navigate " + url); err != nil {
		return err
	}
	p.url = url
	return nil
}

func (p *fakePage) ExpectNavigation(timeout time.Duration) (func() error, func()) {
	wait := func() error {
		return p.record("waitnav")
	}
	cancel := func() {
		p.mu.Lock()
		p.navCancels++
		p.mu.Unlock()
	}
	return wait, cancel
}

func (p *fakePage) WaitSelector(selector string, timeout time.Duration) error {
	return p.record("waitselector " + selector)
}

func (p *fakePage) WaitEval(js string, timeout time.Duration, args ...interface{}) error {
	return p.record(fmt.Sprintf("waiteval %v", args))
}

func (p *fakePage) QueryDeep(selector string) (bool, error) {
	if err := p.record("querydeep " + selector); err != nil {
		return false, err
	}
	return p.submitPresent, nil
}

func (p *fakePage) WaitDeep(selector string, timeout time.Duration) error {
	return p.record("waitdeep " + selector)
}

func (p *fakePage) FocusDeep(selector string) error {
	return p.record("focusdeep " + selector)
}

func (p *fakePage) ClickDeep(selector string) error {
	return p.record("clickdeep " + selector)
}

func (p *fakePage) Click(selector string) error {
	return p.record("click " + selector)
}

func (p *fakePage) Type(text string, perChar time.Duration) error {
	if err := p.record("type"); err != nil {
		return err
	}
	p.mu.Lock()
	p.typed = append(p.typed, text)
	p.mu.Unlock()
	return nil
}

func (p *fakePage) Press(key browser.Key) error {
	return p.record("press " + string(key))
}

func (p *fakePage) Screenshot(fullPage bool) ([]byte, error) {
	p.mu.Lock()
	p.screenshots++
	p.mu.Unlock()
	return []byte("png"), nil
}

// Eval answers the detector and reports every other query as failing, which
// exercises the partial-snapshot path.
func (p *fakePage) Eval(js string, out interface{}, args ...interface{}) error {
	if js == authenticatedJS {
		return json.Unmarshal([]byte(fmt.Sprint(p.authenticated)), out)
	}
	return errors.New("evaluation unavailable")
}

// inputActions are the actions that touch the page
func (p *fakePage) inputActions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.actions...)
}

type memStore struct {
	mu    sync.Mutex
	saved []string
}

func (s *memStore) Save(name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, name)
	return nil
}

func (s *memStore) names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.saved...)
}

type fakeSession struct {
	page *fakePage
}

func (s *fakeSession) Page() browser.Page  { return s.page }
func (s *fakeSession) ConnectURL() string  { return "ws://fake" }
func (s *fakeSession) ContainerID() string { return "" }
func (s *fakeSession) Close() error        { return nil }

type fakeProvider struct {
	mu      sync.Mutex
	page    *fakePage
	openErr error
	opened  int
	closed  []string
	errs    []error
}

func (f *fakeProvider) Open(ctx context.Context, targetURL string) (*models.Session, browser.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.openErr != nil {
		return nil, nil, f.openErr
	}
	f.opened++
	return &models.Session{ID: fmt.Sprintf("session-%d", f.opened), TargetURL: targetURL}, &fakeSession{page: f.page}, nil
}

func (f *fakeProvider) Close(id string, runErr error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = append(f.closed, id)
	f.errs = append(f.errs, runErr)
	return nil
}

type sleepLog struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (s *sleepLog) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waits = append(s.waits, d)
	return nil
}

func testOptions(store ArtifactStore, sleeps *sleepLog) Options {
	return Options{
		Credentials: Credentials{Username: "alice", Password: "hunter2"},
		Timing:      DefaultTiming(),
		Jitter:      Jitter{Min: 5 * time.Second, Max: 15 * time.Second},
		Artifacts:   store,
		Sleep:       sleeps.sleep,
	}
}

func nopLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}
