package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"
)

// rodPage implements Page on top of a Rod page
type rodPage struct {
	page *rod.Page
}

func newRodPage(page *rod.Page) *rodPage {
	return &rodPage{page: page}
}

func (p *rodPage) URL() string {
	info, err := p.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (p *rodPage) Title() (string, error) {
	info, err := p.page.Info()
	if err != nil {
		return "", err
	}
	return info.Title, nil
}

func (p *rodPage) HTML() (string, error) {
	return p.page.HTML()
}

// Navigate loads url and blocks until the network-idle lifecycle event fires
func (p *rodPage) Navigate(url string, timeout time.Duration) error {
	page := p.page.Timeout(timeout)
	defer page.CancelTimeout()

	wait := page.WaitNavigation(proto.PageLifecycleEventNameNetworkIdle)
	if err := page.Navigate(url); err != nil {
		if page.GetContext().Err() != nil {
			return navigationTimeout(timeout)
		}
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	wait()

	if page.GetContext().Err() != nil {
		return navigationTimeout(timeout)
	}
	return nil
}

func (p *rodPage) ExpectNavigation(timeout time.Duration) (func() error, func()) {
	page := p.page.Timeout(timeout)
	wait := page.WaitNavigation(proto.PageLifecycleEventNameNetworkIdle)

	cancel := func() { page.CancelTimeout() }
	return func() error {
		defer cancel()
		wait()
		if page.GetContext().Err() != nil {
			return navigationTimeout(timeout)
		}
		return nil
	}, cancel
}

func (p *rodPage) WaitSelector(selector string, timeout time.Duration) error {
	page := p.page.Timeout(timeout)
	defer page.CancelTimeout()

	if _, err := page.Element(selector); err != nil {
		return waitTimeout(fmt.Sprintf("selector `%s`", selector), timeout, err)
	}
	return nil
}

func (p *rodPage) WaitEval(js string, timeout time.Duration, args ...interface{}) error {
	page := p.page.Timeout(timeout)
	defer page.CancelTimeout()

	if err := page.Wait(rod.Eval(js, args...)); err != nil {
		return waitTimeout("function", timeout, err)
	}
	return nil
}

func (p *rodPage) QueryDeep(selector string) (bool, error) {
	res, err := p.page.Eval(deepExistsJS, selector)
	if err != nil {
		return false, err
	}
	return res.Value.Bool(), nil
}

func (p *rodPage) WaitDeep(selector string, timeout time.Duration) error {
	page := p.page.Timeout(timeout)
	defer page.CancelTimeout()

	if err := page.Wait(rod.Eval(deepExistsJS, selector)); err != nil {
		return waitTimeout(fmt.Sprintf("selector `%s`", selector), timeout, err)
	}
	return nil
}

func (p *rodPage) FocusDeep(selector string) error {
	el, err := p.deepElement(selector)
	if err != nil {
		return err
	}
	return el.Focus()
}

func (p *rodPage) ClickDeep(selector string) error {
	el, err := p.deepElement(selector)
	if err != nil {
		return err
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

func (p *rodPage) deepElement(selector string) (*rod.Element, error) {
	el, err := p.page.Sleeper(rod.NotFoundSleeper).ElementByJS(rod.Eval(deepFindJS, selector))
	if err != nil {
		return nil, fmt.Errorf("no element matches selector `%s`: %w", selector, err)
	}
	return el, nil
}

func (p *rodPage) Click(selector string) error {
	el, err := p.page.Sleeper(rod.NotFoundSleeper).Element(selector)
	if err != nil {
		return fmt.Errorf("no element matches selector `%s`: %w", selector, err)
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

// Type sends text to the focused element one character at a time. Printable
// ASCII goes through real key events; anything else is inserted as text.
func (p *rodPage) Type(text string, perChar time.Duration) error {
	for _, ch := range text {
		var err error
		if ch >= 0x20 && ch <= 0x7e {
			err = p.page.Keyboard.Type(input.Key(ch))
		} else if ch == '\n' {
			err = p.page.Keyboard.Type(input.Enter)
		} else {
			err = p.page.InsertText(string(ch))
		}
		if err != nil {
			return fmt.Errorf("type character: %w", err)
		}
		if perChar > 0 {
			time.Sleep(perChar)
		}
	}
	return nil
}

func (p *rodPage) Press(key Key) error {
	switch key {
	case KeyTab:
		return p.page.Keyboard.Type(input.Tab)
	case KeyEnter:
		return p.page.Keyboard.Type(input.Enter)
	default:
		return fmt.Errorf("unsupported key %q", key)
	}
}

func (p *rodPage) Screenshot(fullPage bool) ([]byte, error) {
	return p.page.Screenshot(fullPage, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
}

func (p *rodPage) Eval(js string, out interface{}, args ...interface{}) error {
	res, err := p.page.Eval(js, args...)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return res.Value.Unmarshal(out)
}

func navigationTimeout(timeout time.Duration) error {
	return fmt.Errorf("navigation timeout of %d ms exceeded: %w", timeout.Milliseconds(), context.DeadlineExceeded)
}

func waitTimeout(what string, timeout time.Duration, err error) error {
	return fmt.Errorf("waiting for %s failed: timeout %dms exceeded: %w", what, timeout.Milliseconds(), err)
}

// rodSession owns one Rod browser and the page opened in it
type rodSession struct {
	browser     *rod.Browser
	page        *rodPage
	connectURL  string
	containerID string
	release     func() error
	closeOnce   sync.Once
	closeErr    error
}

// openPage connects to a running browser and prepares its single page
func openPage(ctx context.Context, controlURL string, opts LaunchOptions) (*rod.Browser, *rod.Page, error) {
	b := rod.New().
		Context(ctx).
		ControlURL(controlURL).
		SlowMotion(opts.SlowMotion).
		NoDefaultDevice()
	if err := b.Connect(); err != nil {
		return nil, nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		b.Close()
		return nil, nil, fmt.Errorf("failed to create page: %w", err)
	}

	if opts.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: opts.UserAgent}); err != nil {
			b.Close()
			return nil, nil, fmt.Errorf("failed to set user agent: %w", err)
		}
	}

	if opts.Viewport.Width > 0 && opts.Viewport.Height > 0 {
		if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:             opts.Viewport.Width,
			Height:            opts.Viewport.Height,
			DeviceScaleFactor: 1,
		}); err != nil {
			b.Close()
			return nil, nil, fmt.Errorf("failed to set viewport: %w", err)
		}
	}

	return b, page, nil
}

func (s *rodSession) Page() Page {
	return s.page
}

func (s *rodSession) ConnectURL() string {
	return s.connectURL
}

func (s *rodSession) ContainerID() string {
	return s.containerID
}

// Close shuts the browser down and releases whatever backs it. Repeated calls
// return the first result.
func (s *rodSession) Close() error {
	s.closeOnce.Do(func() {
		err := s.browser.Close()
		if s.release != nil {
			if rerr := s.release(); rerr != nil && err == nil {
				err = rerr
			}
		}
		s.closeErr = err
	})
	return s.closeErr
}
