package bot

import (
	"fmt"

	"github.com/shehryarbajwa/replybot/internal/browser"
)

// SubmitStrategy gets a form ready to submit. Prepare leaves the page so that
// calling the returned function submits the form.
type SubmitStrategy interface {
	Prepare(page browser.Page) (activate func() error, err error)
}

// KeySubmit walks focus forward with Tab and submits with Enter on whatever
// control ends up focused. It relies on the page's tab order.
type KeySubmit struct {
	Advance int
}

func (s KeySubmit) Prepare(page browser.Page) (func() error, error) {
	for i := 0; i < s.Advance; i++ {
		if err := page.Press(browser.KeyTab); err != nil {
			return nil, fmt.Errorf("advance focus: %w", err)
		}
	}
	return func() error {
		return page.Press(browser.KeyEnter)
	}, nil
}

// SelectorSubmit clicks an explicit control found through a deep query and
// defers to Fallback when the control is missing.
type SelectorSubmit struct {
	Selector string
	Fallback SubmitStrategy
}

func (s SelectorSubmit) Prepare(page browser.Page) (func() error, error) {
	found, err := page.QueryDeep(s.Selector)
	if err == nil && found {
		return func() error {
			return page.ClickDeep(s.Selector)
		}, nil
	}

	if s.Fallback != nil {
		return s.Fallback.Prepare(page)
	}
	if err != nil {
		return nil, fmt.Errorf("query submit control: %w", err)
	}
	return nil, fmt.Errorf("submit control %s not found", s.Selector)
}
