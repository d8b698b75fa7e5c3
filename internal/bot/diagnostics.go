package bot

import (
	"github.com/rs/zerolog"

	"github.com/shehryarbajwa/replybot/internal/browser"
	"github.com/shehryarbajwa/replybot/pkg/models"
)

const contentExcerpt = 1000

const elementsJS = `() => [...document.querySelectorAll('button, a')].map((el) => ({
	type: el.tagName.toLowerCase(),
	text: el.textContent.trim(),
	href: el.href || null,
	id: el.id || null,
	class: (typeof el.className === 'string' && el.className) || null,
	'data-testid': el.getAttribute('data-testid') || null,
}))`

const structureJS = `() => {
	const walk = (el) => ({
		tag: el.tagName.toLowerCase(),
		id: el.id || undefined,
		class: (typeof el.className === 'string' && el.className) || undefined,
		children: Array.from(el.children).map(walk),
	});
	return document.body ? walk(document.body) : null;
}`

const formStateJS = `() => {` + browser.DeepSearchJS + `
	const username = deepSearch(document, 'input[name="username"]');
	const password = deepSearch(document, 'input[name="password"]');
	const submit = deepSearch(document, 'button[type="submit"]');
	const form = document.querySelector('form');
	let props = null;
	if (submit) {
		const style = window.getComputedStyle(submit);
		props = {
			tag: submit.tagName,
			id: submit.id,
			className: typeof submit.className === 'string' ? submit.className : '',
			textContent: submit.textContent.trim(),
			type: submit.type,
			visible: style.display !== 'none',
			disabled: submit.disabled,
			attributes: Object.fromEntries(Array.from(submit.attributes).map((a) => [a.name, a.value])),
			isClickable: !submit.disabled && style.pointerEvents !== 'none',
		};
	}
	return {
		usernameFieldExists: !!username,
		passwordFieldExists: !!password,
		submitButtonExists: !!submit,
		submitButtonProperties: props,
		formHTML: form ? form.outerHTML : 'No form found',
	};
}`

// Diagnostics captures and logs page state for post-mortem debugging.
// Nothing it does can fail the caller.
type Diagnostics struct {
	log zerolog.Logger
}

// NewDiagnostics creates a diagnostic logger
func NewDiagnostics(log zerolog.Logger) *Diagnostics {
	return &Diagnostics{log: log}
}

// Snapshot captures the current page and logs it under label. Failed queries
// leave their field empty and are recorded in Errors.
func (d *Diagnostics) Snapshot(page browser.Page, label string) models.DiagnosticSnapshot {
	snap := models.DiagnosticSnapshot{
		Label: label,
		URL:   page.URL(),
	}

	title, err := page.Title()
	if err != nil {
		snap.Errors = append(snap.Errors, "title: "+err.Error())
	}
	snap.Title = title

	html, err := page.HTML()
	if err != nil {
		snap.Errors = append(snap.Errors, "content: "+err.Error())
	}
	snap.Content = excerpt(html, contentExcerpt)

	if err := page.Eval(elementsJS, &snap.Elements); err != nil {
		snap.Errors = append(snap.Errors, "elements: "+err.Error())
	}

	var tree models.DOMNode
	if err := page.Eval(structureJS, &tree); err != nil {
		snap.Errors = append(snap.Errors, "structure: "+err.Error())
	} else if tree.Tag != "" {
		snap.Tree = &tree
	}

	d.log.Info().
		Str("step", label).
		Str("url", snap.URL).
		Str("title", snap.Title).
		Int("elements", len(snap.Elements)).
		Strs("errors", snap.Errors).
		Msg("page snapshot")
	d.log.Debug().
		Str("step", label).
		Str("content", snap.Content+"...").
		Interface("buttons_and_links", snap.Elements).
		Interface("structure", snap.Tree).
		Msg("page snapshot detail")

	return snap
}

// FormState captures the login form right before it is submitted
func (d *Diagnostics) FormState(page browser.Page) models.FormState {
	var state models.FormState
	if err := page.Eval(formStateJS, &state); err != nil {
		state.Errors = append(state.Errors, err.Error())
	}

	d.log.Info().
		Bool("username_field", state.UsernameFieldExists).
		Bool("password_field", state.PasswordFieldExists).
		Bool("submit_button", state.SubmitButtonExists).
		Interface("submit_button_properties", state.SubmitButtonProperties).
		Strs("errors", state.Errors).
		Msg("login form state")
	d.log.Debug().Str("form_html", state.FormHTML).Msg("login form markup")

	return state
}

// excerpt returns at most n runes of s
func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
