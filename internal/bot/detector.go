package bot

import "github.com/shehryarbajwa/replybot/internal/browser"

// authMarkers only render for a signed-in user
var authMarkers = []string{
	`button[aria-label="Open user menu"]`,
	`button[aria-label="Create Post"]`,
	`img[alt="User avatar"]`,
}

const authenticatedJS = `(markers) => markers.some((sel) => document.querySelector(sel) !== null)`

// IsAuthenticated reports whether the current page shows signed-in UI.
// Query failures count as not signed in.
func IsAuthenticated(page browser.Page) bool {
	var found bool
	if err := page.Eval(authenticatedJS, &found, authMarkers); err != nil {
		return false
	}
	return found
}
