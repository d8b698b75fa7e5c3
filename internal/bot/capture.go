package bot

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/shehryarbajwa/replybot/internal/browser"
)

// Screenshot artifact names written by the reply flow
const (
	ArtifactLoginFailed      = "login-failed.png"
	ArtifactReplyBoxNotFound = "reply-box-not-found.png"
	ArtifactPostReplyFailed  = "post-reply-failed.png"
	ArtifactAfterReply       = "after-reply-attempt.png"
	ArtifactError            = "error-screenshot.png"
)

// ArtifactStore persists diagnostic screenshots
type ArtifactStore interface {
	Save(name string, data []byte) error
}

// DirStore writes artifacts into a directory, replacing older files of the
// same name.
type DirStore struct {
	Dir string
}

func (s DirStore) Save(name string, data []byte) error {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}
	return os.WriteFile(filepath.Join(s.Dir, name), data, 0644)
}

// Capturer is the single hook every failure branch goes through: one full
// page screenshot and one snapshot per call.
type Capturer struct {
	store ArtifactStore
	diag  *Diagnostics
	log   zerolog.Logger
}

// NewCapturer creates a capture hook writing into store
func NewCapturer(store ArtifactStore, diag *Diagnostics, log zerolog.Logger) *Capturer {
	return &Capturer{
		store: store,
		diag:  diag,
		log:   log,
	}
}

// Capture saves a screenshot under artifact and logs a snapshot under label.
// Errors are logged, never returned.
func (c *Capturer) Capture(page browser.Page, label, artifact string) {
	data, err := page.Screenshot(true)
	if err != nil {
		c.log.Warn().Err(err).Str("artifact", artifact).Msg("screenshot failed")
	} else if err := c.store.Save(artifact, data); err != nil {
		c.log.Warn().Err(err).Str("artifact", artifact).Msg("failed to save screenshot")
	} else {
		c.log.Info().Str("artifact", artifact).Msg("screenshot saved")
	}

	c.diag.Snapshot(page, label)
}
