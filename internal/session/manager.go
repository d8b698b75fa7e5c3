package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/shehryarbajwa/replybot/internal/browser"
	"github.com/shehryarbajwa/replybot/pkg/models"
)

// ErrConcurrencyLimit is returned by Open when every session slot is taken
var ErrConcurrencyLimit = errors.New("concurrency limit reached")

// ErrNotFound is returned for unknown or already closed sessions
var ErrNotFound = errors.New("session not found")

// finishedRetention is how long closed sessions stay listed
const finishedRetention = time.Hour

// Manager opens one browser per request and guarantees each is closed once.
// Closed sessions stay visible for a while for debugging.
type Manager struct {
	sessions sync.Map // map[sessionID]models.Session
	browsers sync.Map // map[sessionID]browser.Session
	slots    *semaphore.Weighted
	launcher browser.Launcher
	log      zerolog.Logger
	now      func() time.Time
}

// NewManager creates a session manager. maxConcurrent <= 0 means unbounded.
func NewManager(launcher browser.Launcher, maxConcurrent int64, log zerolog.Logger) *Manager {
	m := &Manager{
		launcher: launcher,
		log:      log,
		now:      time.Now,
	}
	if maxConcurrent > 0 {
		m.slots = semaphore.NewWeighted(maxConcurrent)
	}
	return m
}

// Open launches a fresh browser for a reply to targetURL
func (m *Manager) Open(ctx context.Context, targetURL string) (*models.Session, browser.Session, error) {
	if m.slots != nil && !m.slots.TryAcquire(1) {
		return nil, nil, ErrConcurrencyLimit
	}

	sessionID := uuid.New().String()
	log := m.log.With().Str("session_id", sessionID).Logger()
	log.Info().Str("backend", m.launcher.Name()).Msg("launching browser")

	sess, err := m.launcher.Launch(ctx, sessionID)
	if err != nil {
		m.releaseSlot()
		return nil, nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	meta := models.Session{
		ID:          sessionID,
		Status:      models.StatusRunning,
		Backend:     m.launcher.Name(),
		TargetURL:   targetURL,
		StartedAt:   m.now(),
		ConnectURL:  sess.ConnectURL(),
		ContainerID: sess.ContainerID(),
	}
	m.sessions.Store(sessionID, meta)
	m.browsers.Store(sessionID, sess)

	log.Info().Msg("browser session started")
	return &meta, sess, nil
}

// Close shuts the session's browser down and records how the run ended.
// Only the first call for an id does anything.
func (m *Manager) Close(id string, runErr error) error {
	value, ok := m.browsers.LoadAndDelete(id)
	if !ok {
		return ErrNotFound
	}
	defer m.releaseSlot()

	closeErr := value.(browser.Session).Close()

	if stored, ok := m.sessions.Load(id); ok {
		meta := stored.(models.Session)
		closedAt := m.now()
		meta.ClosedAt = &closedAt
		meta.Status = models.StatusCompleted
		if runErr != nil {
			meta.Status = models.StatusError
			meta.Error = runErr.Error()
		}
		m.sessions.Store(id, meta)

		time.AfterFunc(finishedRetention, func() {
			m.sessions.Delete(id)
		})
	}

	return closeErr
}

// GetSession retrieves a session by ID
func (m *Manager) GetSession(id string) (models.Session, error) {
	value, ok := m.sessions.Load(id)
	if !ok {
		return models.Session{}, ErrNotFound
	}
	return value.(models.Session), nil
}

// ConnectURL returns the CDP endpoint of a running session
func (m *Manager) ConnectURL(id string) (string, error) {
	value, ok := m.browsers.Load(id)
	if !ok {
		return "", ErrNotFound
	}
	return value.(browser.Session).ConnectURL(), nil
}

// ListSessions returns known sessions, optionally filtered by status, oldest first
func (m *Manager) ListSessions(status models.SessionStatus) []models.Session {
	sessions := []models.Session{}

	m.sessions.Range(func(key, value interface{}) bool {
		session := value.(models.Session)
		if status != "" && session.Status != status {
			return true
		}
		sessions = append(sessions, session)
		return true
	})

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].StartedAt.Before(sessions[j].StartedAt)
	})
	return sessions
}

// Active reports how many browsers are currently open
func (m *Manager) Active() int {
	n := 0
	m.browsers.Range(func(key, value interface{}) bool {
		n++
		return true
	})
	return n
}

func (m *Manager) releaseSlot() {
	if m.slots != nil {
		m.slots.Release(1)
	}
}
