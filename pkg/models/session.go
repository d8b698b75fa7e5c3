package models

import "time"

// SessionStatus represents the current state of a browser session
type SessionStatus string

const (
	StatusRunning   SessionStatus = "RUNNING"
	StatusCompleted SessionStatus = "COMPLETED"
	StatusError     SessionStatus = "ERROR"
)

// Session represents one browser instance opened for a single reply request
type Session struct {
	ID          string        `json:"id"`
	Status      SessionStatus `json:"status"`
	Backend     string        `json:"backend"`
	TargetURL   string        `json:"targetUrl"`
	StartedAt   time.Time     `json:"startedAt"`
	ClosedAt    *time.Time    `json:"closedAt,omitempty"`
	ConnectURL  string        `json:"-"`
	ContainerID string        `json:"-"`
	Error       string        `json:"error,omitempty"`
}
