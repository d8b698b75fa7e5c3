package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/shehryarbajwa/replybot/internal/bot"
	"github.com/shehryarbajwa/replybot/internal/session"
	"github.com/shehryarbajwa/replybot/pkg/models"
)

// ValidationError is a malformed request, answered with 400
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// postReplyBody keeps postUrl raw so an absent key can be told apart from
// an explicit null or empty string.
type postReplyBody struct {
	PostURL   json.RawMessage `json:"postUrl"`
	ReplyText string          `json:"replyText"`
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	runner     bot.Runner
	sessionMgr *session.Manager
	log        zerolog.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(runner bot.Runner, sessionMgr *session.Manager, log zerolog.Logger) *Handler {
	return &Handler{
		runner:     runner,
		sessionMgr: sessionMgr,
		log:        log,
	}
}

// Status handles GET /
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.StatusResponse{Status: "Reddit bot server is running"})
}

// PostReply handles POST /post-reply
func (h *Handler) PostReply(w http.ResponseWriter, r *http.Request) {
	var body postReplyBody
	// An empty body is an empty request
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	req, err := validate(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Message})
		return
	}

	h.log.Info().Str("url", req.PostURL).Msg("attempting to post reply")

	// The flow runs to completion even if the client goes away
	ctx := context.WithoutCancel(r.Context())
	if err := h.runner.Run(ctx, req.PostURL, req.ReplyText); err != nil {
		h.log.Error().Err(err).Str("url", req.PostURL).Msg("failed to post reply")

		status := http.StatusInternalServerError
		if errors.Is(err, session.ErrConcurrencyLimit) {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, models.ErrorResponse{
			Error:   "Failed to post reply",
			Details: err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, models.PostReplyResponse{Message: "Reply posted successfully"})
}

// ListSessions handles GET /sessions
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	status := models.SessionStatus(r.URL.Query().Get("status"))
	writeJSON(w, http.StatusOK, h.sessionMgr.ListSessions(status))
}

// GetSession handles GET /sessions/{id}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	sess, err := h.sessionMgr.GetSession(id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// validate applies the default thread when postUrl is absent and checks the
// request. replyText is checked before the URL.
func validate(body postReplyBody) (models.PostReplyRequest, *ValidationError) {
	req := models.PostReplyRequest{
		PostURL:   models.DefaultPostURL,
		ReplyText: body.ReplyText,
	}
	if body.PostURL != nil {
		// null and non-string values leave an empty URL, which fails below
		req.PostURL = ""
		_ = json.Unmarshal(body.PostURL, &req.PostURL)
	}

	if req.ReplyText == "" {
		return req, &ValidationError{Message: "Missing replyText"}
	}
	if !bot.ValidPostURL(req.PostURL) {
		return req, &ValidationError{Message: "Invalid Reddit post URL"}
	}
	return req, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
