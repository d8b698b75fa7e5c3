package models

// DefaultPostURL is the thread used when a request omits postUrl
const DefaultPostURL = "https://www.reddit.com/r/sweatystartup/comments/1g7tnid/feedback_and_advice_on_my_startup_soboards/"

// PostReplyRequest is the payload for POST /post-reply
type PostReplyRequest struct {
	PostURL   string `json:"postUrl,omitempty"`
	ReplyText string `json:"replyText"`
}

// PostReplyResponse is returned when the reply flow finished
type PostReplyResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is returned for every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// StatusResponse is returned by the liveness probe
type StatusResponse struct {
	Status string `json:"status"`
}
