package proxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: checkOrigin,
}

// checkOrigin accepts clients that send no Origin, same-origin pages and
// pages served from loopback. Any other page could drive the signed-in
// browser.
func checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	host := u.Hostname()
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// Endpoints resolves the CDP endpoint of a running session
type Endpoints interface {
	ConnectURL(id string) (string, error)
}

// Server relays a debugger's WebSocket to a live session's CDP endpoint so an
// operator can watch a run that is in progress.
type Server struct {
	endpoints Endpoints
	log       zerolog.Logger
}

func NewServer(endpoints Endpoints, log zerolog.Logger) *Server {
	return &Server{
		endpoints: endpoints,
		log:       log,
	}
}

func (s *Server) HandleDebugConnection(w http.ResponseWriter, r *http.Request, sessionID string) {
	chromeURL, err := s.endpoints.ConnectURL(sessionID)
	if err != nil {
		http.Error(w, "Session is not running", http.StatusNotFound)
		return
	}

	log := s.log.With().Str("session_id", sessionID).Logger()

	// Upgrade HTTP connection to WebSocket
	clientConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("failed to upgrade connection")
		return
	}
	defer clientConn.Close()

	log.Info().Str("cdp", chromeURL).Msg("debugger attached, connecting to Chrome")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	chromeConn, _, err := websocket.DefaultDialer.DialContext(ctx, chromeURL, nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to connect to Chrome")
		clientConn.WriteMessage(websocket.TextMessage, []byte(fmt.Sprintf("Error connecting: %v", err)))
		return
	}
	defer chromeConn.Close()

	// Bidirectional proxy
	errChan := make(chan error, 2)

	go func() {
		errChan <- s.proxyMessages(clientConn, chromeConn, "client→chrome")
	}()

	go func() {
		errChan <- s.proxyMessages(chromeConn, clientConn, "chrome→client")
	}()

	// Wait for either direction to close
	err = <-errChan
	if err != nil && !errors.Is(err, io.EOF) && !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		log.Warn().Err(err).Msg("proxy error")
	}

	log.Info().Msg("debugger detached")
}

func (s *Server) proxyMessages(src, dst *websocket.Conn, direction string) error {
	for {
		messageType, message, err := src.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.log.Debug().Err(err).Str("direction", direction).Msg("websocket closed")
			}
			return err
		}

		if err := dst.WriteMessage(messageType, message); err != nil {
			return err
		}
	}
}
