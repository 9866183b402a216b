package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/quillforge/quill/internal/logging"
)

// writeWait bounds how long a reload push may block on a slow client.
const writeWait = 5 * time.Second

// wsHub tracks connected live-reload clients.
type wsHub struct {
	log     logging.Logger
	mutex   sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func newWSHub(log logging.Logger) *wsHub {
	return &wsHub{
		log:     log.WithComponent("websocket"),
		clients: make(map[*websocket.Conn]struct{}),
	}
}

func (h *wsHub) add(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = struct{}{}
}

func (h *wsHub) remove(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	delete(h.clients, conn)
}

// broadcast pushes a message to every client, dropping those that fail.
func (h *wsHub) broadcast(ctx context.Context, message string) {
	h.mutex.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mutex.Unlock()

	for _, conn := range conns {
		writeCtx, cancel := context.WithTimeout(ctx, writeWait)
		err := conn.Write(writeCtx, websocket.MessageText, []byte(message))
		cancel()
		if err != nil {
			h.log.Warn(ctx, "dropping live-reload client", "error", err.Error())
			h.remove(conn)
			conn.Close(websocket.StatusNormalClosure, "")
		}
	}
}

func (s *PreviewServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !s.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.log.Warn(r.Context(), "websocket upgrade failed", "error", err.Error())
		return
	}

	s.hub.add(conn)
	defer func() {
		s.hub.remove(conn)
		conn.Close(websocket.StatusNormalClosure, "")
	}()

	// The client never sends application messages; reading just observes
	// close and keeps control frames flowing.
	ctx := r.Context()
	for {
		if _, _, err := conn.Read(ctx); err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure &&
				websocket.CloseStatus(err) != websocket.StatusGoingAway &&
				ctx.Err() == nil {
				s.log.Debug(ctx, "websocket closed", "error", err.Error())
			}
			return
		}
	}
}

// checkOrigin accepts only same-host browsers; the preview server is a
// local development tool, not a shared service.
func (s *PreviewServer) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return false
	}
	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if originURL.Scheme != "http" && originURL.Scheme != "https" {
		return false
	}
	allowed := []string{
		fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port),
		fmt.Sprintf("localhost:%d", s.cfg.Server.Port),
		fmt.Sprintf("127.0.0.1:%d", s.cfg.Server.Port),
	}
	for _, host := range allowed {
		if originURL.Host == host {
			return true
		}
	}
	return false
}
