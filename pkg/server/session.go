package server

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/JorgeRod2594/feature-hub/pkg/document"
	"github.com/JorgeRod2594/feature-hub/pkg/loader"
)

const (
	writeTimeout = 10 * time.Second
	pongWait     = 75 * time.Second
	pingPeriod   = 30 * time.Second

	// Clients only ever send pings and close frames.
	maxClientMessageSize = 512
)

// replaceMessage tells the client to swap one loader subtree.
type replaceMessage struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	HTML string `json:"html"`
}

// liveSession keeps one page's feature app fresh over one WebSocket
// connection. The session is the page's live document: it owns the
// stylesheet registry and the loader for the connection's lifetime.
type liveSession struct {
	id     string
	host   *Host
	page   Page
	conn   *websocket.Conn
	loader *loader.FeatureAppLoader
	logger *slog.Logger

	writeMu  sync.Mutex // protects conn writes
	closed   atomic.Bool
	renderCh chan struct{}
	done     chan struct{}
}

func newLiveSession(h *Host, conn *websocket.Conn, page Page) *liveSession {
	s := &liveSession{
		id:       uuid.NewString(),
		host:     h,
		page:     page,
		conn:     conn,
		renderCh: make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	s.logger = h.logger.With("session_id", s.id)

	s.loader = loader.New(loader.Config{
		Provider:    h.provider,
		Container:   h.container,
		Styles:      document.NewStyleRegistry(),
		Stylesheets: h.pageStylesheets(page),
		Src:         page.Src,
		Key:         page.Key,
		Logger:      s.logger,
		Invalidator: loader.InvalidatorFunc(s.scheduleRender),
	})
	return s
}

// run mounts the loader and blocks until the connection drops.
func (s *liveSession) run() {
	defer s.close()
	defer s.loader.Unmount()

	s.logger.Info("live session started", "page", s.page.Path, "src", s.page.Src)

	s.loader.Mount()
	go s.renderLoop()

	// Initial sync covers anything that settled between the page
	// render and the socket connect.
	s.sendReplace()

	s.readLoop()
}

// scheduleRender coalesces invalidations into one pending render.
func (s *liveSession) scheduleRender() {
	select {
	case s.renderCh <- struct{}{}:
	default:
		// Already scheduled
	}
}

// renderLoop re-renders the loader subtree on wake and keeps the
// connection alive with pings.
func (s *liveSession) renderLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-s.renderCh:
			s.sendReplace()
		case <-ticker.C:
			s.sendPing()
		}
	}
}

// readLoop consumes the connection until it drops. Clients do not send
// application messages; reading serves pong handling and close
// detection.
func (s *liveSession) readLoop() {
	s.conn.SetReadLimit(maxClientMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
			}
			return
		}
	}
}

// sendReplace renders the loader subtree and pushes it to the client.
func (s *liveSession) sendReplace() {
	html, err := s.host.renderer.RenderToString(s.loader.Render())
	if err != nil {
		s.logger.Error("render failed", "error", err)
		return
	}
	s.write(replaceMessage{Type: "replace", ID: containerID(s.page), HTML: html})
}

// write sends one JSON message under the write lock. Writes after
// close are dropped; a failed write closes the session.
func (s *liveSession) write(msg any) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.closed.Load() {
		return
	}

	s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := s.conn.WriteJSON(msg); err != nil {
		s.logger.Error("write error", "error", err)
		s.close()
	}
}

func (s *liveSession) sendPing() {
	if s.closed.Load() {
		return
	}
	err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
	if err != nil {
		s.close()
	}
}

// close flips once. WriteControl and Close are safe concurrently with
// in-flight writes.
func (s *liveSession) close() {
	if s.closed.Swap(true) {
		return
	}
	close(s.done)

	s.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	s.conn.Close()
	s.logger.Info("live session closed")
}

// sessionSet tracks live sessions for shutdown.
type sessionSet struct {
	mu       sync.Mutex
	sessions map[string]*liveSession
}

func newSessionSet() *sessionSet {
	return &sessionSet{sessions: make(map[string]*liveSession)}
}

func (set *sessionSet) add(s *liveSession) {
	set.mu.Lock()
	defer set.mu.Unlock()
	set.sessions[s.id] = s
}

func (set *sessionSet) remove(s *liveSession) {
	set.mu.Lock()
	defer set.mu.Unlock()
	delete(set.sessions, s.id)
}

func (set *sessionSet) closeAll() {
	set.mu.Lock()
	sessions := make([]*liveSession, 0, len(set.sessions))
	for _, s := range set.sessions {
		sessions = append(sessions, s)
	}
	set.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
}
