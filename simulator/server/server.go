// Package server implements the kiosk backend simulator: a websocket
// fan-out of scripted telemetry frames plus the approval and status
// HTTP endpoints. It exists so the kiosk HUD can be exercised end to
// end without cameras or trackers.
package server

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Server manages kiosk WebSocket connections and frame fan-out
type Server struct {
	feed       *Feed
	viewers    map[*Viewer]bool
	viewersMu  sync.RWMutex
	register   chan *Viewer
	unregister chan *Viewer
	handlers   map[string]MessageHandler
	frameRate  time.Duration
}

// Viewer represents one connected kiosk
type Viewer struct {
	Conn     *websocket.Conn
	LastSeen time.Time
	mu       sync.Mutex
}

// NewServer creates a new simulator around the given feed
func NewServer(feed *Feed, fps int) *Server {
	if fps <= 0 {
		fps = 30
	}
	s := &Server{
		feed:       feed,
		viewers:    make(map[*Viewer]bool),
		register:   make(chan *Viewer),
		unregister: make(chan *Viewer),
		frameRate:  time.Second / time.Duration(fps),
	}

	// Register message handlers
	s.handlers = map[string]MessageHandler{
		"config": &ConfigHandler{},
	}

	return s
}

// Run starts the server's main loop: viewer bookkeeping plus the frame
// ticker that pulls from the feed and fans out to every connection.
func (s *Server) Run() {
	ticker := time.NewTicker(s.frameRate)
	defer ticker.Stop()

	for {
		select {
		case viewer := <-s.register:
			s.viewersMu.Lock()
			s.viewers[viewer] = true
			count := len(s.viewers)
			s.viewersMu.Unlock()
			log.Printf("Kiosk connected (%d active)", count)

		case viewer := <-s.unregister:
			s.viewersMu.Lock()
			if _, ok := s.viewers[viewer]; ok {
				delete(s.viewers, viewer)
				viewer.Conn.Close()
			}
			count := len(s.viewers)
			s.viewersMu.Unlock()
			log.Printf("Kiosk disconnected (%d active)", count)

		case <-ticker.C:
			s.broadcastFrame()
		}
	}
}

// broadcastFrame pulls the next feed frame and writes it to every
// viewer, dropping dead connections.
func (s *Server) broadcastFrame() {
	s.viewersMu.RLock()
	idle := len(s.viewers) == 0
	s.viewersMu.RUnlock()
	if idle {
		// Nobody watching; the script does not advance.
		return
	}

	frame := safeMarshal(s.feed.Next())
	if frame == nil {
		return
	}

	s.viewersMu.Lock()
	for viewer := range s.viewers {
		viewer.mu.Lock()
		err := viewer.Conn.WriteMessage(websocket.TextMessage, frame)
		viewer.mu.Unlock()
		if err != nil {
			log.Printf("Error writing frame, removing dead connection: %v", err)
			viewer.Conn.Close()
			delete(s.viewers, viewer)
		}
	}
	s.viewersMu.Unlock()
}

// ViewerCount returns the number of connected kiosks.
func (s *Server) ViewerCount() int {
	s.viewersMu.RLock()
	defer s.viewersMu.RUnlock()
	return len(s.viewers)
}
