package server

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"airkiosk/protocol"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Kiosks connect from anywhere on the local network
	},
}

// HandleStream handles new kiosk WebSocket connections
func (s *Server) HandleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	viewer := &Viewer{
		Conn:     conn,
		LastSeen: time.Now(),
	}

	if session := r.URL.Query().Get("session"); session != "" {
		log.Printf("Kiosk stream opened: session=%s", session)
	}

	s.register <- viewer

	go s.handleViewerMessages(viewer)
}

// handleViewerMessages drains inbound frames from one kiosk. The only
// expected traffic is config updates, but the read loop also keeps the
// connection health checks running.
func (s *Server) handleViewerMessages(viewer *Viewer) {
	defer func() {
		s.unregister <- viewer
		viewer.Conn.Close()
	}()

	// Set read deadline for connection health
	viewer.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	viewer.Conn.SetPongHandler(func(string) error {
		viewer.mu.Lock()
		viewer.LastSeen = time.Now()
		viewer.mu.Unlock()
		viewer.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	// Start ping ticker for connection health. The done channel ends
	// the ping goroutine when the read loop returns; a stopped
	// ticker's channel is never closed.
	pingTicker := time.NewTicker(30 * time.Second)
	defer pingTicker.Stop()
	done := make(chan struct{})
	defer close(done)

	go func() {
		for {
			select {
			case <-done:
				return
			case <-pingTicker.C:
			}

			viewer.mu.Lock()
			stale := time.Since(viewer.LastSeen) > 90*time.Second
			viewer.mu.Unlock()
			if stale {
				viewer.Conn.Close()
				return
			}

			viewer.mu.Lock()
			err := viewer.Conn.WriteMessage(websocket.PingMessage, nil)
			viewer.mu.Unlock()
			if err != nil {
				return
			}
		}
	}()

	for {
		// Reset read deadline on each message
		viewer.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))

		_, message, err := viewer.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		viewer.mu.Lock()
		viewer.LastSeen = time.Now()
		viewer.mu.Unlock()

		var msg Message
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Printf("Error unmarshaling message: %v", err)
			continue
		}

		if msg.Type == "" {
			log.Printf("Message missing type field")
			continue
		}

		handler, ok := s.handlers[msg.Type]
		if !ok {
			log.Printf("Unknown message type: %s", msg.Type)
			continue
		}

		if err := handler.Validate(msg); err != nil {
			log.Printf("Message validation failed for type %s: %v", msg.Type, err)
			continue
		}

		if err := handler.Handle(s, msg); err != nil {
			log.Printf("Error handling message type %s: %v", msg.Type, err)
		}
	}
}

// HandleApprove handles the kiosk's one-shot approval decision.
func (s *Server) HandleApprove(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var decision protocol.Decision
	if err := json.NewDecoder(r.Body).Decode(&decision); err != nil {
		http.Error(w, "invalid decision body", http.StatusBadRequest)
		return
	}

	applied := s.feed.Resolve(decision.Approved)
	log.Printf("Decision received: approved=%v session=%s applied=%v",
		decision.Approved, r.Header.Get("X-Session-ID"), applied)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"applied": applied,
	})
}

// HandleHealth reports liveness.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// HandleStatus reports the feed phase, counters, and connection count.
func (s *Server) HandleStatus(w http.ResponseWriter, r *http.Request) {
	status := struct {
		FeedStatus
		Viewers int `json:"viewers"`
	}{
		FeedStatus: s.feed.Status(),
		Viewers:    s.ViewerCount(),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}
