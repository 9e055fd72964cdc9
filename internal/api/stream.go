package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"voiceguide/pkg/model"
	"voiceguide/pkg/position"
	"voiceguide/pkg/position/remote"
	"voiceguide/pkg/tour"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 64
)

// Message is one frame sent to the browser.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// inbound is a frame from the browser: a geolocation fix or failure.
type inbound struct {
	Type      string          `json:"type"` // "position", "error"
	Lat       float64         `json:"lat"`
	Lon       float64         `json:"lon"`
	Accuracy  float64         `json:"accuracy"`
	Timestamp int64           `json:"timestamp"` // unix millis, optional
	Code      json.RawMessage `json:"code"`      // GeolocationPositionError code, number or name
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Stream serves /ws. Browser fixes are pushed into the position hub and
// every broadcast goes to all connected clients.
type Stream struct {
	hub      *remote.Hub
	upgrader websocket.Upgrader
	hello    func() any

	mu      sync.Mutex
	clients map[*client]struct{}
}

// NewStream creates the stream. hello, if set, builds the first frame each
// client receives.
func NewStream(hub *remote.Hub, hello func() any) *Stream {
	return &Stream{
		hub:   hub,
		hello: hello,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// Clients returns the number of connected clients.
func (s *Stream) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Broadcast sends a frame to every client. It never blocks: a client that
// cannot keep up is disconnected.
func (s *Stream) Broadcast(typ string, data any) {
	payload, err := json.Marshal(Message{Type: typ, Data: data})
	if err != nil {
		slog.Error("Stream: cannot encode message", "type", typ, "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		select {
		case c.send <- payload:
		default:
			slog.Warn("Stream: client too slow, dropping", "remote", c.conn.RemoteAddr())
			s.dropLocked(c)
		}
	}
}

// Follow forwards every event of sess to the clients until the returned
// func is called.
func (s *Stream) Follow(sess *tour.Session) (stop func()) {
	return sess.Subscribe(func(ev model.TourEvent) {
		s.Broadcast("event", ev)
	})
}

func (s *Stream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("Stream: upgrade failed", "error", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	if s.hello != nil {
		if payload, err := json.Marshal(Message{Type: "snapshot", Data: s.hello()}); err == nil {
			c.send <- payload
		}
	}

	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	slog.Info("Stream: client connected", "remote", conn.RemoteAddr())

	go s.writePump(c)
	s.readPump(c)
}

func (s *Stream) dropLocked(c *client) {
	if _, ok := s.clients[c]; !ok {
		return
	}
	delete(s.clients, c)
	close(c.send)
}

func (s *Stream) readPump(c *client) {
	defer func() {
		s.mu.Lock()
		s.dropLocked(c)
		s.mu.Unlock()
		c.conn.Close()
		slog.Info("Stream: client disconnected", "remote", c.conn.RemoteAddr())
	}()

	c.conn.SetReadLimit(4096)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg inbound
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("Stream: read failed", "error", err)
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		s.handle(msg)
	}
}

func (s *Stream) handle(msg inbound) {
	switch msg.Type {
	case "position":
		var at time.Time
		if msg.Timestamp > 0 {
			at = time.UnixMilli(msg.Timestamp)
		}
		s.hub.Push(msg.Lat, msg.Lon, msg.Accuracy, at)
	case "error":
		s.hub.PushError(position.ParseCode(strings.Trim(string(msg.Code), `"`)))
	default:
		slog.Debug("Stream: ignoring message", "type", msg.Type)
	}
}

func (s *Stream) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
