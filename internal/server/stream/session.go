package stream

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// writeWait bounds how long a single frame write may block.
const writeWait = 10 * time.Second

// Session wraps one websocket connection. The mutex serializes writers:
// command replies from the read loop and broadcast fan-out share the
// connection.
type Session struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func newSession(conn *websocket.Conn) *Session {
	return &Session{conn: conn}
}

func (s *Session) write(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// WriteJSON marshals msg and writes it as one text frame.
func (s *Session) WriteJSON(msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	return s.write(data)
}

// Registry tracks live sessions for broadcast fan-out.
type Registry struct {
	mu       sync.RWMutex
	sessions map[*Session]struct{}
}

// NewRegistry returns an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[*Session]struct{})}
}

func (r *Registry) add(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s] = struct{}{}
}

func (r *Registry) remove(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, s)
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) snapshot() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Session, 0, len(r.sessions))
	for s := range r.sessions {
		out = append(out, s)
	}
	return out
}

// Broadcast marshals msg once and writes it to every live session. A session
// whose write fails is closed and dropped; its read loop unregisters it.
func (r *Registry) Broadcast(msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal broadcast: %w", err)
	}
	for _, s := range r.snapshot() {
		if err := s.write(data); err != nil {
			s.conn.Close()
			r.remove(s)
		}
	}
	return nil
}

// CloseAll closes every live session, unblocking their read loops. Used on
// server shutdown; hijacked websocket connections are invisible to
// http.Server.Shutdown.
func (r *Registry) CloseAll() {
	for _, s := range r.snapshot() {
		s.conn.Close()
	}
}
