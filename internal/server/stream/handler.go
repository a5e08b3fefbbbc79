package stream

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/OCharnyshevich/dungeon-server/internal/server/region"
)

// Handler upgrades requests on the websocket endpoint and runs the command
// protocol against the region manager.
type Handler struct {
	regions  *region.Manager
	sessions *Registry
	log      *slog.Logger
	upgrader websocket.Upgrader
}

// NewHandler wires the websocket endpoint to a region manager and a session
// registry shared with the rest of the server.
func NewHandler(regions *region.Manager, sessions *Registry, log *slog.Logger) *Handler {
	return &Handler{
		regions:  regions,
		sessions: sessions,
		log:      log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("websocket upgrade", "error", err)
		return
	}

	sess := newSession(conn)
	h.sessions.add(sess)
	h.log.Info("session opened", "remote", conn.RemoteAddr().String(), "sessions", h.sessions.Count())

	defer func() {
		h.sessions.remove(sess)
		conn.Close()
		h.log.Info("session closed", "remote", conn.RemoteAddr().String(), "sessions", h.sessions.Count())
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			h.log.Info("discarding malformed message", "error", err)
			continue
		}

		if !h.dispatch(sess, msg) {
			return
		}
	}
}

// dispatch runs one command. A false return means the session's write path
// failed and the read loop should stop.
func (h *Handler) dispatch(sess *Session, msg ClientMessage) bool {
	switch msg.Type {
	case TypeSubscribe:
		r, err := h.regions.GetOrGenerate(region.Pos{X: msg.X, Z: msg.Z})
		if err != nil {
			return h.sendError(sess, msg.Type, err)
		}
		return h.send(sess, NewRegionMessage(r))

	case TypeRegenerate:
		r, err := h.regions.Regenerate(region.Pos{X: msg.X, Z: msg.Z})
		if err != nil {
			return h.sendError(sess, msg.Type, err)
		}
		// Every session sees the fresh layout, not just the one that asked.
		h.broadcast(NewRegionMessage(r))
		return true

	case TypeSetWeight:
		applied, err := h.setWeight(msg)
		if err != nil {
			return h.sendError(sess, msg.Type, err)
		}
		h.broadcast(ThemeUpdatedMessage{
			Ver:    Version,
			Type:   TypeThemeUpdated,
			Kind:   msg.Kind,
			Name:   msg.Name,
			Weight: applied,
		})
		return true

	case TypePing:
		return h.send(sess, PongMessage{Ver: Version, Type: TypePong})

	default:
		h.log.Info("unknown message type", "type", msg.Type)
		return true
	}
}

func (h *Handler) setWeight(msg ClientMessage) (float64, error) {
	switch msg.Kind {
	case KindTile:
		return h.regions.SetTileWeight(msg.Name, msg.Weight)
	case KindProp:
		return h.regions.SetPropWeight(msg.Name, msg.Weight)
	default:
		return 0, fmt.Errorf("unknown weight kind %q", msg.Kind)
	}
}

func (h *Handler) send(sess *Session, msg any) bool {
	return sess.WriteJSON(msg) == nil
}

// sendError answers a failed command and keeps the connection open.
func (h *Handler) sendError(sess *Session, cmdType string, err error) bool {
	h.log.Info("command rejected", "type", cmdType, "error", err)
	return h.send(sess, ErrorMessage{Ver: Version, Type: TypeError, Reason: err.Error()})
}

func (h *Handler) broadcast(msg any) {
	if err := h.sessions.Broadcast(msg); err != nil {
		h.log.Error("broadcast", "error", err)
	}
}
