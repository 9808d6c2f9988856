// Package interview serves the realtime coaching channel.
package interview

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/Engineernoob/ai-interview-buddy/internal/model/wire"
	"github.com/Engineernoob/ai-interview-buddy/internal/service/session"
)

const (
	// writeWait bounds a single frame write.
	writeWait = 10 * time.Second
	// pongWait is how long the peer may stay silent before the read fails.
	pongWait = 60 * time.Second
	// pingPeriod must be shorter than pongWait.
	pingPeriod = 54 * time.Second
	// maxFrameBytes caps one inbound frame, sized for base64 audio fragments.
	maxFrameBytes = 1 << 20
)

// Handler upgrades coaching-channel requests and bridges each socket to a
// session.
type Handler struct {
	sessions *session.Manager
	upgrader websocket.Upgrader
}

// New creates the channel handler.
func New(sessions *session.Manager) *Handler {
	return &Handler{
		sessions: sessions,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes registers the coaching channel endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/audio", h.handleChannel)
}

func (h *Handler) handleChannel(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed: %v", err)
		return
	}

	s := h.sessions.Open()
	defer h.sessions.Close(s.ID())

	log.Printf("[ws] session %s connected from %s", s.ID(), r.RemoteAddr)

	s.Send(wire.NewConnected(s.ID()))
	go h.writePump(s, conn)

	h.readLoop(s, conn)
}

// readLoop consumes client frames until the connection or the session dies.
// Session teardown closes the connection from the write side, which unblocks
// the pending read.
func (h *Handler) readLoop(s *session.Session, conn *websocket.Conn) {
	conn.SetReadLimit(maxFrameBytes)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("[ws] session %s read error: %v", s.ID(), err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))

		if err := h.dispatch(s, raw); err != nil {
			return
		}
	}
}

// dispatch decodes one client frame and applies it to the session. A
// malformed frame is answered with an error event and the channel stays
// open; a non-nil return means the session is gone and the loop should end.
func (h *Handler) dispatch(s *session.Session, raw []byte) error {
	msg, decErr := wire.DecodeClientMessage(raw)
	if decErr != nil {
		s.Send(wire.NewError(decErr.Message))
		return nil
	}

	switch m := msg.(type) {
	case wire.AudioMessage:
		return s.OnAudio(m.Audio)
	case wire.PingMessage:
		s.Send(wire.NewPong(time.Now()))
		return nil
	case wire.ClearHistoryMessage:
		return s.ClearHistory()
	case wire.StopMessage:
		return s.Flush()
	default:
		return nil
	}
}

// writePump owns every write on the connection: session events, keepalive
// pings, and the close frame. It closes the connection on exit so a blocked
// read never outlives the session.
func (h *Handler) writePump(s *session.Session, conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer conn.Close()

	for {
		select {
		case msg := <-s.Events():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("[ws] session %s write failed: %v", s.ID(), err)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.Done():
			conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		}
	}
}
