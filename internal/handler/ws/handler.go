// Package ws runs the per-connection session loop: it upgrades the HTTP
// request, registers the connection with the hub, relays inbound frames and
// guarantees exactly one disconnect per connection.
package ws

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"chathub/internal/config"
	"chathub/internal/hub"
)

// defaultUsername is used when the client supplies no display name.
const defaultUsername = "Guest"

// inboundFrame is the client-to-server message shape.
type inboundFrame struct {
	Username string `json:"username"`
	Content  string `json:"content"`
}

// errorFrame is sent best-effort to a sender whose message failed validation.
type errorFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Handler upgrades websocket sessions and runs their protocol loop.
type Handler struct {
	hub      *hub.Hub
	cfg      config.WebsocketConfig
	upgrader websocket.Upgrader
}

// New creates a websocket handler bound to the hub.
func New(chatHub *hub.Hub, cfg config.WebsocketConfig) *Handler {
	return &Handler{
		hub: chatHub,
		cfg: cfg,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes registers the websocket endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws", h.handleWebSocket)
}

// handleWebSocket accepts the connection, registers it and runs the read loop
// until the channel closes. Disconnect runs exactly once, on loop exit.
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		username = defaultUsername
	}

	socket, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed: %v", err)
		return
	}

	p := newPeer(socket, h.cfg.SendBuffer, h.cfg.WriteTimeout)
	go p.writePump()

	conn := h.hub.HandleConnect(p, username)
	defer func() {
		h.hub.HandleDisconnect(conn)
		_ = p.Close()
	}()

	h.readLoop(r, conn, p)
}

// readLoop blocks for inbound frames and relays them to the hub. It returns on
// channel closure, read failure or an unparseable frame; all three are the
// same disconnect path.
func (h *Handler) readLoop(r *http.Request, conn *hub.Conn, p *peer) {
	socket := p.socket
	_ = socket.SetReadDeadline(time.Now().Add(pongWait))
	socket.SetPongHandler(func(string) error {
		return socket.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[ws] read error id=%s: %v", conn.ID, err)
			}
			return
		}
		_ = socket.SetReadDeadline(time.Now().Add(pongWait))

		var frame inboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			log.Printf("[ws] id=%s: %v", conn.ID, &hub.ProtocolError{Err: err})
			return
		}

		if _, err := h.hub.HandleMessage(r.Context(), frame.Username, frame.Content); err != nil {
			var verr *hub.ValidationError
			if errors.As(err, &verr) {
				h.sendError(p, verr.Field+" exceeds size limit")
				continue
			}
			// Storage failure: the message is dropped silently and the
			// connection stays open.
			log.Printf("[ws] message dropped id=%s: %v", conn.ID, err)
		}
	}
}

// sendError delivers a best-effort error frame to the offending sender only.
func (h *Handler) sendError(p *peer, message string) {
	payload, err := json.Marshal(errorFrame{Type: "error", Message: message})
	if err != nil {
		return
	}
	if err := p.Send(payload); err != nil {
		log.Printf("[ws] error frame not delivered: %v", err)
	}
}
