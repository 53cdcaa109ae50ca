// Package hub coordinates live connections and message fan-out: it registers
// sessions, persists inbound messages and broadcasts events with per-peer
// delivery isolation, so one failed peer never stalls delivery to the rest.
package hub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"chathub/internal/model/chat"
)

// MessageStore persists inbound messages. Only Insert is needed here; the
// history endpoint talks to the store directly.
type MessageStore interface {
	Insert(ctx context.Context, username, content string) (chat.Message, error)
}

// inbound mirrors the client frame for limit validation.
type inbound struct {
	Username string `validate:"max=50"`
	Content  string `validate:"max=1000"`
}

// Hub owns the registry and orchestrates connect/disconnect lifecycle events
// and persist-then-broadcast for messages.
type Hub struct {
	registry *Registry
	store    MessageStore
	validate *validator.Validate

	// Serializes fan-out so every peer observes events in hub-issue order.
	// Sends are non-blocking, so holding this across a fan-out is cheap.
	broadcastMu sync.Mutex
}

// New creates a hub around the given store.
func New(store MessageStore) *Hub {
	return &Hub{
		registry: NewRegistry(),
		store:    store,
		validate: validator.New(),
	}
}

// Registry exposes the live set for handlers and tests.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// HandleConnect registers the connection, then broadcasts a join event to all
// registered connections. Registration happens first, so the new connection
// sees its own join announcement.
func (h *Hub) HandleConnect(sender Sender, username string) *Conn {
	conn := newConn(sender, username)
	h.registry.Add(conn)
	log.Printf("[hub] connected id=%s username=%s peers=%d", conn.ID, username, h.registry.Len())
	h.broadcast(joinEvent(username))
	return conn
}

// HandleDisconnect deregisters the connection and broadcasts a leave event.
// The session handler calls this exactly once per connection; the registry
// removal is idempotent in case the connection was already reaped.
func (h *Hub) HandleDisconnect(conn *Conn) {
	h.registry.Remove(conn.ID)
	log.Printf("[hub] disconnected id=%s username=%s peers=%d", conn.ID, conn.Username, h.registry.Len())
	h.broadcast(leaveEvent(conn.Username))
}

// HandleMessage validates field limits, persists the message and broadcasts it
// to every registered connection. If persistence fails the message is not
// broadcast and the error is returned to the session.
func (h *Hub) HandleMessage(ctx context.Context, username, content string) (chat.Message, error) {
	frame := inbound{Username: username, Content: content}
	if err := h.validate.Struct(frame); err != nil {
		return chat.Message{}, &ValidationError{Field: failedField(err), Err: err}
	}

	msg, err := h.store.Insert(ctx, username, content)
	if err != nil {
		return chat.Message{}, fmt.Errorf("persist message: %w", err)
	}

	h.broadcast(messageEvent(msg))
	return msg, nil
}

// broadcast delivers the event to a fresh snapshot of the registry. Each
// delivery is attempted independently; a failing peer is reaped and never
// aborts delivery to the others.
func (h *Hub) broadcast(evt Event) {
	payload, err := json.Marshal(evt)
	if err != nil {
		log.Printf("[hub] encode event failed: %v", err)
		return
	}

	h.broadcastMu.Lock()
	defer h.broadcastMu.Unlock()

	var stale []*Conn
	for _, conn := range h.registry.Snapshot() {
		if err := conn.sender.Send(payload); err != nil {
			log.Printf("[hub] %v", &DeliveryError{ConnID: conn.ID, Err: err})
			stale = append(stale, conn)
		}
	}

	for _, conn := range stale {
		if h.registry.Remove(conn.ID) {
			log.Printf("[hub] reaped id=%s username=%s", conn.ID, conn.Username)
		}
		_ = conn.sender.Close()
	}
}

// failedField extracts the lowercased name of the first failing field.
func failedField(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return strings.ToLower(verrs[0].Field())
	}
	return "frame"
}
