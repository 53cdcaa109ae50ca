// Package history serves the recent-message retrieval endpoint.
package history

import (
	"context"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"chathub/internal/model/chat"
	"chathub/pkg/utils"
)

// Lister reads back stored messages, oldest-first.
type Lister interface {
	ListRecent(ctx context.Context, limit int) ([]chat.Message, error)
}

// Handler is the HTTP handler for message history.
type Handler struct {
	store Lister
}

// New creates a history handler.
func New(store Lister) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes registers the history routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/messages", h.handleListMessages)
}

// handleListMessages returns up to ?limit= recent messages, oldest-first.
// Absent or non-numeric limits fall back to the store default.
func (h *Handler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	messages, err := h.store.ListRecent(r.Context(), limit)
	if err != nil {
		log.Printf("[history] list messages failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to load messages")
		return
	}

	if messages == nil {
		messages = []chat.Message{}
	}
	utils.RespondJSON(w, http.StatusOK, messages)
}
