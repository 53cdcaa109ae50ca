package hub

import (
	"time"

	"chathub/internal/model/chat"
)

// Event is one outbound broadcast frame, a union of system and message shapes.
type Event struct {
	Type      string    `json:"type"`
	Event     string    `json:"event,omitempty"`
	ID        int64     `json:"id,omitempty"`
	Username  string    `json:"username"`
	Content   string    `json:"content,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func joinEvent(username string) Event {
	return Event{
		Type:      "system",
		Event:     "join",
		Username:  username,
		CreatedAt: time.Now().UTC(),
	}
}

func leaveEvent(username string) Event {
	return Event{
		Type:      "system",
		Event:     "leave",
		Username:  username,
		CreatedAt: time.Now().UTC(),
	}
}

func messageEvent(msg chat.Message) Event {
	return Event{
		Type:      "message",
		ID:        msg.ID,
		Username:  msg.Username,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}
}
