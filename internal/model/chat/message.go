package chat

import "time"

// Message is one persisted chat line. Immutable once stored; the ID is
// assigned by the store and is strictly increasing. The hub rejects frames
// whose username exceeds 50 characters or whose content exceeds 1000 before
// a Message is ever created.
type Message struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
